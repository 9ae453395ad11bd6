package cache

import (
	"fmt"
	"math/bits"
)

// DefaultLineSize is the number of bytes in a cache line.
const DefaultLineSize = 64

// Mapping decides where in the cache a memory block can be placed.
type Mapping int

const (
	// DirectMapped places a block in exactly one line, selected by the index
	// bits of the address.
	DirectMapped Mapping = iota

	// FullyAssociative places a block in any line and replaces lines in FIFO
	// order.
	FullyAssociative
)

func (m Mapping) String() string {
	switch m {
	case DirectMapped:
		return "dm"
	case FullyAssociative:
		return "fa"
	default:
		return fmt.Sprintf("Mapping(%d)", int(m))
	}
}

// ParseMapping converts the short names "dm" and "fa" into a Mapping.
func ParseMapping(s string) (Mapping, error) {
	switch s {
	case "dm":
		return DirectMapped, nil
	case "fa":
		return FullyAssociative, nil
	default:
		return 0, fmt.Errorf("unknown cache mapping %q", s)
	}
}

// Organization decides whether instructions and data share the lines.
type Organization int

const (
	// Unified lets every access use every line.
	Unified Organization = iota

	// Split dedicates half of the lines to data and the other half to
	// instructions.
	Split
)

func (o Organization) String() string {
	switch o {
	case Unified:
		return "uc"
	case Split:
		return "sc"
	default:
		return fmt.Sprintf("Organization(%d)", int(o))
	}
}

// ParseOrganization converts the short names "uc" and "sc" into an
// Organization.
func ParseOrganization(s string) (Organization, error) {
	switch s {
	case "uc":
		return Unified, nil
	case "sc":
		return Split, nil
	default:
		return 0, fmt.Errorf("unknown cache organization %q", s)
	}
}

// Config describes the geometry of a cache.
type Config struct {
	ByteSize     uint32
	LineSize     uint32
	Mapping      Mapping
	Organization Organization
}

// NumLines returns the total number of lines, counting both halves of a
// split cache.
func (c Config) NumLines() int {
	return int(c.ByteSize / c.LineSize)
}

// LinesPerRegion returns the number of lines an access can use.
func (c Config) LinesPerRegion() int {
	if c.Organization == Split {
		return c.NumLines() / 2
	}

	return c.NumLines()
}

// Validate checks that the configuration describes a cache that can be
// addressed with bit masks.
func (c Config) Validate() error {
	if c.Mapping != DirectMapped && c.Mapping != FullyAssociative {
		return &ConfigError{Field: "mapping", Value: uint64(c.Mapping),
			Reason: "unknown mapping"}
	}

	if c.Organization != Unified && c.Organization != Split {
		return &ConfigError{Field: "organization",
			Value: uint64(c.Organization), Reason: "unknown organization"}
	}

	if !isPowerOfTwo(c.LineSize) {
		return &ConfigError{Field: "line size", Value: uint64(c.LineSize),
			Reason: "must be a power of two"}
	}

	if !isPowerOfTwo(c.ByteSize) {
		return &ConfigError{Field: "byte size", Value: uint64(c.ByteSize),
			Reason: "must be a power of two"}
	}

	if c.ByteSize < c.LineSize || c.ByteSize%c.LineSize != 0 {
		return &ConfigError{Field: "byte size", Value: uint64(c.ByteSize),
			Reason: fmt.Sprintf("must be a multiple of the line size %d",
				c.LineSize)}
	}

	if c.Organization == Split {
		if c.NumLines()%2 != 0 {
			return &ConfigError{Field: "line count",
				Value:  uint64(c.NumLines()),
				Reason: "must be even to split the cache"}
		}

		if !isPowerOfTwo(uint32(c.LinesPerRegion())) {
			return &ConfigError{Field: "lines per region",
				Value:  uint64(c.LinesPerRegion()),
				Reason: "must be a power of two"}
		}
	}

	return nil
}

// A ConfigError reports a cache configuration that cannot be built.
type ConfigError struct {
	Field  string
	Value  uint64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cache configuration: %s %d %s",
		e.Field, e.Value, e.Reason)
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

func log2(v uint32) uint32 {
	return uint32(bits.TrailingZeros32(v))
}
