package cache

import "fmt"

// AccessKind tells whether an access fetches an instruction or reads data.
type AccessKind int

const (
	// Instruction is an instruction fetch.
	Instruction AccessKind = iota
	// Data is a data read or write.
	Data
)

func (k AccessKind) String() string {
	switch k {
	case Instruction:
		return "I"
	case Data:
		return "D"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

// An Access is one entry of a memory trace.
type Access struct {
	Address uint32
	Kind    AccessKind
}

// Result is the outcome of an access.
type Result int

const (
	// Miss means the block was not in the cache and has been filled.
	Miss Result = iota
	// Hit means the block was found in the cache.
	Hit
)

func (r Result) String() string {
	if r == Hit {
		return "hit"
	}

	return "miss"
}
