package cache

import "github.com/sarchlab/cachesim/mem/cache/internal/tagging"

// Fields are the parts of an address that a cache looks at.
type Fields struct {
	Tag    uint32
	Index  uint32
	Offset uint32
}

// An AddressDecoder splits 32-bit addresses into tag, index and offset, and
// tells which lines an access may use.
type AddressDecoder struct {
	OffsetBits uint32
	OffsetMask uint32
	IndexBits  uint32
	IndexMask  uint32
	TagShift   uint32

	organization Organization
	numLines     int
}

// NewAddressDecoder precomputes the masks and shifts for a configuration.
func NewAddressDecoder(c Config) (AddressDecoder, error) {
	if err := c.Validate(); err != nil {
		return AddressDecoder{}, err
	}

	d := AddressDecoder{
		organization: c.Organization,
		numLines:     c.NumLines(),
	}

	d.OffsetBits = log2(c.LineSize)
	d.OffsetMask = c.LineSize - 1

	switch c.Mapping {
	case DirectMapped:
		linesPerRegion := uint32(c.LinesPerRegion())
		d.IndexBits = log2(linesPerRegion)
		d.IndexMask = (linesPerRegion - 1) << d.OffsetBits
		d.TagShift = d.OffsetBits + d.IndexBits
	case FullyAssociative:
		d.TagShift = d.OffsetBits
	}

	return d, nil
}

// Tag returns the high-order bits of the address.
func (d AddressDecoder) Tag(addr uint32) uint32 {
	return addr >> d.TagShift
}

// Index returns the line within a region that a direct-mapped cache uses.
// It is always 0 for fully-associative caches.
func (d AddressDecoder) Index(addr uint32) uint32 {
	return (addr & d.IndexMask) >> d.OffsetBits
}

// Offset returns the byte within the line.
func (d AddressDecoder) Offset(addr uint32) uint32 {
	return addr & d.OffsetMask
}

// Decode splits the address into all its fields.
func (d AddressDecoder) Decode(addr uint32) Fields {
	return Fields{
		Tag:    d.Tag(addr),
		Index:  d.Index(addr),
		Offset: d.Offset(addr),
	}
}

// Region returns the lines that an access of the given kind may use. In a
// split cache, data uses the lower half and instructions use the upper half.
func (d AddressDecoder) Region(kind AccessKind) tagging.Region {
	if d.organization == Unified {
		return tagging.Region{Begin: 0, End: d.numLines}
	}

	half := d.numLines / 2
	if kind == Instruction {
		return tagging.Region{Begin: half, End: d.numLines}
	}

	return tagging.Region{Begin: 0, End: half}
}

// RegionKind names the part of the cache a line belongs to.
type RegionKind string

// The region kinds of a unified and a split cache.
const (
	UnifiedRegion     RegionKind = "unified"
	DataRegion        RegionKind = "data"
	InstructionRegion RegionKind = "instruction"
)

func (d AddressDecoder) regionKindOf(lineID int) RegionKind {
	if d.organization == Unified {
		return UnifiedRegion
	}

	if d.Region(Instruction).Contains(lineID) {
		return InstructionRegion
	}

	return DataRegion
}
