// Package tagging holds the line storage of a cache.
//
// A cache picks one of two representations when it is built. Direct-mapped
// caches keep a DirectMappedTags, where each line is addressed by index
// alone. Fully-associative caches keep an AssociativeTags, where any line of
// a region may hold any tag and a VictimFinder decides which line to replace.
package tagging

import "fmt"

// A Region is a contiguous range of lines [Begin, End).
type Region struct {
	Begin int
	End   int
}

// Len returns the number of lines in the region.
func (r Region) Len() int {
	return r.End - r.Begin
}

// Contains tells if lineID falls inside the region.
func (r Region) Contains(lineID int) bool {
	return lineID >= r.Begin && lineID < r.End
}

// A Block is the information that is associated with a direct-mapped cache
// line.
type Block struct {
	IsValid bool
	Tag     uint32
}

// A FIFOBlock is the information that is associated with a fully-associative
// cache line. InsertedAt is the cache time at which the line was filled.
type FIFOBlock struct {
	IsValid    bool
	Tag        uint32
	InsertedAt uint64
}

// DirectMappedTags stores the lines of a direct-mapped cache.
type DirectMappedTags struct {
	Blocks []Block
}

// NewDirectMappedTags creates numLines invalid lines.
func NewDirectMappedTags(numLines int) *DirectMappedTags {
	t := &DirectMappedTags{}
	t.Blocks = make([]Block, numLines)

	return t
}

// Lookup tells if the line holds a valid copy of tag.
func (t *DirectMappedTags) Lookup(lineID int, tag uint32) bool {
	b := t.Blocks[lineID]
	return b.IsValid && b.Tag == tag
}

// Fill replaces the line with tag and returns what the line held before.
func (t *DirectMappedTags) Fill(lineID int, tag uint32) (evicted Block) {
	evicted = t.Blocks[lineID]

	t.Blocks[lineID] = Block{
		IsValid: true,
		Tag:     tag,
	}

	return evicted
}

// Reset marks all the lines invalid.
func (t *DirectMappedTags) Reset() {
	clear(t.Blocks)
}

// AssociativeTags stores the lines of a fully-associative cache.
type AssociativeTags struct {
	Blocks       []FIFOBlock
	VictimFinder VictimFinder
}

// NewAssociativeTags creates numLines invalid lines that are replaced in the
// order decided by victimFinder.
func NewAssociativeTags(
	numLines int,
	victimFinder VictimFinder,
) *AssociativeTags {
	t := &AssociativeTags{
		Blocks:       make([]FIFOBlock, numLines),
		VictimFinder: victimFinder,
	}

	return t
}

// Lookup searches the region for a valid line that holds tag.
func (t *AssociativeTags) Lookup(region Region, tag uint32) (lineID int, ok bool) {
	for i := region.Begin; i < region.End; i++ {
		b := t.Blocks[i]
		if b.IsValid && b.Tag == tag {
			return i, true
		}
	}

	return -1, false
}

// Fill places tag into the victim line of the region, stamping it with now.
// It returns the line used and what the line held before.
func (t *AssociativeTags) Fill(
	region Region,
	tag uint32,
	now uint64,
) (lineID int, evicted FIFOBlock) {
	blocks := t.Blocks[region.Begin:region.End]

	victim := t.VictimFinder.FindVictim(blocks)
	if victim < 0 || victim >= len(blocks) {
		panic(fmt.Sprintf("victim %d is out of region [%d, %d)",
			victim, region.Begin, region.End))
	}

	lineID = region.Begin + victim
	evicted = t.Blocks[lineID]

	t.Blocks[lineID] = FIFOBlock{
		IsValid:    true,
		Tag:        tag,
		InsertedAt: now,
	}

	return lineID, evicted
}

// Reset marks all the lines invalid.
func (t *AssociativeTags) Reset() {
	clear(t.Blocks)
}
