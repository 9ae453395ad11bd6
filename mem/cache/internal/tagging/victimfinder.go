package tagging

// A VictimFinder decides which block should be evicted. The returned value is
// a position in blocks.
type VictimFinder interface {
	FindVictim(blocks []FIFOBlock) int
}

// FIFOVictimFinder evicts the block that was filled first.
type FIFOVictimFinder struct {
}

// NewFIFOVictimFinder returns a newly constructed FIFO evictor.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	e := new(FIFOVictimFinder)
	return e
}

// FindVictim returns the first invalid block, or the valid block with the
// smallest insertion time when every block is valid. Ties go to the block
// that comes first.
func (e *FIFOVictimFinder) FindVictim(blocks []FIFOBlock) int {
	victim := 0

	for i, block := range blocks {
		if !block.IsValid {
			return i
		}

		if block.InsertedAt < blocks[victim].InsertedAt {
			victim = i
		}
	}

	return victim
}
