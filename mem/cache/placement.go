package cache

import "github.com/sarchlab/cachesim/mem/cache/internal/tagging"

// A placement is the line storage and lookup rule of one mapping strategy.
// The engine picks one implementation when it is built.
type placement interface {
	// access looks the fields up in the region and fills a line on a miss.
	access(region tagging.Region, f Fields, now uint64) placementResult
	lines(d AddressDecoder) []LineState
	reset()
}

type placementResult struct {
	hit        bool
	lineID     int
	evicted    bool
	evictedTag uint32
}

type directMapped struct {
	tags *tagging.DirectMappedTags
}

func (p *directMapped) access(
	region tagging.Region,
	f Fields,
	_ uint64,
) placementResult {
	lineID := region.Begin + int(f.Index)

	if p.tags.Lookup(lineID, f.Tag) {
		return placementResult{hit: true, lineID: lineID}
	}

	old := p.tags.Fill(lineID, f.Tag)

	return placementResult{
		lineID:     lineID,
		evicted:    old.IsValid,
		evictedTag: old.Tag,
	}
}

func (p *directMapped) lines(d AddressDecoder) []LineState {
	states := make([]LineState, len(p.tags.Blocks))
	for i, b := range p.tags.Blocks {
		states[i] = LineState{
			ID:      i,
			Region:  d.regionKindOf(i),
			IsValid: b.IsValid,
			Tag:     b.Tag,
		}
	}

	return states
}

func (p *directMapped) reset() {
	p.tags.Reset()
}

type fullyAssociative struct {
	tags *tagging.AssociativeTags
}

func (p *fullyAssociative) access(
	region tagging.Region,
	f Fields,
	now uint64,
) placementResult {
	if lineID, ok := p.tags.Lookup(region, f.Tag); ok {
		return placementResult{hit: true, lineID: lineID}
	}

	lineID, old := p.tags.Fill(region, f.Tag, now)

	return placementResult{
		lineID:     lineID,
		evicted:    old.IsValid,
		evictedTag: old.Tag,
	}
}

func (p *fullyAssociative) lines(d AddressDecoder) []LineState {
	states := make([]LineState, len(p.tags.Blocks))
	for i, b := range p.tags.Blocks {
		states[i] = LineState{
			ID:         i,
			Region:     d.regionKindOf(i),
			IsValid:    b.IsValid,
			Tag:        b.Tag,
			InsertedAt: b.InsertedAt,
		}
	}

	return states
}

func (p *fullyAssociative) reset() {
	p.tags.Reset()
}

func newPlacement(c Config, victimFinder tagging.VictimFinder) placement {
	switch c.Mapping {
	case DirectMapped:
		return &directMapped{
			tags: tagging.NewDirectMappedTags(c.NumLines()),
		}
	case FullyAssociative:
		if victimFinder == nil {
			victimFinder = tagging.NewFIFOVictimFinder()
		}

		return &fullyAssociative{
			tags: tagging.NewAssociativeTags(c.NumLines(), victimFinder),
		}
	default:
		panic("unknown mapping " + c.Mapping.String())
	}
}
