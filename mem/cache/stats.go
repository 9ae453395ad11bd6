package cache

import "math"

// Statistics are the counters a cache accumulates over a run. Counters only
// grow until the cache is reset.
type Statistics struct {
	Accesses uint64 `json:"accesses"`
	Hits     uint64 `json:"hits"`

	InstructionAccesses uint64 `json:"instruction_accesses"`
	InstructionHits     uint64 `json:"instruction_hits"`
	DataAccesses        uint64 `json:"data_accesses"`
	DataHits            uint64 `json:"data_hits"`

	// Evictions counts the misses that replaced a valid line.
	Evictions uint64 `json:"evictions"`
}

// Misses returns the number of accesses that did not hit.
func (s Statistics) Misses() uint64 {
	return s.Accesses - s.Hits
}

// HitRate returns hits over accesses. It is NaN if there was no access.
func (s Statistics) HitRate() float64 {
	if s.Accesses == 0 {
		return math.NaN()
	}

	return float64(s.Hits) / float64(s.Accesses)
}

func (s *Statistics) count(kind AccessKind, result Result, evicted bool) {
	s.Accesses++

	switch kind {
	case Instruction:
		s.InstructionAccesses++
	case Data:
		s.DataAccesses++
	}

	if evicted {
		s.Evictions++
	}

	if result != Hit {
		return
	}

	s.Hits++

	switch kind {
	case Instruction:
		s.InstructionHits++
	case Data:
		s.DataHits++
	}
}
