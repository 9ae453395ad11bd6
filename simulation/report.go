package simulation

import (
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/mem/cache"
)

// WriteReport prints the statistics of a run. The first block keeps the
// layout that existing tooling parses; the second adds the extra counters.
func WriteReport(w io.Writer, s cache.Statistics) error {
	hitRate := "NaN"
	if s.Accesses > 0 {
		hitRate = fmt.Sprintf("%.4f", s.HitRate())
	}

	_, err := fmt.Fprintf(w,
		"\nCache Statistics\n"+
			"-----------------\n\n"+
			"Accesses: %d\n"+
			"Hits:\t\t%d\n"+
			"Hit Rate: %s\n",
		s.Accesses, s.Hits, hitRate)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w,
		"\nMisses:    %d\n"+
			"Evictions: %d\n"+
			"Instruction Accesses: %d, Hits: %d\n"+
			"Data Accesses:        %d, Hits: %d\n",
		s.Misses(), s.Evictions,
		s.InstructionAccesses, s.InstructionHits,
		s.DataAccesses, s.DataHits)

	return err
}
