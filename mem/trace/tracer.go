package trace

import (
	"fmt"
	"log"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
)

const (
	accessTableName  = "cache_accesses"
	summaryTableName = "cache_summary"
)

// accessEntry represents a cache access in the database
type accessEntry struct {
	RunID      string
	Seq        uint64
	Cache      string
	Kind       string
	Address    uint32
	Tag        uint32
	LineID     int
	Hit        bool
	Evicted    bool
	EvictedTag uint32
}

// summaryEntry represents the final statistics of a cache in the database
type summaryEntry struct {
	RunID               string
	Cache               string
	Config              string
	Accesses            uint64
	Hits                uint64
	Misses              uint64
	HitRate             float64
	InstructionAccesses uint64
	InstructionHits     uint64
	DataAccesses        uint64
	DataHits            uint64
	Evictions           uint64
}

// A logTracer is a hook that prints every access of a cache.
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a hook that prints one line per access.
func NewLogTracer(logger *log.Logger) cache.AccessHook {
	t := new(logTracer)
	t.logger = logger

	return t
}

// Func prints the access.
func (t *logTracer) Func(event cache.AccessEvent) {
	if event.Evicted {
		t.logger.Printf("%d, %s, %s, 0x%08x, line %d, %s, evict tag 0x%x\n",
			event.Seq,
			event.Cache,
			event.Access.Kind,
			event.Access.Address,
			event.LineID,
			event.Result,
			event.EvictedTag,
		)

		return
	}

	t.logger.Printf("%d, %s, %s, 0x%08x, line %d, %s\n",
		event.Seq,
		event.Cache,
		event.Access.Kind,
		event.Access.Address,
		event.LineID,
		event.Result,
	)
}

// A DBTracer is a hook that records every access of a cache into a database
// using the data recorder.
type DBTracer struct {
	runID        string
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates the access and summary tables and returns a tracer that
// fills them. Rows are tagged with runID.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	runID string,
) *DBTracer {
	t := &DBTracer{
		runID:        runID,
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(accessTableName, accessEntry{})
	t.dataRecorder.CreateTable(summaryTableName, summaryEntry{})

	return t
}

// Func records the access.
func (t *DBTracer) Func(event cache.AccessEvent) {
	entry := accessEntry{
		RunID:      t.runID,
		Seq:        event.Seq,
		Cache:      event.Cache,
		Kind:       event.Access.Kind.String(),
		Address:    event.Access.Address,
		Tag:        event.Fields.Tag,
		LineID:     event.LineID,
		Hit:        event.Result == cache.Hit,
		Evicted:    event.Evicted,
		EvictedTag: event.EvictedTag,
	}

	t.dataRecorder.InsertData(accessTableName, entry)
}

// RecordSummary records the final statistics of a cache.
func (t *DBTracer) RecordSummary(
	name string,
	c cache.Config,
	s cache.Statistics,
) {
	hitRate := 0.0
	if s.Accesses > 0 {
		hitRate = s.HitRate()
	}

	config := fmt.Sprintf("%d %s %s", c.ByteSize, c.Mapping, c.Organization)

	entry := summaryEntry{
		RunID:               t.runID,
		Cache:               name,
		Config:              config,
		Accesses:            s.Accesses,
		Hits:                s.Hits,
		Misses:              s.Misses(),
		HitRate:             hitRate,
		InstructionAccesses: s.InstructionAccesses,
		InstructionHits:     s.InstructionHits,
		DataAccesses:        s.DataAccesses,
		DataHits:            s.DataHits,
		Evictions:           s.Evictions,
	}

	t.dataRecorder.InsertData(summaryTableName, entry)
}
