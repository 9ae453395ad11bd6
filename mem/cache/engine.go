// Package cache simulates a single-level CPU cache against a memory trace.
//
// An Engine classifies every access as a hit or a miss, fills lines on
// misses, and counts the outcomes. The Engine is not safe for concurrent use.
// Callers that want to inspect a running engine from another goroutine must
// provide their own locking.
package cache

import "github.com/sarchlab/cachesim/mem/cache/internal/tagging"

// LineState is a read-only copy of one cache line.
type LineState struct {
	ID         int        `json:"id"`
	Region     RegionKind `json:"region"`
	IsValid    bool       `json:"valid"`
	Tag        uint32     `json:"tag"`
	InsertedAt uint64     `json:"inserted_at,omitempty"`
}

// An Engine is a simulated cache.
type Engine struct {
	name    string
	config  Config
	decoder AddressDecoder
	lines   placement
	hooks   []AccessHook

	stats Statistics

	// time advances once per access, hit or miss. Fully-associative lines
	// are stamped with it when they are filled.
	time uint64
}

// NewEngine creates a cache with all lines invalid.
func NewEngine(name string, c Config) (*Engine, error) {
	return newEngine(name, c, nil)
}

func newEngine(
	name string,
	c Config,
	victimFinder tagging.VictimFinder,
) (*Engine, error) {
	decoder, err := NewAddressDecoder(c)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		name:    name,
		config:  c,
		decoder: decoder,
		lines:   newPlacement(c, victimFinder),
	}

	return e, nil
}

// Name returns the name of the cache.
func (e *Engine) Name() string {
	return e.name
}

// Config returns the configuration the cache was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Decoder returns the address decoder of the cache.
func (e *Engine) Decoder() AddressDecoder {
	return e.decoder
}

// AcceptHook registers a hook that is invoked after every access.
func (e *Engine) AcceptHook(hook AccessHook) {
	e.hooks = append(e.hooks, hook)
}

// NumHooks returns the number of registered hooks.
func (e *Engine) NumHooks() int {
	return len(e.hooks)
}

// Access looks the address up in the lines the access kind may use. On a
// miss, the block is brought into the cache, replacing the line selected by
// the mapping strategy.
func (e *Engine) Access(a Access) Result {
	region := e.decoder.Region(a.Kind)
	fields := e.decoder.Decode(a.Address)

	r := e.lines.access(region, fields, e.time)

	result := Miss
	if r.hit {
		result = Hit
	}

	e.stats.count(a.Kind, result, r.evicted)

	if len(e.hooks) > 0 {
		e.invokeHooks(AccessEvent{
			Cache:      e.name,
			Seq:        e.time,
			Access:     a,
			Fields:     fields,
			Result:     result,
			LineID:     r.lineID,
			Evicted:    r.evicted,
			EvictedTag: r.evictedTag,
		})
	}

	e.time++

	return result
}

func (e *Engine) invokeHooks(event AccessEvent) {
	for _, h := range e.hooks {
		h.Func(event)
	}
}

// Stats returns a copy of the counters.
func (e *Engine) Stats() Statistics {
	return e.stats
}

// Lines returns a copy of every line, in line order.
func (e *Engine) Lines() []LineState {
	return e.lines.lines(e.decoder)
}

// Reset invalidates all lines and clears the counters. Hooks stay
// registered.
func (e *Engine) Reset() {
	e.lines.reset()
	e.stats = Statistics{}
	e.time = 0
}
