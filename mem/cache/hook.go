package cache

// AccessEvent describes what a single access did to a cache.
type AccessEvent struct {
	// Cache is the name of the cache that served the access.
	Cache string
	// Seq is the position of the access in the run, starting from 0.
	Seq    uint64
	Access Access
	Fields Fields
	Result Result
	// LineID is the line that hit or that was filled on a miss.
	LineID int
	// Evicted is set if a miss replaced a valid line, whose tag is
	// EvictedTag.
	Evicted    bool
	EvictedTag uint32
}

// An AccessHook is invoked by a cache after every access.
type AccessHook interface {
	Func(event AccessEvent)
}

// AccessHookFunc adapts a function to an AccessHook.
type AccessHookFunc func(event AccessEvent)

// Func calls f.
func (f AccessHookFunc) Func(event AccessEvent) {
	f(event)
}
