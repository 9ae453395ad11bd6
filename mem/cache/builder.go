package cache

import (
	"fmt"
)

// Builder can build caches.
type Builder struct {
	byteSize     uint32
	lineSize     uint32
	mapping      Mapping
	organization Organization
	hooks        []AccessHook
}

// MakeBuilder creates a new builder with a 1 KiB direct-mapped unified cache
// of 64-byte lines.
func MakeBuilder() Builder {
	return Builder{
		byteSize:     1024,
		lineSize:     DefaultLineSize,
		mapping:      DirectMapped,
		organization: Unified,
	}
}

// WithByteSize sets the capacity of the cache.
func (b Builder) WithByteSize(byteSize uint32) Builder {
	b.byteSize = byteSize
	return b
}

// WithLineSize sets the number of bytes in a line.
func (b Builder) WithLineSize(lineSize uint32) Builder {
	b.lineSize = lineSize
	return b
}

// WithMapping sets the mapping strategy.
func (b Builder) WithMapping(mapping Mapping) Builder {
	b.mapping = mapping
	return b
}

// WithOrganization sets whether instructions and data share lines.
func (b Builder) WithOrganization(organization Organization) Builder {
	b.organization = organization
	return b
}

// WithConfig copies all the geometry parameters from c.
func (b Builder) WithConfig(c Config) Builder {
	b.byteSize = c.ByteSize
	b.lineSize = c.LineSize
	b.mapping = c.Mapping
	b.organization = c.Organization

	return b
}

// WithHook registers a hook on the cache when it is built.
func (b Builder) WithHook(hook AccessHook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Config returns the configuration the builder would build.
func (b Builder) Config() Config {
	return Config{
		ByteSize:     b.byteSize,
		LineSize:     b.lineSize,
		Mapping:      b.mapping,
		Organization: b.organization,
	}
}

// Build builds a cache. It panics if the parameters do not describe a valid
// cache; use Config().Validate() first to get an error instead.
func (b Builder) Build(name string) *Engine {
	e, err := NewEngine(name, b.Config())
	if err != nil {
		panic(fmt.Errorf("cannot build cache %s: %w", name, err))
	}

	for _, h := range b.hooks {
		e.AcceptHook(h)
	}

	return e
}
