package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sarchlab/cachesim/mem/cache"
)

const (
	minCacheSize = 128
	maxCacheSize = 4096

	defaultTraceFile = "mem_trace.txt"
)

// runArgs is what the positional arguments describe.
type runArgs struct {
	config    cache.Config
	traceFile string
}

// parseArgs turns `<size> <dm|fa> <uc|sc> [trace file]` into a cache
// configuration. The trace file falls back to CACHESIM_TRACE_FILE and then to
// mem_trace.txt.
func parseArgs(args []string) (runArgs, error) {
	if len(args) < 3 || len(args) > 4 {
		return runArgs{}, fmt.Errorf("expecting 3 or 4 arguments, got %d",
			len(args))
	}

	size, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return runArgs{}, fmt.Errorf("invalid cache size %q", args[0])
	}

	if size < minCacheSize || size > maxCacheSize {
		return runArgs{}, fmt.Errorf(
			"cache size %d is out of range [%d, %d]",
			size, minCacheSize, maxCacheSize)
	}

	mapping, err := cache.ParseMapping(args[1])
	if err != nil {
		return runArgs{}, err
	}

	organization, err := cache.ParseOrganization(args[2])
	if err != nil {
		return runArgs{}, err
	}

	c := cache.MakeBuilder().
		WithByteSize(uint32(size)).
		WithMapping(mapping).
		WithOrganization(organization).
		Config()

	if err := c.Validate(); err != nil {
		return runArgs{}, err
	}

	traceFile := os.Getenv("CACHESIM_TRACE_FILE")
	if len(args) == 4 {
		traceFile = args[3]
	}

	if traceFile == "" {
		traceFile = defaultTraceFile
	}

	return runArgs{config: c, traceFile: traceFile}, nil
}
