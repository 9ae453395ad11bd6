// Package simulation runs a memory trace through a cache.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
)

// A Simulation feeds the accesses of a trace to a cache, one at a time.
type Simulation struct {
	id     string
	engine *cache.Engine

	// engineLock guards the engine against monitor handlers.
	engineLock sync.Mutex

	pauseLock sync.Mutex
	pauseCond *sync.Cond
	paused    bool

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	tracer       *trace.DBTracer
	monitor      *monitoring.Monitor

	terminated bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the simulated cache. It must not be used while Run is in
// progress.
func (s *Simulation) Engine() *cache.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation. It is
// nil unless recording is enabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil unless
// monitoring is enabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Stats returns the statistics of the cache so far.
func (s *Simulation) Stats() cache.Statistics {
	s.engineLock.Lock()
	defer s.engineLock.Unlock()

	return s.engine.Stats()
}

// Pause stops the simulation before its next access.
func (s *Simulation) Pause() {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	s.paused = true
}

// Continue resumes a paused simulation.
func (s *Simulation) Continue() {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	s.paused = false
	s.pauseCond.Broadcast()
}

// waitWhilePaused blocks while the simulation is paused. Cancelling ctx
// releases it.
func (s *Simulation) waitWhilePaused(ctx context.Context) {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	if !s.paused {
		return
	}

	stop := context.AfterFunc(ctx, func() {
		s.pauseLock.Lock()
		defer s.pauseLock.Unlock()

		s.pauseCond.Broadcast()
	})
	defer stop()

	for s.paused && ctx.Err() == nil {
		s.pauseCond.Wait()
	}
}

// Run reads the trace until it ends and feeds every access to the cache. It
// stops early if ctx is cancelled or if the trace is malformed. The returned
// statistics cover all accesses made so far.
func (s *Simulation) Run(ctx context.Context, r io.Reader) (cache.Statistics, error) {
	reader := trace.NewReader(r)

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Trace", 0)
		defer s.monitor.CompleteProgressBar(bar)
	}

	for {
		s.waitWhilePaused(ctx)

		if err := ctx.Err(); err != nil {
			return s.Stats(), err
		}

		a, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return s.Stats(), nil
		}

		if err != nil {
			return s.Stats(), err
		}

		if bar != nil {
			bar.IncrementInProgress(1)
		}

		s.access(a)

		if bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}
}

// RunFile runs the trace stored in a file.
func (s *Simulation) RunFile(ctx context.Context, path string) (cache.Statistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return cache.Statistics{}, fmt.Errorf("unable to open the trace file: %w", err)
	}
	defer f.Close()

	return s.Run(ctx, f)
}

func (s *Simulation) access(a cache.Access) cache.Result {
	s.engineLock.Lock()
	defer s.engineLock.Unlock()

	return s.engine.Access(a)
}

// Terminate records the final statistics, flushes the recorder and stops the
// monitor. It is safe to call more than once.
func (s *Simulation) Terminate() {
	if s.terminated {
		return
	}

	s.terminated = true

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = s.monitor.StopServer(ctx)
	}

	if s.dataRecorder == nil {
		return
	}

	s.tracer.RecordSummary(s.engine.Name(), s.engine.Config(), s.Stats())
	s.execRecorder.End()
	s.dataRecorder.Close()
}

// guardedEngine lets the monitor read the cache while the simulation runs.
type guardedEngine struct {
	s *Simulation
}

func (g guardedEngine) Name() string {
	return g.s.engine.Name()
}

func (g guardedEngine) Config() cache.Config {
	return g.s.engine.Config()
}

func (g guardedEngine) Stats() cache.Statistics {
	return g.s.Stats()
}

func (g guardedEngine) Lines() []cache.LineState {
	g.s.engineLock.Lock()
	defer g.s.engineLock.Unlock()

	return g.s.engine.Lines()
}

func configString(c cache.Config) string {
	return fmt.Sprintf("%d %s %s", c.ByteSize, c.Mapping, c.Organization)
}
