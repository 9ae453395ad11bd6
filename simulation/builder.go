package simulation

import (
	"log"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
)

// Builder can be used to build a simulation.
type Builder struct {
	cacheName      string
	config         cache.Config
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	recordOn       bool
	outputFileName string
	dataRecorder   datarecording.DataRecorder
	logger         *log.Logger
}

// MakeBuilder creates a new builder that simulates a 1 KiB direct-mapped
// unified cache without monitoring or recording.
func MakeBuilder() Builder {
	return Builder{
		cacheName: "Cache",
		config:    cache.MakeBuilder().Config(),
	}
}

// WithConfig sets the geometry of the simulated cache.
func (b Builder) WithConfig(c cache.Config) Builder {
	b.config = c
	return b
}

// WithCacheName sets the name of the simulated cache.
func (b Builder) WithCacheName(name string) Builder {
	b.cacheName = name
	return b
}

// WithMonitoring starts a monitoring server with the simulation.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithRecording records every access into a SQLite database.
func (b Builder) WithRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithDataRecorder records every access with the given recorder instead of a
// new SQLite database.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recordOn = true
	b.dataRecorder = r

	return b
}

// WithLogger prints every access to the logger.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the simulation. It returns an error if the cache
// configuration is invalid.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id: xid.New().String(),
	}
	s.pauseCond = sync.NewCond(&s.pauseLock)

	cacheBuilder := cache.MakeBuilder().WithConfig(b.config)

	if b.logger != nil {
		cacheBuilder = cacheBuilder.WithHook(trace.NewLogTracer(b.logger))
	}

	if b.recordOn {
		b.buildRecording(s)
		cacheBuilder = cacheBuilder.WithHook(s.tracer)
	}

	s.engine = cacheBuilder.Build(b.cacheName)

	if b.monitorOn {
		b.buildMonitor(s)
	}

	return s, nil
}

func (b Builder) buildRecording(s *Simulation) {
	s.dataRecorder = b.dataRecorder
	if s.dataRecorder == nil {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "cachesim_" + s.id
		}

		s.dataRecorder = datarecording.NewDataRecorder(outputPath)
	}

	s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
	s.execRecorder.Start()
	s.execRecorder.Add("Run ID", s.id)
	s.execRecorder.Add("Cache", b.cacheName)
	s.execRecorder.Add("Configuration", configString(b.config))

	s.tracer = trace.NewDBTracer(s.dataRecorder, s.id)
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		s.monitor.WithBrowser()
	}

	s.monitor.RegisterTarget(guardedEngine{s})
	s.monitor.RegisterController(s)
	s.monitor.StartServer()
}
