// Package monitoring serves the state of running caches over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A Target is a cache that the monitor can inspect. Its methods are called
// from HTTP handlers, so implementations must be safe for concurrent use.
type Target interface {
	Name() string
	Config() cache.Config
	Stats() cache.Statistics
	Lines() []cache.LineState
}

// A Controller can pause and resume a simulation.
type Controller interface {
	Pause()
	Continue()
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	portNumber  int
	openBrowser bool
	targets     []Target
	controller  Controller
	server      *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open its address in the default browser once
// the server starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterTarget registers a cache to be monitored.
func (m *Monitor) RegisterTarget(t Target) {
	m.targets = append(m.targets, t)
}

// RegisterController registers the object that pauses and resumes the
// simulation.
func (m *Monitor) RegisterController(c Controller) {
	m.controller = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitoring API.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.resume)
	r.HandleFunc("/api/list_caches", m.listCaches)
	r.HandleFunc("/api/cache/{name}", m.cacheDetails)
	r.HandleFunc("/api/field/{name}/{field}", m.fieldValue)
	r.HandleFunc("/api/stats/{name}", m.stats)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			dieOnErr(err)
		}
	}()

	if m.openBrowser {
		err = browser.OpenURL(url + "/api/list_caches")
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	if m.controller == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	m.controller.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) resume(w http.ResponseWriter, _ *http.Request) {
	if m.controller == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	m.controller.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) listCaches(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.targets))
	for _, t := range m.targets {
		names = append(names, t.Name())
	}

	writeJSON(w, names)
}

// cacheSnapshot is what the monitor serializes for a cache.
type cacheSnapshot struct {
	Name   string
	Config cache.Config
	Stats  cache.Statistics
	Lines  []cache.LineState
}

func snapshotOf(t Target) *cacheSnapshot {
	return &cacheSnapshot{
		Name:   t.Name(),
		Config: t.Config(),
		Stats:  t.Stats(),
		Lines:  t.Lines(),
	}
}

func (m *Monitor) cacheDetails(w http.ResponseWriter, r *http.Request) {
	t := m.findTargetOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(snapshotOf(t))
	serializer.SetMaxDepth(3)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	t := m.findTargetOr404(w, vars["name"])
	if t == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(snapshotOf(t))
	serializer.SetMaxDepth(1)

	err := serializer.SetEntryPoint(strings.Split(vars["field"], "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type statsRsp struct {
	cache.Statistics
	Misses uint64 `json:"misses"`
	// HitRate is null before the first access.
	HitRate *float64 `json:"hit_rate"`
}

func (m *Monitor) stats(w http.ResponseWriter, r *http.Request) {
	t := m.findTargetOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	s := t.Stats()
	rsp := statsRsp{
		Statistics: s,
		Misses:     s.Misses(),
	}

	if s.Accesses > 0 {
		hitRate := s.HitRate()
		rsp.HitRate = &hitRate
	}

	writeJSON(w, rsp)
}

func (m *Monitor) findTargetOr404(
	w http.ResponseWriter,
	name string,
) Target {
	for _, t := range m.targets {
		if t.Name() == name {
			return t
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Cache not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
