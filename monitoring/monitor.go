// Package monitoring turns a running simulation into a web server, so that
// users can inspect components, buffers and network statistics while the
// simulation runs.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/hansikaweerasena/gem5-multi/monitoring/web"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/stats"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// Ports below this are left to the system. Asking for one picks a random
// port instead.
const minPort = 1024

// Monitor serves the state of a simulation over HTTP and lets users pause and
// resume it.
type Monitor struct {
	engine     sim.Engine
	components []sim.Component
	buffers    []sim.BufferStatus
	stats      *stats.Stats
	port       int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a Monitor that listens on a random port.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port the monitor listens on.
func (m *Monitor) WithPortNumber(port int) *Monitor {
	if port != 0 && port < minPort {
		slog.Warn("monitor port is reserved, using a random port",
			"port", port)
		port = 0
	}

	m.port = port

	return m
}

// RegisterEngine sets the engine that the monitor controls.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterStats sets the network statistics that the monitor reports.
func (m *Monitor) RegisterStats(s *stats.Stats) {
	m.stats = s
}

// RegisterComponent makes a component and its buffers visible.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)
	m.buffers = append(m.buffers, buffersOf(c)...)
}

// CreateProgressBar adds a bar to the dashboard.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:        sim.UniqueID(),
		name:      name,
		startTime: time.Now(),
		total:     total,
	}

	m.progressBarsLock.Lock()
	m.progressBars = append(m.progressBars, bar)
	m.progressBarsLock.Unlock()

	return bar
}

// CompleteProgressBar removes a bar from the dashboard.
func (m *Monitor) CompleteProgressBar(bar *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	kept := m.progressBars[:0]
	for _, b := range m.progressBars {
		if b != bar {
			kept = append(kept, b)
		}
	}

	m.progressBars = kept
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/pause", m.pauseEngine)
	api.HandleFunc("/continue", m.continueEngine)
	api.HandleFunc("/now", m.now)
	api.HandleFunc("/tick/{name}", m.tick)
	api.HandleFunc("/list_components", m.listComponents)
	api.HandleFunc("/component/{name}", m.componentDetails)
	api.HandleFunc("/field/{json}", m.fieldValue)
	api.HandleFunc("/hangdetector/buffers", m.bufferLevels)
	api.HandleFunc("/progress", m.listProgressBars)
	api.HandleFunc("/stats", m.reportStats)
	api.HandleFunc("/resource", m.resources)
	api.HandleFunc("/profile", m.profile)

	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// dashboard.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.port))
	if err != nil {
		return "", fmt.Errorf("monitor cannot listen on port %d: %w", m.port, err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	slog.Info("monitoring simulation", "url", url)

	server := &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil {
			slog.Error("monitor stopped", "err", err)
		}
	}()

	return url, nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]ProgressStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}

	writeJSON(w, bars)
}

type vnetRsp struct {
	VNet int `json:"vnet"`
	stats.VNetStats
}

type statsRsp struct {
	VNets     []vnetRsp            `json:"vnets"`
	TotalHops uint64               `json:"total_hops"`
	Latency   stats.LatencySummary `json:"latency"`
}

func (m *Monitor) reportStats(w http.ResponseWriter, _ *http.Request) {
	if m.stats == nil {
		http.Error(w, "no statistics registered", http.StatusNotFound)
		return
	}

	rsp := statsRsp{
		TotalHops: m.stats.TotalHops(),
		Latency:   m.stats.PacketLatencySummary(),
	}

	for v := 0; v < m.stats.NumVNets(); v++ {
		rsp.VNets = append(rsp.VNets, vnetRsp{v, m.stats.VNet(v)})
	}

	writeJSON(w, rsp)
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		slog.Debug("monitor response dropped", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		slog.Warn("monitor request failed", "code", code, "err", err)
	}

	http.Error(w, err.Error(), code)
}
