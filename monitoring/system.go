package monitoring

import (
	"bytes"
	"net/http"
	"os"
	"runtime/pprof"
	"time"

	"github.com/google/pprof/profile"
	"github.com/shirou/gopsutil/process"
)

// profileDuration is how long a CPU profile requested from the dashboard
// samples the simulator.
const profileDuration = time.Second

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) resources(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	cpu, err := p.CPUPercent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	mem, err := p.MemoryInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, resourceRsp{CPUPercent: cpu, MemorySize: mem.RSS})
}

func (m *Monitor) profile(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	select {
	case <-time.After(profileDuration):
	case <-r.Context().Done():
	}

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, prof)
}
