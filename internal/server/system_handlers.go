package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// systemStatus is the GET /api/system/status payload
type systemStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemPercent    float64 `json:"mem_percent"`
	Contexts      int     `json:"contexts"`
	PolicyKinds   int     `json:"policy_kinds"`
	Scenarios     int     `json:"scenarios"`
}

func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := s.systemStats()

	s.writeJSON(w, http.StatusOK, systemStatus{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemPercent:    memPercent,
		Contexts:      len(s.regions.List()),
		PolicyKinds:   len(s.registry.Kinds()),
		Scenarios:     len(s.library.List()),
	})
}

// systemStats samples CPU over a short window so the endpoint stays fast
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
