package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves health and resource-usage endpoints.
type SystemHandlers struct {
	log     zerolog.Logger
	started time.Time
}

// NewSystemHandlers creates system handlers.
func NewSystemHandlers(log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{log: log, started: time.Now()}
}

// HandleHealth reports liveness.
// GET /api/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

// HandleStats reports CPU and memory usage.
// GET /api/system/stats
func (h *SystemHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()
	h.writeJSON(w, map[string]interface{}{
		"cpu_percent": cpuPct,
		"mem_percent": memPct,
	})
}

// systemStats samples CPU over 100ms to keep the endpoint fast.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to read CPU percentage")
		cpuPercent = []float64{0}
	}
	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to read memory statistics")
		return cpuAvg, 0
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}
