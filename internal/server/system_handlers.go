package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/adaptivebank/genui/internal/database"
)

// SystemHandlers exposes host and database health for the debug dashboard.
type SystemHandlers struct {
	log        zerolog.Logger
	behaviorDB *database.DB
	profileDB  *database.DB
}

// NewSystemHandlers creates the system monitoring handlers.
func NewSystemHandlers(log zerolog.Logger, behaviorDB, profileDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("component", "system_handlers").Logger(),
		behaviorDB: behaviorDB,
		profileDB:  profileDB,
	}
}

// HandleSystemHealth handles GET /api/system/health
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := map[string]any{
		"status":      "ok",
		"cpu_percent": cpuPercent,
		"mem_percent": memPercent,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	if rss := h.getProcessRSS(); rss > 0 {
		response["process_rss_mb"] = float64(rss) / 1024 / 1024
	}

	for name, db := range map[string]*database.DB{
		"behavior_db": h.behaviorDB,
		"profile_db":  h.profileDB,
	} {
		if err := db.QuickCheck(r.Context()); err != nil {
			response[name] = "unreachable"
			response["status"] = "degraded"
		} else {
			response[name] = "ok"
		}
	}

	h.writeJSON(w, response)
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	response := make(map[string]any, 2)

	for name, db := range map[string]*database.DB{
		"behavior": h.behaviorDB,
		"profile":  h.profileDB,
	} {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			response[name] = map[string]string{"error": "unavailable"}
			continue
		}
		response[name] = map[string]any{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
		}
	}

	h.writeJSON(w, response)
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a 100ms sampling interval to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// getProcessRSS returns this process's resident memory in bytes, 0 on failure.
func (h *SystemHandlers) getProcessRSS() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil || memInfo == nil {
		return 0
	}
	return memInfo.RSS
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
