package routes

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"vidbatch/job"
	"vidbatch/logger"
	"vidbatch/success"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	GoVersion  string    `json:"go_version"`
	Uptime     string    `json:"uptime"`
	StartTime  string    `json:"start_time"`
	BatchState string    `json:"batch_state"`
	Store      string    `json:"store"`
}

var startTime = time.Now()

// formatUptime formats a duration into days, hours, minutes, seconds
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

// HealthHandler reports liveness, the batch state and whether the history
// store answers. An unreachable store turns the response into a 503.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Health check request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, _ := job.GetState()
	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Version:    version,
		GoVersion:  runtime.Version(),
		Uptime:     formatUptime(time.Since(startTime)),
		StartTime:  startTime.Format("2006-01-02 15:04:05 MST"),
		BatchState: state.String(),
		Store:      "ok",
	}

	status := http.StatusOK
	if err := success.CheckHealth(); err != nil {
		logger.Warnf("Health check: %v", err)
		response.Status = "degraded"
		response.Store = err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}
