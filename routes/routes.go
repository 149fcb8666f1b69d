package routes

import (
	"encoding/json"
	"net/http"

	"vidbatch/logger"
	"vidbatch/metrics"
)

// Settings are the server-wide values handlers need
type Settings struct {
	JWTSecret string // empty disables bearer-token checks
	JWTIssuer string
	WorkDir   string
}

var settings Settings

// Configure installs settings for every handler.
func Configure(s Settings) {
	settings = s
}

// NewMux registers every route of the HTTP surface.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", FormHandler)
	mux.HandleFunc("/batch", requireToken(BatchHandler))
	mux.HandleFunc("/history", HistoryHandler)
	mux.HandleFunc("/failures", FailuresHandler)
	mux.HandleFunc("/destinations", requireToken(DestinationsHandler))
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/version", VersionHandler)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}
