package routes

import (
	"net/http"

	"vidbatch/failures"
	"vidbatch/logger"
	"vidbatch/success"
)

// HistoryHandler returns one completed batch by ?id= or all of them
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		record, err := success.GetBatch(id)
		if err != nil {
			logger.Errorf("Failed to query history for batch %s: %v", id, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if record == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"batch_id": id,
				"status":   "not_found",
			})
			return
		}
		writeJSON(w, http.StatusOK, record)
		return
	}

	records, err := success.ListBatches()
	if err != nil {
		logger.Errorf("Failed to list history: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batches": records,
		"count":   len(records),
	})
}

// FailuresHandler returns one failed batch by ?id= or all of them
func FailuresHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		record, err := failures.GetFailure(id)
		if err != nil {
			logger.Errorf("Failed to query failure for batch %s: %v", id, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if record == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"batch_id": id,
				"status":   "not_found",
			})
			return
		}
		writeJSON(w, http.StatusOK, record)
		return
	}

	records, err := failures.ListFailures()
	if err != nil {
		logger.Errorf("Failed to list failures: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"failures": records,
		"count":    len(records),
	})
}
