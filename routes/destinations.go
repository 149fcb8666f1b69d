package routes

import (
	"encoding/json"
	"net/http"

	"vidbatch/credentials"
	"vidbatch/logger"
	"vidbatch/models"
	"vidbatch/utils"
)

// DestinationsHandler registers a publish destination on POST and removes
// one by ?key= on DELETE.
func DestinationsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var dest models.Destination
		if err := json.NewDecoder(r.Body).Decode(&dest); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := utils.ValidateDestination(dest); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		key, err := credentials.RegisterDestination(dest)
		if err != nil {
			logger.Errorf("Failed to store %s destination: %v", dest.Type, err)
			http.Error(w, "Failed to store destination", http.StatusInternalServerError)
			return
		}
		logger.Infof("Registered %s destination", dest.Type)
		writeJSON(w, http.StatusCreated, map[string]string{"key": key})

	case http.MethodDelete:
		key := r.URL.Query().Get("key")
		if key == "" {
			http.Error(w, "key parameter required", http.StatusBadRequest)
			return
		}
		if err := credentials.DeleteDestination(key); err != nil {
			logger.Errorf("Failed to delete destination %s: %v", key, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
