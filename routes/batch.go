package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vidbatch/credentials"
	"vidbatch/job"
	"vidbatch/logger"
	"vidbatch/models"
)

// batchRequest is the JSON body of POST /batch. The HTML form sends the same
// fields as input_dir, output_dir, fps and destination.
type batchRequest struct {
	InputDir    string `json:"input_dir"`
	OutputDir   string `json:"output_dir"`
	FrameRate   *int   `json:"fps"` // nil means the default
	Destination string `json:"destination,omitempty"` // key of a stored destination
}

// OutcomeResponse is the JSON form of a finished batch
type OutcomeResponse struct {
	BatchID    string   `json:"batch_id"`
	Outcome    string   `json:"outcome"`
	Message    string   `json:"message"`
	Outputs    []string `json:"outputs"`
	Skipped    []string `json:"skipped,omitempty"`
	FailedFile string   `json:"failed_file,omitempty"`
	Error      string   `json:"error,omitempty"`
	Published  []string `json:"published,omitempty"`
	PublishErr string   `json:"publish_error,omitempty"`
	Duration   string   `json:"duration"`
}

// StateResponse is returned by GET /batch
type StateResponse struct {
	State       string           `json:"state"`
	LastOutcome *OutcomeResponse `json:"last_outcome,omitempty"`
}

func newOutcomeResponse(o job.Outcome) *OutcomeResponse {
	resp := &OutcomeResponse{
		BatchID:    o.BatchID,
		Outcome:    o.Kind.String(),
		Message:    o.Message,
		Outputs:    o.Outputs,
		Skipped:    o.Skipped,
		FailedFile: o.FailedFile,
		Published:  o.Published,
		Duration:   o.Duration.Round(time.Millisecond).String(),
	}
	if resp.Outputs == nil {
		resp.Outputs = []string{}
	}
	if o.Err != nil {
		resp.Error = o.Err.Error()
	}
	if o.PublishErr != nil {
		resp.PublishErr = o.PublishErr.Error()
	}
	return resp
}

// BatchHandler starts a batch on POST and reports the orchestrator state on GET.
func BatchHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		state, last := job.GetState()
		resp := StateResponse{State: state.String()}
		if last != nil {
			resp.LastOutcome = newOutcomeResponse(*last)
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		startBatch(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func startBatch(w http.ResponseWriter, r *http.Request) {
	req, err := parseBatchRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := job.Options{WorkDir: settings.WorkDir}
	if req.Destination != "" {
		dest, err := credentials.GetDestination(req.Destination)
		if err != nil {
			if errors.Is(err, credentials.ErrUnknownDestination) {
				http.Error(w, "Unknown destination", http.StatusBadRequest)
				return
			}
			logger.Errorf("Failed to load destination %s: %v", req.Destination, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		opts.Destination = &dest
	}

	fps := models.DefaultFrameRate
	if req.FrameRate != nil {
		fps = *req.FrameRate
	}
	params := models.JobParams{InputDir: req.InputDir, OutputDir: req.OutputDir, FrameRate: fps}
	batchID, done, err := job.Start(params, opts)
	switch {
	case errors.Is(err, job.ErrBusy):
		http.Error(w, "A batch is already processing", http.StatusConflict)
		return
	case errors.Is(err, models.ErrInvalidFrameRate):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logger.Errorf("Failed to start batch: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	go func() {
		o := <-done
		logger.Infof("Batch %s finished: %s", o.BatchID, o.Message)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"batch_id": batchID,
		"status":   job.StateProcessing.String(),
		"message":  "Batch started",
	})
}

// parseBatchRequest accepts a JSON body or form fields. An absent rate is left
// nil; a rate that is sent is kept as is, zero included.
func parseBatchRequest(r *http.Request) (batchRequest, error) {
	var req batchRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid request body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form")
		}
		req.InputDir = r.PostFormValue("input_dir")
		req.OutputDir = r.PostFormValue("output_dir")
		req.Destination = r.PostFormValue("destination")
		if values, ok := r.PostForm["fps"]; ok && len(values) > 0 {
			fps, err := strconv.Atoi(strings.TrimSpace(values[0]))
			if err != nil {
				return req, fmt.Errorf("fps must be a whole number")
			}
			req.FrameRate = &fps
		}
	}
	return req, nil
}
