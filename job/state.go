package job

import (
	"errors"
	"sync"

	"vidbatch/metrics"
)

// BatchState is the orchestrator state seen by the selection surface
type BatchState int

const (
	StateIdle BatchState = iota
	StateProcessing
	StateCompleted
	StateAborted
)

func (s BatchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when a batch is requested while one is processing.
var ErrBusy = errors.New("a batch is already processing")

var (
	mu          sync.RWMutex
	state       = StateIdle
	lastOutcome *Outcome
)

// GetState returns the current state and the outcome of the last finished
// batch, if any.
func GetState() (BatchState, *Outcome) {
	mu.RLock()
	defer mu.RUnlock()
	if lastOutcome == nil {
		return state, nil
	}
	o := *lastOutcome
	return state, &o
}

// begin moves to processing, refusing if a batch is already running.
func begin() error {
	mu.Lock()
	defer mu.Unlock()
	if state == StateProcessing {
		return ErrBusy
	}
	state = StateProcessing
	metrics.BatchInProgress.Set(1)
	return nil
}

// finish records the terminal state of the batch that just ended.
func finish(o Outcome) {
	mu.Lock()
	defer mu.Unlock()
	if o.Kind == OutcomeCompleted {
		state = StateCompleted
	} else {
		state = StateAborted
	}
	lastOutcome = &o
	metrics.BatchInProgress.Set(0)
}
