package job

import (
	"time"
)

// OutcomeKind is what the operator is told when a batch ends
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeMissingDirectories
	OutcomeNoMatchingFiles
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeMissingDirectories:
		return "missing_directories"
	case OutcomeNoMatchingFiles:
		return "no_matching_files"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the single message a batch delivers when it ends.
type Outcome struct {
	BatchID    string
	Kind       OutcomeKind
	Message    string
	Outputs    []string // outputs written, in processing order
	Skipped    []string // sources that produced no output (still images)
	FailedFile string   // source being converted when the batch stopped
	Published  []string
	Duration   time.Duration
	Err        error // set for OutcomeFailed
	PublishErr error // publishing problems never fail a batch
}

// IsWarning reports the two configuration outcomes where nothing was converted.
func (o Outcome) IsWarning() bool {
	return o.Kind == OutcomeMissingDirectories || o.Kind == OutcomeNoMatchingFiles
}
