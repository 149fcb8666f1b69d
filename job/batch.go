package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"vidbatch/encoder"
	"vidbatch/failures"
	"vidbatch/logger"
	"vidbatch/metrics"
	"vidbatch/models"
	"vidbatch/scanner"
	"vidbatch/success"
	"vidbatch/utils"
	writerbackends "vidbatch/writerBackends"
)

const (
	msgCompleted          = "Processing completed."
	msgMissingDirectories = "Please select both input and output folders."
	msgNoMatchingFiles    = "No supported video files found in the input folder."
)

// Options are per-batch settings that do not come from the operator form
type Options struct {
	// WorkDir is the parent of the batch working area; empty means os.TempDir().
	WorkDir string
	// Destination, when set, receives a copy of every output of a completed batch.
	Destination *models.Destination
}

// Run converts every recognized file of params.InputDir synchronously and
// returns the outcome. The returned error is only set when the request is
// refused before anything starts (busy or invalid frame rate).
func Run(ctx context.Context, params models.JobParams, opts Options) (Outcome, error) {
	if err := params.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := begin(); err != nil {
		return Outcome{}, err
	}
	o := runBatch(ctx, utils.NewBatchID(), params, opts)
	finish(o)
	return o, nil
}

// Start dispatches one batch off the caller's goroutine and returns its id.
// The outcome is delivered on the returned channel, which is then closed. A
// started batch cannot be cancelled.
func Start(params models.JobParams, opts Options) (string, <-chan Outcome, error) {
	if err := params.Validate(); err != nil {
		return "", nil, err
	}
	if err := begin(); err != nil {
		return "", nil, err
	}

	batchID := utils.NewBatchID()
	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		o := runBatch(context.Background(), batchID, params, opts)
		finish(o)
		done <- o
	}()
	return batchID, done, nil
}

func runBatch(ctx context.Context, batchID string, params models.JobParams, opts Options) Outcome {
	o := Outcome{BatchID: batchID}
	started := time.Now()

	sources, err := scanner.Scan(params.InputDir, params.OutputDir)
	if err != nil {
		switch {
		case errors.Is(err, scanner.ErrMissingDirectories):
			o.Kind, o.Message = OutcomeMissingDirectories, msgMissingDirectories
		case errors.Is(err, scanner.ErrNoMatchingFiles):
			o.Kind, o.Message = OutcomeNoMatchingFiles, msgNoMatchingFiles
		default:
			o.Kind, o.Err = OutcomeFailed, err
			o.Message = "Processing failed: " + err.Error()
			recordFailure(o)
		}
		if scanner.IsWarning(err) {
			logger.Warnf("Batch %s not started: %s", o.BatchID, o.Message)
		} else {
			logger.Errorf("Batch %s failed: %v", o.BatchID, err)
		}
		metrics.BatchesTotal.WithLabelValues(o.Kind.String()).Inc()
		return o
	}

	logger.Infof("Batch %s: %d files from %s to %s at %d fps",
		o.BatchID, len(sources), params.InputDir, params.OutputDir, params.FrameRate)

	if err := convertAll(ctx, &o, sources, params, opts.WorkDir); err != nil {
		o.Kind, o.Err = OutcomeFailed, err
		o.Message = "Processing failed: " + err.Error()
		logger.Errorf("Batch %s aborted on %s: %v", o.BatchID, o.FailedFile, err)
	} else {
		o.Kind, o.Message = OutcomeCompleted, msgCompleted
		logger.Infof("Batch %s completed: %d outputs, %d skipped", o.BatchID, len(o.Outputs), len(o.Skipped))
	}
	o.Duration = time.Since(started)
	metrics.BatchDuration.Observe(o.Duration.Seconds())
	metrics.BatchesTotal.WithLabelValues(o.Kind.String()).Inc()

	if o.Kind == OutcomeFailed {
		recordFailure(o)
		return o
	}

	if opts.Destination != nil && len(o.Outputs) > 0 {
		o.Published, o.PublishErr = writerbackends.PublishFiles(ctx, *opts.Destination, o.Outputs)
		if o.PublishErr != nil {
			logger.Errorf("Batch %s: publishing stopped: %v", o.BatchID, o.PublishErr)
		}
	}
	recordSuccess(o, len(sources))
	return o
}

// convertAll processes sources in order and stops at the first failure. The
// batch working area is removed on every path.
func convertAll(ctx context.Context, o *Outcome, sources []models.SourceFile, params models.JobParams, workDir string) error {
	workRoot, err := os.MkdirTemp(workDir, "vidbatch-")
	if err != nil {
		return fmt.Errorf("failed to create working area: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workRoot); err != nil {
			logger.Errorf("Failed to remove working area %s: %v", workRoot, err)
		}
	}()

	for _, src := range sources {
		dst := scanner.OutputPath(params.OutputDir, src)
		res, err := convertOne(ctx, src, dst, params.FrameRate, workRoot)
		if err != nil {
			o.FailedFile = src.Path
			return err
		}
		if res.Frames > 0 {
			metrics.FramesStagedTotal.Add(float64(res.Frames))
		}
		if !res.Written {
			logger.Infof("%s produced no frames, skipped", src.Name)
			o.Skipped = append(o.Skipped, src.Path)
			metrics.FilesSkippedTotal.WithLabelValues(src.Kind.String()).Inc()
			continue
		}
		logger.Infof("Converted %s -> %s", src.Name, dst)
		o.Outputs = append(o.Outputs, dst)
		metrics.FilesConvertedTotal.WithLabelValues(src.Kind.String()).Inc()
	}
	return nil
}

// convertOne runs the strategy for src. Animated sources get their own frame
// folder under workRoot, removed as soon as the source is done.
func convertOne(ctx context.Context, src models.SourceFile, dst string, fps int, workRoot string) (encoder.Result, error) {
	enc, ok := encoder.Get(src.Kind)
	if !ok {
		return encoder.Result{}, fmt.Errorf("no encoder available for %s sources", src.Kind)
	}

	opts := encoder.EncodeOptions{FrameRate: fps}
	if src.Kind == models.KindAnimatedImage {
		frameDir, err := os.MkdirTemp(workRoot, "frames-")
		if err != nil {
			return encoder.Result{}, fmt.Errorf("failed to create frame folder: %w", err)
		}
		defer os.RemoveAll(frameDir)
		opts.WorkDir = frameDir
	}

	logger.Debugf("Converting %s as %s", src.Path, src.Kind)
	return enc(ctx, src.Path, dst, opts)
}

func recordSuccess(o Outcome, fileCount int) {
	record := success.BatchRecord{
		BatchID:   o.BatchID,
		Outputs:   o.Outputs,
		Skipped:   o.Skipped,
		FileCount: fileCount,
		Duration:  o.Duration,
	}
	if err := success.StoreBatch(record); err != nil {
		logger.Debugf("Batch %s not recorded: %v", o.BatchID, err)
	}
}

func recordFailure(o Outcome) {
	if err := failures.StoreFailure(o.BatchID, o.FailedFile, o.Err, o.Outputs); err != nil {
		logger.Debugf("Batch %s failure not recorded: %v", o.BatchID, err)
	}
}
