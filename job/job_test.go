package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vidbatch/encoder"
	"vidbatch/encoder/enctest"
	"vidbatch/failures"
	"vidbatch/models"
	"vidbatch/success"
)

type fixture struct {
	in, out, work string
	ff            *enctest.FFmpeg
}

// newFixture installs fake encoders; animated sources report frames frames
// of a 2x2 image unless counts says otherwise.
func newFixture(t *testing.T, ff *enctest.FFmpeg, frames int, counts map[string]int) fixture {
	t.Helper()
	enctest.SkipUnlessPOSIX(t)

	seed := filepath.Join(t.TempDir(), "seed.png")
	enctest.WritePNG(t, seed, 2, 2)
	magick := enctest.NewMagickCounts(t, frames, counts, seed)
	encoder.RegisterDefaults(encoder.Tools{FFmpeg: ff.Path, Magick: magick})

	return fixture{in: t.TempDir(), out: t.TempDir(), work: t.TempDir(), ff: ff}
}

func (f fixture) touch(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(f.in, name), []byte("src"), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
}

func (f fixture) params(fps int) models.JobParams {
	return models.JobParams{InputDir: f.in, OutputDir: f.out, FrameRate: fps}
}

func initStores(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	if err := success.Init(filepath.Join(dir, "history.db")); err != nil {
		t.Fatalf("history store: %v", err)
	}
	if err := failures.Init(filepath.Join(dir, "failures.db")); err != nil {
		t.Fatalf("failure store: %v", err)
	}
	t.Cleanup(func() {
		success.Close()
		failures.Close()
	})
}

func mustRun(t *testing.T, params models.JobParams, opts Options) Outcome {
	t.Helper()
	o, err := Run(context.Background(), params, opts)
	if err != nil {
		t.Fatalf("Run refused: %v", err)
	}
	return o
}

func TestRunMissingDirectories(t *testing.T) {
	o := mustRun(t, models.JobParams{InputDir: t.TempDir(), FrameRate: 30}, Options{})
	if o.Kind != OutcomeMissingDirectories || !o.IsWarning() {
		t.Errorf("Expected missing directories warning, got %v", o.Kind)
	}
	if o.Message != "Please select both input and output folders." {
		t.Errorf("Unexpected message %q", o.Message)
	}
	if s, _ := GetState(); s != StateAborted {
		t.Errorf("Expected aborted state, got %s", s)
	}
}

func TestRunNoMatchingFiles(t *testing.T) {
	f := newFixture(t, enctest.NewFFmpeg(t), 3, nil)
	f.touch(t, "notes.txt", "clip.MP4")

	o := mustRun(t, f.params(30), Options{WorkDir: f.work})
	if o.Kind != OutcomeNoMatchingFiles {
		t.Fatalf("Expected no matching files, got %v", o.Kind)
	}
	if len(f.ff.Calls(t)) != 0 {
		t.Error("No encoder should run")
	}
	entries, _ := os.ReadDir(f.out)
	if len(entries) != 0 {
		t.Errorf("Output folder should stay empty, has %d entries", len(entries))
	}
}

func TestRunMixedFolder(t *testing.T) {
	f := newFixture(t, enctest.NewFFmpeg(t), 3, nil)
	f.touch(t, "clip.mp4", "anim.webp", "notes.txt")
	initStores(t)

	o := mustRun(t, f.params(24), Options{WorkDir: f.work})
	if o.Kind != OutcomeCompleted || o.Message != "Processing completed." {
		t.Fatalf("Expected completion, got %v: %v", o.Kind, o.Err)
	}

	// anim.webp sorts before clip.mp4
	want := []string{filepath.Join(f.out, "anim.mp4"), filepath.Join(f.out, "clip.mp4")}
	if len(o.Outputs) != 2 || o.Outputs[0] != want[0] || o.Outputs[1] != want[1] {
		t.Errorf("Unexpected outputs %v", o.Outputs)
	}
	info, err := os.Stat(want[0])
	if err != nil || info.Size() != 3*2*2*3 {
		t.Errorf("anim.mp4 should hold 3 frames, stat=%v err=%v", info, err)
	}
	if _, err := os.Stat(filepath.Join(f.out, "notes.mp4")); !os.IsNotExist(err) {
		t.Error("notes.txt must be ignored")
	}

	entries, _ := os.ReadDir(f.work)
	if len(entries) != 0 {
		t.Errorf("Working area should be removed, found %d entries", len(entries))
	}

	record, err := success.GetBatch(o.BatchID)
	if err != nil || record == nil {
		t.Fatalf("Batch should be recorded: %v", err)
	}
	if record.FileCount != 2 || len(record.Outputs) != 2 {
		t.Errorf("Unexpected record %+v", record)
	}
	if s, last := GetState(); s != StateCompleted || last == nil || last.BatchID != o.BatchID {
		t.Errorf("Unexpected state %s", s)
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t, enctest.NewFailingFFmpeg(t, 1), 3, nil)
	f.touch(t, "a.mp4", "b.mp4")
	initStores(t)

	o := mustRun(t, f.params(30), Options{WorkDir: f.work})
	if o.Kind != OutcomeFailed {
		t.Fatalf("Expected failure, got %v", o.Kind)
	}
	var toolErr *encoder.ToolError
	if !errors.As(o.Err, &toolErr) || toolErr.ExitCode != 1 {
		t.Errorf("Expected tool error with exit 1, got %v", o.Err)
	}
	if o.FailedFile != filepath.Join(f.in, "a.mp4") {
		t.Errorf("Unexpected failed file %s", o.FailedFile)
	}
	if calls := f.ff.Calls(t); len(calls) != 1 {
		t.Errorf("b.mp4 must never be attempted, calls=%v", calls)
	}
	if s, _ := GetState(); s != StateAborted {
		t.Errorf("Expected aborted state, got %s", s)
	}

	record, err := failures.GetFailure(o.BatchID)
	if err != nil || record == nil {
		t.Fatalf("Failure should be recorded: %v", err)
	}
	if !strings.Contains(record.Error, "exit status 1") {
		t.Errorf("Unexpected recorded error %q", record.Error)
	}
	entries, _ := os.ReadDir(f.work)
	if len(entries) != 0 {
		t.Error("Working area should be removed after a failure")
	}
}

func TestRunKeepsEarlierOutputs(t *testing.T) {
	enctest.SkipUnlessPOSIX(t)
	ff := enctest.NewFFmpeg(t)
	encoder.RegisterDefaults(encoder.Tools{FFmpeg: ff.Path, Magick: filepath.Join(t.TempDir(), "magick")})
	f := fixture{in: t.TempDir(), out: t.TempDir(), work: t.TempDir(), ff: ff}
	f.touch(t, "a.mp4", "b.webp")
	initStores(t)

	o := mustRun(t, f.params(30), Options{WorkDir: f.work})
	if o.Kind != OutcomeFailed || o.FailedFile != filepath.Join(f.in, "b.webp") {
		t.Fatalf("Expected failure on b.webp, got %v on %q", o.Kind, o.FailedFile)
	}
	if _, err := os.Stat(filepath.Join(f.out, "a.mp4")); err != nil {
		t.Error("Output written before the failure must be kept")
	}
	record, err := failures.GetFailure(o.BatchID)
	if err != nil || record == nil || len(record.Completed) != 1 {
		t.Errorf("Failure record should list the finished output: %+v %v", record, err)
	}
}

func TestRunStillImageSkipped(t *testing.T) {
	f := newFixture(t, enctest.NewFFmpeg(t), 1, nil)
	f.touch(t, "still.webp")

	o := mustRun(t, f.params(30), Options{WorkDir: f.work})
	if o.Kind != OutcomeCompleted {
		t.Fatalf("Expected completion, got %v", o.Kind)
	}
	if len(o.Outputs) != 0 || len(o.Skipped) != 1 {
		t.Errorf("Expected one skipped source, got outputs=%v skipped=%v", o.Outputs, o.Skipped)
	}
	if _, err := os.Stat(filepath.Join(f.out, "still.mp4")); !os.IsNotExist(err) {
		t.Error("A still image must not produce output")
	}
}

func TestRunFrameRates(t *testing.T) {
	f := newFixture(t, enctest.NewFFmpeg(t), 2, nil)
	f.touch(t, "a.webp", "b.mov")

	mustRun(t, f.params(12), Options{WorkDir: f.work})
	args := f.ff.Args(t)
	if len(args) != 2 {
		t.Fatalf("Expected two encoder runs, got %d", len(args))
	}
	if !strings.Contains(args[0], "-framerate 12") {
		t.Errorf("Animated route should use the chosen rate: %s", args[0])
	}
	if !strings.Contains(args[1], "fps=30") || strings.Contains(args[1], "-framerate") {
		t.Errorf("Transcode route should force 30 fps: %s", args[1])
	}
}

func TestRunAnimatedSourcesDoNotShareFrames(t *testing.T) {
	f := newFixture(t, enctest.NewFFmpeg(t), 1, map[string]int{"a.webp": 5, "b.webp": 2})
	f.touch(t, "a.webp", "b.webp")

	o := mustRun(t, f.params(30), Options{WorkDir: f.work})
	if o.Kind != OutcomeCompleted {
		t.Fatalf("Expected completion, got %v: %v", o.Kind, o.Err)
	}
	for name, frames := range map[string]int64{"a.mp4": 5, "b.mp4": 2} {
		info, err := os.Stat(filepath.Join(f.out, name))
		if err != nil || info.Size() != frames*2*2*3 {
			t.Errorf("%s should hold %d frames, stat=%v err=%v", name, frames, info, err)
		}
	}
}

func TestRunRejectsInvalidRate(t *testing.T) {
	for _, fps := range []int{0, 121} {
		_, err := Run(context.Background(), models.JobParams{InputDir: "a", OutputDir: "b", FrameRate: fps}, Options{})
		if !errors.Is(err, models.ErrInvalidFrameRate) {
			t.Errorf("fps=%d: expected ErrInvalidFrameRate, got %v", fps, err)
		}
	}
}

func TestStartWhileBusy(t *testing.T) {
	if err := begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer finish(Outcome{Kind: OutcomeCompleted})

	if _, _, err := Start(models.JobParams{InputDir: "a", OutputDir: "b", FrameRate: 30}, Options{}); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if s, _ := GetState(); s != StateProcessing {
		t.Errorf("Expected processing state, got %s", s)
	}
}

func TestStartDeliversOutcome(t *testing.T) {
	f := newFixture(t, enctest.NewFFmpeg(t), 3, nil)
	f.touch(t, "clip.mkv")

	id, done, err := Start(f.params(30), Options{WorkDir: f.work})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if id == "" {
		t.Error("Start should return the batch id")
	}
	select {
	case o, ok := <-done:
		if !ok || o.Kind != OutcomeCompleted || len(o.Outputs) != 1 {
			t.Errorf("Unexpected outcome %+v", o)
		}
		if o.BatchID != id {
			t.Errorf("Outcome id %q does not match started id %q", o.BatchID, id)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Outcome was never delivered")
	}
	if _, ok := <-done; ok {
		t.Error("Channel should be closed after the outcome")
	}
}

func TestRunPublishesToLocalDestination(t *testing.T) {
	f := newFixture(t, enctest.NewFFmpeg(t), 3, nil)
	f.touch(t, "clip.avi")
	mirror := t.TempDir()
	dest := &models.Destination{Type: "local", Settings: map[string]string{"baseDir": mirror}}

	o := mustRun(t, f.params(30), Options{WorkDir: f.work, Destination: dest})
	if o.PublishErr != nil || len(o.Published) != 1 {
		t.Fatalf("Expected one published file, got %v (%v)", o.Published, o.PublishErr)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	dest.Settings["baseDir"] = blocker
	o = mustRun(t, f.params(30), Options{WorkDir: f.work, Destination: dest})
	if o.Kind != OutcomeCompleted || o.PublishErr == nil {
		t.Errorf("Publish failure should not fail the batch: kind=%v err=%v", o.Kind, o.PublishErr)
	}
}
