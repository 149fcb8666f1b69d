package failures

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestFailureStore(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "test_failures.db")); err != nil {
		t.Fatalf("Failed to initialize failure store: %v", err)
	}
	defer Close()

	cause := errors.New("ffmpeg failed with exit status 1")
	if err := StoreFailure("batch-9", "/in/a.mp4", cause, []string{"/out/0.mp4"}); err != nil {
		t.Fatalf("Failed to store failure: %v", err)
	}

	record, err := GetFailure("batch-9")
	if err != nil {
		t.Fatalf("Failed to get failure: %v", err)
	}
	if record == nil {
		t.Fatal("Expected failure record, got nil")
	}
	if record.Error != cause.Error() || record.FailedFile != "/in/a.mp4" {
		t.Errorf("Unexpected record %+v", record)
	}
	if len(record.Completed) != 1 {
		t.Errorf("Expected completed outputs to be kept, got %v", record.Completed)
	}

	list, err := ListFailures()
	if err != nil || len(list) != 1 {
		t.Errorf("Expected one failure listed, got %d (%v)", len(list), err)
	}

	if err := CleanupOldRecords(time.Nanosecond); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if list, _ := ListFailures(); len(list) != 0 {
		t.Errorf("Expected cleanup to remove all records, %d remain", len(list))
	}
}

func TestGetMissingFailure(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "test_failures_missing.db")); err != nil {
		t.Fatalf("Failed to initialize failure store: %v", err)
	}
	defer Close()

	record, err := GetFailure("unknown")
	if err != nil || record != nil {
		t.Errorf("Expected nil, nil, got %v, %v", record, err)
	}
	if err := StoreFailure("no-cause", "", nil, nil); err != nil {
		t.Errorf("Storing without cause should work: %v", err)
	}
}
