package success

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// BatchRecord represents a batch that finished without a fatal failure
type BatchRecord struct {
	BatchID   string        `json:"batch_id"`
	Timestamp time.Time     `json:"timestamp"`
	Outputs   []string      `json:"outputs"`    // files written to the output folder
	Skipped   []string      `json:"skipped"`    // sources that produced nothing
	FileCount int           `json:"file_count"` // number of matching sources
	Duration  time.Duration `json:"duration"`
}

var db *pebble.DB

// Init initializes the history store
func Init(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	return nil
}

// Close closes the history store
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// StoreBatch records a completed batch under its id
func StoreBatch(record BatchRecord) error {
	if db == nil {
		return fmt.Errorf("history store not initialized")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal batch record: %w", err)
	}
	return db.Set([]byte(record.BatchID), data, pebble.Sync)
}

// GetBatch retrieves a record by batch id; nil when absent
func GetBatch(batchID string) (*BatchRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("history store not initialized")
	}

	data, closer, err := db.Get([]byte(batchID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	var record BatchRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch record: %w", err)
	}
	return &record, nil
}

// DeleteBatch removes a record
func DeleteBatch(batchID string) error {
	if db == nil {
		return fmt.Errorf("history store not initialized")
	}
	return db.Delete([]byte(batchID), pebble.Sync)
}

// ListBatches returns all records in key order. Batch ids are time-ordered,
// so this is oldest first.
func ListBatches() ([]BatchRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("history store not initialized")
	}

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []BatchRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var record BatchRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // Skip invalid records
		}
		records = append(records, record)
	}
	return records, iter.Error()
}

// CleanupOldRecords removes records older than maxAge
func CleanupOldRecords(maxAge time.Duration) error {
	if db == nil {
		return fmt.Errorf("history store not initialized")
	}

	cutoff := time.Now().Add(-maxAge)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var record BatchRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue
		}
		if record.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			keysToDelete = append(keysToDelete, key)
		}
	}
	if err := iter.Close(); err != nil {
		return err
	}

	for _, key := range keysToDelete {
		if err := db.Delete(key, pebble.Sync); err != nil {
			return fmt.Errorf("failed to delete old batch record: %w", err)
		}
	}
	return nil
}

// CheckHealth performs a basic read against the store
func CheckHealth() error {
	if db == nil {
		return fmt.Errorf("history database not initialized")
	}

	_, closer, err := db.Get([]byte("__health_check__"))
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}
