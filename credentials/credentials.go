package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"vidbatch/logger"
	"vidbatch/models"
	"vidbatch/utils"

	"github.com/cockroachdb/pebble"
)

var ErrUnknownDestination = errors.New("unknown destination")

var db *pebble.DB

// OpenDB opens the Pebble DB for destination profiles at the specified path
func OpenDB(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		logger.Errorf("Failed to open Pebble DB: %v", err)
		return err
	}
	return nil
}

// CloseDB closes the DB
func CloseDB() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// RegisterDestination validates dest, stores it under a fresh random key and
// returns that key.
func RegisterDestination(dest models.Destination) (string, error) {
	if err := utils.ValidateDestination(dest); err != nil {
		return "", err
	}
	key, err := utils.GenerateRandomHex(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	if err := StoreDestination(key, dest); err != nil {
		return "", err
	}
	return key, nil
}

// GetDestination loads the profile stored under key
func GetDestination(key string) (models.Destination, error) {
	if db == nil {
		return models.Destination{}, fmt.Errorf("destination store not initialized")
	}
	value, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return models.Destination{}, fmt.Errorf("%w: %s", ErrUnknownDestination, key)
		}
		return models.Destination{}, err
	}
	defer closer.Close()

	var dest models.Destination
	if err := json.Unmarshal(value, &dest); err != nil {
		return models.Destination{}, err
	}
	return dest, nil
}

// StoreDestination stores the profile under the given key
func StoreDestination(key string, dest models.Destination) error {
	if db == nil {
		return fmt.Errorf("destination store not initialized")
	}
	encoded, err := json.Marshal(dest)
	if err != nil {
		return err
	}
	return db.Set([]byte(key), encoded, pebble.Sync)
}

// DeleteDestination deletes the profile for the given key
func DeleteDestination(key string) error {
	if db == nil {
		return fmt.Errorf("destination store not initialized")
	}
	return db.Delete([]byte(key), pebble.Sync)
}
