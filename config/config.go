package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting of vidbatch. Values come from VIDBATCH_*
// environment variables; unset variables fall back to the defaults below.
type Config struct {
	DataDir string `env:"VIDBATCH_DATA_DIR" envDefault:"./data"`

	// Explicit encoder locations. A bare name is resolved on PATH.
	FFmpegPath string `env:"VIDBATCH_FFMPEG_PATH" envDefault:"ffmpeg"`
	MagickPath string `env:"VIDBATCH_MAGICK_PATH" envDefault:"magick"`

	// WorkDir is the parent of per-batch working areas. Empty means os.TempDir().
	WorkDir string `env:"VIDBATCH_WORK_DIR"`

	ListenAddr string `env:"VIDBATCH_LISTEN_ADDR" envDefault:":8080"`

	LogFile  string `env:"VIDBATCH_LOG_FILE"`
	LogLevel string `env:"VIDBATCH_LOG_LEVEL" envDefault:"info"`

	JWTSecret string `env:"VIDBATCH_JWT_SECRET"`
	JWTIssuer string `env:"VIDBATCH_JWT_ISSUER"`

	HistoryRetention time.Duration `env:"VIDBATCH_HISTORY_RETENTION" envDefault:"720h"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetDataDir returns the data directory, read from the environment on every
// call so tests can point it elsewhere.
func GetDataDir() string {
	if dir := os.Getenv("VIDBATCH_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetHistoryDBPath returns the path of the completed-batch store.
// Path: {DATA_DIR}/history.db
func GetHistoryDBPath() string {
	return filepath.Join(GetDataDir(), "history.db")
}

// GetFailuresDBPath returns the path of the failed-batch store.
// Path: {DATA_DIR}/failures.db
func GetFailuresDBPath() string {
	return filepath.Join(GetDataDir(), "failures.db")
}

// GetDestinationsDBPath returns the path of the publish destination store.
func GetDestinationsDBPath() string {
	return filepath.Join(GetDataDir(), "destinations.db")
}
