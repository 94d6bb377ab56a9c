// Package config loads runtime settings for the ingestion engine from the
// environment, following the defaults documented in the storage, batch and
// dispatcher layers.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	DBMinConnections int
	DBMaxConnections int

	WordCacheSize int
	BatchSize     int

	ExtractionFolder string
	CheckpointDir    string

	ThreadMaxWorkers int
	ThreadMonitoring bool

	// PerTaskTimeout bounds a single dispatcher task.
	PerTaskTimeout time.Duration
	// ShutdownTimeout bounds the final batch-buffer drain at the end of a
	// run. The dispatcher does not read it: on a Ctrl-C it records every
	// in-flight task as timed out at once, without a grace period.
	ShutdownTimeout time.Duration

	// CircuitWindow/CircuitThreshold configure the failure governor.
	CircuitWindow    int
	CircuitThreshold int
}

func Load() Config {
	cfg := Config{
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envOr("DB_NAME", "ingestor"),
		DBUser:     envOr("DB_USER", "ingestor"),
		DBPassword: os.Getenv("DB_PASSWORD"),

		DBMinConnections: envInt("DB_MIN_CONNECTIONS", 2),
		DBMaxConnections: envInt("DB_MAX_CONNECTIONS", 10),

		WordCacheSize: envInt("WORD_CACHE_SIZE", 50_000),
		BatchSize:     envInt("BATCH_SIZE", 500),

		ExtractionFolder: envOr("EXTRACTION_FOLDER", os.TempDir()),
		CheckpointDir:    envOr("CHECKPOINT_DIR", ".checkpoints"),

		ThreadMaxWorkers: envInt("THREAD_MAX_WORKERS", 4),
		ThreadMonitoring: envBool("THREAD_MONITORING", false),

		PerTaskTimeout:  envDuration("PER_TASK_TIMEOUT", 3600*time.Second),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		CircuitWindow:    envInt("CIRCUIT_WINDOW", 100),
		CircuitThreshold: envInt("CIRCUIT_THRESHOLD", 50),
	}

	if cfg.DBMinConnections <= 0 {
		cfg.DBMinConnections = 2
	}
	if cfg.DBMaxConnections <= 0 {
		cfg.DBMaxConnections = 10
	}
	if cfg.DBMaxConnections < cfg.DBMinConnections {
		cfg.DBMaxConnections = cfg.DBMinConnections
	}
	if cfg.WordCacheSize <= 0 {
		cfg.WordCacheSize = 50_000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.ThreadMaxWorkers <= 0 {
		cfg.ThreadMaxWorkers = 4
	}
	if cfg.PerTaskTimeout <= 0 {
		cfg.PerTaskTimeout = 3600 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.CircuitWindow <= 0 {
		cfg.CircuitWindow = 100
	}
	if cfg.CircuitThreshold <= 0 {
		cfg.CircuitThreshold = 50
	}

	return cfg
}

// IOWorkers is the size of the I/O executor pool.
func (c Config) IOWorkers() int {
	return c.ThreadMaxWorkers
}

// CPUWorkers is the size of the CPU executor pool, capped at 4 regardless of
// ThreadMaxWorkers so that PDF/OCR/archive fan-out stays bounded.
func (c Config) CPUWorkers() int {
	if c.ThreadMaxWorkers < 4 {
		return c.ThreadMaxWorkers
	}
	return 4
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
