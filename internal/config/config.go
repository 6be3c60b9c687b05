// Package config reads server settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the env-backed server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string
	// DownloadDir is the base folder downloads land in.
	DownloadDir string
	// Store selects the snapshot store backend: "memory" or "postgres".
	Store string
	// SnapshotTTL evicts terminal snapshots from the memory store after
	// this duration. Zero keeps them until process restart.
	SnapshotTTL time.Duration
	// MaxActive bounds concurrent engine invocations. Zero means
	// unbounded, one task per request.
	MaxActive int64
	// LogFile, when set, sends logs to a rotating file as well as stdout.
	LogFile string
	// LogFormat is "text" or "json".
	LogFormat string
}

// FromEnv builds a Config with defaults for anything unset.
func FromEnv(defaultDownloadDir string) Config {
	return Config{
		Addr:        getenv("VGETD_ADDR", ":5000"),
		DownloadDir: getenv("VGETD_DOWNLOAD_DIR", defaultDownloadDir),
		Store:       getenv("VGETD_STORE", "memory"),
		SnapshotTTL: getduration("VGETD_SNAPSHOT_TTL", 0),
		MaxActive:   getint64("VGETD_MAX_ACTIVE", 0),
		LogFile:     os.Getenv("VGETD_LOG_FILE"),
		LogFormat:   getenv("VGETD_LOG_FORMAT", "text"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
