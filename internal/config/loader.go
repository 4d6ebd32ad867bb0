// Package config loads server configuration from the process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Storage backend identifiers accepted by TRACKADEMIC_STORAGE.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config captures environment driven configuration values for the trackademic service.
type Config struct {
	HTTPPort   int
	DataDir    string
	Storage    string
	SQLitePath string
	LogFormat  string
	LogLevel   string
}

// Load parses configuration values from the current process environment,
// applying defaults for optional fields and reporting every invalid entry at
// once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:  8000,
		DataDir:   "data",
		Storage:   StorageJSON,
		LogFormat: "json",
		LogLevel:  "info",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TRACKADEMIC_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TRACKADEMIC_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dir := strings.TrimSpace(os.Getenv("TRACKADEMIC_DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}

	if storage := strings.TrimSpace(os.Getenv("TRACKADEMIC_STORAGE")); storage != "" {
		switch strings.ToLower(storage) {
		case StorageJSON, StorageSQLite:
			cfg.Storage = strings.ToLower(storage)
		default:
			invalid = append(invalid, "TRACKADEMIC_STORAGE")
		}
	}

	cfg.SQLitePath = filepath.Join(cfg.DataDir, "trackademic.db")
	if path := strings.TrimSpace(os.Getenv("TRACKADEMIC_SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	if format := strings.TrimSpace(os.Getenv("TRACKADEMIC_LOG_FORMAT")); format != "" {
		switch strings.ToLower(format) {
		case "json", "text":
			cfg.LogFormat = strings.ToLower(format)
		default:
			invalid = append(invalid, "TRACKADEMIC_LOG_FORMAT")
		}
	}

	if level := strings.TrimSpace(os.Getenv("TRACKADEMIC_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
