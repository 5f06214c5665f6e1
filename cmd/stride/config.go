package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the operator-tunable settings kept in <data-dir>/config.json.
type Config struct {
	// AutoExport re-writes the CSV export directory after every mutation.
	AutoExport bool `json:"auto_export"`
	// ExportDir is where CSV exports land; relative paths are resolved
	// against the data directory.
	ExportDir string `json:"export_dir"`
}

func defaultConfig() *Config {
	return &Config{
		AutoExport: true,
		ExportDir:  "export",
	}
}

// resolveDataDir picks the data directory: the -data-dir flag wins, then
// STRIDE_DATA_DIR (a .env file in the working directory is honored), then
// the .stride default.
func resolveDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	// Missing .env files are the normal case.
	_ = godotenv.Load()

	if dir := os.Getenv("STRIDE_DATA_DIR"); dir != "" {
		return dir
	}
	return ".stride"
}

// loadConfig reads config.json from the data directory. A missing file means
// defaults, not an error.
func loadConfig(dataDir string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(filepath.Join(dataDir, "config.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// exportPath resolves the export directory against the data directory.
func (c *Config) exportPath(dataDir string) string {
	if filepath.IsAbs(c.ExportDir) {
		return c.ExportDir
	}
	return filepath.Join(dataDir, c.ExportDir)
}

// writeDefaultConfig seeds config.json on init without clobbering an
// existing file.
func writeDefaultConfig(dataDir string) error {
	path := filepath.Join(dataDir, "config.json")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	data, err := json.MarshalIndent(defaultConfig(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
