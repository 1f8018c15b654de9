package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the optional project config file, looked up in the
// working directory. The file may carry comments and trailing commas.
const ConfigFileName = ".decktab.json"

// Config holds project-level settings. Flags and environment variables
// override it.
type Config struct {
	OutputDir  string `json:"output_dir,omitempty"`
	SchemaPath string `json:"schema_path,omitempty"`
}

// LoadConfig reads the project config from workDir if present. A missing
// file is not an error; a malformed one is.
func LoadConfig(workDir string) (Config, error) {
	var cfg Config

	path := filepath.Join(workDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := json.Unmarshal(std, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
