package config

import (
	"encoding/json"
	"os"
)

// ConfigFile is the default config file name, looked up in the working
// directory.
const ConfigFile = "mcp.config.json"

// FileSystem abstracts file operations for testability
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads configuration from the given path and merges it with defaults.
// A missing file yields the default config: the bot then runs without tool
// servers. Parse and validation failures are returned as errors.
//
// NOTE: This implementation unmarshals JSON keys directly over the default
// configuration. This allows explicit zero values in the config file to
// override defaults, while missing keys leave the defaults untouched.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigFile
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // LLM-only mode: no tool servers configured
		}
		return nil, err // Return error for permission issues
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err // Return error for malformed JSON
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is a convenience function using the default loader
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
