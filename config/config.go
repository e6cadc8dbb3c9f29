package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Backend selects the sound renderer.
type Backend string

const (
	BackendAudio Backend = "audio" // built-in click tones
	BackendMIDI  Backend = "midi"  // external MIDI output
)

// SignatureConfig mirrors the trainer's time signature for persistence.
type SignatureConfig struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// OutputConfig stores the chosen sound backend.
type OutputConfig struct {
	Backend  Backend `json:"backend"`
	PortName string  `json:"portName,omitempty"` // MIDI backend only
}

// Config holds the persisted preferences. The trainer core never touches
// this: the TUI saves after each setter it issues succeeds.
type Config struct {
	Tempo     float64         `json:"tempo"`
	Signature SignatureConfig `json:"signature"`
	Pattern   string          `json:"pattern"`
	Output    OutputConfig    `json:"output"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo:     120,
		Signature: SignatureConfig{Numerator: 4, Denominator: 4},
		Pattern:   "basic",
		Output:    OutputConfig{Backend: BackendAudio},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-rhythm"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	return &cfg, nil
}

// fillDefaults patches zero values left by hand-edited or older config files
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Tempo == 0 {
		c.Tempo = d.Tempo
	}
	if c.Signature.Numerator == 0 || c.Signature.Denominator == 0 {
		c.Signature = d.Signature
	}
	if c.Pattern == "" {
		c.Pattern = d.Pattern
	}
	if c.Output.Backend == "" {
		c.Output.Backend = d.Output.Backend
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
