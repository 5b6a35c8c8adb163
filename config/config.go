// Package config loads and saves the translator service's TOML
// configuration: a struct-with-nested-sections shape, a
// DefaultConfig/Load/Save pairing, and cross-platform path resolution,
// covering sleigh-lift's own settings: which specification to load,
// which architecture/compiler convention to select by default, and
// the HTTP API's listen address.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the translator service's full configuration.
type Config struct {
	// Loader settings: which specification file to read and how to
	// interpret its root sleigh attributes.
	Loader struct {
		SpecPath      string `toml:"spec_path"`
		AlignOverride uint32 `toml:"align_override"` // 0 => use the spec's own align
	} `toml:"loader"`

	// Translator settings: default architecture/convention selection
	// and the program-counter register name, when not overridden by
	// a request.
	Translator struct {
		DefaultArchitecture string `toml:"default_architecture"`
		DefaultConvention   string `toml:"default_convention"`
		ProgramCounter      string `toml:"program_counter"`
	} `toml:"translator"`

	// Server settings for the HTTP API.
	Server struct {
		ListenAddr      string `toml:"listen_addr"`
		ReadTimeoutSec  int    `toml:"read_timeout_sec"`
		WriteTimeoutSec int    `toml:"write_timeout_sec"`
		MaxBodyBytes    int64  `toml:"max_body_bytes"`
	} `toml:"server"`

	// Logging settings.
	Logging struct {
		Level      string `toml:"level"`       // debug, info, warn, error
		Format     string `toml:"format"`      // text, json
		OutputFile string `toml:"output_file"` // empty => stderr
	} `toml:"logging"`

	// CLI display settings shared by cmd/sleighdump and cmd/sleighbrowse.
	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		BytesPerLine int    `toml:"bytes_per_line"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Loader.SpecPath = ""
	cfg.Loader.AlignOverride = 0

	cfg.Translator.DefaultArchitecture = ""
	cfg.Translator.DefaultConvention = "default"
	cfg.Translator.ProgramCounter = "pc"

	cfg.Server.ListenAddr = ":8642"
	cfg.Server.ReadTimeoutSec = 10
	cfg.Server.WriteTimeoutSec = 10
	cfg.Server.MaxBodyBytes = 1 << 20

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.OutputFile = ""

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "sleigh-lift")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "sleigh-lift")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "sleigh-lift", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "sleigh-lift", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, returning
// defaults unchanged when the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
