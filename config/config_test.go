package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Translator.DefaultConvention != "default" {
		t.Errorf("Expected DefaultConvention=default, got %s", cfg.Translator.DefaultConvention)
	}
	if cfg.Translator.ProgramCounter != "pc" {
		t.Errorf("Expected ProgramCounter=pc, got %s", cfg.Translator.ProgramCounter)
	}

	if cfg.Server.ListenAddr != ":8642" {
		t.Errorf("Expected ListenAddr=:8642, got %s", cfg.Server.ListenAddr)
	}
	if cfg.Server.MaxBodyBytes != 1<<20 {
		t.Errorf("Expected MaxBodyBytes=%d, got %d", 1<<20, cfg.Server.MaxBodyBytes)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected Level=info, got %s", cfg.Logging.Level)
	}

	if cfg.Display.BytesPerLine != 16 {
		t.Errorf("Expected BytesPerLine=16, got %d", cfg.Display.BytesPerLine)
	}
	if cfg.Display.NumberFormat != "hex" {
		t.Errorf("Expected NumberFormat=hex, got %s", cfg.Display.NumberFormat)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "sleigh-lift" && path != "config.toml" {
			t.Errorf("Expected path in sleigh-lift directory or fallback, got %s", path)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()

	if path == "" {
		t.Error("GetLogPath returned empty string")
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "logs" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		if filepath.Base(path) != "logs" {
			t.Errorf("Expected path to end with logs, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Loader.SpecPath = "mips32le.xml"
	cfg.Translator.DefaultArchitecture = "MIPS32LE"
	cfg.Server.ListenAddr = "127.0.0.1:9000"
	cfg.Logging.Level = "debug"
	cfg.Display.ColorOutput = false

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Loader.SpecPath != "mips32le.xml" {
		t.Errorf("Expected SpecPath=mips32le.xml, got %s", loaded.Loader.SpecPath)
	}
	if loaded.Translator.DefaultArchitecture != "MIPS32LE" {
		t.Errorf("Expected DefaultArchitecture=MIPS32LE, got %s", loaded.Translator.DefaultArchitecture)
	}
	if loaded.Server.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("Expected ListenAddr=127.0.0.1:9000, got %s", loaded.Server.ListenAddr)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Expected Level=debug, got %s", loaded.Logging.Level)
	}
	if loaded.Display.ColorOutput {
		t.Error("Expected ColorOutput=false")
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}

	if cfg.Translator.ProgramCounter != "pc" {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[server]
max_body_bytes = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
