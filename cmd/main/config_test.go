package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Generation.DefaultMaxLength != 15 || cfg.Generation.MaxAttempts != 200 {
		t.Errorf("Unexpected generation defaults %+v", cfg.Generation)
	}
	if cfg.Generation.MinLength != 5 || cfg.Generation.MaxLength != 30 {
		t.Errorf("Unexpected slider bounds %d..%d", cfg.Generation.MinLength, cfg.Generation.MaxLength)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Default config was not written: %v", err)
	}
	var written Config
	if err = json.Unmarshal(data, &written); err != nil {
		t.Fatalf("Written config is not valid JSON: %v", err)
	}
	if len(written.Generation.PresetEndTokens) != len(cfg.Generation.PresetEndTokens) {
		t.Errorf("Written config lost the preset end tokens")
	}
}

func TestLoadConfigMergesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	partial := `{"generation_config": {"default_max_length": 20, "min_length": 5, "max_length": 30, "max_attempts": 50}}`
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Generation.DefaultMaxLength != 20 || cfg.Generation.MaxAttempts != 50 {
		t.Errorf("File values not applied: %+v", cfg.Generation)
	}
	if cfg.Server.ApiAddr != DefaultServerConfig().ApiAddr {
		t.Errorf("Missing sections should keep their defaults, got %+v", cfg.Server)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed", `{"server_config": `, "failed to parse"},
		{"inverted bounds", `{"generation_config": {"default_max_length": 15, "min_length": 30, "max_length": 5, "max_attempts": 1}}`, "length bounds"},
		{"default outside bounds", `{"generation_config": {"default_max_length": 40, "min_length": 5, "max_length": 30, "max_attempts": 1}}`, "default max length"},
		{"no attempts", `{"generation_config": {"default_max_length": 15, "min_length": 5, "max_length": 30, "max_attempts": 0}}`, "max_attempts"},
		{"bad damping", `{"analytics_config": {"default_min_count": 1, "default_top_n": 1, "damping": 1.5}}`, "damping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want one containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envApiAddr, "127.0.0.1:9999")
	t.Setenv(envDatabase, "/tmp/override.db")
	path := filepath.Join(t.TempDir(), "config.json")

	cm, err := NewConfigManager(path)
	if err != nil {
		t.Fatalf("NewConfigManager() failed: %v", err)
	}
	cfg := cm.Get()
	if cfg.Server.LogLevel != "debug" || cfg.Server.ApiAddr != "127.0.0.1:9999" || cfg.Server.DatabasePath != "/tmp/override.db" {
		t.Errorf("Environment overrides not applied: %+v", cfg.Server)
	}

	// Overrides stay out of the file.
	onDisk, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if onDisk.Server.ApiAddr != DefaultServerConfig().ApiAddr {
		t.Errorf("Override leaked into the config file: %q", onDisk.Server.ApiAddr)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(envConfigPath, "")
	if got := configPath(); got != defaultConfigPath {
		t.Errorf("configPath() = %q, want %q", got, defaultConfigPath)
	}
	t.Setenv(envConfigPath, "/etc/trickchain.json")
	if got := configPath(); got != "/etc/trickchain.json" {
		t.Errorf("configPath() = %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigManagerUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cm, err := NewConfigManager(path)
	if err != nil {
		t.Fatalf("NewConfigManager() failed: %v", err)
	}

	cfg := cm.Get()
	analyticsCfg := *cfg.Analytics
	analyticsCfg.DefaultMinCount = 7
	cfg.Analytics = &analyticsCfg
	if err = cm.Update(cfg); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if reloaded.Analytics.DefaultMinCount != 7 {
		t.Errorf("Persisted min count = %d, want 7", reloaded.Analytics.DefaultMinCount)
	}

	cfg.Analytics = nil
	if err = cm.Update(cfg); err == nil {
		t.Error("Update() should reject a config without an analytics section")
	}
}
