package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// Environment variables that override the config file. They may also be set
// in a .env file next to the binary.
const (
	envConfigPath = "TRICKCHAIN_CONFIG"
	envLogLevel   = "TRICKCHAIN_LOG_LEVEL"
	envApiAddr    = "TRICKCHAIN_ADDR"
	envDatabase   = "TRICKCHAIN_DB"
)

const defaultConfigPath = "./config.json"

// ServerConfig holds the configuration for the HTTP server and data files.
type ServerConfig struct {
	ApiAddr       string `json:"api_addr"`
	LogLevel      string `json:"log_level"`
	DataDir       string `json:"data_dir"`
	DatabasePath  string `json:"database_path"`
	ManifestPath  string `json:"manifest_path"`
	DefaultCorpus string `json:"default_corpus"`
}

// GenerationConfig holds the defaults and bounds for sequence generation.
type GenerationConfig struct {
	DefaultMaxLength int      `json:"default_max_length"`
	MinLength        int      `json:"min_length"`
	MaxLength        int      `json:"max_length"`
	MaxAttempts      int      `json:"max_attempts"`
	PresetEndTokens  []string `json:"preset_end_tokens"`
}

// AnalyticsConfig holds the defaults for analytics queries.
type AnalyticsConfig struct {
	DefaultMinCount int     `json:"default_min_count"`
	DefaultTopN     int     `json:"default_top_n"`
	Damping         float64 `json:"damping"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server     *ServerConfig     `json:"server_config"`
	Generation *GenerationConfig `json:"generation_config"`
	Analytics  *AnalyticsConfig  `json:"analytics_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ApiAddr:       ":7380",
		LogLevel:      "info",
		DataDir:       "./data",
		DatabasePath:  "./data/trickchain.db",
		ManifestPath:  "./data/manifest.yaml",
		DefaultCorpus: "",
	}
}

// DefaultGenerationConfig creates a generation configuration with default values.
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		DefaultMaxLength: 15,
		MinLength:        5,
		MaxLength:        30,
		MaxAttempts:      200,
		PresetEndTokens: []string{
			"11Sp", "12Sp", "122Sp", "1212Sp", "121Sp", "1211Sp", "22Sp", "222Sp",
			"2BackSA33", "BackaroundFall", "FLTA", "NeoSA233", "RayGun", "Thumbaround",
		},
	}
}

// DefaultAnalyticsConfig creates an analytics configuration with default values.
func DefaultAnalyticsConfig() *AnalyticsConfig {
	return &AnalyticsConfig{
		DefaultMinCount: 3,
		DefaultTopN:     20,
		Damping:         0.85,
	}
}

// DefaultConfig returns a full configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Generation: DefaultGenerationConfig(),
		Analytics:  DefaultAnalyticsConfig(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server == nil || c.Generation == nil || c.Analytics == nil {
		return errors.New("server_config, generation_config and analytics_config are all required")
	}
	g := c.Generation
	if g.MinLength < 1 || g.MinLength > g.MaxLength {
		return fmt.Errorf("length bounds %d..%d are invalid", g.MinLength, g.MaxLength)
	}
	if g.DefaultMaxLength < g.MinLength || g.DefaultMaxLength > g.MaxLength {
		return fmt.Errorf("default max length %d is outside %d..%d", g.DefaultMaxLength, g.MinLength, g.MaxLength)
	}
	if g.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	if c.Analytics.DefaultMinCount < 0 || c.Analytics.DefaultTopN < 0 {
		return errors.New("analytics defaults must not be negative")
	}
	if c.Analytics.Damping <= 0 || c.Analytics.Damping >= 1 {
		return fmt.Errorf("damping %v must be between 0 and 1", c.Analytics.Damping)
	}
	return nil
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	// Initialize with default configurations
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Log a warning instead of failing, as the server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		// For other errors (e.g., permission denied), return the error.
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal the JSON from the file into the config struct.
	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return config, nil
}

// applyEnv overrides config values with the TRICKCHAIN_* environment variables.
func applyEnv(config *Config) {
	if v := os.Getenv(envLogLevel); v != "" {
		config.Server.LogLevel = v
	}
	if v := os.Getenv(envApiAddr); v != "" {
		config.Server.ApiAddr = v
	}
	if v := os.Getenv(envDatabase); v != "" {
		config.Server.DatabasePath = v
	}
}

// configPath returns the config file location, honouring TRICKCHAIN_CONFIG.
func configPath() string {
	if v := os.Getenv(envConfigPath); v != "" {
		return v
	}
	return defaultConfigPath
}

// parseLogLevel maps a config log level onto a slog.Level. Unknown values
// fall back to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConfigManager handles thread-safe access to configuration.
type ConfigManager struct {
	config     *Config
	mu         sync.RWMutex
	configPath string
	logger     *slog.Logger
}

// NewConfigManager loads the config, applies environment overrides and
// initializes the manager. Overrides only live in memory until the next
// Update saves the whole config.
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	return &ConfigManager{
		config:     cfg,
		configPath: path,
		// Log to stdout before the application-specific logger is set.
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})),
	}, nil
}

// SetLogger sets the logger. That's about it.
func (cm *ConfigManager) SetLogger(logger *slog.Logger) {
	cm.logger = logger
}

// Get returns a thread-safe copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	// Return a dereferenced copy to prevent external modification of the internal state
	return *cm.config
}

// Update validates the configuration, swaps it in and saves it to disk.
func (cm *ConfigManager) Update(newConfig Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	*cm.config = newConfig

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err = atomic.WriteFile(cm.configPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cm.logger.Info("Configuration updated and saved", "path", cm.configPath)
	return nil
}
