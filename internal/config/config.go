package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Telemetry TelemetryConfig `toml:"telemetry"` // Live flight network API settings
	Tracker   TrackerConfig   `toml:"tracker"`   // Fleet tracking and caching settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // HTTP port for the server
	Host             string `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// TelemetryConfig contains Live API data source configuration
type TelemetryConfig struct {
	BaseURL               string `toml:"base_url"`                // Base URL of the Live API (e.g., https://api.infiniteflight.com/public/v2)
	APIKey                string `toml:"api_key"`                 // API key for the Live API (can also come from FLEETBOARD_API_KEY)
	SessionID             string `toml:"session_id"`              // Identifier of the network session (server) to track
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // HTTP timeout for Live API requests in seconds
}

// TrackerConfig contains fleet tracking, filtering, and caching settings
type TrackerConfig struct {
	// Fleet matching
	// Allowed values for filter_type:
	// - "suffix": match flights whose callsign ends with filter_value
	// - "virtual_org": match flights whose virtual organization equals filter_value exactly
	FilterType  string `toml:"filter_type"`  // Fleet matching strategy
	FilterValue string `toml:"filter_value"` // Value the matching strategy compares against

	OperatorName string `toml:"operator_name"` // Display name of the virtual airline (used in page footers)

	PageSize            int `toml:"page_size"`              // Number of flights per rendered page (default: 3)
	PlanCacheTTLMinutes int `toml:"plan_cache_ttl_minutes"` // How long fetched flight plans stay valid (default: 5)
	PlanCacheMaxEntries int `toml:"plan_cache_max_entries"` // Maximum number of cached flight plans (default: 256)
	SnapshotTTLMinutes  int `toml:"snapshot_ttl_minutes"`   // How long a fleet snapshot stays valid per session (default: 10)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// EnvAPIKey is the environment variable that overrides telemetry.api_key
const EnvAPIKey = "FLEETBOARD_API_KEY"

// DefaultConfig returns a configuration populated with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			Host:             "127.0.0.1",
			ReadTimeoutSecs:  30,
			WriteTimeoutSecs: 30,
			IdleTimeoutSecs:  60,
		},
		Telemetry: TelemetryConfig{
			BaseURL:               "https://api.infiniteflight.com/public/v2",
			RequestTimeoutSeconds: 15,
		},
		Tracker: TrackerConfig{
			FilterType:          "suffix",
			PageSize:            3,
			PlanCacheTTLMinutes: 5,
			PlanCacheMaxEntries: 256,
			SnapshotTTLMinutes:  10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from the specified TOML file, applying defaults
// for any values not present, then overlays environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadWithFallback loads configuration from the given path if provided,
// otherwise searches the conventional locations (configs/fleetboard.toml,
// fleetboard.toml). If no file is found, defaults plus environment are used.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	candidates := []string{
		filepath.Join("configs", "fleetboard.toml"),
		"fleetboard.toml",
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
	}

	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment-sourced settings onto the config.
// A .env file in the working directory is honored if present.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.Telemetry.APIKey = key
	}
}

// Validate checks the configuration for invalid or missing values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Telemetry.BaseURL == "" {
		return fmt.Errorf("telemetry base_url cannot be empty")
	}

	if c.Telemetry.APIKey == "" {
		return fmt.Errorf("telemetry api_key is required (set it in the config file or via %s)", EnvAPIKey)
	}

	if c.Telemetry.SessionID == "" {
		return fmt.Errorf("telemetry session_id cannot be empty")
	}

	if c.Telemetry.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("telemetry request_timeout_seconds must be greater than 0")
	}

	switch c.Tracker.FilterType {
	case "suffix", "virtual_org":
		// Matching strategies that require a value
		if c.Tracker.FilterValue == "" {
			return fmt.Errorf("tracker filter_value cannot be empty when filter_type is %q", c.Tracker.FilterType)
		}
	case "":
		// No filter configured - snapshots will be empty but the server still runs
	default:
		return fmt.Errorf("unknown tracker filter_type: %s", c.Tracker.FilterType)
	}

	if c.Tracker.PageSize <= 0 {
		return fmt.Errorf("tracker page_size must be greater than 0")
	}

	if c.Tracker.PlanCacheTTLMinutes <= 0 {
		return fmt.Errorf("tracker plan_cache_ttl_minutes must be greater than 0")
	}

	if c.Tracker.PlanCacheMaxEntries <= 0 {
		return fmt.Errorf("tracker plan_cache_max_entries must be greater than 0")
	}

	if c.Tracker.SnapshotTTLMinutes <= 0 {
		return fmt.Errorf("tracker snapshot_ttl_minutes must be greater than 0")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level: %s", c.Logging.Level)
	}

	return nil
}
