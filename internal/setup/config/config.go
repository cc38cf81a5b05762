package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrWordlistNotFound      = errors.New("could not find wordlist file in any config path")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.4.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentServerVersion = 1
	CurrentWorkerVersion = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Server ServerConfig
	Worker WorkerConfig
}

// CommonConfig contains configuration shared between the API server and workers.
type CommonConfig struct {
	// Version of the common config.
	Version        int            `koanf:"version"`
	Debug          Debug          `koanf:"debug"`
	Retry          Retry          `koanf:"retry"`
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
	PostgreSQL     PostgreSQL     `koanf:"postgresql"`
	Redis          Redis          `koanf:"redis"`
	GeminiAI       GeminiAI       `koanf:"gemini_ai"`
	Classify       Classify       `koanf:"classify"`
	Roster         Roster         `koanf:"roster"`
	Notify         Notify         `koanf:"notify"`
	Uptrace        Uptrace        `koanf:"uptrace"`
}

// ServerConfig contains API server specific configuration.
type ServerConfig struct {
	// Version of the server config.
	Version int `koanf:"version"`
	// Address to bind the HTTP listener to.
	Host string `koanf:"host"`
	// Port to bind the HTTP listener to.
	Port int `koanf:"port"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Graceful shutdown timeout in milliseconds.
	ShutdownTimeout int `koanf:"shutdown_timeout"`
	// Rate limiting applied per client.
	RateLimit RateLimit `koanf:"rate_limit"`
}

// RateLimit contains per-client rate limiting configuration.
type RateLimit struct {
	// Sustained requests per second allowed per client.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	// Burst size allowed per client.
	Burst int `koanf:"burst"`
}

// WorkerConfig contains worker specific configuration.
type WorkerConfig struct {
	// Version of the worker config.
	Version int `koanf:"version"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Startup delay in milliseconds.
	StartupDelay int `koanf:"startup_delay"`
	// Escalation monitor tuning.
	Escalation Escalation `koanf:"escalation"`
	// Stats snapshot tuning.
	Stats Stats `koanf:"stats"`
}

// Escalation configures the alert SLA ladder.
type Escalation struct {
	// Accept window for a freshly broadcast alert in milliseconds.
	InitialSLA int `koanf:"initial_sla"`
	// Multiplier applied to the window after each escalation.
	FollowupFactor float64 `koanf:"followup_factor"`
	// Smallest window the ladder will shrink to in milliseconds.
	MinWindow int `koanf:"min_window"`
	// Escalations before the alert is marked unstaffed.
	MaxEscalations int `koanf:"max_escalations"`
	// How often the monitor scans for due deadlines in milliseconds.
	PollInterval int `koanf:"poll_interval"`
	// Maximum alerts broadcast per cycle.
	BroadcastBatch int `koanf:"broadcast_batch"`
}

// Stats configures the hourly snapshot worker.
type Stats struct {
	// Days of hourly snapshots to retain.
	RetentionDays int `koanf:"retention_days"`
	// Render a chart of the last day into the session directory.
	ChartEnabled bool `koanf:"chart_enabled"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log files to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
	// Enable pprof debugging.
	EnablePprof bool `koanf:"enable_pprof"`
	// pprof server port.
	PprofPort int `koanf:"pprof_port"`
}

// Retry contains retry configuration.
type Retry struct {
	// Maximum retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum retry delay in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// CircuitBreaker contains circuit breaker configuration for outbound HTTP calls.
type CircuitBreaker struct {
	// Requests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// Interval in milliseconds before failure counts reset.
	Interval int `koanf:"interval"`
	// Time in milliseconds the breaker stays open before probing.
	Timeout int `koanf:"timeout"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// GeminiAI contains Gemini API configuration.
type GeminiAI struct {
	// API key for authentication.
	APIKey string `koanf:"api_key"`
	// Model to use for content classification.
	Model string `koanf:"model"`
}

// Classify contains content classification configuration.
type Classify struct {
	// Engine selects the classifier implementation (keyword, gemini).
	Engine string `koanf:"engine"`
	// Maximum concurrent classification calls.
	MaxConcurrent int64 `koanf:"max_concurrent"`
	// Per-call timeout in milliseconds.
	Timeout int `koanf:"timeout"`
	// Minimum model confidence for a finding to count.
	ConfidenceFloor float64 `koanf:"confidence_floor"`
}

// Roster contains on-call roster service configuration.
type Roster struct {
	// Base URL of the on-call roster service. Empty uses the static scopes.
	URL string `koanf:"url"`
	// API key for the roster service.
	APIKey string `koanf:"api_key"`
	// Seconds to cache roster responses in Redis.
	CacheTTL int `koanf:"cache_ttl"`
	// Static scope levels used when no roster service is configured.
	Scopes []RosterScope `koanf:"scopes"`
}

// RosterScope defines one broadcast scope level for the static roster.
type RosterScope struct {
	// Numeric scope level, starting at 1 for on-duty responders.
	Level int `koanf:"level"`
	// Human-readable name for the level (on_duty, supervisors, duty_officer).
	Name string `koanf:"name"`
	// Webhook URLs paged at this level.
	Webhooks []string `koanf:"webhooks"`
}

// Notify contains notification webhook configuration.
type Notify struct {
	// Webhook URL paged for unstaffed crises and monitor faults.
	OpsWebhookURL string `koanf:"ops_webhook_url"`
	// Per-send timeout in milliseconds.
	Timeout int `koanf:"timeout"`
}

// Uptrace contains telemetry export configuration.
type Uptrace struct {
	// DSN for the uptrace project. Empty disables telemetry export.
	DSN string `koanf:"dsn"`
}

// LoadConfig loads the configuration from the specified file.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".trygg",
		homeDir + "/.trygg/config",
		"/etc/trygg/config",
		"/app/config",
		"config",
		".",
	}

	// Load all config files
	var usedConfigPath string

	configFiles := []string{"common", "server", "worker"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("server", config.Server.Version, CurrentServerVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("worker", config.Worker.Version, CurrentWorkerVersion); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/trygglabs/trygg/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
