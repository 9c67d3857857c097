package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration
type Config struct {
	Device          DeviceConfig      `yaml:"device"`
	Sunrise         SunriseConfig     `yaml:"sunrise"`
	Sync            SyncConfig        `yaml:"sync"`
	Database        DatabaseConfig    `yaml:"database"`
	Log             LogConfig         `yaml:"log"`
	Ledger          LedgerConfig      `yaml:"ledger"`
	Healthcheck     HealthcheckConfig `yaml:"healthcheck"`
	EventBus        EventBusConfig    `yaml:"eventbus"`
	ShutdownTimeout Duration          `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// DeviceConfig describes the hardware backends
type DeviceConfig struct {
	NVRAMPath      string          `yaml:"nvram_path"`      // File standing in for battery-backed RTC memory
	ResolutionBits int             `yaml:"resolution_bits"` // PWM output resolution
	Channels       []ChannelConfig `yaml:"channels"`
}

// ChannelConfig describes one LED channel
type ChannelConfig struct {
	Index       int      `yaml:"index"`
	StartOffset Duration `yaml:"start_offset"` // Delay after sequence start before this channel ramps
}

// SunriseConfig contains ramp engine settings
type SunriseConfig struct {
	Exponent     float64  `yaml:"exponent"`      // Curve shaping constant, > 1
	StayOn       bool     `yaml:"stay_on"`       // Keep channels on after the hold instead of switching off
	PollInterval Duration `yaml:"poll_interval"` // Trigger poll / engine tick cadence, must be <= 1m
	PWMWriteRPS  float64  `yaml:"pwm_write_rps"` // Rate limit for PWM writes
}

// SyncConfig contains remote refresh settings
type SyncConfig struct {
	Enabled        bool     `yaml:"enabled"`
	ConfigURL      string   `yaml:"config_url"`
	TimeURL        string   `yaml:"time_url"`
	Interval       Duration `yaml:"interval"`        // Time between sync cycles
	ConnectTimeout Duration `yaml:"connect_timeout"` // Bounded connectivity acquisition window
	HTTPTimeout    Duration `yaml:"http_timeout"`    // Per-request timeout
	ProbeAddr      string   `yaml:"probe_addr"`      // Optional host:port dialed to verify connectivity
	SyncOnBoot     bool     `yaml:"sync_on_boot"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// GetLevel returns the log level with default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// LedgerConfig contains run history retention settings
type LedgerConfig struct {
	CleanupInterval Duration `yaml:"cleanup_interval"`
	RetentionDays   int      `yaml:"retention_days"`
}

// HealthcheckConfig contains health check server settings
type HealthcheckConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// EventBusConfig contains event bus settings
type EventBusConfig struct {
	Workers   int `yaml:"workers"`    // Number of worker goroutines (default: 2)
	QueueSize int `yaml:"queue_size"` // Event queue size (default: 64)
}

// GetWorkers returns worker count with default
func (c *EventBusConfig) GetWorkers() int {
	if c.Workers <= 0 {
		return 2
	}
	return c.Workers
}

// GetQueueSize returns queue size with default
func (c *EventBusConfig) GetQueueSize() int {
	if c.QueueSize <= 0 {
		return 64
	}
	return c.QueueSize
}

// GetShutdownTimeout returns the shutdown timeout as time.Duration
func (c *Config) GetShutdownTimeout() time.Duration {
	return c.ShutdownTimeout.Duration()
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads, parses and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./sunrised.sqlite"
	}

	// Device defaults
	if cfg.Device.NVRAMPath == "" {
		cfg.Device.NVRAMPath = "./sunrised.nvram"
	}
	if cfg.Device.ResolutionBits == 0 {
		cfg.Device.ResolutionBits = 12
	}
	if len(cfg.Device.Channels) == 0 {
		cfg.Device.Channels = []ChannelConfig{{Index: 0}}
	}

	// Sunrise defaults
	if cfg.Sunrise.Exponent == 0 {
		cfg.Sunrise.Exponent = 2.5
	}
	if cfg.Sunrise.PollInterval == 0 {
		cfg.Sunrise.PollInterval = Duration(10 * time.Second)
	}
	if cfg.Sunrise.PWMWriteRPS == 0 {
		cfg.Sunrise.PWMWriteRPS = 50.0
	}

	// Sync defaults
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = Duration(6 * time.Hour)
	}
	if cfg.Sync.ConnectTimeout == 0 {
		cfg.Sync.ConnectTimeout = Duration(10 * time.Second)
	}
	if cfg.Sync.HTTPTimeout == 0 {
		cfg.Sync.HTTPTimeout = Duration(10 * time.Second)
	}

	// Ledger defaults
	if cfg.Ledger.CleanupInterval == 0 {
		cfg.Ledger.CleanupInterval = Duration(24 * time.Hour)
	}
	if cfg.Ledger.RetentionDays == 0 {
		cfg.Ledger.RetentionDays = 30
	}

	// Healthcheck defaults
	if cfg.Healthcheck.Port == 0 {
		cfg.Healthcheck.Port = 9090
	}
	if cfg.Healthcheck.Host == "" {
		cfg.Healthcheck.Host = "0.0.0.0"
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects configurations the daemon cannot run with
func (c *Config) validate() error {
	// Polling coarser than a minute skips trigger minutes entirely
	if c.Sunrise.PollInterval.Duration() > time.Minute {
		return fmt.Errorf("sunrise.poll_interval %s exceeds 1m, trigger minutes would be missed", c.Sunrise.PollInterval.Duration())
	}
	if c.Sunrise.Exponent <= 1 {
		return fmt.Errorf("sunrise.exponent %v must be greater than 1", c.Sunrise.Exponent)
	}
	if c.Device.ResolutionBits < 1 || c.Device.ResolutionBits > 16 {
		return fmt.Errorf("device.resolution_bits %d out of range 1..16", c.Device.ResolutionBits)
	}
	if c.Sync.Enabled {
		if c.Sync.ConfigURL == "" {
			return fmt.Errorf("sync.config_url is required when sync is enabled")
		}
		if c.Sync.TimeURL == "" {
			return fmt.Errorf("sync.time_url is required when sync is enabled")
		}
	}
	seen := make(map[int]bool)
	for _, ch := range c.Device.Channels {
		if ch.Index < 0 {
			return fmt.Errorf("device channel index %d must not be negative", ch.Index)
		}
		if seen[ch.Index] {
			return fmt.Errorf("device channel index %d configured twice", ch.Index)
		}
		seen[ch.Index] = true
		if ch.StartOffset.Duration() < 0 {
			return fmt.Errorf("device channel %d start_offset must not be negative", ch.Index)
		}
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
