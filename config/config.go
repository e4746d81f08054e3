package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Push      PushConfig      `yaml:"push"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Retention RetentionConfig `yaml:"retention"`
	Operator  OperatorConfig  `yaml:"operator"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys and delivery parameters for web push.
type PushConfig struct {
	PublicKey          string        `yaml:"vapid_public_key"`
	PrivateKey         string        `yaml:"vapid_private_key"`
	Subject            string        `yaml:"subject"`
	TTL                int           `yaml:"ttl"`
	SendTimeoutSeconds int           `yaml:"send_timeout_seconds"`
	SendTimeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// DispatchConfig holds the fan-out settings for campaign delivery.
type DispatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// RetentionConfig controls the background sweeper that prunes old rows.
type RetentionConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	MaxAgeDays      int           `yaml:"max_age_days"`
}

// OperatorConfig seeds a default operator at startup when set.
type OperatorConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 86400
	}
	if cfg.Push.SendTimeoutSeconds <= 0 {
		cfg.Push.SendTimeoutSeconds = 30
	}
	cfg.Push.SendTimeout = time.Duration(cfg.Push.SendTimeoutSeconds) * time.Second

	if cfg.Dispatch.Concurrency <= 0 {
		log.Printf("dispatch.concurrency is not set or invalid; defaulting to 16")
		cfg.Dispatch.Concurrency = 16
	}

	if cfg.Retention.IntervalSeconds <= 0 {
		cfg.Retention.IntervalSeconds = 3600
	}
	cfg.Retention.Interval = time.Duration(cfg.Retention.IntervalSeconds) * time.Second
	if cfg.Retention.MaxAgeDays <= 0 {
		cfg.Retention.MaxAgeDays = 90
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	return &cfg, nil
}
