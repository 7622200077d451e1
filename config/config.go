package config

import (
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Board      BoardConfig      `yaml:"board"`
	Cache      CacheConfig      `yaml:"cache"`
	Events     EventsConfig     `yaml:"events"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Sentry     SentryConfig     `yaml:"sentry"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// BoardConfig describes the day grid and the business timezone.
type BoardConfig struct {
	Timezone       string         `yaml:"timezone"`
	Location       *time.Location `yaml:"-"`
	OpenHour       int            `yaml:"open_hour"`
	CloseHour      int            `yaml:"close_hour"`
	SlotMinutes    int            `yaml:"slot_minutes"`
	PixelsPerHour  float64        `yaml:"pixels_per_hour"`
	MinBlockHeight float64        `yaml:"min_block_height"`
	HeaderOffset   float64        `yaml:"header_offset"`
	Workers        []string       `yaml:"workers"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend       string `yaml:"backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// EventsConfig controls publishing of appointment change events to Kafka.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SentryConfig holds error reporting settings. Reporting is off without a DSN.
type SentryConfig struct {
	DSN              string  `yaml:"dsn"`
	Environment      string  `yaml:"environment"`
	TracesSampleRate *float64 `yaml:"traces_sample_rate"`
}

const defaultTracesSampleRate = 0.2

// SampleRate returns the configured trace sample rate. Zero turns tracing off
// while errors are still reported.
func (s SentryConfig) SampleRate() float64 {
	if s.TracesSampleRate == nil {
		return defaultTracesSampleRate
	}
	return *s.TracesSampleRate
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DefaultWorkers is the roster seeded into an empty database.
var DefaultWorkers = []string{"Alice", "Bob", "Carol", "Dave", "Eve"}

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

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, as if loaded from an empty file.
func Default() *Config {
	var cfg Config
	if err := cfg.applyDefaults(); err != nil {
		// The zero config only contains defaults, which are always valid.
		panic(err)
	}
	return &cfg
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	switch cfg.Database.Driver {
	case "":
		cfg.Database.Driver = DriverPostgres
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if err := cfg.Board.applyDefaults(); err != nil {
		return err
	}

	switch cfg.Cache.Backend {
	case "":
		cfg.Cache.Backend = CacheMemory
	case CacheMemory:
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			cfg.Cache.RedisAddr = "localhost:6379"
		}
	default:
		return fmt.Errorf("unsupported cache.backend %q", cfg.Cache.Backend)
	}

	if cfg.Events.Topic == "" {
		cfg.Events.Topic = "appointment_events"
	}
	if cfg.Events.Enabled && len(cfg.Events.Brokers) == 0 {
		return fmt.Errorf("events.enabled requires at least one broker")
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Sentry.TracesSampleRate == nil {
		rate := defaultTracesSampleRate
		cfg.Sentry.TracesSampleRate = &rate
	}
	if rate := *cfg.Sentry.TracesSampleRate; rate < 0 || rate > 1 {
		return fmt.Errorf("sentry.traces_sample_rate must be between 0 and 1, got %v", rate)
	}
	return nil
}

func (b *BoardConfig) applyDefaults() error {
	if b.Timezone == "" {
		b.Timezone = "America/Chicago"
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load board.timezone %q: %w", b.Timezone, err)
	}
	b.Location = loc

	if b.OpenHour == 0 && b.CloseHour == 0 {
		b.OpenHour, b.CloseHour = 9, 22
	}
	if b.OpenHour < 0 || b.CloseHour > 24 || b.CloseHour <= b.OpenHour {
		return fmt.Errorf("invalid board hours %d-%d", b.OpenHour, b.CloseHour)
	}
	if b.SlotMinutes <= 0 {
		b.SlotMinutes = 15
	}
	if 60%b.SlotMinutes != 0 {
		return fmt.Errorf("board.slot_minutes must divide an hour, got %d", b.SlotMinutes)
	}
	if b.PixelsPerHour <= 0 {
		b.PixelsPerHour = 120
	}
	if b.MinBlockHeight <= 0 {
		b.MinBlockHeight = 20
	}
	if b.HeaderOffset <= 0 {
		b.HeaderOffset = 49
	}
	if len(b.Workers) == 0 {
		b.Workers = append([]string(nil), DefaultWorkers...)
	}
	return nil
}
