package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr          string        `yaml:"addr"`
		ReadTimeout   time.Duration `yaml:"read_timeout"`
		WriteTimeout  time.Duration `yaml:"write_timeout"`
		IdleTimeout   time.Duration `yaml:"idle_timeout"`
		DefaultSymbol string        `yaml:"default_symbol"`
	} `yaml:"server"`
	DataSource struct {
		Provider       string        `yaml:"provider"` // "yahoo" or "mock"
		BaseURL        string        `yaml:"base_url"`
		Timeout        time.Duration `yaml:"timeout"`
		RequestsPerSec float64       `yaml:"requests_per_sec"`
		MockPrice      float64       `yaml:"mock_price"`
	} `yaml:"data_source"`
	Forecast struct {
		MaxP      int `yaml:"max_p"`
		MaxQ      int `yaml:"max_q"`
		MaxD      int `yaml:"max_d"`
		MaxModels int `yaml:"max_models"`
	} `yaml:"forecast"`
	Session struct {
		Backend       string        `yaml:"backend"` // "memory" or "redis"
		TTL           time.Duration `yaml:"ttl"`
		SweepCron     string        `yaml:"sweep_cron"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"session"`
	Database struct {
		Driver        string `yaml:"driver"` // "sqlite", "postgres" or "none"
		SQLitePath    string `yaml:"sqlite_path"`
		PostgresDSN   string `yaml:"postgres_dsn"`
		RetentionDays int    `yaml:"retention_days"`
		PruneCron     string `yaml:"prune_cron"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills in defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DEFAULT_SYMBOL"); v != "" {
		cfg.Server.DefaultSymbol = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		cfg.Session.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Session.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Session.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Session.RedisDB = db
		}
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 2 * time.Minute
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.DefaultSymbol == "" {
		cfg.Server.DefaultSymbol = "AAPL"
	}

	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.DataSource.RequestsPerSec == 0 {
		cfg.DataSource.RequestsPerSec = 2
	}
	if cfg.DataSource.MockPrice == 0 {
		cfg.DataSource.MockPrice = 150
	}

	if cfg.Forecast.MaxP == 0 {
		cfg.Forecast.MaxP = 5
	}
	if cfg.Forecast.MaxQ == 0 {
		cfg.Forecast.MaxQ = 5
	}
	if cfg.Forecast.MaxD == 0 {
		cfg.Forecast.MaxD = 2
	}
	if cfg.Forecast.MaxModels == 0 {
		cfg.Forecast.MaxModels = 64
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
	}
	cfg.Session.Backend = strings.ToLower(cfg.Session.Backend)
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.SweepCron == "" {
		cfg.Session.SweepCron = "0 */10 * * * *"
	}
	if cfg.Session.RedisAddr == "" {
		cfg.Session.RedisAddr = "localhost:6379"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/marketlens.db"
	}
	if cfg.Database.RetentionDays == 0 {
		cfg.Database.RetentionDays = 30
	}
	if cfg.Database.PruneCron == "" {
		cfg.Database.PruneCron = "0 30 3 * * *"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider must be yahoo or mock, got %q", c.DataSource.Provider)
	}
	if c.DataSource.RequestsPerSec < 0 {
		return errors.New("data_source.requests_per_sec must not be negative")
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", c.Session.Backend)
	}
	switch c.Database.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return errors.New("database.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or none, got %q", c.Database.Driver)
	}
	if c.Database.RetentionDays < 0 {
		return errors.New("database.retention_days must not be negative")
	}
	if c.Forecast.MaxD > 2 {
		return errors.New("forecast.max_d must be at most 2")
	}
	return nil
}
