package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	API    APIConfig    `yaml:"api"`
	Sync   SyncConfig   `yaml:"sync"`
	Queue  QueueConfig  `yaml:"queue"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type APIConfig struct {
	BaseURL       string `yaml:"base_url"`
	TimeoutSecs   int    `yaml:"timeout_seconds"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
}

// Timeout returns the catalog request timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CacheTTL returns the API response cache lifetime.
func (c APIConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

type SyncConfig struct {
	IntervalMins       int `yaml:"interval_minutes"`
	MaintenanceMins    int `yaml:"maintenance_minutes"`
	ReconnectDelaySecs int `yaml:"reconnect_delay_seconds"`
}

// Interval returns the periodic sync interval.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMins) * time.Minute
}

// MaintenanceInterval returns the cache maintenance interval.
func (c SyncConfig) MaintenanceInterval() time.Duration {
	return time.Duration(c.MaintenanceMins) * time.Minute
}

// ReconnectDelay returns the post-reconnect sync debounce.
func (c SyncConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelaySecs) * time.Second
}

type QueueConfig struct {
	MaxAttempts      int `yaml:"max_attempts"`
	BackoffBaseMS    int `yaml:"backoff_base_ms"`
	DrainIntervalMin int `yaml:"drain_interval_minutes"`
	ProbeIntervalSec int `yaml:"probe_interval_seconds"`
}

// BackoffBase returns the initial retry delay for queued operations.
func (c QueueConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}

// DrainInterval returns the periodic queue drain interval.
func (c QueueConfig) DrainInterval() time.Duration {
	return time.Duration(c.DrainIntervalMin) * time.Minute
}

// ProbeInterval returns the connectivity probe interval.
func (c QueueConfig) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSec) * time.Second
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "weekendly.db",
		},
		API: APIConfig{
			BaseURL:       "https://api.weekendly.app",
			TimeoutSecs:   10,
			CacheTTLHours: 24,
		},
		Sync: SyncConfig{
			IntervalMins:       5,
			MaintenanceMins:    60,
			ReconnectDelaySecs: 1,
		},
		Queue: QueueConfig{
			MaxAttempts:      5,
			BackoffBaseMS:    500,
			DrainIntervalMin: 5,
			ProbeIntervalSec: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("WEEKENDLY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("WEEKENDLY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("WEEKENDLY_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WEEKENDLY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("WEEKENDLY_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if baseURL := os.Getenv("WEEKENDLY_API_BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if level := os.Getenv("WEEKENDLY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
