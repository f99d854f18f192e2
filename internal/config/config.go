package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	Reminders ReminderConfig  `yaml:"reminders"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // stdio or http
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // sqlite or redis
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

type ReminderConfig struct {
	Backend      string        `yaml:"backend"` // native or polled
	PollInterval time.Duration `yaml:"poll_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		DB: DBConfig{
			Path: "habitkit.db",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			Namespace: "habitkit",
		},
		Reminders: ReminderConfig{
			Backend:      "native",
			PollInterval: time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("HABITKIT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("HABITKIT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("HABITKIT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HABITKIT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("HABITKIT_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if backend := os.Getenv("HABITKIT_STORAGE"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if dbPath := os.Getenv("HABITKIT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if addr := os.Getenv("HABITKIT_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if backend := os.Getenv("HABITKIT_REMINDER_BACKEND"); backend != "" {
		cfg.Reminders.Backend = backend
	}
	if interval := os.Getenv("HABITKIT_POLL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HABITKIT_POLL_INTERVAL: %w", err)
		}
		cfg.Reminders.PollInterval = d
	}
	if level := os.Getenv("HABITKIT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("HABITKIT_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Transport.Mode = strings.ToLower(c.Transport.Mode)
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	c.Reminders.Backend = strings.ToLower(c.Reminders.Backend)

	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	switch c.Storage.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("invalid storage backend %q: want sqlite or redis", c.Storage.Backend)
	}
	switch c.Reminders.Backend {
	case "native", "polled":
	default:
		return fmt.Errorf("invalid reminder backend %q: want native or polled", c.Reminders.Backend)
	}
	if c.Reminders.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval %s", c.Reminders.PollInterval)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
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
