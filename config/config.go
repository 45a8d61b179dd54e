package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string
	ListenAddr  string
	SweepSecret string
	LogLevel    string
	LogPath     string
	Env         string // development, production
	Sweep       SweepConfig
}

type SweepConfig struct {
	Cron     string        `yaml:"cron"`
	Interval time.Duration `yaml:"-"`
	Workers  int           `yaml:"workers"`
	Notifier string        `yaml:"notifier"` // store, log

	// RawInterval holds the yaml spelling; Interval is parsed from it.
	RawInterval string `yaml:"interval"`
}

// sweepConfigPath is an optional YAML override for sweep tuning;
// environment variables fill everything it does not set.
const sweepConfigPath = "config/sweep.yaml"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		SweepSecret: os.Getenv("SWEEP_SECRET"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPath:     getEnv("LOG_PATH", "nestwatch.log"),
		Env:         getEnv("APP_ENV", "development"),
		Sweep: SweepConfig{
			Cron:     os.Getenv("SWEEP_CRON"),
			Workers:  getEnvInt("SWEEP_WORKERS", 4),
			Notifier: getEnv("SWEEP_NOTIFIER", "store"),
		},
	}

	if interval := os.Getenv("SWEEP_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Sweep.Interval = d
		}
	}

	if err := cfg.loadSweepConfig(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) loadSweepConfig() error {
	data, err := os.ReadFile(sweepConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var sweep SweepConfig
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return fmt.Errorf("parse %s: %w", sweepConfigPath, err)
	}

	if sweep.Cron != "" {
		c.Sweep.Cron = sweep.Cron
	}
	if sweep.RawInterval != "" {
		d, err := time.ParseDuration(sweep.RawInterval)
		if err != nil {
			return fmt.Errorf("parse %s interval: %w", sweepConfigPath, err)
		}
		c.Sweep.Interval = d
	}
	if sweep.Workers > 0 {
		c.Sweep.Workers = sweep.Workers
	}
	if sweep.Notifier != "" {
		c.Sweep.Notifier = sweep.Notifier
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
