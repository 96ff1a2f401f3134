package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings. Values come from the environment, which may
// be seeded from a .env file.
type Config struct {
	DBPath       string
	StorageKey   string
	StorageQuota int
	Addr         string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DBPath:       "./tweets.db",
		StorageKey:   "tweets",
		StorageQuota: 5 * 1024 * 1024,
		Addr:         ":4422",
		LogLevel:     "info",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// Load reads envFile (when it exists) into the environment without overriding
// variables that are already set, then builds a Config from the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if v := os.Getenv("TWEETS_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TWEETS_STORAGE_KEY"); v != "" {
		cfg.StorageKey = v
	}
	if v := os.Getenv("TWEETS_STORAGE_QUOTA"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("TWEETS_STORAGE_QUOTA must be a non-negative integer, got %q", v)
		}
		cfg.StorageQuota = n
	}
	if v := os.Getenv("TWEETS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TWEETS_READ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("TWEETS_READ_TIMEOUT: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if v := os.Getenv("TWEETS_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("TWEETS_WRITE_TIMEOUT: %w", err)
		}
		cfg.WriteTimeout = d
	}
	return cfg, nil
}
