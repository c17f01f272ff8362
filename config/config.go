package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Criteria and storage
	CriteriaFile  string
	DataStorePath string
	StoreBackend  string // "file" or "postgres"
	PostgresDSN   string

	// Notifier configuration
	NotifierBackend   string // "line" or "redis"
	LineChannelToken  string
	LineUserID        string
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int64

	// Fetch block cache; empty address selects the in-memory cache
	MemcacheAddr string

	// Scrape loop
	SearchURL     string
	PageDelay     time.Duration
	IntervalHours int

	// Optional read API; empty address disables it
	APIAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLen, _ := strconv.ParseInt(getEnv("REDIS_STREAM_MAXLEN", "500"), 10, 64)
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_SECONDS", "2"))
	intervalHours, _ := strconv.Atoi(getEnv("INTERVAL_HOURS", "24"))

	return &Config{
		CriteriaFile:      getEnv("CRITERIA_FILE", "criteria.yaml"),
		DataStorePath:     getEnv("DATA_STORE_PATH", "data"),
		StoreBackend:      getEnv("STORE_BACKEND", "file"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		NotifierBackend:   getEnv("NOTIFIER_BACKEND", "line"),
		LineChannelToken:  getEnv("LINE_CHANNEL_TOKEN", ""),
		LineUserID:        getEnv("LINE_USER_ID", ""),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "listings"),
		RedisStreamMaxLen: redisStreamMaxLen,
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", ""),
		SearchURL:         getEnv("SEARCH_URL", ""),
		PageDelay:         time.Duration(pageDelay) * time.Second,
		IntervalHours:     intervalHours,
		APIAddr:           getEnv("API_ADDR", ""),
		Environment:       getEnv("WATCHER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "file":
		if c.DataStorePath == "" {
			return fmt.Errorf("DATA_STORE_PATH must not be empty")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres store backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}

	switch c.NotifierBackend {
	case "line":
		if c.LineChannelToken == "" || c.LineUserID == "" {
			return fmt.Errorf("LINE_CHANNEL_TOKEN and LINE_USER_ID are required for the line notifier")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR must not be empty for the redis notifier")
		}
	default:
		return fmt.Errorf("unknown notifier backend: %s", c.NotifierBackend)
	}

	if c.IntervalHours <= 0 {
		return fmt.Errorf("INTERVAL_HOURS must be positive")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
