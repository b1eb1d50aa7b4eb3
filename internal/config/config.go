// Package config loads service configuration from environment variables with
// an optional YAML override file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrWeightsSum      = errors.New("scoring weights must sum to 1.0")
	ErrInvalidTTL      = errors.New("cache.ttl_sec must be at least 1")
	ErrInvalidTimeout  = errors.New("sources.timeout_sec must be at least 1")
	ErrInvalidLogLevel = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Weights are the value-score components. They must sum to 1.0.
type Weights struct {
	Price   float64 `yaml:"price_weight"`
	Review  float64 `yaml:"review_weight"`
	Quality float64 `yaml:"quality_weight"`
}

// Config holds all service settings.
type Config struct {
	HTTPPort      string
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration
	SourceTimeout time.Duration
	LogLevel      string

	RapidAPIKey string
	AmazonHost  string
	EbayHost    string
	WalmartHost string

	Weights Weights
	AI      *AIConfig
}

// fileConfig is the optional YAML override file pointed to by
// PRICELENS_CONFIG. Any zero field keeps the env/default value.
type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	Cache struct {
		TTLSec int `yaml:"ttl_sec"`
	} `yaml:"cache"`
	Sources struct {
		TimeoutSec int `yaml:"timeout_sec"`
	} `yaml:"sources"`
	Scoring Weights `yaml:"scoring"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load builds the configuration from the environment, applies the optional
// YAML file on top and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL", 3600)) * time.Second,
		SourceTimeout: time.Duration(getEnvInt("SOURCE_TIMEOUT", 30)) * time.Second,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		RapidAPIKey:   getEnv("RAPIDAPI_KEY", ""),
		AmazonHost:    getEnv("RAPIDAPI_HOST_AMAZON", "real-time-amazon-data.p.rapidapi.com"),
		EbayHost:      getEnv("RAPIDAPI_HOST_EBAY", "ebay-search-result.p.rapidapi.com"),
		WalmartHost:   getEnv("RAPIDAPI_HOST_WALMART", "walmart-api.p.rapidapi.com"),
		Weights: Weights{
			Price:   0.35,
			Review:  0.35,
			Quality: 0.30,
		},
		AI: DefaultAIConfig(),
	}

	if path := os.Getenv("PRICELENS_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Server.Port != "" {
		c.HTTPPort = fc.Server.Port
	}
	if fc.Redis.Addr != "" {
		c.RedisAddr = fc.Redis.Addr
	}
	if fc.Redis.Password != "" {
		c.RedisPassword = fc.Redis.Password
	}
	if fc.Cache.TTLSec != 0 {
		c.CacheTTL = time.Duration(fc.Cache.TTLSec) * time.Second
	}
	if fc.Sources.TimeoutSec != 0 {
		c.SourceTimeout = time.Duration(fc.Sources.TimeoutSec) * time.Second
	}
	if fc.Scoring != (Weights{}) {
		c.Weights = fc.Scoring
	}
	if fc.Logging.Level != "" {
		c.LogLevel = fc.Logging.Level
	}
	return nil
}

func (c *Config) validate() error {
	sum := c.Weights.Price + c.Weights.Review + c.Weights.Quality
	if math.Abs(sum-1.0) > 1e-9 {
		return ErrWeightsSum
	}
	if c.CacheTTL < time.Second {
		return ErrInvalidTTL
	}
	if c.SourceTimeout < time.Second {
		return ErrInvalidTimeout
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
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
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
