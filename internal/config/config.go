package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth; empty disables bearer auth on /api.
	APIKey string `yaml:"apiKey"`

	// Summary
	ShowSentences int `yaml:"showSentences"`

	// Loaded documents are evicted after this long; zero keeps them.
	DocumentTTL time.Duration `yaml:"documentTTL"`

	// Fetching
	FetchTimeout     time.Duration `yaml:"fetchTimeout"`
	FetchCacheTTL    time.Duration `yaml:"fetchCacheTTL"`
	FetchAPIKey      string        `yaml:"fetchAPIKey"`
	MaxDocumentBytes int64         `yaml:"maxDocumentBytes"`

	// Redis fetch cache; empty address uses the in-memory cache.
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`

	// External sentence ranking
	SummarizerURL    string `yaml:"summarizerURL"`
	SummarizerAPIKey string `yaml:"summarizerAPIKey"`

	// Background prefetch worker pool
	WorkerCount        int           `yaml:"workerCount"`
	MaxQueueSize       int           `yaml:"maxQueueSize"`
	MaxConcurrentLoads int           `yaml:"maxConcurrentLoads"`
	JobTTL             time.Duration `yaml:"jobTTL"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdfFallbackPdftotext"`

	// Logging
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

func defaults() Config {
	return Config{
		Port:                 "8090",
		ShowSentences:        5,
		DocumentTTL:          time.Hour,
		FetchTimeout:         30 * time.Second,
		FetchCacheTTL:        10 * time.Minute,
		MaxDocumentBytes:     52428800, // 50MB
		WorkerCount:          2,
		MaxQueueSize:         100,
		MaxConcurrentLoads:   4,
		JobTTL:               time.Hour,
		PDFFallbackPdftotext: true,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// Load builds the configuration from defaults, an optional YAML file named
// by CONFIG_FILE, and the environment, in increasing priority. A .env file
// in the working directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("API_KEY", cfg.APIKey)
	cfg.ShowSentences = envInt("SHOW_SENTENCES", cfg.ShowSentences)
	cfg.DocumentTTL = envDuration("DOCUMENT_TTL", cfg.DocumentTTL)
	cfg.FetchTimeout = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.FetchCacheTTL = envDuration("FETCH_CACHE_TTL", cfg.FetchCacheTTL)
	cfg.FetchAPIKey = envOr("FETCH_API_KEY", cfg.FetchAPIKey)
	cfg.MaxDocumentBytes = envInt64("MAX_DOCUMENT_BYTES", cfg.MaxDocumentBytes)
	cfg.RedisAddr = envOr("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envOr("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envInt("REDIS_DB", cfg.RedisDB)
	cfg.SummarizerURL = envOr("SUMMARIZER_URL", cfg.SummarizerURL)
	cfg.SummarizerAPIKey = envOr("SUMMARIZER_API_KEY", cfg.SummarizerAPIKey)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentLoads = envInt("MAX_CONCURRENT_LOADS", cfg.MaxConcurrentLoads)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 52428800
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 4
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.ShowSentences < 1 {
		return fmt.Errorf("SHOW_SENTENCES must be at least 1, got %d", c.ShowSentences)
	}
	if c.FetchCacheTTL < 0 {
		return fmt.Errorf("FETCH_CACHE_TTL must not be negative")
	}
	if c.SummarizerURL != "" {
		u, err := url.Parse(c.SummarizerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("SUMMARIZER_URL must be an absolute URL, got %q", c.SummarizerURL)
		}
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
