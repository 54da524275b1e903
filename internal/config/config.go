package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// SaverKind selects where finished export artifacts are written.
type SaverKind string

const (
	SaverDisk  SaverKind = "disk"
	SaverAzure SaverKind = "azure"
)

type Config struct {
	Host string
	Port string

	// History backend (external collaborator).
	HistoryBaseURL string
	HistoryToken   string
	HistoryTimeout time.Duration

	// Image CDN host whose URLs accept a transformation segment.
	CDNHost string

	ImageFetchTimeout time.Duration
	RequestTimeout    time.Duration

	// Artifact saving.
	Saver          SaverKind
	OutputDir      string
	AzureAccount   string
	AzureKey       string
	AzureContainer string

	// Export worker pool size (0 = CPU count).
	ExportWorkers int

	MaxRequestBodySize int64
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		HistoryBaseURL:     getEnvOrDefault("HISTORY_BASE_URL", "http://localhost:5000"),
		HistoryToken:       os.Getenv("HISTORY_TOKEN"),
		HistoryTimeout:     parseDurationOrDefault("HISTORY_TIMEOUT", 15*time.Second),
		CDNHost:            getEnvOrDefault("CDN_HOST", "cloudinary.com"),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		Saver:              SaverKind(getEnvOrDefault("SAVER", string(SaverDisk))),
		OutputDir:          getEnvOrDefault("OUTPUT_DIR", "exports"),
		AzureAccount:       os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureKey:           os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:     getEnvOrDefault("AZURE_CONTAINER", "sunflower-exports"),
		ExportWorkers:      int(parseIntOrDefault("EXPORT_WORKERS", 0)),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1*1024*1024), // 1MB
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.HistoryBaseURL == "" {
		return nil, fmt.Errorf("HISTORY_BASE_URL must not be empty")
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.HistoryTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, history=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.HistoryTimeout)
	}
	switch cfg.Saver {
	case SaverDisk:
	case SaverAzure:
		if cfg.AzureAccount == "" || cfg.AzureKey == "" {
			return nil, fmt.Errorf("SAVER=azure requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
		}
	default:
		return nil, fmt.Errorf("invalid SAVER: %q", cfg.Saver)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
