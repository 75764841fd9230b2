package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Report defaults
	NodeRangeStart int64
	NodeRangeEnd   int64
	LabelsFile     string
	TemplatePath   string
	ChartWidth     int
	ChartHeight    int

	// Aggregation policy
	StrictTriads bool
	RequireData  bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PCHREPORT_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 67108864), // 64MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		NodeRangeStart: envInt64("NODE_RANGE_START", 8000001),
		NodeRangeEnd:   envInt64("NODE_RANGE_END", 8000045),
		LabelsFile:     os.Getenv("LABELS_FILE"),
		TemplatePath:   os.Getenv("TEMPLATE_PATH"),
		ChartWidth:     envInt("CHART_WIDTH", 1200),
		ChartHeight:    envInt("CHART_HEIGHT", 900),

		StrictTriads: envBool("STRICT_TRIADS", false),
		RequireData:  envBool("REQUIRE_DATA", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 67108864
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings every entry point needs.
func (c Config) Validate() error {
	if c.NodeRangeStart > c.NodeRangeEnd {
		return fmt.Errorf("NODE_RANGE_START (%d) must not exceed NODE_RANGE_END (%d)", c.NodeRangeStart, c.NodeRangeEnd)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("CHART_WIDTH and CHART_HEIGHT must be positive, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	return nil
}

// ValidateServer additionally requires the API key.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("PCHREPORT_API_KEY is required")
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
