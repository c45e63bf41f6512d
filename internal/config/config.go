package config

import (
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	// Book location
	Root         string
	ManifestPath string

	// Preview server
	Port   string
	APIKey string

	// Validation
	WordsPerMinute int

	// Build pipeline
	WorkerCount     int
	MaxQueueSize    int
	LoadConcurrency int
	JobTTL          time.Duration

	// Watch mode
	WatchDebounce time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

func Load() Config {
	cfg := Config{
		Root:         envOr("BOOKBIND_ROOT", "."),
		ManifestPath: envOr("BOOKBIND_MANIFEST", "book.yaml"),

		Port:   envOr("PORT", "8090"),
		APIKey: os.Getenv("BOOKBIND_API_KEY"),

		WordsPerMinute: envInt("WORDS_PER_MINUTE", 200),

		WorkerCount:     envInt("WORKER_COUNT", 2),
		MaxQueueSize:    envInt("MAX_QUEUE_SIZE", 16),
		LoadConcurrency: envInt("LOAD_CONCURRENCY", 8),
		JobTTL:          envDuration("JOB_TTL", 1*time.Hour),

		WatchDebounce: envDuration("WATCH_DEBOUNCE", 500*time.Millisecond),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: strings.ToLower(envOr("LOG_LEVEL", "info")),
	}

	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = 200
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.LoadConcurrency <= 0 {
		cfg.LoadConcurrency = 8
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 500 * time.Millisecond
	}

	return cfg
}

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.ManifestPath, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.WordsPerMinute, validation.Min(1)),
		validation.Field(&c.WorkerCount, validation.Min(1)),
		validation.Field(&c.MaxQueueSize, validation.Min(1)),
		validation.Field(&c.LoadConcurrency, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
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
