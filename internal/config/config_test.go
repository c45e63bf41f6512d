package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"BOOKBIND_ROOT", "BOOKBIND_MANIFEST", "PORT", "BOOKBIND_API_KEY",
		"WORDS_PER_MINUTE", "WORKER_COUNT", "MAX_QUEUE_SIZE", "LOAD_CONCURRENCY",
		"JOB_TTL", "WATCH_DEBOUNCE", "PDF_FALLBACK_PDFTOTEXT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "book.yaml", cfg.ManifestPath)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 200, cfg.WordsPerMinute)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, 16, cfg.MaxQueueSize)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
	assert.True(t, cfg.PDFFallbackPdftotext)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKBIND_ROOT", "/srv/book")
	t.Setenv("WORDS_PER_MINUTE", "250")
	t.Setenv("WATCH_DEBOUNCE", "2s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()
	assert.Equal(t, "/srv/book", cfg.Root)
	assert.Equal(t, 250, cfg.WordsPerMinute)
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("WORDS_PER_MINUTE", "fast")
	t.Setenv("WORKER_COUNT", "-3")

	cfg := Load()
	assert.Equal(t, 200, cfg.WordsPerMinute)
	assert.Equal(t, 2, cfg.WorkerCount)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.Port = "http"
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Port")
	assert.Contains(t, err.Error(), "LogLevel")
}
