package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level LogLevel) (*StructuredLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger, err := NewStructuredLogger(NewTestingConfig("test-service", buf).WithLevel(level))
	require.NoError(t, err)
	return logger, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestStructuredLogger_WritesJSONWithStandardFields(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelDebug)

	ctx := WithRequestID(context.Background(), "req-123")
	logger.Info(ctx, "hello", Fields{"symbol": "AAPL"})

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	entry := entries[0]

	assert.Equal(t, "hello", entry[FieldMessage])
	assert.Equal(t, "INFO", entry[FieldLevel])
	assert.Equal(t, "test-service", entry[FieldService])
	assert.Equal(t, "req-123", entry[FieldRequestID])
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Contains(t, entry, FieldTimestamp)
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     LogLevel
		wantCount int
	}{
		{name: "debug shows all", level: LevelDebug, wantCount: 4},
		{name: "info hides debug", level: LevelInfo, wantCount: 3},
		{name: "warn shows warn and error", level: LevelWarn, wantCount: 2},
		{name: "error only", level: LevelError, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(t, tt.level)
			ctx := context.Background()

			logger.Debug(ctx, "d", nil)
			logger.Info(ctx, "i", nil)
			logger.Warn(ctx, "w", nil)
			logger.Error(ctx, "e", nil)

			assert.Len(t, decodeLines(t, buf), tt.wantCount)
		})
	}
}

func TestStructuredLogger_SetLevel(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelDebug)

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.GetLevel())

	logger.Info(context.Background(), "hidden", nil)
	assert.Empty(t, buf.String())
}

func TestStructuredLogger_ErrorFields(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelDebug)

	original := Fields{"k": "v"}
	logger.ErrorWithError(context.Background(), "boom", errors.New("upstream down"), original)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "upstream down", entries[0][FieldError])
	assert.Equal(t, "*errors.errorString", entries[0][FieldErrorType])
	// Los campos del caller no se mutan
	assert.NotContains(t, original, FieldError)
}

func TestStructuredLogger_DurationFromContext(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelDebug)

	ctx := WithStartTime(context.Background(), time.Now().Add(-50*time.Millisecond))
	logger.Info(ctx, "timed", nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	duration, ok := entries[0][FieldDuration].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, duration, 50.0)
}

func TestStructuredLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	cfg := NewConfig("file-service", "1.0.0", "test").
		WithOutput(nil).
		WithFile(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})

	logger, err := NewStructuredLogger(cfg)
	require.NoError(t, err)

	logger.Info(context.Background(), "to file", nil)
	require.NoError(t, logger.Sync())

	assert.FileExists(t, path)
}

func TestLoggerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LoggerConfig)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*LoggerConfig) {}},
		{name: "invalid level", mutate: func(c *LoggerConfig) { c.Level = "TRACE" }, wantErr: "level"},
		{name: "invalid format", mutate: func(c *LoggerConfig) { c.Format = "xml" }, wantErr: "format"},
		{name: "no output", mutate: func(c *LoggerConfig) { c.Output = nil }, wantErr: "output"},
		{name: "file without writer is valid", mutate: func(c *LoggerConfig) { c.Output = nil; c.FilePath = "/tmp/x.log" }},
		{name: "empty service", mutate: func(c *LoggerConfig) { c.Service = "" }, wantErr: "service"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogLevelFromString(t *testing.T) {
	assert.Equal(t, LevelDebug, LogLevelFromString("debug"))
	assert.Equal(t, LevelWarn, LogLevelFromString("warning"))
	assert.Equal(t, LevelError, LogLevelFromString("ERROR"))
	assert.Equal(t, LevelInfo, LogLevelFromString("nonsense"))
	assert.Equal(t, FormatText, LogFormatFromString("text"))
	assert.Equal(t, FormatJSON, LogFormatFromString("anything"))
}

func TestDomainLoggers_AddDomainField(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelDebug)
	set := NewLoggerSet(logger)
	ctx := context.Background()

	set.HTTP.RequestCompleted(ctx, "GET", "/api/v1/quotes", 503, 12.5)
	set.Upstream.RetryScheduled(ctx, "quotes", 1, time.Second, errors.New("429"))
	set.Cache.Stale(ctx, "quote:AAPL")
	set.Market.BatchServed(ctx, "quotes", 2, 1, "Yahoo Finance")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 4)

	assert.Equal(t, "http", entries[0][FieldDomain])
	assert.Equal(t, "ERROR", entries[0][FieldLevel])

	assert.Equal(t, "upstream", entries[1][FieldDomain])
	assert.Equal(t, float64(1000), entries[1][FieldRetryDelay])

	assert.Equal(t, "cache", entries[2][FieldDomain])
	assert.Equal(t, true, entries[2][FieldCacheStale])

	assert.Equal(t, "market", entries[3][FieldDomain])
	assert.Equal(t, "WARN", entries[3][FieldLevel])
}

func TestRequestIDGenerator(t *testing.T) {
	plain := GenerateRequestID()
	assert.Len(t, plain, 36)
	assert.NotEqual(t, plain, GenerateRequestID())

	prefixed := NewRequestIDGenerator("md").Generate()
	assert.True(t, strings.HasPrefix(prefixed, "md_"))

	short := NewRequestIDGenerator("").GenerateShort()
	assert.Len(t, short, 8)
}
