package splitpatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdLoggerFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelWarn, &buf)
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden too")
	logger.Warn(ctx, "renamed", Field("file", "a.patch.000"))
	logger.Error(ctx, "failed", errors.New("disk full"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARN] renamed fields=[file=a.patch.000]")
	assert.Contains(t, lines[1], `[ERROR] [error="disk full"] failed`)
}

func TestStdLoggerCarriesFieldsAndTraceID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelDebug, &buf).WithFields(Field("input", "big.patch"))
	ctx := WithTraceID(context.Background(), "run-1")

	logger.Debug(ctx, "section", Field("stem", "x.c"))
	assert.Contains(t, buf.String(), "[DEBUG] section fields=[input=big.patch stem=x.c trace_id=run-1]")
	assert.Equal(t, "run-1", TraceID(ctx))
	assert.Equal(t, "", TraceID(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"":        LogLevelInfo,
		"Warning": LogLevelWarn,
		"error":   LogLevelError,
	} {
		got, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}
