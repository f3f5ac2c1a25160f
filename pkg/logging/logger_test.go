package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferOutput captures entries for inspection.
type bufferOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (b *bufferOutput) Write(e LogEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	return nil
}

func (b *bufferOutput) Sync() error  { return nil }
func (b *bufferOutput) Close() error { return nil }

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, WARN, ParseSeverity("WARN"))
	assert.Equal(t, FATAL, ParseSeverity("FATAL"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))
}

func TestLoggerSeverityFiltering(t *testing.T) {
	buf := &bufferOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{buf}})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	require.Len(t, buf.entries, 2)
	assert.Equal(t, "warn message", buf.entries[0].Message)
	assert.Equal(t, ERROR, buf.entries[1].Severity)
}

func TestLoggerContextFields(t *testing.T) {
	buf := &bufferOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{buf}})

	ctx := WithPhase(WithRound(WithRunID(context.Background(), "run-1"), 3), "critic")
	logger.Info(ctx, "scored %d ideas", 5)

	require.Len(t, buf.entries, 1)
	entry := buf.entries[0]
	assert.Equal(t, "run-1", entry.RunID)
	assert.Equal(t, 3, entry.Round)
	assert.Equal(t, "critic", entry.Phase)
	assert.Equal(t, "scored 5 ideas", entry.Message)
}

func TestLoggerDefaultFields(t *testing.T) {
	buf := &bufferOutput{}
	logger := NewLogger(Config{
		Severity:      DEBUG,
		Outputs:       []Output{buf},
		DefaultFields: map[string]interface{}{"component": "orchestrator"},
	})

	logger.Info(context.Background(), "hello")

	require.Len(t, buf.entries, 1)
	assert.Equal(t, "orchestrator", buf.entries[0].Fields["component"])
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	out, err := NewFileOutput(path)
	require.NoError(t, err)

	logger := NewLogger(Config{Severity: INFO, Outputs: []Output{out}})
	logger.Info(WithRunID(context.Background(), "run-2"), "evolution started")
	require.NoError(t, out.Sync())
	require.NoError(t, out.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "evolution started"))
	assert.True(t, strings.Contains(string(content), "run=run-2"))
}

func TestGetLoggerReturnsSingleton(t *testing.T) {
	first := GetLogger()
	second := GetLogger()
	assert.Same(t, first, second)

	custom := NewLogger(Config{Severity: DEBUG})
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())
}
