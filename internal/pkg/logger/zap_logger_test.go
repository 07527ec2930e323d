package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_GetLogsNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	l := NewIsolatedLogger(path)

	l.Info("SESSION", "login succeeded", map[string]interface{}{"username": "ana"})
	l.Warn("ORCHESTRATOR", "history refresh failed", nil)
	l.Error("GATEWAY", "request failed", map[string]interface{}{"error": "refused"})
	_ = l.Sync()

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "request failed", entries[0].Message)
	assert.Equal(t, "GATEWAY", entries[0].Module)
	assert.Equal(t, "login succeeded", entries[2].Message)
	assert.NotEmpty(t, entries[2].Id)

	errorsOnly, err := l.GetLogs("ERROR", 10, 0)
	require.NoError(t, err)
	require.Len(t, errorsOnly, 1)
	assert.Equal(t, "refused", errorsOnly[0].Details["error"])

	page, err := l.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "history refresh failed", page[0].Message)

	past, err := l.GetLogs("", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestGetLogs_MissingFile(t *testing.T) {
	l := &ZapLogger{logger: NewNopLogger().logger, filePath: filepath.Join(t.TempDir(), "none.log")}
	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = NewNopLogger().GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
