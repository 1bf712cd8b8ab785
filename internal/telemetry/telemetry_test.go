package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/speakleash/forumscraper/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesEventsToFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := telemetry.NewLogger(dir, "DEBUG")
	require.NoError(t, err)

	comp := logger.For("discovery")
	comp.Info("topics found", map[string]any{"count": 3})
	comp.Debug("page fetched", map[string]any{"url": "https://forum.example.com/t/1"})
	comp.Warn("shard mismatch", map[string]any{"expected": 2, "actual": 1})
	comp.Error("fetch failed", telemetry.CauseNetworkFailure, map[string]any{"url": "https://forum.example.com"})
	require.NoError(t, logger.Close())

	entries, rerr := os.ReadDir(dir)
	require.NoError(t, rerr)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "logs_")

	body, rerr := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, rerr)
	content := string(body)
	assert.Contains(t, content, "topics found")
	assert.Contains(t, content, "discovery")
	assert.Contains(t, content, "network_failure")
}

func TestNewLogger_DefaultsUnknownLevelToInfo(t *testing.T) {
	dir := t.TempDir()
	logger, err := telemetry.NewLogger(dir, "NONSENSE")
	require.NoError(t, err)
	defer logger.Close()

	comp := logger.For("merge")
	comp.Debug("should not appear", nil)
	comp.Info("should appear", nil)

	entries, rerr := os.ReadDir(dir)
	require.NoError(t, rerr)
	require.Len(t, entries, 1)

	body, rerr := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, rerr)
	content := string(body)
	assert.NotContains(t, content, "should not appear")
	assert.Contains(t, content, "should appear")
}
