package cli

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/speakleash/forumscraper/internal/archive"
	"github.com/speakleash/forumscraper/internal/config"
	"github.com/speakleash/forumscraper/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnToDelta_MergesExistingShardsAndWritesManifest(t *testing.T) {
	dir := t.TempDir()
	base := url.URL{Scheme: "https", Host: "forum.example.com"}
	cfg, err := config.WithDefault(base, config.EngineOther).
		WithDatasetName("dataset").
		WithDescription("a test corpus").
		WithLicense("CC-BY").
		WithWorkspaceRoot(dir).
		Build()
	require.NoError(t, err)

	shardDir := filepath.Join(cfg.WorkspaceDir(), "temp_scraper_data")
	arc := archive.New(shardDir)
	require.Nil(t, arc.Add("first document", archive.RecordMeta{URL: "https://forum.example.com/t/1", Characters: 14}))
	require.Nil(t, arc.Add("second document", archive.RecordMeta{URL: "https://forum.example.com/t/2", Characters: 15}))
	require.Nil(t, arc.Commit())

	require.NoError(t, turnToDelta(context.Background(), cfg))

	manifestPath := filepath.Join(cfg.WorkspaceDir(), "archive_merged-JSONL_ZST", "dataset", "dataset.manifest")
	body, rerr := os.ReadFile(manifestPath)
	require.NoError(t, rerr)

	var m manifest.Manifest
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, "dataset", m.Name)
	assert.Equal(t, "a test corpus", m.Description)
	assert.Equal(t, 2, m.Stats.Documents)
	assert.Equal(t, 29, m.Stats.Characters)
}
