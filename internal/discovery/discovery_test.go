package discovery_test

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/speakleash/forumscraper/internal/config"
	"github.com/speakleash/forumscraper/internal/discovery"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, workspace string) config.DatasetConfig {
	t.Helper()
	base := url.URL{Scheme: "https", Host: "forum.example.com"}
	cfg, err := config.WithDefault(base, config.EngineInvision).
		WithDatasetName("testset").
		WithWorkspaceRoot(workspace).
		Build()
	require.NoError(t, err)
	return cfg
}

func TestDiscover_ResumesFromExistingTopicsTable(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	store := state.NewStore(cfg.WorkspaceDir(), cfg.DatasetName())
	require.NoError(t, os.MkdirAll(cfg.WorkspaceDir(), 0o755))
	require.NoError(t, store.AppendTopics([]state.Topic{
		{URL: "https://forum.example.com/topic/1", Title: "Topic 1"},
	}))

	profile := engine.Profile{}
	topics, err := discovery.Discover(context.Background(), pageFetcher{}, store, cfg, profile, robots.Policy{}, 0)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "https://forum.example.com/topic/1", topics[0].URL)
}

func TestDiscover_FallsBackToBFSWhenSitemapEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	store := state.NewStore(cfg.WorkspaceDir(), cfg.DatasetName())
	require.NoError(t, os.MkdirAll(cfg.WorkspaceDir(), 0o755))

	pages := pageFetcher{
		"https://forum.example.com": `<html><body>
			<div class="ipsDataItem_main"><a class="topic" href="/topic/1">Topic 1</a></div>
		</body></html>`,
	}

	profile := engine.Profile{
		TopicsSel:  []string{"div.ipsDataItem_main"},
		TopicAllow: []string{"topic"},
	}

	topics, err := discovery.Discover(context.Background(), pages, store, cfg, profile, robots.Policy{}, 0)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "https://forum.example.com/topic/1", topics[0].URL)

	persisted, loadErr := store.LoadTopics()
	require.NoError(t, loadErr)
	require.Len(t, persisted, 1)
	assert.Equal(t, "https://forum.example.com/topic/1", persisted[0].URL)
	_ = time.Millisecond
}
