package config_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/speakleash/forumscraper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestWithDefault_Build_DerivesDatasetName(t *testing.T) {
	base := mustParse(t, "https://forum.example.com/")
	cfg, err := config.WithDefault(base, config.EnginePhpBB).Build()
	require.NoError(t, err)

	assert.Equal(t, "phpbb_forum_example_com_corpus", cfg.DatasetName())
	assert.Equal(t, 2, cfg.Workers())
	assert.Equal(t, 500*time.Millisecond, cfg.Delay())
	assert.Equal(t, 100, cfg.CheckpointInterval())
	assert.Equal(t, 20, cfg.MinLen())
}

func TestBuild_RejectsInvalidWorkers(t *testing.T) {
	base := mustParse(t, "https://forum.example.com/")
	_, err := config.WithDefault(base, config.EngineInvision).WithWorkers(0).Build()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBuild_RejectsUnknownEngine(t *testing.T) {
	base := mustParse(t, "https://forum.example.com/")
	_, err := config.WithDefault(base, config.EngineTag("unknown")).Build()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBuild_RejectsMissingScheme(t *testing.T) {
	_, err := config.WithDefault(url.URL{Host: "forum.example.com"}, config.EngineXenForo).Build()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestWithConfigFile_MissingFile(t *testing.T) {
	_, err := config.WithConfigFile("/does/not/exist.json")
	assert.ErrorIs(t, err, config.ErrFileDoesNotExist)
}

func TestOverrideLists_AreCopiedNotAliased(t *testing.T) {
	base := mustParse(t, "https://forum.example.com/")
	overrides := []string{"div >> class :: my-post"}
	cfg, err := config.WithDefault(base, config.EnginePhpBB).WithBodyOverride(overrides).Build()
	require.NoError(t, err)

	got := cfg.BodyOverride()
	got[0] = "mutated"
	assert.Equal(t, "div >> class :: my-post", cfg.BodyOverride()[0])
}

func TestWorkspaceDir(t *testing.T) {
	base := mustParse(t, "https://forum.example.com/")
	cfg, err := config.WithDefault(base, config.EngineOther).WithDatasetName("custom").Build()
	require.NoError(t, err)
	assert.Equal(t, "scraper_workspace/custom", cfg.WorkspaceDir())
}
