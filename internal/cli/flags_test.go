package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfig_AppliesFlagOverrides(t *testing.T) {
	f := &datasetFlags{
		datasetURL:  "https://forum.example.com",
		forumEngine: "phpbb",
		datasetName: "custom_set",
		description: "desc",
		license:     "CC-BY",
		category:    "forum",
		processes:   4,
		timeSleep:   1.5,
		saveState:   t.TempDir(),
		minLenTxt:   50,
		checkpoint:  25,
		forceCrawl:  true,
		logLevel:    "DEBUG",
	}

	cfg, err := f.buildConfig()
	require.NoError(t, err)

	assert.Equal(t, "custom_set", cfg.DatasetName())
	assert.Equal(t, "desc", cfg.Description())
	assert.Equal(t, "CC-BY", cfg.License())
	assert.Equal(t, "forum", cfg.Category())
	assert.Equal(t, 4, cfg.Workers())
	assert.Equal(t, 1500*time.Millisecond, cfg.Delay())
	assert.Equal(t, 50, cfg.MinLen())
	assert.Equal(t, 25, cfg.CheckpointInterval())
	assert.True(t, cfg.ForceCrawl())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
}

func TestBuildConfig_RejectsInvalidDatasetURL(t *testing.T) {
	f := &datasetFlags{datasetURL: "not a url", forumEngine: "other"}
	_, err := f.buildConfig()
	assert.Error(t, err)
}

func TestBuildConfig_DefaultsWhenFlagsUnset(t *testing.T) {
	f := &datasetFlags{datasetURL: "https://forum.example.com", forumEngine: "invision"}
	cfg, err := f.buildConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers())
	assert.Equal(t, 500*time.Millisecond, cfg.Delay())
	assert.False(t, cfg.ForceCrawl())
}

func TestBuildConfig_ThreadAndTopicOverridesFlowThrough(t *testing.T) {
	f := &datasetFlags{
		datasetURL:       "https://forum.example.com",
		forumEngine:      "xenforo",
		threadsClass:     []string{"div.custom-thread"},
		topicsWhitelist:  []string{"allow-me"},
		topicsBlacklist:  []string{"deny-me"},
		contentClass:     []string{"div.custom-body"},
		topicTitleClass:  []string{"h1.custom-title"},
		pagination:       []string{"a.custom-next"},
		threadsWhitelist: []string{"forum-allow"},
		threadsBlacklist: []string{"forum-deny"},
	}
	cfg, err := f.buildConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"div.custom-thread"}, cfg.ThreadsOverride())
	assert.Equal(t, []string{"allow-me"}, cfg.TopicAllowOverride())
	assert.Equal(t, []string{"deny-me"}, cfg.TopicDenyOverride())
	assert.Equal(t, []string{"div.custom-body"}, cfg.BodyOverride())
	assert.Equal(t, []string{"h1.custom-title"}, cfg.TitleOverride())
	assert.Equal(t, []string{"a.custom-next"}, cfg.PaginationOverride())
	assert.Equal(t, []string{"forum-allow"}, cfg.ThreadAllowOverride())
	assert.Equal(t, []string{"forum-deny"}, cfg.ThreadDenyOverride())
}
