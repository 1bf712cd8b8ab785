package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/speakleash/forumscraper/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLoadTopics(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, "dataset")

	assert.False(t, store.TopicsExist())

	err := store.AppendTopics([]state.Topic{
		{URL: "https://forum.example.com/t1", Title: "Topic 1"},
		{URL: "https://forum.example.com/t2", Title: "Topic 2"},
	})
	require.Nil(t, err)
	assert.True(t, store.TopicsExist())

	topics, err := store.LoadTopics()
	require.Nil(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "https://forum.example.com/t1", topics[0].URL)
	assert.Equal(t, "Topic 2", topics[1].Title)
}

func TestLoadTopics_MissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, "dataset")

	topics, err := store.LoadTopics()
	require.Nil(t, err)
	assert.Empty(t, topics)
}

func TestLoadTopics_DeduplicatesByURL(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, "dataset")

	require.Nil(t, store.AppendTopics([]state.Topic{{URL: "https://forum.example.com/t1", Title: "First"}}))
	require.Nil(t, store.AppendTopics([]state.Topic{{URL: "https://forum.example.com/t1", Title: "Duplicate"}}))

	topics, err := store.LoadTopics()
	require.Nil(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "First", topics[0].Title)
}

func TestAppendAndLoadVisited(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, "dataset")

	err := store.AppendVisited([]state.VisitRecord{
		{URL: "https://forum.example.com/t1", Title: "Topic 1", Visited: true, Skipped: false},
		{URL: "https://forum.example.com/t2", Title: "", Visited: true, Skipped: true},
	})
	require.Nil(t, err)

	records, err := store.LoadVisited()
	require.Nil(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Visited)
	assert.False(t, records[0].Skipped)
	assert.True(t, records[1].Skipped)
}

func TestAppendTopics_HeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, "dataset")

	require.Nil(t, store.AppendTopics([]state.Topic{{URL: "https://forum.example.com/t1", Title: "A"}}))
	require.Nil(t, store.AppendTopics([]state.Topic{{URL: "https://forum.example.com/t2", Title: "B"}}))

	content, err := os.ReadFile(filepath.Join(dir, "Topics_URLs_-_dataset.csv"))
	require.NoError(t, err)
	lines := 0
	for _, b := range content {
		if b == '\n' {
			lines++
		}
	}
	assert.Equal(t, 3, lines) // header + 2 rows
}
