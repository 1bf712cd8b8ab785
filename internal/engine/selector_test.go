package engine_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/speakleash/forumscraper/internal/config"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector_Shapes(t *testing.T) {
	sel, err := engine.ParseSelector("div >> class :: my-post")
	require.NoError(t, err)
	assert.Equal(t, []string{"div"}, sel.Tags)
	assert.Equal(t, "class", sel.Attr)
	assert.Equal(t, "my-post", sel.Value)
	assert.Equal(t, []string{"div.my-post"}, sel.ToCSS())

	sel, err = engine.ParseSelector("data-role :: commentContent")
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultTags, sel.Tags)

	sel, err = engine.ParseSelector("ipsPagination_next")
	require.NoError(t, err)
	assert.Equal(t, "class", sel.Attr)
	assert.Equal(t, "ipsPagination_next", sel.Value)

	sel, err = engine.ParseSelector("div[data-role=commentContent]")
	require.NoError(t, err)
	assert.Equal(t, "div[data-role=commentContent]", sel.Literal)
}

func TestBuildProfile_AppendsOverridesNotReplaces(t *testing.T) {
	base := url.URL{Scheme: "https", Host: "forum.example.com"}
	cfg, err := config.WithDefault(base, config.EnginePhpBB).
		WithBodyOverride([]string{"div >> class :: my-post"}).Build()
	require.NoError(t, err)

	profile, err := engine.BuildProfile(cfg)
	require.NoError(t, err)

	assert.Contains(t, profile.BodySel, "div.content")
	assert.Contains(t, profile.BodySel, "div.postbody")
	assert.Contains(t, profile.BodySel, "div.my-post")
}

func TestExtractBody_ConcatenatesMatches(t *testing.T) {
	html := `<html><body><div class="postbody">First post.</div><div class="postbody">Second post.</div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	text := engine.ExtractBody(doc.Selection, []string{"div.postbody"})
	assert.Equal(t, "First post.\nSecond post.\n", text)
}

func TestFirstNonEmptyText_TriesInOrder(t *testing.T) {
	html := `<html><body><h2 class="topic-title">Topic Title</h2></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	text := engine.FirstNonEmptyText(doc.Selection, []string{"h1", "h2.topic-title"})
	assert.Equal(t, "Topic Title", text)
}

func TestKeepHref(t *testing.T) {
	assert.True(t, engine.KeepHref("/viewtopic.php?t=1", []string{"topic"}, []string{"page"}, true, false))
	assert.False(t, engine.KeepHref("/viewtopic.php?t=1&page=2", []string{"topic"}, []string{"page"}, true, false))
	assert.False(t, engine.KeepHref("/viewtopic.php?t=1", nil, nil, false, false))
	assert.True(t, engine.KeepHref("/viewtopic.php?t=1", nil, nil, false, true))
}
