package discovery_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/speakleash/forumscraper/internal/discovery"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageFetcher map[string]string

func (p pageFetcher) Fetch(_ context.Context, rawURL string) (int, []byte, string, failure.ClassifiedError) {
	body, ok := p[rawURL]
	if !ok {
		return 404, nil, "", nil
	}
	return 200, []byte(body), "", nil
}

func TestBFSCrawl_CollectsTopicsAcrossThreadAndPagination(t *testing.T) {
	pages := pageFetcher{
		"https://forum.example.com": `<html><body>
			<div class="ipsDataItem_main"><a class="forum" href="/forum/1">Forum 1</a></div>
		</body></html>`,
		"https://forum.example.com/forum/1": `<html><body>
			<div class="ipsDataItem_main"><a class="topic" href="/topic/1">Topic 1</a></div>
			<a class="next" href="/forum/1?page=2">Next</a>
		</body></html>`,
		"https://forum.example.com/forum/1?page=2": `<html><body>
			<div class="ipsDataItem_main"><a class="topic" href="/topic/2">Topic 2</a></div>
		</body></html>`,
	}

	base := url.URL{Scheme: "https", Host: "forum.example.com"}
	profile := engine.Profile{
		ThreadsSel:    []string{"div.ipsDataItem_main"},
		TopicsSel:     []string{"div.ipsDataItem_main"},
		PaginationSel: []string{"a.next"},
		ThreadAllow:   []string{"forum"},
		ThreadDeny:    []string{"topic"},
		TopicAllow:    []string{"topic"},
	}

	topics, err := discovery.BFSCrawl(context.Background(), pages, base, profile, robots.Policy{}, false, 0)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "https://forum.example.com/topic/1", topics[0].URL)
	assert.Equal(t, "https://forum.example.com/topic/2", topics[1].URL)
	_ = time.Millisecond
}
