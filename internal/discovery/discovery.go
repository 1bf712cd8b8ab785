package discovery

import (
	"context"
	"time"

	"github.com/speakleash/forumscraper/internal/config"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/internal/state"
)

// Discover produces the dataset's topic set: it skips straight to the
// existing topics table if present, otherwise tries sitemap discovery and
// falls back to BFSCrawl when the sitemap yields nothing, per the
// Discovery order of operations.
func Discover(ctx context.Context, fetcher robots.Fetcher, store *state.Store, cfg config.DatasetConfig, profile engine.Profile, policy robots.Policy, delay time.Duration) ([]TopicCandidate, error) {
	if store.TopicsExist() {
		existing, err := store.LoadTopics()
		if err != nil {
			return nil, err
		}
		out := make([]TopicCandidate, len(existing))
		for i, t := range existing {
			out[i] = TopicCandidate{URL: t.URL, Title: t.Title}
		}
		return out, nil
	}

	base := cfg.BaseURL()
	seedSitemap := cfg.SitemapOverride()
	if seedSitemap == "" {
		if maps := policy.SiteMaps(); len(maps) > 0 {
			seedSitemap = maps[0]
		}
	}
	if seedSitemap == "" {
		seedSitemap = base.Scheme + "://" + base.Host + "/sitemap.xml"
	}

	urls, err := WalkSitemap(ctx, fetcher, seedSitemap, base.Host, profile, policy, cfg.ForceCrawl())
	if err == nil && len(urls) > 0 {
		topics := make([]TopicCandidate, len(urls))
		for i, u := range urls {
			topics[i] = TopicCandidate{URL: u}
		}
		if serr := persistTopics(store, topics); serr != nil {
			return nil, serr
		}
		return topics, nil
	}

	topics, err := BFSCrawl(ctx, fetcher, base, profile, policy, cfg.ForceCrawl(), delay)
	if err != nil {
		return nil, err
	}
	if serr := persistTopics(store, topics); serr != nil {
		return nil, serr
	}
	return topics, nil
}

// persistTopics appends the discovered set to the topics table, sorted by
// insertion order and deduplicated on URL by the store itself.
func persistTopics(store *state.Store, topics []TopicCandidate) error {
	if len(topics) == 0 {
		return nil
	}
	rows := make([]state.Topic, len(topics))
	for i, t := range topics {
		rows[i] = state.Topic{URL: t.URL, Title: t.Title}
	}
	if err := store.AppendTopics(rows); err != nil {
		return err
	}
	return nil
}
