package discovery

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"

	sitemap "github.com/oxffaa/gopher-parse-sitemap"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/pkg/urlutil"
)

type sitemapIndex struct {
	Locations []string `xml:"sitemap>loc"`
}

// WalkSitemap fetches sitemapURL and every child sitemap it references,
// returning the flat set of page URLs whose host matches datasetHost and
// which pass the topic filter and robots.allowed.
func WalkSitemap(ctx context.Context, fetcher robots.Fetcher, sitemapURL, datasetHost string, profile engine.Profile, policy robots.Policy, forceCrawl bool) ([]string, error) {
	return walkSitemap(ctx, fetcher, sitemapURL, datasetHost, profile, policy, forceCrawl, make(map[string]bool))
}

func walkSitemap(ctx context.Context, fetcher robots.Fetcher, sitemapURL, datasetHost string, profile engine.Profile, policy robots.Policy, forceCrawl bool, visited map[string]bool) ([]string, error) {
	if visited[sitemapURL] {
		return nil, nil
	}
	visited[sitemapURL] = true

	status, body, _, ferr := fetcher.Fetch(ctx, sitemapURL)
	if ferr != nil || status != 200 {
		return nil, nil
	}

	if bytes.Contains(body, []byte("<sitemapindex")) {
		var idx sitemapIndex
		if err := xml.Unmarshal(body, &idx); err != nil {
			return nil, nil
		}
		var out []string
		for _, child := range idx.Locations {
			urls, err := walkSitemap(ctx, fetcher, child, datasetHost, profile, policy, forceCrawl, visited)
			if err != nil {
				continue
			}
			out = append(out, urls...)
		}
		return out, nil
	}

	var out []string
	err := sitemap.Parse(bytes.NewReader(body), func(e sitemap.Entry) error {
		loc := e.GetLocation()
		if keepSitemapURL(loc, datasetHost, profile, policy, forceCrawl) {
			out = append(out, loc)
		}
		return nil
	})
	if err != nil {
		return nil, nil
	}
	return out, nil
}

func keepSitemapURL(rawURL, datasetHost string, profile engine.Profile, policy robots.Policy, forceCrawl bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !urlutil.SameHost(parsed.Host, datasetHost) {
		return false
	}
	return engine.KeepHref(rawURL, profile.TopicAllow, profile.TopicDeny, policy.Allowed(rawURL), forceCrawl)
}
