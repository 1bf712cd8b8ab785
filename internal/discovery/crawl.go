package discovery

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/frontier"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/pkg/urlutil"
)

// errNonOKStatus is returned by fetchDoc when a page fetch completes without
// a transport error but the response status isn't 200; the page is skipped
// the same way a transport failure is.
var errNonOKStatus = errors.New("discovery: non-200 response status")

// TopicCandidate is one topic URL discovered either via sitemap or BFS crawl.
type TopicCandidate struct {
	URL   string
	Title string
}

// BFSCrawl walks thread listing pages breadth-first starting at base,
// collecting topic anchors and following pagination, per the HTML-crawl
// fallback order of operations.
func BFSCrawl(ctx context.Context, fetcher robots.Fetcher, base url.URL, profile engine.Profile, policy robots.Policy, forceCrawl bool, delay time.Duration) ([]TopicCandidate, error) {
	queue := frontier.NewFIFOQueue[string]()
	queue.Enqueue(base.String())

	visitedPages := frontier.NewSet[string]()
	topicsSeen := frontier.NewSet[string]()
	var topics []TopicCandidate

	for {
		pageURL, ok := queue.Dequeue()
		if !ok {
			break
		}
		if visitedPages.Contains(pageURL) {
			continue
		}
		visitedPages.Add(pageURL)

		doc, current, err := fetchDoc(ctx, fetcher, pageURL)
		if err != nil {
			continue
		}

		for _, link := range engine.FindLinks(doc, profile.TopicsSel) {
			resolved, ok := resolveKept(current, link.Href, profile.TopicAllow, profile.TopicDeny, policy, forceCrawl)
			if !ok || topicsSeen.Contains(resolved) {
				continue
			}
			topicsSeen.Add(resolved)
			topics = append(topics, TopicCandidate{URL: resolved, Title: link.Text})
		}

		for _, link := range engine.FindLinks(doc, profile.ThreadsSel) {
			resolved, ok := resolveKept(current, link.Href, profile.ThreadAllow, profile.ThreadDeny, policy, forceCrawl)
			if !ok || visitedPages.Contains(resolved) {
				continue
			}
			queue.Enqueue(resolved)
		}

		if next, ok := NextPage(doc, pageURL, profile.PaginationSel); ok {
			if resolved, ok := resolveKept(current, next, nil, nil, policy, forceCrawl); ok {
				queue.Enqueue(resolved)
			}
		}

		time.Sleep(delay)
	}

	return topics, nil
}

func fetchDoc(ctx context.Context, fetcher robots.Fetcher, pageURL string) (*goquery.Selection, *url.URL, error) {
	status, body, _, ferr := fetcher.Fetch(ctx, pageURL)
	if ferr != nil {
		return nil, nil, ferr
	}
	if status != 200 {
		return nil, nil, errNonOKStatus
	}
	current, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	return doc.Selection, current, nil
}

// resolveKept resolves href against current, drops it if it leaves the
// dataset host, and applies the uniform allow/deny/robots filter predicate.
func resolveKept(current *url.URL, href string, allow, deny []string, policy robots.Policy, forceCrawl bool) (string, bool) {
	resolved, ok := urlutil.ResolveAgainst(current, href)
	if !ok {
		return "", false
	}
	absolute := resolved.String()
	if !engine.KeepHref(absolute, allow, deny, policy.Allowed(absolute), forceCrawl) {
		return "", false
	}
	return absolute, true
}
