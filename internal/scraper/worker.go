package scraper

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/speakleash/forumscraper/internal/discovery"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/internal/state"
	"github.com/speakleash/forumscraper/pkg/urlutil"
)

// Skip reasons recorded on a VisitRecord when a topic produces no document.
const (
	SkipVisited = "visited"
	SkipRobots  = "robots.txt"
	SkipError   = "error"
)

// topicResult is the per-topic outcome a worker hands back to the
// coordinator; Skip == "" means Text/Characters hold a document to archive.
type topicResult struct {
	URL        string
	Title      string
	Text       string
	Characters int
	Skip       string
}

// scrapeTopic runs the per-topic procedure: visited short-circuit, robots
// check, fetch, title/body extraction on page 1, pagination across
// remaining pages, final UTF-8 cleanup and minLen gate.
func scrapeTopic(ctx context.Context, fetcher robots.Fetcher, topic state.Topic, profile engine.Profile, policy robots.Policy, visited map[string]bool, forceCrawl bool, delay time.Duration, minLen int, forcedEncoding string) topicResult {
	if visited[topic.URL] {
		return topicResult{URL: topic.URL, Title: topic.Title, Skip: SkipVisited}
	}

	if !policy.Allowed(topic.URL) && !forceCrawl {
		return topicResult{URL: topic.URL, Title: topic.Title, Skip: SkipRobots}
	}

	current, err := url.Parse(topic.URL)
	if err != nil {
		return topicResult{URL: topic.URL, Title: topic.Title, Skip: SkipError}
	}

	doc, _, ferr := fetchPage(ctx, fetcher, topic.URL, forcedEncoding)
	if ferr != "" {
		return topicResult{URL: topic.URL, Title: topic.Title, Skip: SkipError}
	}

	title := engine.FirstNonEmptyText(doc, profile.TitleSel)
	var body strings.Builder
	body.WriteString(engine.ExtractBody(doc, profile.BodySel))

	time.Sleep(delay)

	pageURL := topic.URL
	pageDoc := doc
	for {
		next, ok := discovery.NextPage(pageDoc, pageURL, profile.PaginationSel)
		if !ok {
			break
		}
		resolved, ok := urlutil.ResolveAgainst(current, next)
		if !ok {
			break
		}

		nextDoc, _, nextErr := fetchPage(ctx, fetcher, resolved.String(), forcedEncoding)
		if nextErr != "" {
			break
		}
		body.WriteString(engine.ExtractBody(nextDoc, profile.BodySel))

		pageURL = resolved.String()
		current = resolved
		pageDoc = nextDoc
		time.Sleep(delay)
	}

	text := strings.ToValidUTF8(body.String(), "")
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= minLen {
		return topicResult{URL: topic.URL, Title: title, Skip: SkipError}
	}

	return topicResult{
		URL:        topic.URL,
		Title:      title,
		Text:       trimmed,
		Characters: utf8.RuneCountInString(trimmed),
	}
}

// fetchPage issues one GET and parses the body into a goquery selection,
// decoding according to the advertised or forced charset. A non-empty
// returned string names the failure reason; it is never wrapped in an error
// type since every failure here degrades to a skip, not a coordinator abort.
func fetchPage(ctx context.Context, fetcher robots.Fetcher, pageURL, forcedEncoding string) (*goquery.Selection, string, string) {
	status, rawBody, contentType, ferr := fetcher.Fetch(ctx, pageURL)
	if ferr != nil || status != 200 || len(rawBody) == 0 {
		return nil, "", SkipError
	}

	decoded := decodeHTML(rawBody, contentType, forcedEncoding)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, "", SkipError
	}
	return doc.Selection, contentType, ""
}
