// Package robots fetches and parses a host's robots.txt into a read-only
// Policy shared by every later stage, generalizing the teacher's
// internal/robots package shape onto github.com/temoto/robotstxt for the
// actual directive parsing/matching.
package robots

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/speakleash/forumscraper/pkg/failure"
	"github.com/temoto/robotstxt"
	"golang.org/x/text/encoding/charmap"
)

// UserAgent is the token the gate identifies itself as, both in the fetch
// request and when selecting a robots.txt group.
const UserAgent = "Speakleash"

// Fetcher is the subset of HTTPClient that fetching robots.txt needs, kept
// narrow so this package never imports internal/httpclient directly.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (status int, body []byte, encoding string, err failure.ClassifiedError)
}

// RequestRate is the optional "n requests per seconds" directive.
type RequestRate struct {
	Requests int
	Seconds  int
}

// Policy is the parsed, immutable robots.txt decision surface for one host.
type Policy struct {
	data        *robotstxt.RobotsData
	group       *robotstxt.Group
	requestRate *RequestRate
	crawlDelay  time.Duration
	siteMaps    []string
}

var requestRateRe = regexp.MustCompile(`(?im)^\s*request-rate\s*:\s*(\d+)\s*/\s*(\d+)\s*$`)

// Fetch retrieves and parses scheme://host/robots.txt using fetcher. A fetch
// failure (network error, non-200 status) yields an allow-all Policy with no
// hints, matching "robots.txt missing means unrestricted". A parse failure
// after both UTF-8 and Latin-1 attempts returns a fatal RobotsError.
func Fetch(ctx context.Context, fetcher Fetcher, base url.URL) (Policy, failure.ClassifiedError) {
	robotsURL := url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/robots.txt"}

	status, body, _, ferr := fetcher.Fetch(ctx, robotsURL.String())
	if ferr != nil || status != 200 {
		return allowAllPolicy(), nil
	}

	data, err := parseTolerant(body)
	if err != nil {
		return Policy{}, &RobotsError{Message: err.Error(), Cause: CauseParseFailed}
	}

	group := data.FindGroup(UserAgent)

	policy := Policy{
		data:       data,
		group:      group,
		crawlDelay: group.CrawlDelay,
		siteMaps:   append([]string{}, data.Sitemaps...),
	}
	if rate := parseRequestRate(string(body)); rate != nil {
		policy.requestRate = rate
	}
	return policy, nil
}

// parseTolerant decodes body as UTF-8; on invalid UTF-8 it retries the decode
// as Latin-1 before parsing, per the component design's tolerant-decode rule.
func parseTolerant(body []byte) (*robotstxt.RobotsData, error) {
	if utf8.Valid(body) {
		if data, err := robotstxt.FromBytes(body); err == nil {
			return data, nil
		}
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("latin-1 decode: %w", err)
	}
	return robotstxt.FromBytes(decoded)
}

// parseRequestRate extracts the "Request-rate: n/seconds" directive, which
// temoto/robotstxt does not surface, by scanning the raw text directly.
func parseRequestRate(raw string) *RequestRate {
	m := requestRateRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	n, err1 := strconv.Atoi(m[1])
	secs, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || n <= 0 || secs <= 0 {
		return nil
	}
	return &RequestRate{Requests: n, Seconds: secs}
}

func allowAllPolicy() Policy {
	data, _ := robotstxt.FromBytes([]byte{})
	return Policy{data: data, group: data.FindGroup(UserAgent)}
}

// Allowed reports whether rawURL may be fetched under user-agent "*"/Speakleash.
func (p Policy) Allowed(rawURL string) bool {
	if p.group == nil {
		return true
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.RequestURI()
	}
	return p.group.Test(path)
}

// RequestRate returns the parsed Request-rate directive, if any.
func (p Policy) RequestRate() (RequestRate, bool) {
	if p.requestRate == nil {
		return RequestRate{}, false
	}
	return *p.requestRate, true
}

// CrawlDelay returns the parsed Crawl-delay directive, if any.
func (p Policy) CrawlDelay() (time.Duration, bool) {
	if p.crawlDelay <= 0 {
		return 0, false
	}
	return p.crawlDelay, true
}

// SiteMaps returns any Sitemap directives found.
func (p Policy) SiteMaps() []string {
	return append([]string{}, p.siteMaps...)
}

// EffectiveDelay resolves the final per-request delay: crawl-delay overrides
// everything when present, otherwise request-rate (seconds/n) overrides the
// configured base delay, otherwise baseDelay itself applies.
func (p Policy) EffectiveDelay(baseDelay time.Duration) time.Duration {
	if cd, ok := p.CrawlDelay(); ok {
		return cd
	}
	if rr, ok := p.RequestRate(); ok {
		return time.Duration(float64(rr.Seconds)/float64(rr.Requests)*1000) * time.Millisecond
	}
	return baseDelay
}

// EffectiveWorkers caps workers at 2 when a request-rate or crawl-delay
// directive is present, per the component design.
func (p Policy) EffectiveWorkers(workers int) int {
	_, hasRate := p.RequestRate()
	_, hasDelay := p.CrawlDelay()
	if (hasRate || hasDelay) && workers > 2 {
		return 2
	}
	return workers
}
