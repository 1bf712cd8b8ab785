// Package discovery produces the set of topic URLs: sitemap-first, falling
// back to a BFS HTML crawl, sharing the pagination resolver with Scraper's
// per-topic post-page walk.
package discovery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NextPage resolves the next-page URL from the current page's DOM, trying
// each pagination selector in order, with the phpBB arrow-icon filter and
// query-string start= fallback from the pagination resolver design. Returns
// ("", false) when there is no further page.
func NextPage(doc *goquery.Selection, currentURL string, paginationSel []string) (string, bool) {
	for _, css := range paginationSel {
		matches := doc.Find(css)
		if matches.Length() == 0 {
			continue
		}
		if strings.Contains(css, "pagination-arrow") {
			matches = matches.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return s.Find("i.fa.fa-arrow-right").Length() > 0
			})
			if matches.Length() == 0 {
				continue
			}
		}

		node := matches.First()
		href, ok := node.Attr("href")
		if !ok {
			anchor := node.Find("a[href]").First()
			href, ok = anchor.Attr("href")
		}
		if !ok || href == "" {
			continue
		}
		if href == currentURL {
			return "", false
		}
		if cur, err := url.Parse(currentURL); err == nil {
			if ref, err := url.Parse(href); err == nil && cur.ResolveReference(ref).String() == cur.String() {
				return "", false
			}
		}
		return href, true
	}

	if next, ok := phpBBQueryStringFallback(doc, currentURL); ok {
		return next, true
	}
	return "", false
}

// phpBBQueryStringFallback inspects every <a href> containing start= that
// shares the current page's f/t query parameters, choosing the smallest
// start strictly greater than the current one.
func phpBBQueryStringFallback(doc *goquery.Selection, currentURL string) (string, bool) {
	current, err := url.Parse(currentURL)
	if err != nil {
		return "", false
	}
	currentQuery := current.Query()
	f, t := currentQuery.Get("f"), currentQuery.Get("t")
	currentStart, _ := strconv.Atoi(currentQuery.Get("start"))

	var bestHref string
	bestStart := -1

	doc.Find("a[href]").Each(func(_ int, node *goquery.Selection) {
		href, _ := node.Attr("href")
		if !strings.Contains(href, "start=") {
			return
		}
		candidate, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := current.ResolveReference(candidate)
		q := resolved.Query()
		if q.Get("f") != f || q.Get("t") != t {
			return
		}
		start, err := strconv.Atoi(q.Get("start"))
		if err != nil || start <= currentStart {
			return
		}
		if bestStart == -1 || start < bestStart {
			bestStart = start
			bestHref = resolved.String()
		}
	})

	if bestHref == "" || bestHref == currentURL {
		return "", false
	}
	return bestHref, true
}
