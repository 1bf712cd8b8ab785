// Package httpclient is the HTTP session used to fetch pages and robots.txt
// (each scraper worker builds its own Client): retrying transport, generous timeouts, a fixed
// identifying User-Agent, TLS verification off, and transparent gzip/deflate
// decoding, grounded on codepr-webcrawler's rehttp-based fetcher.
package httpclient

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"github.com/speakleash/forumscraper/pkg/failure"
)

// MaxBodyBytes is the oversize guard: responses larger than this are
// discarded rather than buffered in full.
const MaxBodyBytes = 15 * 1024 * 1024

const requestTimeout = 60 * time.Second

// Client is one HTTP session. A Client is safe for concurrent use, although
// the scraper gives each worker goroutine its own.
type Client struct {
	userAgent string
	http      *http.Client
}

// New builds a Client identifying itself as userAgent, retrying up to 3
// times with exponential jittered backoff on temporary errors and
// 429/502/503/504 responses.
func New(userAgent string) *Client {
	transport := rehttp.NewTransport(
		&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(3),
			rehttp.RetryAny(
				rehttp.RetryTemporaryErr(),
				rehttp.RetryStatuses(http.StatusTooManyRequests, 502, 503, 504),
			),
		),
		rehttp.ExpJitterDelay(1*time.Second, 30*time.Second),
	)
	return &Client{
		userAgent: userAgent,
		http:      &http.Client{Timeout: requestTimeout, Transport: transport},
	}
}

// Fetch performs a GET against rawURL and returns the response status, the
// decompressed body (capped at MaxBodyBytes), and the charset advertised by
// the Content-Type header (empty if none).
func (c *Client) Fetch(ctx context.Context, rawURL string) (int, []byte, string, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, "", &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	for key, value := range requestHeaders(c.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, "", &FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, MaxBodyBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return resp.StatusCode, nil, "", &FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseReadBodyFailed,
		}
	}
	if len(raw) > MaxBodyBytes {
		return resp.StatusCode, nil, "", &FetchError{
			Message:   fmt.Sprintf("body exceeds %d bytes", MaxBodyBytes),
			Retryable: false,
			Cause:     ErrCauseOversizeBody,
		}
	}

	body, err := decodeBody(raw, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return resp.StatusCode, nil, "", &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseDecodeFailed,
		}
	}

	return resp.StatusCode, body, charsetOf(resp.Header.Get("Content-Type")), nil
}

// decodeBody transparently decompresses gzip/deflate bodies. A fixed
// "Accept-Encoding: gzip, deflate" request header is sent, so net/http's
// automatic gzip handling (only active when Accept-Encoding is left unset)
// never kicks in and this package must decode both forms itself.
func decodeBody(raw []byte, contentEncoding string) ([]byte, error) {
	switch contentEncoding {
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case "deflate":
		r := flate.NewReader(bytes.NewReader(raw))
		defer r.Close()
		return io.ReadAll(r)
	default:
		return raw, nil
	}
}

func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Encoding": "gzip, deflate",
		"Connection":      "keep-alive",
	}
}
