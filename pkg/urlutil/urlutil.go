package urlutil

import (
	"net/url"
	"strings"
)

// lowerASCII converts ASCII characters to lowercase, allocating only when s
// contains an uppercase ASCII letter.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// StripWWW removes a leading "www." label from a hostname, case-insensitively.
func StripWWW(host string) string {
	lower := lowerASCII(host)
	if strings.HasPrefix(lower, "www.") {
		return host[4:]
	}
	return host
}

// SameHost reports whether two hosts are the dataset's host, ignoring a
// leading "www." label and letter case, per the host-confinement invariant.
func SameHost(a, b string) bool {
	return strings.EqualFold(StripWWW(a), StripWWW(b))
}

// ResolveAgainst resolves href against base and reports whether the result
// shares the base's host (ignoring "www."). Relative hrefs always resolve
// within the host; only absolute cross-host hrefs are rejected.
func ResolveAgainst(base *url.URL, href string) (*url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, false
	}
	resolved := base.ResolveReference(ref)
	if !SameHost(resolved.Host, base.Host) {
		return nil, false
	}
	return resolved, true
}
