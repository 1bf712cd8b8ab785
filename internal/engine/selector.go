// Package engine implements the per-forum-engine CSS selector grammar and
// default selector bundles described in the component design, plus the
// goquery-backed DOM matching helpers Discovery and Scraper share.
package engine

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTags is the tag set a bare attribute/value or class-value selector
// is matched against when no explicit tag is given.
var DefaultTags = []string{"li", "a", "div"}

// Selector is the normalized (tag, attrName, attrValue) triple every selector
// string resolves to. Literal is set instead when the input string is already
// a fully-qualified CSS selector (e.g. "div[data-role=commentContent]",
// "h2.topic-title") rather than one of the three grammar shapes.
type Selector struct {
	Tags    []string
	Attr    string
	Value   string
	Literal string
}

// ParseSelector normalizes a single selector string (one of the three
// grammar shapes from the component design) into a Selector.
//
//  1. "<tag> >> <attrName> :: <attrValue>"
//  2. "<attrName> :: <attrValue>"          (tag defaults to DefaultTags)
//  3. "<class-value>"                      (shorthand for "class :: <value>")
//
// A bare string that already looks like a qualified CSS selector (contains
// '.', '[', '#' or whitespace) is passed through as Literal instead of being
// forced into the class shorthand, since the engine default tables mix both
// grammar shapes and literal CSS (e.g. "div.ipsDataItem_main").
func ParseSelector(raw string) (Selector, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Selector{}, fmt.Errorf("engine: empty selector")
	}

	if idx := strings.Index(s, ">>"); idx >= 0 {
		tag := strings.TrimSpace(s[:idx])
		attr, value, err := splitOnDoubleColon(s[idx+2:])
		if err != nil {
			return Selector{}, err
		}
		if tag == "" {
			return Selector{}, fmt.Errorf("engine: selector %q missing tag before '>>'", raw)
		}
		return Selector{Tags: []string{tag}, Attr: attr, Value: value}, nil
	}

	if strings.Contains(s, "::") {
		attr, value, err := splitOnDoubleColon(s)
		if err != nil {
			return Selector{}, err
		}
		return Selector{Tags: append([]string{}, DefaultTags...), Attr: attr, Value: value}, nil
	}

	if looksLikeBareToken(s) {
		return Selector{Tags: append([]string{}, DefaultTags...), Attr: "class", Value: s}, nil
	}

	return Selector{Literal: s}, nil
}

func splitOnDoubleColon(s string) (attr, value string, err error) {
	parts := strings.SplitN(s, "::", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("engine: selector %q missing '::'", s)
	}
	attr = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	if attr == "" || value == "" {
		return "", "", fmt.Errorf("engine: selector %q has empty attribute or value", s)
	}
	return attr, value, nil
}

// looksLikeBareToken reports whether s contains no CSS structural characters,
// meaning it is a plain class-value shorthand rather than already-qualified CSS.
func looksLikeBareToken(s string) bool {
	return !strings.ContainsAny(s, ".[]# ")
}

// ToCSS expands a Selector into one or more goquery-compatible CSS selector
// strings, one per tag (a Selector built from shape 1/2 carries either a
// single explicit tag or the full DefaultTags set).
func (s Selector) ToCSS() []string {
	if s.Literal != "" {
		return []string{s.Literal}
	}

	tags := s.Tags
	if len(tags) == 0 {
		tags = DefaultTags
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if s.Attr == "class" {
			classes := strings.Fields(s.Value)
			var b strings.Builder
			b.WriteString(tag)
			for _, c := range classes {
				b.WriteString(".")
				b.WriteString(c)
			}
			out = append(out, b.String())
			continue
		}
		out = append(out, fmt.Sprintf("%s[%s*='%s']", tag, s.Attr, s.Value))
	}
	return out
}

// SplitAlternatives splits an operator-supplied selector bundle on '|', the
// shorthand CLI flags (e.g. --pagination) use to supply several fallback
// selectors in one string.
func SplitAlternatives(raw string) []string {
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExpandCSS parses every alternative in raw and flattens the resulting CSS
// selector strings, preserving left-to-right precedence.
func ExpandCSS(raw string) ([]string, error) {
	var out []string
	for _, alt := range SplitAlternatives(raw) {
		sel, err := ParseSelector(alt)
		if err != nil {
			return nil, err
		}
		out = append(out, sel.ToCSS()...)
	}
	return out, nil
}

// FirstNonEmptyText tries each CSS selector in order against doc and returns
// the stripped text of that selector's first match if it is non-empty, or ""
// if no selector yields one. Later matches of the same selector are not checked.
func FirstNonEmptyText(doc *goquery.Selection, selectors []string) string {
	for _, css := range selectors {
		sel := doc.Find(css)
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// ExtractBody tries each body selector in order; the first selector whose
// matches yield any non-empty text wins, and every matched element's
// non-empty stripped text is concatenated with a trailing newline.
func ExtractBody(doc *goquery.Selection, selectors []string) string {
	for _, css := range selectors {
		sel := doc.Find(css)
		if sel.Length() == 0 {
			continue
		}
		var b strings.Builder
		sel.Each(func(_ int, node *goquery.Selection) {
			text := strings.TrimSpace(node.Text())
			if text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		})
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

// LinkCandidate is an anchor discovered under a thread/topic container selector.
type LinkCandidate struct {
	Href string
	Text string
}

// FindLinks finds every element matching any of selectors under root, then
// for each match takes its own href if present, else the first descendant
// <a href>. Containers without a resolvable href are skipped.
func FindLinks(root *goquery.Selection, selectors []string) []LinkCandidate {
	var out []LinkCandidate
	for _, css := range selectors {
		root.Find(css).Each(func(_ int, node *goquery.Selection) {
			href, ok := node.Attr("href")
			text := strings.TrimSpace(node.Text())
			if !ok {
				anchor := node.Find("a[href]").First()
				href, ok = anchor.Attr("href")
				text = strings.TrimSpace(anchor.Text())
			}
			if ok && href != "" {
				out = append(out, LinkCandidate{Href: href, Text: text})
			}
		})
	}
	return out
}
