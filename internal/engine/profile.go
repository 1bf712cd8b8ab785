package engine

import (
	"strings"

	"github.com/speakleash/forumscraper/internal/config"
)

// Profile is the resolved, CSS-ready selector bundle and URL filter lists for
// one dataset, generalizing the teacher's KnownDocSelectors lookup table into
// the (threads, topics, pagination, title, body, allow/deny) shape.
type Profile struct {
	ThreadsSel    []string
	TopicsSel     []string
	PaginationSel []string
	TitleSel      []string
	BodySel       []string
	ThreadAllow   []string
	ThreadDeny    []string
	TopicAllow    []string
	TopicDeny     []string
}

type rawDefaults struct {
	threads, topics, pagination, title, body []string
	threadAllow, threadDeny                  []string
	topicAllow, topicDeny                    []string
}

// defaultTable holds the per-engine raw selector strings straight out of the
// component design's worked examples.
var defaultTable = map[config.EngineTag]rawDefaults{
	config.EngineInvision: {
		threads:     []string{"div.ipsDataItem_main"},
		topics:      []string{"div.ipsDataItem_main"},
		threadAllow: []string{"forum"},
		threadDeny:  []string{"topic"},
		topicAllow:  []string{"topic"},
		topicDeny:   []string{"page", "#comments"},
		pagination:  []string{"ipsPagination_next"},
		title:       []string{"h1.ipsType_pageTitle"},
		body:        []string{"div[data-role=commentContent]"},
	},
	config.EnginePhpBB: {
		threads:    []string{"a.forumtitle|a.forumlink"},
		topics:     []string{"a.topictitle"},
		pagination: []string{"pagination-arrow|next|arrow next|right-box right|title::Dalej|pag-img|span.pagination"},
		title:      []string{"h2", "h2.topic-title"},
		body:       []string{"div.content|div.postbody"},
	},
	config.EngineIPBoard: {
		threads:    []string{"td.col_c_forum"},
		topics:     []string{"a.topic_title"},
		pagination: []string{"next"},
		title:      []string{"h1.ipsType_pagetitle"},
		body:       []string{"div.post entry-content"},
	},
	config.EngineXenForo: {
		threads:    []string{"h3.node-title"},
		topics:     []string{"div.structItem-title"},
		topicAllow: []string{"threads"},
		topicDeny:  []string{"preview"},
		threadDeny: []string{"prefix_id"},
		pagination: []string{"pageNav-jump--next"},
		title:      []string{"h1.p-title-value"},
		body:       []string{"article.message-body js-selectToQuote"},
	},
	config.EngineOther: {
		threads:    []string{"a"},
		topics:     []string{"a"},
		pagination: []string{"next"},
		title:      []string{"h1"},
		body:       []string{"div.content|div.postbody|article"},
	},
}

// BuildProfile resolves the default selector bundle for engine and appends
// (never replaces) the dataset's nine operator override lists, then expands
// every raw grammar string into ready-to-use CSS selectors.
func BuildProfile(cfg config.DatasetConfig) (Profile, error) {
	defaults := defaultTable[cfg.Engine()]

	threads := append(append([]string{}, defaults.threads...), cfg.ThreadsOverride()...)
	topics := append(append([]string{}, defaults.topics...), cfg.TopicsOverride()...)
	pagination := append(append([]string{}, defaults.pagination...), cfg.PaginationOverride()...)
	title := append(append([]string{}, defaults.title...), cfg.TitleOverride()...)
	body := append(append([]string{}, defaults.body...), cfg.BodyOverride()...)

	profile := Profile{
		ThreadAllow: append(append([]string{}, defaults.threadAllow...), cfg.ThreadAllowOverride()...),
		ThreadDeny:  append(append([]string{}, defaults.threadDeny...), cfg.ThreadDenyOverride()...),
		TopicAllow:  append(append([]string{}, defaults.topicAllow...), cfg.TopicAllowOverride()...),
		TopicDeny:   append(append([]string{}, defaults.topicDeny...), cfg.TopicDenyOverride()...),
	}

	var err error
	if profile.ThreadsSel, err = expandAll(threads); err != nil {
		return Profile{}, err
	}
	if profile.TopicsSel, err = expandAll(topics); err != nil {
		return Profile{}, err
	}
	if profile.PaginationSel, err = expandAll(pagination); err != nil {
		return Profile{}, err
	}
	if profile.TitleSel, err = expandAll(title); err != nil {
		return Profile{}, err
	}
	if profile.BodySel, err = expandAll(body); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

func expandAll(raw []string) ([]string, error) {
	var out []string
	for _, r := range raw {
		css, err := ExpandCSS(r)
		if err != nil {
			return nil, err
		}
		out = append(out, css...)
	}
	return out, nil
}

// KeepHref reports whether href should be kept under a uniform
// allow/deny + robots predicate:
//
//	keep(href) iff
//	  (allow empty ∨ any(a ∈ allow : a ∈ href))
//	  ∧ (deny empty ∨ none(d ∈ deny : d ∈ href))
//	  ∧ (robotsAllowed ∨ forceCrawl)
func KeepHref(href string, allow, deny []string, robotsAllowed, forceCrawl bool) bool {
	if len(allow) > 0 && !anyContains(allow, href) {
		return false
	}
	if len(deny) > 0 && anyContains(deny, href) {
		return false
	}
	return robotsAllowed || forceCrawl
}

func anyContains(needles []string, haystack string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
