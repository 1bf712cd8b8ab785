package scraper

import "github.com/speakleash/forumscraper/pkg/failure"

// ScraperErrorCause classifies why the coordinator could not complete a run.
type ScraperErrorCause string

const (
	CauseNoTopics       ScraperErrorCause = "no_topics"
	CauseStateFailure   ScraperErrorCause = "state_failure"
	CauseArchiveFailure ScraperErrorCause = "archive_failure"
)

// ScraperError reports a coordinator-level failure; per-topic fetch/parse
// failures never surface here, they become skipped VisitRecords instead.
type ScraperError struct {
	Message string
	Cause   ScraperErrorCause
}

func (e *ScraperError) Error() string { return e.Message }

func (e *ScraperError) Severity() failure.Severity {
	return failure.SeverityFatal
}
