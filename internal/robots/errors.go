package robots

import (
	"fmt"

	"github.com/speakleash/forumscraper/pkg/failure"
)

type RobotsErrorCause string

const (
	CauseFetchFailed  RobotsErrorCause = "fetch_failed"
	CauseDecodeFailed RobotsErrorCause = "decode_failed"
	CauseParseFailed  RobotsErrorCause = "parse_failed"
)

// RobotsError classifies a robots.txt acquisition failure. Fetch/decode
// failures are recoverable (the run can proceed with forceCrawl); a parse
// failure that survives the Latin-1 retry is fatal unless forceCrawl is set,
// mirroring the teacher's RobotsError shape.
type RobotsError struct {
	Message string
	Cause   RobotsErrorCause
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots: %s: %s", e.Cause, e.Message)
}

func (e *RobotsError) Severity() failure.Severity {
	if e.Cause == CauseParseFailed {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}
