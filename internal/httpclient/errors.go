package httpclient

import (
	"fmt"

	"github.com/speakleash/forumscraper/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseNetworkFailure  FetchErrorCause = "network issues"
	ErrCauseReadBodyFailed  FetchErrorCause = "failed to read response body"
	ErrCauseOversizeBody    FetchErrorCause = "response body exceeds size cap"
	ErrCauseDecodeFailed    FetchErrorCause = "failed to decode response body"
	ErrCauseRequestTooMany  FetchErrorCause = "too many requests"
	ErrCauseRequestForbidden FetchErrorCause = "forbidden"
	ErrCauseRequest5xx      FetchErrorCause = "5xx"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("httpclient: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}
