package state

import (
	"fmt"

	"github.com/speakleash/forumscraper/pkg/failure"
)

type StateErrorCause string

const (
	ErrCauseWriteFailure StateErrorCause = "write failed"
	ErrCauseReadFailure  StateErrorCause = "read failed"
	ErrCausePathError    StateErrorCause = "path error"
)

type StateError struct {
	Message   string
	Retryable bool
	Cause     StateErrorCause
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error: %s: %s", e.Cause, e.Message)
}

func (e *StateError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
