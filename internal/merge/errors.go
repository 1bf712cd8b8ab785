package merge

import (
	"fmt"

	"github.com/speakleash/forumscraper/pkg/failure"
)

type MergeErrorCause string

const (
	ErrCauseReadFailure  MergeErrorCause = "read failed"
	ErrCauseWriteFailure MergeErrorCause = "write failed"
	ErrCausePathError    MergeErrorCause = "path error"
)

type MergeError struct {
	Message   string
	Retryable bool
	Cause     MergeErrorCause
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge error: %s: %s", e.Cause, e.Message)
}

func (e *MergeError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
