package archive

import (
	"fmt"

	"github.com/speakleash/forumscraper/pkg/failure"
)

type ArchiveErrorCause string

const (
	ErrCauseWriteFailure ArchiveErrorCause = "write failed"
	ErrCauseReadFailure  ArchiveErrorCause = "read failed"
	ErrCausePathError    ArchiveErrorCause = "path error"
)

type ArchiveError struct {
	Message   string
	Retryable bool
	Cause     ArchiveErrorCause
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error: %s: %s", e.Cause, e.Message)
}

func (e *ArchiveError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
