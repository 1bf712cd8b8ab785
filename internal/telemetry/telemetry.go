// Package telemetry provides structured, leveled event logging for every
// pipeline stage. Events are observational only: nothing in this package
// ever participates in a control-flow decision.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrorCause is a coarse, logging-only classification of why a stage
// recorded a failure. It mirrors the causes enumerated in the error handling
// policy but is never used to decide retries or aborts — that is the job of
// pkg/failure.ClassifiedError.
type ErrorCause string

const (
	CauseUnknown            ErrorCause = "unknown"
	CauseNetworkFailure     ErrorCause = "network_failure"
	CausePolicyDisallow     ErrorCause = "policy_disallow"
	CauseContentInvalid     ErrorCause = "content_invalid"
	CauseStorageFailure     ErrorCause = "storage_failure"
	CauseInvariantViolation ErrorCause = "invariant_violation"
)

// Logger is a thin wrapper over zerolog.Logger that threads a component name
// through every event, matching the recorder pattern every stage used in the
// original coordinator: construct once, pass down to every dependency.
type Logger struct {
	base zerolog.Logger
	file io.Closer
}

// NewLogger opens "logs_<YYYYmmdd-HHMMSS>.log" under dir (ConsoleWriter
// formatted, human-readable) and returns a Logger at the requested level.
// level must be "INFO" or "DEBUG"; anything else defaults to INFO.
func NewLogger(dir string, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("telemetry: create log dir: %w", err)
	}

	name := fmt.Sprintf("logs_%s.log", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open log file: %w", err)
	}

	console := zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true}
	zl := zerolog.New(console).With().Timestamp().Str("run_id", uuid.NewString()).Logger().Level(parseLevel(level))

	return &Logger{base: zl, file: f}, nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "DEBUG":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Close releases the underlying log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// For returns a component-scoped child logger, matching the teacher's
// per-dependency recorder injection (fetcher.NewHtmlFetcher(sink), ...).
func (l *Logger) For(component string) *ComponentLogger {
	return &ComponentLogger{logger: l.base.With().Str("component", component).Logger()}
}

// ComponentLogger carries a fixed component name across every event it emits.
type ComponentLogger struct {
	logger zerolog.Logger
}

func (c *ComponentLogger) Debug(action string, fields map[string]any) {
	c.emit(c.logger.Debug(), action, fields)
}

func (c *ComponentLogger) Info(action string, fields map[string]any) {
	c.emit(c.logger.Info(), action, fields)
}

func (c *ComponentLogger) Warn(action string, fields map[string]any) {
	c.emit(c.logger.Warn(), action, fields)
}

// Error logs a recorded, non-fatal failure with its observability-only cause.
func (c *ComponentLogger) Error(action string, cause ErrorCause, fields map[string]any) {
	ev := c.logger.Error().Str("cause", string(cause))
	c.emit(ev, action, fields)
}

func (c *ComponentLogger) emit(ev *zerolog.Event, action string, fields map[string]any) {
	ev = ev.Str("action", action)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(action)
}
