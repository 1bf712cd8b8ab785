// Package state implements the two append-only tab-separated tables
// (topics, visited) that are the sole source of truth for resuming a run,
// grounded on the teacher's storage package's "idempotent, overwrite-safe"
// local-disk discipline.
package state

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/speakleash/forumscraper/pkg/failure"
)

var topicsHeader = []string{"Topic_URLs", "Topic_Titles"}
var visitedHeader = []string{"Topic_URLs", "Topic_Titles", "Visited_flag", "Skip_flag"}

// Store owns the two TSV tables for one dataset's workspace directory.
type Store struct {
	topicsPath  string
	visitedPath string
}

// NewStore returns a Store whose two tables live directly in workspaceDir
// (the per-dataset directory); the directory is created on the first append.
func NewStore(workspaceDir, datasetName string) *Store {
	return &Store{
		topicsPath:  filepath.Join(workspaceDir, fmt.Sprintf("Topics_URLs_-_%s.csv", datasetName)),
		visitedPath: filepath.Join(workspaceDir, fmt.Sprintf("Visited_URLs_-_%s.csv", datasetName)),
	}
}

// TopicsExist reports whether the topics table has already been written,
// the signal Discovery uses to skip straight to loading it unchanged.
func (s *Store) TopicsExist() bool {
	_, err := os.Stat(s.topicsPath)
	return err == nil
}

// LoadTopics tolerantly rereads the topics table, deduplicating by URL and
// skipping malformed rows instead of failing the whole read.
func (s *Store) LoadTopics() ([]Topic, failure.ClassifiedError) {
	rows, err := readTSV(s.topicsPath)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	topics := make([]Topic, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 || row[0] == "" || seen[row[0]] {
			continue
		}
		seen[row[0]] = true
		topics = append(topics, Topic{URL: row[0], Title: row[1]})
	}
	return topics, nil
}

// AppendTopics writes header-on-create then appends rows without rewriting.
func (s *Store) AppendTopics(topics []Topic) failure.ClassifiedError {
	rows := make([][]string, len(topics))
	for i, t := range topics {
		rows[i] = []string{t.URL, t.Title}
	}
	return appendTSV(s.topicsPath, topicsHeader, rows)
}

// LoadVisited tolerantly rereads the visited table, deduplicating by URL.
func (s *Store) LoadVisited() ([]VisitRecord, failure.ClassifiedError) {
	rows, err := readTSV(s.visitedPath)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	records := make([]VisitRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 || row[0] == "" || seen[row[0]] {
			continue
		}
		seen[row[0]] = true
		records = append(records, VisitRecord{
			URL:     row[0],
			Title:   row[1],
			Visited: row[2] == "1",
			Skipped: row[3] == "1",
		})
	}
	return records, nil
}

// AppendVisited writes header-on-create then appends rows without rewriting.
func (s *Store) AppendVisited(records []VisitRecord) failure.ClassifiedError {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.URL, r.Title, flag(r.Visited), flag(r.Skipped)}
	}
	return appendTSV(s.visitedPath, visitedHeader, rows)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// readTSV returns an empty, non-error result when the file does not exist
// yet, matching "missing file behaves as an empty table".
func readTSV(path string) ([][]string, failure.ClassifiedError) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &StateError{Message: err.Error(), Retryable: false, Cause: ErrCauseReadFailure}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	var rows [][]string
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // tolerate malformed rows rather than aborting the read
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func appendTSV(path string, header []string, rows [][]string) failure.ClassifiedError {
	if len(rows) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &StateError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError}
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &StateError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	writer.Comma = '\t'

	if needsHeader {
		if err := writer.Write(header); err != nil {
			return &StateError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure}
		}
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return &StateError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return &StateError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure}
	}
	return nil
}
