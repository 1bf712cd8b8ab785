// Package archive implements ChunkArchive: an append-only writer that
// accumulates (text, meta) records and periodically seals them into
// independently readable compressed JSON-lines shards, grounded on
// APTlantis-Mirror-Crates' use of github.com/klauspost/compress/zstd for
// streaming-compressed output.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/speakleash/forumscraper/pkg/failure"
)

// RecordMeta is the per-document metadata stored alongside its text.
type RecordMeta struct {
	URL        string `json:"url"`
	TopicTitle string `json:"topic_title"`
	Characters int    `json:"characters"`
}

// Record is one line of a shard: {"text": "...", "meta": {...}}.
type Record struct {
	Text string     `json:"text"`
	Meta RecordMeta `json:"meta"`
}

// Archive accumulates records into the current shard and seals shards on
// Commit. Not safe for concurrent use; the component design reserves all
// archive writes to the single coordinator goroutine.
type Archive struct {
	dir        string
	shardIndex int

	file *os.File
	buf  *bufio.Writer
	zw   *zstd.Encoder
}

// New returns an Archive writing shards into dir. The directory is created
// lazily on the first Add, not here.
func New(dir string) *Archive {
	return &Archive{dir: dir}
}

// Add appends one record to the current shard, opening a new shard file if
// none is open yet.
func (a *Archive) Add(text string, meta RecordMeta) failure.ClassifiedError {
	if a.zw == nil {
		if err := a.openShard(); err != nil {
			return err
		}
	}

	line, err := json.Marshal(Record{Text: text, Meta: meta})
	if err != nil {
		return &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	line = append(line, '\n')
	if _, err := a.zw.Write(line); err != nil {
		return &ArchiveError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure}
	}
	return nil
}

// Touch opens an empty shard if none is open yet, so a Commit immediately
// afterward still produces a valid (possibly empty) shard file.
func (a *Archive) Touch() failure.ClassifiedError {
	if a.zw != nil {
		return nil
	}
	return a.openShard()
}

// Commit seals the current shard so it becomes independently readable, and
// clears state so the next Add opens a fresh shard.
func (a *Archive) Commit() failure.ClassifiedError {
	if a.zw == nil {
		return nil
	}
	if err := a.zw.Close(); err != nil {
		return &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	if err := a.buf.Flush(); err != nil {
		return &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	if err := a.file.Close(); err != nil {
		return &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	a.zw = nil
	a.buf = nil
	a.file = nil
	a.shardIndex++
	return nil
}

func (a *Archive) openShard() failure.ClassifiedError {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError}
	}

	path := filepath.Join(a.dir, fmt.Sprintf("chunk_%05d.jsonl.zst", a.shardIndex))
	f, err := os.Create(path)
	if err != nil {
		return &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}

	buf := bufio.NewWriter(f)
	zw, err := zstd.NewWriter(buf)
	if err != nil {
		f.Close()
		return &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}

	a.file = f
	a.buf = buf
	a.zw = zw
	return nil
}

// ShardPaths lists every sealed (and currently open) shard file path in dir,
// in filename order, used by Merger to stream shards for deduplication.
func ShardPaths(dir string) ([]string, failure.ClassifiedError) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseReadFailure}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".zst" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// ReadShard decodes every record out of a sealed shard file.
func ReadShard(path string) ([]Record, failure.ClassifiedError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseReadFailure}
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseReadFailure}
	}
	defer zr.Close()

	var records []Record
	decoder := json.NewDecoder(zr)
	for decoder.More() {
		var rec Record
		if err := decoder.Decode(&rec); err != nil {
			return records, &ArchiveError{Message: err.Error(), Retryable: false, Cause: ErrCauseReadFailure}
		}
		records = append(records, rec)
	}
	return records, nil
}
