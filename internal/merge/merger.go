// Package merge implements Merger: scans every ChunkArchive shard, dedups
// records by URL, and streams the survivors into a single final shard,
// grounded on internal/archive's shard model and internal/frontier's
// generic Set for the dedup seen-set.
package merge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/speakleash/forumscraper/internal/archive"
	"github.com/speakleash/forumscraper/internal/frontier"
	"github.com/speakleash/forumscraper/internal/telemetry"
	"github.com/speakleash/forumscraper/pkg/failure"
)

const targetDirName = "archive_merged-JSONL_ZST"

// Result is what the operator-visible CLI reports after a successful merge.
type Result struct {
	Path           string
	DocumentCount  int
	CharacterCount int
}

// Merge streams every shard under sourceDir (the scraper's temp shard
// directory), dropping duplicate URLs, into workspaceDir/<targetDirName>/
// <datasetName>.jsonl.zst.
func Merge(sourceDir, workspaceDir, datasetName string, logger *telemetry.ComponentLogger) (Result, failure.ClassifiedError) {
	targetDir := filepath.Join(workspaceDir, targetDirName, datasetName)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return Result{}, &MergeError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError}
	}

	tempDir := filepath.Join(targetDir, "temp")
	merged := archive.New(tempDir)

	shardPaths, ferr := archive.ShardPaths(sourceDir)
	if ferr != nil {
		return Result{}, ferr
	}

	seen := frontier.NewSet[string]()
	documentCount, characterSum := 0, 0

	for _, shardPath := range shardPaths {
		records, ferr := archive.ReadShard(shardPath)
		if ferr != nil {
			return Result{}, ferr
		}
		for _, rec := range records {
			if seen.Contains(rec.Meta.URL) {
				continue
			}
			seen.Add(rec.Meta.URL)
			if err := merged.Add(rec.Text, rec.Meta); err != nil {
				return Result{}, err
			}
			documentCount++
			characterSum += rec.Meta.Characters
		}
	}

	if err := merged.Touch(); err != nil {
		return Result{}, err
	}
	if err := merged.Commit(); err != nil {
		return Result{}, err
	}

	mergedShards, ferr := archive.ShardPaths(tempDir)
	if ferr != nil {
		return Result{}, ferr
	}
	if len(mergedShards) != 1 {
		return Result{}, &MergeError{
			Message:   fmt.Sprintf("expected exactly one merged shard, found %d", len(mergedShards)),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
		}
	}

	rereadRecords, ferr := archive.ReadShard(mergedShards[0])
	if ferr != nil {
		return Result{}, ferr
	}
	if len(rereadRecords) != documentCount && logger != nil {
		logger.Warn("merged shard count mismatch", map[string]any{
			"expected": documentCount,
			"actual":   len(rereadRecords),
		})
	}

	finalPath := filepath.Join(targetDir, datasetName+".jsonl.zst")
	if err := os.Rename(mergedShards[0], finalPath); err != nil {
		return Result{}, &MergeError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	if err := os.RemoveAll(tempDir); err != nil {
		return Result{}, &MergeError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError}
	}

	return Result{Path: finalPath, DocumentCount: documentCount, CharacterCount: characterSum}, nil
}
