package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/speakleash/forumscraper/internal/config"
	"github.com/speakleash/forumscraper/internal/manifest"
	"github.com/speakleash/forumscraper/internal/merge"
	"github.com/speakleash/forumscraper/internal/telemetry"
	"github.com/spf13/cobra"
)

func newTurnToDeltaCmd() *cobra.Command {
	f := &datasetFlags{}
	cmd := &cobra.Command{
		Use:   "turn-to-delta",
		Short: "Re-run the merger and manifest writer against an existing workspace, without re-scraping.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.buildConfig()
			if err != nil {
				return err
			}
			return turnToDelta(cmd.Context(), cfg)
		},
	}
	registerDatasetFlags(cmd, f)
	return cmd
}

// turnToDelta regenerates the merged archive and manifest from whatever
// chunk shards already sit in temp_scraper_data/, useful after a hand-edited
// archive or an interrupted run whose scrape already completed.
func turnToDelta(_ context.Context, cfg config.DatasetConfig) error {
	logger, err := telemetry.NewLogger(cfg.WorkspaceDir(), cfg.LogLevel())
	if err != nil {
		return fmt.Errorf("turn-to-delta: %w", err)
	}
	defer logger.Close()

	archiveDir := filepath.Join(cfg.WorkspaceDir(), "temp_scraper_data")

	mergeResult, merr := merge.Merge(archiveDir, cfg.WorkspaceDir(), cfg.DatasetName(), logger.For("merge"))
	if merr != nil {
		return fmt.Errorf("turn-to-delta: merge: %w", merr)
	}

	m := manifest.New(cfg.DatasetName(), cfg.Description(), cfg.License(), cfg.Category(),
		cfg.BaseURL().String(), mergeResult.DocumentCount, mergeResult.CharacterCount)
	manifestPath := filepath.Join(filepath.Dir(mergeResult.Path), cfg.DatasetName()+".manifest")
	if werr := manifest.Write(manifestPath, m); werr != nil {
		return fmt.Errorf("turn-to-delta: write manifest: %w", werr)
	}

	fmt.Printf("merged %d documents into %s\n", mergeResult.DocumentCount, mergeResult.Path)
	fmt.Printf("wrote manifest %s\n", manifestPath)
	return nil
}
