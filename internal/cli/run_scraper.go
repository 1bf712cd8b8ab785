package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/speakleash/forumscraper/internal/archive"
	"github.com/speakleash/forumscraper/internal/config"
	"github.com/speakleash/forumscraper/internal/discovery"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/httpclient"
	"github.com/speakleash/forumscraper/internal/manifest"
	"github.com/speakleash/forumscraper/internal/merge"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/internal/scraper"
	"github.com/speakleash/forumscraper/internal/state"
	"github.com/speakleash/forumscraper/internal/telemetry"
	"github.com/spf13/cobra"
)

func newRunScraperCmd() *cobra.Command {
	f := &datasetFlags{}
	cmd := &cobra.Command{
		Use:   "run-scraper",
		Short: "Discover, scrape, merge, and archive one forum dataset end to end.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.buildConfig()
			if err != nil {
				return err
			}
			return runScraper(cmd.Context(), cfg)
		},
	}
	registerDatasetFlags(cmd, f)
	return cmd
}

// runScraper is the full pipeline: robots, discovery, scraping, merging, and
// manifest writing, in the order §4 lays the components out. Any fatal
// failure is surfaced as a non-nil error, which Execute turns into a
// non-zero exit code per §6.
func runScraper(ctx context.Context, cfg config.DatasetConfig) error {
	logger, err := telemetry.NewLogger(cfg.WorkspaceDir(), cfg.LogLevel())
	if err != nil {
		return fmt.Errorf("run-scraper: %w", err)
	}
	defer logger.Close()
	runLog := logger.For("run-scraper")

	client := httpclient.New(robots.UserAgent)

	// On a parse failure robots.Fetch returns the zero Policy, which allows
	// every URL; --force-crawl proceeds with it instead of aborting.
	policy, ferr := robots.Fetch(ctx, client, cfg.BaseURL())
	if ferr != nil && !cfg.ForceCrawl() {
		return fmt.Errorf("run-scraper: fetch robots.txt: %w", ferr)
	}
	if !policy.Allowed(cfg.BaseURL().String()) && !cfg.ForceCrawl() {
		return fmt.Errorf("run-scraper: robots.txt disallows %s and --force-crawl was not set", cfg.BaseURL().String())
	}

	profile, err := engine.BuildProfile(cfg)
	if err != nil {
		return fmt.Errorf("run-scraper: build selector profile: %w", err)
	}

	store := state.NewStore(cfg.WorkspaceDir(), cfg.DatasetName())

	topics, err := discovery.Discover(ctx, client, store, cfg, profile, policy, policy.EffectiveDelay(cfg.Delay()))
	if err != nil {
		return fmt.Errorf("run-scraper: discovery: %w", err)
	}
	if len(topics) == 0 {
		return fmt.Errorf("run-scraper: no topic URLs found via sitemap or crawl fallback")
	}
	runLog.Info("discovery complete", map[string]any{"topics": len(topics)})

	stateTopics := make([]state.Topic, len(topics))
	for i, t := range topics {
		stateTopics[i] = state.Topic{URL: t.URL, Title: t.Title}
	}

	archiveDir := filepath.Join(cfg.WorkspaceDir(), "temp_scraper_data")
	arc := archive.New(archiveDir)

	coord := scraper.NewCoordinator(
		profile, policy, store, arc,
		func() robots.Fetcher { return httpclient.New(robots.UserAgent) },
		cfg.Workers(), cfg.Delay(), cfg.CheckpointInterval(), cfg.MinLen(),
		cfg.ForceCrawl(), cfg.ForcedEncoding(), logger.For("scraper"),
	)

	stats, serr := coord.Run(ctx, stateTopics)
	if serr != nil {
		return fmt.Errorf("run-scraper: scraping: %w", serr)
	}
	runLog.Info("scraping complete", map[string]any{
		"processed": stats.TopicsProcessed,
		"added":     stats.DocumentsAdded,
		"skipped":   stats.TopicsSkipped,
	})

	mergeResult, merr := merge.Merge(archiveDir, cfg.WorkspaceDir(), cfg.DatasetName(), logger.For("merge"))
	if merr != nil {
		return fmt.Errorf("run-scraper: merge: %w", merr)
	}

	m := manifest.New(cfg.DatasetName(), cfg.Description(), cfg.License(), cfg.Category(),
		cfg.BaseURL().String(), mergeResult.DocumentCount, mergeResult.CharacterCount)
	manifestPath := filepath.Join(filepath.Dir(mergeResult.Path), cfg.DatasetName()+".manifest")
	if werr := manifest.Write(manifestPath, m); werr != nil {
		return fmt.Errorf("run-scraper: write manifest: %w", werr)
	}

	runLog.Info("run complete", map[string]any{
		"documents":  mergeResult.DocumentCount,
		"characters": mergeResult.CharacterCount,
		"archive":    mergeResult.Path,
		"manifest":   manifestPath,
	})
	return nil
}
