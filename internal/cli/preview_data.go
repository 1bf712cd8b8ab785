package cli

import (
	"context"
	"fmt"

	"github.com/speakleash/forumscraper/internal/config"
	"github.com/speakleash/forumscraper/internal/discovery"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/httpclient"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/internal/state"
	"github.com/spf13/cobra"
)

func newPreviewDataCmd() *cobra.Command {
	f := &datasetFlags{}
	var limit int
	cmd := &cobra.Command{
		Use:   "preview-data",
		Short: "Run discovery only and print the first topic URLs found, without scraping.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.buildConfig()
			if err != nil {
				return err
			}
			return previewData(cmd.Context(), cfg, limit)
		},
	}
	registerDatasetFlags(cmd, f)
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of topics to print")
	return cmd
}

func previewData(ctx context.Context, cfg config.DatasetConfig, limit int) error {
	client := httpclient.New(robots.UserAgent)

	policy, ferr := robots.Fetch(ctx, client, cfg.BaseURL())
	if ferr != nil && !cfg.ForceCrawl() {
		return fmt.Errorf("preview-data: fetch robots.txt: %w", ferr)
	}

	profile, err := engine.BuildProfile(cfg)
	if err != nil {
		return fmt.Errorf("preview-data: build selector profile: %w", err)
	}

	store := state.NewStore(cfg.WorkspaceDir(), cfg.DatasetName())

	topics, err := discovery.Discover(ctx, client, store, cfg, profile, policy, policy.EffectiveDelay(cfg.Delay()))
	if err != nil {
		return fmt.Errorf("preview-data: discovery: %w", err)
	}

	fmt.Printf("discovered %d topics\n", len(topics))
	for i, t := range topics {
		if i >= limit {
			break
		}
		fmt.Printf("%s\t%s\n", t.URL, t.Title)
	}
	return nil
}
