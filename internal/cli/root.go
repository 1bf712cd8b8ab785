package cli

import (
	"fmt"
	"os"

	"github.com/speakleash/forumscraper/internal/build"
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the forumscraper command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "forumscraper",
		Version: build.FullVersion(),
		Short:   "A polite, resumable crawler for PHP/Perl-style forums.",
		Long: `forumscraper discovers, scrapes, and archives forum threads into a
content-addressed, compressed corpus plus a JSON manifest, honoring each
host's robots.txt and resuming from its own state tables across restarts.`,
	}

	root.AddCommand(newRunScraperCmd())
	root.AddCommand(newPreviewDataCmd())
	root.AddCommand(newTurnToDeltaCmd())
	return root
}

// Execute runs the root command, exiting non-zero per §6's unrecoverable
// error rule on any reported failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
