// Package cli wires the cobra command surface to internal/config, the same
// flags-to-builder-chain shape as the teacher's internal/cli/root.go, but
// split across three subcommands instead of one bare root command so flags
// never leak across unrelated operations.
package cli

import (
	"net/url"
	"time"

	"github.com/speakleash/forumscraper/internal/config"
	"github.com/spf13/cobra"
)

// datasetFlags holds the per-invocation flag values shared by every
// subcommand that needs a resolved DatasetConfig.
type datasetFlags struct {
	configFile  string
	datasetURL  string
	forumEngine string
	datasetName string
	description string
	license     string
	category    string

	processes  int
	timeSleep  float64
	saveState  string
	minLenTxt  int
	checkpoint int
	sitemaps   string
	forceCrawl bool
	logLevel   string
	encoding   string

	threadsClass     []string
	threadsWhitelist []string
	threadsBlacklist []string
	topicsClass      []string
	topicsWhitelist  []string
	topicsBlacklist  []string
	pagination       []string
	topicTitleClass  []string
	contentClass     []string
}

// registerDatasetFlags attaches the principal flags from the CLI surface,
// plus the dataset-identity flags a manifest needs, to cmd.
func registerDatasetFlags(cmd *cobra.Command, f *datasetFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.configFile, "config-file", "", "JSON config file path; overrides every other flag")
	flags.StringVar(&f.datasetURL, "dataset-url", "", "absolute forum base URL to scrape")
	flags.StringVar(&f.forumEngine, "forum-engine", "", "invision|phpbb|ipboard|xenforo|other")
	flags.StringVar(&f.datasetName, "dataset-name", "", "dataset name (defaults to <category>_<host>_corpus)")
	flags.StringVar(&f.description, "description", "", "dataset description for the manifest")
	flags.StringVar(&f.license, "license", "", "dataset license for the manifest")
	flags.StringVar(&f.category, "category", "", "dataset category (defaults to the engine tag)")

	flags.IntVar(&f.processes, "processes", 0, "worker pool size (default 2)")
	flags.Float64Var(&f.timeSleep, "time-sleep", 0, "seconds to sleep between page fetches (default 0.5)")
	flags.StringVar(&f.saveState, "save-state", "", "workspace root directory (default scraper_workspace)")
	flags.IntVar(&f.minLenTxt, "min-len-txt", 0, "minimum post text length to keep a topic (default 20)")
	flags.IntVar(&f.checkpoint, "checkpoint-interval", 0, "topics processed between state/archive flushes (default 100)")
	flags.StringVar(&f.sitemaps, "sitemaps", "", "sitemap URL override")
	flags.BoolVar(&f.forceCrawl, "force-crawl", false, "ignore robots.txt disallow rules")
	flags.StringVar(&f.logLevel, "log-level", "", "INFO|DEBUG (default INFO)")
	flags.StringVar(&f.encoding, "forced-encoding", "", "force a page encoding instead of auto-detecting")

	flags.StringArrayVar(&f.threadsClass, "threads-class", nil, "extra thread-link selector (repeatable)")
	flags.StringArrayVar(&f.threadsWhitelist, "threads-whitelist", nil, "thread URL allow substring (repeatable)")
	flags.StringArrayVar(&f.threadsBlacklist, "threads-blacklist", nil, "thread URL deny substring (repeatable)")
	flags.StringArrayVar(&f.topicsClass, "topics-class", nil, "extra topic-link selector (repeatable)")
	flags.StringArrayVar(&f.topicsWhitelist, "topics-whitelist", nil, "topic URL allow substring (repeatable)")
	flags.StringArrayVar(&f.topicsBlacklist, "topics-blacklist", nil, "topic URL deny substring (repeatable)")
	flags.StringArrayVar(&f.pagination, "pagination", nil, "extra pagination-link selector (repeatable)")
	flags.StringArrayVar(&f.topicTitleClass, "topic-title-class", nil, "extra topic title selector (repeatable)")
	flags.StringArrayVar(&f.contentClass, "content-class", nil, "extra post body selector (repeatable)")
}

// buildConfig resolves f into a validated DatasetConfig, following a config
// file when one is given and otherwise layering flags over WithDefault,
// exactly as the teacher's InitConfigWithError does.
func (f *datasetFlags) buildConfig() (config.DatasetConfig, error) {
	if f.configFile != "" {
		return config.WithConfigFile(f.configFile)
	}

	parsed, err := url.Parse(f.datasetURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return config.DatasetConfig{}, &invalidDatasetURLError{raw: f.datasetURL}
	}

	builder := config.WithDefault(*parsed, config.EngineTag(f.forumEngine))

	if f.datasetName != "" {
		builder = builder.WithDatasetName(f.datasetName)
	}
	if f.description != "" {
		builder = builder.WithDescription(f.description)
	}
	if f.license != "" {
		builder = builder.WithLicense(f.license)
	}
	if f.category != "" {
		builder = builder.WithCategory(f.category)
	}
	if f.processes > 0 {
		builder = builder.WithWorkers(f.processes)
	}
	if f.timeSleep > 0 {
		builder = builder.WithDelay(time.Duration(f.timeSleep * float64(time.Second)))
	}
	if f.saveState != "" {
		builder = builder.WithWorkspaceRoot(f.saveState)
	}
	if f.minLenTxt > 0 {
		builder = builder.WithMinLen(f.minLenTxt)
	}
	if f.checkpoint > 0 {
		builder = builder.WithCheckpointInterval(f.checkpoint)
	}
	if f.sitemaps != "" {
		builder = builder.WithSitemapOverride(f.sitemaps)
	}
	builder = builder.WithForceCrawl(f.forceCrawl)
	if f.logLevel != "" {
		builder = builder.WithLogLevel(f.logLevel)
	}
	if f.encoding != "" {
		builder = builder.WithForcedEncoding(f.encoding)
	}

	builder = builder.
		WithThreadsOverride(f.threadsClass).
		WithThreadAllowOverride(f.threadsWhitelist).
		WithThreadDenyOverride(f.threadsBlacklist).
		WithTopicsOverride(f.topicsClass).
		WithTopicAllowOverride(f.topicsWhitelist).
		WithTopicDenyOverride(f.topicsBlacklist).
		WithPaginationOverride(f.pagination).
		WithTitleOverride(f.topicTitleClass).
		WithBodyOverride(f.contentClass)

	return builder.Build()
}

type invalidDatasetURLError struct {
	raw string
}

func (e *invalidDatasetURLError) Error() string {
	return "invalid --dataset-url: " + e.raw
}
