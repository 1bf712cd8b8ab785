// Package config resolves the immutable DatasetConfig every pipeline stage
// shares read-only, built through a chainable With... builder exactly as the
// teacher's internal/config.Config is constructed.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// EngineTag identifies which forum software a dataset targets.
type EngineTag string

const (
	EngineInvision EngineTag = "invision"
	EnginePhpBB    EngineTag = "phpbb"
	EngineIPBoard  EngineTag = "ipboard"
	EngineXenForo  EngineTag = "xenforo"
	EngineOther    EngineTag = "other"
)

func (e EngineTag) Valid() bool {
	switch e {
	case EngineInvision, EnginePhpBB, EngineIPBoard, EngineXenForo, EngineOther:
		return true
	default:
		return false
	}
}

// DatasetConfig is immutable after Build(). Fields are grouped by concern the
// way the teacher's Config groups Crawl scope / Limits / Politeness / Fetch /
// Output.
type DatasetConfig struct {
	//===============
	// Dataset identity
	//===============
	baseURL     url.URL
	engine      EngineTag
	datasetName string
	description string
	license     string
	category    string

	//===============
	// Limits & politeness
	//===============
	workers            int
	delay              time.Duration
	checkpointInterval int
	minLen             int
	forceCrawl         bool

	//===============
	// Discovery / extraction overrides (§4.3 - nine override lists)
	//===============
	threadsOverride     []string
	topicsOverride      []string
	paginationOverride  []string
	titleOverride       []string
	bodyOverride        []string
	threadAllowOverride []string
	threadDenyOverride  []string
	topicAllowOverride  []string
	topicDenyOverride   []string

	//===============
	// Fetch / run
	//===============
	sitemapOverride string
	forcedEncoding  string
	logLevel        string
	workspaceRoot   string
}

type configDTO struct {
	BaseURL             string   `json:"baseUrl"`
	Engine              string   `json:"engine"`
	DatasetName         string   `json:"datasetName,omitempty"`
	Description         string   `json:"description,omitempty"`
	License             string   `json:"license,omitempty"`
	Category            string   `json:"category,omitempty"`
	Workers             int      `json:"workers,omitempty"`
	DelaySeconds        float64  `json:"delaySeconds,omitempty"`
	CheckpointInterval  int      `json:"checkpointInterval,omitempty"`
	MinLen              int      `json:"minLen,omitempty"`
	ForceCrawl          bool     `json:"forceCrawl,omitempty"`
	ThreadsOverride     []string `json:"threadsClass,omitempty"`
	TopicsOverride      []string `json:"topicsClass,omitempty"`
	PaginationOverride  []string `json:"pagination,omitempty"`
	TitleOverride       []string `json:"topicTitleClass,omitempty"`
	BodyOverride        []string `json:"contentClass,omitempty"`
	ThreadAllowOverride []string `json:"threadsWhitelist,omitempty"`
	ThreadDenyOverride  []string `json:"threadsBlacklist,omitempty"`
	TopicAllowOverride  []string `json:"topicsWhitelist,omitempty"`
	TopicDenyOverride   []string `json:"topicsBlacklist,omitempty"`
	SitemapOverride     string   `json:"sitemaps,omitempty"`
	ForcedEncoding      string   `json:"forcedEncoding,omitempty"`
	LogLevel            string   `json:"logLevel,omitempty"`
	WorkspaceRoot        string  `json:"saveState,omitempty"`
}

func WithConfigFile(path string) (DatasetConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return DatasetConfig{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return DatasetConfig{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto configDTO
	if err := json.Unmarshal(content, &dto); err != nil {
		return DatasetConfig{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	parsed, err := url.Parse(dto.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return DatasetConfig{}, fmt.Errorf("%w: baseUrl must be absolute with a scheme", ErrInvalidConfig)
	}

	cfg := WithDefault(*parsed, EngineTag(dto.Engine))
	if dto.DatasetName != "" {
		cfg = cfg.WithDatasetName(dto.DatasetName)
	}
	if dto.Description != "" {
		cfg = cfg.WithDescription(dto.Description)
	}
	if dto.License != "" {
		cfg = cfg.WithLicense(dto.License)
	}
	if dto.Category != "" {
		cfg = cfg.WithCategory(dto.Category)
	}
	if dto.Workers != 0 {
		cfg = cfg.WithWorkers(dto.Workers)
	}
	if dto.DelaySeconds != 0 {
		cfg = cfg.WithDelay(time.Duration(dto.DelaySeconds * float64(time.Second)))
	}
	if dto.CheckpointInterval != 0 {
		cfg = cfg.WithCheckpointInterval(dto.CheckpointInterval)
	}
	if dto.MinLen != 0 {
		cfg = cfg.WithMinLen(dto.MinLen)
	}
	cfg = cfg.WithForceCrawl(dto.ForceCrawl)
	cfg = cfg.WithThreadsOverride(dto.ThreadsOverride)
	cfg = cfg.WithTopicsOverride(dto.TopicsOverride)
	cfg = cfg.WithPaginationOverride(dto.PaginationOverride)
	cfg = cfg.WithTitleOverride(dto.TitleOverride)
	cfg = cfg.WithBodyOverride(dto.BodyOverride)
	cfg = cfg.WithThreadAllowOverride(dto.ThreadAllowOverride)
	cfg = cfg.WithThreadDenyOverride(dto.ThreadDenyOverride)
	cfg = cfg.WithTopicAllowOverride(dto.TopicAllowOverride)
	cfg = cfg.WithTopicDenyOverride(dto.TopicDenyOverride)
	if dto.SitemapOverride != "" {
		cfg = cfg.WithSitemapOverride(dto.SitemapOverride)
	}
	if dto.ForcedEncoding != "" {
		cfg = cfg.WithForcedEncoding(dto.ForcedEncoding)
	}
	if dto.LogLevel != "" {
		cfg = cfg.WithLogLevel(dto.LogLevel)
	}
	if dto.WorkspaceRoot != "" {
		cfg = cfg.WithWorkspaceRoot(dto.WorkspaceRoot)
	}

	return cfg.Build()
}

// WithDefault creates a new DatasetConfig for baseURL/engine with every
// other field at its spec-mandated default.
func WithDefault(baseURL url.URL, engine EngineTag) *DatasetConfig {
	return &DatasetConfig{
		baseURL:            baseURL,
		engine:             engine,
		workers:            2,
		delay:              500 * time.Millisecond,
		checkpointInterval: 100,
		minLen:             20,
		logLevel:           "INFO",
		workspaceRoot:      "scraper_workspace",
	}
}

func (c *DatasetConfig) WithDatasetName(name string) *DatasetConfig {
	c.datasetName = name
	return c
}

func (c *DatasetConfig) WithDescription(desc string) *DatasetConfig {
	c.description = desc
	return c
}

func (c *DatasetConfig) WithLicense(license string) *DatasetConfig {
	c.license = license
	return c
}

func (c *DatasetConfig) WithCategory(category string) *DatasetConfig {
	c.category = category
	return c
}

func (c *DatasetConfig) WithWorkers(workers int) *DatasetConfig {
	c.workers = workers
	return c
}

func (c *DatasetConfig) WithDelay(delay time.Duration) *DatasetConfig {
	c.delay = delay
	return c
}

func (c *DatasetConfig) WithCheckpointInterval(n int) *DatasetConfig {
	c.checkpointInterval = n
	return c
}

func (c *DatasetConfig) WithMinLen(n int) *DatasetConfig {
	c.minLen = n
	return c
}

func (c *DatasetConfig) WithForceCrawl(force bool) *DatasetConfig {
	c.forceCrawl = force
	return c
}

func (c *DatasetConfig) WithThreadsOverride(v []string) *DatasetConfig {
	c.threadsOverride = v
	return c
}

func (c *DatasetConfig) WithTopicsOverride(v []string) *DatasetConfig {
	c.topicsOverride = v
	return c
}

func (c *DatasetConfig) WithPaginationOverride(v []string) *DatasetConfig {
	c.paginationOverride = v
	return c
}

func (c *DatasetConfig) WithTitleOverride(v []string) *DatasetConfig {
	c.titleOverride = v
	return c
}

func (c *DatasetConfig) WithBodyOverride(v []string) *DatasetConfig {
	c.bodyOverride = v
	return c
}

func (c *DatasetConfig) WithThreadAllowOverride(v []string) *DatasetConfig {
	c.threadAllowOverride = v
	return c
}

func (c *DatasetConfig) WithThreadDenyOverride(v []string) *DatasetConfig {
	c.threadDenyOverride = v
	return c
}

func (c *DatasetConfig) WithTopicAllowOverride(v []string) *DatasetConfig {
	c.topicAllowOverride = v
	return c
}

func (c *DatasetConfig) WithTopicDenyOverride(v []string) *DatasetConfig {
	c.topicDenyOverride = v
	return c
}

func (c *DatasetConfig) WithSitemapOverride(url string) *DatasetConfig {
	c.sitemapOverride = url
	return c
}

func (c *DatasetConfig) WithForcedEncoding(enc string) *DatasetConfig {
	c.forcedEncoding = enc
	return c
}

func (c *DatasetConfig) WithLogLevel(level string) *DatasetConfig {
	c.logLevel = level
	return c
}

func (c *DatasetConfig) WithWorkspaceRoot(dir string) *DatasetConfig {
	c.workspaceRoot = dir
	return c
}

// hostWithUnderscores replaces every '.' in the host with '_', per the
// dataset-name derivation rule.
func hostWithUnderscores(host string) string {
	return strings.ReplaceAll(host, ".", "_")
}

func (c *DatasetConfig) Build() (DatasetConfig, error) {
	if c.baseURL.Scheme == "" || c.baseURL.Host == "" {
		return DatasetConfig{}, fmt.Errorf("%w: base URL must be absolute with a scheme", ErrInvalidConfig)
	}
	if !c.engine.Valid() {
		return DatasetConfig{}, fmt.Errorf("%w: unknown forum engine %q", ErrInvalidConfig, c.engine)
	}
	if c.workers < 1 {
		return DatasetConfig{}, fmt.Errorf("%w: workers must be >= 1", ErrInvalidConfig)
	}
	if c.delay < 0 {
		return DatasetConfig{}, fmt.Errorf("%w: delay must be >= 0", ErrInvalidConfig)
	}
	if c.checkpointInterval < 1 {
		return DatasetConfig{}, fmt.Errorf("%w: checkpointInterval must be >= 1", ErrInvalidConfig)
	}
	if c.minLen < 0 {
		return DatasetConfig{}, fmt.Errorf("%w: minLen must be >= 0", ErrInvalidConfig)
	}

	if c.category == "" {
		c.category = string(c.engine)
	}
	if c.datasetName == "" {
		c.datasetName = fmt.Sprintf("%s_%s_corpus", c.category, hostWithUnderscores(c.baseURL.Hostname()))
	}

	return *c, nil
}

func (c DatasetConfig) BaseURL() url.URL           { return c.baseURL }
func (c DatasetConfig) Engine() EngineTag          { return c.engine }
func (c DatasetConfig) DatasetName() string        { return c.datasetName }
func (c DatasetConfig) Description() string        { return c.description }
func (c DatasetConfig) License() string            { return c.license }
func (c DatasetConfig) Category() string           { return c.category }
func (c DatasetConfig) Workers() int                { return c.workers }
func (c DatasetConfig) Delay() time.Duration       { return c.delay }
func (c DatasetConfig) CheckpointInterval() int    { return c.checkpointInterval }
func (c DatasetConfig) MinLen() int                { return c.minLen }
func (c DatasetConfig) ForceCrawl() bool           { return c.forceCrawl }
func (c DatasetConfig) SitemapOverride() string    { return c.sitemapOverride }
func (c DatasetConfig) ForcedEncoding() string     { return c.forcedEncoding }
func (c DatasetConfig) LogLevel() string           { return c.logLevel }
func (c DatasetConfig) WorkspaceRoot() string      { return c.workspaceRoot }

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (c DatasetConfig) ThreadsOverride() []string     { return copyStrings(c.threadsOverride) }
func (c DatasetConfig) TopicsOverride() []string      { return copyStrings(c.topicsOverride) }
func (c DatasetConfig) PaginationOverride() []string  { return copyStrings(c.paginationOverride) }
func (c DatasetConfig) TitleOverride() []string       { return copyStrings(c.titleOverride) }
func (c DatasetConfig) BodyOverride() []string        { return copyStrings(c.bodyOverride) }
func (c DatasetConfig) ThreadAllowOverride() []string { return copyStrings(c.threadAllowOverride) }
func (c DatasetConfig) ThreadDenyOverride() []string  { return copyStrings(c.threadDenyOverride) }
func (c DatasetConfig) TopicAllowOverride() []string  { return copyStrings(c.topicAllowOverride) }
func (c DatasetConfig) TopicDenyOverride() []string   { return copyStrings(c.topicDenyOverride) }

// WorkspaceDir returns the dataset's dedicated directory:
// <workspaceRoot>/<datasetName>/.
func (c DatasetConfig) WorkspaceDir() string {
	return c.workspaceRoot + "/" + c.datasetName
}
