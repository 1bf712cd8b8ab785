// Package scraper implements the bounded worker pool that consumes
// discovered topic URLs and emits (text, meta) records, the direct
// generalization of the teacher's single-threaded internal/scheduler into a
// concurrent coordinator-plus-worker-pool shape.
package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/speakleash/forumscraper/internal/archive"
	"github.com/speakleash/forumscraper/internal/engine"
	"github.com/speakleash/forumscraper/internal/robots"
	"github.com/speakleash/forumscraper/internal/state"
	"github.com/speakleash/forumscraper/internal/telemetry"
	"github.com/speakleash/forumscraper/pkg/failure"
)

// Stats summarizes one Run call for the CLI to report.
type Stats struct {
	TopicsProcessed int
	DocumentsAdded  int
	TopicsSkipped   int
}

// Coordinator owns every shared resource a run needs and is the sole writer
// of the state tables and the archive; workers touch neither, per the
// concurrency model's "shared resources" rule.
type Coordinator struct {
	Profile        engine.Profile
	Policy         robots.Policy
	Store          *state.Store
	Archive        *archive.Archive
	NewFetcher     func() robots.Fetcher
	Workers        int
	Delay          time.Duration
	Checkpoint     int
	MinLen         int
	ForceCrawl     bool
	ForcedEncoding string
	Logger         *telemetry.ComponentLogger
}

// NewCoordinator wires the shared dependencies a run needs. newFetcher is
// called once per worker goroutine so each worker owns a private HTTP
// session, per the concurrency model.
func NewCoordinator(profile engine.Profile, policy robots.Policy, store *state.Store, arc *archive.Archive, newFetcher func() robots.Fetcher, workers int, delay time.Duration, checkpoint, minLen int, forceCrawl bool, forcedEncoding string, logger *telemetry.ComponentLogger) *Coordinator {
	return &Coordinator{
		Profile:        profile,
		Policy:         policy,
		Store:          store,
		Archive:        arc,
		NewFetcher:     newFetcher,
		Workers:        workers,
		Delay:          delay,
		Checkpoint:     checkpoint,
		MinLen:         minLen,
		ForceCrawl:     forceCrawl,
		ForcedEncoding: forcedEncoding,
		Logger:         logger,
	}
}

type indexedJob struct {
	index int
	topic state.Topic
}

type indexedResult struct {
	index  int
	result topicResult
}

// Run distributes topics across a bounded worker pool and drains results in
// submission order via a reorder buffer, flushing visited rows and sealing
// an archive shard every Checkpoint processed URLs once at least one
// document has been added.
func (c *Coordinator) Run(ctx context.Context, topics []state.Topic) (Stats, failure.ClassifiedError) {
	visitedRows, err := c.Store.LoadVisited()
	if err != nil {
		return Stats{}, &ScraperError{Message: err.Error(), Cause: CauseStateFailure}
	}
	visited := make(map[string]bool, len(visitedRows))
	for _, v := range visitedRows {
		if v.Visited {
			visited[v.URL] = true
		}
	}

	titleByURL := make(map[string]string, len(topics))
	for _, t := range topics {
		if t.Title != "" {
			titleByURL[t.URL] = t.Title
		}
	}

	pending := make([]state.Topic, 0, len(topics))
	for _, t := range topics {
		if !visited[t.URL] {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return Stats{}, nil
	}

	workers := c.Policy.EffectiveWorkers(c.Workers)
	if workers < 1 {
		workers = 1
	}
	delay := c.Policy.EffectiveDelay(c.Delay)

	jobs := make(chan indexedJob)
	results := make(chan indexedResult, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go c.runWorker(ctx, jobs, results, visited, delay, &wg)
	}

	go func() {
		defer close(jobs)
		for i, t := range pending {
			select {
			case jobs <- indexedJob{index: i, topic: t}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return c.drain(results, titleByURL)
}

func (c *Coordinator) runWorker(ctx context.Context, jobs <-chan indexedJob, results chan<- indexedResult, visited map[string]bool, delay time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()
	fetcher := c.NewFetcher()
	for job := range jobs {
		r := scrapeTopic(ctx, fetcher, job.topic, c.Profile, c.Policy, visited, c.ForceCrawl, delay, c.MinLen, c.ForcedEncoding)
		results <- indexedResult{index: job.index, result: r}
	}
}

// drain reorders worker results back into submission order, applies title
// reconciliation, and performs the coordinator's exclusive archive/state
// writes.
func (c *Coordinator) drain(results <-chan indexedResult, titleByURL map[string]string) (Stats, failure.ClassifiedError) {
	pending := make(map[int]topicResult)
	next := 0

	var stats Stats
	var buffer []state.VisitRecord
	processedSinceCheckpoint := 0
	documentAddedSinceStart := false

	flush := func() failure.ClassifiedError {
		if len(buffer) == 0 {
			return nil
		}
		if err := c.Store.AppendVisited(buffer); err != nil {
			return &ScraperError{Message: err.Error(), Cause: CauseStateFailure}
		}
		buffer = buffer[:0]
		if err := c.Archive.Commit(); err != nil {
			return &ScraperError{Message: err.Error(), Cause: CauseArchiveFailure}
		}
		return nil
	}

	for res := range results {
		pending[res.index] = res.result

		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if r.Skip == SkipVisited {
				continue
			}
			stats.TopicsProcessed++

			title := r.Title
			if preferred, ok := titleByURL[r.URL]; ok && preferred != "" {
				title = preferred
			}

			if r.Skip == "" {
				meta := archive.RecordMeta{URL: r.URL, TopicTitle: title, Characters: r.Characters}
				if err := c.Archive.Add(r.Text, meta); err != nil {
					return stats, &ScraperError{Message: err.Error(), Cause: CauseArchiveFailure}
				}
				stats.DocumentsAdded++
				documentAddedSinceStart = true
				buffer = append(buffer, state.VisitRecord{URL: r.URL, Title: title, Visited: true, Skipped: false})
			} else {
				stats.TopicsSkipped++
				if c.Logger != nil {
					c.Logger.Debug("topic skipped", map[string]any{"url": r.URL, "reason": r.Skip})
				}
				buffer = append(buffer, state.VisitRecord{URL: r.URL, Title: title, Visited: true, Skipped: true})
			}

			processedSinceCheckpoint++
			if processedSinceCheckpoint >= c.Checkpoint && documentAddedSinceStart {
				if err := flush(); err != nil {
					return stats, err
				}
				processedSinceCheckpoint = 0
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	if c.Logger != nil {
		c.Logger.Info("run complete", map[string]any{
			"processed": stats.TopicsProcessed,
			"added":     stats.DocumentsAdded,
			"skipped":   stats.TopicsSkipped,
		})
	}

	return stats, nil
}
