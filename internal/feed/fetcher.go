// Package feed retrieves the configured job feed and turns entries into
// classified Jobs. Fetch failures degrade to an empty result so callers
// treat "no jobs" and "fetch error" identically.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/mmcdole/gofeed"

	"github.com/jobwatchd/jobwatch/internal/classify"
	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure Fetcher implements model.FeedSource.
var _ model.FeedSource = (*Fetcher)(nil)

// Fetcher parses the feed URL on every call and keeps a guid-keyed cache of
// the most recent fetch for point lookups. The cache is fully replaced on
// each fetch, never merged.
type Fetcher struct {
	url    string
	parser *gofeed.Parser
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]model.Job
}

// NewFetcher creates a Fetcher for the given feed URL. The http client is
// injected so callers control timeouts.
func NewFetcher(url string, httpClient *http.Client, logger *slog.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = httpClient
	return &Fetcher{
		url:    url,
		parser: parser,
		logger: logger,
		cache:  make(map[string]model.Job),
	}
}

// FetchJobs fetches and classifies every entry in the feed. Transport and
// parse errors propagate; wrap with Resilient to get the degrade-to-empty
// behavior the pipeline expects.
func (f *Fetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	parsed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	jobs := make([]model.Job, 0, len(parsed.Items))
	cache := make(map[string]model.Job, len(parsed.Items))
	for _, item := range parsed.Items {
		job := buildJob(item)
		jobs = append(jobs, job)
		cache[job.GUID] = job
	}

	f.mu.Lock()
	f.cache = cache
	f.mu.Unlock()

	f.logger.Info("fetched feed", "url", f.url, "jobs", len(jobs))
	return jobs, nil
}

// JobByGUID returns the job with the given guid, consulting the cache from
// the most recent fetch first and re-fetching on a miss. Returns
// model.ErrNotFound if the feed no longer carries the entry.
func (f *Fetcher) JobByGUID(ctx context.Context, guid string) (model.Job, error) {
	f.mu.RLock()
	job, ok := f.cache[guid]
	f.mu.RUnlock()
	if ok {
		return job, nil
	}

	jobs, err := f.FetchJobs(ctx)
	if err != nil {
		return model.Job{}, err
	}
	for _, j := range jobs {
		if j.GUID == guid {
			return j, nil
		}
	}
	return model.Job{}, model.ErrNotFound
}

// AvailableJobTypes returns the sorted set of categories present in jobs.
func AvailableJobTypes(jobs []model.Job) []string {
	seen := make(map[string]bool, len(jobs))
	var types []string
	for _, j := range jobs {
		if t := string(j.Type); !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

func buildJob(item *gofeed.Item) model.Job {
	job := model.Job{
		GUID:           classify.GUID(item.GUID, item.Title, item.Link),
		Title:          item.Title,
		Link:           item.Link,
		RawDescription: item.Description,
	}
	if item.PublishedParsed != nil {
		job.PublishedAt = *item.PublishedParsed
	}
	job.Company = classify.Company(job.Link)
	job.CleanDescription = classify.CleanDescription(job.RawDescription)
	job.Type = classify.Classify(job.Title, job.CleanDescription)
	return job
}
