// Package sweep owns the delivery pipeline: the periodic
// fetch→filter→notify cycle and the on-demand paginated listing, with the
// checkpoint and seen-set bookkeeping that keeps notifications exactly-once
// per subscriber under normal operation.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
	"github.com/jobwatchd/jobwatch/internal/notify"
	"github.com/jobwatchd/jobwatch/internal/subs"
)

// NotifyCap is the maximum number of job messages one subscriber receives
// per sweep; anything beyond it collapses into a single overflow notice.
const NotifyCap = 5

// Planner runs the sweep state machine and the on-demand query path.
type Planner struct {
	source   model.FeedSource
	filter   model.JobFilter
	subs     *subs.Store
	notifier model.Notifier
	corr     *Correlator
	logger   *slog.Logger

	// markOverflowSeen controls whether jobs withheld by the cap are still
	// marked seen. Off by default so withheld jobs stay visible to the
	// on-demand path and later sweeps.
	markOverflowSeen bool

	now func() time.Time
}

// Options tune planner policy.
type Options struct {
	MarkOverflowSeen bool
}

// NewPlanner wires the pipeline with its dependencies.
func NewPlanner(
	source model.FeedSource,
	filter model.JobFilter,
	subscriptions *subs.Store,
	notifier model.Notifier,
	corr *Correlator,
	opts Options,
	logger *slog.Logger,
) *Planner {
	return &Planner{
		source:           source,
		filter:           filter,
		subs:             subscriptions,
		notifier:         notifier,
		corr:             corr,
		logger:           logger,
		markOverflowSeen: opts.MarkOverflowSeen,
		now:              time.Now,
	}
}

// Run executes one sweep: fetch, gate on the checkpoint, advance it, then
// filter and notify per subscriber. Per-subscriber failures are isolated;
// the sweep continues with the remaining roster.
func (p *Planner) Run(ctx context.Context) error {
	p.logger.Info("sweep started")

	// Fetch happens before the roster check so the guid cache stays warm
	// for point lookups even with zero subscribers.
	jobs, err := p.source.FetchJobs(ctx)
	if err != nil {
		// Fail-soft sources never get here; treat like an empty fetch.
		p.logger.Error("sweep fetch failed", "error", err)
		jobs = nil
	}

	lastCheck, haveCheckpoint, err := p.subs.LastCheckTime(ctx)
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}

	// First run: record the checkpoint but notify about nothing, so a
	// fresh deployment does not replay the whole feed backlog.
	var newJobs []model.Job
	if haveCheckpoint {
		for _, job := range jobs {
			if job.PublishedAt.After(lastCheck) {
				newJobs = append(newJobs, job)
			}
		}
	}

	// Advance unconditionally, even when the fetch failed or nothing is
	// new, so the next sweep's backlog window stays bounded.
	if err := p.subs.SetLastCheckTime(ctx, p.now()); err != nil {
		return fmt.Errorf("advancing checkpoint: %w", err)
	}

	if len(newJobs) == 0 {
		p.logger.Info("sweep complete", "fetched", len(jobs), "new", 0)
		return nil
	}

	subscribers, err := p.subs.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("loading subscribers: %w", err)
	}

	notified := 0
	for _, id := range subscribers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := p.sweepSubscriber(ctx, id, newJobs)
		if err != nil {
			p.logger.Error("subscriber sweep failed", "subscriber", id, "error", err)
			continue
		}
		notified += n
	}

	p.logger.Info("sweep complete",
		"fetched", len(jobs),
		"new", len(newJobs),
		"subscribers", len(subscribers),
		"notified", notified,
	)
	return nil
}

// sweepSubscriber filters newJobs for one subscriber, excludes their seen
// set, and delivers up to NotifyCap jobs. Returns the number of job
// messages sent.
func (p *Planner) sweepSubscriber(ctx context.Context, id string, newJobs []model.Job) (int, error) {
	prefs, err := p.subs.Preferences(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("loading preferences: %w", err)
	}

	var matched []model.Job
	for _, job := range newJobs {
		if p.filter.Matches(job, prefs) {
			matched = append(matched, job)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	seen, err := p.subs.Seen(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("loading seen set: %w", err)
	}
	var unseen []model.Job
	for _, job := range matched {
		if !seen[job.GUID] {
			unseen = append(unseen, job)
		}
	}
	if len(unseen) == 0 {
		return 0, nil
	}

	batch := unseen
	if len(batch) > NotifyCap {
		batch = batch[:NotifyCap]
	}

	sent := 0
	for _, job := range batch {
		if p.corr != nil {
			p.corr.Put(job)
		}
		// Send first, mark on success: a crash mid-batch re-delivers at
		// most the one in-flight job; a send failure leaves the job
		// unmarked and is surfaced in the log.
		if err := p.notifier.Notify(ctx, notify.NewNotification(id, job)); err != nil {
			p.logger.Error("notification failed",
				"subscriber", id, "guid", job.GUID, "error", err)
			continue
		}
		if err := p.subs.MarkSeen(ctx, id, job.GUID); err != nil {
			return sent, fmt.Errorf("marking %s seen: %w", job.GUID, err)
		}
		sent++
	}

	if overflow := len(unseen) - len(batch); overflow > 0 {
		if p.markOverflowSeen {
			for _, job := range unseen[len(batch):] {
				if err := p.subs.MarkSeen(ctx, id, job.GUID); err != nil {
					return sent, fmt.Errorf("marking overflow %s seen: %w", job.GUID, err)
				}
			}
		}
		if err := p.notifier.NotifyOverflow(ctx, id, overflow); err != nil {
			p.logger.Error("overflow notice failed", "subscriber", id, "error", err)
		}
	}
	return sent, nil
}

// LatestRequest parameterizes the on-demand query path.
type LatestRequest struct {
	SubscriberID string
	Page         int
	NewOnly      bool // exclude seen jobs, then mark the results seen
}

// LatestResult is one page of the filtered listing.
type LatestResult struct {
	Jobs       []model.Job
	Page       int
	TotalPages int
	Total      int
}

// Latest serves the on-demand listing: fetch, apply the subscriber's
// filters, optionally restrict to unseen jobs (marking them seen), and
// paginate.
func (p *Planner) Latest(ctx context.Context, req LatestRequest) (LatestResult, error) {
	jobs, err := p.source.FetchJobs(ctx)
	if err != nil {
		return LatestResult{}, fmt.Errorf("fetching jobs: %w", err)
	}

	prefs, err := p.subs.Preferences(ctx, req.SubscriberID)
	if err != nil {
		return LatestResult{}, fmt.Errorf("loading preferences: %w", err)
	}

	var filtered []model.Job
	for _, job := range jobs {
		if p.filter.Matches(job, prefs) {
			filtered = append(filtered, job)
		}
	}

	if req.NewOnly {
		seen, err := p.subs.Seen(ctx, req.SubscriberID)
		if err != nil {
			return LatestResult{}, fmt.Errorf("loading seen set: %w", err)
		}
		var unseen []model.Job
		for _, job := range filtered {
			if !seen[job.GUID] {
				unseen = append(unseen, job)
			}
		}
		// The whole result set counts as delivered, not just the page the
		// caller lands on; otherwise paging through it would reshuffle.
		for _, job := range unseen {
			if err := p.subs.MarkSeen(ctx, req.SubscriberID, job.GUID); err != nil {
				return LatestResult{}, fmt.Errorf("marking %s seen: %w", job.GUID, err)
			}
		}
		filtered = unseen
	}

	pageItems, page, totalPages := Paginate(filtered, req.Page, DefaultPageSize)
	if p.corr != nil {
		for _, job := range pageItems {
			p.corr.Put(job)
		}
	}
	return LatestResult{
		Jobs:       pageItems,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(filtered),
	}, nil
}

// JobByShortID resolves a transport callback id to its job, falling back to
// the feed cache when the correlation entry has expired.
func (p *Planner) JobByShortID(ctx context.Context, shortID string) (model.Job, error) {
	if p.corr != nil {
		if job, err := p.corr.Get(shortID); err == nil {
			return job, nil
		}
	}
	jobs, err := p.source.FetchJobs(ctx)
	if err != nil {
		return model.Job{}, err
	}
	for _, job := range jobs {
		if ShortID(job.GUID) == shortID {
			return job, nil
		}
	}
	return model.Job{}, model.ErrNotFound
}
