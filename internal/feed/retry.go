package feed

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure Resilient implements model.FeedSource.
var _ model.FeedSource = (*Resilient)(nil)

// Resilient wraps a FeedSource with bounded retries and the pipeline's
// fail-soft contract: once retries are exhausted, FetchJobs logs the error
// and returns an empty result instead of propagating it.
type Resilient struct {
	inner      model.FeedSource
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewResilient wraps source with retry-then-degrade behavior. maxRetries is
// the number of additional attempts after the first failure; baseDelay is
// doubled on each subsequent retry with jitter.
func NewResilient(source model.FeedSource, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Resilient {
	return &Resilient{
		inner:      source,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// FetchJobs attempts the fetch, retrying transient failures. It never
// returns an error: callers treat "no jobs" and "fetch error" identically.
func (r *Resilient) FetchJobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := r.inner.FetchJobs(ctx)
	if err == nil {
		return jobs, nil
	}

	lastErr := err
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		delay := r.backoffDelay(attempt)
		r.logger.Warn("retrying feed fetch",
			"attempt", attempt,
			"max_retries", r.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			r.logger.Error("feed fetch cancelled", "error", ctx.Err())
			return nil, nil
		case <-time.After(delay):
		}

		jobs, err = r.inner.FetchJobs(ctx)
		if err == nil {
			return jobs, nil
		}
		lastErr = err
	}

	r.logger.Error("feed fetch failed, continuing with empty result", "error", lastErr)
	return nil, nil
}

// JobByGUID delegates to the wrapped source; point lookups keep their
// explicit not-found error.
func (r *Resilient) JobByGUID(ctx context.Context, guid string) (model.Job, error) {
	return r.inner.JobByGUID(ctx, guid)
}

// backoffDelay returns baseDelay * 2^(attempt-1) with up to 10% jitter.
func (r *Resilient) backoffDelay(attempt int) time.Duration {
	delay := r.baseDelay << (attempt - 1)
	jitter := time.Duration(rand.Int64N(int64(delay)/10 + 1))
	return delay + jitter
}
