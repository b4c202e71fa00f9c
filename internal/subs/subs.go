// Package subs is the typed subscriber layer over the KV contract: roster,
// per-subscriber filters, seen-job ledger, favorites, and the global sweep
// checkpoint.
package subs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
	"github.com/jobwatchd/jobwatch/internal/store"
)

const (
	// seenCap bounds each subscriber's seen set; older entries are evicted
	// on write where the backend tracks insertion order.
	seenCap = 1000
	// seenTTL lets backends with native expiry age whole seen sets out.
	seenTTL = 30 * 24 * time.Hour

	keyPrefix      = "jobwatch:"
	subscribersKey = keyPrefix + "subscribers"
	checkpointKey  = keyPrefix + "last_check_time"
)

func userKey(id string) string      { return keyPrefix + "user:" + id }
func jobTypesKey(id string) string  { return userKey(id) + ":job_types" }
func keywordsKey(id string) string  { return userKey(id) + ":custom_filters" }
func seenKey(id string) string      { return userKey(id) + ":seen_jobs" }
func favoritesKey(id string) string { return userKey(id) + ":favorites" }

// Store exposes subscriber state on top of a KV backend. All mutations map
// to single per-key KV operations, so concurrent sweep and on-demand
// updates to the same subscriber never lose writes.
type Store struct {
	kv store.KV
}

// NewStore wraps the given KV backend.
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Subscribe adds the subscriber to the roster. Filters and favorites from a
// previous subscription are untouched.
func (s *Store) Subscribe(ctx context.Context, id string) error {
	return s.kv.SAdd(ctx, subscribersKey, id)
}

// Unsubscribe removes the subscriber from the roster only; their filter and
// favorite state survives for a later re-subscribe.
func (s *Store) Unsubscribe(ctx context.Context, id string) error {
	return s.kv.SRem(ctx, subscribersKey, id)
}

func (s *Store) IsSubscribed(ctx context.Context, id string) (bool, error) {
	return s.kv.SIsMember(ctx, subscribersKey, id)
}

// Subscribers returns the current roster.
func (s *Store) Subscribers(ctx context.Context) ([]string, error) {
	return s.kv.SMembers(ctx, subscribersKey)
}

// Job type filters.

func (s *Store) AddJobTypeFilter(ctx context.Context, id, jobType string) error {
	return s.kv.SAdd(ctx, jobTypesKey(id), jobType)
}

func (s *Store) RemoveJobTypeFilter(ctx context.Context, id, jobType string) error {
	return s.kv.SRem(ctx, jobTypesKey(id), jobType)
}

func (s *Store) JobTypeFilters(ctx context.Context, id string) ([]string, error) {
	return s.kv.SMembers(ctx, jobTypesKey(id))
}

func (s *Store) ClearJobTypeFilters(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, jobTypesKey(id))
}

// Custom keyword filters.

func (s *Store) AddKeywordFilter(ctx context.Context, id, keyword string) error {
	return s.kv.SAdd(ctx, keywordsKey(id), keyword)
}

func (s *Store) RemoveKeywordFilter(ctx context.Context, id, keyword string) error {
	return s.kv.SRem(ctx, keywordsKey(id), keyword)
}

func (s *Store) KeywordFilters(ctx context.Context, id string) ([]string, error) {
	return s.kv.SMembers(ctx, keywordsKey(id))
}

func (s *Store) ClearKeywordFilters(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, keywordsKey(id))
}

// Legacy single job-type preference, superseded by the filter set but
// still settable and clearable.

func (s *Store) SetLegacyJobType(ctx context.Context, id, jobType string) error {
	return s.kv.HSet(ctx, userKey(id), "job_type", jobType)
}

func (s *Store) LegacyJobType(ctx context.Context, id string) (string, error) {
	jobType, err := s.kv.HGet(ctx, userKey(id), "job_type")
	if errors.Is(err, model.ErrNotFound) {
		return "", nil
	}
	return jobType, err
}

func (s *Store) ClearLegacyJobType(ctx context.Context, id string) error {
	return s.kv.HDel(ctx, userKey(id), "job_type")
}

// ClearAllFilters removes every filter kind for the subscriber.
func (s *Store) ClearAllFilters(ctx context.Context, id string) error {
	if err := s.ClearJobTypeFilters(ctx, id); err != nil {
		return err
	}
	if err := s.ClearKeywordFilters(ctx, id); err != nil {
		return err
	}
	return s.ClearLegacyJobType(ctx, id)
}

// Preferences loads the subscriber's complete filter state.
func (s *Store) Preferences(ctx context.Context, id string) (model.Preferences, error) {
	jobTypes, err := s.JobTypeFilters(ctx, id)
	if err != nil {
		return model.Preferences{}, fmt.Errorf("loading job type filters: %w", err)
	}
	keywords, err := s.KeywordFilters(ctx, id)
	if err != nil {
		return model.Preferences{}, fmt.Errorf("loading keyword filters: %w", err)
	}
	legacy, err := s.LegacyJobType(ctx, id)
	if err != nil {
		return model.Preferences{}, fmt.Errorf("loading legacy job type: %w", err)
	}
	return model.Preferences{
		JobTypes:      jobTypes,
		Keywords:      keywords,
		LegacyJobType: legacy,
	}, nil
}

// Seen ledger.

// Seen returns the subscriber's seen-guid set.
func (s *Store) Seen(ctx context.Context, id string) (map[string]bool, error) {
	members, err := s.kv.SMembers(ctx, seenKey(id))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(members))
	for _, guid := range members {
		seen[guid] = true
	}
	return seen, nil
}

// MarkSeen records a delivered guid. Marking an already-seen guid is a
// no-op. Retention: trim to the cap where ordered, TTL where not.
func (s *Store) MarkSeen(ctx context.Context, id, guid string) error {
	key := seenKey(id)
	if err := s.kv.SAdd(ctx, key, guid); err != nil {
		return err
	}
	if err := s.kv.TrimOldest(ctx, key, seenCap); err != nil {
		return err
	}
	return s.kv.Expire(ctx, key, seenTTL)
}

// Favorites.

// SaveFavorite stores a full Job snapshot so favorites survive the job
// rotating out of the feed.
func (s *Store) SaveFavorite(ctx context.Context, id string, job model.Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding favorite %s: %w", job.GUID, err)
	}
	return s.kv.HSet(ctx, favoritesKey(id), job.GUID, string(raw))
}

func (s *Store) RemoveFavorite(ctx context.Context, id, guid string) error {
	return s.kv.HDel(ctx, favoritesKey(id), guid)
}

// Favorites returns the subscriber's saved jobs keyed by guid. Entries
// that no longer decode are skipped rather than failing the whole listing.
func (s *Store) Favorites(ctx context.Context, id string) (map[string]model.Job, error) {
	raw, err := s.kv.HGetAll(ctx, favoritesKey(id))
	if err != nil {
		return nil, err
	}
	favorites := make(map[string]model.Job, len(raw))
	for guid, data := range raw {
		var job model.Job
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			continue
		}
		favorites[guid] = job
	}
	return favorites, nil
}

// Global checkpoint.

// LastCheckTime returns the checkpoint and whether one exists. Absence
// means no sweep has completed yet.
func (s *Store) LastCheckTime(ctx context.Context) (time.Time, bool, error) {
	raw, err := s.kv.Get(ctx, checkpointKey)
	if errors.Is(err, model.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// A corrupt checkpoint behaves like a first run.
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// SetLastCheckTime advances the checkpoint.
func (s *Store) SetLastCheckTime(ctx context.Context, t time.Time) error {
	return s.kv.Set(ctx, checkpointKey, t.Format(time.RFC3339Nano))
}
