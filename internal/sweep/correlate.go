package sweep

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Correlator maps short callback ids to full Job snapshots so a transport
// can round-trip "save this job" actions without carrying the whole guid.
// Entries expire after a TTL and the table is capped, so it cannot grow
// without bound over the process lifetime.
type Correlator struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]correlationEntry
}

type correlationEntry struct {
	job       model.Job
	expiresAt time.Time
}

// NewCorrelator builds a correlation table with the given entry TTL and
// size cap.
func NewCorrelator(ttl time.Duration, maxEntries int) *Correlator {
	return &Correlator{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]correlationEntry),
	}
}

// Put registers a job and returns its short id. Registering the same guid
// again refreshes the entry's expiry. Ids are stable per guid within a
// process, so repeated listings reuse the same callback data.
func (c *Correlator) Put(job model.Job) string {
	id := ShortID(job.GUID)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()
	c.entries[id] = correlationEntry{job: job, expiresAt: time.Now().Add(c.ttl)}
	return id
}

// Get resolves a short id to its job. Expired or unknown ids return
// model.ErrNotFound.
func (c *Correlator) Get(id string) (model.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, id)
		return model.Job{}, model.ErrNotFound
	}
	return entry.job, nil
}

// Len returns the live entry count, counting expired entries not yet pruned.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// pruneLocked drops expired entries, then enforces the size cap by evicting
// the entries closest to expiry. Callers hold c.mu.
func (c *Correlator) pruneLocked() {
	now := time.Now()
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
	for len(c.entries) >= c.maxEntries {
		var oldestID string
		var oldest time.Time
		for id, entry := range c.entries {
			if oldestID == "" || entry.expiresAt.Before(oldest) {
				oldestID = id
				oldest = entry.expiresAt
			}
		}
		delete(c.entries, oldestID)
	}
}

// ShortID derives the compact callback id for a guid.
func ShortID(guid string) string {
	h := fnv.New32a()
	h.Write([]byte(guid))
	return fmt.Sprintf("%07d", h.Sum32()%10000000)
}
