package sweep

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
)

func TestCorrelatorRoundTrip(t *testing.T) {
	c := NewCorrelator(time.Minute, 100)
	job := model.Job{GUID: "https://example.com/jobs/backend-at-shakepay", Title: "Backend Engineer"}

	id := c.Put(job)
	if len(id) != 7 {
		t.Errorf("short id %q has length %d, want 7", id, len(id))
	}
	if id != ShortID(job.GUID) {
		t.Errorf("Put returned %q, ShortID gives %q", id, ShortID(job.GUID))
	}

	got, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != job.Title {
		t.Errorf("Get() title = %q, want %q", got.Title, job.Title)
	}
}

func TestCorrelatorUnknownID(t *testing.T) {
	c := NewCorrelator(time.Minute, 100)
	if _, err := c.Get("1234567"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestCorrelatorExpiry(t *testing.T) {
	c := NewCorrelator(10*time.Millisecond, 100)
	id := c.Put(model.Job{GUID: "guid-1"})

	time.Sleep(25 * time.Millisecond)
	if _, err := c.Get(id); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get(expired) error = %v, want ErrNotFound", err)
	}
}

func TestCorrelatorCap(t *testing.T) {
	c := NewCorrelator(time.Minute, 3)
	for i := 0; i < 10; i++ {
		c.Put(model.Job{GUID: fmt.Sprintf("guid-%d", i)})
	}
	if got := c.Len(); got > 3 {
		t.Errorf("Len() = %d, want at most 3", got)
	}
}

func TestCorrelatorPutRefreshes(t *testing.T) {
	c := NewCorrelator(time.Minute, 100)
	job := model.Job{GUID: "guid-1", Title: "old"}
	c.Put(job)
	job.Title = "new"
	id := c.Put(job)

	got, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "new" {
		t.Errorf("Get() title = %q, want refreshed %q", got.Title, "new")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestShortIDStable(t *testing.T) {
	a := ShortID("https://example.com/jobs/1")
	b := ShortID("https://example.com/jobs/1")
	if a != b {
		t.Errorf("ShortID not deterministic: %q vs %q", a, b)
	}
	if ShortID("https://example.com/jobs/2") == a {
		t.Error("distinct guids mapped to the same short id")
	}
}
