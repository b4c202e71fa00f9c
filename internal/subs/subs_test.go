package subs

import (
	"context"
	"testing"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
	"github.com/jobwatchd/jobwatch/internal/store"
)

func newStore() *Store {
	return NewStore(store.NewMemoryKV())
}

func TestSubscribeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	ok, err := s.IsSubscribed(ctx, "100")
	if err != nil {
		t.Fatalf("IsSubscribed: %v", err)
	}
	if ok {
		t.Fatal("fresh subscriber should not be subscribed")
	}

	if err := s.Subscribe(ctx, "100"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	ok, _ = s.IsSubscribed(ctx, "100")
	if !ok {
		t.Fatal("want subscribed after Subscribe")
	}

	subscribers, _ := s.Subscribers(ctx)
	if len(subscribers) != 1 || subscribers[0] != "100" {
		t.Fatalf("Subscribers = %v", subscribers)
	}

	if err := s.Unsubscribe(ctx, "100"); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	ok, _ = s.IsSubscribed(ctx, "100")
	if ok {
		t.Fatal("want unsubscribed after Unsubscribe")
	}
}

func TestFiltersSurviveUnsubscribe(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	s.Subscribe(ctx, "100")
	s.AddJobTypeFilter(ctx, "100", "backend")
	s.AddKeywordFilter(ctx, "100", "rust")
	s.Unsubscribe(ctx, "100")

	prefs, err := s.Preferences(ctx, "100")
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if len(prefs.JobTypes) != 1 || prefs.JobTypes[0] != "backend" {
		t.Errorf("JobTypes = %v, want [backend]", prefs.JobTypes)
	}
	if len(prefs.Keywords) != 1 || prefs.Keywords[0] != "rust" {
		t.Errorf("Keywords = %v, want [rust]", prefs.Keywords)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	s.AddJobTypeFilter(ctx, "7", "backend")
	s.AddJobTypeFilter(ctx, "7", "devops")
	s.AddKeywordFilter(ctx, "7", "rust")
	s.SetLegacyJobType(ctx, "7", "design")

	prefs, err := s.Preferences(ctx, "7")
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if len(prefs.JobTypes) != 2 {
		t.Errorf("JobTypes = %v", prefs.JobTypes)
	}
	if prefs.LegacyJobType != "design" {
		t.Errorf("LegacyJobType = %q", prefs.LegacyJobType)
	}

	if err := s.ClearAllFilters(ctx, "7"); err != nil {
		t.Fatalf("ClearAllFilters: %v", err)
	}
	prefs, _ = s.Preferences(ctx, "7")
	if !prefs.Empty() {
		t.Errorf("want empty preferences after clear, got %+v", prefs)
	}
}

func TestLegacyJobTypeAbsentIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	legacy, err := s.LegacyJobType(ctx, "9")
	if err != nil {
		t.Fatalf("LegacyJobType: %v", err)
	}
	if legacy != "" {
		t.Errorf("legacy = %q, want empty", legacy)
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	if err := s.MarkSeen(ctx, "100", "guid-1"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if err := s.MarkSeen(ctx, "100", "guid-1"); err != nil {
		t.Fatalf("MarkSeen repeat: %v", err)
	}

	seen, err := s.Seen(ctx, "100")
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if len(seen) != 1 {
		t.Errorf("seen set size = %d, want 1", len(seen))
	}
	if !seen["guid-1"] {
		t.Error("guid-1 missing from seen set")
	}
}

func TestSeenSetsArePerSubscriber(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	s.MarkSeen(ctx, "100", "guid-1")

	seen, _ := s.Seen(ctx, "200")
	if len(seen) != 0 {
		t.Errorf("subscriber 200 seen = %v, want empty", seen)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	job := model.Job{
		GUID:    "guid-1",
		Title:   "Rust Engineer",
		Link:    "https://example.com/rust-engineer-at-acme",
		Company: "Acme",
		Type:    model.TypeBackend,
	}
	if err := s.SaveFavorite(ctx, "100", job); err != nil {
		t.Fatalf("SaveFavorite: %v", err)
	}

	favorites, err := s.Favorites(ctx, "100")
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	got, ok := favorites["guid-1"]
	if !ok {
		t.Fatal("favorite not found")
	}
	if got.Title != job.Title || got.Company != job.Company || got.Type != job.Type {
		t.Errorf("favorite round trip mismatch: %+v", got)
	}

	if err := s.RemoveFavorite(ctx, "100", "guid-1"); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	favorites, _ = s.Favorites(ctx, "100")
	if len(favorites) != 0 {
		t.Errorf("favorites after remove = %v", favorites)
	}
}

func TestCheckpoint(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	_, ok, err := s.LastCheckTime(ctx)
	if err != nil {
		t.Fatalf("LastCheckTime: %v", err)
	}
	if ok {
		t.Fatal("fresh store should have no checkpoint")
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := s.SetLastCheckTime(ctx, now); err != nil {
		t.Fatalf("SetLastCheckTime: %v", err)
	}

	got, ok, err := s.LastCheckTime(ctx)
	if err != nil {
		t.Fatalf("LastCheckTime: %v", err)
	}
	if !ok {
		t.Fatal("checkpoint should exist")
	}
	if !got.Equal(now) {
		t.Errorf("checkpoint = %v, want %v", got, now)
	}
}
