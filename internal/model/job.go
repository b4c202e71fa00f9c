package model

import (
	"context"
	"time"
)

// JobType is the category a listing is classified into.
type JobType string

const (
	TypeFullstack  JobType = "fullstack"
	TypeFrontend   JobType = "frontend"
	TypeBackend    JobType = "backend"
	TypeMobile     JobType = "mobile"
	TypeDevops     JobType = "devops"
	TypeBlockchain JobType = "blockchain"
	TypeAI         JobType = "ai"
	TypeData       JobType = "data"
	TypeDesign     JobType = "design"
	TypeProduct    JobType = "product"
	TypeQA         JobType = "qa"
	TypeOther      JobType = "other"
)

// Job is a single normalized listing from the feed. Once classified it is
// treated as an immutable value.
type Job struct {
	GUID           string    `json:"guid"`
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	RawDescription string    `json:"description"`
	PublishedAt    time.Time `json:"published"`

	// Derived during classification.
	Company          string  `json:"company"`
	CleanDescription string  `json:"clean_description"`
	Type             JobType `json:"job_type"`
}

// Preferences holds a subscriber's filter state. Job types and keywords
// combine with pure OR semantics; empty preferences match everything.
type Preferences struct {
	JobTypes      []string // selected job type categories
	Keywords      []string // free-text keywords, case-insensitive substring
	LegacyJobType string   // single-type preference kept for older subscribers
}

// Empty reports whether no filter of any kind is set.
func (p Preferences) Empty() bool {
	return len(p.JobTypes) == 0 && len(p.Keywords) == 0 && p.LegacyJobType == ""
}

// FeedSource fetches and classifies listings from the configured feed.
type FeedSource interface {
	FetchJobs(ctx context.Context) ([]Job, error)
	JobByGUID(ctx context.Context, guid string) (Job, error)
}

// Notification is one delivery event handed to the transport.
type Notification struct {
	SubscriberID string
	Job          Job
	Message      string // rendered human-readable text
	ApplyURL     string
}

// Notifier delivers notification events. Implementations own transport
// concerns (webhooks, chat messages); the pipeline only emits events.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	// NotifyOverflow tells a subscriber that remaining matched jobs were
	// withheld by the per-sweep cap.
	NotifyOverflow(ctx context.Context, subscriberID string, remaining int) error
}

// JobFilter decides whether a job matches a subscriber's preferences.
type JobFilter interface {
	Matches(job Job, prefs Preferences) bool
}
