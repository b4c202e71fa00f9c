// Package filter evaluates a subscriber's preferences against a job.
package filter

import (
	"strings"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure Engine implements model.JobFilter.
var _ model.JobFilter = (*Engine)(nil)

// Engine matches jobs against subscriber preferences with pure OR
// semantics: a job passes if its category is in the subscriber's job-type
// set OR any custom keyword appears in its title+description. A subscriber
// with no filters at all receives everything.
type Engine struct{}

// NewEngine returns the filter engine. It is stateless; one instance is
// shared by the whole pipeline.
func NewEngine() *Engine {
	return &Engine{}
}

// Matches reports whether the job passes the subscriber's filters. Adding
// a filter of either kind only ever widens the result set.
func (e *Engine) Matches(job model.Job, prefs model.Preferences) bool {
	if prefs.Empty() {
		return true
	}

	if matchesJobType(job, prefs.JobTypes) || matchesJobType(job, legacyAsSet(prefs.LegacyJobType)) {
		return true
	}
	return matchesKeyword(job, prefs.Keywords)
}

func legacyAsSet(legacy string) []string {
	if legacy == "" {
		return nil
	}
	return []string{legacy}
}

func matchesJobType(job model.Job, jobTypes []string) bool {
	jobType := strings.ToLower(string(job.Type))
	for _, t := range jobTypes {
		if strings.ToLower(t) == jobType {
			return true
		}
	}
	return false
}

func matchesKeyword(job model.Job, keywords []string) bool {
	content := strings.ToLower(job.Title + " " + job.CleanDescription)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(content, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
