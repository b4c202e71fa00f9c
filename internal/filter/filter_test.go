package filter

import (
	"testing"

	"github.com/jobwatchd/jobwatch/internal/model"
)

func job(title, desc string, jobType model.JobType) model.Job {
	return model.Job{Title: title, CleanDescription: desc, Type: jobType}
}

func TestEngineMatches(t *testing.T) {
	tests := []struct {
		name  string
		prefs model.Preferences
		job   model.Job
		want  bool
	}{
		{
			name:  "no filters matches everything",
			prefs: model.Preferences{},
			job:   job("Any Role", "anything", model.TypeOther),
			want:  true,
		},
		{
			name:  "job type match",
			prefs: model.Preferences{JobTypes: []string{"backend"}},
			job:   job("API Engineer", "", model.TypeBackend),
			want:  true,
		},
		{
			name:  "job type case insensitive",
			prefs: model.Preferences{JobTypes: []string{"Backend"}},
			job:   job("API Engineer", "", model.TypeBackend),
			want:  true,
		},
		{
			name:  "job type miss",
			prefs: model.Preferences{JobTypes: []string{"frontend"}},
			job:   job("API Engineer", "", model.TypeBackend),
			want:  false,
		},
		{
			name:  "keyword in title",
			prefs: model.Preferences{Keywords: []string{"rust"}},
			job:   job("Rust Engineer", "", model.TypeBackend),
			want:  true,
		},
		{
			name:  "keyword in description case insensitive",
			prefs: model.Preferences{Keywords: []string{"RUST"}},
			job:   job("Engineer", "we love rust here", model.TypeOther),
			want:  true,
		},
		{
			name:  "keyword miss",
			prefs: model.Preferences{Keywords: []string{"rust"}},
			job:   job("Go Engineer", "gophers only", model.TypeBackend),
			want:  false,
		},
		{
			name: "or across filter kinds widens",
			prefs: model.Preferences{
				JobTypes: []string{"frontend"},
				Keywords: []string{"rust"},
			},
			job:  job("Rust Engineer", "", model.TypeBackend),
			want: true,
		},
		{
			name:  "legacy single type honored",
			prefs: model.Preferences{LegacyJobType: "backend"},
			job:   job("API Engineer", "", model.TypeBackend),
			want:  true,
		},
		{
			name:  "legacy miss with no other filters",
			prefs: model.Preferences{LegacyJobType: "design"},
			job:   job("API Engineer", "", model.TypeBackend),
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			if got := e.Matches(tt.job, tt.prefs); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineOpenDefaultForAllJobs(t *testing.T) {
	e := NewEngine()
	jobs := []model.Job{
		job("A", "", model.TypeBackend),
		job("B", "", model.TypeOther),
		job("C", "", model.TypeQA),
	}
	for _, j := range jobs {
		if !e.Matches(j, model.Preferences{}) {
			t.Errorf("empty preferences must match every job, failed for %q", j.Title)
		}
	}
}
