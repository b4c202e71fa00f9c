package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobwatchd/jobwatch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderMessage(t *testing.T) {
	job := model.Job{
		Title:            "Senior Rust Engineer",
		Company:          "Acme",
		Type:             model.TypeBackend,
		Link:             "https://example.com/rust-at-acme",
		CleanDescription: "Build fast things.",
	}
	msg := RenderMessage(job)

	for _, want := range []string{
		"Senior Rust Engineer",
		"Company: Acme",
		"Job Type: Backend",
		"https://example.com/rust-at-acme",
		"Build fast things.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestRenderMessageTruncatesDescription(t *testing.T) {
	long := strings.Repeat("line\n", 20)
	job := model.Job{Title: "T", Type: model.TypeOther, CleanDescription: strings.TrimSpace(long)}

	msg := RenderMessage(job)
	if !strings.HasSuffix(msg, "...") {
		t.Errorf("long description should end with ellipsis:\n%s", msg)
	}
}

func TestRenderOverflow(t *testing.T) {
	got := RenderOverflow(3)
	if !strings.Contains(got, "3 more new jobs") {
		t.Errorf("RenderOverflow = %q", got)
	}
}

func TestNewNotification(t *testing.T) {
	job := model.Job{GUID: "g", Title: "T", Link: "https://example.com/apply"}
	n := NewNotification("42", job)

	if n.SubscriberID != "42" {
		t.Errorf("subscriber = %q", n.SubscriberID)
	}
	if n.ApplyURL != job.Link {
		t.Errorf("apply url = %q", n.ApplyURL)
	}
	if n.Message == "" {
		t.Error("message not rendered")
	}
}

func TestWebhookNotifierPostsPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 100, srv.Client(), discardLogger())
	event := NewNotification("42", model.Job{GUID: "g1", Title: "T", Link: "https://example.com"})
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if got.SubscriberID != "42" {
		t.Errorf("subscriber = %q", got.SubscriberID)
	}
	if got.Job == nil || got.Job.GUID != "g1" {
		t.Errorf("job payload = %+v", got.Job)
	}
}

func TestWebhookNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 100, srv.Client(), discardLogger())
	err := n.Notify(context.Background(), NewNotification("42", model.Job{}))
	if err == nil {
		t.Fatal("want error on 500 response")
	}
}

func TestWebhookNotifierOverflow(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 100, srv.Client(), discardLogger())
	if err := n.NotifyOverflow(context.Background(), "42", 3); err != nil {
		t.Fatalf("NotifyOverflow: %v", err)
	}
	if !strings.Contains(got.Message, "3 more") {
		t.Errorf("overflow message = %q", got.Message)
	}
	if got.Job != nil {
		t.Error("overflow payload should carry no job")
	}
}
