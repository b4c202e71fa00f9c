package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure WebhookNotifier implements model.Notifier.
var _ model.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier posts each delivery event as JSON to a configured
// endpoint (typically a chat-transport bridge). Outbound messages are
// paced through a token bucket so one sweep cannot flood the transport.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type webhookPayload struct {
	SubscriberID string    `json:"subscriber_id"`
	Message      string    `json:"message"`
	ApplyURL     string    `json:"apply_url,omitempty"`
	Job          *model.Job `json:"job,omitempty"`
}

// NewWebhookNotifier returns a notifier posting to url, allowing at most
// messagesPerSecond outbound messages with a burst of one. A zero or
// negative rate falls back to one message per second.
func NewWebhookNotifier(url string, messagesPerSecond float64, httpClient *http.Client, logger *slog.Logger) *WebhookNotifier {
	if messagesPerSecond <= 0 {
		messagesPerSecond = 1
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(messagesPerSecond), 1),
		logger:     logger,
	}
}

// Notify posts one delivery event, blocking on the pacing limiter first.
func (w *WebhookNotifier) Notify(ctx context.Context, event model.Notification) error {
	job := event.Job
	err := w.post(ctx, webhookPayload{
		SubscriberID: event.SubscriberID,
		Message:      event.Message,
		ApplyURL:     event.ApplyURL,
		Job:          &job,
	})
	if err != nil {
		return err
	}
	w.logger.Debug("webhook notification sent",
		"subscriber", event.SubscriberID,
		"guid", event.Job.GUID,
	)
	return nil
}

func (w *WebhookNotifier) NotifyOverflow(ctx context.Context, subscriberID string, remaining int) error {
	return w.post(ctx, webhookPayload{
		SubscriberID: subscriberID,
		Message:      RenderOverflow(remaining),
	})
}

func (w *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting on send limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// SendTest pushes a dummy event through the notifier to verify wiring.
func SendTest(ctx context.Context, n model.Notifier) error {
	job := model.Job{
		GUID:             "test-001",
		Title:            "Test Notification: Integration Verified",
		Link:             "https://example.com/test-notification-at-jobwatch",
		Company:          "Jobwatch",
		CleanDescription: "If you can read this, the notifier is wired correctly.",
		Type:             model.TypeOther,
		PublishedAt:      time.Now(),
	}
	return n.Notify(ctx, NewNotification("test-subscriber", job))
}
