package notify

import (
	"context"
	"log/slog"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes delivery events to the logger. Useful for development
// and as the default when no transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each event via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the event. Stdout logging does not fail.
func (n *LogNotifier) Notify(_ context.Context, event model.Notification) error {
	n.logger.Info("new job",
		"subscriber", event.SubscriberID,
		"guid", event.Job.GUID,
		"title", event.Job.Title,
		"company", event.Job.Company,
		"job_type", event.Job.Type,
		"apply_url", event.ApplyURL,
	)
	return nil
}

func (n *LogNotifier) NotifyOverflow(_ context.Context, subscriberID string, remaining int) error {
	n.logger.Info("overflow notice",
		"subscriber", subscriberID,
		"remaining", remaining,
	)
	return nil
}
