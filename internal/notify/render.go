// Package notify renders delivery payloads and hands them to a transport.
package notify

import (
	"fmt"
	"strings"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// descPreviewLines bounds how much of the description a notification shows.
const descPreviewLines = 5

var typeEmoji = map[model.JobType]string{
	model.TypeFullstack:  "👨‍💻",
	model.TypeFrontend:   "🖌️",
	model.TypeBackend:    "⚙️",
	model.TypeMobile:     "📱",
	model.TypeDevops:     "🔧",
	model.TypeBlockchain: "⛓️",
	model.TypeAI:         "🧠",
	model.TypeData:       "📊",
	model.TypeDesign:     "🎨",
	model.TypeProduct:    "📝",
	model.TypeQA:         "🔍",
	model.TypeOther:      "💼",
}

// RenderMessage formats a job as the human-readable alert text the
// transport sends verbatim.
func RenderMessage(job model.Job) string {
	emoji, ok := typeEmoji[job.Type]
	if !ok {
		emoji = typeEmoji[model.TypeOther]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🆕 %s\n", job.Title)
	fmt.Fprintf(&b, "🏢 Company: %s\n", job.Company)
	fmt.Fprintf(&b, "%s Job Type: %s\n", emoji, capitalize(string(job.Type)))
	fmt.Fprintf(&b, "🔗 %s\n", job.Link)

	if preview := descPreview(job.CleanDescription); preview != "" {
		fmt.Fprintf(&b, "\n📝 Description:\n%s", preview)
	}
	return b.String()
}

// RenderOverflow is the single summary line sent in place of jobs withheld
// by the per-sweep cap.
func RenderOverflow(remaining int) string {
	return fmt.Sprintf("... and %d more new jobs. Use the latest-jobs command to see all.", remaining)
}

// NewNotification assembles the delivery payload for one (job, subscriber)
// pair.
func NewNotification(subscriberID string, job model.Job) model.Notification {
	return model.Notification{
		SubscriberID: subscriberID,
		Job:          job,
		Message:      RenderMessage(job),
		ApplyURL:     job.Link,
	}
}

func descPreview(desc string) string {
	if desc == "" {
		return ""
	}
	lines := strings.Split(desc, "\n")
	if len(lines) <= descPreviewLines {
		return desc
	}
	return strings.Join(lines[:descPreviewLines], "\n") + "\n..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
