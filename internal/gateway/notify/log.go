package notify

import (
	"context"
	"log/slog"

	"ticketing-engine/internal/usecase/shared"
)

// LogNotifier writes deliveries to the structured log. It stands in for
// a real mail or push channel in development and tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(_ context.Context, job shared.NotificationJob) error {
	slog.Info("notification delivered",
		"job_id", job.ID,
		"kind", job.Kind,
		"topic", job.Topic,
		"payload", string(job.Payload),
	)
	return nil
}
