package commands

import (
	"context"

	"ticketing-engine/internal/usecase/shared"
)

// Resolution values recorded on reconciliation records.
const (
	ResolutionApplied      = "applied"
	ResolutionDuplicate    = "duplicate"
	ResolutionAlreadyFinal = "already_final"
)

// Notifier delivers a claimed notification job to its channel.
type Notifier interface {
	Send(ctx context.Context, job shared.NotificationJob) error
}

// MetricsRecorder decouples commands from the metrics backend.
type MetricsRecorder interface {
	OrderCreated(outcome string)
	CapacityRejected()
	Reconciled(resolution string)
	TicketsIssued(n int)
	OrdersExpired(n int)
	NotificationDispatched(result string)
}
