package commands

import (
	"context"
	"log/slog"

	"ticketing-engine/internal/pkg/clock"
	"ticketing-engine/internal/pkg/config"
	"ticketing-engine/internal/pkg/errs"
	"ticketing-engine/internal/usecase/shared"
)

type NotificationCommands interface {
	// DispatchDue claims a batch of queued jobs and delivers them. Jobs
	// that keep failing are parked as dead after the attempt limit.
	DispatchDue(ctx context.Context) (int, error)
}

type notificationUseCaseImpl struct {
	uow      shared.UnitOfWork
	notifier Notifier
	clock    clock.Clock
	metrics  MetricsRecorder
	cfg      config.WorkerConfig
}

func NewNotificationUseCase(
	uow shared.UnitOfWork,
	notifier Notifier,
	clk clock.Clock,
	metrics MetricsRecorder,
	cfg config.WorkerConfig,
) NotificationCommands {
	return &notificationUseCaseImpl{
		uow:      uow,
		notifier: notifier,
		clock:    clk,
		metrics:  metrics,
		cfg:      cfg,
	}
}

func (u *notificationUseCaseImpl) DispatchDue(ctx context.Context) (int, error) {
	var jobs []shared.NotificationJob
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var claimErr error
		jobs, claimErr = tx.Notifications().ClaimDue(ctx, tx.DB(), u.clock.Now(), u.cfg.NotifierBatchSize, u.cfg.NotifierMaxAttempts)
		return claimErr
	})
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	sent := 0
	for _, job := range jobs {
		// Delivery happens outside any transaction; the claim already
		// bumped attempts, so a crash here only delays redelivery.
		sendErr := u.notifier.Send(ctx, job)

		markErr := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if sendErr != nil {
				dead := job.Attempts >= int32(u.cfg.NotifierMaxAttempts)
				if dead {
					slog.Error("notification job exhausted attempts",
						"job_id", job.ID, "topic", job.Topic, "error", sendErr)
				}
				u.metrics.NotificationDispatched(failResult(dead))
				return tx.Notifications().MarkFailed(ctx, tx.DB(), job.ID, sendErr.Error(), dead)
			}
			u.metrics.NotificationDispatched("sent")
			return tx.Notifications().MarkSent(ctx, tx.DB(), job.ID)
		})
		if markErr != nil {
			return sent, errs.Mark(markErr, ErrDatabaseOperationFailed)
		}
		if sendErr == nil {
			sent++
		}
	}
	return sent, nil
}

func failResult(dead bool) string {
	if dead {
		return "dead"
	}
	return "requeued"
}
