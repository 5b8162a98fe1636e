package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ticketing-engine/internal/domain/order"
	"ticketing-engine/internal/pkg/clock"
	"ticketing-engine/internal/pkg/config"
	"ticketing-engine/internal/pkg/errs"
	"ticketing-engine/internal/usecase/shared"
)

type MaintenanceCommands interface {
	// ExpireOverdueOrders transitions pending orders past the payment TTL
	// to expired and returns their reserved units to the pool.
	ExpireOverdueOrders(ctx context.Context) (int, error)
	// PurgeIdempotencyKeys drops idempotency records past their retention.
	PurgeIdempotencyKeys(ctx context.Context) (int64, error)
}

type maintenanceUseCaseImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	metrics MetricsRecorder
	cfg     config.WorkerConfig
}

func NewMaintenanceUseCase(uow shared.UnitOfWork, clk clock.Clock, metrics MetricsRecorder, cfg config.WorkerConfig) MaintenanceCommands {
	return &maintenanceUseCaseImpl{uow: uow, clock: clk, metrics: metrics, cfg: cfg}
}

func (u *maintenanceUseCaseImpl) ExpireOverdueOrders(ctx context.Context) (int, error) {
	cutoff := u.clock.Now().Add(-u.cfg.PendingTTL)

	expired := 0
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		overdue, err := tx.Orders().ClaimOverduePending(ctx, tx.DB(), cutoff, u.cfg.ReaperBatchSize)
		if err != nil {
			return err
		}

		for i := range overdue {
			snap := &overdue[i]
			won, err := tx.Orders().TransitionFromPending(ctx, tx.DB(), snap.ID, order.StatusExpired)
			if err != nil {
				return err
			}
			// The row is locked, so losing here means a confirmation
			// finalized it in a previous transaction.
			if !won {
				continue
			}
			for _, item := range snap.Items {
				if err := tx.Ledger().Release(ctx, tx.DB(), item.TicketTypeID, item.Quantity); err != nil {
					return err
				}
			}
			if err := u.queueExpiredNotification(ctx, tx, snap); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if expired > 0 {
		u.metrics.OrdersExpired(expired)
		slog.Info("expired overdue orders", "count", expired, "cutoff", cutoff.Format(time.RFC3339))
	}
	return expired, nil
}

func (u *maintenanceUseCaseImpl) queueExpiredNotification(ctx context.Context, tx shared.Tx, snap *shared.OrderSnapshot) error {
	payload, err := json.Marshal(map[string]any{
		"order_id": snap.ID,
		"type":     "order_expired",
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode notification payload")
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "order_expired", payload, u.clock.Now())
}

func (u *maintenanceUseCaseImpl) PurgeIdempotencyKeys(ctx context.Context) (int64, error) {
	var purged int64
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var purgeErr error
		purged, purgeErr = tx.Idempotency().DeleteExpired(ctx, tx.DB(), u.clock.Now())
		return purgeErr
	})
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return purged, nil
}
