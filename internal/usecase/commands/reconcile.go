package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"ticketing-engine/internal/domain/order"
	"ticketing-engine/internal/gateway/payment"
	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/pkg/clock"
	"ticketing-engine/internal/pkg/errs"
	"ticketing-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfirmation     = errs.New("invalid confirmation event")
	ErrUnknownPaymentReference = errs.New("no order matches payment reference")
)

type ReconcileResult struct {
	Resolution    string
	OrderID       *uuid.UUID
	TicketsIssued int
}

type ReconciliationCommands interface {
	// HandleConfirmation applies one provider confirmation event. Replays
	// of an already-processed event resolve as duplicates without touching
	// order or ledger state.
	HandleConfirmation(ctx context.Context, ev payment.ConfirmationEvent) (*ReconcileResult, error)
}

type reconciliationUseCaseImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	metrics MetricsRecorder
}

func NewReconciliationUseCase(uow shared.UnitOfWork, clk clock.Clock, metrics MetricsRecorder) ReconciliationCommands {
	return &reconciliationUseCaseImpl{uow: uow, clock: clk, metrics: metrics}
}

// The whole event is applied in one transaction: the record insert, the
// status transition, the ledger moves and the ticket rows commit together
// or not at all. A crash mid-handler leaves no record, so the provider's
// redelivery starts over cleanly.
func (u *reconciliationUseCaseImpl) HandleConfirmation(
	ctx context.Context,
	ev payment.ConfirmationEvent,
) (*ReconcileResult, error) {
	if ev.ExternalEventID == "" || ev.PaymentReference == "" || !ev.Status.IsValid() {
		return nil, ErrInvalidConfirmation
	}

	result := &ReconcileResult{}
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		inserted, err := tx.Reconciliations().TryInsert(ctx, tx.DB(), ev.ExternalEventID, ev.PaymentReference)
		if err != nil {
			return err
		}
		if !inserted {
			result.Resolution = ResolutionDuplicate
			return nil
		}

		snap, err := tx.Orders().FindForUpdateByPaymentRef(ctx, tx.DB(), ev.PaymentReference)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				// The reference may belong to an order whose create flow
				// has not attached it yet. Rolling back leaves no record,
				// so the provider's redelivery retries against settled
				// state instead of resolving as a duplicate forever.
				return errs.Mark(err, ErrUnknownPaymentReference)
			}
			return err
		}
		orderID := snap.ID
		result.OrderID = &orderID

		if snap.Status.IsTerminal() {
			result.Resolution = ResolutionAlreadyFinal
			return tx.Reconciliations().Resolve(ctx, tx.DB(), ev.ExternalEventID, &orderID, string(ev.Status), ResolutionAlreadyFinal)
		}

		next := order.StatusFailed
		if ev.Status == payment.ConfirmationSucceeded {
			next = order.StatusPaid
		}
		won, err := tx.Orders().TransitionFromPending(ctx, tx.DB(), orderID, next)
		if err != nil {
			return err
		}
		if !won {
			result.Resolution = ResolutionAlreadyFinal
			return tx.Reconciliations().Resolve(ctx, tx.DB(), ev.ExternalEventID, &orderID, string(ev.Status), ResolutionAlreadyFinal)
		}

		if ev.Status == payment.ConfirmationSucceeded {
			issued, err := u.applySuccess(ctx, tx, snap)
			if err != nil {
				return err
			}
			result.TicketsIssued = issued
		} else {
			if err := u.applyFailure(ctx, tx, snap); err != nil {
				return err
			}
		}

		result.Resolution = ResolutionApplied
		return tx.Reconciliations().Resolve(ctx, tx.DB(), ev.ExternalEventID, &orderID, string(ev.Status), ResolutionApplied)
	})
	if err != nil {
		if errors.Is(err, ErrUnknownPaymentReference) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	u.metrics.Reconciled(result.Resolution)
	if result.TicketsIssued > 0 {
		u.metrics.TicketsIssued(result.TicketsIssued)
	}
	slog.Info("confirmation event reconciled",
		"external_event_id", ev.ExternalEventID,
		"resolution", result.Resolution,
		"tickets_issued", result.TicketsIssued)
	return result, nil
}

func (u *reconciliationUseCaseImpl) applySuccess(ctx context.Context, tx shared.Tx, snap *shared.OrderSnapshot) (int, error) {
	for _, item := range snap.Items {
		if err := tx.Ledger().ConfirmIssued(ctx, tx.DB(), item.TicketTypeID, item.Quantity); err != nil {
			return 0, err
		}
	}

	tickets, err := issueTickets(ctx, tx, snap)
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(map[string]any{
		"order_id":     snap.ID,
		"type":         "order_paid",
		"ticket_count": len(tickets),
	})
	if err != nil {
		return 0, errs.Wrap(err, "failed to encode notification payload")
	}
	if err := tx.Notifications().CreateJob(ctx, tx.DB(), "email", "order_paid", payload, u.clock.Now()); err != nil {
		return 0, err
	}

	return len(tickets), nil
}

func (u *reconciliationUseCaseImpl) applyFailure(ctx context.Context, tx shared.Tx, snap *shared.OrderSnapshot) error {
	for _, item := range snap.Items {
		if err := tx.Ledger().Release(ctx, tx.DB(), item.TicketTypeID, item.Quantity); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(map[string]any{
		"order_id": snap.ID,
		"type":     "order_failed",
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode notification payload")
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "order_failed", payload, u.clock.Now())
}
