package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ticketing-engine/internal/domain/order"
	"ticketing-engine/internal/gateway/payment"
	reqdto "ticketing-engine/internal/handler/dto/request"
	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/pkg/clock"
	"ticketing-engine/internal/pkg/config"
	"ticketing-engine/internal/pkg/errs"
	"ticketing-engine/internal/usecase/queries"
	"ticketing-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound           = errs.New("event not found")
	ErrTicketTypeNotFound      = errs.New("ticket type not found")
	ErrCapacityExceeded        = errs.New("not enough tickets remaining")
	ErrDuplicateOrder          = errs.New("idempotency key reused with a different request")
	ErrIdempotencyInProgress   = errs.New("request with this idempotency key is in progress")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
	ErrPaymentRequestFailed    = errs.New("payment request could not be initiated")
)

const idempotencyTTL = 24 * time.Hour

type CreateOrderResult struct {
	Order *queries.OrderView
	// PaymentHandle is what the buyer follows to pay; empty on replay.
	PaymentHandle string
	IsReplayed    bool
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, req reqdto.CreateOrderRequest, buyerID uuid.UUID, idempotencyKey uuid.UUID) (*CreateOrderResult, error)
}

type orderUseCaseImpl struct {
	uow          shared.UnitOfWork
	orderFactory *order.Factory
	gateway      payment.Gateway
	orderQueries queries.OrderQueries
	clock        clock.Clock
	metrics      MetricsRecorder
	payCfg       config.PaymentConfig
}

func NewOrderUseCase(
	uow shared.UnitOfWork,
	orderFactory *order.Factory,
	gateway payment.Gateway,
	orderQueries queries.OrderQueries,
	clk clock.Clock,
	metrics MetricsRecorder,
	payCfg config.PaymentConfig,
) OrderCommands {
	return &orderUseCaseImpl{
		uow:          uow,
		orderFactory: orderFactory,
		gateway:      gateway,
		orderQueries: orderQueries,
		clock:        clk,
		metrics:      metrics,
		payCfg:       payCfg,
	}
}

func (u *orderUseCaseImpl) CreateOrder(
	ctx context.Context,
	req reqdto.CreateOrderRequest,
	buyerID uuid.UUID,
	idempotencyKey uuid.UUID,
) (*CreateOrderResult, error) {
	requestHash := u.calculateRequestHash(req)
	expiresAt := u.clock.Now().Add(idempotencyTTL)

	replayed, err := u.handleIdempotency(ctx, idempotencyKey, buyerID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &CreateOrderResult{Order: replayed, IsReplayed: true}, nil
	}

	orderEntity, err := u.buildOrder(ctx, req, buyerID)
	if err != nil {
		u.releaseIdempotencyKey(ctx, idempotencyKey, buyerID)
		return nil, err
	}

	if err := u.persistOrder(ctx, orderEntity, idempotencyKey, buyerID); err != nil {
		u.releaseIdempotencyKey(ctx, idempotencyKey, buyerID)
		return nil, err
	}
	u.metrics.OrderCreated("created")

	handle, err := u.requestPayment(ctx, orderEntity)
	if err != nil {
		// The order stays pending with capacity held; the reaper reclaims
		// it if no payment confirmation ever arrives.
		slog.Warn("payment request failed after order commit",
			"order_id", orderEntity.ID(), "error", err)
		return nil, errs.Mark(err, ErrPaymentRequestFailed)
	}

	view, err := u.orderQueries.GetByIDSystem(ctx, orderEntity.ID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &CreateOrderResult{Order: view, PaymentHandle: handle, IsReplayed: false}, nil
}

func (u *orderUseCaseImpl) handleIdempotency(
	ctx context.Context,
	idempotencyKey, buyerID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.OrderView, error) {
	var inserted bool
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var insertErr error
		inserted, insertErr = tx.Idempotency().TryInsert(ctx, tx.DB(), idempotencyKey, buyerID, "POST /orders", requestHash, expiresAt)
		return insertErr
	})
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if inserted {
		return nil, nil
	}

	existing, err := u.uow.Reads().IdempotencyByKey(ctx, idempotencyKey, buyerID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	if existing.RequestHash != requestHash {
		return nil, ErrDuplicateOrder
	}

	switch existing.Status {
	case "completed":
		if existing.ResultOrderID != nil {
			// System-level read: the replayed response must match the
			// original regardless of ownership scoping.
			return u.orderQueries.GetByIDSystem(ctx, *existing.ResultOrderID)
		}
		return nil, errs.New("completed request missing result order id")

	case "processing":
		return nil, ErrIdempotencyInProgress

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

// releaseIdempotencyKey frees a processing key after a definitive
// failure so the same key can carry a retry. Best effort: a leftover
// key falls back to the expiry purge.
func (u *orderUseCaseImpl) releaseIdempotencyKey(ctx context.Context, key, buyerID uuid.UUID) {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Delete(ctx, tx.DB(), key, buyerID)
	})
	if err != nil {
		slog.Warn("failed to release idempotency key", "key", key, "error", err)
	}
}

func (u *orderUseCaseImpl) buildOrder(
	ctx context.Context,
	req reqdto.CreateOrderRequest,
	buyerID uuid.UUID,
) (*order.Order, error) {
	reads := u.uow.Reads()

	eventSnap, err := reads.EventByID(ctx, req.EventID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	typeSnaps, err := reads.TicketTypesByEvent(ctx, req.EventID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	typeSpecs := make(map[uuid.UUID]order.TicketTypeSpec, len(typeSnaps))
	for _, tt := range typeSnaps {
		typeSpecs[tt.ID] = order.TicketTypeSpec{
			ID:         tt.ID,
			EventID:    tt.EventID,
			PriceCents: tt.PriceCents,
			Active:     tt.Active,
		}
	}

	attendee, err := req.ToAttendee()
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	orderEntity, err := u.orderFactory.CreateOrder(
		order.EventSpec{ID: eventSnap.ID, HostID: eventSnap.HostID, Active: eventSnap.Active},
		typeSpecs,
		buyerID,
		req.RequestedItems(),
		u.payCfg.Currency,
		attendee,
	)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrUnknownTicketType):
			return nil, ErrTicketTypeNotFound
		default:
			return nil, errs.Mark(err, ErrDomainValidation)
		}
	}
	return orderEntity, nil
}

// persistOrder claims capacity and inserts the order in one transaction.
// A reserve failure rolls back every prior claim, so partial multi-type
// orders never hold units.
func (u *orderUseCaseImpl) persistOrder(
	ctx context.Context,
	orderEntity *order.Order,
	idempotencyKey, buyerID uuid.UUID,
) error {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, li := range orderEntity.LineItems() {
			if err := tx.Ledger().TryReserve(ctx, tx.DB(), li.TicketTypeID(), li.Quantity()); err != nil {
				return err
			}
		}
		if err := tx.Orders().Create(ctx, tx.DB(), orderEntity); err != nil {
			return err
		}
		responseHash := u.calculateIDHash(orderEntity.ID())
		return tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), idempotencyKey, buyerID, responseHash, orderEntity.ID())
	})
	if err != nil {
		if infra.IsKind(err, infra.KindCapacityExceeded) {
			u.metrics.CapacityRejected()
			return ErrCapacityExceeded
		}
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrTicketTypeNotFound
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (u *orderUseCaseImpl) requestPayment(ctx context.Context, orderEntity *order.Order) (string, error) {
	intent, err := u.gateway.CreatePaymentRequest(ctx, &payment.PaymentRequest{
		OrderID:  orderEntity.ID(),
		Amount:   payment.AmountFromCents(orderEntity.Total().Cents()),
		Currency: orderEntity.Currency(),
		Memo:     "ticket order",
	})
	if err != nil {
		return "", err
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Orders().SetPaymentReference(ctx, tx.DB(), orderEntity.ID(), intent.PaymentReference)
	})
	if err != nil {
		return "", errs.Mark(err, ErrDatabaseOperationFailed)
	}

	orderEntity.AttachPaymentReference(intent.PaymentReference)
	return intent.ClientHandle, nil
}

func (u *orderUseCaseImpl) calculateRequestHash(req reqdto.CreateOrderRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (u *orderUseCaseImpl) calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
