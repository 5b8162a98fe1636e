package shared

import (
	"context"
	"time"

	"ticketing-engine/internal/domain/order"
	"ticketing-engine/internal/domain/ticket"
	"ticketing-engine/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// Reads: Direct access to command reads for validation outside transactions
	Reads() CommandReads
}

type Tx interface {
	Orders() OrderRepository
	Ledger() LedgerRepository
	Reconciliations() ReconciliationRepository
	Tickets() TicketRepository
	Notifications() NotificationRepository
	Idempotency() IdempotencyRepository
	DB() db.DBTX
}

type CommandReads interface {
	EventByID(ctx context.Context, id uuid.UUID) (*EventSnapshot, error)
	TicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]TicketTypeSnapshot, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

// Write-side snapshots keep commands off the read-side query types.
type EventSnapshot struct {
	ID     uuid.UUID
	HostID uuid.UUID
	Name   string
	Active bool
}

type TicketTypeSnapshot struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Name        string
	PriceCents  int64
	Capacity    int32
	Reserved    int32
	IssuedCount int32
	Active      bool
}

type OrderSnapshot struct {
	ID               uuid.UUID
	BuyerID          uuid.UUID
	EventID          uuid.UUID
	Status           order.Status
	TotalCents       int64
	Currency         string
	AttendeeName     string
	AttendeeEmail    string
	PaymentReference *string
	Items            []LineItemSnapshot
	CreatedAt        time.Time
}

type LineItemSnapshot struct {
	TicketTypeID   uuid.UUID
	Quantity       int32
	UnitPriceCents int64
}

type IdempotencyRecord struct {
	Key           uuid.UUID
	UserID        uuid.UUID
	Status        string
	RequestHash   string
	ResultOrderID *uuid.UUID
	ExpiresAt     time.Time
}

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	Attempts int32
}

// LedgerRepository is the sole authority over reserved/issued_count.
// Every method is a single conditional update on one ticket_types row.
type LedgerRepository interface {
	// TryReserve claims quantity units, failing with KindCapacityExceeded
	// when fewer than quantity units remain.
	TryReserve(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int32) error
	// Release returns previously reserved units. Callers gate it on the
	// order's pending->failed/expired transition so it runs once per order.
	Release(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int32) error
	// ConfirmIssued moves units from reserved-only to issued; reserved
	// itself stays elevated since the sale is final.
	ConfirmIssued(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int32) error
}

type OrderRepository interface {
	Create(ctx context.Context, tx db.DBTX, o *order.Order) error
	SetPaymentReference(ctx context.Context, tx db.DBTX, orderID uuid.UUID, ref string) error
	// TransitionFromPending flips the status only when the order is still
	// pending, reporting whether this call won the transition.
	TransitionFromPending(ctx context.Context, tx db.DBTX, orderID uuid.UUID, next order.Status) (bool, error)
	FindForUpdateByPaymentRef(ctx context.Context, tx db.DBTX, paymentRef string) (*OrderSnapshot, error)
	FindForUpdateByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*OrderSnapshot, error)
	// ClaimOverduePending locks up to limit pending orders created before
	// the cutoff, skipping rows other workers hold.
	ClaimOverduePending(ctx context.Context, tx db.DBTX, cutoff time.Time, limit int) ([]OrderSnapshot, error)
}

type ReconciliationRepository interface {
	// TryInsert records the external event id, reporting false when the
	// event was already processed.
	TryInsert(ctx context.Context, tx db.DBTX, externalEventID, paymentRef string) (bool, error)
	Resolve(ctx context.Context, tx db.DBTX, externalEventID string, orderID *uuid.UUID, outcome, resolution string) error
}

type TicketRepository interface {
	CreateBatch(ctx context.Context, tx db.DBTX, tickets []*ticket.IssuedTicket) error
	FindByOrderID(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]*ticket.IssuedTicket, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
	ClaimDue(ctx context.Context, tx db.DBTX, now time.Time, limit, maxAttempts int) ([]NotificationJob, error)
	MarkSent(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	MarkFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, lastError string, dead bool) error
}

type IdempotencyRepository interface {
	// TryInsert registers the key, reporting false when it already exists.
	TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBodyHash string, resultOrderID uuid.UUID) error
	Delete(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, tx db.DBTX, now time.Time) (int64, error)
}
