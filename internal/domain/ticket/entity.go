package ticket

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

var ErrCodeGeneration = errors.New("failed to generate redemption code")

// IssuedTicket is one admission unit. It belongs to exactly one order and
// one ticket type, exists only after the order is paid, and is never
// mutated afterwards except for its status.
type IssuedTicket struct {
	id             uuid.UUID
	orderID        uuid.UUID
	ticketTypeID   uuid.UUID
	redemptionCode string
	status         Status
	issuedAt       time.Time
}

func NewIssuedTicket(orderID, ticketTypeID uuid.UUID) (*IssuedTicket, error) {
	code, err := generateRedemptionCode()
	if err != nil {
		return nil, err
	}
	return &IssuedTicket{
		id:             uuid.New(),
		orderID:        orderID,
		ticketTypeID:   ticketTypeID,
		redemptionCode: code,
		status:         StatusActive,
	}, nil
}

func ReconstructIssuedTicket(
	id, orderID, ticketTypeID uuid.UUID,
	redemptionCode string,
	status Status,
	issuedAt time.Time,
) *IssuedTicket {
	return &IssuedTicket{
		id:             id,
		orderID:        orderID,
		ticketTypeID:   ticketTypeID,
		redemptionCode: redemptionCode,
		status:         status,
		issuedAt:       issuedAt,
	}
}

func (t *IssuedTicket) ID() uuid.UUID           { return t.id }
func (t *IssuedTicket) OrderID() uuid.UUID      { return t.orderID }
func (t *IssuedTicket) TicketTypeID() uuid.UUID { return t.ticketTypeID }
func (t *IssuedTicket) RedemptionCode() string  { return t.redemptionCode }
func (t *IssuedTicket) Status() Status          { return t.status }
func (t *IssuedTicket) IssuedAt() time.Time     { return t.issuedAt }

// 16 random bytes, base32 without padding: 26 chars, gate-scanner friendly.
func generateRedemptionCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", ErrCodeGeneration
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
