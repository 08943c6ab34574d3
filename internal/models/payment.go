package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

// Payment is what one participant owes on one bill.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// BillID is the bill this payment belongs to.
	BillID string

	// ParticipantID is the participant who owes Amount to the bill owner.
	ParticipantID string

	// Amount is rounded to cents.
	Amount decimal.Decimal

	Status PaymentStatus

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// PaidAt is the Unix timestamp when the payment was settled, 0 while pending.
	PaidAt int64
}

// BuildPayments creates one payment per participant of a finalized bill.
// The owner's payment is recorded as already paid; everyone else starts
// pending. Payments are ordered owner first, then by participant ID.
func BuildPayments(billID, ownerID string, amounts map[string]decimal.Decimal, now time.Time) []*Payment {
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		if id != ownerID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if _, ok := amounts[ownerID]; ok {
		ids = append([]string{ownerID}, ids...)
	}

	created := now.Unix()
	payments := make([]*Payment, 0, len(ids))
	for _, id := range ids {
		p := &Payment{
			ID:            uuid.New().String(),
			BillID:        billID,
			ParticipantID: id,
			Amount:        amounts[id],
			Status:        PaymentPending,
			CreatedAt:     created,
		}
		if id == ownerID {
			p.Status = PaymentPaid
			p.PaidAt = created
		}
		payments = append(payments, p)
	}
	return payments
}
