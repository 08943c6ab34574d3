// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

// ErrNotFound is returned when a bill or payment does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateBill persists a finalized bill and its payments in one
	// transaction. Empty IDs, CreatedAt and Title are filled in by the store.
	CreateBill(ctx context.Context, bill *models.Bill, payments []*models.Payment) error

	// GetBill retrieves a bill by its ID, including participants and items.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBillsForUser returns the bills userID participates in, newest first.
	ListBillsForUser(ctx context.Context, userID string) ([]*models.BillSummary, error)

	// ListPayments returns the payments of one bill.
	ListPayments(ctx context.Context, billID string) ([]*models.Payment, error)

	// ListPaymentsForUser returns every payment on bills userID participates in.
	ListPaymentsForUser(ctx context.Context, userID string) ([]*models.Payment, error)

	// MarkPaymentPaid settles a payment. Marking a paid payment again is a no-op.
	MarkPaymentPaid(ctx context.Context, paymentID string, at time.Time) error

	// Close releases any resources held by the store.
	Close() error
}
