package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

const paymentColumns = `p.id, p.bill_id, p.participant_id, p.amount::text, p.status, p.created_at, p.paid_at`

// ListPayments retrieves every payment of a bill, owner first.
func (s *Store) ListPayments(ctx context.Context, billID string) ([]*models.Payment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+paymentColumns+`
		 FROM payments p JOIN bills b ON b.id = p.bill_id
		 WHERE p.bill_id = $1
		 ORDER BY p.participant_id <> b.owner_id, p.participant_id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by bill: %w", err)
	}
	return collectPayments(rows)
}

// ListPaymentsForUser retrieves the payments of every bill userID is part of.
func (s *Store) ListPaymentsForUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+paymentColumns+`
		 FROM payments p
		 JOIN participants u ON u.bill_id = p.bill_id
		 WHERE u.user_id = $1
		 ORDER BY p.created_at DESC, p.bill_id, p.participant_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by user: %w", err)
	}
	return collectPayments(rows)
}

// MarkPaymentPaid settles a pending payment. Settled payments keep their
// original paid_at.
func (s *Store) MarkPaymentPaid(ctx context.Context, paymentID string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE payments SET status = $1, paid_at = $2 WHERE id = $3 AND status = $4",
		string(models.PaymentPaid), at.Unix(), paymentID, string(models.PaymentPending),
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists int
	err = s.db.QueryRow(ctx, "SELECT 1 FROM payments WHERE id = $1", paymentID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check payment existence: %w", err)
	}
	return nil
}

func collectPayments(rows pgx.Rows) ([]*models.Payment, error) {
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var status string
		var paidAt *int64
		if err := rows.Scan(&p.ID, &p.BillID, &p.ParticipantID, &p.Amount,
			&status, &p.CreatedAt, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		if paidAt != nil {
			p.PaidAt = *paidAt
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
