package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

const paymentColumns = `p.id, p.bill_id, p.participant_id, p.amount, p.status, p.created_at, p.paid_at`

// ListPayments retrieves every payment of a bill, owner first.
func (s *SQLiteStore) ListPayments(ctx context.Context, billID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentColumns+`
		 FROM payments p JOIN bills b ON b.id = p.bill_id
		 WHERE p.bill_id = ?
		 ORDER BY p.participant_id <> b.owner_id, p.participant_id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by bill: %w", err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// ListPaymentsForUser retrieves the payments of every bill userID is part of.
func (s *SQLiteStore) ListPaymentsForUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentColumns+`
		 FROM payments p
		 JOIN participants u ON u.bill_id = p.bill_id
		 WHERE u.user_id = ?
		 ORDER BY p.created_at DESC, p.bill_id, p.participant_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by user: %w", err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// MarkPaymentPaid settles a pending payment. Settled payments keep their
// original PaidAt.
func (s *SQLiteStore) MarkPaymentPaid(ctx context.Context, paymentID string, at time.Time) error {
	var status string
	err := s.db.QueryRowContext(ctx, "SELECT status FROM payments WHERE id = ?", paymentID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check payment existence: %w", err)
	}
	if models.PaymentStatus(status) == models.PaymentPaid {
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE payments SET status = ?, paid_at = ? WHERE id = ? AND status = ?",
		string(models.PaymentPaid), at.Unix(), paymentID, string(models.PaymentPending),
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}

	return nil
}

func scanPayments(rows *sql.Rows) ([]*models.Payment, error) {
	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var status string
		var paidAt sql.NullInt64

		if err := rows.Scan(&p.ID, &p.BillID, &p.ParticipantID, &p.Amount,
			&status, &p.CreatedAt, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		if paidAt.Valid {
			p.PaidAt = paidAt.Int64
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
