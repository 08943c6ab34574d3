// Package postgres provides a PostgreSQL implementation of storage.Store
// backed by a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements storage.Store using PostgreSQL.
type Store struct {
	db DB
}

// New connects to databaseURL and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := NewWithDB(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an existing pool.
func NewWithDB(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// CreateBill persists a finalized bill and its payments in one transaction.
func (s *Store) CreateBill(ctx context.Context, bill *models.Bill, payments []*models.Payment) (err error) {
	storage.PrepareBill(bill, payments, time.Now())

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO bills (id, title, owner_id, category, kind, base, tax, tip, total, mode, unit, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		bill.ID, bill.Title, bill.OwnerID, string(bill.Category), bill.Kind,
		bill.Base.String(), bill.Tax.String(), bill.Tip.String(), bill.Total.String(),
		bill.Mode, bill.Unit, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i, id := range bill.Participants {
		_, err = tx.Exec(ctx,
			"INSERT INTO participants (bill_id, user_id, position) VALUES ($1, $2, $3)",
			bill.ID, id, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i, item := range bill.Items {
		_, err = tx.Exec(ctx,
			"INSERT INTO items (id, bill_id, description, amount, position) VALUES ($1, $2, $3, $4, $5)",
			item.ID, bill.ID, item.Description, item.Amount.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		for j, participant := range item.Assignees {
			_, err = tx.Exec(ctx,
				"INSERT INTO item_assignments (item_id, participant, position) VALUES ($1, $2, $3)",
				item.ID, participant, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	for _, p := range payments {
		var paidAt *int64
		if p.PaidAt != 0 {
			paidAt = &p.PaidAt
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO payments (id, bill_id, participant_id, amount, status, created_at, paid_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, p.BillID, p.ParticipantID, p.Amount.String(), string(p.Status), p.CreatedAt, paidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID, including all items and participants.
func (s *Store) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var category string
	err := s.db.QueryRow(ctx,
		`SELECT id, title, owner_id, category, kind, base::text, tax::text, tip::text, total::text, mode, unit, created_at
		 FROM bills WHERE id = $1`,
		billID,
	).Scan(&bill.ID, &bill.Title, &bill.OwnerID, &category, &bill.Kind,
		&bill.Base, &bill.Tax, &bill.Tip, &bill.Total,
		&bill.Mode, &bill.Unit, &bill.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Category = models.Category(category)

	rows, err := s.db.Query(ctx,
		"SELECT user_id FROM participants WHERE bill_id = $1 ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	bill.Participants, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan participants: %w", err)
	}

	rows, err = s.db.Query(ctx,
		`SELECT i.id, i.description, i.amount::text, a.participant
		 FROM items i LEFT JOIN item_assignments a ON a.item_id = i.id
		 WHERE i.bill_id = $1
		 ORDER BY i.position, a.position`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.Item
		var participant *string
		if err := rows.Scan(&item.ID, &item.Description, &item.Amount, &participant); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if n := len(bill.Items); n == 0 || bill.Items[n-1].ID != item.ID {
			bill.Items = append(bill.Items, item)
		}
		if participant != nil {
			last := &bill.Items[len(bill.Items)-1]
			last.Assignees = append(last.Assignees, *participant)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return bill, nil
}

// ListBillsForUser returns the bills userID participates in, newest first.
func (s *Store) ListBillsForUser(ctx context.Context, userID string) ([]*models.BillSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT b.id, b.title, b.owner_id, b.category, b.total::text, b.created_at,
		        (SELECT COUNT(*) FROM participants c WHERE c.bill_id = b.id)
		 FROM bills b
		 JOIN participants p ON p.bill_id = b.id
		 WHERE p.user_id = $1
		 ORDER BY b.created_at DESC, b.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.BillSummary
	for rows.Next() {
		b := &models.BillSummary{}
		var category string
		if err := rows.Scan(&b.ID, &b.Title, &b.OwnerID, &category, &b.Total, &b.CreatedAt, &b.ParticipantCount); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.Category = models.Category(category)
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}
