// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a finalized bill and its payments in one transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill, payments []*models.Payment) error {
	storage.PrepareBill(bill, payments, time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, title, owner_id, category, kind, base, tax, tip, total, mode, unit, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, bill.OwnerID, string(bill.Category), bill.Kind,
		bill.Base.String(), bill.Tax.String(), bill.Tip.String(), bill.Total.String(),
		bill.Mode, bill.Unit, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i, id := range bill.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (bill_id, user_id, position) VALUES (?, ?, ?)",
			bill.ID, id, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (id, bill_id, description, amount, position) VALUES (?, ?, ?, ?, ?)",
			item.ID, bill.ID, item.Description, item.Amount.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for j, participant := range item.Assignees {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, participant, position) VALUES (?, ?, ?)",
				item.ID, participant, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	for _, p := range payments {
		var paidAt any
		if p.PaidAt != 0 {
			paidAt = p.PaidAt
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payments (id, bill_id, participant_id, amount, status, created_at, paid_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.BillID, p.ParticipantID, p.Amount.String(), string(p.Status), p.CreatedAt, paidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including all items and participants.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, owner_id, category, kind, base, tax, tip, total, mode, unit, created_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.Title, &bill.OwnerID, &category, &bill.Kind,
		&bill.Base, &bill.Tax, &bill.Tip, &bill.Total,
		&bill.Mode, &bill.Unit, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Category = models.Category(category)

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM participants WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		bill.Participants = append(bill.Participants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, description, amount FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	index := map[string]int{}
	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Description, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(bill.Items)
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	if len(bill.Items) == 0 {
		return bill, nil
	}

	assignRows, err := s.db.QueryContext(ctx,
		`SELECT a.item_id, a.participant FROM item_assignments a
		 JOIN items i ON i.id = a.item_id
		 WHERE i.bill_id = ? ORDER BY i.position, a.position`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID, participant string
		if err := assignRows.Scan(&itemID, &participant); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := index[itemID]; ok {
			bill.Items[i].Assignees = append(bill.Items[i].Assignees, participant)
		}
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return bill, nil
}

// ListBillsForUser returns the bills userID participates in, newest first.
func (s *SQLiteStore) ListBillsForUser(ctx context.Context, userID string) ([]*models.BillSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.title, b.owner_id, b.category, b.total, b.created_at,
		        (SELECT COUNT(*) FROM participants c WHERE c.bill_id = b.id)
		 FROM bills b
		 JOIN participants p ON p.bill_id = b.id
		 WHERE p.user_id = ?
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
