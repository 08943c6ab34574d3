package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/models"
)

// PrepareBill fills in the IDs, timestamps and title a store assigns on
// create, and points every payment at the bill.
func PrepareBill(bill *models.Bill, payments []*models.Payment, now time.Time) {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now.Unix()
	}
	if bill.Category == "" {
		bill.Category = models.CategoryOther
	}
	if bill.Title == "" {
		bill.Title = GenerateTitle(bill.Participants, now)
	}
	for i := range bill.Items {
		if bill.Items[i].ID == "" {
			bill.Items[i].ID = uuid.New().String()
		}
	}
	for _, p := range payments {
		p.BillID = bill.ID
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.CreatedAt == 0 {
			p.CreatedAt = bill.CreatedAt
		}
	}
}

// GenerateTitle creates an auto-generated title from participants.
func GenerateTitle(participants []string, now time.Time) string {
	if len(participants) == 0 {
		return fmt.Sprintf("Bill - %s", now.Format("Jan 2, 2006"))
	}
	if len(participants) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(participants, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(participants[:2], ", "),
		len(participants)-2,
	)
}
