package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// Timeframe is the window spending insights cover.
type Timeframe string

const (
	TimeframeMonth   Timeframe = "month"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeYear    Timeframe = "year"
)

// ParseTimeframe accepts month, quarter or year in any case. Empty input is
// a month.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case "":
		return TimeframeMonth, nil
	case TimeframeMonth, TimeframeQuarter, TimeframeYear:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
}

// Start is the first instant of the calendar month, quarter or year that
// contains now, in now's location.
func (tf Timeframe) Start(now time.Time) time.Time {
	month := now.Month()
	switch tf {
	case TimeframeYear:
		month = time.January
	case TimeframeQuarter:
		month = (month-1)/3*3 + 1
	}
	return time.Date(now.Year(), month, 1, 0, 0, 0, 0, now.Location())
}

// recentLimit caps SpendingReport.Recent.
const recentLimit = 5

// CategorySpend is the paid total of one category.
type CategorySpend struct {
	Category models.Category
	Amount   decimal.Decimal
	// Percent of the report total, to one decimal place.
	Percent decimal.Decimal
}

// SpentPayment is one settled payment as listed in a report.
type SpentPayment struct {
	PaymentID string
	BillID    string
	Title     string
	Category  models.Category
	Amount    decimal.Decimal
	PaidAt    int64
}

// SpendingReport breaks down what a user has paid by bill category.
type SpendingReport struct {
	Total decimal.Decimal
	// Categories are ordered by amount, largest first.
	Categories []CategorySpend
	// Recent lists the latest payments, newest first.
	Recent []SpentPayment
}

// Spending reports the payments userID has settled since since. Only paid
// payments with userID as payer and a positive amount count; an owner's row
// of an over-allocated bill is negative and is not spending. Payments of
// bills missing from bills are ignored.
func Spending(userID string, since time.Time, bills []*models.BillSummary, payments []*models.Payment) SpendingReport {
	byID := make(map[string]*models.BillSummary, len(bills))
	for _, b := range bills {
		byID[b.ID] = b
	}

	report := SpendingReport{Total: decimal.Zero}
	perCategory := map[models.Category]decimal.Decimal{}
	seen := map[string]bool{}
	from := since.Unix()

	for _, p := range payments {
		if p.ParticipantID != userID || p.Status != models.PaymentPaid || p.PaidAt < from {
			continue
		}
		if !p.Amount.IsPositive() || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		bill, ok := byID[p.BillID]
		if !ok {
			continue
		}
		category := bill.Category
		if category == "" {
			category = models.CategoryOther
		}

		perCategory[category] = perCategory[category].Add(p.Amount)
		report.Total = report.Total.Add(p.Amount)
		report.Recent = append(report.Recent, SpentPayment{
			PaymentID: p.ID,
			BillID:    p.BillID,
			Title:     bill.Title,
			Category:  category,
			Amount:    p.Amount,
			PaidAt:    p.PaidAt,
		})
	}

	for category, amount := range perCategory {
		report.Categories = append(report.Categories, CategorySpend{
			Category: category,
			Amount:   amount,
			Percent:  amount.Mul(hundred).Div(report.Total).Round(1),
		})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})

	sort.Slice(report.Recent, func(i, j int) bool {
		a, b := report.Recent[i], report.Recent[j]
		if a.PaidAt != b.PaidAt {
			return a.PaidAt > b.PaidAt
		}
		return a.PaymentID < b.PaymentID
	})
	if len(report.Recent) > recentLimit {
		report.Recent = report.Recent[:recentLimit]
	}
	return report
}
