package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
)

func paidAt(p *models.Payment, at time.Time) *models.Payment {
	p.PaidAt = at.Unix()
	return p
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("")
	require.NoError(t, err)
	assert.Equal(t, TimeframeMonth, tf)

	tf, err = ParseTimeframe(" Quarter ")
	require.NoError(t, err)
	assert.Equal(t, TimeframeQuarter, tf)

	_, err = ParseTimeframe("decade")
	assert.Error(t, err)
}

func TestTimeframeStart(t *testing.T) {
	now := time.Date(2026, time.August, 17, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		tf   Timeframe
		want time.Time
	}{
		{TimeframeMonth, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{TimeframeQuarter, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{TimeframeYear, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tf.Start(now))
		})
	}

	march := time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.January, TimeframeQuarter.Start(march).Month())
}

func TestSpending(t *testing.T) {
	since := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2026, time.August, d, 12, 0, 0, 0, time.UTC) }

	bills := []*models.BillSummary{
		{ID: "pizza", Title: "Pizza night", OwnerID: "alice", Category: models.CategoryFood},
		{ID: "cab", Title: "Airport cab", OwnerID: "bob", Category: models.CategoryTransport},
		{ID: "brunch", Title: "Brunch", OwnerID: "carol", Category: models.CategoryFood},
		{ID: "misc", Title: "Odds and ends", OwnerID: "alice"},
		{ID: "party", Title: "Party", OwnerID: "alice", Category: models.CategoryEntertainment},
	}
	payments := []*models.Payment{
		paidAt(payment("p1", "pizza", "alice", "20", models.PaymentPaid), day(3)),
		paidAt(payment("p2", "cab", "alice", "30", models.PaymentPaid), day(5)),
		paidAt(payment("p3", "brunch", "alice", "10", models.PaymentPaid), day(9)),
		paidAt(payment("p4", "misc", "alice", "40", models.PaymentPaid), day(2)),
		// not counted: before the window, pending, someone else, negative, unknown bill
		paidAt(payment("p5", "pizza", "alice", "99", models.PaymentPaid), since.Add(-time.Hour)),
		payment("p6", "cab", "alice", "15", models.PaymentPending),
		paidAt(payment("p7", "pizza", "bob", "20", models.PaymentPaid), day(4)),
		paidAt(payment("p8", "party", "alice", "-5", models.PaymentPaid), day(6)),
		paidAt(payment("p9", "gone", "alice", "12", models.PaymentPaid), day(7)),
	}
	// duplicate rows are counted once
	payments = append(payments, payments[0])

	report := Spending("alice", since, bills, payments)

	assert.True(t, report.Total.Equal(dec("100")), "total = %s", report.Total)
	require.Len(t, report.Categories, 3)
	want := []struct {
		category models.Category
		amount   string
		percent  string
	}{
		{models.CategoryOther, "40", "40"},
		{models.CategoryFood, "30", "30"},
		{models.CategoryTransport, "30", "30"},
	}
	for i, w := range want {
		got := report.Categories[i]
		assert.Equal(t, w.category, got.Category, "category %d", i)
		assert.True(t, got.Amount.Equal(dec(w.amount)), "%s amount = %s", got.Category, got.Amount)
		assert.True(t, got.Percent.Equal(dec(w.percent)), "%s percent = %s", got.Category, got.Percent)
	}

	require.Len(t, report.Recent, 4)
	assert.Equal(t, []string{"p3", "p2", "p1", "p4"}, []string{
		report.Recent[0].PaymentID, report.Recent[1].PaymentID, report.Recent[2].PaymentID, report.Recent[3].PaymentID,
	})
	assert.Equal(t, "Brunch", report.Recent[0].Title)
	assert.Equal(t, models.CategoryOther, report.Recent[3].Category)
}

func TestSpending_RecentIsCapped(t *testing.T) {
	since := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	var bills []*models.BillSummary
	var payments []*models.Payment
	for i := 1; i <= 7; i++ {
		id := fmt.Sprintf("b%d", i)
		bills = append(bills, &models.BillSummary{ID: id, Category: models.CategoryShopping})
		payments = append(payments, paidAt(payment(fmt.Sprintf("p%d", i), id, "dana", "3", models.PaymentPaid), since.AddDate(0, 0, i)))
	}

	report := Spending("dana", since, bills, payments)
	assert.True(t, report.Total.Equal(dec("21")))
	require.Len(t, report.Recent, recentLimit)
	assert.Equal(t, "p7", report.Recent[0].PaymentID)
	require.Len(t, report.Categories, 1)
	assert.True(t, report.Categories[0].Percent.Equal(dec("100")))
}

func TestSpending_Empty(t *testing.T) {
	report := Spending("nobody", time.Now(), nil, nil)
	assert.True(t, report.Total.IsZero())
	assert.Empty(t, report.Categories)
	assert.Empty(t, report.Recent)
}
