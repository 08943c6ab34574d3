package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBuildPayments(t *testing.T) {
	now := time.Unix(1700000000, 0)
	amounts := map[string]decimal.Decimal{
		"carol": decimal.RequireFromString("20"),
		"owner": decimal.RequireFromString("40"),
		"bob":   decimal.RequireFromString("30"),
	}

	payments := BuildPayments("bill-1", "owner", amounts, now)
	if len(payments) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(payments))
	}

	wantOrder := []string{"owner", "bob", "carol"}
	for i, p := range payments {
		if p.ParticipantID != wantOrder[i] {
			t.Errorf("payment %d participant = %s, want %s", i, p.ParticipantID, wantOrder[i])
		}
		if p.BillID != "bill-1" || p.ID == "" || p.CreatedAt != now.Unix() {
			t.Errorf("payment %d not initialised: %+v", i, p)
		}
		if !p.Amount.Equal(amounts[p.ParticipantID]) {
			t.Errorf("payment %d amount = %v, want %v", i, p.Amount, amounts[p.ParticipantID])
		}
	}

	if payments[0].Status != PaymentPaid || payments[0].PaidAt != now.Unix() {
		t.Errorf("owner payment = %+v, want paid", payments[0])
	}
	for _, p := range payments[1:] {
		if p.Status != PaymentPending || p.PaidAt != 0 {
			t.Errorf("%s payment = %+v, want pending", p.ParticipantID, p)
		}
	}
}

func TestBillSubtotal(t *testing.T) {
	flat := &Bill{Kind: KindFlat, Base: decimal.RequireFromString("50")}
	if !flat.Subtotal().Equal(decimal.RequireFromString("50")) {
		t.Errorf("flat subtotal = %v, want 50", flat.Subtotal())
	}

	itemized := &Bill{Kind: KindItemized, Items: []Item{
		{Amount: decimal.RequireFromString("12.50")},
		{Amount: decimal.RequireFromString("7.25")},
	}}
	if !itemized.Subtotal().Equal(decimal.RequireFromString("19.75")) {
		t.Errorf("itemized subtotal = %v, want 19.75", itemized.Subtotal())
	}
}
