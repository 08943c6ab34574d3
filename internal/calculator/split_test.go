package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// near reports whether got is within a cent of want.
func near(got, want decimal.Decimal) bool {
	return got.Sub(want).Abs().LessThanOrEqual(dec("0.01"))
}

func TestCalculateItemSplit(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		extras       decimal.Decimal
		validateFunc func(t *testing.T, splits map[ParticipantID]*PersonSplit)
	}{
		{
			name: "simple two-person split with tax",
			items: []Item{
				{Description: "Pizza", Amount: dec("20"), Assignees: []ParticipantID{"Alice", "Bob"}},
				{Description: "Salad", Amount: dec("10"), Assignees: []ParticipantID{"Alice"}},
			},
			extras: dec("3"),
			validateFunc: func(t *testing.T, splits map[ParticipantID]*PersonSplit) {
				// Alice: subtotal = 10 + 10 = 20, tax = 20 * (3/30) = 2, total = 22
				// Bob: subtotal = 10, tax = 10 * (3/30) = 1, total = 11
				alice := splits["Alice"]
				if !near(alice.Subtotal, dec("20")) {
					t.Errorf("Alice subtotal = %v, want 20", alice.Subtotal)
				}
				if !near(alice.Extras, dec("2")) {
					t.Errorf("Alice tax = %v, want 2", alice.Extras)
				}
				if !near(alice.Total, dec("22")) {
					t.Errorf("Alice total = %v, want 22", alice.Total)
				}
				bob := splits["Bob"]
				if !near(bob.Total, dec("11")) {
					t.Errorf("Bob total = %v, want 11", bob.Total)
				}
			},
		},
		{
			name: "unassigned item is skipped",
			items: []Item{
				{Description: "Beer", Amount: dec("8")},
				{Description: "Fries", Amount: dec("6"), Assignees: []ParticipantID{"Alice", "Bob", "Carol"}},
			},
			extras: decimal.Zero,
			validateFunc: func(t *testing.T, splits map[ParticipantID]*PersonSplit) {
				if len(splits) != 3 {
					t.Fatalf("expected 3 splits, got %d", len(splits))
				}
				for _, p := range []ParticipantID{"Alice", "Bob", "Carol"} {
					if !splits[p].Total.Equal(dec("2")) {
						t.Errorf("%s total = %v, want 2", p, splits[p].Total)
					}
				}
			},
		},
		{
			name:   "no items",
			items:  nil,
			extras: dec("5"),
			validateFunc: func(t *testing.T, splits map[ParticipantID]*PersonSplit) {
				if len(splits) != 0 {
					t.Errorf("expected no splits, got %d", len(splits))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, CalculateItemSplit(tt.items, tt.extras))
		})
	}
}

func TestShareForParticipant(t *testing.T) {
	e := New("owner")
	e.SetParticipants("friendA")
	e.SetItemized(decimal.Zero, decimal.Zero)

	item1, _ := e.AddItem("item1", dec("60"))
	item2, _ := e.AddItem("item2", dec("40"))

	if err := e.Assign(item1, "friendA"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	// item2 belongs to friendA alone
	if err := e.Assign(item2, "friendA"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if err := e.Assign(item2, "owner"); err != nil {
		t.Fatalf("Unassign owner failed: %v", err)
	}

	if got := e.ShareForParticipant("owner"); !got.Equal(dec("30")) {
		t.Errorf("owner share = %v, want 30", got)
	}
	if got := e.ShareForParticipant("friendA"); !got.Equal(dec("70")) {
		t.Errorf("friendA share = %v, want 70", got)
	}
	if got := e.TotalAssigned(); !got.Equal(dec("100")) {
		t.Errorf("TotalAssigned = %v, want 100", got)
	}
	if got := e.FinalTotal(); !got.Equal(dec("100")) {
		t.Errorf("FinalTotal = %v, want 100", got)
	}
}

func TestAssign(t *testing.T) {
	t.Run("removing the sole assignee is rejected", func(t *testing.T) {
		e := New("owner")
		e.SetItemized(decimal.Zero, decimal.Zero)
		id, _ := e.AddItem("Steak", dec("30"))

		err := e.Assign(id, "owner")
		if !errors.Is(err, ErrLastAssignee) {
			t.Fatalf("expected ErrLastAssignee, got %v", err)
		}
		items := e.Items()
		if len(items[0].Assignees) != 1 || items[0].Assignees[0] != "owner" {
			t.Errorf("assignees changed: %v", items[0].Assignees)
		}
	})

	t.Run("toggle adds then removes", func(t *testing.T) {
		e := New("owner")
		e.SetParticipants("bob")
		e.SetItemized(decimal.Zero, decimal.Zero)
		id, _ := e.AddItem("Wine", dec("24"))

		if err := e.Assign(id, "bob"); err != nil {
			t.Fatalf("Assign failed: %v", err)
		}
		if got := len(e.Items()[0].Assignees); got != 2 {
			t.Fatalf("expected 2 assignees, got %d", got)
		}
		if err := e.Assign(id, "bob"); err != nil {
			t.Fatalf("Unassign failed: %v", err)
		}
		if got := len(e.Items()[0].Assignees); got != 1 {
			t.Errorf("expected 1 assignee, got %d", got)
		}
	})

	t.Run("unknown references", func(t *testing.T) {
		e := New("owner")
		e.SetItemized(decimal.Zero, decimal.Zero)
		id, _ := e.AddItem("Tea", dec("3"))

		if err := e.Assign("missing", "owner"); !errors.Is(err, ErrUnknownItem) {
			t.Errorf("expected ErrUnknownItem, got %v", err)
		}
		if err := e.Assign(id, "stranger"); !errors.Is(err, ErrUnknownParticipant) {
			t.Errorf("expected ErrUnknownParticipant, got %v", err)
		}
	})
}

func TestItemizedWithTaxAndTip(t *testing.T) {
	e := New("alice")
	e.SetParticipants("bob")
	e.SetItemized(dec("2"), dec("1"))

	pizza, _ := e.AddItem("Pizza", dec("20"))
	e.AddItem("Salad", dec("10"))
	e.Assign(pizza, "bob")

	if got := e.FinalTotal(); !got.Equal(dec("33")) {
		t.Fatalf("FinalTotal = %v, want 33", got)
	}
	if got := e.ParticipantShare("alice"); !near(got, dec("22")) {
		t.Errorf("alice owes %v, want 22", got)
	}
	if got := e.ParticipantShare("bob"); !near(got, dec("11")) {
		t.Errorf("bob owes %v, want 11", got)
	}

	res, err := e.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !res.Amounts["alice"].Equal(dec("22")) || !res.Amounts["bob"].Equal(dec("11")) {
		t.Errorf("unexpected amounts: %v", res.Amounts)
	}
}

func TestRemovingParticipantHandsItemsToOwner(t *testing.T) {
	e := New("owner")
	e.SetParticipants("bob", "carol")
	e.SetItemized(decimal.Zero, decimal.Zero)

	shared, _ := e.AddItem("Nachos", dec("12"))
	solo, _ := e.AddItem("Cocktail", dec("9"))
	e.Assign(shared, "bob")
	e.Assign(solo, "carol")
	e.Assign(solo, "owner")

	e.SetParticipants("bob")

	for _, item := range e.Items() {
		for _, a := range item.Assignees {
			if a == "carol" {
				t.Errorf("carol still assigned to %s", item.Description)
			}
		}
		if item.ID == solo && (len(item.Assignees) != 1 || item.Assignees[0] != "owner") {
			t.Errorf("orphaned item should go to owner, got %v", item.Assignees)
		}
	}
}

func TestLoadItems(t *testing.T) {
	e := New("owner")
	e.SetParticipants("bob")
	e.SetItemized(decimal.Zero, decimal.Zero)

	ids, err := e.LoadItems([]ItemInput{
		{Description: "Coffee", Amount: dec("4.50")},
		{Amount: dec("-3")},
		{Description: "Cake", Amount: dec("6"), Assignees: []ParticipantID{"bob", "ghost", "bob"}},
	})
	if err != nil {
		t.Fatalf("LoadItems failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}

	items := e.Items()
	if items[0].Assignees[0] != "owner" {
		t.Errorf("default assignee = %v, want owner", items[0].Assignees)
	}
	if items[1].Description != "Item 2" || !items[1].Amount.IsZero() {
		t.Errorf("unnamed item = %+v", items[1])
	}
	if len(items[2].Assignees) != 1 || items[2].Assignees[0] != "bob" {
		t.Errorf("cake assignees = %v, want [bob]", items[2].Assignees)
	}
}

func TestSetItemAmountAndRemoveItem(t *testing.T) {
	e := New("owner")
	e.SetItemized(decimal.Zero, decimal.Zero)
	id, _ := e.AddItem("Soup", dec("5"))

	if err := e.SetItemAmount(id, "7.25"); err != nil {
		t.Fatalf("SetItemAmount failed: %v", err)
	}
	if got := e.FinalTotal(); !got.Equal(dec("7.25")) {
		t.Errorf("FinalTotal = %v, want 7.25", got)
	}
	if err := e.SetItemAmount(id, "abc"); err != nil {
		t.Fatalf("SetItemAmount failed: %v", err)
	}
	if got := e.FinalTotal(); !got.IsZero() {
		t.Errorf("non-numeric amount should be zero, got %v", got)
	}

	if err := e.RemoveItem(id); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if err := e.RemoveItem(id); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
}
