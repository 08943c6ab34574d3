package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Bill kinds.
const (
	KindFlat     = "flat"
	KindItemized = "itemized"
)

// Category groups bills for spending insights.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryUtilities     Category = "utilities"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryTravel        Category = "travel"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood, CategoryTransport, CategoryEntertainment, CategoryShopping,
	CategoryUtilities, CategoryHealth, CategoryEducation, CategoryTravel, CategoryOther,
}

// ParseCategory accepts a category name in any case. Empty input is
// CategoryOther.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Bill is a finalized bill. It stores the inputs the split was computed
// from; the per-participant amounts live on the bill's payments.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Title is the human-readable name for the bill.
	// Auto-generated from the participants when left empty.
	Title string

	// OwnerID is the participant who created the bill and paid for it.
	OwnerID string

	// Category defaults to CategoryOther.
	Category Category

	// Kind is KindFlat or KindItemized.
	Kind string

	// Base is the pre-tax amount of a flat bill. Zero for itemized bills.
	Base decimal.Decimal
	Tax  decimal.Decimal
	Tip  decimal.Decimal

	// Total is the final amount rounded to cents.
	Total decimal.Decimal

	// Mode and Unit record how a flat bill was split ("equal"/"custom",
	// "percentage"/"amount").
	Mode string
	Unit string

	// Participants lists everyone on the bill, owner first.
	Participants []string

	// Items are the line items of an itemized bill.
	Items []Item

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// Subtotal is the sum of the item amounts, or the base of a flat bill.
func (b *Bill) Subtotal() decimal.Decimal {
	if b.Kind != KindItemized {
		return b.Base
	}
	sum := decimal.Zero
	for _, item := range b.Items {
		sum = sum.Add(item.Amount)
	}
	return sum
}

// Item represents a single line item on a bill.
// An item is split equally among its assignees.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Description is the name of the item (e.g., "Pizza", "Beer").
	Description string

	// Amount is the pre-tax price of this item.
	Amount decimal.Decimal

	// Assignees are the participants sharing this item.
	Assignees []string
}

// BillSummary is a bill as listed for one user.
type BillSummary struct {
	ID               string
	Title            string
	OwnerID          string
	Category         Category
	Total            decimal.Decimal
	ParticipantCount int
	CreatedAt        int64
}
