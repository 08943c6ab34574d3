// Package calculator implements the bill split engine.
//
// An Engine holds everything needed to work out who owes what for one bill
// while it is being edited: the owner, the other participants, how the bill
// is composed (a flat total with tax and tip, or itemized line items), and
// the split mode and unit chosen for flat bills. Amounts are computed on
// demand from that state, so they stay consistent whenever a single input
// changes.
//
// All arithmetic uses decimal.Decimal at full precision. Values are rounded
// to cents only by Round/Format and by Finalize.
package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParticipantID identifies a person in a split. IDs are opaque and owned by
// the user directory; the engine only compares them.
type ParticipantID string

// SplitMode selects how a flat bill is divided.
type SplitMode string

const (
	// ModeEqual divides the total evenly among everyone, owner included.
	ModeEqual SplitMode = "equal"
	// ModeCustom gives every non-owner an explicit share; the owner pays the rest.
	ModeCustom SplitMode = "custom"
)

// ParseSplitMode converts a wire value to a SplitMode.
func ParseSplitMode(s string) (SplitMode, error) {
	switch SplitMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEqual:
		return ModeEqual, nil
	case ModeCustom:
		return ModeCustom, nil
	default:
		return "", fmt.Errorf("unknown split mode: %q", s)
	}
}

// SplitUnit is the unit custom share values are entered in.
type SplitUnit string

const (
	UnitPercentage SplitUnit = "percentage"
	UnitAmount     SplitUnit = "amount"
)

// ParseSplitUnit converts a wire value to a SplitUnit.
func ParseSplitUnit(s string) (SplitUnit, error) {
	switch SplitUnit(strings.ToLower(strings.TrimSpace(s))) {
	case UnitPercentage:
		return UnitPercentage, nil
	case UnitAmount:
		return UnitAmount, nil
	default:
		return "", fmt.Errorf("unknown split unit: %q", s)
	}
}

// CompositionKind tells which form of bill composition is active.
type CompositionKind string

const (
	// CompositionFlat is a single base amount plus tax and tip.
	CompositionFlat CompositionKind = "flat"
	// CompositionItemized is a list of line items, each split among its assignees.
	CompositionItemized CompositionKind = "itemized"
)

// Share is one non-owner participant's custom share of a flat bill.
// Value is in the engine's current unit.
type Share struct {
	Participant ParticipantID
	Value       decimal.Decimal
}

// Item is a line item of an itemized bill.
type Item struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	// Assignees split the item evenly. Never empty for an item that counts
	// towards the bill.
	Assignees []ParticipantID `json:"assignees"`
}

func (it *Item) assigned(p ParticipantID) bool {
	for _, a := range it.Assignees {
		if a == p {
			return true
		}
	}
	return false
}

func (it *Item) clone() Item {
	c := *it
	c.Assignees = append([]ParticipantID(nil), it.Assignees...)
	return c
}

// ItemInput describes an item to load into an itemized bill, typically a
// line from a scanned receipt. Empty Assignees means "assign to the owner".
type ItemInput struct {
	Description string
	Amount      decimal.Decimal
	Assignees   []ParticipantID
}

// Result is the outcome of Finalize: one amount per participant, owner
// included, rounded to cents and summing exactly to the rounded total.
type Result struct {
	Owner   ParticipantID                     `json:"owner"`
	Total   decimal.Decimal                   `json:"total"`
	Amounts map[ParticipantID]decimal.Decimal `json:"amounts"`
	// OverAllocated is set when custom shares exceed the total and the owner's
	// residual went negative.
	OverAllocated bool `json:"over_allocated"`
}

func (r Result) clone() Result {
	amounts := make(map[ParticipantID]decimal.Decimal, len(r.Amounts))
	for k, v := range r.Amounts {
		amounts[k] = v
	}
	r.Amounts = amounts
	return r
}
