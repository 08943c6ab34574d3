package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Finalize locks the bill and returns what everyone owes, rounded to cents.
//
// Non-owner amounts are rounded individually and the owner takes the
// rounded total minus their sum, so the amounts always add up to the
// rounded total. Calling Finalize again returns the same result.
func (e *Engine) Finalize() (Result, error) {
	if e.finalized {
		return e.result.clone(), nil
	}
	if err := e.validate(); err != nil {
		return Result{}, err
	}

	total := Round(e.FinalTotal())
	amounts := make(map[ParticipantID]decimal.Decimal, e.ParticipantCount())
	others := decimal.Zero
	for _, p := range e.participants {
		owed := Round(e.ParticipantShare(p))
		amounts[p] = owed
		others = others.Add(owed)
	}
	ownerOwed := total.Sub(others)
	amounts[e.owner] = ownerOwed

	e.result = Result{
		Owner:         e.owner,
		Total:         total,
		Amounts:       amounts,
		OverAllocated: ownerOwed.IsNegative(),
	}
	e.finalized = true
	return e.result.clone(), nil
}

// Ready returns the error Finalize would fail with, or nil.
func (e *Engine) Ready() error {
	if e.finalized {
		return nil
	}
	return e.validate()
}

func (e *Engine) validate() error {
	if !e.FinalTotal().IsPositive() {
		return incomplete("bill total must be greater than zero")
	}

	if e.kind == CompositionItemized {
		if len(e.items) == 0 {
			return incomplete("itemized bill has no items")
		}
		for _, item := range e.items {
			if len(item.Assignees) == 0 {
				return incomplete(fmt.Sprintf("item %q has no assignee", item.Description))
			}
		}
		if !e.TotalAssigned().Equal(e.itemSubtotal()) {
			return incomplete("assigned items do not add up to the bill")
		}
		return nil
	}

	if e.mode == ModeCustom {
		for _, p := range e.participants {
			if _, ok := e.shares[p]; !ok {
				return incomplete(fmt.Sprintf("no share entered for %s", p))
			}
		}
	}
	return nil
}
