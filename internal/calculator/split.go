package calculator

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PersonSplit is one participant's part of an itemized bill.
type PersonSplit struct {
	Subtotal decimal.Decimal
	Extras   decimal.Decimal // proportional tax and tip
	Total    decimal.Decimal
}

// CalculateItemSplit computes how much each person owes on an itemized bill.
// Every item is divided evenly among its assignees; tax and tip (extras) are
// then spread in proportion to each person's subtotal:
//
//	person_total = person_subtotal × (1 + extras / items_subtotal)
//
// Items without assignees are skipped.
func CalculateItemSplit(items []Item, extras decimal.Decimal) map[ParticipantID]*PersonSplit {
	splits := make(map[ParticipantID]*PersonSplit)
	subtotal := decimal.Zero

	for _, item := range items {
		if len(item.Assignees) == 0 {
			continue
		}
		subtotal = subtotal.Add(item.Amount)

		perPerson := item.Amount.Div(decimal.NewFromInt(int64(len(item.Assignees))))
		for _, p := range item.Assignees {
			split, ok := splits[p]
			if !ok {
				split = &PersonSplit{Subtotal: decimal.Zero}
				splits[p] = split
			}
			split.Subtotal = split.Subtotal.Add(perPerson)
		}
	}

	for _, split := range splits {
		split.Extras = decimal.Zero
		if subtotal.IsPositive() {
			split.Extras = split.Subtotal.Mul(extras).Div(subtotal)
		}
		split.Total = split.Subtotal.Add(split.Extras)
	}
	return splits
}

// ItemBreakdown is CalculateItemSplit over the engine's items, tax and tip.
func (e *Engine) ItemBreakdown() map[ParticipantID]*PersonSplit {
	return CalculateItemSplit(e.Items(), e.tax.Add(e.tip))
}

// AddItem appends a line item assigned to the owner and returns its ID.
// A negative amount is stored as zero.
func (e *Engine) AddItem(description string, amount decimal.Decimal) (string, error) {
	if err := e.guard(); err != nil {
		return "", err
	}
	item := &Item{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      nonNegative(amount),
		Assignees:   []ParticipantID{e.owner},
	}
	e.items = append(e.items, item)
	return item.ID, nil
}

// LoadItems appends several items at once, e.g. the lines of a scanned
// receipt. Assignees that are not participants are dropped and an item left
// with nobody goes to the owner. Items without a description are named
// "Item N" after their position in the bill.
func (e *Engine) LoadItems(inputs []ItemInput) ([]string, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		item := &Item{
			ID:          uuid.NewString(),
			Description: in.Description,
			Amount:      nonNegative(in.Amount),
		}
		if item.Description == "" {
			item.Description = fmt.Sprintf("Item %d", len(e.items)+1)
		}
		for _, p := range in.Assignees {
			if e.isParticipant(p) && !item.assigned(p) {
				item.Assignees = append(item.Assignees, p)
			}
		}
		if len(item.Assignees) == 0 {
			item.Assignees = []ParticipantID{e.owner}
		}
		e.items = append(e.items, item)
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// SetItemAmount parses raw as the item's amount; unparseable or negative
// input counts as zero.
func (e *Engine) SetItemAmount(itemID, raw string) error {
	if err := e.guard(); err != nil {
		return err
	}
	item := e.item(itemID)
	if item == nil {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	item.Amount = nonNegative(ParseAmount(raw))
	return nil
}

// RemoveItem deletes an item from the bill.
func (e *Engine) RemoveItem(itemID string) error {
	if err := e.guard(); err != nil {
		return err
	}
	for i, item := range e.items {
		if item.ID == itemID {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
}

// Assign toggles p on the item. Removing the last assignee fails with
// ErrLastAssignee and leaves the item as it was.
func (e *Engine) Assign(itemID string, p ParticipantID) error {
	if err := e.guard(); err != nil {
		return err
	}
	item := e.item(itemID)
	if item == nil {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if !e.isParticipant(p) {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, p)
	}

	if !item.assigned(p) {
		item.Assignees = append(item.Assignees, p)
		return nil
	}
	if len(item.Assignees) == 1 {
		return ErrLastAssignee
	}
	item.Assignees = without(item.Assignees, p)
	return nil
}

// Items returns copies of the line items in bill order.
func (e *Engine) Items() []Item {
	out := make([]Item, len(e.items))
	for i, item := range e.items {
		out[i] = item.clone()
	}
	return out
}

// ShareForParticipant sums, over the items p is assigned to, the item amount
// divided by its number of assignees. Tax and tip are not included.
func (e *Engine) ShareForParticipant(p ParticipantID) decimal.Decimal {
	share := decimal.Zero
	for _, item := range e.items {
		if item.assigned(p) {
			share = share.Add(item.Amount.Div(decimal.NewFromInt(int64(len(item.Assignees)))))
		}
	}
	return share
}

// TotalAssigned sums the amounts of items that have at least one assignee.
func (e *Engine) TotalAssigned() decimal.Decimal {
	total := decimal.Zero
	for _, item := range e.items {
		if len(item.Assignees) > 0 {
			total = total.Add(item.Amount)
		}
	}
	return total
}

func (e *Engine) itemSubtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range e.items {
		total = total.Add(item.Amount)
	}
	return total
}

// itemizedOwed is p's item share plus its proportional part of tax and tip.
func (e *Engine) itemizedOwed(p ParticipantID) decimal.Decimal {
	share := e.ShareForParticipant(p)
	extras := e.tax.Add(e.tip)
	subtotal := e.TotalAssigned()
	if extras.IsZero() || !subtotal.IsPositive() {
		return share
	}
	return share.Add(share.Mul(extras).Div(subtotal))
}

func (e *Engine) item(id string) *Item {
	for _, item := range e.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// unassignEverywhere removes p from every item, handing items that would be
// left empty to the owner.
func (e *Engine) unassignEverywhere(p ParticipantID) {
	for _, item := range e.items {
		if !item.assigned(p) {
			continue
		}
		item.Assignees = without(item.Assignees, p)
		if len(item.Assignees) == 0 {
			item.Assignees = []ParticipantID{e.owner}
		}
	}
}

func without(ids []ParticipantID, p ParticipantID) []ParticipantID {
	out := make([]ParticipantID, 0, len(ids))
	for _, id := range ids {
		if id != p {
			out = append(out, id)
		}
	}
	return out
}
