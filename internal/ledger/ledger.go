// Package ledger derives payment progress and who-owes-whom balances from
// finalized bills and their payments.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Progress is how far a bill has been paid off.
type Progress struct {
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
	// Percent is Paid/total in whole percent, capped at 100.
	Percent decimal.Decimal
}

// BillProgress sums the paid and pending payments of one bill.
func BillProgress(total decimal.Decimal, payments []*models.Payment) Progress {
	p := Progress{Paid: decimal.Zero, Outstanding: decimal.Zero, Percent: decimal.Zero}
	for _, pay := range payments {
		if pay.Status == models.PaymentPaid {
			p.Paid = p.Paid.Add(pay.Amount)
		} else {
			p.Outstanding = p.Outstanding.Add(pay.Amount)
		}
	}
	if total.IsPositive() {
		p.Percent = p.Paid.Mul(hundred).Div(total).Round(0)
		if p.Percent.GreaterThan(hundred) {
			p.Percent = hundred
		}
	}
	return p
}

// Counterparty is the net balance between the user and one other person.
// Positive Net means they owe the user.
type Counterparty struct {
	ParticipantID string
	Net           decimal.Decimal
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// Summary is a user's position across their bills.
type Summary struct {
	// OwedToMe is the pending amount others owe on bills the user owns.
	OwedToMe decimal.Decimal
	// IOwe is the user's pending amount on bills others own.
	IOwe           decimal.Decimal
	Counterparties []Counterparty
	// Settlements is a simplified set of transfers that clears every
	// pending payment in the input.
	Settlements []DebtEdge
}

// Balances computes userID's summary. Only pending payments count; each one
// is a debt from the participant to the owner of its bill. Payments of bills
// missing from bills are ignored.
func Balances(userID string, bills []*models.BillSummary, payments []*models.Payment) Summary {
	owners := make(map[string]string, len(bills))
	for _, b := range bills {
		owners[b.ID] = b.OwnerID
	}

	s := Summary{OwedToMe: decimal.Zero, IOwe: decimal.Zero}
	perPerson := map[string]decimal.Decimal{}
	net := map[string]decimal.Decimal{}
	seen := map[string]bool{}

	for _, p := range payments {
		if p.Status != models.PaymentPending || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		owner, ok := owners[p.BillID]
		if !ok || owner == p.ParticipantID {
			continue
		}

		net[owner] = net[owner].Add(p.Amount)
		net[p.ParticipantID] = net[p.ParticipantID].Sub(p.Amount)

		switch userID {
		case owner:
			s.OwedToMe = s.OwedToMe.Add(p.Amount)
			perPerson[p.ParticipantID] = perPerson[p.ParticipantID].Add(p.Amount)
		case p.ParticipantID:
			s.IOwe = s.IOwe.Add(p.Amount)
			perPerson[owner] = perPerson[owner].Sub(p.Amount)
		}
	}

	for id, amount := range perPerson {
		if !amount.IsZero() {
			s.Counterparties = append(s.Counterparties, Counterparty{ParticipantID: id, Net: amount})
		}
	}
	sort.Slice(s.Counterparties, func(i, j int) bool {
		return s.Counterparties[i].ParticipantID < s.Counterparties[j].ParticipantID
	})

	s.Settlements = simplify(net)
	return s
}

type balance struct {
	id     string
	amount decimal.Decimal
}

// simplify matches debtors with creditors greedily, largest first, so that
// at most n-1 transfers settle n people.
func simplify(net map[string]decimal.Decimal) []DebtEdge {
	var debtors, creditors []balance
	for id, amount := range net {
		switch {
		case amount.IsNegative():
			debtors = append(debtors, balance{id: id, amount: amount.Neg()})
		case amount.IsPositive():
			creditors = append(creditors, balance{id: id, amount: amount})
		}
	}
	byAmount := func(list []balance) func(i, j int) bool {
		return func(i, j int) bool {
			if c := list[i].amount.Cmp(list[j].amount); c != 0 {
				return c > 0
			}
			return list[i].id < list[j].id
		}
	}
	sort.Slice(debtors, byAmount(debtors))
	sort.Slice(creditors, byAmount(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := decimal.Min(d.amount, c.amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{From: d.id, To: c.id, Amount: amount})
		}

		d.amount = d.amount.Sub(amount)
		c.amount = c.amount.Sub(amount)
		if !d.amount.IsPositive() {
			i++
		}
		if !c.amount.IsPositive() {
			j++
		}
	}
	return edges
}
