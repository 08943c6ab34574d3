package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/ledger"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/pkg/api"
)

// draftView renders the engine for the client. A finalized draft shows the
// rounded amounts it was finalized with; an open one shows live amounts.
func draftView(draftID string, e *calculator.Engine) *api.DraftView {
	base, tax, tip := e.Flat()
	v := &api.DraftView{
		DraftID:      draftID,
		OwnerID:      string(e.Owner()),
		Participants: ids(e.Participants()),
		Kind:         string(e.Kind()),
		Mode:         string(e.Mode()),
		Unit:         string(e.Unit()),
		Base:         calculator.Format(base),
		Tax:          calculator.Format(tax),
		Tip:          calculator.Format(tip),
		Total:        calculator.Format(e.FinalTotal()),
		Shares:       []api.ShareView{},
		Finalized:    e.Finalized(),
	}

	if e.Kind() == calculator.CompositionItemized {
		v.TotalAssigned = calculator.Format(e.TotalAssigned())
		for _, item := range e.Items() {
			v.Items = append(v.Items, api.ItemView{
				ID:          item.ID,
				Description: item.Description,
				Amount:      calculator.Format(item.Amount),
				Assignees:   ids(item.Assignees),
			})
		}
	}

	var finalAmounts map[calculator.ParticipantID]decimal.Decimal
	if e.Finalized() {
		res, _ := e.Finalize()
		finalAmounts = res.Amounts
		v.OverAllocated = res.OverAllocated
	} else {
		v.OverAllocated = e.ParticipantShare(e.Owner()).IsNegative()
		if err := e.Ready(); err != nil {
			var incomplete *calculator.IncompleteInputError
			if errors.As(err, &incomplete) {
				v.Incomplete = incomplete.Reason
			} else {
				v.Incomplete = err.Error()
			}
		}
	}

	for _, p := range e.Everyone() {
		share := api.ShareView{ParticipantID: string(p)}
		if value, ok := e.ShareValue(p); ok {
			share.Value = calculator.Format(value)
		}
		if finalAmounts != nil {
			share.Amount = calculator.Format(finalAmounts[p])
		} else {
			share.Amount = calculator.Format(e.ParticipantShare(p))
		}
		v.Shares = append(v.Shares, share)
	}
	return v
}

func billView(bill *models.Bill, payments []*models.Payment) *api.BillView {
	v := &api.BillView{
		ID:           bill.ID,
		Title:        bill.Title,
		Category:     string(bill.Category),
		OwnerID:      bill.OwnerID,
		Kind:         bill.Kind,
		Subtotal:     calculator.Format(bill.Subtotal()),
		Tax:          calculator.Format(bill.Tax),
		Tip:          calculator.Format(bill.Tip),
		Total:        calculator.Format(bill.Total),
		Participants: bill.Participants,
		Payments:     make([]api.PaymentView, 0, len(payments)),
		CreatedAt:    bill.CreatedAt,
	}
	if bill.Kind == models.KindFlat {
		v.Mode = bill.Mode
		v.Unit = bill.Unit
		v.Base = calculator.Format(bill.Base)
	}
	for _, item := range bill.Items {
		v.Items = append(v.Items, api.ItemView{
			ID:          item.ID,
			Description: item.Description,
			Amount:      calculator.Format(item.Amount),
			Assignees:   item.Assignees,
		})
	}
	for _, p := range payments {
		v.Payments = append(v.Payments, api.PaymentView{
			ID:            p.ID,
			BillID:        p.BillID,
			ParticipantID: p.ParticipantID,
			Amount:        calculator.Format(p.Amount),
			Status:        string(p.Status),
			PaidAt:        p.PaidAt,
		})
	}

	progress := ledger.BillProgress(bill.Total, payments)
	v.Progress = &api.ProgressView{
		Paid:        calculator.Format(progress.Paid),
		Outstanding: calculator.Format(progress.Outstanding),
		Percent:     int32(progress.Percent.IntPart()),
	}
	return v
}

func summaryView(s *models.BillSummary) api.BillSummaryView {
	return api.BillSummaryView{
		ID:               s.ID,
		Title:            s.Title,
		Category:         string(s.Category),
		OwnerID:          s.OwnerID,
		Total:            calculator.Format(s.Total),
		ParticipantCount: int32(s.ParticipantCount),
		CreatedAt:        s.CreatedAt,
	}
}

func balancesView(s ledger.Summary) *api.GetBalancesResponse {
	resp := &api.GetBalancesResponse{
		OwedToMe:       calculator.Format(s.OwedToMe),
		IOwe:           calculator.Format(s.IOwe),
		Counterparties: make([]api.CounterpartyView, 0, len(s.Counterparties)),
		Settlements:    make([]api.DebtView, 0, len(s.Settlements)),
	}
	for _, c := range s.Counterparties {
		resp.Counterparties = append(resp.Counterparties, api.CounterpartyView{
			ParticipantID: c.ParticipantID,
			Net:           calculator.Format(c.Net),
		})
	}
	for _, d := range s.Settlements {
		resp.Settlements = append(resp.Settlements, api.DebtView{
			From:   d.From,
			To:     d.To,
			Amount: calculator.Format(d.Amount),
		})
	}
	return resp
}

func spendingView(tf ledger.Timeframe, since time.Time, r ledger.SpendingReport) *api.GetSpendingResponse {
	resp := &api.GetSpendingResponse{
		Timeframe:  string(tf),
		Since:      since.Unix(),
		Total:      calculator.Format(r.Total),
		Categories: make([]api.CategorySpendView, 0, len(r.Categories)),
		Recent:     make([]api.SpentPaymentView, 0, len(r.Recent)),
	}
	for _, c := range r.Categories {
		resp.Categories = append(resp.Categories, api.CategorySpendView{
			Category: string(c.Category),
			Amount:   calculator.Format(c.Amount),
			Percent:  c.Percent.StringFixed(1),
		})
	}
	for _, p := range r.Recent {
		resp.Recent = append(resp.Recent, api.SpentPaymentView{
			PaymentID: p.PaymentID,
			BillID:    p.BillID,
			Title:     p.Title,
			Category:  string(p.Category),
			Amount:    calculator.Format(p.Amount),
			PaidAt:    p.PaidAt,
		})
	}
	return resp
}

func ids(ps []calculator.ParticipantID) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}
