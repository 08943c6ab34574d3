package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/ledger"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/pkg/api"
)

// BillService implements the Connect BillService over finalized bills.
type BillService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBillService creates a new BillService with the given storage backend.
func NewBillService(store storage.Store, m *metrics.Metrics) *BillService {
	return &BillService{store: store, metrics: m, now: time.Now}
}

// loadBill fetches a bill the caller takes part in.
func (s *BillService) loadBill(ctx context.Context, userID, billID string) (*models.Bill, error) {
	if billID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bill_id is required"))
	}
	bill, err := s.store.GetBill(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("bill not found: %s", billID))
	}
	if err != nil {
		slog.Error("Failed to get bill", "bill_id", billID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to get bill: %w", err))
	}
	if !slices.Contains(bill.Participants, userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("you are not a participant of this bill"))
	}
	return bill, nil
}

func (s *BillService) view(ctx context.Context, bill *models.Bill) (*api.BillView, error) {
	payments, err := s.store.ListPayments(ctx, bill.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list payments: %w", err))
	}
	return billView(bill, payments), nil
}

// GetBill returns a bill with its payments and how much has been paid back.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.loadBill(ctx, userID, req.Msg.BillID)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, bill)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: v}), nil
}

// ListBills returns the caller's bills, newest first.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBillsForUser(ctx, userID)
	if err != nil {
		slog.Error("Failed to list bills", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list bills: %w", err))
	}

	resp := &api.ListBillsResponse{Bills: make([]api.BillSummaryView, 0, len(bills))}
	for _, b := range bills {
		resp.Bills = append(resp.Bills, summaryView(b))
	}
	return connect.NewResponse(resp), nil
}

// MarkPaymentPaid settles one payment. Only the bill owner and the payer may
// do so; settling a paid payment again changes nothing.
func (s *BillService) MarkPaymentPaid(ctx context.Context, req *connect.Request[api.MarkPaymentPaidRequest]) (*connect.Response[api.MarkPaymentPaidResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.loadBill(ctx, userID, req.Msg.BillID)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListPayments(ctx, bill.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list payments: %w", err))
	}
	idx := slices.IndexFunc(payments, func(p *models.Payment) bool { return p.ID == req.Msg.PaymentID })
	if idx < 0 {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("payment not found: %s", req.Msg.PaymentID))
	}
	payment := payments[idx]
	if userID != bill.OwnerID && userID != payment.ParticipantID {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the bill owner or the payer can settle a payment"))
	}

	if payment.Status == models.PaymentPending {
		if err := s.store.MarkPaymentPaid(ctx, payment.ID, s.now()); err != nil {
			slog.Error("Failed to mark payment paid", "payment_id", payment.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to mark payment paid: %w", err))
		}
		s.metrics.PaymentSettled()
		slog.Info("Payment settled", "bill_id", bill.ID, "payment_id", payment.ID, "by", userID)
	}

	v, err := s.view(ctx, bill)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.MarkPaymentPaidResponse{Bill: v}), nil
}

// GetBalances sums what the caller is owed and owes across all their bills.
func (s *BillService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBillsForUser(ctx, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list bills: %w", err))
	}
	payments, err := s.store.ListPaymentsForUser(ctx, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list payments: %w", err))
	}
	return connect.NewResponse(balancesView(ledger.Balances(userID, bills, payments))), nil
}

// GetSpending breaks down what the caller has paid back in the current
// month, quarter or year by bill category.
func (s *BillService) GetSpending(ctx context.Context, req *connect.Request[api.GetSpendingRequest]) (*connect.Response[api.GetSpendingResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	tf, err := ledger.ParseTimeframe(req.Msg.Timeframe)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	since := tf.Start(s.now())

	bills, err := s.store.ListBillsForUser(ctx, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list bills: %w", err))
	}
	payments, err := s.store.ListPaymentsForUser(ctx, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list payments: %w", err))
	}
	return connect.NewResponse(spendingView(tf, since, ledger.Spending(userID, since, bills, payments))), nil
}
