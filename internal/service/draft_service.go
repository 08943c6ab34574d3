package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/drafts"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/receipt"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/pkg/api"
)

// ReceiptScanner recognises the line items on a receipt image.
type ReceiptScanner interface {
	Scan(ctx context.Context, image []byte) (*receipt.Receipt, error)
}

// DraftService implements the Connect DraftService. Each call loads the
// caller's draft, applies one edit and saves it again.
type DraftService struct {
	drafts  drafts.Store
	store   storage.Store
	scanner ReceiptScanner
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDraftService creates a DraftService. scanner and m may be nil.
func NewDraftService(d drafts.Store, store storage.Store, scanner ReceiptScanner, m *metrics.Metrics) *DraftService {
	return &DraftService{
		drafts:  d,
		store:   store,
		scanner: scanner,
		metrics: m,
		now:     time.Now,
	}
}

func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}

// load restores the draft and checks that the caller owns it.
func (s *DraftService) load(ctx context.Context, draftID string) (*calculator.Engine, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if draftID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("draft_id is required"))
	}

	st, err := s.drafts.Get(ctx, draftID)
	if errors.Is(err, drafts.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		slog.Error("Failed to load draft", "draft_id", draftID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to load draft: %w", err))
	}
	if string(st.Owner) != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the bill owner can edit a draft"))
	}

	e, err := calculator.Restore(st)
	if err != nil {
		slog.Error("Corrupt draft", "draft_id", draftID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return e, nil
}

func (s *DraftService) save(ctx context.Context, draftID string, e *calculator.Engine) error {
	if err := s.drafts.Save(ctx, draftID, e.Snapshot()); err != nil {
		slog.Error("Failed to save draft", "draft_id", draftID, "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("failed to save draft: %w", err))
	}
	return nil
}

// update applies one edit to a draft. Edits of a finalized draft are
// dropped and the draft is returned as it is.
func (s *DraftService) update(ctx context.Context, draftID string, apply func(*calculator.Engine) error) (*api.DraftView, error) {
	e, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := apply(e); err != nil {
		if errors.Is(err, calculator.ErrAlreadyFinalized) {
			slog.Warn("Ignoring edit of finalized draft", "draft_id", draftID)
			return draftView(draftID, e), nil
		}
		return nil, engineError(err)
	}
	if err := s.save(ctx, draftID, e); err != nil {
		return nil, err
	}
	return draftView(draftID, e), nil
}

// engineError maps a failed edit to an RPC error.
func engineError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(connect.CodeInvalidArgument, err)
}

func participantIDs(in []string) []calculator.ParticipantID {
	out := make([]calculator.ParticipantID, len(in))
	for i, id := range in {
		out[i] = calculator.ParticipantID(id)
	}
	return out
}

func draftResponse(v *api.DraftView, err error) (*connect.Response[api.DraftResponse], error) {
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.DraftResponse{Draft: v}), nil
}

// StartDraft opens a new flat, equally split draft owned by the caller.
func (s *DraftService) StartDraft(ctx context.Context, req *connect.Request[api.StartDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	e := calculator.New(calculator.ParticipantID(userID))
	if err := e.SetParticipants(participantIDs(req.Msg.ParticipantIDs)...); err != nil {
		return nil, engineError(err)
	}
	draftID := uuid.New().String()
	if err := s.save(ctx, draftID, e); err != nil {
		return nil, err
	}
	s.metrics.DraftStarted()
	slog.Info("Draft started", "draft_id", draftID, "owner", userID, "participants", e.ParticipantCount())

	return connect.NewResponse(&api.DraftResponse{Draft: draftView(draftID, e)}), nil
}

func (s *DraftService) GetDraft(ctx context.Context, req *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	e, err := s.load(ctx, req.Msg.DraftID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.DraftResponse{Draft: draftView(req.Msg.DraftID, e)}), nil
}

func (s *DraftService) SetParticipants(ctx context.Context, req *connect.Request[api.SetParticipantsRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		return e.SetParticipants(participantIDs(req.Msg.ParticipantIDs)...)
	}))
}

func (s *DraftService) SetMode(ctx context.Context, req *connect.Request[api.SetModeRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		mode, err := calculator.ParseSplitMode(req.Msg.Mode)
		if err != nil {
			return err
		}
		return e.SetMode(mode)
	}))
}

func (s *DraftService) SetUnit(ctx context.Context, req *connect.Request[api.SetUnitRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		unit, err := calculator.ParseSplitUnit(req.Msg.Unit)
		if err != nil {
			return err
		}
		return e.SetUnit(unit)
	}))
}

func (s *DraftService) SetShareValue(ctx context.Context, req *connect.Request[api.SetShareValueRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		return e.SetShareValue(calculator.ParticipantID(req.Msg.ParticipantID), req.Msg.Value)
	}))
}

func (s *DraftService) SetFlat(ctx context.Context, req *connect.Request[api.SetFlatRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		return e.SetFlat(
			calculator.ParseAmount(req.Msg.Base),
			calculator.ParseAmount(req.Msg.Tax),
			calculator.ParseAmount(req.Msg.Tip),
		)
	}))
}

func (s *DraftService) SetItemized(ctx context.Context, req *connect.Request[api.SetItemizedRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		return e.SetItemized(calculator.ParseAmount(req.Msg.Tax), calculator.ParseAmount(req.Msg.Tip))
	}))
}

// AddItem appends an item assigned to the owner. The draft must be itemized.
func (s *DraftService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	var itemID string
	view, err := s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		if e.Kind() != calculator.CompositionItemized {
			return errors.New("items can only be added to an itemized bill")
		}
		id, err := e.AddItem(req.Msg.Description, calculator.ParseAmount(req.Msg.Amount))
		itemID = id
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddItemResponse{ItemID: itemID, Draft: view}), nil
}

func (s *DraftService) SetItemAmount(ctx context.Context, req *connect.Request[api.SetItemAmountRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		return e.SetItemAmount(req.Msg.ItemID, req.Msg.Amount)
	}))
}

func (s *DraftService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		return e.RemoveItem(req.Msg.ItemID)
	}))
}

func (s *DraftService) ToggleAssignment(ctx context.Context, req *connect.Request[api.ToggleAssignmentRequest]) (*connect.Response[api.DraftResponse], error) {
	return draftResponse(s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		return e.Assign(req.Msg.ItemID, calculator.ParticipantID(req.Msg.ParticipantID))
	}))
}

// ScanReceipt reads a receipt image and appends its lines to the draft as
// items assigned to the owner. A flat draft becomes itemized, taking tax and
// tip from the receipt.
func (s *DraftService) ScanReceipt(ctx context.Context, req *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error) {
	var scanned *receipt.Receipt
	view, err := s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		if e.Finalized() {
			return calculator.ErrAlreadyFinalized
		}
		rec, err := s.scan(ctx, req.Msg.Image)
		if err != nil {
			return err
		}
		scanned = rec

		if e.Kind() != calculator.CompositionItemized {
			if err := e.SetItemized(rec.Tax, rec.Tip); err != nil {
				return err
			}
		}
		_, err = e.LoadItems(rec.Items)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &api.ScanReceiptResponse{Draft: view}
	if scanned != nil {
		resp.ItemCount = len(scanned.Items)
		if scanned.Total.IsPositive() {
			resp.ReceiptTotal = calculator.Format(scanned.Total)
		}
		slog.Info("Receipt scanned", "draft_id", req.Msg.DraftID, "items", resp.ItemCount)
	}
	return connect.NewResponse(resp), nil
}

func (s *DraftService) scan(ctx context.Context, image []byte) (*receipt.Receipt, error) {
	if len(image) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("image is required"))
	}
	if s.scanner == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, receipt.ErrNotConfigured)
	}

	rec, err := s.scanner.Scan(ctx, image)
	switch {
	case err == nil:
		s.metrics.ReceiptScanned("ok")
		return rec, nil
	case errors.Is(err, receipt.ErrUnsupportedMedia):
		s.metrics.ReceiptScanned("unsupported")
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, receipt.ErrNotConfigured):
		return nil, connect.NewError(connect.CodeUnimplemented, err)
	default:
		s.metrics.ReceiptScanned("error")
		slog.Error("Receipt scan failed", "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
}

// ImportItems appends items stored by older clients. Assignees that are not
// on the draft are dropped; items left without anyone go to the owner. A flat
// draft becomes itemized.
func (s *DraftService) ImportItems(ctx context.Context, req *connect.Request[api.ImportItemsRequest]) (*connect.Response[api.ImportItemsResponse], error) {
	items, err := calculator.DecodeLegacyItems(req.Msg.Items)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	view, err := s.update(ctx, req.Msg.DraftID, func(e *calculator.Engine) error {
		if e.Kind() != calculator.CompositionItemized {
			if err := e.SetItemized(decimal.Zero, decimal.Zero); err != nil {
				return err
			}
		}
		_, err := e.LoadItems(items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ImportItemsResponse{Draft: view, ItemCount: len(items)}), nil
}

// FinalizeDraft locks the split and records the bill with one payment per
// participant. The finalized draft is saved before the bill is written, so a
// failed write can be retried and yields the same amounts. The bill takes the
// draft's ID, which makes a retry after a successful write a no-op.
func (s *DraftService) FinalizeDraft(ctx context.Context, req *connect.Request[api.FinalizeDraftRequest]) (*connect.Response[api.FinalizeDraftResponse], error) {
	draftID := req.Msg.DraftID
	category, err := models.ParseCategory(req.Msg.Category)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	e, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	res, err := e.Finalize()
	if err != nil {
		s.metrics.FinalizeFailed("incomplete")
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.save(ctx, draftID, e); err != nil {
		s.metrics.FinalizeFailed("draft")
		return nil, err
	}

	bill, err := s.store.GetBill(ctx, draftID)
	switch {
	case err == nil:
		slog.Info("Bill already recorded", "bill_id", draftID)
	case errors.Is(err, storage.ErrNotFound):
		bill = newBill(draftID, req.Msg.Title, category, e, res)
		amounts := make(map[string]decimal.Decimal, len(res.Amounts))
		for p, amount := range res.Amounts {
			amounts[string(p)] = amount
		}
		payments := models.BuildPayments(bill.ID, bill.OwnerID, amounts, s.now())
		if err := s.store.CreateBill(ctx, bill, payments); err != nil {
			s.metrics.FinalizeFailed("store")
			slog.Error("Failed to save bill", "bill_id", draftID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to save bill: %w", err))
		}
		s.metrics.BillFinalized(bill.Kind, bill.Mode, res.OverAllocated)
		if res.OverAllocated {
			slog.Warn("Custom shares exceed the bill total", "bill_id", bill.ID, "owner_amount", res.Amounts[res.Owner])
		}
		slog.Info("Bill finalized", "bill_id", bill.ID, "total", res.Total, "participants", len(bill.Participants))
	default:
		s.metrics.FinalizeFailed("store")
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to check bill: %w", err))
	}

	if err := s.drafts.Delete(ctx, draftID); err != nil {
		slog.Warn("Failed to delete finalized draft", "draft_id", draftID, "error", err)
	}

	payments, err := s.store.ListPayments(ctx, bill.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list payments: %w", err))
	}
	return connect.NewResponse(&api.FinalizeDraftResponse{Bill: billView(bill, payments)}), nil
}

func newBill(id, title string, category models.Category, e *calculator.Engine, res calculator.Result) *models.Bill {
	base, tax, tip := e.Flat()
	bill := &models.Bill{
		ID:           id,
		Title:        title,
		Category:     category,
		OwnerID:      string(e.Owner()),
		Kind:         models.KindFlat,
		Base:         base,
		Tax:          tax,
		Tip:          tip,
		Total:        res.Total,
		Mode:         string(e.Mode()),
		Unit:         string(e.Unit()),
		Participants: ids(e.Everyone()),
	}
	if e.Kind() == calculator.CompositionItemized {
		bill.Kind = models.KindItemized
		for _, item := range e.Items() {
			bill.Items = append(bill.Items, models.Item{
				ID:          item.ID,
				Description: item.Description,
				Amount:      item.Amount,
				Assignees:   ids(item.Assignees),
			})
		}
	}
	return bill
}
