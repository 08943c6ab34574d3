package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/drafts"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/receipt"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/pkg/api"
)

func TestStartDraft_EqualSplit(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	draft := env.startDraft(t, "Alice", "Bob", "Carol", "Alice")
	if len(draft.Participants) != 2 {
		t.Errorf("expected the owner to be left out of participants, got %v", draft.Participants)
	}
	if draft.Incomplete == "" {
		t.Error("expected an empty draft to be incomplete")
	}

	resp, err := env.drafts.SetFlat(ctx, as("Alice", &api.SetFlatRequest{DraftID: draft.DraftID, Base: "100"}))
	if err != nil {
		t.Fatalf("SetFlat failed: %v", err)
	}
	got := resp.Msg.Draft
	if got.Total != "100.00" {
		t.Errorf("expected total 100.00, got %s", got.Total)
	}
	if got.Incomplete != "" {
		t.Errorf("expected draft to be complete, got %q", got.Incomplete)
	}
	if got.Shares[0].ParticipantID != "Alice" {
		t.Errorf("expected owner first, got %s", got.Shares[0].ParticipantID)
	}
	for name, amount := range shareAmounts(got) {
		if amount != "33.33" {
			t.Errorf("expected %s to owe 33.33, got %s", name, amount)
		}
	}
}

func TestGetDraft_NotFound(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.drafts.GetDraft(context.Background(), as("Alice", &api.GetDraftRequest{DraftID: "nonexistent-id"}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestDraft_OwnerOnly(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	draft := env.startDraft(t, "Alice", "Bob")

	_, err := env.drafts.GetDraft(ctx, as("Bob", &api.GetDraftRequest{DraftID: draft.DraftID}))
	expectCode(t, err, connect.CodePermissionDenied)

	_, err = env.drafts.SetFlat(ctx, as("Bob", &api.SetFlatRequest{DraftID: draft.DraftID, Base: "1"}))
	expectCode(t, err, connect.CodePermissionDenied)
}

func TestCustomSplit_FinalizeRecordsPayments(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	draft := env.startDraft(t, "Alice", "Bob")
	id := draft.DraftID

	if _, err := env.drafts.SetFlat(ctx, as("Alice", &api.SetFlatRequest{DraftID: id, Base: "90", Tax: "6", Tip: "4"})); err != nil {
		t.Fatalf("SetFlat failed: %v", err)
	}
	resp, err := env.drafts.SetMode(ctx, as("Alice", &api.SetModeRequest{DraftID: id, Mode: "custom"}))
	if err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	if resp.Msg.Draft.Unit != "percentage" {
		t.Errorf("expected custom mode to start in percentage, got %s", resp.Msg.Draft.Unit)
	}
	if resp.Msg.Draft.Shares[1].Value != "50.00" {
		t.Errorf("expected Bob to start at 50.00%%, got %s", resp.Msg.Draft.Shares[1].Value)
	}

	resp, err = env.drafts.SetShareValue(ctx, as("Alice", &api.SetShareValueRequest{DraftID: id, ParticipantID: "Bob", Value: "25"}))
	if err != nil {
		t.Fatalf("SetShareValue failed: %v", err)
	}
	amounts := shareAmounts(resp.Msg.Draft)
	if amounts["Alice"] != "75.00" || amounts["Bob"] != "25.00" {
		t.Errorf("unexpected shares: %v", amounts)
	}

	final, err := env.drafts.FinalizeDraft(ctx, as("Alice", &api.FinalizeDraftRequest{DraftID: id, Title: "Dinner"}))
	if err != nil {
		t.Fatalf("FinalizeDraft failed: %v", err)
	}
	bill := final.Msg.Bill
	if bill.ID != id {
		t.Errorf("expected bill to keep the draft ID %s, got %s", id, bill.ID)
	}
	if bill.Title != "Dinner" || bill.Total != "100.00" || bill.Mode != "custom" {
		t.Errorf("unexpected bill: %+v", bill)
	}

	owner := paymentFor(t, bill, "Alice")
	if owner.Status != string(models.PaymentPaid) || owner.Amount != "75.00" {
		t.Errorf("unexpected owner payment: %+v", owner)
	}
	bob := paymentFor(t, bill, "Bob")
	if bob.Status != string(models.PaymentPending) || bob.Amount != "25.00" {
		t.Errorf("unexpected Bob payment: %+v", bob)
	}
	if bill.Progress.Percent != 75 || bill.Progress.Outstanding != "25.00" {
		t.Errorf("unexpected progress: %+v", bill.Progress)
	}

	_, err = env.drafts.GetDraft(ctx, as("Alice", &api.GetDraftRequest{DraftID: id}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestFinalizeDraft_Incomplete(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	draft := env.startDraft(t, "Alice", "Bob")

	_, err := env.drafts.FinalizeDraft(ctx, as("Alice", &api.FinalizeDraftRequest{DraftID: draft.DraftID}))
	expectCode(t, err, connect.CodeInvalidArgument)

	resp, err := env.drafts.GetDraft(ctx, as("Alice", &api.GetDraftRequest{DraftID: draft.DraftID}))
	if err != nil {
		t.Fatalf("expected draft to survive a failed finalize: %v", err)
	}
	if resp.Msg.Draft.Finalized {
		t.Error("expected draft to stay open")
	}
}

func TestItemizedDraft(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	draft := env.startDraft(t, "Alice", "Bob")
	id := draft.DraftID

	_, err := env.drafts.AddItem(ctx, as("Alice", &api.AddItemRequest{DraftID: id, Description: "Pizza", Amount: "20"}))
	expectCode(t, err, connect.CodeInvalidArgument)

	if _, err := env.drafts.SetItemized(ctx, as("Alice", &api.SetItemizedRequest{DraftID: id, Tax: "3"})); err != nil {
		t.Fatalf("SetItemized failed: %v", err)
	}
	pizza, err := env.drafts.AddItem(ctx, as("Alice", &api.AddItemRequest{DraftID: id, Description: "Pizza", Amount: "20"}))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if got := pizza.Msg.Draft.Items[0].Assignees; len(got) != 1 || got[0] != "Alice" {
		t.Errorf("expected new item to be assigned to the owner, got %v", got)
	}
	salad, err := env.drafts.AddItem(ctx, as("Alice", &api.AddItemRequest{DraftID: id, Description: "Salad", Amount: "10"}))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	saladID := salad.Msg.ItemID

	// Hand the salad over to Bob.
	for _, p := range []string{"Bob", "Alice"} {
		if _, err := env.drafts.ToggleAssignment(ctx, as("Alice", &api.ToggleAssignmentRequest{DraftID: id, ItemID: saladID, ParticipantID: p})); err != nil {
			t.Fatalf("ToggleAssignment(%s) failed: %v", p, err)
		}
	}

	_, err = env.drafts.ToggleAssignment(ctx, as("Alice", &api.ToggleAssignmentRequest{DraftID: id, ItemID: saladID, ParticipantID: "Bob"}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.drafts.ToggleAssignment(ctx, as("Alice", &api.ToggleAssignmentRequest{DraftID: id, ItemID: saladID, ParticipantID: "Mallory"}))
	expectCode(t, err, connect.CodeInvalidArgument)

	resp, err := env.drafts.GetDraft(ctx, as("Alice", &api.GetDraftRequest{DraftID: id}))
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	got := resp.Msg.Draft
	// Alice: 20 + 20/30*3 = 22, Bob: 10 + 10/30*3 = 11
	amounts := shareAmounts(got)
	if got.Total != "33.00" || amounts["Alice"] != "22.00" || amounts["Bob"] != "11.00" {
		t.Errorf("unexpected split: total %s, shares %v", got.Total, amounts)
	}
	if got.TotalAssigned != "30.00" {
		t.Errorf("expected 30.00 assigned, got %s", got.TotalAssigned)
	}

	if _, err := env.drafts.SetItemAmount(ctx, as("Alice", &api.SetItemAmountRequest{DraftID: id, ItemID: saladID, Amount: "abc"})); err != nil {
		t.Fatalf("SetItemAmount failed: %v", err)
	}
	if _, err := env.drafts.RemoveItem(ctx, as("Alice", &api.RemoveItemRequest{DraftID: id, ItemID: saladID})); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	_, err = env.drafts.RemoveItem(ctx, as("Alice", &api.RemoveItemRequest{DraftID: id, ItemID: saladID}))
	expectCode(t, err, connect.CodeInvalidArgument)

	final, err := env.drafts.FinalizeDraft(ctx, as("Alice", &api.FinalizeDraftRequest{DraftID: id}))
	if err != nil {
		t.Fatalf("FinalizeDraft failed: %v", err)
	}
	bill := final.Msg.Bill
	if bill.Kind != models.KindItemized || len(bill.Items) != 1 || bill.Total != "23.00" {
		t.Errorf("unexpected bill: %+v", bill)
	}
	if bill.Title == "" {
		t.Error("expected a generated title")
	}
	if bob := paymentFor(t, bill, "Bob"); bob.Amount != "0.00" {
		t.Errorf("expected Bob to owe nothing, got %s", bob.Amount)
	}
}

func TestScanReceipt(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	draft := env.startDraft(t, "Alice", "Bob")

	env.scanner.receipt = &receipt.Receipt{
		Items: []calculator.ItemInput{
			{Description: "Burger", Amount: decimal.RequireFromString("12")},
			{Amount: decimal.RequireFromString("8")},
		},
		Total: decimal.RequireFromString("22"),
		Tax:   decimal.RequireFromString("2"),
	}
	resp, err := env.drafts.ScanReceipt(ctx, as("Alice", &api.ScanReceiptRequest{DraftID: draft.DraftID, Image: []byte("fake-image")}))
	if err != nil {
		t.Fatalf("ScanReceipt failed: %v", err)
	}
	got := resp.Msg
	if got.ItemCount != 2 || got.ReceiptTotal != "22.00" {
		t.Errorf("unexpected scan response: %+v", got)
	}
	if got.Draft.Kind != "itemized" || got.Draft.Tax != "2.00" || got.Draft.Total != "22.00" {
		t.Errorf("expected an itemized draft matching the receipt, got %+v", got.Draft)
	}
	if got.Draft.Items[1].Description != "Item 2" {
		t.Errorf("expected unnamed line to be called Item 2, got %q", got.Draft.Items[1].Description)
	}

	env.scanner.err = fmt.Errorf("%w: got text/plain", receipt.ErrUnsupportedMedia)
	_, err = env.drafts.ScanReceipt(ctx, as("Alice", &api.ScanReceiptRequest{DraftID: draft.DraftID, Image: []byte("hello")}))
	expectCode(t, err, connect.CodeInvalidArgument)

	env.scanner.err = errors.New("ocr down")
	_, err = env.drafts.ScanReceipt(ctx, as("Alice", &api.ScanReceiptRequest{DraftID: draft.DraftID, Image: []byte("img")}))
	expectCode(t, err, connect.CodeUnavailable)

	calls := env.scanner.calls
	_, err = env.drafts.ScanReceipt(ctx, as("Alice", &api.ScanReceiptRequest{DraftID: draft.DraftID}))
	expectCode(t, err, connect.CodeInvalidArgument)
	if env.scanner.calls != calls {
		t.Error("expected an empty upload to be rejected before scanning")
	}
}

func TestImportItems(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	draft := env.startDraft(t, "Alice", "Bob")

	doc := `[{"description": "Fries", "total": "4.00", "assignedTo": ["Bob"]}, {"name": "Soda", "price": 2, "assignedTo": ["Zed"]}]`
	resp, err := env.drafts.ImportItems(ctx, as("Alice", &api.ImportItemsRequest{DraftID: draft.DraftID, Items: json.RawMessage(doc)}))
	if err != nil {
		t.Fatalf("ImportItems failed: %v", err)
	}
	got := resp.Msg
	if got.ItemCount != 2 || got.Draft.Kind != "itemized" || got.Draft.Total != "6.00" {
		t.Fatalf("unexpected import response: %+v", got.Draft)
	}
	if a := got.Draft.Items[0].Assignees; len(a) != 1 || a[0] != "Bob" {
		t.Errorf("expected Fries assigned to Bob, got %v", a)
	}
	if a := got.Draft.Items[1].Assignees; len(a) != 1 || a[0] != "Alice" {
		t.Errorf("expected unknown assignee to fall back to the owner, got %v", a)
	}

	_, err = env.drafts.ImportItems(ctx, as("Alice", &api.ImportItemsRequest{DraftID: draft.DraftID, Items: json.RawMessage(`"nope"`)}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.drafts.ImportItems(ctx, as("Bob", &api.ImportItemsRequest{DraftID: draft.DraftID, Items: json.RawMessage(doc)}))
	expectCode(t, err, connect.CodePermissionDenied)
}

// flakyStore fails the first CreateBill calls.
type flakyStore struct {
	storage.Store
	failures int
	creates  int
}

func (f *flakyStore) CreateBill(ctx context.Context, bill *models.Bill, payments []*models.Payment) error {
	f.creates++
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.Store.CreateBill(ctx, bill, payments)
}

func TestFinalizeDraft_RetryAfterStoreFailure(t *testing.T) {
	store := &flakyStore{Store: newTestStore(t), failures: 1}
	svc := NewDraftService(drafts.NewMemoryStore(drafts.DefaultTTL), store, nil, nil)
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, "Alice")

	started, err := svc.StartDraft(ctx, connect.NewRequest(&api.StartDraftRequest{ParticipantIDs: []string{"Bob", "Carol"}}))
	if err != nil {
		t.Fatalf("StartDraft failed: %v", err)
	}
	id := started.Msg.Draft.DraftID
	if _, err := svc.SetFlat(ctx, connect.NewRequest(&api.SetFlatRequest{DraftID: id, Base: "10"})); err != nil {
		t.Fatalf("SetFlat failed: %v", err)
	}

	_, err = svc.FinalizeDraft(ctx, connect.NewRequest(&api.FinalizeDraftRequest{DraftID: id}))
	expectCode(t, err, connect.CodeInternal)

	// The draft is locked: further edits are ignored.
	edited, err := svc.SetFlat(ctx, connect.NewRequest(&api.SetFlatRequest{DraftID: id, Base: "500"}))
	if err != nil {
		t.Fatalf("SetFlat on finalized draft failed: %v", err)
	}
	if !edited.Msg.Draft.Finalized || edited.Msg.Draft.Total != "10.00" {
		t.Errorf("expected finalized draft to be unchanged, got %+v", edited.Msg.Draft)
	}
	amounts := shareAmounts(edited.Msg.Draft)
	if amounts["Alice"] != "3.34" || amounts["Bob"] != "3.33" || amounts["Carol"] != "3.33" {
		t.Errorf("expected owner to absorb the rounding residual, got %v", amounts)
	}

	final, err := svc.FinalizeDraft(ctx, connect.NewRequest(&api.FinalizeDraftRequest{DraftID: id}))
	if err != nil {
		t.Fatalf("retry FinalizeDraft failed: %v", err)
	}
	if final.Msg.Bill.Total != "10.00" || len(final.Msg.Bill.Payments) != 3 {
		t.Errorf("unexpected bill: %+v", final.Msg.Bill)
	}
	if store.creates != 2 {
		t.Errorf("expected 2 create attempts, got %d", store.creates)
	}
}
