package api

import "encoding/json"

// DraftView is the state of a bill draft as shown while it is edited.
// Amounts are formatted to two decimal places.
type DraftView struct {
	DraftID      string   `json:"draft_id"`
	OwnerID      string   `json:"owner_id"`
	Participants []string `json:"participants"`
	Kind         string   `json:"kind"`
	Mode         string   `json:"mode"`
	Unit         string   `json:"unit"`
	Base         string   `json:"base"`
	Tax          string   `json:"tax"`
	Tip          string   `json:"tip"`
	Total        string   `json:"total"`
	// TotalAssigned is the item subtotal covered by assignees (itemized only).
	TotalAssigned string      `json:"total_assigned,omitempty"`
	Items         []ItemView  `json:"items,omitempty"`
	Shares        []ShareView `json:"shares"`
	OverAllocated bool        `json:"over_allocated"`
	// Incomplete explains why the draft cannot be finalized yet.
	Incomplete string `json:"incomplete,omitempty"`
	Finalized  bool   `json:"finalized"`
}

// ItemView is one line item of a draft or bill.
type ItemView struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	Assignees   []string `json:"assignees"`
}

// ShareView is what one participant owes. Value is the custom share in the
// draft's unit; empty unless the draft is a custom flat split.
type ShareView struct {
	ParticipantID string `json:"participant_id"`
	Value         string `json:"value,omitempty"`
	Amount        string `json:"amount"`
}

// DraftResponse is returned by every draft mutation.
type DraftResponse struct {
	Draft *DraftView `json:"draft"`
}

type StartDraftRequest struct {
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

type GetDraftRequest struct {
	DraftID string `json:"draft_id"`
}

type SetParticipantsRequest struct {
	DraftID        string   `json:"draft_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

type SetModeRequest struct {
	DraftID string `json:"draft_id"`
	Mode    string `json:"mode"`
}

type SetUnitRequest struct {
	DraftID string `json:"draft_id"`
	Unit    string `json:"unit"`
}

// SetShareValueRequest carries the raw text the user typed; values that do
// not parse count as zero.
type SetShareValueRequest struct {
	DraftID       string `json:"draft_id"`
	ParticipantID string `json:"participant_id"`
	Value         string `json:"value"`
}

type SetFlatRequest struct {
	DraftID string `json:"draft_id"`
	Base    string `json:"base"`
	Tax     string `json:"tax,omitempty"`
	Tip     string `json:"tip,omitempty"`
}

type SetItemizedRequest struct {
	DraftID string `json:"draft_id"`
	Tax     string `json:"tax,omitempty"`
	Tip     string `json:"tip,omitempty"`
}

type AddItemRequest struct {
	DraftID     string `json:"draft_id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type AddItemResponse struct {
	ItemID string     `json:"item_id"`
	Draft  *DraftView `json:"draft"`
}

type SetItemAmountRequest struct {
	DraftID string `json:"draft_id"`
	ItemID  string `json:"item_id"`
	Amount  string `json:"amount"`
}

type RemoveItemRequest struct {
	DraftID string `json:"draft_id"`
	ItemID  string `json:"item_id"`
}

type ToggleAssignmentRequest struct {
	DraftID       string `json:"draft_id"`
	ItemID        string `json:"item_id"`
	ParticipantID string `json:"participant_id"`
}

// ScanReceiptRequest uploads a receipt image. Image is base64 in JSON.
type ScanReceiptRequest struct {
	DraftID string `json:"draft_id"`
	Image   []byte `json:"image"`
}

type ScanReceiptResponse struct {
	Draft     *DraftView `json:"draft"`
	ItemCount int        `json:"item_count"`
	// ReceiptTotal is the total printed on the receipt, when the scanner found one.
	ReceiptTotal string `json:"receipt_total,omitempty"`
}

// ImportItemsRequest loads items saved by older clients. Items is a JSON
// array or an object keyed by line index, in any of the stored item shapes.
type ImportItemsRequest struct {
	DraftID string          `json:"draft_id"`
	Items   json.RawMessage `json:"items"`
}

type ImportItemsResponse struct {
	Draft     *DraftView `json:"draft"`
	ItemCount int        `json:"item_count"`
}

type FinalizeDraftRequest struct {
	DraftID string `json:"draft_id"`
	// Title is optional; an empty title is generated from the participants.
	Title string `json:"title,omitempty"`
	// Category is one of food, transport, entertainment, shopping,
	// utilities, health, education, travel or other. Empty means other.
	Category string `json:"category,omitempty"`
}

type FinalizeDraftResponse struct {
	Bill *BillView `json:"bill"`
}

// BillView is a finalized bill with its payments.
type BillView struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	OwnerID      string        `json:"owner_id"`
	Kind         string        `json:"kind"`
	Mode         string        `json:"mode,omitempty"`
	Unit         string        `json:"unit,omitempty"`
	Base         string        `json:"base,omitempty"`
	Subtotal     string        `json:"subtotal"`
	Tax          string        `json:"tax"`
	Tip          string        `json:"tip"`
	Total        string        `json:"total"`
	Participants []string      `json:"participants"`
	Items        []ItemView    `json:"items,omitempty"`
	Payments     []PaymentView `json:"payments"`
	Progress     *ProgressView `json:"progress"`
	CreatedAt    int64         `json:"created_at"`
}

type PaymentView struct {
	ID            string `json:"id"`
	BillID        string `json:"bill_id"`
	ParticipantID string `json:"participant_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	PaidAt        int64  `json:"paid_at,omitempty"`
}

// ProgressView is how much of a bill has been paid back.
type ProgressView struct {
	Paid        string `json:"paid"`
	Outstanding string `json:"outstanding"`
	Percent     int32  `json:"percent"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillResponse struct {
	Bill *BillView `json:"bill"`
}

type ListBillsRequest struct{}

type BillSummaryView struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Category         string `json:"category"`
	OwnerID          string `json:"owner_id"`
	Total            string `json:"total"`
	ParticipantCount int32  `json:"participant_count"`
	CreatedAt        int64  `json:"created_at"`
}

type ListBillsResponse struct {
	Bills []BillSummaryView `json:"bills"`
}

type MarkPaymentPaidRequest struct {
	BillID    string `json:"bill_id"`
	PaymentID string `json:"payment_id"`
}

type MarkPaymentPaidResponse struct {
	Bill *BillView `json:"bill"`
}

type GetBalancesRequest struct{}

// CounterpartyView is the net balance with one person; positive means they
// owe the caller.
type CounterpartyView struct {
	ParticipantID string `json:"participant_id"`
	Net           string `json:"net"`
}

type DebtView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type GetBalancesResponse struct {
	OwedToMe       string             `json:"owed_to_me"`
	IOwe           string             `json:"i_owe"`
	Counterparties []CounterpartyView `json:"counterparties"`
	Settlements    []DebtView         `json:"settlements"`
}

type GetSpendingRequest struct {
	// Timeframe is month, quarter or year; empty means month.
	Timeframe string `json:"timeframe,omitempty"`
}

type CategorySpendView struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Percent  string `json:"percent"`
}

type SpentPaymentView struct {
	PaymentID string `json:"payment_id"`
	BillID    string `json:"bill_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	PaidAt    int64  `json:"paid_at"`
}

// GetSpendingResponse covers the payments the caller settled since Since,
// the start of the current calendar timeframe.
type GetSpendingResponse struct {
	Timeframe  string              `json:"timeframe"`
	Since      int64               `json:"since"`
	Total      string              `json:"total"`
	Categories []CategorySpendView `json:"categories"`
	Recent     []SpentPaymentView  `json:"recent"`
}
