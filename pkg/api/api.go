// Package api defines the RPC surface of the bill split server: service and
// procedure names, request and response messages, and Connect handler and
// client constructors. Messages are plain Go structs carried as JSON;
// decimal amounts travel as strings ("12.50") so no precision is lost.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

const (
	// DraftServiceName is the fully-qualified name of the DraftService service.
	DraftServiceName = "billsplit.v1.DraftService"
	// BillServiceName is the fully-qualified name of the BillService service.
	BillServiceName = "billsplit.v1.BillService"
)

// Procedure names, used for routing and in interceptors.
const (
	DraftServiceStartDraftProcedure       = "/billsplit.v1.DraftService/StartDraft"
	DraftServiceGetDraftProcedure         = "/billsplit.v1.DraftService/GetDraft"
	DraftServiceSetParticipantsProcedure  = "/billsplit.v1.DraftService/SetParticipants"
	DraftServiceSetModeProcedure          = "/billsplit.v1.DraftService/SetMode"
	DraftServiceSetUnitProcedure          = "/billsplit.v1.DraftService/SetUnit"
	DraftServiceSetShareValueProcedure    = "/billsplit.v1.DraftService/SetShareValue"
	DraftServiceSetFlatProcedure          = "/billsplit.v1.DraftService/SetFlat"
	DraftServiceSetItemizedProcedure      = "/billsplit.v1.DraftService/SetItemized"
	DraftServiceAddItemProcedure          = "/billsplit.v1.DraftService/AddItem"
	DraftServiceSetItemAmountProcedure    = "/billsplit.v1.DraftService/SetItemAmount"
	DraftServiceRemoveItemProcedure       = "/billsplit.v1.DraftService/RemoveItem"
	DraftServiceToggleAssignmentProcedure = "/billsplit.v1.DraftService/ToggleAssignment"
	DraftServiceScanReceiptProcedure      = "/billsplit.v1.DraftService/ScanReceipt"
	DraftServiceImportItemsProcedure      = "/billsplit.v1.DraftService/ImportItems"
	DraftServiceFinalizeDraftProcedure    = "/billsplit.v1.DraftService/FinalizeDraft"

	BillServiceGetBillProcedure         = "/billsplit.v1.BillService/GetBill"
	BillServiceListBillsProcedure       = "/billsplit.v1.BillService/ListBills"
	BillServiceMarkPaymentPaidProcedure = "/billsplit.v1.BillService/MarkPaymentPaid"
	BillServiceGetBalancesProcedure     = "/billsplit.v1.BillService/GetBalances"
	BillServiceGetSpendingProcedure     = "/billsplit.v1.BillService/GetSpending"
)

// Codec marshals messages as JSON. It registers under the name "json", so
// Connect serves it for application/json (unary) and
// application/connect+json (streaming) requests.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}
