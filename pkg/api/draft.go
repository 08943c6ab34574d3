package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// DraftServiceHandler is implemented by the server side of DraftService.
type DraftServiceHandler interface {
	StartDraft(context.Context, *connect.Request[StartDraftRequest]) (*connect.Response[DraftResponse], error)
	GetDraft(context.Context, *connect.Request[GetDraftRequest]) (*connect.Response[DraftResponse], error)
	SetParticipants(context.Context, *connect.Request[SetParticipantsRequest]) (*connect.Response[DraftResponse], error)
	SetMode(context.Context, *connect.Request[SetModeRequest]) (*connect.Response[DraftResponse], error)
	SetUnit(context.Context, *connect.Request[SetUnitRequest]) (*connect.Response[DraftResponse], error)
	SetShareValue(context.Context, *connect.Request[SetShareValueRequest]) (*connect.Response[DraftResponse], error)
	SetFlat(context.Context, *connect.Request[SetFlatRequest]) (*connect.Response[DraftResponse], error)
	SetItemized(context.Context, *connect.Request[SetItemizedRequest]) (*connect.Response[DraftResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error)
	SetItemAmount(context.Context, *connect.Request[SetItemAmountRequest]) (*connect.Response[DraftResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[DraftResponse], error)
	ToggleAssignment(context.Context, *connect.Request[ToggleAssignmentRequest]) (*connect.Response[DraftResponse], error)
	ScanReceipt(context.Context, *connect.Request[ScanReceiptRequest]) (*connect.Response[ScanReceiptResponse], error)
	ImportItems(context.Context, *connect.Request[ImportItemsRequest]) (*connect.Response[ImportItemsResponse], error)
	FinalizeDraft(context.Context, *connect.Request[FinalizeDraftRequest]) (*connect.Response[FinalizeDraftResponse], error)
}

// NewDraftServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewDraftServiceHandler(svc DraftServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(DraftServiceStartDraftProcedure, connect.NewUnaryHandler(DraftServiceStartDraftProcedure, svc.StartDraft, opts...))
	mux.Handle(DraftServiceGetDraftProcedure, connect.NewUnaryHandler(DraftServiceGetDraftProcedure, svc.GetDraft, opts...))
	mux.Handle(DraftServiceSetParticipantsProcedure, connect.NewUnaryHandler(DraftServiceSetParticipantsProcedure, svc.SetParticipants, opts...))
	mux.Handle(DraftServiceSetModeProcedure, connect.NewUnaryHandler(DraftServiceSetModeProcedure, svc.SetMode, opts...))
	mux.Handle(DraftServiceSetUnitProcedure, connect.NewUnaryHandler(DraftServiceSetUnitProcedure, svc.SetUnit, opts...))
	mux.Handle(DraftServiceSetShareValueProcedure, connect.NewUnaryHandler(DraftServiceSetShareValueProcedure, svc.SetShareValue, opts...))
	mux.Handle(DraftServiceSetFlatProcedure, connect.NewUnaryHandler(DraftServiceSetFlatProcedure, svc.SetFlat, opts...))
	mux.Handle(DraftServiceSetItemizedProcedure, connect.NewUnaryHandler(DraftServiceSetItemizedProcedure, svc.SetItemized, opts...))
	mux.Handle(DraftServiceAddItemProcedure, connect.NewUnaryHandler(DraftServiceAddItemProcedure, svc.AddItem, opts...))
	mux.Handle(DraftServiceSetItemAmountProcedure, connect.NewUnaryHandler(DraftServiceSetItemAmountProcedure, svc.SetItemAmount, opts...))
	mux.Handle(DraftServiceRemoveItemProcedure, connect.NewUnaryHandler(DraftServiceRemoveItemProcedure, svc.RemoveItem, opts...))
	mux.Handle(DraftServiceToggleAssignmentProcedure, connect.NewUnaryHandler(DraftServiceToggleAssignmentProcedure, svc.ToggleAssignment, opts...))
	mux.Handle(DraftServiceScanReceiptProcedure, connect.NewUnaryHandler(DraftServiceScanReceiptProcedure, svc.ScanReceipt, opts...))
	mux.Handle(DraftServiceImportItemsProcedure, connect.NewUnaryHandler(DraftServiceImportItemsProcedure, svc.ImportItems, opts...))
	mux.Handle(DraftServiceFinalizeDraftProcedure, connect.NewUnaryHandler(DraftServiceFinalizeDraftProcedure, svc.FinalizeDraft, opts...))
	return "/" + DraftServiceName + "/", mux
}

// DraftServiceClient is a client for DraftService.
type DraftServiceClient struct {
	startDraft       *connect.Client[StartDraftRequest, DraftResponse]
	getDraft         *connect.Client[GetDraftRequest, DraftResponse]
	setParticipants  *connect.Client[SetParticipantsRequest, DraftResponse]
	setMode          *connect.Client[SetModeRequest, DraftResponse]
	setUnit          *connect.Client[SetUnitRequest, DraftResponse]
	setShareValue    *connect.Client[SetShareValueRequest, DraftResponse]
	setFlat          *connect.Client[SetFlatRequest, DraftResponse]
	setItemized      *connect.Client[SetItemizedRequest, DraftResponse]
	addItem          *connect.Client[AddItemRequest, AddItemResponse]
	setItemAmount    *connect.Client[SetItemAmountRequest, DraftResponse]
	removeItem       *connect.Client[RemoveItemRequest, DraftResponse]
	toggleAssignment *connect.Client[ToggleAssignmentRequest, DraftResponse]
	scanReceipt      *connect.Client[ScanReceiptRequest, ScanReceiptResponse]
	importItems      *connect.Client[ImportItemsRequest, ImportItemsResponse]
	finalizeDraft    *connect.Client[FinalizeDraftRequest, FinalizeDraftResponse]
}

// NewDraftServiceClient constructs a client for the DraftService at baseURL
// (for example, http://api.acme.com).
func NewDraftServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DraftServiceClient {
	opts = clientOptions(opts)
	return &DraftServiceClient{
		startDraft:       connect.NewClient[StartDraftRequest, DraftResponse](httpClient, baseURL+DraftServiceStartDraftProcedure, opts...),
		getDraft:         connect.NewClient[GetDraftRequest, DraftResponse](httpClient, baseURL+DraftServiceGetDraftProcedure, opts...),
		setParticipants:  connect.NewClient[SetParticipantsRequest, DraftResponse](httpClient, baseURL+DraftServiceSetParticipantsProcedure, opts...),
		setMode:          connect.NewClient[SetModeRequest, DraftResponse](httpClient, baseURL+DraftServiceSetModeProcedure, opts...),
		setUnit:          connect.NewClient[SetUnitRequest, DraftResponse](httpClient, baseURL+DraftServiceSetUnitProcedure, opts...),
		setShareValue:    connect.NewClient[SetShareValueRequest, DraftResponse](httpClient, baseURL+DraftServiceSetShareValueProcedure, opts...),
		setFlat:          connect.NewClient[SetFlatRequest, DraftResponse](httpClient, baseURL+DraftServiceSetFlatProcedure, opts...),
		setItemized:      connect.NewClient[SetItemizedRequest, DraftResponse](httpClient, baseURL+DraftServiceSetItemizedProcedure, opts...),
		addItem:          connect.NewClient[AddItemRequest, AddItemResponse](httpClient, baseURL+DraftServiceAddItemProcedure, opts...),
		setItemAmount:    connect.NewClient[SetItemAmountRequest, DraftResponse](httpClient, baseURL+DraftServiceSetItemAmountProcedure, opts...),
		removeItem:       connect.NewClient[RemoveItemRequest, DraftResponse](httpClient, baseURL+DraftServiceRemoveItemProcedure, opts...),
		toggleAssignment: connect.NewClient[ToggleAssignmentRequest, DraftResponse](httpClient, baseURL+DraftServiceToggleAssignmentProcedure, opts...),
		scanReceipt:      connect.NewClient[ScanReceiptRequest, ScanReceiptResponse](httpClient, baseURL+DraftServiceScanReceiptProcedure, opts...),
		importItems:      connect.NewClient[ImportItemsRequest, ImportItemsResponse](httpClient, baseURL+DraftServiceImportItemsProcedure, opts...),
		finalizeDraft:    connect.NewClient[FinalizeDraftRequest, FinalizeDraftResponse](httpClient, baseURL+DraftServiceFinalizeDraftProcedure, opts...),
	}
}

func (c *DraftServiceClient) StartDraft(ctx context.Context, req *connect.Request[StartDraftRequest]) (*connect.Response[DraftResponse], error) {
	return c.startDraft.CallUnary(ctx, req)
}

func (c *DraftServiceClient) GetDraft(ctx context.Context, req *connect.Request[GetDraftRequest]) (*connect.Response[DraftResponse], error) {
	return c.getDraft.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetParticipants(ctx context.Context, req *connect.Request[SetParticipantsRequest]) (*connect.Response[DraftResponse], error) {
	return c.setParticipants.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetMode(ctx context.Context, req *connect.Request[SetModeRequest]) (*connect.Response[DraftResponse], error) {
	return c.setMode.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetUnit(ctx context.Context, req *connect.Request[SetUnitRequest]) (*connect.Response[DraftResponse], error) {
	return c.setUnit.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetShareValue(ctx context.Context, req *connect.Request[SetShareValueRequest]) (*connect.Response[DraftResponse], error) {
	return c.setShareValue.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetFlat(ctx context.Context, req *connect.Request[SetFlatRequest]) (*connect.Response[DraftResponse], error) {
	return c.setFlat.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetItemized(ctx context.Context, req *connect.Request[SetItemizedRequest]) (*connect.Response[DraftResponse], error) {
	return c.setItemized.CallUnary(ctx, req)
}

func (c *DraftServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetItemAmount(ctx context.Context, req *connect.Request[SetItemAmountRequest]) (*connect.Response[DraftResponse], error) {
	return c.setItemAmount.CallUnary(ctx, req)
}

func (c *DraftServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[DraftResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *DraftServiceClient) ToggleAssignment(ctx context.Context, req *connect.Request[ToggleAssignmentRequest]) (*connect.Response[DraftResponse], error) {
	return c.toggleAssignment.CallUnary(ctx, req)
}

func (c *DraftServiceClient) ScanReceipt(ctx context.Context, req *connect.Request[ScanReceiptRequest]) (*connect.Response[ScanReceiptResponse], error) {
	return c.scanReceipt.CallUnary(ctx, req)
}

func (c *DraftServiceClient) ImportItems(ctx context.Context, req *connect.Request[ImportItemsRequest]) (*connect.Response[ImportItemsResponse], error) {
	return c.importItems.CallUnary(ctx, req)
}

func (c *DraftServiceClient) FinalizeDraft(ctx context.Context, req *connect.Request[FinalizeDraftRequest]) (*connect.Response[FinalizeDraftResponse], error) {
	return c.finalizeDraft.CallUnary(ctx, req)
}
