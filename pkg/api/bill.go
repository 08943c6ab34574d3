package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// BillServiceHandler is implemented by the server side of BillService.
type BillServiceHandler interface {
	GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error)
	ListBills(context.Context, *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error)
	MarkPaymentPaid(context.Context, *connect.Request[MarkPaymentPaidRequest]) (*connect.Response[MarkPaymentPaidResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSpending(context.Context, *connect.Request[GetSpendingRequest]) (*connect.Response[GetSpendingResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(BillServiceGetBillProcedure, connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...))
	mux.Handle(BillServiceListBillsProcedure, connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...))
	mux.Handle(BillServiceMarkPaymentPaidProcedure, connect.NewUnaryHandler(BillServiceMarkPaymentPaidProcedure, svc.MarkPaymentPaid, opts...))
	mux.Handle(BillServiceGetBalancesProcedure, connect.NewUnaryHandler(BillServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(BillServiceGetSpendingProcedure, connect.NewUnaryHandler(BillServiceGetSpendingProcedure, svc.GetSpending, opts...))
	return "/" + BillServiceName + "/", mux
}

// BillServiceClient is a client for BillService.
type BillServiceClient struct {
	getBill         *connect.Client[GetBillRequest, GetBillResponse]
	listBills       *connect.Client[ListBillsRequest, ListBillsResponse]
	markPaymentPaid *connect.Client[MarkPaymentPaidRequest, MarkPaymentPaidResponse]
	getBalances     *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getSpending     *connect.Client[GetSpendingRequest, GetSpendingResponse]
}

// NewBillServiceClient constructs a client for the BillService at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	opts = clientOptions(opts)
	return &BillServiceClient{
		getBill:         connect.NewClient[GetBillRequest, GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		listBills:       connect.NewClient[ListBillsRequest, ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		markPaymentPaid: connect.NewClient[MarkPaymentPaidRequest, MarkPaymentPaidResponse](httpClient, baseURL+BillServiceMarkPaymentPaidProcedure, opts...),
		getBalances:     connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+BillServiceGetBalancesProcedure, opts...),
		getSpending:     connect.NewClient[GetSpendingRequest, GetSpendingResponse](httpClient, baseURL+BillServiceGetSpendingProcedure, opts...),
	}
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) MarkPaymentPaid(ctx context.Context, req *connect.Request[MarkPaymentPaidRequest]) (*connect.Response[MarkPaymentPaidResponse], error) {
	return c.markPaymentPaid.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetSpending(ctx context.Context, req *connect.Request[GetSpendingRequest]) (*connect.Response[GetSpendingResponse], error) {
	return c.getSpending.CallUnary(ctx, req)
}
