package main

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/billsplit/internal/auth"
	"github.com/mmynk/billsplit/internal/metrics"
	mw "github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/service"
	"github.com/mmynk/billsplit/pkg/api"
)

const defaultMaxRequestBytes = 8 << 20

type routerConfig struct {
	jwt      *auth.JWTManager
	drafts   *service.DraftService
	bills    *service.BillService
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	// maxRequestBytes limits RPC request bodies; zero means 8 MiB.
	maxRequestBytes int64
}

func newRouter(cfg routerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	limit := cfg.maxRequestBytes
	if limit <= 0 {
		limit = defaultMaxRequestBytes
	}
	opts := []connect.HandlerOption{
		connect.WithInterceptors(mw.RequireAuth(cfg.jwt), mw.LoggingInterceptor(cfg.metrics)),
		connect.WithReadMaxBytes(int(limit)),
	}

	draftPath, draftHandler := api.NewDraftServiceHandler(cfg.drafts, opts...)
	r.Handle(draftPath+"*", draftHandler)

	billPath, billHandler := api.NewBillServiceHandler(cfg.bills, opts...)
	r.Handle(billPath+"*", billHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
