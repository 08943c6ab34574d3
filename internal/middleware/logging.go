package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/billsplit/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC and
// records its latency by procedure and status code. m may be nil.
//
// Connect errors are logged at WARN with their code; anything else is an
// unexpected failure and logged at ERROR.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			attrs := []slog.Attr{
				slog.String("procedure", procedure),
				slog.String("user_id", GetUserID(ctx)),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
			}
			if reqID := chimw.GetReqID(ctx); reqID != "" {
				attrs = append(attrs, slog.String("request_id", reqID))
			}

			code := "ok"
			level, msg := slog.LevelInfo, "RPC ok"
			if err != nil {
				code = connect.CodeOf(err).String()
				msg = "RPC error"
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					level = slog.LevelWarn
					attrs = append(attrs, slog.String("code", code), slog.String("error", connectErr.Message()))
				} else {
					level = slog.LevelError
					attrs = append(attrs, slog.Any("error", err))
				}
			}
			slog.LogAttrs(ctx, level, msg, attrs...)
			m.ObserveRequest(procedure, code, elapsed)

			return resp, err
		}
	}
}
