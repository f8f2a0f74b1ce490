package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// callInfo is filled in by inner interceptors so the logging interceptor,
// which runs first, can still report who made the call.
type callInfo struct {
	userID string
}

const callInfoKey contextKey = "call_info"

func noteUser(ctx context.Context, userID string) {
	if info, ok := ctx.Value(callInfoKey).(*callInfo); ok {
		info.userID = userID
	}
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC once
// it finishes. Install it outside RequireAuth so rejected calls are logged
// too; the user ID is picked up after authentication succeeds.
// A nil logger means slog.Default().
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			log := logger
			if log == nil {
				log = slog.Default()
			}

			info := &callInfo{}
			start := time.Now()
			resp, err := next(context.WithValue(ctx, callInfoKey, info), req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"peer", req.Peer().Addr,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if info.userID != "" {
				attrs = append(attrs, "user_id", info.userID)
			}

			var connectErr *connect.Error
			switch {
			case err == nil:
				log.Info("RPC ok", attrs...)
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal && connectErr.Code() != connect.CodeUnknown:
				attrs = append(attrs, "code", connectErr.Code().String(), "error", connectErr.Message())
				if kind := connectErr.Meta().Get("Error-Kind"); kind != "" {
					attrs = append(attrs, "error_kind", kind)
				}
				log.Warn("RPC error", attrs...)
			default:
				log.Error("RPC error", append(attrs, "error", err)...)
			}
			return resp, err
		}
	}
}
