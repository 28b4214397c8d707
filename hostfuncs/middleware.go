package hostfuncs

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a ByteHandler. The first middleware given to a registry is
// the outermost.
type Middleware func(next ByteHandler) ByteHandler

func chain(h ByteHandler, mws []Middleware) ByteHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Recover turns a panicking handler into an internal error envelope.
func Recover() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					e := recovered(r)
					e.Function = FunctionName(ctx)
					resp, err = e.JSON(), nil
				}
			}()
			return next(ctx, payload)
		}
	}
}

// Logging logs each call at debug level. Calls answered with an error
// envelope, or failing outright, are logged at warn.
func Logging(logger *slog.Logger) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			start := time.Now()
			resp, err := next(ctx, payload)
			attrs := []any{
				"function", FunctionName(ctx),
				"request_bytes", len(payload),
				"duration", time.Since(start),
			}

			switch e, isErr := ParseError(resp); {
			case err != nil:
				logger.WarnContext(ctx, "host function failed", append(attrs, "error", err)...)
			case isErr:
				logger.WarnContext(ctx, "host function returned error", append(attrs, "kind", e.Kind, "message", e.Message)...)
			default:
				logger.DebugContext(ctx, "host function completed", append(attrs, "response_bytes", len(resp))...)
			}
			return resp, err
		}
	}
}
