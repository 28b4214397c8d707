package hostfuncs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// DefaultMaxRequestSize limits the size of requests read from guest memory (1MB).
const DefaultMaxRequestSize = 1 * 1024 * 1024

// HostFunc is a typed host function.
type HostFunc[Req any, Resp any] func(context.Context, Req) Resp

// ByteHandler takes a JSON request and returns a JSON response. A returned
// error means the host could not produce any response at all.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// JSONHandler adapts fn to a ByteHandler. An empty or blank payload decodes to
// the zero request. Malformed JSON is answered with a bad_request envelope.
func JSONHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if len(bytes.TrimSpace(payload)) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				e := BadRequest("malformed request: %v", err)
				e.Function = FunctionName(ctx)
				return e.JSON(), nil
			}
		}

		data, err := json.Marshal(fn(ctx, req))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return data, nil
	}
}
