package wazero

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tetratelabs/wazero/api"

	"github.com/mosaic-dev/loader/hostfuncs"
	"github.com/mosaic-dev/loader/log"
)

// MagicNumber is the value returned by the magic_number host function.
const MagicNumber int32 = 42

// MagicNumberHandler exports magic_number() -> i32, returning n.
func MagicNumberHandler(n int32) CustomHandler {
	return CustomHandler{
		Name: "magic_number",
		Handler: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeI32(n)
		}),
		ResultTypes: []api.ValueType{api.ValueTypeI32},
	}
}

// LogMessageHandler exports log_message(i64), which takes a packed ptr+len of
// a JSON log.LogMessageWire and relays it to logger. Malformed records are
// reported and dropped; the guest never traps on them.
func LogMessageHandler(logger *slog.Logger, maxRequestSize uint32) CustomHandler {
	if maxRequestSize == 0 {
		maxRequestSize = hostfuncs.DefaultMaxRequestSize
	}

	return CustomHandler{
		Name: "log_message",
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			guest := GetGuestName(ctx, mod)
			ptr, length := unpackPtrLen(stack[0])
			if length > maxRequestSize {
				logger.WarnContext(ctx, "wazero: guest log record too large",
					"guest", guest, "size", length, "max", maxRequestSize)
				return
			}

			data, ok := mod.Memory().Read(ptr, length)
			if !ok {
				logger.WarnContext(ctx, "wazero: failed to read guest log record", "guest", guest)
				return
			}

			var msg log.LogMessageWire
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.WarnContext(ctx, "wazero: malformed guest log record", "guest", guest, "error", err)
				return
			}
			log.Relay(ctx, logger.With("guest", guest), msg)
		}),
		ParamTypes: []api.ValueType{api.ValueTypeI64},
	}
}
