package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/mosaic-dev/loader/hostfuncs"
)

const (
	// DefaultModuleName is the import namespace of the loader's host functions.
	DefaultModuleName = "mosaic"

	// DefaultAllocateExport is the guest export that reserves response memory.
	DefaultAllocateExport = "allocate"
)

var reservedModuleNames = map[string]bool{
	"wasi_snapshot_preview1": true,
	"wasi_unstable":          true,
}

// CustomHandler is a host function outside the packed JSON convention.
type CustomHandler struct {
	Name        string
	Handler     api.GoModuleFunc
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	Logger         *slog.Logger
	ModuleName     string
	AllocateExport string
	MaxRequestSize uint32
	CustomHandlers []CustomHandler
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithLogger sets the logger for rejected requests and response failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithAllocateExport sets the guest export used to reserve response memory.
func WithAllocateExport(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.AllocateExport = name
	}
}

// WithMaxRequestSize sets the maximum request size read from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		if size > 0 {
			c.MaxRequestSize = size
		}
	}
}

// WithCustomHandler adds a host function outside the packed convention.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Logger:         slog.Default(),
		ModuleName:     DefaultModuleName,
		AllocateExport: DefaultAllocateExport,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

// RegisterWithRuntime instantiates a host module exporting every function of
// registry with signature (i64) -> i64, plus the custom handlers. The module
// may not take a WASI namespace.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.Registry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if reservedModuleNames[cfg.ModuleName] {
		return fmt.Errorf("host module name %q collides with WASI", cfg.ModuleName)
	}

	hm := &hostModule{registry: registry, config: cfg}
	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	exported := make(map[string]bool)

	for _, name := range registry.Names() {
		exported[name] = true
		builder.NewFunctionBuilder().
			WithGoModuleFunction(hm.function(name), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(name)
	}

	for _, ch := range cfg.CustomHandlers {
		if exported[ch.Name] {
			return fmt.Errorf("duplicate host function %q", ch.Name)
		}
		exported[ch.Name] = true
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("failed to instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return nil
}

type hostModule struct {
	registry *hostfuncs.Registry
	config   AdapterConfig
}

// function bridges one registry entry: request bytes come from the span
// packed in the argument, and the response span is packed into the result.
// A zero result means no response could be written.
func (h *hostModule) function(name string) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		logger := h.config.Logger.With("function", name, "guest", GetGuestName(ctx, mod))

		req, errResp := h.readRequest(mod, stack[0])
		if errResp != nil {
			logger.WarnContext(ctx, "wazero: rejected host function request", "error", errResp.Message)
			stack[0] = h.respond(ctx, logger, mod, errResp.JSON())
			return
		}

		resp, err := h.registry.Invoke(ctx, name, req)
		if err != nil {
			logger.ErrorContext(ctx, "wazero: host function failed", "error", err)
			e := hostfuncs.Internal("%v", err)
			e.Function = name
			resp = e.JSON()
		}
		stack[0] = h.respond(ctx, logger, mod, resp)
	}
}

func (h *hostModule) readRequest(mod api.Module, packed uint64) ([]byte, *hostfuncs.ErrorResponse) {
	ptr, length := unpackPtrLen(packed)
	if length > h.config.MaxRequestSize {
		e := hostfuncs.BadRequest("request of %d bytes exceeds the %d byte limit", length, h.config.MaxRequestSize)
		return nil, &e
	}
	if length == 0 {
		return nil, nil
	}

	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		e := hostfuncs.BadRequest("request span %d+%d is outside guest memory", ptr, length)
		return nil, &e
	}
	return data, nil
}

// respond copies data into memory obtained from the guest's allocate export.
func (h *hostModule) respond(ctx context.Context, logger *slog.Logger, mod api.Module, data []byte) uint64 {
	allocate := mod.ExportedFunction(h.config.AllocateExport)
	if allocate == nil {
		logger.ErrorContext(ctx, "wazero: guest does not export "+h.config.AllocateExport)
		return 0
	}

	results, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		logger.ErrorContext(ctx, "wazero: guest allocate failed", "error", err)
		return 0
	}

	ptr := api.DecodeU32(results[0])
	if !mod.Memory().Write(ptr, data) {
		logger.ErrorContext(ctx, "wazero: allocated span is outside guest memory", "ptr", ptr, "len", len(data))
		return 0
	}
	return packPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by guest memory
}

// packPtrLen stores ptr in the upper and length in the lower 32 bits.
func packPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

func unpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed) //nolint:gosec // G115: truncation intended
}
