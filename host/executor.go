package host

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/mosaic-dev/loader/application/keyenc"
	"github.com/mosaic-dev/loader/capture"
	"github.com/mosaic-dev/loader/domain/entities"
	domainerrors "github.com/mosaic-dev/loader/domain/errors"
	"github.com/mosaic-dev/loader/hostfuncs"
	wazeroadapter "github.com/mosaic-dev/loader/infrastructure/wazero"
	"github.com/mosaic-dev/loader/log"
)

// Name identifies the loader to guests.
const Name = "mosaic"

// Version is the loader version reported by host_info. Set at link time.
var Version = "dev"

// ErrMissingExport is wrapped by setup errors for absent guest exports.
var ErrMissingExport = errors.New("missing export")

// Executor creates guest sessions.
type Executor struct {
	config executorConfig
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...Option) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.registry == nil {
		reg, err := DefaultRegistry(cfg.config, cfg.logger, cfg.size)
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		cfg.registry = reg
	}

	return &Executor{config: cfg}, nil
}

// DefaultRegistry returns the registry exposing host_info, key_schema and
// terminal_size, with panic recovery and debug logging.
func DefaultRegistry(cfg entities.Config, logger *slog.Logger, size SizeFunc) (*hostfuncs.Registry, error) {
	schema, err := keyenc.Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key schema: %w", err)
	}

	info := hostfuncs.HostInfo{
		Name:      Name,
		Version:   Version,
		Namespace: cfg.HostNamespace,
		QuitKey:   cfg.QuitKey,
	}

	return hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(
			hostfuncs.Recover(),
			hostfuncs.Logging(logger),
		),
		hostfuncs.WithBundle(hostfuncs.MosaicBundle(info, schema, size)),
	)
}

// NewSession compiles and instantiates wasm as a new guest. name labels the
// guest in logs. Every failure is a *errors.SetupError and releases all
// resources acquired so far.
func (e *Executor) NewSession(ctx context.Context, name string, wasm []byte) (s *Session, err error) {
	cfg := e.config.config
	id := uuid.NewString()
	logger := e.config.logger.With("session", id)
	ctx = wazeroadapter.WithGuestName(ctx, name)

	rt := wazero.NewRuntimeWithConfig(ctx, e.config.runtimeConfig)
	defer func() {
		if err != nil {
			_ = rt.Close(ctx)
		}
	}()

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, domainerrors.NewSetupError(domainerrors.StageCompile, err)
	}

	input := capture.NewBuffer()
	output := capture.NewBuffer(capture.WithLimit(cfg.MaxOutputSize))
	stderr := log.NewWriter(logger.With("guest", name), slog.LevelDebug)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return nil, domainerrors.NewSetupError(domainerrors.StageHostModule, fmt.Errorf("failed to instantiate WASI: %w", err))
	}
	if err := wazeroadapter.RegisterWithRuntime(ctx, rt, e.config.registry,
		wazeroadapter.WithLogger(logger),
		wazeroadapter.WithModuleName(cfg.HostNamespace),
		wazeroadapter.WithMaxRequestSize(cfg.MaxRequestSize),
		wazeroadapter.WithCustomHandler(wazeroadapter.MagicNumberHandler(wazeroadapter.MagicNumber)),
		wazeroadapter.WithCustomHandler(wazeroadapter.LogMessageHandler(logger, cfg.MaxRequestSize)),
	); err != nil {
		return nil, domainerrors.NewSetupError(domainerrors.StageHostModule, err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, e.moduleConfig(input, output, stderr))
	if err != nil {
		return nil, domainerrors.NewSetupError(domainerrors.StageInstantiate, err)
	}

	// Memory is bound strictly after instantiation and before any guest call.
	memory := mod.ExportedMemory("memory")
	if memory == nil {
		return nil, domainerrors.NewSetupError(domainerrors.StageMemory, fmt.Errorf("%w: memory", ErrMissingExport))
	}

	startName, start := resolveStart(mod, cfg.StartExport)
	if start == nil {
		return nil, domainerrors.NewSetupError(domainerrors.StageExport, fmt.Errorf("%w: %s", ErrMissingExport, cfg.StartExport))
	}
	handleKey := mod.ExportedFunction(cfg.HandleKeyExport)
	if handleKey == nil {
		return nil, domainerrors.NewSetupError(domainerrors.StageExport, fmt.Errorf("%w: %s", ErrMissingExport, cfg.HandleKeyExport))
	}

	logger.InfoContext(ctx, "guest instantiated",
		"guest", name,
		"start", startName,
		"handle_key", cfg.HandleKeyExport,
		"memory_pages", memory.Size()/65536,
	)

	return &Session{
		id:            id,
		name:          name,
		runtime:       rt,
		module:        mod,
		memory:        memory,
		start:         start,
		startName:     startName,
		handleKey:     handleKey,
		handleKeyName: cfg.HandleKeyExport,
		input:         input,
		output:        output,
		stderr:        stderr,
		logger:        logger,
		seed:          cfg.Seed,
	}, nil
}

// moduleConfig builds the guest's WASI environment. The start functions are
// cleared so instantiation never runs the guest; Prime does that explicitly.
func (e *Executor) moduleConfig(input, output *capture.Buffer, stderr *log.Writer) wazero.ModuleConfig {
	cfg := e.config.config

	mc := wazero.NewModuleConfig().
		WithName(cfg.ProgramName).
		WithArgs(append([]string{cfg.ProgramName}, cfg.Args...)...).
		WithStdin(input).
		WithStdout(output).
		WithStderr(stderr).
		WithFSConfig(wazero.NewFSConfig().WithDirMount(cfg.PreopenDir, cfg.GuestMount)).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep().
		WithRandSource(rand.Reader).
		WithStartFunctions()

	env := e.guestEnv()
	for _, k := range slices.Sorted(maps.Keys(env)) {
		mc = mc.WithEnv(k, env[k])
	}
	return mc
}

// guestEnv returns the configured environment plus COLUMNS and LINES when
// terminal size export is enabled and the size is known. Explicit entries win.
func (e *Executor) guestEnv() map[string]string {
	cfg := e.config.config
	env := make(map[string]string, len(cfg.Env)+2)

	if cfg.ExportTerminalSize && e.config.size != nil {
		if cols, rows, err := e.config.size(); err == nil && cols > 0 && rows > 0 {
			env["COLUMNS"] = strconv.Itoa(cols)
			env["LINES"] = strconv.Itoa(rows)
		}
	}
	maps.Copy(env, cfg.Env)
	return env
}

// resolveStart finds the main entry point. The default "_start" falls back to
// "start" for guests that export it under that name.
func resolveStart(mod api.Module, name string) (string, api.Function) {
	if fn := mod.ExportedFunction(name); fn != nil {
		return name, fn
	}
	if name == entities.DefaultStartExport {
		if fn := mod.ExportedFunction("start"); fn != nil {
			return "start", fn
		}
	}
	return name, nil
}
