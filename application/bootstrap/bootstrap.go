// Package bootstrap runs one interactive session end to end: module
// selection, session setup, priming, the interaction loop and teardown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/mosaic-dev/loader/application/loop"
	"github.com/mosaic-dev/loader/domain/entities"
	domainerrors "github.com/mosaic-dev/loader/domain/errors"
	"github.com/mosaic-dev/loader/domain/ports"
	"github.com/mosaic-dev/loader/host"
)

// ErrNoCandidates is returned when no module is left to offer.
var ErrNoCandidates = errors.New("no candidate modules")

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithConfig sets the loader configuration.
func WithConfig(cfg entities.Config) Option {
	return func(b *Bootstrap) {
		b.config = cfg
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bootstrap) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithExecutorOptions passes extra options to the host executor.
func WithExecutorOptions(opts ...host.Option) Option {
	return func(b *Bootstrap) {
		b.executorOpts = append(b.executorOpts, opts...)
	}
}

// Bootstrap wires the loader's components together.
type Bootstrap struct {
	fsys         fs.FS
	term         ports.Terminal
	prompter     ports.Prompter
	config       entities.Config
	logger       *slog.Logger
	executorOpts []host.Option
}

// New returns a Bootstrap that resolves and reads modules from fsys.
func New(fsys fs.FS, term ports.Terminal, prompter ports.Prompter, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		fsys:     fsys,
		term:     term,
		prompter: prompter,
		config:   entities.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run selects a module, builds and primes its session, then hands control to
// the interaction loop until the user quits. Setup failures are returned as
// *errors.SetupError before the terminal is touched.
func (b *Bootstrap) Run(ctx context.Context) error {
	quit, err := entities.ParseKey(b.config.QuitKey)
	if err != nil {
		return domainerrors.NewSetupError(domainerrors.StageConfig, fmt.Errorf("quit_key: %w", err))
	}

	path, err := b.selectModule()
	if err != nil {
		return err
	}

	wasm, err := readModule(b.fsys, path)
	if err != nil {
		return domainerrors.NewSetupError(domainerrors.StageRead, err)
	}
	b.prompter.Progress(fmt.Sprintf("Loading %s (%d bytes)", path, len(wasm)))

	opts := append([]host.Option{
		host.WithConfig(b.config),
		host.WithLogger(b.logger),
		host.WithTerminalSize(b.term.Size),
	}, b.executorOpts...)
	executor, err := host.NewExecutor(opts...)
	if err != nil {
		return domainerrors.NewSetupError(domainerrors.StageHostModule, err)
	}

	session, err := executor.NewSession(ctx, path, wasm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(context.WithoutCancel(ctx)); cerr != nil {
			b.logger.WarnContext(ctx, "failed to close session", "error", cerr)
		}
	}()

	if err := session.Prime(ctx); err != nil {
		return err
	}

	logger := b.logger.With("session", session.ID())
	logger.InfoContext(ctx, "session started", "module", path)

	l := loop.New(b.term, session, loop.WithQuitKey(quit), loop.WithLogger(logger))
	if err := l.Run(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "session ended", "cycles", l.Cycles())
	return nil
}

func (b *Bootstrap) selectModule() (string, error) {
	candidates, err := ExpandCandidates(b.fsys, b.config.Candidates)
	if err != nil {
		return "", domainerrors.NewSetupError(domainerrors.StageSelect, err)
	}
	if len(candidates) == 0 {
		return "", domainerrors.NewSetupError(domainerrors.StageSelect, ErrNoCandidates)
	}

	idx, err := b.prompter.SelectModule(candidates)
	if err != nil {
		return "", domainerrors.NewSetupError(domainerrors.StageSelect, err)
	}
	if idx < 0 || idx >= len(candidates) {
		return "", domainerrors.NewSetupError(domainerrors.StageSelect,
			fmt.Errorf("selection %d out of range", idx+1))
	}
	return candidates[idx], nil
}
