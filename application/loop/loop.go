// Package loop drives the interactive session: it renders guest output,
// forwards terminal events to the guest, and owns the terminal's raw mode for
// exactly as long as the session is running.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mosaic-dev/loader/application/keyenc"
	"github.com/mosaic-dev/loader/domain/entities"
	domainerrors "github.com/mosaic-dev/loader/domain/errors"
	"github.com/mosaic-dev/loader/domain/ports"
)

// State is the loop's lifecycle state.
type State int

const (
	// Running cycles until the quit key is seen or an error occurs.
	Running State = iota
	// Quitting is terminal; no further guest calls are made.
	Quitting
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Quitting:
		return "quitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal operations named in IOError.
const (
	OpEnable  = "enable"
	OpRestore = "restore"
	OpRead    = "read"
	OpRender  = "render"
)

// Option configures a Loop.
type Option func(*loopConfig)

type loopConfig struct {
	logger  *slog.Logger
	quitKey entities.KeyEvent
}

func defaultLoopConfig() loopConfig {
	return loopConfig{
		logger:  slog.Default(),
		quitKey: entities.CharKey('q', 0),
	}
}

// WithQuitKey sets the key that ends the session. Modifiers are ignored when
// matching.
func WithQuitKey(k entities.KeyEvent) Option {
	return func(c *loopConfig) {
		c.quitKey = k
	}
}

// WithLogger sets the loop logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *loopConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Loop is the interaction loop over one terminal and one guest.
type Loop struct {
	term   ports.Terminal
	guest  ports.Guest
	config loopConfig

	state   State
	cycles  int
	pending []byte
}

// New creates a loop in the Running state.
func New(term ports.Terminal, guest ports.Guest, opts ...Option) *Loop {
	cfg := defaultLoopConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loop{term: term, guest: guest, config: cfg, state: Running}
}

// State returns the current state.
func (l *Loop) State() State { return l.state }

// Cycles returns the number of completed or started cycles.
func (l *Loop) Cycles() int { return l.cycles }

// Run cycles until the quit key is pressed (nil) or a terminal or guest call
// fails. The terminal is in raw mode and the alternate screen only while Run
// executes, and is restored on every return path, panics included.
func (l *Loop) Run(ctx context.Context) (err error) {
	guard, err := acquireScreen(l.term)
	if err != nil {
		return &domainerrors.IOError{Op: OpEnable, Err: err}
	}
	defer func() {
		if rerr := guard.release(); rerr != nil {
			l.config.logger.ErrorContext(ctx, "failed to restore terminal", "error", rerr)
			if err == nil {
				err = &domainerrors.IOError{Op: OpRestore, Err: rerr}
			}
		}
	}()

	for l.state == Running {
		if err := l.cycle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// cycle renders what the guest produced during the previous call, then waits
// for one event and hands it to the guest. Output of a call is therefore shown
// one cycle later.
func (l *Loop) cycle(ctx context.Context) error {
	l.cycles++

	if err := l.render(ctx); err != nil {
		return &domainerrors.IOError{Op: OpRender, Err: err}
	}
	l.guest.Input().Clear()

	ev, err := l.term.NextEvent(ctx)
	if err != nil {
		return &domainerrors.IOError{Op: OpRead, Err: err}
	}

	switch ev := ev.(type) {
	case entities.KeyEvent:
		if ev.Same(l.config.quitKey) {
			l.state = Quitting
			l.config.logger.DebugContext(ctx, "quit key pressed", "cycle", l.cycles)
			return nil
		}
		l.deliver(ctx, ev)
	case entities.ResizeEvent:
		l.config.logger.DebugContext(ctx, "terminal resized", "columns", ev.Columns, "rows", ev.Rows)
	}

	if err := l.guest.HandleKey(ctx); err != nil {
		var callErr *domainerrors.GuestCallError
		if errors.As(err, &callErr) {
			return err
		}
		return &domainerrors.GuestCallError{Export: entities.DefaultHandleKeyExport, Err: err}
	}
	return nil
}

// deliver writes one encoded key line to the guest's input.
func (l *Loop) deliver(ctx context.Context, k entities.KeyEvent) {
	line, err := keyenc.Encode(k)
	if err != nil {
		l.config.logger.WarnContext(ctx, "dropping unencodable key", "key", k.String(), "error", err)
		return
	}
	_, _ = l.guest.Input().Write(line)
}

// render draws and clears the guest's pending output. Newlines become CR LF
// since the terminal is in raw mode. An incomplete UTF-8 sequence at the end
// is held back and completed by the next drain.
func (l *Loop) render(ctx context.Context) error {
	out := l.guest.Output()
	defer out.Clear()

	if out.Truncated {
		l.config.logger.WarnContext(ctx, "guest output truncated", "cycle", l.cycles, "kept_bytes", out.Len())
	}

	data := append(append([]byte(nil), l.pending...), out.Bytes()...)
	data, l.pending = splitIncomplete(data)
	if len(data) == 0 {
		return nil
	}

	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	_, err := l.term.Write([]byte(text))
	return err
}

// splitIncomplete separates a trailing, not yet complete UTF-8 sequence.
func splitIncomplete(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			break
		}
		return b[:i], append([]byte(nil), b[i:]...)
	}
	return b, nil
}
