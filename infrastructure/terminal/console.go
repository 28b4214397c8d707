package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/mosaic-dev/loader/domain/entities"
	"github.com/mosaic-dev/loader/domain/ports"
)

// ErrNotTerminal is returned by Enable when stdin is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

const readChunk = 256

// Console is the terminal attached to the process.
type Console struct {
	in     *os.File
	out    *os.File
	screen *termenv.Output

	mu    sync.Mutex
	state *term.State

	startOnce sync.Once
	reads     chan readResult
	resizes   <-chan entities.ResizeEvent
	stop      func()

	decoder Decoder
	queue   []entities.Event
}

type readResult struct {
	data []byte
	err  error
}

var _ ports.Terminal = (*Console)(nil)

// NewConsole returns a console reading keys from in and drawing to out.
func NewConsole(in, out *os.File) *Console {
	return &Console{
		in:     in,
		out:    out,
		screen: termenv.NewOutput(out),
	}
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

// Enable puts the terminal into raw mode, switches to the alternate screen and
// hides the cursor.
func (c *Console) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != nil {
		return nil
	}

	fd := c.in.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ErrNotTerminal
	}

	state, err := term.MakeRaw(int(fd))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	c.state = state

	c.screen.AltScreen()
	c.screen.ClearScreen()
	c.screen.HideCursor()
	return nil
}

// Disable undoes Enable. It is a no-op when the terminal is not enabled.
func (c *Console) Disable() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return nil
	}

	c.screen.ShowCursor()
	c.screen.ExitAltScreen()

	err := term.Restore(int(c.in.Fd()), c.state)
	c.state = nil
	if err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}

// Size returns the current size of the output terminal.
func (c *Console) Size() (int, int, error) {
	cols, rows, err := term.GetSize(int(c.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get terminal size: %w", err)
	}
	return cols, rows, nil
}

// NextEvent blocks until a key press or resize is available, or ctx is done.
func (c *Console) NextEvent(ctx context.Context) (entities.Event, error) {
	c.startOnce.Do(c.start)

	for len(c.queue) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev := <-c.resizes:
			return ev, nil
		case r, ok := <-c.reads:
			if !ok {
				return nil, fmt.Errorf("failed to read input: %w", os.ErrClosed)
			}
			if r.err != nil {
				return nil, fmt.Errorf("failed to read input: %w", r.err)
			}
			for _, k := range c.decoder.Feed(r.data) {
				c.queue = append(c.queue, k)
			}
		}
	}

	ev := c.queue[0]
	c.queue = c.queue[1:]
	return ev, nil
}

// Close stops resize notifications. The input reader stays blocked on stdin
// until the process exits.
func (c *Console) Close() error {
	if c.stop != nil {
		c.stop()
	}
	return nil
}

func (c *Console) start() {
	c.reads = make(chan readResult)
	c.resizes, c.stop = watchResize(c)

	go func() {
		defer close(c.reads)
		for {
			buf := make([]byte, readChunk)
			n, err := c.in.Read(buf)
			if n > 0 {
				c.reads <- readResult{data: buf[:n]}
			}
			if err != nil {
				c.reads <- readResult{err: err}
				return
			}
		}
	}()
}
