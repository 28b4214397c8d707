package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mosaic-dev/loader/domain/entities"
)

// FakeTerminal is a scripted ports.Terminal.
type FakeTerminal struct {
	mu sync.Mutex

	events []entities.Event
	screen bytes.Buffer

	// ScreenAtRead holds what had been drawn when each event was requested.
	ScreenAtRead []string

	Enables  int
	Disables int

	EnableErr error
	WriteErr  error
	// ReadErr is returned once the script is exhausted; io.EOF by default.
	ReadErr error

	Columns int
	Rows    int
}

// NewFakeTerminal returns a terminal that replays events in order.
func NewFakeTerminal(events ...entities.Event) *FakeTerminal {
	return &FakeTerminal{events: events, Columns: 80, Rows: 24}
}

// Keys converts key notations to events, panicking on bad notation.
func Keys(notations ...string) []entities.Event {
	out := make([]entities.Event, 0, len(notations))
	for _, n := range notations {
		k, err := entities.ParseKey(n)
		if err != nil {
			panic(fmt.Sprintf("testutil: %v", err))
		}
		out = append(out, k)
	}
	return out
}

func (f *FakeTerminal) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	return f.screen.Write(p)
}

func (f *FakeTerminal) Enable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Enables++
	return f.EnableErr
}

func (f *FakeTerminal) Disable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Disables++
	return nil
}

func (f *FakeTerminal) NextEvent(ctx context.Context) (entities.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ScreenAtRead = append(f.ScreenAtRead, f.screen.String())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.events) == 0 {
		if f.ReadErr != nil {
			return nil, f.ReadErr
		}
		return nil, io.EOF
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *FakeTerminal) Size() (int, int, error) {
	return f.Columns, f.Rows, nil
}

// Screen returns everything drawn so far.
func (f *FakeTerminal) Screen() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen.String()
}

// Balanced reports whether every Enable was matched by a Disable.
func (f *FakeTerminal) Balanced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Enables == f.Disables
}
