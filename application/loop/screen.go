package loop

import (
	"sync"

	"github.com/mosaic-dev/loader/domain/ports"
)

// screenGuard holds the terminal in raw mode and the alternate screen for as
// long as it is acquired. release is idempotent.
type screenGuard struct {
	term ports.Terminal
	once sync.Once
	err  error
}

func acquireScreen(term ports.Terminal) (*screenGuard, error) {
	if err := term.Enable(); err != nil {
		return nil, err
	}
	return &screenGuard{term: term}, nil
}

func (g *screenGuard) release() error {
	g.once.Do(func() {
		g.err = g.term.Disable()
	})
	return g.err
}
