package ports

import (
	"context"
	"io"

	"github.com/mosaic-dev/loader/domain/entities"
)

// Terminal is an interactive terminal backend.
//
// Enable and Disable switch raw mode and the alternate screen. They are
// process-wide and must be called in matched pairs; callers should not use them
// directly but go through a scoped guard.
type Terminal interface {
	io.Writer

	// Enable enters raw mode and the alternate screen.
	Enable() error

	// Disable restores the terminal state saved by Enable.
	Disable() error

	// NextEvent blocks until the next input event is available.
	NextEvent(ctx context.Context) (entities.Event, error)

	// Size returns the current terminal size in columns and rows.
	Size() (columns, rows int, err error)
}
