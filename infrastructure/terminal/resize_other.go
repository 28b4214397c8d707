//go:build !unix

package terminal

import "github.com/mosaic-dev/loader/domain/entities"

// watchResize returns a channel that never fires; this platform has no
// SIGWINCH.
func watchResize(*Console) (<-chan entities.ResizeEvent, func()) {
	return nil, func() {}
}
