//go:build unix

package terminal

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mosaic-dev/loader/domain/entities"
)

// watchResize turns SIGWINCH into resize events carrying the new size.
func watchResize(c *Console) (<-chan entities.ResizeEvent, func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGWINCH)

	events := make(chan entities.ResizeEvent, 1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigs:
				cols, rows, err := c.Size()
				if err != nil {
					continue
				}
				// Coalesce: only the latest size matters.
				select {
				case <-events:
				default:
				}
				events <- entities.ResizeEvent{Columns: cols, Rows: rows}
			}
		}
	}()

	var once sync.Once
	return events, func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(done)
		})
	}
}
