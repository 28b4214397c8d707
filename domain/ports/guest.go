package ports

import (
	"context"

	"github.com/mosaic-dev/loader/capture"
)

// Guest is a running guest module as seen by the interaction loop.
type Guest interface {
	// Input is the buffer wired as the guest's standard input.
	Input() *capture.Buffer

	// Output is the buffer wired as the guest's standard output.
	Output() *capture.Buffer

	// HandleKey invokes the guest's per-event entry point. It returns only
	// after the guest call has fully completed.
	HandleKey(ctx context.Context) error
}
