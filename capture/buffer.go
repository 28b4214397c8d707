// Package capture provides host-owned byte buffers that stand in for a guest's
// standard input and output files.
package capture

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"time"
)

// BytesAvailablePlaceholder is reported by BytesAvailable regardless of the
// buffer contents.
const BytesAvailablePlaceholder = 1024

// ErrNotSeekable is returned by every Seek call. A capture buffer is a
// transient pipe, not a durable file.
var ErrNotSeekable = errors.New("capture: buffer is not seekable")

// Buffer is an in-memory byte sink/source used as a guest stdio file.
// Writes append, reads consume from the front. It is not safe for concurrent
// use; the owner must not read it while a guest call may still be writing.
type Buffer struct {
	buffer bytes.Buffer
	limit  int

	// Truncated is set when a write was cut short by the size limit.
	Truncated bool
}

var _ io.ReadWriteSeeker = (*Buffer)(nil)

// Option configures a Buffer.
type Option func(*Buffer)

// WithLimit bounds the number of buffered bytes. Writes beyond the limit are
// dropped but still reported as fully written. Zero means unlimited.
func WithLimit(limit int) Option {
	return func(b *Buffer) {
		if limit > 0 {
			b.limit = limit
		}
	}
}

// NewBuffer creates an empty Buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Write implements io.Writer. It never fails and always returns len(p).
func (b *Buffer) Write(p []byte) (int, error) {
	if b.limit == 0 {
		b.buffer.Write(p)
		return len(p), nil
	}

	remaining := b.limit - b.buffer.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			b.Truncated = true
		}
		return len(p), nil
	}
	if len(p) > remaining {
		b.Truncated = true
		b.buffer.Write(p[:remaining])
		return len(p), nil
	}
	b.buffer.Write(p)
	return len(p), nil
}

// Read implements io.Reader, consuming bytes from the front of the buffer.
// Once exhausted it returns 0, io.EOF.
func (b *Buffer) Read(p []byte) (int, error) {
	return b.buffer.Read(p)
}

// Seek always fails with ErrNotSeekable.
func (b *Buffer) Seek(int64, int) (int64, error) {
	return 0, ErrNotSeekable
}

// Clear resets the buffer to empty and clears the Truncated flag.
func (b *Buffer) Clear() {
	b.buffer.Reset()
	b.Truncated = false
}

// Bytes returns the unread bytes. The slice aliases the buffer until the next
// modification.
func (b *Buffer) Bytes() []byte {
	return b.buffer.Bytes()
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return b.buffer.Len()
}

// Text renders the unread bytes as UTF-8 text. Invalid sequences are replaced
// with U+FFFD; guest output is untrusted.
func (b *Buffer) Text() string {
	return strings.ToValidUTF8(b.buffer.String(), "�")
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	return b.Text()
}

// Size is a stub and always reports 0.
func (b *Buffer) Size() int64 { return 0 }

// ModTime is a stub and always reports the zero time.
func (b *Buffer) ModTime() time.Time { return time.Time{} }

// CreatedTime is a stub and always reports the zero time.
func (b *Buffer) CreatedTime() time.Time { return time.Time{} }

// BytesAvailable reports BytesAvailablePlaceholder, not the real remaining
// length.
func (b *Buffer) BytesAvailable() int { return BytesAvailablePlaceholder }
