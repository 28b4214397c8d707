package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Writer is an io.Writer that logs each complete line it receives. It is used
// for guest stderr, which must never reach the terminal directly.
type Writer struct {
	logger *slog.Logger
	level  slog.Level

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewWriter returns a Writer logging lines at level with a stream=stderr attr.
func NewWriter(logger *slog.Logger, level slog.Level) *Writer {
	return &Writer{logger: logger.With(slog.String("stream", "stderr")), level: level}
}

// Write buffers p and emits every complete line. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(line)
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *Writer) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	w.logger.Log(context.Background(), w.level, strings.ToValidUTF8(line, "�"))
}
