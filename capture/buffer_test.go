package capture

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_WriteReadRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		writes []string
		want   string
	}{
		{name: "single write", writes: []string{"hello"}, want: "hello"},
		{name: "ordered writes", writes: []string{"a", "bc", "", "def\n"}, want: "abcdef\n"},
		{name: "no writes", writes: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewBuffer()
			for _, w := range tt.writes {
				n, err := buf.Write([]byte(w))
				require.NoError(t, err)
				assert.Equal(t, len(w), n)
			}

			got, err := io.ReadAll(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestBuffer_ClearEmpties(t *testing.T) {
	buf := NewBuffer()
	_, _ = buf.Write([]byte("stale input\n"))
	buf.Clear()

	assert.Equal(t, 0, buf.Len())
	p := make([]byte, 8)
	n, err := buf.Read(p)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)

	_, _ = buf.Write([]byte("fresh"))
	assert.Equal(t, "fresh", buf.Text())
}

func TestBuffer_ReadConsumes(t *testing.T) {
	buf := NewBuffer()
	_, _ = buf.Write([]byte("abcdef"))

	p := make([]byte, 4)
	n, err := buf.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(p[:n]))

	n, err = buf.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(p[:n]))

	n, err = buf.Read(p)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)

	// Exhaustion is stable.
	n, err = buf.Read(p)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestBuffer_SeekAlwaysFails(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		buf := NewBuffer()
		_, err := buf.Seek(0, io.SeekStart)
		assert.ErrorIs(t, err, ErrNotSeekable)
	})

	t.Run("non-empty", func(t *testing.T) {
		buf := NewBuffer()
		_, _ = buf.Write([]byte("data"))
		for _, whence := range []int{io.SeekStart, io.SeekCurrent, io.SeekEnd} {
			_, err := buf.Seek(1, whence)
			assert.ErrorIs(t, err, ErrNotSeekable)
		}
		assert.Equal(t, "data", buf.Text(), "failed seek must not disturb contents")
	})
}

func TestBuffer_TextReplacesInvalidUTF8(t *testing.T) {
	buf := NewBuffer()
	_, _ = buf.Write([]byte{'o', 'k', 0xff, 0xfe, '!'})

	assert.Equal(t, "ok�!", buf.Text())
	assert.Equal(t, buf.Text(), buf.String())
}

func TestBuffer_WithLimit(t *testing.T) {
	buf := NewBuffer(WithLimit(8))
	n, err := buf.Write([]byte("12345"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = buf.Write([]byte("67890"))
	require.NoError(t, err)
	assert.Equal(t, 5, n, "write reports the full length even when truncated")
	assert.Equal(t, "12345678", buf.Text())
	assert.True(t, buf.Truncated)

	buf.Clear()
	assert.False(t, buf.Truncated)
	assert.Equal(t, 0, buf.Len())
}

func TestBuffer_Stubs(t *testing.T) {
	buf := NewBuffer()
	_, _ = buf.Write([]byte("not counted"))

	assert.Zero(t, buf.Size())
	assert.True(t, buf.ModTime().IsZero())
	assert.True(t, buf.CreatedTime().IsZero())
	assert.Equal(t, BytesAvailablePlaceholder, buf.BytesAvailable())
}
