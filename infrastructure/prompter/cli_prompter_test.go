package prompter_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/mosaic-dev/loader/infrastructure/prompter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidates = []string{"one.wasm", "two.wasm", "three.wasm"}

func TestCliPrompter_SelectModule(t *testing.T) {
	t.Run("Third Of Three", func(t *testing.T) {
		in := bytes.NewBufferString("3\n")
		out := &bytes.Buffer{}
		p := prompter.NewCliPrompter(in, out)

		idx, err := p.SelectModule(candidates)
		require.NoError(t, err)
		assert.Equal(t, 2, idx)
		assert.Contains(t, out.String(), "1) one.wasm\n2) two.wasm\n3) three.wasm\n")
	})

	t.Run("Whitespace And No Newline", func(t *testing.T) {
		p := prompter.NewCliPrompter(bytes.NewBufferString("  1 "), io.Discard)

		idx, err := p.SelectModule(candidates)
		require.NoError(t, err)
		assert.Equal(t, 0, idx)
	})

	t.Run("Out Of Range", func(t *testing.T) {
		for _, in := range []string{"0\n", "4\n", "-1\n"} {
			p := prompter.NewCliPrompter(bytes.NewBufferString(in), io.Discard)
			_, err := p.SelectModule(candidates)
			assert.Error(t, err, in)
		}
	})

	t.Run("Not A Number", func(t *testing.T) {
		p := prompter.NewCliPrompter(bytes.NewBufferString("two\n"), io.Discard)
		_, err := p.SelectModule(candidates)
		assert.ErrorContains(t, err, "invalid selection")
	})

	t.Run("No Input", func(t *testing.T) {
		p := prompter.NewCliPrompter(bytes.NewBufferString(""), io.Discard)
		_, err := p.SelectModule(candidates)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("No Candidates", func(t *testing.T) {
		p := prompter.NewCliPrompter(bytes.NewBufferString("1\n"), io.Discard)
		_, err := p.SelectModule(nil)
		assert.Error(t, err)
	})
}

func TestCliPrompter_IsInteractive(t *testing.T) {
	p := prompter.NewCliPrompter(bytes.NewBufferString(""), io.Discard)
	assert.False(t, p.IsInteractive())
}

func TestCliPrompter_Progress(t *testing.T) {
	out := &bytes.Buffer{}
	prompter.NewCliPrompter(bytes.NewBufferString(""), out).Progress("Compiling module...")
	assert.Equal(t, "Compiling module...\n", out.String())
}
