package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCandidates(t *testing.T) {
	files := fstest.MapFS{
		"build/b.wasm":             {},
		"build/a.wasm":             {},
		"build/notes.txt":          {},
		"pkgs/x/release/x.wasm":    {},
		"pkgs/y/release/y.wasm":    {},
		"pkgs/y/release/sub/.keep": {},
	}

	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{
			name:       "literals kept in order even when missing",
			candidates: []string{"z.wasm", "build/a.wasm"},
			want:       []string{"z.wasm", "build/a.wasm"},
		},
		{
			name:       "pattern sorted",
			candidates: []string{"build/*.wasm"},
			want:       []string{"build/a.wasm", "build/b.wasm"},
		},
		{
			name:       "double star",
			candidates: []string{"pkgs/**/*.wasm"},
			want:       []string{"pkgs/x/release/x.wasm", "pkgs/y/release/y.wasm"},
		},
		{
			name:       "dot prefix",
			candidates: []string{"./build/{a,b}.wasm"},
			want:       []string{"build/a.wasm", "build/b.wasm"},
		},
		{
			name:       "no match dropped",
			candidates: []string{"out/*.wasm", "build/a.wasm"},
			want:       []string{"build/a.wasm"},
		},
		{
			name:       "duplicates removed",
			candidates: []string{"build/a.wasm", "build/*.wasm"},
			want:       []string{"build/a.wasm", "build/b.wasm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandCandidates(files, tt.candidates)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandCandidates_BadPattern(t *testing.T) {
	_, err := ExpandCandidates(fstest.MapFS{}, []string{"build/[a.wasm"})
	assert.Error(t, err)
}

func TestExpandCandidates_AbsolutePattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.wasm", "a.wasm", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	got, err := ExpandCandidates(fstest.MapFS{}, []string{filepath.Join(dir, "*.wasm")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.wasm"), filepath.Join(dir, "b.wasm")}, got)
}
