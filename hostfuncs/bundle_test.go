package hostfuncs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfo() HostInfo {
	return HostInfo{Name: "mosaic", Version: "0.1.0", Namespace: "mosaic", QuitKey: "q"}
}

func fixedSize(cols, rows int) SizeFunc {
	return func() (int, int, error) { return cols, rows, nil }
}

func TestMosaicBundle(t *testing.T) {
	reg, err := NewRegistry(
		WithMiddleware(Recover()),
		WithBundle(MosaicBundle(testInfo(), []byte(`{"type":"object"}`), fixedSize(120, 40))),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"host_info", "key_schema", "terminal_size"}, reg.Names())

	tests := []struct {
		function string
		payload  string
		want     string
	}{
		{"host_info", "", `{"name":"mosaic","version":"0.1.0","namespace":"mosaic","quit_key":"q"}`},
		{"key_schema", "{}", `{"schema":{"type":"object"}}`},
		{"terminal_size", "", `{"columns":120,"rows":40}`},
	}

	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			resp, err := reg.Invoke(context.Background(), tt.function, []byte(tt.payload))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(resp))
		})
	}
}

func TestMosaicBundle_InvalidSchemaBecomesNull(t *testing.T) {
	resp, err := MosaicBundle(testInfo(), []byte("not json"), nil)["key_schema"](context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema":null}`, string(resp))
}

func TestTerminalSize(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.Equal(t, TerminalSizeResponse{Columns: 80, Rows: 24}, TerminalSize(fixedSize(80, 24)))
	})

	t.Run("error", func(t *testing.T) {
		resp := TerminalSize(func() (int, int, error) { return 0, 0, errors.New("not a tty") })
		require.NotNil(t, resp.Error)
		assert.Equal(t, KindUnavailable, resp.Error.Kind)
		assert.Equal(t, "not a tty", resp.Error.Message)

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		e, ok := ParseError(data)
		require.True(t, ok)
		assert.Equal(t, "not a tty", e.Message)
	})

	t.Run("no size source", func(t *testing.T) {
		resp := TerminalSize(nil)
		require.NotNil(t, resp.Error)
		assert.Zero(t, resp.Columns)
	})
}

func TestWithBundle_DuplicateNames(t *testing.T) {
	bundle := MosaicBundle(testInfo(), nil, nil)
	_, err := NewRegistry(WithBundle(bundle), WithBundle(bundle))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate host function")
}
