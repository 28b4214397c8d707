package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-dev/loader/domain/entities"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{
			name:     "string",
			attr:     slog.String("key", "value"),
			wantType: "string",
			wantVal:  "value",
		},
		{
			name:     "int64",
			attr:     slog.Int64("key", 123),
			wantType: "int64",
			wantVal:  "123",
		},
		{
			name:     "bool",
			attr:     slog.Bool("key", true),
			wantType: "bool",
			wantVal:  "true",
		},
		{
			name:     "float64",
			attr:     slog.Float64("key", 1.23),
			wantType: "float64",
			wantVal:  "1.230000",
		},
		{
			name:     "time",
			attr:     slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantType: "time",
			wantVal:  "2024-01-01T00:00:00Z",
		},
		{
			name:     "duration",
			attr:     slog.Duration("key", 1*time.Hour),
			wantType: "duration",
			wantVal:  "1h0m0s",
		},
		{
			name:     "error",
			attr:     slog.Any("key", errors.New("test error")),
			wantType: "error",
			wantVal:  "test error",
		},
		{
			name:     "nil",
			attr:     slog.Any("key", nil),
			wantType: "any",
			wantVal:  "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

func TestToLogAttrWire_JSON(t *testing.T) {
	// Test structured object that should be serialized as JSON
	type MyStruct struct {
		Field string `json:"field"`
	}
	obj := MyStruct{Field: "data"}
	attr := slog.Any("key", obj)

	wire := toLogAttrWire(attr)
	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "json", wire.Type)

	var decoded MyStruct
	err := json.Unmarshal([]byte(wire.Value), &decoded)
	require.NoError(t, err)
	assert.Equal(t, obj, decoded)
}

func TestToLogAttrWire_LogValuer(t *testing.T) {
	// Test types that implement LogValuer
	attr := slog.Any("key", logValuer{val: "resolved"})
	wire := toLogAttrWire(attr)

	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "string", wire.Type)
	assert.Equal(t, "resolved", wire.Value)
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler(WithOutput(io.Discard))
	assert.NotNil(t, h)
	assert.True(t, h.Enabled(context.TODO(), slog.LevelWarn))
	assert.False(t, h.Enabled(context.TODO(), slog.LevelInfo))
}

func TestNewHandler_Options(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(
		WithOutput(&buf),
		WithLevel(slog.LevelDebug),
		WithFormat(FormatJSON),
		WithSource(true),
	)
	assert.True(t, h.Enabled(context.TODO(), slog.LevelDebug))

	slog.New(h).Debug("hello", "k", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Contains(t, rec, "source")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		" INFO": slog.LevelInfo,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetup_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.log")
	cfg := entities.NewConfig(entities.WithLogLevel("info"))
	cfg.LogFile = path
	cfg.LogFormat = FormatJSON

	logger, closer, err := Setup(cfg)
	require.NoError(t, err)
	logger.Info("session started", "module", "hello.wasm")
	logger.Debug("filtered")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"session started"`)
	assert.NotContains(t, string(data), "filtered")
}

func TestSetup_InvalidLevel(t *testing.T) {
	cfg := entities.DefaultConfig()
	cfg.LogLevel = "verbose"
	_, _, err := Setup(cfg)
	assert.Error(t, err)
}

func TestRelay(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug)))

	msg := NewLogMessage(slog.LevelWarn, "guest says hi",
		slog.Int("count", 3),
		slog.Bool("ok", true),
		slog.String("name", "hello"),
	)
	Relay(context.Background(), logger, msg)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "guest says hi", rec["msg"])
	assert.Equal(t, "guest", rec["source"])
	assert.Equal(t, float64(3), rec["count"])
	assert.Equal(t, true, rec["ok"])
	assert.Equal(t, "hello", rec["name"])
}

func TestRelay_UnknownLevelAndFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(WithOutput(&buf), WithLevel(slog.LevelInfo)))

	Relay(context.Background(), logger, LogMessageWire{Level: "CHATTY", Message: "defaults to info"})
	Relay(context.Background(), logger, LogMessageWire{Level: "DEBUG", Message: "dropped"})

	out := buf.String()
	assert.Contains(t, out, "defaults to info")
	assert.Contains(t, out, "level=INFO")
	assert.NotContains(t, out, "dropped")
}

func TestFromLogAttrWire_Fallback(t *testing.T) {
	attr := fromLogAttrWire(LogAttrWire{Key: "n", Type: "int64", Value: "not-a-number"})
	assert.Equal(t, slog.KindString, attr.Value.Kind())
	assert.Equal(t, "not-a-number", attr.Value.String())
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(WithOutput(&buf), WithLevel(slog.LevelDebug)))
	w := NewWriter(logger, slog.LevelDebug)

	n, err := w.Write([]byte("first line\nsecond "))
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	assert.Contains(t, buf.String(), `msg="first line"`)
	assert.Contains(t, buf.String(), "stream=stderr")
	assert.NotContains(t, buf.String(), "second")

	_, _ = w.Write([]byte("half\r\n"))
	assert.Contains(t, buf.String(), `msg="second half"`)

	_, _ = w.Write([]byte("tail"))
	w.Flush()
	assert.Contains(t, buf.String(), "msg=tail")
}
