package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// LogMessageWire is the JSON wire format for a log record sent by a guest
// through the log_message host function.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp,omitzero"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "group", "any"
	Value string `json:"value"` // String representation of the value
}

// NewLogMessage builds the wire form of a record.
func NewLogMessage(level slog.Level, msg string, attrs ...slog.Attr) LogMessageWire {
	m := LogMessageWire{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
	}
	for _, a := range attrs {
		m.Attrs = append(m.Attrs, toLogAttrWire(a))
	}
	return m
}

// Relay re-emits a guest record through logger, tagged with source=guest.
// Unknown levels are logged at info.
func Relay(ctx context.Context, logger *slog.Logger, msg LogMessageWire) {
	level, err := ParseLevel(msg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if !logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(msg.Attrs)+2)
	attrs = append(attrs, slog.String("source", "guest"))
	if !msg.Timestamp.IsZero() {
		attrs = append(attrs, slog.Time("guest_time", msg.Timestamp))
	}
	for _, w := range msg.Attrs {
		attrs = append(attrs, fromLogAttrWire(w))
	}
	logger.LogAttrs(ctx, level, msg.Message, attrs...)
}

// toLogAttrWire converts a slog.Attr to LogAttrWire.
func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{
		Key: attr.Key,
	}
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(attr.Value.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = fmt.Sprintf("%f", attr.Value.Float64())
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = attr.Value.Duration().String()
	case slog.KindAny:
		v := attr.Value.Any()
		switch {
		case v == nil:
			wire.Type = "any"
			wire.Value = "<nil>"
		default:
			if err, isErr := v.(error); isErr {
				wire.Type = "error"
				wire.Value = err.Error()
			} else if data, marshalErr := json.Marshal(v); marshalErr == nil {
				wire.Type = "json"
				wire.Value = string(data)
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", v)
			}
		}
	case slog.KindGroup:
		// Groups are sent flat, as their string form.
		wire.Type = "group"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	default:
		wire.Type = "any"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	}
	return wire
}

// fromLogAttrWire turns a wire attribute back into a typed slog.Attr. Values
// that fail to parse are kept as strings.
func fromLogAttrWire(w LogAttrWire) slog.Attr {
	switch w.Type {
	case "int64":
		if n, err := strconv.ParseInt(w.Value, 10, 64); err == nil {
			return slog.Int64(w.Key, n)
		}
	case "uint64":
		if n, err := strconv.ParseUint(w.Value, 10, 64); err == nil {
			return slog.Uint64(w.Key, n)
		}
	case "bool":
		if b, err := strconv.ParseBool(w.Value); err == nil {
			return slog.Bool(w.Key, b)
		}
	case "float64":
		if f, err := strconv.ParseFloat(w.Value, 64); err == nil {
			return slog.Float64(w.Key, f)
		}
	case "time":
		if ts, err := time.Parse(time.RFC3339Nano, w.Value); err == nil {
			return slog.Time(w.Key, ts)
		}
	case "duration":
		if d, err := time.ParseDuration(w.Value); err == nil {
			return slog.Duration(w.Key, d)
		}
	case "json":
		if json.Valid([]byte(w.Value)) {
			return slog.Any(w.Key, json.RawMessage(w.Value))
		}
	}
	return slog.String(w.Key, w.Value)
}
