package hostfuncs

import (
	"context"
	"encoding/json"
)

// Bundle is a named set of related host functions.
type Bundle map[string]ByteHandler

// SizeFunc reports the terminal size in columns and rows.
type SizeFunc func() (columns, rows int, err error)

// HostInfo describes the loader to guests.
type HostInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Namespace string `json:"namespace"`
	QuitKey   string `json:"quit_key"`
}

// EmptyRequest is the request of host functions that take no arguments.
type EmptyRequest struct{}

// KeySchemaResponse carries the JSON schema of the key event lines written to
// guest stdin.
type KeySchemaResponse struct {
	Schema json.RawMessage `json:"schema"`
}

// TerminalSizeResponse is the reply of terminal_size.
type TerminalSizeResponse struct {
	Error   *ErrorResponse `json:"error,omitempty"`
	Columns int            `json:"columns"`
	Rows    int            `json:"rows"`
}

// TerminalSize queries size. A failure is reported inside the response.
func TerminalSize(size SizeFunc) TerminalSizeResponse {
	if size == nil {
		e := Unavailable("terminal size unavailable")
		return TerminalSizeResponse{Error: &e}
	}
	cols, rows, err := size()
	if err != nil {
		e := Unavailable("%v", err)
		return TerminalSizeResponse{Error: &e}
	}
	return TerminalSizeResponse{Columns: cols, Rows: rows}
}

// MosaicBundle returns host_info, key_schema and terminal_size. Invalid
// keySchema bytes are served as null.
func MosaicBundle(info HostInfo, keySchema []byte, size SizeFunc) Bundle {
	schema := json.RawMessage(keySchema)
	if !json.Valid(schema) {
		schema = json.RawMessage("null")
	}

	return Bundle{
		"host_info": JSONHandler(func(context.Context, EmptyRequest) HostInfo {
			return info
		}),
		"key_schema": JSONHandler(func(context.Context, EmptyRequest) KeySchemaResponse {
			return KeySchemaResponse{Schema: schema}
		}),
		"terminal_size": JSONHandler(func(context.Context, EmptyRequest) TerminalSizeResponse {
			return TerminalSize(size)
		}),
	}
}
