// Package keyenc implements the line-oriented wire encoding of key events
// delivered to a guest's standard input.
//
// Each event is one compact JSON object terminated by "\r\n":
//
//	{"code":"char","char":"a","modifiers":["ctrl"]}
//
// The encoding is lossless: Decode(Encode(k)) == k for every valid event.
package keyenc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mosaic-dev/loader/application/schema"
	"github.com/mosaic-dev/loader/domain/entities"
)

// LineTerminator ends every encoded event.
const LineTerminator = "\r\n"

// Encode serializes k as a single terminated line.
func Encode(k entities.KeyEvent) ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, fmt.Errorf("keyenc: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(k); err != nil {
		return nil, fmt.Errorf("keyenc: failed to marshal key: %w", err)
	}

	line := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return append(line, LineTerminator...), nil
}

// Decode parses one encoded line. The terminator is optional.
func Decode(line []byte) (entities.KeyEvent, error) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var k entities.KeyEvent
	if err := dec.Decode(&k); err != nil {
		return entities.KeyEvent{}, fmt.Errorf("keyenc: failed to unmarshal key: %w", err)
	}
	if dec.More() {
		return entities.KeyEvent{}, fmt.Errorf("keyenc: trailing data after key")
	}
	if err := k.Validate(); err != nil {
		return entities.KeyEvent{}, fmt.Errorf("keyenc: %w", err)
	}
	return k, nil
}

// Schema returns the JSON schema describing one encoded line.
func Schema() ([]byte, error) {
	return schema.KeyEventSchema()
}
