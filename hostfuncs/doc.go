// Package hostfuncs implements the JSON host functions offered to guests under
// the mosaic namespace. Nothing here depends on a WASM runtime; the wazero
// adapter moves request and response bytes across guest memory.
package hostfuncs
