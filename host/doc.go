// Package host runs a single interactive guest module on wazero.
//
// An Executor turns compiled bytes into a Session: it wires two capture
// buffers as the guest's stdin and stdout, builds the WASI environment,
// registers the loader's host functions under their own namespace, and
// resolves the guest's entry points. Session.Prime performs the one-time
// bootstrap (seed line, handle_key, start) before interaction begins.
package host
