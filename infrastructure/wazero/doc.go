// Package wazero registers the loader's host functions with a wazero runtime.
//
// Registry handlers use a packed i64 calling convention: the upper 32 bits
// carry a pointer into guest memory and the lower 32 bits a length. The host
// reads the JSON request from that range, and writes the JSON response into a
// buffer obtained from the guest's "allocate" export.
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.MosaicBundle(info, schema, size)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	err = wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithCustomHandler(wazero.MagicNumberHandler(wazero.MagicNumber)),
//	    wazero.WithCustomHandler(wazero.LogMessageHandler(logger, 0)),
//	)
//
// Custom handlers cover functions outside the packed pattern, such as
// magic_number, which takes nothing and returns an i32.
package wazero
