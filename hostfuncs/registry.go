package hostfuncs

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Registry is an immutable set of named host functions. Every handler is
// wrapped in the registry's middleware when the registry is built.
type Registry struct {
	handlers map[string]ByteHandler
}

// RegistryOption configures a registry under construction.
type RegistryOption func(*registryBuilder)

type registryBuilder struct {
	handlers   map[string]ByteHandler
	middleware []Middleware
	errs       []error
}

func (b *registryBuilder) add(name string, h ByteHandler) {
	switch {
	case name == "":
		b.errs = append(b.errs, errors.New("host function name cannot be empty"))
	case b.handlers[name] != nil:
		b.errs = append(b.errs, fmt.Errorf("duplicate host function %q", name))
	default:
		b.handlers[name] = h
	}
}

// NewRegistry builds a registry. All registration problems are reported
// together.
//
//	reg, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.Recover()),
//	    hostfuncs.WithBundle(hostfuncs.MosaicBundle(info, schema, size)),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{handlers: make(map[string]ByteHandler)}
	for _, opt := range opts {
		opt(b)
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}

	r := &Registry{handlers: make(map[string]ByteHandler, len(b.handlers))}
	for name, h := range b.handlers {
		r.handlers[name] = chain(h, b.middleware)
	}
	return r, nil
}

// Invoke calls the handler registered under name. An unknown name is answered
// with an unknown_function envelope.
func (r *Registry) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	h, ok := r.handlers[name]
	if !ok {
		return UnknownFunction(name).JSON(), nil
	}
	return h(WithFunction(ctx, name), payload)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.handlers))
}

// WithByteHandler registers a raw handler.
func WithByteHandler(name string, h ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		b.add(name, h)
	}
}

// WithHandler registers a typed host function.
func WithHandler[Req any, Resp any](name string, fn HostFunc[Req, Resp]) RegistryOption {
	return WithByteHandler(name, JSONHandler(fn))
}

// WithBundle registers every handler of a bundle.
func WithBundle(bundle Bundle) RegistryOption {
	return func(b *registryBuilder) {
		for _, name := range slices.Sorted(maps.Keys(bundle)) {
			b.add(name, bundle[name])
		}
	}
}

// WithMiddleware appends middleware applied to every handler.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
