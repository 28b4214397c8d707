package hostfuncs

import "context"

type functionKey struct{}

// WithFunction records the host function being invoked.
func WithFunction(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, functionKey{}, name)
}

// FunctionName returns the host function recorded in ctx, or "" outside a
// registry call.
func FunctionName(ctx context.Context) string {
	name, _ := ctx.Value(functionKey{}).(string)
	return name
}
