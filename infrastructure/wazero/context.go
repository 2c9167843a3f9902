package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// contextKey is a private type for context keys.
type contextKey struct {
	name string
}

var callerKey = &contextKey{name: "caller_module"}

// WithCaller records the name of the guest module making a host call.
func WithCaller(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, callerKey, name)
}

// CallerFromContext retrieves the guest module name from the context.
func CallerFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(callerKey).(string)
	return name, ok
}

// callerName extracts the caller from context, falling back to the module name.
func callerName(ctx context.Context, mod api.Module) string {
	if name, ok := CallerFromContext(ctx); ok {
		return name
	}
	if mod == nil {
		return ""
	}
	return mod.Name()
}
