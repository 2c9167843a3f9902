package dispatch

import (
	"context"
	"sync"

	"github.com/reglet-dev/facet/domain/entities"
)

// CallContext wraps a standard context.Context with the routing decision
// of the current invocation.
type CallContext interface {
	context.Context

	// Capability returns the invoked capability.
	Capability() entities.CapabilityID

	// Module returns the module the capability was routed to.
	Module() entities.ModuleID

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing CallContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type callContext struct {
	context.Context
	capability entities.CapabilityID
	module     entities.ModuleID

	mu     sync.Mutex
	values map[any]any
}

// NewCallContext creates a CallContext wrapping ctx.
func NewCallContext(ctx context.Context, c entities.CapabilityID, m entities.ModuleID) CallContext {
	return &callContext{Context: ctx, capability: c, module: m}
}

func (c *callContext) Capability() entities.CapabilityID { return c.capability }

func (c *callContext) Module() entities.ModuleID { return c.module }

func (c *callContext) SetValue(key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = value
}

func (c *callContext) GetValue(key any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// CallContextFrom returns ctx as a CallContext if it is one.
func CallContextFrom(ctx context.Context) (CallContext, bool) {
	cc, ok := ctx.(CallContext)
	return cc, ok
}
