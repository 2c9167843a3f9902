package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
	"github.com/reglet-dev/facet/domain/ports"
)

// Router is an immutable set of module handlers in front of a registry
// view. Once created via NewRouter, handlers cannot be added or removed.
type Router struct {
	view     ports.RegistryView
	handlers map[entities.ModuleID]Handler
	modules  []entities.ModuleID // sorted for consistent iteration
}

// routerBuilder accumulates configuration during router construction.
type routerBuilder struct {
	handlers   map[entities.ModuleID]Handler
	middleware []Middleware
	errors     []error
}

// Option is a functional option for configuring a Router.
type Option func(*routerBuilder)

// WithHandler registers the handler serving module id.
func WithHandler(id entities.ModuleID, h Handler) Option {
	return func(b *routerBuilder) {
		if err := b.addHandler(id, h); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the router.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) Option {
	return func(b *routerBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// NewRouter creates a Router resolving owners through view.
// Returns an error if a module id is invalid or registered twice.
func NewRouter(view ports.RegistryView, opts ...Option) (*Router, error) {
	if view == nil {
		return nil, fmt.Errorf("router needs a registry view")
	}
	b := &routerBuilder{handlers: make(map[entities.ModuleID]Handler)}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0] // Return first error
	}

	modules := make([]entities.ModuleID, 0, len(b.handlers))
	wrapped := make(map[entities.ModuleID]Handler, len(b.handlers))
	for id, h := range b.handlers {
		modules = append(modules, id)
		// Apply middleware in reverse order so first middleware wraps outermost
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		wrapped[id] = h
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i] < modules[j] })

	return &Router{view: view, handlers: wrapped, modules: modules}, nil
}

func (b *routerBuilder) addHandler(id entities.ModuleID, h Handler) error {
	if err := id.Validate(); err != nil {
		return fmt.Errorf("handler module: %w", err)
	}
	if h == nil {
		return fmt.Errorf("handler for %s is nil", id)
	}
	if _, exists := b.handlers[id]; exists {
		return fmt.Errorf("duplicate handler for module %q", id)
	}
	b.handlers[id] = h
	return nil
}

// Route returns the module c currently routes to.
func (r *Router) Route(c entities.CapabilityID) (entities.ModuleID, error) {
	id, ok := r.view.ModuleFor(c).ID()
	if !ok {
		return "", &errors.CapabilityNotRegisteredError{Capability: c}
	}
	return id, nil
}

// Invoke forwards payload to the handler of the module owning c.
func (r *Router) Invoke(ctx context.Context, c entities.CapabilityID, payload []byte) ([]byte, error) {
	id, err := r.Route(c)
	if err != nil {
		return nil, err
	}
	h, ok := r.handlers[id]
	if !ok {
		return nil, &NoHandlerError{Module: id, Capability: c}
	}
	return h(NewCallContext(ctx, c, id), payload)
}

// Has returns true if a handler for id is registered.
func (r *Router) Has(id entities.ModuleID) bool {
	_, ok := r.handlers[id]
	return ok
}

// Modules returns a sorted list of the modules with handlers.
func (r *Router) Modules() []entities.ModuleID {
	return append([]entities.ModuleID(nil), r.modules...)
}

// Unserved lists modules of the view that own capabilities but have no
// handler, in view order.
func (r *Router) Unserved() []entities.ModuleID {
	var out []entities.ModuleID
	for _, e := range r.view.Modules() {
		if !r.Has(e.ID) {
			out = append(out, e.ID)
		}
	}
	return out
}
