// Package registry implements the live capability routing table.
//
// A Registry maps every bound capability to exactly one module and keeps the
// reverse module -> capabilities index consistent with it. The only way to
// mutate it is Apply, which validates a whole batch of cuts before
// committing any of them.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	self     entities.ModuleID
	hasSelf  bool
	logger   *slog.Logger
	recorder ports.MetricsRecorder
	seed     []entities.ModuleEntry
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		logger:   slog.Default(),
		recorder: ports.NopRecorder{},
	}
}

// Option configures a Registry instance.
type Option func(*registryConfig)

// WithSelf declares the registry's own reserved module id. Capabilities bound
// to it are immutable and are never touched by the differ.
func WithSelf(id entities.ModuleID) Option {
	return func(c *registryConfig) {
		c.self = id
		c.hasSelf = true
	}
}

// WithLogger sets the logger used for batch reporting.
func WithLogger(l *slog.Logger) Option {
	return func(c *registryConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r ports.MetricsRecorder) Option {
	return func(c *registryConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithSeed pre-populates the registry. The entries go through the same
// validation as Apply, as one ADD batch.
func WithSeed(entries []entities.ModuleEntry) Option {
	return func(c *registryConfig) {
		c.seed = append(c.seed, entries...)
	}
}

// Registry is the live capability -> module table.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	config registryConfig
	log    *slog.Logger

	forward map[entities.CapabilityID]entities.ModuleID
	reverse map[entities.ModuleID][]entities.CapabilityID
	// position is the index of each bound capability inside its owner's
	// reverse slice.
	position map[entities.CapabilityID]int

	modules   []entities.ModuleID
	modulePos map[entities.ModuleID]int
}

var (
	_ ports.RegistryView = (*Registry)(nil)
	_ ports.BatchSink    = (*Registry)(nil)
)

// New creates a registry. It fails if the self id is malformed or the seed
// entries do not form a valid ADD batch.
func New(opts ...Option) (*Registry, error) {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasSelf {
		if err := cfg.self.Validate(); err != nil {
			return nil, fmt.Errorf("registry self id: %w", err)
		}
	}

	r := &Registry{
		config:    cfg,
		log:       cfg.logger.With("component", "registry"),
		forward:   make(map[entities.CapabilityID]entities.ModuleID),
		reverse:   make(map[entities.ModuleID][]entities.CapabilityID),
		position:  make(map[entities.CapabilityID]int),
		modulePos: make(map[entities.ModuleID]int),
	}

	if len(cfg.seed) > 0 {
		cuts := make([]entities.Cut, 0, len(cfg.seed))
		for _, e := range cfg.seed {
			cuts = append(cuts, entities.AddCut(e.ID, e.Capabilities...))
		}
		ops, err := r.validate(cuts)
		if err != nil {
			return nil, fmt.Errorf("seeding registry: %w", err)
		}
		r.commit(ops)
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Registry {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Self returns the reserved self id, if one was configured.
func (r *Registry) Self() (entities.ModuleID, bool) {
	return r.config.self, r.config.hasSelf
}

// ModuleFor returns the owner of c, or NullModule if c is unbound.
func (r *Registry) ModuleFor(c entities.CapabilityID) entities.ModuleRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.forward[c]; ok {
		return entities.Module(m)
	}
	return entities.NullModule
}

// Capabilities returns the capabilities bound to id. An unknown module
// yields an empty slice.
func (r *Registry) Capabilities(id entities.ModuleID) []entities.CapabilityID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.CapabilityID{}, r.reverse[id]...)
}

// ModuleIDs returns every module that owns at least one capability.
func (r *Registry) ModuleIDs() []entities.ModuleID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.ModuleID(nil), r.modules...)
}

// Modules enumerates every module with its capabilities.
func (r *Registry) Modules() []entities.ModuleEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entriesLocked()
}

// Len returns the number of bound capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forward)
}

// Snapshot returns an immutable copy of the current contents.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	forward := make(map[entities.CapabilityID]entities.ModuleID, len(r.forward))
	for c, m := range r.forward {
		forward[c] = m
	}
	return &Snapshot{
		forward: forward,
		entries: r.entriesLocked(),
		self:    r.config.self,
		hasSelf: r.config.hasSelf,
	}
}

func (r *Registry) entriesLocked() []entities.ModuleEntry {
	out := make([]entities.ModuleEntry, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, entities.ModuleEntry{
			ID:           m,
			Capabilities: append([]entities.CapabilityID(nil), r.reverse[m]...),
		})
	}
	return out
}

// bind records c as owned by m. c must be unbound.
func (r *Registry) bind(c entities.CapabilityID, m entities.ModuleID) {
	list, ok := r.reverse[m]
	if !ok {
		r.modulePos[m] = len(r.modules)
		r.modules = append(r.modules, m)
	}
	r.forward[c] = m
	r.position[c] = len(list)
	r.reverse[m] = append(list, c)
}

// unbind removes c from its owner by moving the owner's last capability into
// the vacated slot and truncating. c must be bound.
func (r *Registry) unbind(c entities.CapabilityID) {
	m := r.forward[c]
	list := r.reverse[m]
	i := r.position[c]
	last := len(list) - 1
	if i != last {
		moved := list[last]
		list[i] = moved
		r.position[moved] = i
	}
	list = list[:last]
	delete(r.position, c)
	delete(r.forward, c)

	if len(list) > 0 {
		r.reverse[m] = list
		return
	}
	delete(r.reverse, m)
	r.dropModule(m)
}

func (r *Registry) dropModule(m entities.ModuleID) {
	i := r.modulePos[m]
	last := len(r.modules) - 1
	if i != last {
		moved := r.modules[last]
		r.modules[i] = moved
		r.modulePos[moved] = i
	}
	r.modules = r.modules[:last]
	delete(r.modulePos, m)
}

// lookup is the shared read path used by Apply with the lock already held.
func (r *Registry) lookup(c entities.CapabilityID) (entities.ModuleID, bool) {
	m, ok := r.forward[c]
	return m, ok
}
