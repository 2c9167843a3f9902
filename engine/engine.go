// Package engine wires manifest loading, capability enumeration, planning,
// confirmation and persistence around a live registry.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/facet/application/planner"
	"github.com/reglet-dev/facet/application/source"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
	"github.com/reglet-dev/facet/domain/ports"
	"github.com/reglet-dev/facet/infrastructure/prompter"
	"github.com/reglet-dev/facet/infrastructure/wazero"
	"github.com/reglet-dev/facet/registry"
)

// engineConfig holds configuration for the Engine.
type engineConfig struct {
	logger      *slog.Logger
	source      ports.CapabilitySource
	planner     *planner.Planner
	prompter    ports.Prompter
	store       ports.StateStore
	autoApprove bool
}

func defaultEngineConfig() engineConfig {
	return engineConfig{logger: slog.Default()}
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSource sets how module specs become capability sets. The default
// unions inline capabilities with wasm exports.
func WithSource(s ports.CapabilitySource) Option {
	return func(c *engineConfig) {
		c.source = s
	}
}

// WithPlanner sets the planner.
func WithPlanner(p *planner.Planner) Option {
	return func(c *engineConfig) {
		c.planner = p
	}
}

// WithPrompter sets who confirms plans before they are applied.
func WithPrompter(p ports.Prompter) Option {
	return func(c *engineConfig) {
		c.prompter = p
	}
}

// WithStore persists the registry after every applied plan.
func WithStore(s ports.StateStore) Option {
	return func(c *engineConfig) {
		c.store = s
	}
}

// WithAutoApprove skips confirmation.
func WithAutoApprove(enabled bool) Option {
	return func(c *engineConfig) {
		c.autoApprove = enabled
	}
}

// Engine reconciles a registry towards manifests.
type Engine struct {
	reg    *registry.Registry
	config engineConfig
	log    *slog.Logger
}

// New creates an Engine around reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.source == nil {
		cfg.source = source.NewMultiSource(wazero.NewExportSource(wazero.WithLogger(cfg.logger)))
	}
	if cfg.planner == nil {
		cfg.planner = planner.New(planner.WithLogger(cfg.logger))
	}
	return &Engine{
		reg:    reg,
		config: cfg,
		log:    cfg.logger.With("component", "engine"),
	}
}

// Registry returns the registry the engine drives.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Descriptors enumerates the desired modules of m.
func (e *Engine) Descriptors(ctx context.Context, m *entities.Manifest) ([]entities.ModuleDescriptor, error) {
	return source.Descriptors(ctx, e.config.source, m)
}

// Plan previews every diff kind of m against a snapshot of the registry.
func (e *Engine) Plan(ctx context.Context, m *entities.Manifest) (*entities.Plan, error) {
	desired, err := e.Descriptors(ctx, m)
	if err != nil {
		return nil, err
	}
	filters, err := m.Filters.KindFilters()
	if err != nil {
		return nil, &errors.ManifestError{Field: "filters", Err: err}
	}
	return e.config.planner.Preview(ctx, e.reg.Snapshot(), desired, filters)
}

// PlanKind runs one diff kind strictly: an empty result is an error.
func (e *Engine) PlanKind(ctx context.Context, m *entities.Manifest, kind entities.Kind) ([]entities.Cut, error) {
	desired, err := e.Descriptors(ctx, m)
	if err != nil {
		return nil, err
	}
	filters, err := m.Filters.KindFilters()
	if err != nil {
		return nil, &errors.ManifestError{Field: "filters", Err: err}
	}
	return e.config.planner.PlanStrict(ctx, kind, e.reg.Snapshot(), desired, filters.For(kind))
}

// Apply commits plan after confirmation and persists the result. It
// reports whether the plan was applied; an empty or declined plan is not.
func (e *Engine) Apply(ctx context.Context, plan *entities.Plan) (bool, error) {
	if plan.IsEmpty() {
		e.log.InfoContext(ctx, "nothing to apply")
		return false, nil
	}

	if !e.config.autoApprove {
		if e.config.prompter == nil || !e.config.prompter.IsInteractive() {
			return false, prompter.ErrNonInteractive
		}
		ok, err := e.config.prompter.ConfirmPlan(plan)
		if err != nil {
			return false, fmt.Errorf("confirming plan: %w", err)
		}
		if !ok {
			e.log.InfoContext(ctx, "plan declined")
			return false, nil
		}
	}

	if err := e.reg.Apply(ctx, plan.Cuts); err != nil {
		return false, err
	}

	if e.config.store != nil {
		if err := e.config.store.Save(e.reg.Modules()); err != nil {
			return true, fmt.Errorf("plan applied but state not saved to %s: %w", e.config.store.Path(), err)
		}
	}

	s := plan.Summary()
	e.log.InfoContext(ctx, "plan applied", "add", s.Add, "replace", s.Replace, "remove", s.Remove)
	return true, nil
}
