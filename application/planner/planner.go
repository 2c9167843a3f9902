// Package planner runs the three diff kinds against a registry view and
// groups their output into a reviewable plan.
//
// Preview is lenient: a kind with nothing to do is reported as a notice and
// the other kinds still run. PlanStrict runs a single kind and treats an
// empty result as an error. Both are thin wrappers over one core that takes
// the policy as a parameter.
package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/facet/application/diff"
	"github.com/reglet-dev/facet/application/filter"
	"github.com/reglet-dev/facet/application/group"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
	"github.com/reglet-dev/facet/domain/ports"
)

// Policy selects how a kind that produced nothing is handled.
type Policy int

const (
	// Lenient turns an empty kind into a Notice.
	Lenient Policy = iota

	// Strict turns an empty kind into an *errors.EmptyResultError.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// NothingToDo is the message of every empty-kind notice.
const NothingToDo = "nothing to do"

// plannerConfig holds configuration for the Planner.
type plannerConfig struct {
	logger   *slog.Logger
	notices  ports.NoticeHandler
	recorder ports.MetricsRecorder
}

func defaultPlannerConfig() plannerConfig {
	return plannerConfig{
		logger:   slog.Default(),
		recorder: ports.NopRecorder{},
	}
}

// Option configures a Planner.
type Option func(*plannerConfig)

// WithLogger sets the logger. It also backs the default notice handler.
func WithLogger(l *slog.Logger) Option {
	return func(c *plannerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNoticeHandler sets the handler receiving notices and conflict warnings.
// Default is a SlogNoticeHandler on the planner's logger.
func WithNoticeHandler(h ports.NoticeHandler) Option {
	return func(c *plannerConfig) {
		c.notices = h
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r ports.MetricsRecorder) Option {
	return func(c *plannerConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Planner orchestrates diff, filter and group. It holds no state between
// calls and is safe for concurrent use.
type Planner struct {
	config plannerConfig
	log    *slog.Logger
}

// New creates a Planner.
func New(opts ...Option) *Planner {
	cfg := defaultPlannerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.With("component", "planner")
	if cfg.notices == nil {
		cfg.notices = NewSlogNoticeHandler(log)
	}
	return &Planner{config: cfg, log: log}
}

// Preview runs every kind with its own filter set and groups the union.
// Filter conflicts and malformed descriptors fail the whole call; a kind
// with nothing to do only adds a notice.
func (p *Planner) Preview(ctx context.Context, view ports.RegistryView, desired []entities.ModuleDescriptor, filters entities.KindFilters) (*entities.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := filter.ValidateKinds(filters); err != nil {
		return nil, err
	}
	if err := ValidateDescriptors(desired); err != nil {
		return nil, err
	}

	plan := &entities.Plan{}
	var raw []entities.Cut
	for _, kind := range entities.Kinds() {
		cuts, notice, err := p.run(ctx, kind, Lenient, view, desired, filters.For(kind))
		if err != nil {
			return nil, err
		}
		if notice != nil {
			plan.Notices = append(plan.Notices, *notice)
			p.config.notices.OnNotice(*notice)
		}
		raw = append(raw, cuts...)
	}

	plan.Cuts, plan.Conflicts = group.Group(raw)
	for _, w := range plan.Conflicts {
		p.config.notices.OnConflict(w)
	}
	if len(plan.Conflicts) > 0 {
		p.config.recorder.ConflictsObserved(len(plan.Conflicts))
	}

	s := plan.Summary()
	p.log.InfoContext(ctx, "plan computed",
		"add", s.Add, "replace", s.Replace, "remove", s.Remove,
		"conflicts", s.Conflicts, "notices", len(plan.Notices))
	return plan, nil
}

// PlanStrict runs a single kind. Nothing to do is an
// *errors.EmptyResultError.
func (p *Planner) PlanStrict(ctx context.Context, kind entities.Kind, view ports.RegistryView, desired []entities.ModuleDescriptor, fs entities.FilterSet) ([]entities.Cut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown diff kind %q", kind)
	}
	if err := filter.Validate(fs); err != nil {
		if conflict, ok := err.(*errors.FilterConflictError); ok {
			conflict.Kind = kind
		}
		return nil, err
	}
	if err := ValidateDescriptors(desired); err != nil {
		return nil, err
	}

	cuts, _, err := p.run(ctx, kind, Strict, view, desired, fs)
	return cuts, err
}

// run is the policy-parameterized core shared by Preview and PlanStrict.
func (p *Planner) run(ctx context.Context, kind entities.Kind, policy Policy, view ports.RegistryView, desired []entities.ModuleDescriptor, fs entities.FilterSet) ([]entities.Cut, *entities.Notice, error) {
	cuts, produced := diff.Run(kind, view, desired, fs)
	p.config.recorder.KindPlanned(kind, len(cuts))
	p.log.DebugContext(ctx, "kind diffed", "kind", kind, "policy", policy, "cuts", len(cuts))

	if produced {
		return cuts, nil, nil
	}
	if policy == Strict {
		return nil, nil, &errors.EmptyResultError{Kind: kind}
	}
	return nil, &entities.Notice{Kind: kind, Message: NothingToDo}, nil
}

// ValidateDescriptors rejects descriptors whose id cannot be a cut target.
func ValidateDescriptors(desired []entities.ModuleDescriptor) error {
	for _, d := range desired {
		if err := d.ID.Validate(); err != nil {
			return &errors.InvalidModuleError{Module: entities.Module(d.ID), Reason: err.Error()}
		}
	}
	return nil
}
