package registry

import (
	"context"
	"time"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
)

// op is one validated (capability, action, module) triple waiting for commit.
type op struct {
	capability entities.CapabilityID
	action     entities.Action
	module     entities.ModuleID
}

// staging overlays the effects of already validated triples of a batch on
// top of the committed state, so later cuts see earlier ones.
type staging struct {
	r     *Registry
	owner map[entities.CapabilityID]entities.ModuleRef
}

func (s *staging) ownerOf(c entities.CapabilityID) entities.ModuleRef {
	if ref, ok := s.owner[c]; ok {
		return ref
	}
	if m, ok := s.r.lookup(c); ok {
		return entities.Module(m)
	}
	return entities.NullModule
}

// Apply validates every cut of the batch against the current state, in
// order, and commits them all, or returns a *errors.BatchError and leaves
// the registry untouched.
func (r *Registry) Apply(ctx context.Context, cuts []entities.Cut) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	r.mu.Lock()
	ops, err := r.validate(cuts)
	if err == nil {
		r.commit(ops)
	}
	r.mu.Unlock()

	if err != nil {
		r.config.recorder.BatchRejected(errors.Code(err))
		r.log.WarnContext(ctx, "batch rejected", "cuts", len(cuts), "error", err)
		return err
	}

	took := time.Since(start)
	r.config.recorder.BatchApplied(len(cuts), took)
	r.log.DebugContext(ctx, "batch applied", "cuts", len(cuts), "changes", len(ops), "duration", took)
	return nil
}

// validate must be called with the write lock held (or before the registry
// is shared).
func (r *Registry) validate(cuts []entities.Cut) ([]op, error) {
	st := &staging{r: r, owner: make(map[entities.CapabilityID]entities.ModuleRef)}
	var ops []op

	for i, cut := range cuts {
		fail := func(c entities.CapabilityID, err error) ([]op, error) {
			return nil, &errors.BatchError{Index: i, Cut: cut, Capability: c, Err: err}
		}

		if !cut.Action.Valid() {
			return fail(entities.CapabilityID{}, &errors.InvalidCutError{Cut: cut, Reason: "unknown action"})
		}
		if len(cut.Capabilities) == 0 {
			return fail(entities.CapabilityID{}, &errors.InvalidCutError{Cut: cut, Reason: "no capabilities"})
		}
		target, err := r.checkTarget(cut)
		if err != nil {
			return fail(cut.Capabilities[0], err)
		}

		for _, c := range cut.Capabilities {
			if c.IsZero() {
				return fail(c, &errors.InvalidCutError{Cut: cut, Reason: "malformed capability " + c.String()})
			}
			if err := r.checkTriple(st.ownerOf(c), cut.Action, target, c); err != nil {
				return fail(c, err)
			}

			switch cut.Action {
			case entities.ActionAdd, entities.ActionReplace:
				st.owner[c] = entities.Module(target)
			case entities.ActionRemove:
				st.owner[c] = entities.NullModule
			}
			ops = append(ops, op{capability: c, action: cut.Action, module: target})
		}
	}
	return ops, nil
}

// checkTarget enforces the module kind each action requires.
func (r *Registry) checkTarget(cut entities.Cut) (entities.ModuleID, error) {
	if cut.Action == entities.ActionRemove {
		if !cut.Target.IsNull() {
			return "", &errors.InvalidModuleError{Module: cut.Target, Action: cut.Action, Reason: "remove must target the null module"}
		}
		return "", nil
	}

	id, ok := cut.Target.ID()
	if !ok {
		return "", &errors.InvalidModuleError{Module: cut.Target, Action: cut.Action, Reason: "a concrete module is required"}
	}
	if err := id.Validate(); err != nil {
		return "", &errors.InvalidModuleError{Module: cut.Target, Action: cut.Action, Reason: err.Error()}
	}
	return id, nil
}

func (r *Registry) checkTriple(owner entities.ModuleRef, action entities.Action, target entities.ModuleID, c entities.CapabilityID) error {
	switch action {
	case entities.ActionAdd:
		if id, bound := owner.ID(); bound {
			return &errors.CapabilityAlreadyRegisteredError{Capability: c, Owner: id}
		}
	case entities.ActionReplace:
		id, bound := owner.ID()
		switch {
		case !bound:
			return &errors.CapabilityNotRegisteredError{Capability: c}
		case r.isSelf(id):
			return &errors.ImmutableCapabilityError{Capability: c}
		case id == target:
			return &errors.NoOpReplaceError{Capability: c, Module: target}
		}
	case entities.ActionRemove:
		id, bound := owner.ID()
		switch {
		case !bound:
			return &errors.CapabilityNotRegisteredError{Capability: c}
		case r.isSelf(id):
			return &errors.ImmutableCapabilityError{Capability: c}
		}
	}
	return nil
}

func (r *Registry) isSelf(id entities.ModuleID) bool {
	return r.config.hasSelf && id == r.config.self
}

// commit applies validated ops. It cannot fail.
func (r *Registry) commit(ops []op) {
	for _, o := range ops {
		switch o.action {
		case entities.ActionAdd:
			r.bind(o.capability, o.module)
		case entities.ActionReplace:
			r.unbind(o.capability)
			r.bind(o.capability, o.module)
		case entities.ActionRemove:
			r.unbind(o.capability)
		}
	}
}
