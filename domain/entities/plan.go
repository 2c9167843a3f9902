package entities

// Notice is a recoverable report that a diff kind had nothing to do.
type Notice struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// ConflictWarning reports a capability claimed by more than one grouped cut.
// It never blocks a plan from being applied.
type ConflictWarning struct {
	Capability CapabilityID `json:"capability" yaml:"capability"`
	Module     ModuleRef    `json:"module" yaml:"module"`
	Action     Action       `json:"action" yaml:"action"`
}

// Plan is the grouped output of a reconciliation preview.
type Plan struct {
	Cuts      []Cut             `json:"cuts" yaml:"cuts"`
	Conflicts []ConflictWarning `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Notices   []Notice          `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// IsEmpty reports whether the plan holds no cuts.
func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.Cuts) == 0
}

// PlanSummary counts the capabilities touched per action.
type PlanSummary struct {
	Add       int `json:"add"`
	Replace   int `json:"replace"`
	Remove    int `json:"remove"`
	Conflicts int `json:"conflicts"`
}

// Summary counts the capabilities touched per action.
func (p *Plan) Summary() PlanSummary {
	var s PlanSummary
	if p == nil {
		return s
	}
	for _, c := range p.Cuts {
		switch c.Action {
		case ActionAdd:
			s.Add += len(c.Capabilities)
		case ActionReplace:
			s.Replace += len(c.Capabilities)
		case ActionRemove:
			s.Remove += len(c.Capabilities)
		}
	}
	s.Conflicts = len(p.Conflicts)
	return s
}
