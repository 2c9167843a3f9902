package entities

// RiskLevel represents how disruptive a cut or plan is to live routing.
type RiskLevel int

const (
	RiskLevelLow    RiskLevel = iota // New routes only
	RiskLevelMedium                  // Live routes move or disappear
	RiskLevelHigh                    // Broad or critical routing changes
)

// String returns the human-readable name of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLevelLow:
		return "Low"
	case RiskLevelMedium:
		return "Medium"
	case RiskLevelHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// DefaultBroadThreshold is the number of capabilities from which a single
// replace or remove cut counts as broad.
const DefaultBroadThreshold = 16

// riskAssessorConfig holds configuration for the RiskAssessor.
type riskAssessorConfig struct {
	broadThreshold int
	critical       map[ModuleID]struct{}
}

func defaultRiskAssessorConfig() riskAssessorConfig {
	return riskAssessorConfig{
		broadThreshold: DefaultBroadThreshold,
		critical:       make(map[ModuleID]struct{}),
	}
}

// RiskAssessorOption configures a RiskAssessor instance.
type RiskAssessorOption func(*riskAssessorConfig)

// WithBroadThreshold sets how many capabilities make a replace or remove
// cut broad. Values below 1 are ignored.
func WithBroadThreshold(n int) RiskAssessorOption {
	return func(c *riskAssessorConfig) {
		if n > 0 {
			c.broadThreshold = n
		}
	}
}

// WithCriticalModules marks modules whose routes deserve extra scrutiny.
func WithCriticalModules(ids ...ModuleID) RiskAssessorOption {
	return func(c *riskAssessorConfig) {
		for _, id := range ids {
			c.critical[id] = struct{}{}
		}
	}
}

// RiskAssessor grades cuts before they are applied.
type RiskAssessor struct {
	config riskAssessorConfig
}

// NewRiskAssessor creates a new RiskAssessor with the given options.
func NewRiskAssessor(opts ...RiskAssessorOption) *RiskAssessor {
	cfg := defaultRiskAssessorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RiskAssessor{config: cfg}
}

// AssessCut grades a single cut.
func (r *RiskAssessor) AssessCut(c Cut) RiskLevel {
	id, _ := c.Target.ID()
	_, critical := r.config.critical[id]
	broad := len(c.Capabilities) >= r.config.broadThreshold

	switch c.Action {
	case ActionAdd:
		if critical {
			return RiskLevelMedium
		}
		return RiskLevelLow
	case ActionReplace:
		if critical || broad {
			return RiskLevelHigh
		}
		return RiskLevelMedium
	case ActionRemove:
		if broad {
			return RiskLevelHigh
		}
		return RiskLevelMedium
	}
	return RiskLevelHigh
}

// AssessPlan returns the highest level of any cut. Conflict warnings raise
// an otherwise low plan to medium.
func (r *RiskAssessor) AssessPlan(p *Plan) RiskLevel {
	if p == nil {
		return RiskLevelLow
	}
	highest := RiskLevelLow
	for _, c := range p.Cuts {
		if level := r.AssessCut(c); level > highest {
			highest = level
		}
		if highest == RiskLevelHigh {
			return highest
		}
	}
	if len(p.Conflicts) > 0 && highest < RiskLevelMedium {
		highest = RiskLevelMedium
	}
	return highest
}
