package ports

import "github.com/reglet-dev/facet/domain/entities"

// Prompter asks an operator to confirm a plan before it is applied.
type Prompter interface {
	// IsInteractive returns true if running in an interactive terminal.
	IsInteractive() bool

	// ConfirmPlan shows the plan and returns whether it may be applied.
	ConfirmPlan(plan *entities.Plan) (bool, error)
}
