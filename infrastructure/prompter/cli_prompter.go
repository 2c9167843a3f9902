package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// ErrNonInteractive is returned when a plan needs confirmation but nobody
// can answer.
var ErrNonInteractive = errors.New("plan requires confirmation in non-interactive mode; review it and re-run with --yes")

// CliPrompter implements ports.Prompter for CLI environments.
type CliPrompter struct {
	in       io.Reader
	out      io.Writer
	assessor *entities.RiskAssessor
}

var _ ports.Prompter = (*CliPrompter)(nil)

// NewCliPrompter creates a new CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer, opts ...entities.RiskAssessorOption) *CliPrompter {
	return &CliPrompter{in: in, out: out, assessor: entities.NewRiskAssessor(opts...)}
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ConfirmPlan prints the plan with the risk of every cut and asks whether
// to apply it. Anything but an explicit yes declines.
func (p *CliPrompter) ConfirmPlan(plan *entities.Plan) (bool, error) {
	if plan.IsEmpty() {
		return false, nil
	}

	WritePlan(p.out, plan, p.assessor)
	_, _ = fmt.Fprintf(p.out, "Apply these changes? [y/n]: ")

	scanner := bufio.NewScanner(p.in)
	if scanner.Scan() {
		text := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return text == "y" || text == "yes", nil
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, io.EOF
}

// WritePlan renders a plan for humans.
func WritePlan(w io.Writer, plan *entities.Plan, assessor *entities.RiskAssessor) {
	if assessor == nil {
		assessor = entities.NewRiskAssessor()
	}
	if plan.IsEmpty() {
		_, _ = fmt.Fprintln(w, "No changes.")
	} else {
		s := plan.Summary()
		_, _ = fmt.Fprintf(w, "Plan: %d to add, %d to replace, %d to remove (risk: %s)\n",
			s.Add, s.Replace, s.Remove, assessor.AssessPlan(plan))
		for _, c := range plan.Cuts {
			_, _ = fmt.Fprintf(w, "- [%s] %s %s\n", assessor.AssessCut(c), strings.ToUpper(c.Action.String()), c.Target)
			for _, id := range c.Capabilities {
				_, _ = fmt.Fprintf(w, "    %s\n", id)
			}
		}
	}
	for _, warn := range plan.Conflicts {
		_, _ = fmt.Fprintf(w, "! %s is also claimed by %s %s\n", warn.Capability, strings.ToUpper(warn.Action.String()), warn.Module)
	}
	for _, n := range plan.Notices {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", n.Kind, n.Message)
	}
}
