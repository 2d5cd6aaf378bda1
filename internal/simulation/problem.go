package simulation

import (
	"context"

	"github.com/google/uuid"

	"github.com/vk/gridopt/internal/solver"
)

// Problem is a built solver model together with the context that maps its
// columns back to component variables.
type Problem struct {
	Name    string
	ID      uuid.UUID
	Type    ProblemType
	Solver  *solver.Model
	Context *OptimizationContext
}

// ExportMPS renders the problem in fixed MPS format.
func (p *Problem) ExportMPS() string { return p.Solver.ExportMPS() }

// ExportLP renders the problem in LP format.
func (p *Problem) ExportLP() string { return p.Solver.ExportLP() }

// Solve runs the in-process solver.
func (p *Problem) Solve(ctx context.Context) (*solver.Solution, error) {
	return p.Solver.Solve(ctx)
}
