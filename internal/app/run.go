package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vk/gridopt/internal/ctxlog"
	"github.com/vk/gridopt/internal/fsutil"
	"github.com/vk/gridopt/internal/simulation"
	"github.com/vk/gridopt/internal/solver"
	"github.com/vk/gridopt/internal/study"
)

// ProblemReport summarizes one built problem.
type ProblemReport struct {
	Name        string
	ID          uuid.UUID
	Type        simulation.ProblemType
	Variables   int
	Constraints int
}

// Report is the outcome of Run. Solution and Outputs are only set when the
// configuration asks for a solve.
type Report struct {
	Problems []ProblemReport
	Files    []string
	Solution *solver.Solution
	Outputs  *simulation.OutputValues
}

func reportProblem(p *simulation.Problem) ProblemReport {
	return ProblemReport{
		Name:        p.Name,
		ID:          p.ID,
		Type:        p.Type,
		Variables:   p.Solver.NumVariables(),
		Constraints: p.Solver.NumConstraints(),
	}
}

// decomposed reports whether the configured type selects the master and
// subproblem pair rather than a single problem.
func (a *App) decomposed() bool {
	t := a.config.ProblemType
	return t == simulation.ProblemXpansionMaster || t == simulation.ProblemXpansionSubproblem
}

// Run builds the configured problem over the given study and writes its
// artifacts to the output directory. The xpansion_master and
// xpansion_subproblem types both produce the decomposition export.
func (a *App) Run(ctx context.Context, network *study.Network, database *study.DataBase) (*Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "problem_type", a.config.ProblemType, "output_dir", a.config.OutputDir)

	var (
		report *Report
		err    error
	)
	if a.decomposed() {
		report, err = a.runDecomposition(ctx, network, database)
	} else {
		report, err = a.runSingle(ctx, network, database)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Debug("App.Run method finished.", "files", len(report.Files))
	return report, nil
}

func (a *App) runSingle(ctx context.Context, network *study.Network, database *study.DataBase) (*Report, error) {
	cfg := a.config
	p, err := simulation.BuildProblem(ctx, network, database, cfg.Block, cfg.Scenarios,
		simulation.WithName(cfg.Name),
		simulation.WithBorderManagement(cfg.BorderManagement),
		simulation.WithProblemType(cfg.ProblemType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build problem: %w", err)
	}
	report := &Report{Problems: []ProblemReport{reportProblem(p)}}
	a.logger.Info("Problem built.", "problem", p.Name, "variables", p.Solver.NumVariables(), "constraints", p.Solver.NumConstraints())

	path, err := fsutil.WriteFile(cfg.OutputDir, p.Name+".mps", p.ExportMPS())
	if err != nil {
		return nil, err
	}
	report.Files = append(report.Files, path)
	if cfg.ExportLP {
		path, err := fsutil.WriteFile(cfg.OutputDir, p.Name+".lp", p.ExportLP())
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, path)
	}

	if !cfg.Solve {
		return report, nil
	}
	sol, err := p.Solve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to solve problem %q: %w", p.Name, err)
	}
	report.Solution = sol
	if !sol.IsOptimal() {
		a.logger.Warn("Problem has no optimal solution.", "problem", p.Name, "status", sol.Status)
		return report, nil
	}
	report.Outputs = simulation.NewOutputValues(p)
	a.logger.Info("Problem solved.", "problem", p.Name, "objective", sol.Objective)
	return report, nil
}

func (a *App) runDecomposition(ctx context.Context, network *study.Network, database *study.DataBase) (*Report, error) {
	cfg := a.config
	problems, err := simulation.BuildXpansionProblem(ctx, network, database, cfg.Block, cfg.Scenarios, cfg.BorderManagement)
	if err != nil {
		return nil, fmt.Errorf("failed to build decomposition: %w", err)
	}
	if err := simulation.ExportXpansionProblem(ctx, problems, cfg.OutputDir); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, p := range problems {
		report.Problems = append(report.Problems, reportProblem(p))
		report.Files = append(report.Files, filepath.Join(cfg.OutputDir, p.Name+".mps"))
	}
	report.Files = append(report.Files, filepath.Join(cfg.OutputDir, simulation.StructureFileName))
	a.logger.Info("Decomposition exported.", "problems", len(problems), "output_dir", cfg.OutputDir)

	if cfg.Solve {
		a.logger.Warn("Solve is not available for the decomposition export, skipping.")
	}
	return report, nil
}
