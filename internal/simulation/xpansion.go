package simulation

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vk/gridopt/internal/ctxlog"
	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/fsutil"
	"github.com/vk/gridopt/internal/mps"
	"github.com/vk/gridopt/internal/study"
)

const (
	MasterProblemName     = "master"
	SubproblemName        = "subproblem"
	StructureFileName     = "structure.txt"
	structureRecordFormat = "%50s%50s%10d\n"
)

// BuildXpansionProblem builds the investment master and the operational
// subproblem of one block. The master comes first.
func BuildXpansionProblem(ctx context.Context, network *study.Network, database *study.DataBase, block TimeBlock, scenarios int, border BorderManagement) ([]*Problem, error) {
	master, err := BuildProblem(ctx, network, database, block, scenarios,
		WithName(MasterProblemName), WithBorderManagement(border), WithProblemType(ProblemXpansionMaster))
	if err != nil {
		return nil, err
	}
	sub, err := BuildProblem(ctx, network, database, block, scenarios,
		WithName(SubproblemName), WithBorderManagement(border), WithProblemType(ProblemXpansionSubproblem))
	if err != nil {
		return nil, err
	}
	return []*Problem{master, sub}, nil
}

// candidateIndexes is the column index of every candidate in one problem,
// in column order.
type candidateIndexes struct {
	problem string
	names   []string
	index   map[string]int
}

// ExportXpansionProblem writes one MPS file per problem and the structure
// file mapping every master candidate to its column index in each problem.
// problems[0] is the master. Every file is rendered and checked before the
// first one is written.
func ExportXpansionProblem(ctx context.Context, problems []*Problem, outDir string) error {
	if len(problems) < 2 {
		return errs.Export("a master and at least one subproblem are required, got %d problems", len(problems))
	}
	seen := make(map[string]struct{}, len(problems))
	for _, p := range problems {
		if _, dup := seen[p.Name]; dup {
			return errs.Export("duplicate problem name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	texts := make([]string, len(problems))
	columns := make([][]mps.Column, len(problems))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range problems {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text := p.ExportMPS()
			cols, err := mps.ScanColumns(text)
			if err != nil {
				return fmt.Errorf("%w: problem %q: %w", errs.ErrExport, p.Name, err)
			}
			texts[i], columns[i] = text, cols
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	masterCandidates := mps.Candidates(columns[0])
	structure := []candidateIndexes{indexCandidates(problems[0].Name, columns[0], masterCandidates)}
	for i := 1; i < len(problems); i++ {
		structure = append(structure, indexCandidates(problems[i].Name, columns[i], masterCandidates))
	}

	logger := ctxlog.FromContext(ctx)
	for i, p := range problems {
		path, err := fsutil.WriteFile(outDir, p.Name+".mps", texts[i])
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrExport, err)
		}
		logger.Debug("Wrote problem.", "problem", p.Name, "path", path, "columns", len(columns[i]))
	}
	path, err := fsutil.WriteFile(outDir, StructureFileName, renderStructure(structure))
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrExport, err)
	}
	logger.Debug("Wrote decomposition structure.", "path", path, "candidates", len(masterCandidates))
	return nil
}

// indexCandidates keeps the columns of one problem that are master
// candidates, at the problem's own column index.
func indexCandidates(problem string, columns []mps.Column, candidates map[string]int) candidateIndexes {
	out := candidateIndexes{problem: problem, index: make(map[string]int)}
	for _, c := range columns {
		if _, ok := candidates[c.Name]; ok {
			out.names = append(out.names, c.Name)
			out.index[c.Name] = c.Index
		}
	}
	return out
}

func renderStructure(structure []candidateIndexes) string {
	var b strings.Builder
	for _, p := range structure {
		for _, name := range p.names {
			fmt.Fprintf(&b, structureRecordFormat, p.problem, name, p.index[name])
		}
	}
	return b.String()
}
