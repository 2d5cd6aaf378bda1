package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/vk/gridopt/internal/errs"
)

// Status is the outcome of a solve.
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "not solved"
	}
}

// Solution holds the result of Solve. ColValues is indexed by
// Variable.Index and is only set when the status is optimal.
type Solution struct {
	Status    Status
	ColValues []float64
	Objective float64
}

// IsOptimal reports whether the solution is optimal.
func (s *Solution) IsOptimal() bool {
	return s.Status == StatusOptimal
}

const tolerance = 1e-10

// Solve runs a dense simplex over the model. Infeasible and unbounded
// models yield a Solution with that status and a nil error. Integer
// columns are rejected with ErrUnsupported.
func (m *Model) Solve(ctx context.Context) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsMIP() {
		return nil, errs.Unsupported("model %q has integer columns; the in-process solver handles continuous models only", m.name)
	}

	sign := 1.0
	if m.objective.maximize {
		sign = -1
	}

	n := len(m.variables)
	cost := make([]float64, n)
	for _, e := range m.objective.Entries() {
		cost[e.Variable.index] = sign * e.Coefficient
	}

	var (
		gRows, aRows [][]float64
		h, b         []float64
		used         = make([]bool, n)
	)
	unit := func(i int, scale float64) []float64 {
		row := make([]float64, n)
		row[i] = scale
		return row
	}

	for _, c := range m.constraints {
		entries := c.Entries()
		if len(entries) == 0 {
			if c.lb > tolerance || c.ub < -tolerance {
				return &Solution{Status: StatusInfeasible}, nil
			}
			continue
		}
		row := make([]float64, n)
		for _, e := range entries {
			row[e.Variable.index] = e.Coefficient
			used[e.Variable.index] = true
		}
		switch {
		case c.lb > c.ub:
			return &Solution{Status: StatusInfeasible}, nil
		case c.lb == c.ub:
			aRows, b = append(aRows, row), append(b, c.lb)
		default:
			if !math.IsInf(c.ub, 1) {
				gRows, h = append(gRows, row), append(h, c.ub)
			}
			if !math.IsInf(c.lb, -1) {
				gRows, h = append(gRows, negate(row)), append(h, -c.lb)
			}
		}
	}

	for i, v := range m.variables {
		switch {
		case v.lb > v.ub:
			return &Solution{Status: StatusInfeasible}, nil
		case v.lb == v.ub:
			aRows, b = append(aRows, unit(i, 1)), append(b, v.lb)
			used[i] = true
		default:
			if !math.IsInf(v.ub, 1) {
				gRows, h = append(gRows, unit(i, 1)), append(h, v.ub)
				used[i] = true
			}
			if !math.IsInf(v.lb, -1) {
				gRows, h = append(gRows, unit(i, -1)), append(h, -v.lb)
				used[i] = true
			}
		}
	}

	// Columns in no row are free and only matter through their cost.
	var columns []int
	for i := range m.variables {
		if used[i] {
			columns = append(columns, i)
			continue
		}
		if cost[i] != 0 {
			return &Solution{Status: StatusUnbounded}, nil
		}
	}

	values := make([]float64, n)
	objective := 0.0
	if len(columns) > 0 {
		x, f, status, err := simplex(cost, columns, gRows, h, aRows, b)
		if err != nil {
			return nil, fmt.Errorf("solve %q: %w", m.name, err)
		}
		if status != StatusOptimal {
			return &Solution{Status: status}, nil
		}
		for j, i := range columns {
			values[i] = x[j]
		}
		objective = f
	}

	objective = sign*objective + m.objective.offset
	for i, v := range m.variables {
		v.value = values[i]
	}
	m.objective.value = objective
	return &Solution{Status: StatusOptimal, ColValues: values, Objective: objective}, nil
}

// simplex solves min c·x s.t. G·x ≤ h, A·x = b over the selected columns
// with x free, through the standard form produced by lp.Convert.
func simplex(cost []float64, columns []int, gRows [][]float64, h []float64, aRows [][]float64, b []float64) ([]float64, float64, Status, error) {
	k := len(columns)
	c := make([]float64, k)
	for j, i := range columns {
		c[j] = cost[i]
	}
	if len(aRows) > 2*k {
		return nil, 0, StatusNotSolved, fmt.Errorf("%d equality rows over %d columns", len(aRows), k)
	}

	var g, a mat.Matrix
	if len(gRows) > 0 {
		g = dense(gRows, columns)
	} else {
		h = nil
	}
	if len(aRows) > 0 {
		a = dense(aRows, columns)
	} else {
		b = nil
	}

	cNew, aNew, bNew := lp.Convert(c, g, h, a, b)
	rows, _ := aNew.Dims()
	for i := 0; i < rows; i++ {
		if bNew[i] < 0 {
			bNew[i] = -bNew[i]
			row := aNew.RawRowView(i)
			for j := range row {
				row[j] = -row[j]
			}
		}
	}

	f, x, err := lp.Simplex(cNew, aNew, bNew, tolerance, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return nil, 0, StatusInfeasible, nil
	case errors.Is(err, lp.ErrUnbounded):
		return nil, 0, StatusUnbounded, nil
	case err != nil:
		return nil, 0, StatusNotSolved, err
	}

	out := make([]float64, k)
	for j := range out {
		out[j] = x[j] - x[k+j]
	}
	return out, f, StatusOptimal, nil
}

func dense(rows [][]float64, columns []int) *mat.Dense {
	d := mat.NewDense(len(rows), len(columns), nil)
	for r, row := range rows {
		for j, i := range columns {
			d.Set(r, j, row[i])
		}
	}
	return d
}

func negate(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = -v
	}
	return out
}
