package solver

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridopt/internal/errs"
)

func TestModelHandles(t *testing.T) {
	m := NewModel("handles")
	x := m.NumVar(0, 10, "x")
	y := m.IntVar(math.Inf(-1), Infinity(), "y")

	assert.Equal(t, 0, x.Index())
	assert.Equal(t, 1, y.Index())
	assert.True(t, y.Integer())
	assert.True(t, m.IsMIP())

	c := m.Constraint("c")
	lb, ub := c.Bounds()
	assert.True(t, math.IsInf(lb, -1))
	assert.True(t, math.IsInf(ub, 1))

	c.SetCoefficient(x, 2)
	c.SetCoefficient(y, 3)
	c.SetCoefficient(x, c.Coefficient(x)+1)
	c.SetCoefficient(y, 0)
	assert.Equal(t, []Entry{{Variable: x, Coefficient: 3}}, c.Entries())

	o := m.Objective()
	o.SetCoefficient(y, 1)
	o.SetOffset(o.Offset() + 4)
	assert.Equal(t, 4.0, o.Offset())
	assert.Equal(t, 1.0, o.Coefficient(y))
	assert.Equal(t, 0.0, o.Coefficient(x))

	got, ok := m.VariableByName("y")
	require.True(t, ok)
	assert.Same(t, y, got)
	_, ok = m.VariableByName("z")
	assert.False(t, ok)
	row, ok := m.ConstraintByName("c")
	require.True(t, ok)
	assert.Same(t, c, row)
}

func sampleModel() *Model {
	m := NewModel("sample")
	x := m.NumVar(0, 100, "x")
	y := m.NumVar(math.Inf(-1), Infinity(), "y")
	z := m.NumVar(5, 5, "z")
	w := m.NumVar(0, Infinity(), "w")

	eq := m.Constraint("eq")
	eq.SetCoefficient(x, 1)
	eq.SetCoefficient(y, -1)
	eq.SetBounds(100, 100)

	le := m.Constraint("le")
	le.SetCoefficient(y, 2)
	le.SetBounds(math.Inf(-1), 4)

	rng := m.Constraint("rng")
	rng.SetCoefficient(x, 1)
	rng.SetCoefficient(z, 1)
	rng.SetBounds(1, 3)

	m.Objective().SetCoefficient(x, 30)
	m.Objective().SetOffset(7)
	_ = w
	return m
}

func TestExportMPS(t *testing.T) {
	want := `NAME          sample
ROWS
 N  COST
 E  eq
 L  le
 L  rng
COLUMNS
    x         COST                30
    x         eq                   1
    x         rng                  1
    y         eq                  -1
    y         le                   2
    z         rng                  1
    w         COST                 0
RHS
    RHS       COST                -7
    RHS       eq                 100
    RHS       le                   4
    RHS       rng                  3
RANGES
    RNG       rng                  2
BOUNDS
 UP BND       x                  100
 FR BND       y
 FX BND       z                    5
ENDATA
`
	assert.Equal(t, want, sampleModel().ExportMPS())
}

func TestExportMPSIntegerMarkers(t *testing.T) {
	m := NewModel("mip")
	m.NumVar(0, 1, "a")
	n := m.IntVar(0, Infinity(), "n")
	m.Objective().SetCoefficient(n, 2)

	got := m.ExportMPS()
	assert.Contains(t, got, "    MARKER0   'MARKER'  'INTORG'\n    n         COST                 2\n    MARKER1   'MARKER'  'INTEND'\n")
	assert.Contains(t, got, " LO BND       n                    0\n PL BND       n\n")
}

func TestExportMPSLongNames(t *testing.T) {
	m := NewModel("long")
	v := m.NumVar(0, 10, "CAND_generation_t0_s0")
	c := m.Constraint("CAND_Max_generation_t0_s0")
	c.SetCoefficient(v, 1)
	c.SetBounds(math.Inf(-1), 5)

	got := m.ExportMPS()
	assert.Contains(t, got, "    CAND_generation_t0_s0  CAND_Max_generation_t0_s0             1\n")
	assert.Contains(t, got, " UP BND       CAND_generation_t0_s0            10\n")

	inColumns := false
	for _, line := range strings.Split(got, "\n") {
		switch line {
		case "COLUMNS":
			inColumns = true
			continue
		case "RHS":
			inColumns = false
		}
		if inColumns {
			assert.Equal(t, []string{"CAND_generation_t0_s0", "CAND_Max_generation_t0_s0", "1"}, strings.Fields(line))
		}
	}
}

func TestExportLP(t *testing.T) {
	want := `\ Problem name: sample

Minimize
 obj: +30 x +7
Subject To
 eq: +1 x -1 y = 100
 le: +2 y <= 4
 rng: 1 <= +1 x +1 z <= 3
Bounds
 0 <= x <= 100
 y free
 z = 5
 w >= 0
End
`
	assert.Equal(t, want, sampleModel().ExportLP())
}

func TestSolve(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatch", func(t *testing.T) {
		m := NewModel("dispatch")
		cheap := m.NumVar(0, 60, "cheap")
		expensive := m.NumVar(0, 100, "expensive")
		balance := m.Constraint("balance")
		balance.SetCoefficient(cheap, 1)
		balance.SetCoefficient(expensive, 1)
		balance.SetBounds(100, 100)
		m.Objective().SetCoefficient(cheap, 10)
		m.Objective().SetCoefficient(expensive, 30)
		m.Objective().SetOffset(5)

		sol, err := m.Solve(ctx)
		require.NoError(t, err)
		require.True(t, sol.IsOptimal())
		assert.InDelta(t, 10*60+30*40+5, sol.Objective, 1e-6)
		assert.InDelta(t, 60, cheap.SolutionValue(), 1e-6)
		assert.InDelta(t, 40, expensive.SolutionValue(), 1e-6)
		assert.InDelta(t, sol.Objective, m.Objective().Value(), 1e-9)
	})

	t.Run("maximize with a free column", func(t *testing.T) {
		m := NewModel("max")
		x := m.NumVar(math.Inf(-1), Infinity(), "x")
		c := m.Constraint("cap")
		c.SetCoefficient(x, 2)
		c.SetBounds(-10, 8)
		m.Objective().SetCoefficient(x, 1)
		m.Objective().SetMaximization()

		sol, err := m.Solve(ctx)
		require.NoError(t, err)
		require.True(t, sol.IsOptimal())
		assert.InDelta(t, 4, sol.Objective, 1e-6)
		assert.InDelta(t, 4, sol.ColValues[x.Index()], 1e-6)
	})

	t.Run("infeasible", func(t *testing.T) {
		m := NewModel("infeasible")
		x := m.NumVar(0, 1, "x")
		c := m.Constraint("c")
		c.SetCoefficient(x, 1)
		c.SetBounds(2, Infinity())

		sol, err := m.Solve(ctx)
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, sol.Status)
	})

	t.Run("unbounded", func(t *testing.T) {
		m := NewModel("unbounded")
		x := m.NumVar(math.Inf(-1), Infinity(), "x")
		m.Objective().SetCoefficient(x, 1)

		sol, err := m.Solve(ctx)
		require.NoError(t, err)
		assert.Equal(t, StatusUnbounded, sol.Status)
	})

	t.Run("empty row must hold", func(t *testing.T) {
		m := NewModel("empty")
		m.Constraint("c").SetBounds(1, 2)
		sol, err := m.Solve(ctx)
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, sol.Status)
	})

	t.Run("integer columns", func(t *testing.T) {
		m := NewModel("mip")
		m.IntVar(0, 3, "n")
		_, err := m.Solve(ctx)
		require.ErrorIs(t, err, errs.ErrUnsupported)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewModel("m").Solve(cancelled)
		require.ErrorIs(t, err, context.Canceled)
	})
}
