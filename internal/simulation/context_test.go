package simulation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
	"github.com/vk/gridopt/internal/linear"
	"github.com/vk/gridopt/internal/solver"
	"github.com/vk/gridopt/internal/study"
)

func newTestContext(t *testing.T, length, scenarios int) *OptimizationContext {
	t.Helper()
	block := TimeBlock{ID: 1, Timesteps: indices(length)}
	opt, err := NewOptimizationContext(study.NewNetwork("n"), study.NewDataBase(), block, scenarios, BorderCycle)
	require.NoError(t, err)
	return opt
}

func TestNewOptimizationContext(t *testing.T) {
	network, db := study.NewNetwork("n"), study.NewDataBase()

	_, err := NewOptimizationContext(network, db, TimeBlock{ID: 1}, 1, BorderCycle)
	require.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = NewOptimizationContext(network, db, TimeBlock{ID: 1, Timesteps: []int{0}}, 0, BorderCycle)
	require.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = NewOptimizationContext(network, db, TimeBlock{ID: 1, Timesteps: []int{0}}, 1, BorderIgnoreOutOfFrame)
	require.ErrorIs(t, err, errs.ErrUnsupported)
}

func TestIndices(t *testing.T) {
	opt := newTestContext(t, 3, 2)

	assert.Equal(t, []int{0, 1, 2}, opt.TimeIndices(expression.TimeAndScenarioFree))
	assert.Equal(t, []int{0}, opt.TimeIndices(expression.ConstantPerScenario))
	assert.Equal(t, []int{0, 1}, opt.ScenarioIndices(expression.ConstantPerScenario))
	assert.Equal(t, []int{0}, opt.ScenarioIndices(expression.NonAnticipativeTimeVarying))

	abs, err := opt.BlockTimestepToAbsolute(2)
	require.NoError(t, err)
	assert.Equal(t, 2, abs)
	_, err = opt.BlockTimestepToAbsolute(3)
	require.ErrorIs(t, err, errs.ErrUsage)
}

func TestManageBorderCycle(t *testing.T) {
	opt := newTestContext(t, 4, 1)

	for in, want := range map[int]int{0: 0, 3: 3, 4: 0, 9: 1, -1: 3, -4: 0, -6: 2} {
		t.Run(fmt.Sprint(in), func(t *testing.T) {
			got, err := opt.manageBorder(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestManageBorderIgnoreOutOfFrame(t *testing.T) {
	opt := newTestContext(t, 4, 1)
	opt.border = BorderIgnoreOutOfFrame

	_, err := opt.manageBorder(5)
	require.ErrorIs(t, err, errs.ErrUnsupported)
}

func TestComponentVariableRegistration(t *testing.T) {
	opt := newTestContext(t, 3, 2)
	m := solver.NewModel("m")
	p := m.NumVar(0, 10, "p")
	x := m.NumVar(0, 10, "x_t1_s1")

	require.NoError(t, opt.RegisterComponentVariable(0, 0, "C", "p", p))
	require.NoError(t, opt.RegisterComponentVariable(1, 1, "C", "x", x))

	t.Run("time and scenario invariant", func(t *testing.T) {
		for _, ts := range [][2]int{{0, 0}, {2, 1}, {-1, 0}} {
			got, err := opt.ComponentVariable(ts[0], ts[1], "C", "p", expression.Constant)
			require.NoError(t, err)
			assert.Same(t, p, got)
		}
	})

	t.Run("indexed lookup wraps the border", func(t *testing.T) {
		got, err := opt.ComponentVariable(4, 1, "C", "x", expression.TimeAndScenarioFree)
		require.NoError(t, err)
		assert.Same(t, x, got)
	})

	t.Run("unregistered", func(t *testing.T) {
		_, err := opt.ComponentVariable(0, 0, "C", "x", expression.TimeAndScenarioFree)
		require.ErrorIs(t, err, errs.ErrUsage)
	})

	t.Run("duplicate", func(t *testing.T) {
		err := opt.RegisterComponentVariable(1, 1, "C", "x", x)
		require.ErrorIs(t, err, errs.ErrUsage)
	})

	all := opt.AllComponentVariables()
	require.Len(t, all, 2)
	assert.Equal(t, VariableKey{ComponentID: "C", VariableName: "p"}, all[0].Key)
	assert.Equal(t, VariableKey{ComponentID: "C", VariableName: "x", BlockTimestep: 1, Scenario: 1}, all[1].Key)
}

func TestConnectionFieldsSeal(t *testing.T) {
	opt := newTestContext(t, 1, 1)
	flow := expression.ComponentVariable{ComponentID: "G", Name: "generation"}

	require.NoError(t, opt.RegisterConnectionFieldExpression("N", "balance_port", "flow", flow))
	require.NoError(t, opt.RegisterConnectionFieldExpression("N", "balance_port", "flow", expression.Lit(-1)))
	key := expression.PortFieldKey{ComponentID: "N", Port: "balance_port", Field: "flow"}
	assert.Equal(t, []expression.Node{flow, expression.Lit(-1)}, opt.ConnectionFieldExpressions()[key])

	opt.sealConnections()
	err := opt.RegisterConnectionFieldExpression("N", "balance_port", "flow", flow)
	require.ErrorIs(t, err, errs.ErrUsage)
}

func TestSolverVars(t *testing.T) {
	opt := newTestContext(t, 3, 1)
	m := solver.NewModel("m")
	x := make([]*solver.Variable, 3)
	for i := range x {
		x[i] = m.NumVar(0, 1, fmt.Sprintf("x_t%d", i))
		require.NoError(t, opt.RegisterComponentVariable(i, 0, "C", "x", x[i]))
	}
	term := func(op linear.TimeOperator, agg linear.TimeAggregator) linear.Term {
		return linear.Term{
			Coefficient:    1,
			ComponentID:    "C",
			VariableName:   "x",
			Structure:      expression.NonAnticipativeTimeVarying,
			TimeOperator:   op,
			TimeAggregator: agg,
		}
	}

	tests := []struct {
		name     string
		term     linear.Term
		t        int
		instance int
		want     []*solver.Variable
	}{
		{"sum of shift", term(linear.Shift{Offsets: []int{-1, 0}}, linear.Sum{}), 0, 0, []*solver.Variable{x[2], x[0]}},
		{"sum of evaluation", term(linear.Evaluation{Indices: []int{0, 2}}, linear.Sum{}), 1, 0, []*solver.Variable{x[0], x[2]}},
		{"sum over the block", term(nil, linear.Sum{}), 1, 0, []*solver.Variable{x[1], x[2], x[0]}},
		{"shift instance", term(linear.Shift{Offsets: []int{1, 2}}, nil), 0, 1, []*solver.Variable{x[2]}},
		{"evaluation instance", term(linear.Evaluation{Indices: []int{1}}, nil), 2, 0, []*solver.Variable{x[1]}},
		{"plain", term(nil, nil), 2, 0, []*solver.Variable{x[2]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := solverVars(tt.term, opt, tt.t, 0, tt.instance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("instance out of range", func(t *testing.T) {
		_, err := solverVars(term(linear.Shift{Offsets: []int{1}}, nil), opt, 0, 0, 1)
		require.ErrorIs(t, err, errs.ErrConfiguration)
	})
}
