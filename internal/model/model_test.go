package model

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
)

var balance = NewPortType("balance", "flow")

func TestNewConstraint(t *testing.T) {
	x, d := expression.Var("x"), expression.Param("d")

	testCases := []struct {
		name   string
		cmp    expression.Comparison
		lb, ub float64
	}{
		{"equal", expression.Eq(x, d), 0, 0},
		{"less or equal", expression.Le(x, d), math.Inf(-1), 0},
		{"greater or equal", expression.Ge(x, d), 0, math.Inf(1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConstraint("c", tc.cmp)
			assert.Empty(t, cmp.Diff(expression.Sub(x, d), c.Expression))
			assert.Equal(t, expression.Lit(tc.lb), c.LowerBound)
			assert.Equal(t, expression.Lit(tc.ub), c.UpperBound)
		})
	}
}

func TestVariableDefaults(t *testing.T) {
	v := FloatVariable("x")
	assert.Equal(t, expression.TimeAndScenarioFree, v.Structure)
	assert.Equal(t, Operational, v.Context)
	assert.Nil(t, v.LowerBound)
	assert.False(t, v.Integer)

	i := IntVariable("n", WithContext(Investment), WithStructure(expression.Constant))
	assert.True(t, i.Integer)
	assert.Equal(t, Investment, i.Context)
	assert.Equal(t, expression.Constant, i.Structure)
}

func TestNewValidModel(t *testing.T) {
	m, err := New("GEN",
		WithParameters(FloatParameter("cost", expression.Constant), FloatParameter("p_max")),
		WithVariables(FloatVariable("generation", WithLowerBound(expression.Lit(0)), WithUpperBound(expression.Param("p_max")))),
		WithPorts(ModelPort{PortType: balance, PortName: "port"}),
		WithPortFieldDefinitions(DefinePortField("port", "flow", expression.Var("generation"))),
		WithOperationalObjective(expression.Expec(expression.Sum(expression.Mul(expression.Param("cost"), expression.Var("generation"))))),
	)
	require.NoError(t, err)

	v, ok := m.Variable("generation")
	require.True(t, ok)
	assert.Equal(t, "generation", v.Name)

	_, ok = m.Parameter("missing")
	assert.False(t, ok)

	def, ok := m.PortFieldDefinition(PortFieldID{PortName: "port", FieldName: "flow"})
	require.True(t, ok)
	assert.Equal(t, expression.Var("generation"), def.Definition)

	s, err := m.ParameterStructure("p_max")
	require.NoError(t, err)
	assert.Equal(t, expression.TimeAndScenarioFree, s)
}

func TestNewCollectsProblems(t *testing.T) {
	_, err := New("BROKEN",
		WithParameters(FloatParameter("cost"), FloatParameter("cost")),
		WithVariables(FloatVariable("x", WithUpperBound(expression.Var("x")))),
		WithPorts(ModelPort{PortType: balance, PortName: "port"}),
		WithPortFieldDefinitions(
			DefinePortField("port", "heat", expression.Var("x")),
			DefinePortField("other", "flow", expression.Var("x")),
		),
		WithConstraints(NewConstraint("c", expression.Le(expression.Var("y"), expression.Param("p")))),
		WithOperationalObjective(expression.Var("x")),
	)
	require.ErrorIs(t, err, errs.ErrConfiguration)

	for _, want := range []string{
		`parameter "cost" is declared twice`,
		`bound of variable x cannot depend on variable "x"`,
		`port "port" of type "balance" has no field "heat"`,
		`unknown port "other"`,
		`constraint c refers to unknown variable "y"`,
		`constraint c refers to unknown parameter "p"`,
		`operational objective must be aggregated over time and scenarios`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNewRejectsAggregatedDataDependence(t *testing.T) {
	gen := FloatVariable("generation", WithLowerBound(expression.Lit(0)))
	costOf := func(v string) expression.Node {
		return expression.Sum(expression.Mul(expression.Param("cost"), expression.Var(v)))
	}

	_, err := New("TV_GEN",
		WithParameters(FloatParameter("cost", expression.NonAnticipativeTimeVarying)),
		WithVariables(gen),
		WithOperationalObjective(costOf("generation")),
	)
	require.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Contains(t, err.Error(), "operational objective: ")
	assert.Contains(t, err.Error(), "time-varying parameter cost cannot be summed over time")

	_, err = New("TV_BUDGET",
		WithParameters(FloatParameter("cost", expression.NonAnticipativeTimeVarying)),
		WithVariables(gen),
		WithConstraints(NewConstraint("budget", expression.Le(costOf("generation"), expression.Lit(100)))),
	)
	require.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Contains(t, err.Error(), "constraint budget: ")

	_, err = New("SCENARIO_GEN",
		WithParameters(FloatParameter("cost", expression.ConstantPerScenario)),
		WithVariables(gen),
		WithOperationalObjective(expression.Expec(costOf("generation"))),
	)
	require.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Contains(t, err.Error(), "scenario-dependent parameter cost cannot be averaged over scenarios")
}

func TestPortType(t *testing.T) {
	assert.True(t, balance.HasField("flow"))
	assert.False(t, balance.HasField("heat"))
	assert.True(t, balance.Equal(NewPortType("balance", "flow")))
	assert.False(t, balance.Equal(NewPortType("balance", "flow", "heat")))
}
