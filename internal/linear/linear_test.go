package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
)

func term(coef float64, name string) Term {
	return Term{Coefficient: coef, ComponentID: "c", VariableName: name, Structure: expression.TimeAndScenarioFree}
}

func TestTermString(t *testing.T) {
	shifted := term(-3, "x")
	shifted.TimeOperator = Shift{Offsets: []int{-1}}

	summed := term(-3, "x")
	summed.TimeOperator = Shift{Offsets: []int{2, 3}}
	summed.TimeAggregator = Sum{StayRoll: false}

	expected := term(-3, "x")
	expected.TimeAggregator = Sum{StayRoll: true}
	expected.ScenarioOperator = Expectation{}

	testCases := []struct {
		term Term
		want string
	}{
		{term(1, "x"), "+x"},
		{term(-1, "x"), "-x"},
		{term(2.50, "x"), "+2.5x"},
		{shifted, "-3x.shift([-1])"},
		{summed, "-3x.shift([2, 3]).sum(false)"},
		{expected, "-3x.sum(true).expec()"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.term.String())
		})
	}
}

func TestExpressionString(t *testing.T) {
	assert.Equal(t, "0", Expression{}.String())
	assert.Equal(t, "+3.7x+1", New([]Term{term(3.7, "x")}, 1).String())
	assert.Equal(t, "+x-2y-1.5", New([]Term{term(1, "x"), term(-2, "y")}, -1.5).String())
	assert.Equal(t, "+4", NewConstant(4).String())
}

func TestNewMergesAndPrunes(t *testing.T) {
	e := New([]Term{term(1, "x"), term(2, "y"), term(2, "x"), term(-2, "y")}, 0)
	require.Len(t, e.Terms(), 1)
	assert.Equal(t, "+3x", e.String())

	shifted := term(1, "x")
	shifted.TimeOperator = Shift{Offsets: []int{-1}}
	e = New([]Term{term(1, "x"), shifted}, 0)
	assert.Len(t, e.Terms(), 2, "terms with different operators do not merge")
}

func TestArithmetic(t *testing.T) {
	x := New([]Term{term(1, "x")}, 0)
	y := New([]Term{term(1, "y")}, 0)
	two := NewConstant(2)

	t.Run("add", func(t *testing.T) {
		assert.Equal(t, "+x+y", x.Add(y).String())
		assert.Equal(t, "+x+2", x.Add(two).String())
		assert.Equal(t, "+2x", x.Add(x).String())
		assert.True(t, x.Add(y).Equal(y.Add(x)))
	})

	t.Run("sub", func(t *testing.T) {
		assert.Equal(t, "+x-y", x.Sub(y).String())
		assert.Equal(t, "0", x.Sub(x).String())
		assert.True(t, x.Sub(x).IsConstant())
	})

	t.Run("neg", func(t *testing.T) {
		assert.Equal(t, "-x-2", x.Add(two).Neg().String())
	})

	t.Run("mul", func(t *testing.T) {
		got, err := x.Add(two).Mul(NewConstant(3))
		require.NoError(t, err)
		assert.Equal(t, "+3x+6", got.String())

		got, err = NewConstant(3).Mul(x)
		require.NoError(t, err)
		assert.Equal(t, "+3x", got.String())

		got, err = x.Mul(NewConstant(0))
		require.NoError(t, err)
		assert.Empty(t, got.Terms())

		_, err = x.Mul(y)
		require.ErrorIs(t, err, ErrNonConstantProduct)
		require.ErrorIs(t, err, errs.ErrArithmetic)
	})

	t.Run("div", func(t *testing.T) {
		got, err := x.Add(two).Div(two)
		require.NoError(t, err)
		assert.Equal(t, "+0.5x+1", got.String())

		_, err = x.Div(NewConstant(0))
		require.ErrorIs(t, err, ErrDivisionByZero)

		_, err = two.Div(y)
		require.ErrorIs(t, err, ErrNonConstantDivisor)
		require.ErrorIs(t, err, errs.ErrArithmetic)
	})
}

func TestNumberOfInstances(t *testing.T) {
	plain := term(1, "x")
	shifted := term(1, "x")
	shifted.TimeOperator = Shift{Offsets: []int{1, 2, 3}}
	summed := shifted
	summed.TimeAggregator = Sum{}

	assert.Equal(t, 1, plain.NumberOfInstances())
	assert.Equal(t, 3, shifted.NumberOfInstances())
	assert.Equal(t, 1, summed.NumberOfInstances())

	assert.Equal(t, 1, Expression{}.NumberOfInstances())
	assert.Equal(t, 3, New([]Term{plain, shifted}, 0).NumberOfInstances())
}

type structures map[string]expression.IndexingStructure

func (s structures) ComponentVariableStructure(componentID, name string) (expression.IndexingStructure, error) {
	st, ok := s[componentID+"."+name]
	if !ok {
		return expression.Constant, errs.Configuration("unknown variable %s.%s", componentID, name)
	}
	return st, nil
}

func TestLinearize(t *testing.T) {
	provider := structures{"G.x": expression.TimeAndScenarioFree, "G.y": expression.Constant}
	x := expression.ComponentVariable{ComponentID: "G", Name: "x"}
	y := expression.ComponentVariable{ComponentID: "G", Name: "y"}

	testCases := []struct {
		name string
		expr expression.Node
		want string
	}{
		{"literal", expression.Lit(3), "+3"},
		{"affine", expression.Add(expression.Mul(expression.Lit(2), x), expression.Sub(y, expression.Lit(1))), "+2x+y-1"},
		{"division", expression.Div(x, expression.Lit(4)), "+0.25x"},
		{"negation", expression.Neg(expression.Sub(x, y)), "-x+y"},
		{"shift", expression.Shift(x, -1), "+x.shift([-1])"},
		{"shift keeps constants", expression.Shift(expression.Add(x, expression.Lit(5)), -1), "+x.shift([-1])+5"},
		{"evaluation", expression.Eval(x, 0, 2), "+x.eval([0, 2])"},
		{"rolling sum", expression.Sum(expression.Shift(x, 0, 1)), "+x.shift([0, 1]).sum(true)"},
		{"expectation of sum", expression.Expec(expression.Sum(expression.Mul(expression.Lit(30), x))), "+30x.sum(false).expec()"},
		{"cancellation", expression.Sub(x, x), "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Linearize(tc.expr, provider)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}

	t.Run("structure comes from the provider", func(t *testing.T) {
		got, err := Linearize(y, provider)
		require.NoError(t, err)
		require.Len(t, got.Terms(), 1)
		assert.Equal(t, expression.Constant, got.Terms()[0].Structure)
	})

	t.Run("errors", func(t *testing.T) {
		errorCases := []struct {
			name string
			expr expression.Node
			kind error
		}{
			{"product of variables", expression.Mul(x, y), errs.ErrArithmetic},
			{"nested shifts", expression.Shift(expression.Shift(x, 1), 1), errs.ErrUnsupported},
			{"shift after sum", expression.Shift(expression.Sum(x), 1), errs.ErrUnsupported},
			{"double expectation", expression.Expec(expression.Expec(x)), errs.ErrUnsupported},
			{"unscoped variable", expression.Var("x"), errs.ErrUsage},
			{"unresolved parameter", expression.ComponentParameter{ComponentID: "G", Name: "cost"}, errs.ErrUsage},
			{"unresolved port", expression.Port("p", "f"), errs.ErrUsage},
			{"unknown variable", expression.ComponentVariable{ComponentID: "H", Name: "x"}, errs.ErrConfiguration},
		}
		for _, tc := range errorCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := Linearize(tc.expr, provider)
				require.ErrorIs(t, err, tc.kind)
			})
		}
	})
}
