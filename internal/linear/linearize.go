package linear

import (
	"fmt"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
)

// VariableStructureProvider returns the declared indexing of a component
// variable.
type VariableStructureProvider interface {
	ComponentVariableStructure(componentID, name string) (expression.IndexingStructure, error)
}

// Linearize converts a fully resolved expression tree into an Expression.
// The tree must contain only literals, component variables, arithmetic and
// time or scenario operators; ports and parameters must have been resolved
// beforehand.
func Linearize(n expression.Node, provider VariableStructureProvider) (Expression, error) {
	switch e := n.(type) {
	case expression.Literal:
		return NewConstant(e.Value), nil
	case expression.ComponentVariable:
		s, err := provider.ComponentVariableStructure(e.ComponentID, e.Name)
		if err != nil {
			return Expression{}, err
		}
		return New([]Term{{
			Coefficient:  1,
			ComponentID:  e.ComponentID,
			VariableName: e.Name,
			Structure:    s,
		}}, 0), nil
	case expression.Variable, expression.Parameter:
		return Expression{}, errs.Usage("%s must be associated to its component before linearization", e)
	case expression.ComponentParameter:
		return Expression{}, errs.Usage("parameter %s must be resolved before linearization", e)
	case expression.PortField, expression.PortFieldSum:
		return Expression{}, errs.Usage("port field %s must be resolved before linearization", e)
	case expression.Comparison:
		return Expression{}, errs.Usage("comparison %s cannot be linearized, linearize each side instead", e)
	case expression.Negation:
		operand, err := Linearize(e.Operand, provider)
		return operand.Neg(), err
	case expression.Addition:
		l, r, err := linearizePair(e.Left, e.Right, provider)
		return l.Add(r), err
	case expression.Subtraction:
		l, r, err := linearizePair(e.Left, e.Right, provider)
		return l.Sub(r), err
	case expression.Multiplication:
		l, r, err := linearizePair(e.Left, e.Right, provider)
		if err != nil {
			return Expression{}, err
		}
		return l.Mul(r)
	case expression.Division:
		l, r, err := linearizePair(e.Left, e.Right, provider)
		if err != nil {
			return Expression{}, err
		}
		return l.Div(r)
	case expression.TimeShift:
		return applyTimeOperator(e.Operand, Shift{Offsets: e.Offsets}, provider)
	case expression.TimeEvaluation:
		return applyTimeOperator(e.Operand, Evaluation{Indices: e.Indices}, provider)
	case expression.TimeSum:
		operand, err := Linearize(e.Operand, provider)
		if err != nil {
			return Expression{}, err
		}
		return operand.mapTerms(func(t Term) (Term, error) {
			if t.TimeAggregator != nil {
				return t, errs.Unsupported("time aggregator already applied on %s", t)
			}
			t.TimeAggregator = Sum{StayRoll: e.StayRoll}
			return t, nil
		})
	case expression.Expectation:
		operand, err := Linearize(e.Operand, provider)
		if err != nil {
			return Expression{}, err
		}
		return operand.mapTerms(func(t Term) (Term, error) {
			if t.ScenarioOperator != nil {
				return t, errs.Unsupported("scenario operator already applied on %s", t)
			}
			t.ScenarioOperator = Expectation{}
			return t, nil
		})
	default:
		panic(fmt.Sprintf("linear: unknown node type %T", n))
	}
}

func applyTimeOperator(n expression.Node, op TimeOperator, provider VariableStructureProvider) (Expression, error) {
	operand, err := Linearize(n, provider)
	if err != nil {
		return Expression{}, err
	}
	return operand.mapTerms(func(t Term) (Term, error) {
		if t.TimeAggregator != nil {
			return t, errs.Unsupported("cannot apply %s after time aggregation on %s", op, t)
		}
		if t.TimeOperator != nil {
			return t, errs.Unsupported("cannot apply %s on %s: nested time operators", op, t)
		}
		t.TimeOperator = op
		return t, nil
	})
}

func linearizePair(left, right expression.Node, provider VariableStructureProvider) (Expression, Expression, error) {
	l, err := Linearize(left, provider)
	if err != nil {
		return Expression{}, Expression{}, err
	}
	r, err := Linearize(right, provider)
	if err != nil {
		return Expression{}, Expression{}, err
	}
	return l, r, nil
}
