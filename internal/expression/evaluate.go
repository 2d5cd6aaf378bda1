package expression

import (
	"fmt"

	"github.com/vk/gridopt/internal/errs"
)

// Evaluate computes the value of an expression that contains no port
// fields and no time or scenario operators. Component variables are only
// valued when provider also implements VariableValueProvider.
func Evaluate(n Node, provider ParameterValueProvider) (float64, error) {
	switch e := n.(type) {
	case Literal:
		return e.Value, nil
	case ComponentParameter:
		return provider.ComponentParameterValue(e.ComponentID, e.Name)
	case ComponentVariable:
		values, ok := provider.(VariableValueProvider)
		if !ok {
			return 0, errs.Usage("cannot provide value of variable %s at problem build time", e)
		}
		return values.ComponentVariableValue(e.ComponentID, e.Name)
	case Parameter:
		return 0, errs.Usage("parameter %q must be associated to its component before evaluation", e.Name)
	case Variable:
		return 0, errs.Usage("variable %q must be associated to its component before evaluation", e.Name)
	case PortField, PortFieldSum:
		return 0, errs.Usage("port field %s must be resolved before evaluation", e)
	case Negation:
		v, err := Evaluate(e.Operand, provider)
		return -v, err
	case Addition:
		l, r, err := evaluatePair(e.Left, e.Right, provider)
		return l + r, err
	case Subtraction:
		l, r, err := evaluatePair(e.Left, e.Right, provider)
		return l - r, err
	case Multiplication:
		l, r, err := evaluatePair(e.Left, e.Right, provider)
		return l * r, err
	case Division:
		l, r, err := evaluatePair(e.Left, e.Right, provider)
		if err != nil {
			return 0, err
		}
		if r == 0 {
			return 0, fmt.Errorf("%w: division by zero while evaluating %s", errs.ErrArithmetic, e)
		}
		return l / r, nil
	case Comparison:
		return 0, errs.Usage("comparison %s has no numeric value", e)
	case TimeShift, TimeEvaluation, TimeSum, Expectation:
		return 0, errs.Unsupported("time and scenario operators cannot be evaluated to a single value: %s", e)
	default:
		panic(fmt.Sprintf("expression: unknown node type %T", n))
	}
}

func evaluatePair(left, right Node, provider ParameterValueProvider) (float64, float64, error) {
	l, err := Evaluate(left, provider)
	if err != nil {
		return 0, 0, err
	}
	r, err := Evaluate(right, provider)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

// IndexingStructureProvider describes how quantities referenced by an
// expression are indexed.
type IndexingStructureProvider interface {
	ComponentVariableStructure(componentID, name string) (IndexingStructure, error)
	ComponentParameterStructure(componentID, name string) (IndexingStructure, error)
	VariableStructure(name string) (IndexingStructure, error)
	ParameterStructure(name string) (IndexingStructure, error)
}

// ComputeIndexation returns the union of the indexing of every variable and
// parameter n touches. A non-rolling time sum removes the time dimension,
// a time evaluation pins absolute timesteps, and an expectation removes
// the scenario dimension.
func ComputeIndexation(n Node, provider IndexingStructureProvider) (IndexingStructure, error) {
	switch e := n.(type) {
	case Literal:
		return Constant, nil
	case Variable:
		return provider.VariableStructure(e.Name)
	case Parameter:
		return provider.ParameterStructure(e.Name)
	case ComponentVariable:
		return provider.ComponentVariableStructure(e.ComponentID, e.Name)
	case ComponentParameter:
		return provider.ComponentParameterStructure(e.ComponentID, e.Name)
	case PortField, PortFieldSum:
		return Constant, errs.Usage("port field %s must be resolved before computing its indexing", e)
	case Negation:
		return ComputeIndexation(e.Operand, provider)
	case Addition:
		return indexationPair(e.Left, e.Right, provider)
	case Subtraction:
		return indexationPair(e.Left, e.Right, provider)
	case Multiplication:
		return indexationPair(e.Left, e.Right, provider)
	case Division:
		return indexationPair(e.Left, e.Right, provider)
	case Comparison:
		return indexationPair(e.Left, e.Right, provider)
	case TimeShift:
		return ComputeIndexation(e.Operand, provider)
	case TimeEvaluation:
		s, err := ComputeIndexation(e.Operand, provider)
		s.Time = false
		return s, err
	case TimeSum:
		s, err := ComputeIndexation(e.Operand, provider)
		s.Time = s.Time && e.StayRoll
		return s, err
	case Expectation:
		s, err := ComputeIndexation(e.Operand, provider)
		s.Scenario = false
		return s, err
	default:
		panic(fmt.Sprintf("expression: unknown node type %T", n))
	}
}

func indexationPair(left, right Node, provider IndexingStructureProvider) (IndexingStructure, error) {
	l, err := ComputeIndexation(left, provider)
	if err != nil {
		return Constant, err
	}
	r, err := ComputeIndexation(right, provider)
	if err != nil {
		return Constant, err
	}
	return l.Or(r), nil
}

// CheckAggregatedParameters rejects a parameter read inside an aggregator
// that removes one of its dimensions: a time-varying parameter under a
// non-rolling time sum, or a scenario-dependent one under an expectation.
// Parameters are valued once per row, at the row's timestep and scenario,
// so such a parameter would silently take a single value.
func CheckAggregatedParameters(n Node, provider IndexingStructureProvider) error {
	return checkAggregated(n, Constant, provider)
}

// checkAggregated walks n; dropped holds the dimensions removed by the
// enclosing aggregators.
func checkAggregated(n Node, dropped IndexingStructure, provider IndexingStructureProvider) error {
	_, err := rewrite(n, func(node Node) (Node, bool, error) {
		var (
			s   IndexingStructure
			err error
		)
		switch e := node.(type) {
		case TimeSum:
			inner := dropped
			inner.Time = inner.Time || !e.StayRoll
			return node, true, checkAggregated(e.Operand, inner, provider)
		case Expectation:
			inner := dropped
			inner.Scenario = true
			return node, true, checkAggregated(e.Operand, inner, provider)
		case Parameter:
			s, err = provider.ParameterStructure(e.Name)
		case ComponentParameter:
			s, err = provider.ComponentParameterStructure(e.ComponentID, e.Name)
		default:
			return nil, false, nil
		}
		if err != nil {
			return nil, true, err
		}
		if dropped.Time && s.Time {
			return nil, true, errs.Configuration("time-varying parameter %s cannot be summed over time", node)
		}
		if dropped.Scenario && s.Scenario {
			return nil, true, errs.Configuration("scenario-dependent parameter %s cannot be averaged over scenarios", node)
		}
		return node, true, nil
	})
	return err
}
