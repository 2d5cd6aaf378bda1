package model

import (
	"math"

	"github.com/vk/gridopt/internal/expression"
)

// ProblemContext places a variable in the decomposition.
type ProblemContext int

const (
	Operational ProblemContext = iota
	Investment
	Coupling
)

func (c ProblemContext) String() string {
	switch c {
	case Operational:
		return "operational"
	case Investment:
		return "investment"
	case Coupling:
		return "coupling"
	default:
		return "unknown"
	}
}

// Parameter is a named input of a model, valued per component from the
// data base.
type Parameter struct {
	Name      string
	Structure expression.IndexingStructure
}

// FloatParameter declares a parameter. Without an explicit structure it is
// indexed by time and by scenario.
func FloatParameter(name string, structure ...expression.IndexingStructure) Parameter {
	p := Parameter{Name: name, Structure: expression.TimeAndScenarioFree}
	if len(structure) > 0 {
		p.Structure = structure[0]
	}
	return p
}

// Variable is a decision variable template. Nil bounds are unbounded.
type Variable struct {
	Name       string
	LowerBound expression.Node
	UpperBound expression.Node
	Structure  expression.IndexingStructure
	Context    ProblemContext
	Integer    bool
}

type VariableOption func(*Variable)

func WithLowerBound(n expression.Node) VariableOption {
	return func(v *Variable) { v.LowerBound = n }
}

func WithUpperBound(n expression.Node) VariableOption {
	return func(v *Variable) { v.UpperBound = n }
}

func WithStructure(s expression.IndexingStructure) VariableOption {
	return func(v *Variable) { v.Structure = s }
}

func WithContext(c ProblemContext) VariableOption {
	return func(v *Variable) { v.Context = c }
}

// FloatVariable declares a continuous operational variable indexed by time
// and by scenario unless options say otherwise.
func FloatVariable(name string, opts ...VariableOption) Variable {
	v := Variable{Name: name, Structure: expression.TimeAndScenarioFree, Context: Operational}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// IntVariable is FloatVariable with an integrality requirement.
func IntVariable(name string, opts ...VariableOption) Variable {
	v := FloatVariable(name, opts...)
	v.Integer = true
	return v
}

// Constraint keeps LowerBound <= Expression <= UpperBound.
type Constraint struct {
	Name       string
	Expression expression.Node
	LowerBound expression.Node
	UpperBound expression.Node
}

// NewConstraint turns a comparison into a constraint on left - right.
func NewConstraint(name string, cmp expression.Comparison) Constraint {
	c := Constraint{
		Name:       name,
		Expression: expression.Sub(cmp.Left, cmp.Right),
		LowerBound: expression.Lit(0),
		UpperBound: expression.Lit(0),
	}
	switch cmp.Comparator {
	case expression.LessEqual:
		c.LowerBound = expression.Lit(math.Inf(-1))
	case expression.GreaterEqual:
		c.UpperBound = expression.Lit(math.Inf(1))
	}
	return c
}

// NewBoundedConstraint keeps lower <= body <= upper.
func NewBoundedConstraint(name string, body, lower, upper expression.Node) Constraint {
	return Constraint{Name: name, Expression: body, LowerBound: lower, UpperBound: upper}
}
