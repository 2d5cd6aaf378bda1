package expression

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one element of an expression tree. The set of implementations is
// closed: every pass in this package switches over all of them.
type Node interface {
	fmt.Stringer
	node()
}

// Literal is a constant number.
type Literal struct {
	Value float64
}

// Variable is a bare reference to a model variable.
type Variable struct {
	Name string
}

// Parameter is a bare reference to a model parameter.
type Parameter struct {
	Name string
}

// ComponentVariable is a variable reference qualified by its component.
type ComponentVariable struct {
	ComponentID string
	Name        string
}

// ComponentParameter is a parameter reference qualified by its component.
type ComponentParameter struct {
	ComponentID string
	Name        string
}

// PortField refers to one field of one port of the enclosing model.
type PortField struct {
	Port  string
	Field string
}

// PortFieldSum is the explicit sum of a port field over every connection.
type PortFieldSum struct {
	Field PortField
}

type Negation struct {
	Operand Node
}

type Addition struct {
	Left, Right Node
}

type Subtraction struct {
	Left, Right Node
}

type Multiplication struct {
	Left, Right Node
}

type Division struct {
	Left, Right Node
}

// Comparator is the relation of a Comparison.
type Comparator int

const (
	Equal Comparator = iota
	LessEqual
	GreaterEqual
)

func (c Comparator) String() string {
	switch c {
	case Equal:
		return "=="
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Comparison only appears at the root of a constraint definition.
type Comparison struct {
	Left, Right Node
	Comparator  Comparator
}

// TimeShift evaluates its operand at timestep+offset, one instance per offset.
type TimeShift struct {
	Operand Node
	Offsets []int
}

// TimeEvaluation evaluates its operand at absolute block timesteps, one
// instance per index.
type TimeEvaluation struct {
	Operand Node
	Indices []int
}

// TimeSum sums its operand over time. With StayRoll the sum is a rolling
// window that remains indexed by time.
type TimeSum struct {
	Operand  Node
	StayRoll bool
}

// Expectation averages its operand over scenarios.
type Expectation struct {
	Operand Node
}

func (Literal) node()            {}
func (Variable) node()           {}
func (Parameter) node()          {}
func (ComponentVariable) node()  {}
func (ComponentParameter) node() {}
func (PortField) node()          {}
func (PortFieldSum) node()       {}
func (Negation) node()           {}
func (Addition) node()           {}
func (Subtraction) node()        {}
func (Multiplication) node()     {}
func (Division) node()           {}
func (Comparison) node()         {}
func (TimeShift) node()          {}
func (TimeEvaluation) node()     {}
func (TimeSum) node()            {}
func (Expectation) node()        {}

func (n Literal) String() string            { return formatFloat(n.Value) }
func (n Variable) String() string           { return n.Name }
func (n Parameter) String() string          { return n.Name }
func (n ComponentVariable) String() string  { return n.ComponentID + "." + n.Name }
func (n ComponentParameter) String() string { return n.ComponentID + "." + n.Name }
func (n PortField) String() string          { return n.Port + "." + n.Field }
func (n PortFieldSum) String() string       { return n.Field.String() + ".sum_connections()" }
func (n Negation) String() string           { return "-(" + n.Operand.String() + ")" }
func (n Addition) String() string           { return "(" + n.Left.String() + " + " + n.Right.String() + ")" }
func (n Subtraction) String() string        { return "(" + n.Left.String() + " - " + n.Right.String() + ")" }
func (n Multiplication) String() string     { return "(" + n.Left.String() + " * " + n.Right.String() + ")" }
func (n Division) String() string           { return "(" + n.Left.String() + " / " + n.Right.String() + ")" }
func (n Comparison) String() string {
	return n.Left.String() + " " + n.Comparator.String() + " " + n.Right.String()
}
func (n TimeShift) String() string      { return n.Operand.String() + ".shift(" + formatInts(n.Offsets) + ")" }
func (n TimeEvaluation) String() string { return n.Operand.String() + ".eval(" + formatInts(n.Indices) + ")" }
func (n TimeSum) String() string {
	return n.Operand.String() + ".sum(" + strconv.FormatBool(n.StayRoll) + ")"
}
func (n Expectation) String() string { return n.Operand.String() + ".expec()" }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Lit returns a literal node.
func Lit(v float64) Node { return Literal{Value: v} }

// Var returns a bare variable reference.
func Var(name string) Node { return Variable{Name: name} }

// Param returns a bare parameter reference.
func Param(name string) Node { return Parameter{Name: name} }

// Port returns a reference to one field of one port.
func Port(port, field string) PortField { return PortField{Port: port, Field: field} }

// SumConnections sums a port field over every connection of the port.
func SumConnections(field PortField) Node { return PortFieldSum{Field: field} }

// Add returns the sum of all operands, folded left.
func Add(first Node, rest ...Node) Node {
	out := first
	for _, n := range rest {
		out = Addition{Left: out, Right: n}
	}
	return out
}

func Sub(left, right Node) Node { return Subtraction{Left: left, Right: right} }
func Mul(left, right Node) Node { return Multiplication{Left: left, Right: right} }
func Div(left, right Node) Node { return Division{Left: left, Right: right} }
func Neg(operand Node) Node     { return Negation{Operand: operand} }

// Shift evaluates n at the current timestep plus each offset.
func Shift(n Node, offsets ...int) Node { return TimeShift{Operand: n, Offsets: offsets} }

// Eval evaluates n at each absolute block timestep.
func Eval(n Node, indices ...int) Node { return TimeEvaluation{Operand: n, Indices: indices} }

// Sum sums n over time. Summing a shift yields a rolling sum that stays
// indexed by time; any other sum covers the whole block.
func Sum(n Node) Node {
	_, rolling := n.(TimeShift)
	return TimeSum{Operand: n, StayRoll: rolling}
}

// Expec averages n over scenarios.
func Expec(n Node) Node { return Expectation{Operand: n} }

func Eq(left, right Node) Comparison { return Comparison{Left: left, Right: right, Comparator: Equal} }
func Le(left, right Node) Comparison {
	return Comparison{Left: left, Right: right, Comparator: LessEqual}
}
func Ge(left, right Node) Comparison {
	return Comparison{Left: left, Right: right, Comparator: GreaterEqual}
}
