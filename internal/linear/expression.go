// Package linear implements affine expressions over decision-variable terms
// and the linearization of resolved expression trees into them.
package linear

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
)

var (
	ErrNonConstantProduct = fmt.Errorf("%w: cannot multiply two non-constant expressions", errs.ErrArithmetic)
	ErrDivisionByZero     = fmt.Errorf("%w: cannot divide expression by zero", errs.ErrArithmetic)
	ErrNonConstantDivisor = fmt.Errorf("%w: cannot divide by a non-constant expression", errs.ErrArithmetic)
)

// Term is coefficient × one component variable, read through optional time
// and scenario operators.
type Term struct {
	Coefficient      float64
	ComponentID      string
	VariableName     string
	Structure        expression.IndexingStructure
	TimeOperator     TimeOperator
	TimeAggregator   TimeAggregator
	ScenarioOperator ScenarioOperator
}

// TermKey identifies the terms that merge by coefficient summation.
type TermKey struct {
	ComponentID      string
	VariableName     string
	TimeOperator     string
	TimeAggregator   string
	ScenarioOperator string
}

// Key returns the merge key of t.
func (t Term) Key() TermKey {
	return TermKey{
		ComponentID:      t.ComponentID,
		VariableName:     t.VariableName,
		TimeOperator:     render(t.TimeOperator),
		TimeAggregator:   render(t.TimeAggregator),
		ScenarioOperator: render(t.ScenarioOperator),
	}
}

// NumberOfInstances is the number of rows one occurrence of t expands to:
// an aggregated term is a single instance, otherwise each selected
// timestep is one instance.
func (t Term) NumberOfInstances() int {
	if t.TimeAggregator != nil || t.TimeOperator == nil {
		return 1
	}
	return len(t.TimeOperator.TimeIDs())
}

func (t Term) String() string {
	var b strings.Builder
	if t.Coefficient < 0 {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	if c := math.Abs(t.Coefficient); c != 1 {
		b.WriteString(formatFloat(c))
	}
	b.WriteString(t.VariableName)
	b.WriteString(render(t.TimeOperator))
	b.WriteString(render(t.TimeAggregator))
	b.WriteString(render(t.ScenarioOperator))
	return b.String()
}

// Expression is an affine function: an ordered set of terms plus a
// constant. Values are immutable; every operation returns a new Expression.
// The zero value is the constant 0.
type Expression struct {
	terms    map[TermKey]Term
	order    []TermKey
	Constant float64
}

// New builds an expression, merging terms with identical keys and dropping
// terms whose coefficient is zero.
func New(terms []Term, constant float64) Expression {
	e := Expression{Constant: constant}
	for _, t := range terms {
		e.accumulate(t)
	}
	return e.pruned()
}

// NewConstant returns the expression c.
func NewConstant(c float64) Expression {
	return Expression{Constant: c}
}

func (e *Expression) accumulate(t Term) {
	if e.terms == nil {
		e.terms = make(map[TermKey]Term)
	}
	key := t.Key()
	if existing, ok := e.terms[key]; ok {
		existing.Coefficient += t.Coefficient
		e.terms[key] = existing
		return
	}
	e.terms[key] = t
	e.order = append(e.order, key)
}

func (e Expression) pruned() Expression {
	out := Expression{Constant: e.Constant}
	for _, key := range e.order {
		t := e.terms[key]
		if t.Coefficient == 0 {
			continue
		}
		if out.terms == nil {
			out.terms = make(map[TermKey]Term, len(e.order))
		}
		out.terms[key] = t
		out.order = append(out.order, key)
	}
	return out
}

// Terms returns the terms of e in insertion order.
func (e Expression) Terms() []Term {
	out := make([]Term, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, e.terms[key])
	}
	return out
}

// Term returns the term stored under key.
func (e Expression) Term(key TermKey) (Term, bool) {
	t, ok := e.terms[key]
	return t, ok
}

// IsConstant reports whether e has no terms.
func (e Expression) IsConstant() bool {
	return len(e.order) == 0
}

// Add returns e + other.
func (e Expression) Add(other Expression) Expression {
	out := Expression{Constant: e.Constant + other.Constant}
	for _, t := range e.Terms() {
		out.accumulate(t)
	}
	for _, t := range other.Terms() {
		out.accumulate(t)
	}
	return out.pruned()
}

// Sub returns e - other.
func (e Expression) Sub(other Expression) Expression {
	return e.Add(other.Neg())
}

// Neg returns -e.
func (e Expression) Neg() Expression {
	return e.scale(-1)
}

// Mul returns e × other. One side must be constant.
func (e Expression) Mul(other Expression) (Expression, error) {
	switch {
	case other.IsConstant():
		return e.scale(other.Constant), nil
	case e.IsConstant():
		return other.scale(e.Constant), nil
	default:
		return Expression{}, ErrNonConstantProduct
	}
}

// Div returns e ÷ other. The divisor must be a nonzero constant.
func (e Expression) Div(other Expression) (Expression, error) {
	if !other.IsConstant() {
		return Expression{}, ErrNonConstantDivisor
	}
	if other.Constant == 0 {
		return Expression{}, ErrDivisionByZero
	}
	return e.scale(1 / other.Constant), nil
}

func (e Expression) scale(factor float64) Expression {
	out := Expression{Constant: e.Constant * factor}
	for _, t := range e.Terms() {
		t.Coefficient *= factor
		out.accumulate(t)
	}
	return out.pruned()
}

// mapTerms applies fn to every term, keeping the constant.
func (e Expression) mapTerms(fn func(Term) (Term, error)) (Expression, error) {
	out := Expression{Constant: e.Constant}
	for _, t := range e.Terms() {
		mapped, err := fn(t)
		if err != nil {
			return Expression{}, err
		}
		out.accumulate(mapped)
	}
	return out.pruned(), nil
}

// NumberOfInstances is the number of physical rows a constraint on e
// expands to at one timestep: the maximum over its terms, at least 1.
func (e Expression) NumberOfInstances() int {
	n := 1
	for _, t := range e.Terms() {
		if i := t.NumberOfInstances(); i > n {
			n = i
		}
	}
	return n
}

// Equal reports whether e and other have the same terms and constant,
// regardless of term order.
func (e Expression) Equal(other Expression) bool {
	if e.Constant != other.Constant || len(e.order) != len(other.order) {
		return false
	}
	for key, t := range e.terms {
		o, ok := other.terms[key]
		if !ok || o.Coefficient != t.Coefficient {
			return false
		}
	}
	return true
}

func (e Expression) String() string {
	if e.IsConstant() && e.Constant == 0 {
		return "0"
	}
	var b strings.Builder
	for _, t := range e.Terms() {
		b.WriteString(t.String())
	}
	if e.Constant > 0 {
		b.WriteString("+" + formatFloat(e.Constant))
	} else if e.Constant < 0 {
		b.WriteString(formatFloat(e.Constant))
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
