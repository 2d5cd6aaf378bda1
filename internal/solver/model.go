// Package solver is an in-memory linear program: columns, rows and one
// objective, addressed through handles. A Model can be written as a
// fixed-format MPS or a free-format LP file, and solved in process when it
// is purely continuous.
//
// The model solves problems of the form:
//
//	Minimize:   c·x + Offset
//	Subject to: RowLower ≤ A·x ≤ RowUpper
//	And:        ColLower ≤ x ≤ ColUpper
package solver

import (
	"math"
	"sync"
)

// Infinity is the bound value of an unbounded side.
func Infinity() float64 { return math.Inf(1) }

// Variable is a column handle.
type Variable struct {
	index   int
	name    string
	lb, ub  float64
	integer bool
	value   float64
}

func (v *Variable) Index() int          { return v.index }
func (v *Variable) Name() string        { return v.name }
func (v *Variable) LowerBound() float64 { return v.lb }
func (v *Variable) UpperBound() float64 { return v.ub }
func (v *Variable) Integer() bool       { return v.integer }

func (v *Variable) SetBounds(lb, ub float64) { v.lb, v.ub = lb, ub }

// SolutionValue is the value found by the last successful Solve, or 0.
func (v *Variable) SolutionValue() float64 { return v.value }

// Entry is one nonzero of a row or of the objective.
type Entry struct {
	Variable    *Variable
	Coefficient float64
}

// linear holds coefficients keyed by variable, in first-set order.
type linear struct {
	coefficients map[*Variable]float64
	order        []*Variable
}

func (l *linear) set(v *Variable, c float64) {
	if l.coefficients == nil {
		l.coefficients = make(map[*Variable]float64)
	}
	if _, ok := l.coefficients[v]; !ok {
		l.order = append(l.order, v)
	}
	l.coefficients[v] = c
}

func (l *linear) get(v *Variable) float64 {
	return l.coefficients[v]
}

func (l *linear) entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, v := range l.order {
		if c := l.coefficients[v]; c != 0 {
			out = append(out, Entry{Variable: v, Coefficient: c})
		}
	}
	return out
}

// Constraint is a row handle, lb ≤ Σ coefficient·variable ≤ ub.
type Constraint struct {
	linear
	index  int
	name   string
	lb, ub float64
}

func (c *Constraint) Index() int   { return c.index }
func (c *Constraint) Name() string { return c.name }

func (c *Constraint) SetCoefficient(v *Variable, coefficient float64) { c.set(v, coefficient) }
func (c *Constraint) Coefficient(v *Variable) float64                 { return c.get(v) }
func (c *Constraint) SetBounds(lb, ub float64)                         { c.lb, c.ub = lb, ub }
func (c *Constraint) Bounds() (lb, ub float64)                         { return c.lb, c.ub }

// Entries returns the nonzero coefficients in first-set order.
func (c *Constraint) Entries() []Entry { return c.entries() }

// Objective is the single objective of a model. It minimizes by default.
type Objective struct {
	linear
	offset   float64
	maximize bool
	value    float64
}

func (o *Objective) SetCoefficient(v *Variable, coefficient float64) { o.set(v, coefficient) }
func (o *Objective) Coefficient(v *Variable) float64                 { return o.get(v) }
func (o *Objective) SetOffset(offset float64)                        { o.offset = offset }
func (o *Objective) Offset() float64                                 { return o.offset }
func (o *Objective) SetMaximization()                                { o.maximize = true }
func (o *Objective) SetMinimization()                                { o.maximize = false }
func (o *Objective) Maximization() bool                              { return o.maximize }

// Entries returns the nonzero coefficients in first-set order.
func (o *Objective) Entries() []Entry { return o.entries() }

// Value is the objective value found by the last successful Solve.
func (o *Objective) Value() float64 { return o.value }

// Model owns every column, row and the objective. Building is not safe
// for concurrent use; writing an already built model is.
type Model struct {
	name        string
	variables   []*Variable
	constraints []*Constraint
	objective   Objective
	columns     map[string]*Variable
	rows        map[string]*Constraint

	mu sync.Mutex // serializes Solve
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{
		name:    name,
		columns: make(map[string]*Variable),
		rows:    make(map[string]*Constraint),
	}
}

func (m *Model) Name() string { return m.name }

// NumVar adds a continuous column.
func (m *Model) NumVar(lb, ub float64, name string) *Variable {
	v := &Variable{index: len(m.variables), name: name, lb: lb, ub: ub}
	m.variables = append(m.variables, v)
	if _, ok := m.columns[name]; !ok {
		m.columns[name] = v
	}
	return v
}

// IntVar adds an integer column.
func (m *Model) IntVar(lb, ub float64, name string) *Variable {
	v := m.NumVar(lb, ub, name)
	v.integer = true
	return v
}

// Constraint adds a free row; callers set its bounds and coefficients.
func (m *Model) Constraint(name string) *Constraint {
	c := &Constraint{index: len(m.constraints), name: name, lb: math.Inf(-1), ub: math.Inf(1)}
	m.constraints = append(m.constraints, c)
	if _, ok := m.rows[name]; !ok {
		m.rows[name] = c
	}
	return c
}

// VariableByName returns the first column added under name.
func (m *Model) VariableByName(name string) (*Variable, bool) {
	v, ok := m.columns[name]
	return v, ok
}

// ConstraintByName returns the first row added under name.
func (m *Model) ConstraintByName(name string) (*Constraint, bool) {
	c, ok := m.rows[name]
	return c, ok
}

// Objective returns the model objective.
func (m *Model) Objective() *Objective { return &m.objective }

// Variables returns the columns in creation order.
func (m *Model) Variables() []*Variable { return append([]*Variable(nil), m.variables...) }

// Constraints returns the rows in creation order.
func (m *Model) Constraints() []*Constraint { return append([]*Constraint(nil), m.constraints...) }

func (m *Model) NumVariables() int   { return len(m.variables) }
func (m *Model) NumConstraints() int { return len(m.constraints) }

// IsMIP reports whether any column is integer.
func (m *Model) IsMIP() bool {
	for _, v := range m.variables {
		if v.integer {
			return true
		}
	}
	return false
}
