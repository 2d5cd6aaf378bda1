package model

import (
	"fmt"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
)

// Model is the template instantiated by components. Collections keep their
// declaration order, which drives the order of variables and rows in the
// built problem.
type Model struct {
	ID                               string
	Parameters                       []Parameter
	Variables                        []Variable
	Ports                            []ModelPort
	PortFieldDefinitions             []PortFieldDefinition
	Constraints                      []Constraint
	ObjectiveOperationalContribution expression.Node
	ObjectiveInvestmentContribution  expression.Node

	parameters  map[string]int
	variables   map[string]int
	ports       map[string]int
	definitions map[PortFieldID]int
}

type Option func(*Model)

func WithParameters(p ...Parameter) Option {
	return func(m *Model) { m.Parameters = append(m.Parameters, p...) }
}

func WithVariables(v ...Variable) Option {
	return func(m *Model) { m.Variables = append(m.Variables, v...) }
}

func WithPorts(p ...ModelPort) Option {
	return func(m *Model) { m.Ports = append(m.Ports, p...) }
}

func WithPortFieldDefinitions(d ...PortFieldDefinition) Option {
	return func(m *Model) { m.PortFieldDefinitions = append(m.PortFieldDefinitions, d...) }
}

func WithConstraints(c ...Constraint) Option {
	return func(m *Model) { m.Constraints = append(m.Constraints, c...) }
}

// WithOperationalObjective sets the contribution kept by simulator and
// subproblem builds.
func WithOperationalObjective(n expression.Node) Option {
	return func(m *Model) { m.ObjectiveOperationalContribution = n }
}

// WithInvestmentObjective sets the contribution kept by master builds.
func WithInvestmentObjective(n expression.Node) Option {
	return func(m *Model) { m.ObjectiveInvestmentContribution = n }
}

// New assembles and validates a model. Every problem found is reported in
// one ErrConfiguration error.
func New(id string, opts ...Option) (*Model, error) {
	m := &Model{
		ID:          id,
		parameters:  make(map[string]int),
		variables:   make(map[string]int),
		ports:       make(map[string]int),
		definitions: make(map[PortFieldID]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNew is New for statically known models; it panics on error.
func MustNew(id string, opts ...Option) *Model {
	m, err := New(id, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) validate() error {
	var problems []string
	index := func(kind, name string, i int, into map[string]int) {
		if name == "" {
			problems = append(problems, fmt.Sprintf("%s #%d has no name", kind, i))
			return
		}
		if _, dup := into[name]; dup {
			problems = append(problems, fmt.Sprintf("%s %q is declared twice", kind, name))
			return
		}
		into[name] = i
	}

	for i, p := range m.Parameters {
		index("parameter", p.Name, i, m.parameters)
	}
	for i, v := range m.Variables {
		index("variable", v.Name, i, m.variables)
		if _, clash := m.parameters[v.Name]; clash && v.Name != "" {
			problems = append(problems, fmt.Sprintf("variable %q has the name of a parameter", v.Name))
		}
	}
	for i, p := range m.Ports {
		index("port", p.PortName, i, m.ports)
	}
	constraints := make(map[string]int)
	for i, c := range m.Constraints {
		index("constraint", c.Name, i, constraints)
	}

	for i, d := range m.PortFieldDefinitions {
		id := d.PortField
		if _, dup := m.definitions[id]; dup {
			problems = append(problems, fmt.Sprintf("port field %s.%s is defined twice", id.PortName, id.FieldName))
			continue
		}
		m.definitions[id] = i
		port, ok := m.Port(id.PortName)
		if !ok {
			problems = append(problems, fmt.Sprintf("port field definition refers to unknown port %q", id.PortName))
		} else if !port.PortType.HasField(id.FieldName) {
			problems = append(problems, fmt.Sprintf("port %q of type %q has no field %q", id.PortName, port.PortType.ID, id.FieldName))
		}
		problems = append(problems, m.checkReferences(fmt.Sprintf("definition of %s.%s", id.PortName, id.FieldName), d.Definition)...)
	}

	for _, v := range m.Variables {
		for _, bound := range []expression.Node{v.LowerBound, v.UpperBound} {
			if bound == nil {
				continue
			}
			problems = append(problems, m.checkReferences("bound of variable "+v.Name, bound)...)
			problems = append(problems, m.checkNoVariables("bound of variable "+v.Name, bound)...)
		}
	}
	for _, c := range m.Constraints {
		subject := "constraint " + c.Name
		refProblems := m.checkReferences(subject, c.Expression)
		problems = append(problems, refProblems...)
		if len(refProblems) == 0 {
			if err := expression.CheckAggregatedParameters(c.Expression, m); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", subject, err))
			}
		}
		for _, bound := range []expression.Node{c.LowerBound, c.UpperBound} {
			problems = append(problems, m.checkReferences(subject, bound)...)
			problems = append(problems, m.checkNoVariables("bound of "+subject, bound)...)
		}
	}

	objectives := []struct {
		name string
		node expression.Node
	}{
		{"operational objective", m.ObjectiveOperationalContribution},
		{"investment objective", m.ObjectiveInvestmentContribution},
	}
	for _, o := range objectives {
		if o.node == nil {
			continue
		}
		refProblems := m.checkReferences(o.name, o.node)
		problems = append(problems, refProblems...)
		if len(refProblems) > 0 {
			continue
		}
		s, err := expression.ComputeIndexation(o.node, m)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", o.name, err))
			continue
		}
		if !s.IsTrivial() {
			problems = append(problems, fmt.Sprintf("%s must be aggregated over time and scenarios, got %s", o.name, s))
		}
		if err := expression.CheckAggregatedParameters(o.node, m); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", o.name, err))
		}
	}

	return errs.Collect(errs.ErrConfiguration, fmt.Sprintf("model %q is invalid", m.ID), problems)
}

func (m *Model) checkReferences(subject string, n expression.Node) []string {
	var problems []string
	if n == nil {
		return []string{subject + " is missing"}
	}
	expression.Inspect(n, func(node expression.Node) {
		switch e := node.(type) {
		case expression.Variable:
			if _, ok := m.variables[e.Name]; !ok {
				problems = append(problems, fmt.Sprintf("%s refers to unknown variable %q", subject, e.Name))
			}
		case expression.Parameter:
			if _, ok := m.parameters[e.Name]; !ok {
				problems = append(problems, fmt.Sprintf("%s refers to unknown parameter %q", subject, e.Name))
			}
		case expression.PortField:
			problems = append(problems, m.checkPortField(subject, e)...)
		case expression.PortFieldSum:
			problems = append(problems, m.checkPortField(subject, e.Field)...)
		case expression.ComponentVariable, expression.ComponentParameter:
			problems = append(problems, fmt.Sprintf("%s refers to %s of another component", subject, e))
		}
	})
	return problems
}

func (m *Model) checkPortField(subject string, f expression.PortField) []string {
	port, ok := m.Port(f.Port)
	if !ok {
		return []string{fmt.Sprintf("%s refers to unknown port %q", subject, f.Port)}
	}
	if !port.PortType.HasField(f.Field) {
		return []string{fmt.Sprintf("%s refers to unknown field %q of port %q", subject, f.Field, f.Port)}
	}
	return nil
}

func (m *Model) checkNoVariables(subject string, n expression.Node) []string {
	var problems []string
	expression.Inspect(n, func(node expression.Node) {
		if v, ok := node.(expression.Variable); ok {
			problems = append(problems, fmt.Sprintf("%s cannot depend on variable %q", subject, v.Name))
		}
	})
	return problems
}

// Parameter returns the parameter called name.
func (m *Model) Parameter(name string) (Parameter, bool) {
	i, ok := m.parameters[name]
	if !ok {
		return Parameter{}, false
	}
	return m.Parameters[i], true
}

// Variable returns the variable called name.
func (m *Model) Variable(name string) (Variable, bool) {
	i, ok := m.variables[name]
	if !ok {
		return Variable{}, false
	}
	return m.Variables[i], true
}

// Port returns the port called name.
func (m *Model) Port(name string) (ModelPort, bool) {
	i, ok := m.ports[name]
	if !ok {
		return ModelPort{}, false
	}
	return m.Ports[i], true
}

// PortFieldDefinition returns the definition the model gives for id.
func (m *Model) PortFieldDefinition(id PortFieldID) (PortFieldDefinition, bool) {
	i, ok := m.definitions[id]
	if !ok {
		return PortFieldDefinition{}, false
	}
	return m.PortFieldDefinitions[i], true
}

// VariableStructure implements expression.IndexingStructureProvider over
// the model's bare names.
func (m *Model) VariableStructure(name string) (expression.IndexingStructure, error) {
	v, ok := m.Variable(name)
	if !ok {
		return expression.Constant, errs.Configuration("model %q has no variable %q", m.ID, name)
	}
	return v.Structure, nil
}

func (m *Model) ParameterStructure(name string) (expression.IndexingStructure, error) {
	p, ok := m.Parameter(name)
	if !ok {
		return expression.Constant, errs.Configuration("model %q has no parameter %q", m.ID, name)
	}
	return p.Structure, nil
}

func (m *Model) ComponentVariableStructure(componentID, name string) (expression.IndexingStructure, error) {
	return expression.Constant, errs.Usage("model %q cannot resolve variable %s.%s", m.ID, componentID, name)
}

func (m *Model) ComponentParameterStructure(componentID, name string) (expression.IndexingStructure, error) {
	return expression.Constant, errs.Usage("model %q cannot resolve parameter %s.%s", m.ID, componentID, name)
}
