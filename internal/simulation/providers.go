package simulation

import (
	"math"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
	"github.com/vk/gridopt/internal/linear"
	"github.com/vk/gridopt/internal/study"
)

// parameterValues reads parameters from the data base at one block
// timestep and scenario.
type parameterValues struct {
	opt           *OptimizationContext
	blockTimestep int
	scenario      int
}

func (p parameterValues) ComponentParameterValue(componentID, name string) (float64, error) {
	t, err := p.opt.BlockTimestepToAbsolute(p.blockTimestep)
	if err != nil {
		return 0, err
	}
	return p.opt.database.Value(componentID, name, t, p.scenario)
}

// structures answers indexing questions from the models of the network.
type structures struct {
	network *study.Network
}

func (s structures) component(componentID string) (study.Component, error) {
	c, ok := s.network.Component(componentID)
	if !ok {
		return study.Component{}, errs.Configuration("component %q is not part of network %q", componentID, s.network.ID)
	}
	return c, nil
}

func (s structures) ComponentVariableStructure(componentID, name string) (expression.IndexingStructure, error) {
	c, err := s.component(componentID)
	if err != nil {
		return expression.IndexingStructure{}, err
	}
	v, ok := c.Model.Variable(name)
	if !ok {
		return expression.IndexingStructure{}, errs.Configuration("model %q of component %q has no variable %q", c.Model.ID, componentID, name)
	}
	return v.Structure, nil
}

func (s structures) ComponentParameterStructure(componentID, name string) (expression.IndexingStructure, error) {
	c, err := s.component(componentID)
	if err != nil {
		return expression.IndexingStructure{}, err
	}
	p, ok := c.Model.Parameter(name)
	if !ok {
		return expression.IndexingStructure{}, errs.Configuration("model %q of component %q has no parameter %q", c.Model.ID, componentID, name)
	}
	return p.Structure, nil
}

func (structures) VariableStructure(name string) (expression.IndexingStructure, error) {
	return expression.IndexingStructure{}, errs.Usage("variable %q must be associated to its component", name)
}

func (structures) ParameterStructure(name string) (expression.IndexingStructure, error) {
	return expression.IndexingStructure{}, errs.Usage("parameter %q must be associated to its component", name)
}

// componentContext runs the instantiation pipeline for one component.
type componentContext struct {
	opt       *OptimizationContext
	component study.Component
}

func (c componentContext) structures() structures {
	return structures{network: c.opt.network}
}

// instantiate scopes n to the component and resolves its ports.
func (c componentContext) instantiate(n expression.Node) (expression.Node, error) {
	scoped := expression.AddComponentContext(c.component.ID, n)
	return expression.ResolvePorts(scoped, c.component.ID, c.opt.ConnectionFieldExpressions())
}

// linearize values the parameters of an instantiated expression at
// (blockTimestep, scenario) and linearizes the result.
func (c componentContext) linearize(blockTimestep, scenario int, n expression.Node) (linear.Expression, error) {
	resolved, err := expression.ResolveParameters(n, parameterValues{opt: c.opt, blockTimestep: blockTimestep, scenario: scenario})
	if err != nil {
		return linear.Expression{}, err
	}
	return linear.Linearize(resolved, c.structures())
}

func (c componentContext) evaluate(blockTimestep, scenario int, n expression.Node) (float64, error) {
	return expression.Evaluate(n, parameterValues{opt: c.opt, blockTimestep: blockTimestep, scenario: scenario})
}

// boundEvaluator evaluates one instantiated bound per (timestep, scenario),
// only along the dimensions the bound depends on.
type boundEvaluator struct {
	cc       componentContext
	node     expression.Node
	indexing expression.IndexingStructure
	fallback float64
	cache    map[[2]int]float64
}

// newBoundEvaluator returns an evaluator for n, or one that always yields
// fallback when n is nil.
func newBoundEvaluator(cc componentContext, n expression.Node, fallback float64) (*boundEvaluator, error) {
	b := &boundEvaluator{cc: cc, fallback: fallback, cache: make(map[[2]int]float64)}
	if n == nil {
		return b, nil
	}
	node, err := cc.instantiate(n)
	if err != nil {
		return nil, err
	}
	indexing, err := expression.ComputeIndexation(node, cc.structures())
	if err != nil {
		return nil, err
	}
	b.node, b.indexing = node, indexing
	return b, nil
}

func (b *boundEvaluator) value(blockTimestep, scenario int) (float64, error) {
	if b.node == nil {
		return b.fallback, nil
	}
	if !b.indexing.Time {
		blockTimestep = 0
	}
	if !b.indexing.Scenario {
		scenario = 0
	}
	key := [2]int{blockTimestep, scenario}
	if v, ok := b.cache[key]; ok {
		return v, nil
	}
	v, err := b.cc.evaluate(blockTimestep, scenario, b.node)
	if err != nil {
		return 0, err
	}
	b.cache[key] = v
	return v, nil
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)
