package simulation

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// VariableOutput is the value grid of one variable, indexed [timestep][scenario].
// Dimensions the variable is not indexed on have length 1.
type VariableOutput struct {
	Name   string
	Values [][]float64
}

// Value returns the value at (timestep, scenario), collapsing dimensions
// the variable does not span.
func (v *VariableOutput) Value(timestep, scenario int) float64 {
	if len(v.Values) == 1 {
		timestep = 0
	}
	row := v.Values[timestep]
	if len(row) == 1 {
		scenario = 0
	}
	return row[scenario]
}

// ComponentOutput groups the variables of one component.
type ComponentOutput struct {
	ID        string
	Variables map[string]*VariableOutput
}

// OutputValues reads variable values out of a solved problem.
type OutputValues struct {
	Problem    *Problem
	Components map[string]*ComponentOutput
}

// NewOutputValues collects the solution values of every registered
// variable. Call it after a successful Solve.
func NewOutputValues(p *Problem) *OutputValues {
	out := &OutputValues{Problem: p, Components: make(map[string]*ComponentOutput)}
	for _, rv := range p.Context.AllComponentVariables() {
		k := rv.Key
		c, ok := out.Components[k.ComponentID]
		if !ok {
			c = &ComponentOutput{ID: k.ComponentID, Variables: make(map[string]*VariableOutput)}
			out.Components[k.ComponentID] = c
		}
		v, ok := c.Variables[k.VariableName]
		if !ok {
			v = &VariableOutput{Name: k.VariableName}
			c.Variables[k.VariableName] = v
		}
		for len(v.Values) <= k.BlockTimestep {
			v.Values = append(v.Values, nil)
		}
		row := v.Values[k.BlockTimestep]
		for len(row) <= k.Scenario {
			row = append(row, math.NaN())
		}
		row[k.Scenario] = rv.Variable.SolutionValue()
		v.Values[k.BlockTimestep] = row
	}
	return out
}

// Component returns the outputs of one component.
func (o *OutputValues) Component(id string) (*ComponentOutput, bool) {
	c, ok := o.Components[id]
	return c, ok
}

// Variable returns the outputs of one variable.
func (c *ComponentOutput) Variable(name string) (*VariableOutput, bool) {
	v, ok := c.Variables[name]
	return v, ok
}

func (o *OutputValues) String() string {
	ids := make([]string, 0, len(o.Components))
	for id := range o.Components {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		c := o.Components[id]
		names := make([]string, 0, len(c.Variables))
		for name := range c.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%s.%s: %v\n", id, name, c.Variables[name].Values)
		}
	}
	return b.String()
}
