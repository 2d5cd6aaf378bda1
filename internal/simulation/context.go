package simulation

import (
	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
	"github.com/vk/gridopt/internal/solver"
	"github.com/vk/gridopt/internal/study"
)

// VariableKey identifies one solver variable. Dimensions the variable is not
// indexed on use index 0.
type VariableKey struct {
	ComponentID   string
	VariableName  string
	BlockTimestep int
	Scenario      int
}

// OptimizationContext holds the state of one build: the mapping from model
// variables to solver variables, and the expressions connected to every
// port field. It is not safe for concurrent use.
type OptimizationContext struct {
	network   *study.Network
	database  *study.DataBase
	block     TimeBlock
	scenarios int
	border    BorderManagement

	variables     map[VariableKey]*solver.Variable
	variableOrder []VariableKey

	connectionFields expression.PortFieldRegistry
	sealed           bool
}

// NewOptimizationContext checks the horizon and the border policy.
func NewOptimizationContext(network *study.Network, database *study.DataBase, block TimeBlock, scenarios int, border BorderManagement) (*OptimizationContext, error) {
	if len(block.Timesteps) == 0 {
		return nil, errs.Configuration("time block %d has no timesteps", block.ID)
	}
	if scenarios < 1 {
		return nil, errs.Configuration("scenario count must be positive, got %d", scenarios)
	}
	if border != BorderCycle {
		return nil, errs.Unsupported("border management %s is not implemented", border)
	}
	return &OptimizationContext{
		network:          network,
		database:         database,
		block:            block,
		scenarios:        scenarios,
		border:           border,
		variables:        make(map[VariableKey]*solver.Variable),
		connectionFields: make(expression.PortFieldRegistry),
	}, nil
}

func (c *OptimizationContext) Network() *study.Network   { return c.network }
func (c *OptimizationContext) Database() *study.DataBase { return c.database }
func (c *OptimizationContext) Block() TimeBlock          { return c.block }
func (c *OptimizationContext) Scenarios() int            { return c.scenarios }
func (c *OptimizationContext) BlockLength() int          { return len(c.block.Timesteps) }

// TimeIndices lists the block timesteps something with structure s spans.
func (c *OptimizationContext) TimeIndices(s expression.IndexingStructure) []int {
	if !s.Time {
		return []int{0}
	}
	return indices(c.BlockLength())
}

// ScenarioIndices lists the scenarios something with structure s spans.
func (c *OptimizationContext) ScenarioIndices(s expression.IndexingStructure) []int {
	if !s.Scenario {
		return []int{0}
	}
	return indices(c.scenarios)
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// BlockTimestepToAbsolute maps a position in the block to the timestep used
// to read data.
func (c *OptimizationContext) BlockTimestepToAbsolute(blockTimestep int) (int, error) {
	if blockTimestep < 0 || blockTimestep >= len(c.block.Timesteps) {
		return 0, errs.Usage("block timestep %d outside block of length %d", blockTimestep, len(c.block.Timesteps))
	}
	return c.block.Timesteps[blockTimestep], nil
}

func (c *OptimizationContext) manageBorder(timestep int) (int, error) {
	switch c.border {
	case BorderCycle:
		l := c.BlockLength()
		return ((timestep % l) + l) % l, nil
	default:
		return 0, errs.Unsupported("border management %s is not implemented", c.border)
	}
}

// ComponentVariable returns the solver variable a term reads at
// (blockTimestep, scenario), after applying the border policy and
// collapsing the dimensions structure does not index.
func (c *OptimizationContext) ComponentVariable(blockTimestep, scenario int, componentID, name string, structure expression.IndexingStructure) (*solver.Variable, error) {
	t, err := c.manageBorder(blockTimestep)
	if err != nil {
		return nil, err
	}
	if !structure.Time {
		t = 0
	}
	if !structure.Scenario {
		scenario = 0
	}
	key := VariableKey{ComponentID: componentID, VariableName: name, BlockTimestep: t, Scenario: scenario}
	v, ok := c.variables[key]
	if !ok {
		return nil, errs.Usage("variable %q of component %q is not registered at timestep %d, scenario %d", name, componentID, t, scenario)
	}
	return v, nil
}

// RegisterComponentVariable records v under its key. Keys are write-once.
func (c *OptimizationContext) RegisterComponentVariable(blockTimestep, scenario int, componentID, name string, v *solver.Variable) error {
	key := VariableKey{ComponentID: componentID, VariableName: name, BlockTimestep: blockTimestep, Scenario: scenario}
	if _, dup := c.variables[key]; dup {
		return errs.Usage("variable %q of component %q already registered at timestep %d, scenario %d", name, componentID, blockTimestep, scenario)
	}
	c.variables[key] = v
	c.variableOrder = append(c.variableOrder, key)
	return nil
}

// RegisteredVariable is one entry of AllComponentVariables.
type RegisteredVariable struct {
	Key      VariableKey
	Variable *solver.Variable
}

// AllComponentVariables lists every registered variable in registration
// order.
func (c *OptimizationContext) AllComponentVariables() []RegisteredVariable {
	out := make([]RegisteredVariable, 0, len(c.variableOrder))
	for _, key := range c.variableOrder {
		out = append(out, RegisteredVariable{Key: key, Variable: c.variables[key]})
	}
	return out
}

// RegisterConnectionFieldExpression appends expr to the contributions of one
// port field. Registration closes once variables are being created.
func (c *OptimizationContext) RegisterConnectionFieldExpression(componentID, port, field string, expr expression.Node) error {
	if c.sealed {
		return errs.Usage("connection fields are sealed, cannot register %s.%s of component %q", port, field, componentID)
	}
	key := expression.PortFieldKey{ComponentID: componentID, Port: port, Field: field}
	c.connectionFields[key] = append(c.connectionFields[key], expr)
	return nil
}

func (c *OptimizationContext) sealConnections() { c.sealed = true }

// ConnectionFieldExpressions is the registry port resolution reads from.
func (c *OptimizationContext) ConnectionFieldExpressions() expression.PortFieldRegistry {
	return c.connectionFields
}
