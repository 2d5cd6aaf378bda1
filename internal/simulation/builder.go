package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vk/gridopt/internal/ctxlog"
	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
	"github.com/vk/gridopt/internal/linear"
	"github.com/vk/gridopt/internal/model"
	"github.com/vk/gridopt/internal/solver"
	"github.com/vk/gridopt/internal/study"
)

// DefaultProblemName names problems built without WithName.
const DefaultProblemName = "optimization_problem"

type buildOptions struct {
	name        string
	border      BorderManagement
	problemType ProblemType
}

// Option configures BuildProblem.
type Option func(*buildOptions)

// WithName sets the problem name, used for the MPS NAME record and the
// decomposition file names.
func WithName(name string) Option {
	return func(o *buildOptions) { o.name = name }
}

// WithBorderManagement sets how shifts past the block border are read.
// Defaults to BorderCycle.
func WithBorderManagement(b BorderManagement) Option {
	return func(o *buildOptions) { o.border = b }
}

// WithProblemType selects the decomposition variant. Defaults to
// ProblemSimulator.
func WithProblemType(t ProblemType) Option {
	return func(o *buildOptions) { o.problemType = t }
}

// BuildProblem compiles the network and its data into a solver model over
// one time block. A failed build returns no problem.
func BuildProblem(ctx context.Context, network *study.Network, database *study.DataBase, block TimeBlock, scenarios int, opts ...Option) (*Problem, error) {
	o := buildOptions{name: DefaultProblemName, border: BorderCycle, problemType: ProblemSimulator}
	for _, opt := range opts {
		opt(&o)
	}

	if err := database.RequirementsConsistency(network); err != nil {
		return nil, err
	}
	opt, err := NewOptimizationContext(network, database, block, scenarios, o.border)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	b := &builder{
		problemType: o.problemType,
		opt:         opt,
		model:       solver.NewModel(o.name),
		logger:      ctxlog.FromContext(ctx).With("problem", o.name, "build_id", id.String()),
	}
	b.logger.Debug("Building problem.", "type", o.problemType, "block", block.ID, "block_length", opt.BlockLength(), "scenarios", scenarios)

	phases := []struct {
		name string
		run  func() error
	}{
		{"connections", b.registerConnectionFields},
		{"variables", b.createVariables},
		{"constraints", b.createConstraints},
		{"objectives", b.createObjectives},
	}
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := phase.run(); err != nil {
			return nil, fmt.Errorf("build problem %q: %s: %w", o.name, phase.name, err)
		}
		b.logger.Debug("Build phase done.", "phase", phase.name,
			"variables", b.model.NumVariables(), "constraints", b.model.NumConstraints())
	}

	return &Problem{Name: o.name, ID: id, Type: o.problemType, Solver: b.model, Context: opt}, nil
}

type builder struct {
	problemType ProblemType
	opt         *OptimizationContext
	model       *solver.Model
	logger      *slog.Logger
}

// registerConnectionFields gives both endpoints of every connection the
// owner's definition of each field.
func (b *builder) registerConnectionFields() error {
	for _, cnx := range b.opt.network.Connections() {
		for _, fo := range cnx.FieldOwners() {
			owner := fo.Owner.Component
			def, ok := owner.Model.PortFieldDefinition(model.PortFieldID{PortName: fo.Owner.PortID, FieldName: fo.Field})
			if !ok {
				return errs.Configuration("no definition for port field %s on %s", fo.Field, cnx.ID())
			}
			expr := expression.AddComponentContext(owner.ID, def.Definition)
			for _, end := range []study.PortRef{cnx.Port1, cnx.Port2} {
				if err := b.opt.RegisterConnectionFieldExpression(end.Component.ID, end.PortID, fo.Field, expr); err != nil {
					return err
				}
			}
		}
	}
	b.opt.sealConnections()
	return nil
}

func (b *builder) createVariables() error {
	for _, component := range b.opt.network.AllComponents() {
		cc := componentContext{opt: b.opt, component: component}
		for _, v := range component.Model.Variables {
			if !b.problemType.includesOperationalVariables() && v.Context == model.Operational {
				continue
			}
			lower, err := newBoundEvaluator(cc, v.LowerBound, negInf)
			if err != nil {
				return fmt.Errorf("lower bound of %s.%s: %w", component.ID, v.Name, err)
			}
			upper, err := newBoundEvaluator(cc, v.UpperBound, posInf)
			if err != nil {
				return fmt.Errorf("upper bound of %s.%s: %w", component.ID, v.Name, err)
			}

			for _, t := range b.opt.TimeIndices(v.Structure) {
				for _, s := range b.opt.ScenarioIndices(v.Structure) {
					lb, err := lower.value(t, s)
					if err != nil {
						return fmt.Errorf("lower bound of %s.%s: %w", component.ID, v.Name, err)
					}
					ub, err := upper.value(t, s)
					if err != nil {
						return fmt.Errorf("upper bound of %s.%s: %w", component.ID, v.Name, err)
					}

					name := solverName(component.ID, v.Name, v.Structure, t, s)
					if _, taken := b.model.VariableByName(name); taken {
						return errs.Configuration("solver variable name %q of %s.%s is already used", name, component.ID, v.Name)
					}
					var sv *solver.Variable
					if v.Integer {
						sv = b.model.IntVar(lb, ub, name)
					} else {
						sv = b.model.NumVar(lb, ub, name)
					}
					if err := b.opt.RegisterComponentVariable(t, s, component.ID, v.Name, sv); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (b *builder) createConstraints() error {
	for _, component := range b.opt.network.AllComponents() {
		cc := componentContext{opt: b.opt, component: component}
		for _, c := range component.Model.Constraints {
			if err := b.createConstraint(cc, c); err != nil {
				return fmt.Errorf("constraint %q of component %q: %w", c.Name, component.ID, err)
			}
		}
	}
	return nil
}

// ConstraintData is one constraint valued at one (timestep, scenario).
type ConstraintData struct {
	Name       string
	LowerBound float64
	UpperBound float64
	Expression linear.Expression
}

func (b *builder) createConstraint(cc componentContext, c model.Constraint) error {
	body, err := cc.instantiate(c.Expression)
	if err != nil {
		return err
	}
	if err := expression.CheckAggregatedParameters(body, cc.structures()); err != nil {
		return err
	}
	if !b.problemType.includesOperationalVariables() {
		touches, err := b.touchesOperational(body)
		if err != nil {
			return err
		}
		if touches {
			b.logger.Debug("Skipping operational constraint.", "component", cc.component.ID, "constraint", c.Name)
			return nil
		}
	}

	lower, err := newBoundEvaluator(cc, c.LowerBound, negInf)
	if err != nil {
		return err
	}
	upper, err := newBoundEvaluator(cc, c.UpperBound, posInf)
	if err != nil {
		return err
	}
	indexing, err := expression.ComputeIndexation(body, cc.structures())
	if err != nil {
		return err
	}
	indexing = indexing.Or(lower.indexing).Or(upper.indexing)

	canonical, err := cc.linearize(0, 0, body)
	if err != nil {
		return err
	}
	instances := canonical.NumberOfInstances()

	for _, t := range b.opt.TimeIndices(indexing) {
		for _, s := range b.opt.ScenarioIndices(indexing) {
			expr, err := cc.linearize(t, s, body)
			if err != nil {
				return err
			}
			lb, err := lower.value(t, s)
			if err != nil {
				return err
			}
			ub, err := upper.value(t, s)
			if err != nil {
				return err
			}
			data := ConstraintData{
				Name:       solverName(cc.component.ID, c.Name, indexing, t, s),
				LowerBound: lb,
				UpperBound: ub,
				Expression: expr,
			}
			if err := b.makeConstraint(t, s, data, instances); err != nil {
				return err
			}
		}
	}
	return nil
}

// makeConstraint adds one row per instance. Residual constants move to the
// bounds.
func (b *builder) makeConstraint(t, s int, data ConstraintData, instances int) error {
	for instance := 0; instance < instances; instance++ {
		name := data.Name
		if instances > 1 {
			name += "_" + strconv.Itoa(instance)
		}
		if _, taken := b.model.ConstraintByName(name); taken {
			return errs.Configuration("solver constraint name %q is already used", name)
		}
		row := b.model.Constraint(name)
		for _, term := range data.Expression.Terms() {
			vars, err := solverVars(term, b.opt, t, s, instance)
			if err != nil {
				return err
			}
			for _, v := range vars {
				row.SetCoefficient(v, row.Coefficient(v)+term.Coefficient)
			}
		}
		constant := data.Expression.Constant
		row.SetBounds(data.LowerBound-constant, data.UpperBound-constant)
	}
	return nil
}

func (b *builder) touchesOperational(n expression.Node) (bool, error) {
	for _, ref := range expression.ComponentVariables(n) {
		c, ok := b.opt.network.Component(ref.ComponentID)
		if !ok {
			return false, errs.Configuration("component %q is not part of network %q", ref.ComponentID, b.opt.network.ID)
		}
		v, ok := c.Model.Variable(ref.Name)
		if !ok {
			return false, errs.Configuration("model %q of component %q has no variable %q", c.Model.ID, c.ID, ref.Name)
		}
		if v.Context == model.Operational {
			return true, nil
		}
	}
	return false, nil
}

func (b *builder) createObjectives() error {
	for _, component := range b.opt.network.AllComponents() {
		cc := componentContext{opt: b.opt, component: component}
		m := component.Model
		if b.problemType.includesOperationalObjective() && m.ObjectiveOperationalContribution != nil {
			if err := b.createObjective(cc, m.ObjectiveOperationalContribution); err != nil {
				return fmt.Errorf("operational objective of component %q: %w", component.ID, err)
			}
		}
		if b.problemType.includesInvestmentObjective() && m.ObjectiveInvestmentContribution != nil {
			if err := b.createObjective(cc, m.ObjectiveInvestmentContribution); err != nil {
				return fmt.Errorf("investment objective of component %q: %w", component.ID, err)
			}
		}
	}
	return nil
}

// createObjective adds one contribution. Contributions are neither time nor
// scenario indexed, so they are linearized once at the block start.
func (b *builder) createObjective(cc componentContext, contribution expression.Node) error {
	n, err := cc.instantiate(contribution)
	if err != nil {
		return err
	}
	if err := expression.CheckAggregatedParameters(n, cc.structures()); err != nil {
		return err
	}
	expr, err := cc.linearize(0, 0, n)
	if err != nil {
		return err
	}

	obj := b.model.Objective()
	for _, term := range expr.Terms() {
		weight, scenarios := 1.0, []int{0}
		if term.ScenarioOperator != nil {
			weight = 1 / float64(b.opt.scenarios)
			scenarios = indices(b.opt.scenarios)
		}
		for _, s := range scenarios {
			vars, err := solverVars(term, b.opt, 0, s, 0)
			if err != nil {
				return err
			}
			for _, v := range vars {
				obj.SetCoefficient(v, obj.Coefficient(v)+weight*term.Coefficient)
			}
		}
	}
	obj.SetOffset(obj.Offset() + expr.Constant)
	return nil
}

// solverName renders "<component>_<name>[_t<t>][_s<s>]" with spaces
// replaced by underscores. Suffixes only appear for indexed dimensions.
func solverName(componentID, name string, s expression.IndexingStructure, t, scenario int) string {
	var sb strings.Builder
	sb.WriteString(componentID)
	sb.WriteByte('_')
	sb.WriteString(name)
	if s.Time {
		sb.WriteString("_t")
		sb.WriteString(strconv.Itoa(t))
	}
	if s.Scenario {
		sb.WriteString("_s")
		sb.WriteString(strconv.Itoa(scenario))
	}
	return strings.ReplaceAll(sb.String(), " ", "_")
}
