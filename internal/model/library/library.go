// Package library holds the standard models of an energy balance study:
// nodes, demands, generators, slack components, links, storage and an
// investment candidate.
package library

import (
	"github.com/vk/gridopt/internal/expression"
	"github.com/vk/gridopt/internal/model"
)

// BalancePortType carries an energy flow into a node.
var BalancePortType = model.NewPortType("balance", "flow")

// BalancePort is the port name used by every single-port model.
const BalancePort = "balance_port"

var (
	balancePort = model.ModelPort{PortType: BalancePortType, PortName: BalancePort}
	flow        = expression.Port(BalancePort, "flow")
)

// Node sums every flow connected to its balance port to zero.
var Node = model.MustNew("NODE_BALANCE_MODEL",
	model.WithPorts(balancePort),
	model.WithConstraints(
		model.NewConstraint("Balance", expression.Eq(expression.SumConnections(flow), expression.Lit(0))),
	),
)

// Demand withdraws the demand parameter from its node.
var Demand = model.MustNew("FIXED_DEMAND_MODEL",
	model.WithParameters(model.FloatParameter("demand")),
	model.WithPorts(balancePort),
	model.WithPortFieldDefinitions(
		model.DefinePortField(BalancePort, "flow", expression.Neg(expression.Param("demand"))),
	),
)

// Generator injects generation in [0, p_max] at a linear cost.
var Generator = model.MustNew("GENERATOR_MODEL",
	model.WithParameters(
		model.FloatParameter("cost", expression.Constant),
		model.FloatParameter("p_max", expression.Constant),
	),
	model.WithVariables(
		model.FloatVariable("generation",
			model.WithLowerBound(expression.Lit(0)),
			model.WithUpperBound(expression.Param("p_max")),
		),
	),
	model.WithPorts(balancePort),
	model.WithPortFieldDefinitions(
		model.DefinePortField(BalancePort, "flow", expression.Var("generation")),
	),
	model.WithOperationalObjective(
		expression.Expec(expression.Sum(expression.Mul(expression.Param("cost"), expression.Var("generation")))),
	),
)

// Spillage absorbs surplus energy at a cost.
var Spillage = slack("SPILLAGE", "spillage", true)

// UnsuppliedEnergy covers missing energy at a cost.
var UnsuppliedEnergy = slack("UNSUPPLIED_ENERGY", "unsupplied_energy", false)

func slack(id, variable string, withdraws bool) *model.Model {
	definition := expression.Var(variable)
	if withdraws {
		definition = expression.Neg(definition)
	}
	return model.MustNew(id,
		model.WithParameters(model.FloatParameter("cost", expression.Constant)),
		model.WithVariables(model.FloatVariable(variable, model.WithLowerBound(expression.Lit(0)))),
		model.WithPorts(balancePort),
		model.WithPortFieldDefinitions(model.DefinePortField(BalancePort, "flow", definition)),
		model.WithOperationalObjective(
			expression.Expec(expression.Sum(expression.Mul(expression.Param("cost"), expression.Var(variable)))),
		),
	)
}

// Link ports.
const (
	LinkPortFrom = "balance_port_from"
	LinkPortTo   = "balance_port_to"
)

// Link transfers flow in [-f_max, f_max] from one node to another.
var Link = model.MustNew("LINK",
	model.WithParameters(model.FloatParameter("f_max", expression.Constant)),
	model.WithVariables(
		model.FloatVariable("flow",
			model.WithLowerBound(expression.Neg(expression.Param("f_max"))),
			model.WithUpperBound(expression.Param("f_max")),
		),
	),
	model.WithPorts(
		model.ModelPort{PortType: BalancePortType, PortName: LinkPortFrom},
		model.ModelPort{PortType: BalancePortType, PortName: LinkPortTo},
	),
	model.WithPortFieldDefinitions(
		model.DefinePortField(LinkPortFrom, "flow", expression.Neg(expression.Var("flow"))),
		model.DefinePortField(LinkPortTo, "flow", expression.Var("flow")),
	),
)

// ShortTermStorage keeps a cyclic level over the block: the level at the
// first timestep follows from the level at the last one.
var ShortTermStorage = model.MustNew("STS",
	model.WithParameters(
		model.FloatParameter("p_max_injection", expression.Constant),
		model.FloatParameter("p_max_withdrawal", expression.Constant),
		model.FloatParameter("level_min", expression.Constant),
		model.FloatParameter("level_max", expression.Constant),
		model.FloatParameter("efficiency", expression.Constant),
		model.FloatParameter("inflows"),
	),
	model.WithVariables(
		model.FloatVariable("p_injection",
			model.WithLowerBound(expression.Lit(0)),
			model.WithUpperBound(expression.Param("p_max_injection")),
		),
		model.FloatVariable("p_withdrawal",
			model.WithLowerBound(expression.Lit(0)),
			model.WithUpperBound(expression.Param("p_max_withdrawal")),
		),
		model.FloatVariable("level",
			model.WithLowerBound(expression.Param("level_min")),
			model.WithUpperBound(expression.Param("level_max")),
		),
	),
	model.WithPorts(balancePort),
	model.WithPortFieldDefinitions(
		model.DefinePortField(BalancePort, "flow", expression.Sub(expression.Var("p_withdrawal"), expression.Var("p_injection"))),
	),
	model.WithConstraints(
		model.NewConstraint("Level equation", expression.Eq(
			expression.Add(
				expression.Sub(expression.Var("level"), expression.Shift(expression.Var("level"), -1)),
				expression.Neg(expression.Mul(expression.Param("efficiency"), expression.Var("p_injection"))),
				expression.Var("p_withdrawal"),
			),
			expression.Param("inflows"),
		)),
	),
)

// ThermalCandidate is a generator whose capacity p_max is an investment
// decision, priced by invest_cost and capped by max_invest.
var ThermalCandidate = model.MustNew("THERMAL_CANDIDATE",
	model.WithParameters(
		model.FloatParameter("op_cost", expression.Constant),
		model.FloatParameter("invest_cost", expression.Constant),
		model.FloatParameter("max_invest", expression.Constant),
	),
	model.WithVariables(
		model.FloatVariable("generation", model.WithLowerBound(expression.Lit(0))),
		model.FloatVariable("p_max",
			model.WithLowerBound(expression.Lit(0)),
			model.WithUpperBound(expression.Param("max_invest")),
			model.WithStructure(expression.Constant),
			model.WithContext(model.Investment),
		),
	),
	model.WithPorts(balancePort),
	model.WithPortFieldDefinitions(
		model.DefinePortField(BalancePort, "flow", expression.Var("generation")),
	),
	model.WithConstraints(
		model.NewConstraint("Max generation", expression.Le(expression.Var("generation"), expression.Var("p_max"))),
	),
	model.WithOperationalObjective(
		expression.Expec(expression.Sum(expression.Mul(expression.Param("op_cost"), expression.Var("generation")))),
	),
	model.WithInvestmentObjective(
		expression.Mul(expression.Param("invest_cost"), expression.Var("p_max")),
	),
)
