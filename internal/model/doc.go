// Package model defines the reusable templates that components instantiate:
// typed ports, parameters, variables, constraints and objective
// contributions, all written as expression trees over the model's own bare
// names.
//
// # Core Concepts
//
//   - PortType: a named list of fields exchanged through a port, such as
//     "flow" on a balance port.
//
//   - Model: the template. It declares the quantities a component owns and
//     the port fields it defines for its neighbours.
//
//   - ProblemContext: tells the decomposition whether a variable belongs to
//     the operational subproblem or to the investment master.
//
// A Model is validated once, when it is created. Every expression is checked
// against the declared names, and objective contributions must reduce to a
// single value.
package model
