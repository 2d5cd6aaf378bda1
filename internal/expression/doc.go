// Package expression defines the symbolic expression tree used by model
// definitions, and the rewriting passes that turn one model expression into
// a component-specific, fully resolved expression.
//
// A raw model expression refers to variables, parameters and port fields by
// bare name. Instantiating it for one component is a fixed sequence of
// passes:
//
//  1. AddComponentContext qualifies every bare reference with the owning
//     component id, so one model can be instantiated by many components.
//  2. ResolvePorts replaces port field references by the expressions the
//     connected neighbours registered for them, summing fan-in.
//  3. ResolveParameters replaces component parameters by the numeric value
//     for one (timestep, scenario) pair.
//
// The result only contains literals, component variables, arithmetic and
// time/scenario operators, and is linearized by package linear.
//
// Every pass is a pure function: the input tree is never modified.
package expression
