// Package simulation compiles a study into a solver model over one time
// block.
//
// A build runs four phases against a fresh OptimizationContext:
//
//  1. every connection registers the owner's port field definitions under
//     both endpoints, and the registry is sealed;
//  2. one solver variable is created per component variable and per
//     (timestep, scenario) the variable is indexed on;
//  3. each model constraint is instantiated, linearized per
//     (timestep, scenario) and expanded into rows;
//  4. objective contributions are linearized once and accumulated.
//
// The decomposition variants drop parts of the problem: the master keeps
// investment variables and the investment objective, the subproblem keeps
// every variable and the operational objective. ExportXpansionProblem
// writes both along with the structure file that maps candidates to column
// indexes.
package simulation
