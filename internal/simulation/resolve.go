package simulation

import (
	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/linear"
	"github.com/vk/gridopt/internal/solver"
)

// solverVars returns the solver variables one instance of term reads at
// (blockTimestep, scenario). Aggregated terms read every selected timestep;
// the others read the timestep of the given instance.
func solverVars(term linear.Term, opt *OptimizationContext, blockTimestep, scenario, instance int) ([]*solver.Variable, error) {
	var timesteps []int
	switch agg := term.TimeAggregator.(type) {
	case linear.Sum:
		switch op := term.TimeOperator.(type) {
		case linear.Shift:
			for _, off := range op.Offsets {
				timesteps = append(timesteps, blockTimestep+off)
			}
		case linear.Evaluation:
			timesteps = append(timesteps, op.Indices...)
		case nil:
			for i := 0; i < opt.BlockLength(); i++ {
				timesteps = append(timesteps, blockTimestep+i)
			}
		default:
			return nil, errs.Unsupported("time operator %T", op)
		}
	case nil:
		switch op := term.TimeOperator.(type) {
		case linear.Shift:
			off, err := at(op.Offsets, instance, term)
			if err != nil {
				return nil, err
			}
			timesteps = append(timesteps, blockTimestep+off)
		case linear.Evaluation:
			idx, err := at(op.Indices, instance, term)
			if err != nil {
				return nil, err
			}
			timesteps = append(timesteps, idx)
		case nil:
			timesteps = append(timesteps, blockTimestep)
		default:
			return nil, errs.Unsupported("time operator %T", op)
		}
	default:
		return nil, errs.Unsupported("time aggregator %T", agg)
	}

	out := make([]*solver.Variable, 0, len(timesteps))
	for _, t := range timesteps {
		v, err := opt.ComponentVariable(t, scenario, term.ComponentID, term.VariableName, term.Structure)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func at(ids []int, instance int, term linear.Term) (int, error) {
	if instance < 0 || instance >= len(ids) {
		return 0, errs.Configuration("term %s has %d time indices, instance %d requested", term, len(ids), instance)
	}
	return ids[instance], nil
}
