package simulation

import (
	"fmt"
	"strings"

	"github.com/vk/gridopt/internal/errs"
)

// TimeBlock is the horizon of one problem: an ordered list of absolute
// timesteps. Variables and constraints are indexed by position in the
// block, parameters by absolute timestep.
type TimeBlock struct {
	ID        int
	Timesteps []int
}

// BorderManagement decides what a time shift past the block border reads.
type BorderManagement int

const (
	// BorderCycle wraps timesteps modulo the block length.
	BorderCycle BorderManagement = iota
	// BorderIgnoreOutOfFrame drops out-of-block terms. Not implemented.
	BorderIgnoreOutOfFrame
)

func (b BorderManagement) String() string {
	switch b {
	case BorderCycle:
		return "CYCLE"
	case BorderIgnoreOutOfFrame:
		return "IGNORE"
	default:
		return fmt.Sprintf("BorderManagement(%d)", int(b))
	}
}

// ParseBorderManagement accepts the String form, case-insensitively.
func ParseBorderManagement(s string) (BorderManagement, error) {
	switch strings.ToUpper(s) {
	case "CYCLE":
		return BorderCycle, nil
	case "IGNORE", "IGNORE_OUT_OF_FRAME":
		return BorderIgnoreOutOfFrame, nil
	default:
		return 0, errs.Configuration("unknown border management %q", s)
	}
}

// ProblemType selects which decomposition partitions a build includes.
type ProblemType int

const (
	// ProblemSimulator is the full single-stage problem.
	ProblemSimulator ProblemType = iota
	// ProblemXpansionMerged keeps both partitions, for validation.
	ProblemXpansionMerged
	// ProblemXpansionMaster keeps investment variables and objective only.
	ProblemXpansionMaster
	// ProblemXpansionSubproblem keeps every variable and the operational
	// objective only.
	ProblemXpansionSubproblem
)

func (p ProblemType) String() string {
	switch p {
	case ProblemSimulator:
		return "simulator"
	case ProblemXpansionMerged:
		return "xpansion_merged"
	case ProblemXpansionMaster:
		return "xpansion_master"
	case ProblemXpansionSubproblem:
		return "xpansion_subproblem"
	default:
		return fmt.Sprintf("ProblemType(%d)", int(p))
	}
}

// ParseProblemType accepts the String form.
func ParseProblemType(s string) (ProblemType, error) {
	for _, p := range []ProblemType{ProblemSimulator, ProblemXpansionMerged, ProblemXpansionMaster, ProblemXpansionSubproblem} {
		if p.String() == strings.ToLower(s) {
			return p, nil
		}
	}
	return 0, errs.Configuration("unknown problem type %q", s)
}

func (p ProblemType) includesOperationalVariables() bool {
	return p != ProblemXpansionMaster
}

func (p ProblemType) includesOperationalObjective() bool {
	return p != ProblemXpansionMaster
}

func (p ProblemType) includesInvestmentObjective() bool {
	return p != ProblemXpansionSubproblem
}
