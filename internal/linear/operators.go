package linear

import (
	"strconv"
	"strings"
)

// TimeOperator selects the timesteps at which a term's variable is read.
// Implementations: Shift, Evaluation. A nil TimeOperator reads the current
// timestep.
type TimeOperator interface {
	TimeIDs() []int
	String() string
	timeOperator()
}

// Shift reads the variable at current timestep + offset.
type Shift struct {
	Offsets []int
}

// Evaluation reads the variable at absolute block timesteps.
type Evaluation struct {
	Indices []int
}

func (s Shift) TimeIDs() []int      { return s.Offsets }
func (e Evaluation) TimeIDs() []int { return e.Indices }
func (s Shift) String() string      { return ".shift(" + formatInts(s.Offsets) + ")" }
func (e Evaluation) String() string { return ".eval(" + formatInts(e.Indices) + ")" }
func (Shift) timeOperator()         {}
func (Evaluation) timeOperator()    {}

// TimeAggregator sums a term over the timesteps its operator selects.
// The only implementation is Sum; nil means no aggregation.
type TimeAggregator interface {
	String() string
	timeAggregator()
}

// Sum aggregates over time. StayRoll keeps the sum indexed by time.
type Sum struct {
	StayRoll bool
}

func (s Sum) String() string { return ".sum(" + strconv.FormatBool(s.StayRoll) + ")" }
func (Sum) timeAggregator()  {}

// ScenarioOperator aggregates a term over scenarios. The only
// implementation is Expectation; nil means no aggregation.
type ScenarioOperator interface {
	String() string
	scenarioOperator()
}

// Expectation averages over scenarios with uniform weights.
type Expectation struct{}

func (Expectation) String() string  { return ".expec()" }
func (Expectation) scenarioOperator() {}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func render(s interface{ String() string }) string {
	if s == nil {
		return ""
	}
	return s.String()
}
