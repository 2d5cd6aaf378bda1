package expression

import "fmt"

// IndexingStructure tells whether a quantity takes a different value per
// timestep and per scenario.
type IndexingStructure struct {
	Time     bool
	Scenario bool
}

var (
	Constant                   = IndexingStructure{Time: false, Scenario: false}
	TimeAndScenarioFree        = IndexingStructure{Time: true, Scenario: true}
	NonAnticipativeTimeVarying = IndexingStructure{Time: true, Scenario: false}
	ConstantPerScenario        = IndexingStructure{Time: false, Scenario: true}
)

// Or returns the structure indexed along every dimension of s or other.
func (s IndexingStructure) Or(other IndexingStructure) IndexingStructure {
	return IndexingStructure{
		Time:     s.Time || other.Time,
		Scenario: s.Scenario || other.Scenario,
	}
}

// Covers reports whether every dimension of other is also a dimension of s.
func (s IndexingStructure) Covers(other IndexingStructure) bool {
	return (s.Time || !other.Time) && (s.Scenario || !other.Scenario)
}

// IsTrivial reports whether the quantity is a single value.
func (s IndexingStructure) IsTrivial() bool {
	return !s.Time && !s.Scenario
}

func (s IndexingStructure) String() string {
	return fmt.Sprintf("IndexingStructure(time=%t, scenario=%t)", s.Time, s.Scenario)
}
