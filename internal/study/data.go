package study

import (
	"fmt"
	"sync"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/expression"
)

// Data values one parameter of one component at an absolute timestep and
// a scenario.
type Data interface {
	Value(timestep, scenario int) (float64, error)
	// Structure is the indexing the data actually carries.
	Structure() expression.IndexingStructure
}

// ConstantData has one value everywhere and suits any parameter.
type ConstantData float64

func (d ConstantData) Value(int, int) (float64, error)         { return float64(d), nil }
func (ConstantData) Structure() expression.IndexingStructure { return expression.Constant }

// TimeSeriesData is indexed by absolute timestep.
type TimeSeriesData map[int]float64

// NewTimeSeries indexes values from timestep 0.
func NewTimeSeries(values ...float64) TimeSeriesData {
	d := make(TimeSeriesData, len(values))
	for t, v := range values {
		d[t] = v
	}
	return d
}

func (d TimeSeriesData) Value(timestep, _ int) (float64, error) {
	v, ok := d[timestep]
	if !ok {
		return 0, errs.Configuration("time series has no value for timestep %d", timestep)
	}
	return v, nil
}

func (TimeSeriesData) Structure() expression.IndexingStructure {
	return expression.NonAnticipativeTimeVarying
}

// ScenarioSeriesData is indexed by scenario.
type ScenarioSeriesData map[int]float64

// NewScenarioSeries indexes values from scenario 0.
func NewScenarioSeries(values ...float64) ScenarioSeriesData {
	d := make(ScenarioSeriesData, len(values))
	for s, v := range values {
		d[s] = v
	}
	return d
}

func (d ScenarioSeriesData) Value(_, scenario int) (float64, error) {
	v, ok := d[scenario]
	if !ok {
		return 0, errs.Configuration("scenario series has no value for scenario %d", scenario)
	}
	return v, nil
}

func (ScenarioSeriesData) Structure() expression.IndexingStructure {
	return expression.ConstantPerScenario
}

// TimeScenarioIndex is one cell of a TimeScenarioSeriesData.
type TimeScenarioIndex struct {
	Time     int
	Scenario int
}

// TimeScenarioSeriesData is indexed by absolute timestep and scenario.
type TimeScenarioSeriesData map[TimeScenarioIndex]float64

// NewTimeScenarioSeries reads rows as timesteps and columns as scenarios.
func NewTimeScenarioSeries(rows [][]float64) TimeScenarioSeriesData {
	d := make(TimeScenarioSeriesData)
	for t, row := range rows {
		for s, v := range row {
			d[TimeScenarioIndex{Time: t, Scenario: s}] = v
		}
	}
	return d
}

func (d TimeScenarioSeriesData) Value(timestep, scenario int) (float64, error) {
	v, ok := d[TimeScenarioIndex{Time: timestep, Scenario: scenario}]
	if !ok {
		return 0, errs.Configuration("time-scenario series has no value for timestep %d, scenario %d", timestep, scenario)
	}
	return v, nil
}

func (TimeScenarioSeriesData) Structure() expression.IndexingStructure {
	return expression.TimeAndScenarioFree
}

// ComponentParameterIndex keys the data base.
type ComponentParameterIndex struct {
	ComponentID   string
	ParameterName string
}

// DataBase maps component parameters to their data. Safe for concurrent use.
type DataBase struct {
	mu   sync.RWMutex
	data map[ComponentParameterIndex]Data
}

// NewDataBase returns an empty data base.
func NewDataBase() *DataBase {
	return &DataBase{data: make(map[ComponentParameterIndex]Data)}
}

// AddData binds data to a component parameter, replacing any previous data.
func (db *DataBase) AddData(componentID, parameter string, d Data) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[ComponentParameterIndex{ComponentID: componentID, ParameterName: parameter}] = d
}

// Data returns the data bound to a component parameter.
func (db *DataBase) Data(componentID, parameter string) (Data, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	d, ok := db.data[ComponentParameterIndex{ComponentID: componentID, ParameterName: parameter}]
	if !ok {
		return nil, errs.Configuration("no data for parameter %q of component %q", parameter, componentID)
	}
	return d, nil
}

// Value returns a component parameter at an absolute timestep and scenario.
func (db *DataBase) Value(componentID, parameter string, timestep, scenario int) (float64, error) {
	d, err := db.Data(componentID, parameter)
	if err != nil {
		return 0, err
	}
	v, err := d.Value(timestep, scenario)
	if err != nil {
		return 0, fmt.Errorf("parameter %q of component %q: %w", parameter, componentID, err)
	}
	return v, nil
}

// RequirementsConsistency checks that every parameter of every component has
// data, and that the data is not indexed along a dimension the parameter
// does not declare.
func (db *DataBase) RequirementsConsistency(n *Network) error {
	var problems []string
	for _, c := range n.AllComponents() {
		for _, p := range c.Model.Parameters {
			d, err := db.Data(c.ID, p.Name)
			if err != nil {
				problems = append(problems, fmt.Sprintf("component %s, parameter %s: no data", c.ID, p.Name))
				continue
			}
			if !p.Structure.Covers(d.Structure()) {
				problems = append(problems, fmt.Sprintf(
					"data inconsistency for component: %s, parameter: %s. Requirement not met: declared %s, data %s",
					c.ID, p.Name, p.Structure, d.Structure()))
			}
		}
	}
	return errs.Collect(errs.ErrConfiguration, fmt.Sprintf("data base does not match network %q", n.ID), problems)
}
