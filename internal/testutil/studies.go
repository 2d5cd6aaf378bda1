package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridopt/internal/model/library"
	"github.com/vk/gridopt/internal/study"
)

// Study is a network with its data, ready to be built.
type Study struct {
	Network  *study.Network
	Database *study.DataBase
}

// Node adds a balance node.
func (s *Study) Node(t *testing.T, id string) study.Component {
	t.Helper()
	c := study.NewComponent(library.Node, id)
	require.NoError(t, s.Network.AddNode(c))
	return c
}

// Attach adds component c with the given data and connects its balance
// port to node.
func (s *Study) Attach(t *testing.T, node, c study.Component, data map[string]study.Data) {
	t.Helper()
	require.NoError(t, s.Network.AddComponent(c))
	for name, d := range data {
		s.Database.AddData(c.ID, name, d)
	}
	require.NoError(t, s.Network.Connect(
		study.PortRef{Component: c, PortID: library.BalancePort},
		study.PortRef{Component: node, PortID: library.BalancePort},
	))
}

// NewStudy returns an empty study.
func NewStudy(id string) *Study {
	return &Study{Network: study.NewNetwork(id), Database: study.NewDataBase()}
}

// DemandGenerator is a single node "N" with demand "D" served by generator
// "G" at the given cost and capacity.
func DemandGenerator(t *testing.T, demand study.Data, cost, pMax float64) *Study {
	t.Helper()
	s := NewStudy("demand_generator")
	node := s.Node(t, "N")
	s.Attach(t, node, study.NewComponent(library.Demand, "D"), map[string]study.Data{
		"demand": demand,
	})
	s.Attach(t, node, study.NewComponent(library.Generator, "G"), map[string]study.Data{
		"cost":  study.ConstantData(cost),
		"p_max": study.ConstantData(pMax),
	})
	return s
}

// Candidate is DemandGenerator where the generator is replaced by the
// investment candidate "CAND", plus unsupplied energy "U" priced at
// unsuppliedCost so every demand stays feasible.
func Candidate(t *testing.T, demand study.Data, opCost, investCost, maxInvest, unsuppliedCost float64) *Study {
	t.Helper()
	s := NewStudy("candidate")
	node := s.Node(t, "N")
	s.Attach(t, node, study.NewComponent(library.Demand, "D"), map[string]study.Data{
		"demand": demand,
	})
	s.Attach(t, node, study.NewComponent(library.ThermalCandidate, "CAND"), map[string]study.Data{
		"op_cost":     study.ConstantData(opCost),
		"invest_cost": study.ConstantData(investCost),
		"max_invest":  study.ConstantData(maxInvest),
	})
	s.Attach(t, node, study.NewComponent(library.UnsuppliedEnergy, "U"), map[string]study.Data{
		"cost": study.ConstantData(unsuppliedCost),
	})
	return s
}
