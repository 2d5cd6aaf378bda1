package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridopt/internal/model"
)

func TestLibraryModels(t *testing.T) {
	for _, m := range []*model.Model{Node, Demand, Generator, Spillage, UnsuppliedEnergy, Link, ShortTermStorage, ThermalCandidate} {
		t.Run(m.ID, func(t *testing.T) {
			for _, p := range m.Ports {
				assert.True(t, p.PortType.Equal(BalancePortType), "port %s", p.PortName)
			}
		})
	}
}

func TestThermalCandidateContexts(t *testing.T) {
	pmax, ok := ThermalCandidate.Variable("p_max")
	require.True(t, ok)
	assert.Equal(t, model.Investment, pmax.Context)
	assert.True(t, pmax.Structure.IsTrivial())

	generation, ok := ThermalCandidate.Variable("generation")
	require.True(t, ok)
	assert.Equal(t, model.Operational, generation.Context)

	assert.NotNil(t, ThermalCandidate.ObjectiveInvestmentContribution)
	assert.NotNil(t, ThermalCandidate.ObjectiveOperationalContribution)
}

func TestSlackDirections(t *testing.T) {
	def, ok := Spillage.PortFieldDefinition(model.PortFieldID{PortName: BalancePort, FieldName: "flow"})
	require.True(t, ok)
	assert.Equal(t, "-(spillage)", def.Definition.String())

	def, ok = UnsuppliedEnergy.PortFieldDefinition(model.PortFieldID{PortName: BalancePort, FieldName: "flow"})
	require.True(t, ok)
	assert.Equal(t, "unsupplied_energy", def.Definition.String())
}
