package chem_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/goft/chem"
)

func position(order []chem.PropagatorID, p chem.PropagatorID) int {
	for i, q := range order {
		if q == p {
			return i
		}
	}
	return -1
}

func TestLinearPlan(t *testing.T) {
	desc := chem.PolymerDescriptor{
		Type: chem.Linear,
		Blocks: []chem.Edge{
			{MonomerID: 0, Length: 0.3},
			{MonomerID: 1, Length: 0.4},
			{MonomerID: 0, Length: 0.3},
		},
		SpeciesDescriptor: chem.SpeciesDescriptor{Phi: 1},
	}
	require.NoError(t, desc.Validate(2))
	assert.Equal(t, [2]int{1, 2}, desc.Blocks[1].Vertices)
	assert.InDelta(t, 1.0, desc.Length(), 1e-15)

	plan, err := chem.NewPlan(desc.Blocks)
	require.NoError(t, err)
	require.Len(t, plan.Order, 6)
	assert.Equal(t, 4, plan.NVertex)

	// Every source is solved before the propagator it feeds.
	for _, p := range plan.Order {
		for _, s := range plan.Sources[p.Index()] {
			assert.Less(t, position(plan.Order, s), position(plan.Order, p))
		}
	}
	// Chain ends have no sources.
	assert.Empty(t, plan.Sources[chem.PropagatorID{Block: 0, Dir: 0}.Index()])
	assert.Empty(t, plan.Sources[chem.PropagatorID{Block: 2, Dir: 1}.Index()])
	assert.Equal(t, []chem.PropagatorID{{Block: 0, Dir: 0}},
		plan.Sources[chem.PropagatorID{Block: 1, Dir: 0}.Index()])
	assert.Len(t, plan.Levels, 3)

	for _, p := range plan.Order {
		assert.Equal(t, p, p.Partner().Partner())
		assert.Equal(t, p.Block, p.Partner().Block)
		assert.NotContains(t, plan.Sources[p.Index()], p.Partner())
	}
}

func TestStarPlan(t *testing.T) {
	// Three arms joined at vertex 0.
	blocks := []chem.Edge{
		{ID: 0, Length: 1, Vertices: [2]int{0, 1}},
		{ID: 1, Length: 1, Vertices: [2]int{0, 2}},
		{ID: 2, Length: 1, Vertices: [2]int{3, 0}},
	}
	plan, err := chem.NewPlan(blocks)
	require.NoError(t, err)
	// Direction 0 of block 0 starts at the junction and needs both other
	// arms coming inwards.
	src := plan.Sources[chem.PropagatorID{Block: 0, Dir: 0}.Index()]
	assert.ElementsMatch(t, []chem.PropagatorID{{Block: 1, Dir: 1}, {Block: 2, Dir: 0}}, src)
	assert.Len(t, plan.Levels, 2)
	assert.Len(t, plan.Levels[0], 3)
}

func TestBadTopology(t *testing.T) {
	for name, blocks := range map[string][]chem.Edge{
		"self loop":    {{ID: 0, Length: 1, Vertices: [2]int{0, 0}}},
		"cycle":        {{ID: 0, Vertices: [2]int{0, 1}}, {ID: 1, Vertices: [2]int{1, 2}}, {ID: 2, Vertices: [2]int{2, 0}}},
		"disconnected": {{ID: 0, Vertices: [2]int{0, 1}}, {ID: 1, Vertices: [2]int{2, 3}}, {ID: 2, Vertices: [2]int{2, 3}}},
		"gap":          {{ID: 0, Vertices: [2]int{0, 2}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := chem.NewPlan(blocks)
			require.Error(t, err)
			assert.True(t, errors.Is(err, chem.ErrTopology))
		})
	}
}

func TestParseNames(t *testing.T) {
	e, err := chem.ParseEnsemble("Open")
	require.NoError(t, err)
	assert.Equal(t, chem.Open, e)
	m, err := chem.ParsePolymerModel("bead")
	require.NoError(t, err)
	assert.Equal(t, chem.Bead, m)
	_, err = chem.ParsePolymerType("star")
	assert.True(t, errors.Is(err, chem.ErrDescriptor))
}
