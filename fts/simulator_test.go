package fts_test

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/goft/config"
	"example.com/goft/field"
	"example.com/goft/fts"
	"example.com/goft/iterator"
	"example.com/goft/logs"
	"example.com/goft/system"
)

const meltTOML = `
[mixture]
ds = 0.05

  [[mixture.monomers]]
  name = "A"
  kuhn = 1.0

  [[mixture.monomers]]
  name = "B"
  kuhn = 1.0

  [[mixture.polymers]]
  phi = 1.0

    [[mixture.polymers.blocks]]
    monomer = 0
    length = 0.5

    [[mixture.polymers.blocks]]
    monomer = 1
    length = 0.5

[interaction]
chi = [[0.0, %[1]f], [%[1]f, 0.0]]

[domain]
mesh = [16]
lattice = "lamellar"
cellParams = [2.0]
`

func newMelt(t *testing.T, chi float64) *system.System {
	t.Helper()
	p, err := config.Decode(strings.NewReader(fmt.Sprintf(meltTOML, chi)))
	require.NoError(t, err)
	s, err := system.New(p)
	require.NoError(t, err)
	return s
}

func params(seed uint64, step float64) fts.Params {
	ip := iterator.DefaultParams()
	ip.Epsilon = 1e-9
	ip.MaxItr = 300
	ip.Verbose = 0
	return fts.Params{Seed: seed, StepSize: step, Compressor: ip}
}

func copyW(s *system.System) []field.RField {
	w := field.NewRFields(s.Domain().Mesh(), 2)
	field.CopyFields(w, s.W())
	return w
}

func TestUnsupportedSystems(t *testing.T) {
	_, err := fts.New(newMelt(t, -2), params(1, 0.1))
	assert.ErrorIs(t, err, fts.ErrUnsupported)

	_, err = fts.New(newMelt(t, 2), params(1, 0))
	assert.Error(t, err)
}

func TestCompressorEnforcesIncompressibility(t *testing.T) {
	s := newMelt(t, 2)
	w := s.W()
	for k := range w[0] {
		x := 2 * math.Pi * float64(k) / float64(len(w[0]))
		w[0][k] = 0.8*math.Cos(x) + 0.3*math.Sin(3*x)
		w[1][k] = 0.5 * math.Sin(2*x)
	}
	sim, err := fts.New(s, params(1, 0.1))
	require.NoError(t, err)
	require.Equal(t, 0, sim.Compress())

	c := s.C()
	for k := range c[0] {
		assert.InDelta(t, 1, c[0][k]+c[1][k], 1e-8, "point %d", k)
	}
	// The exchange field is not touched by the compressor.
	for k := range w[0] {
		x := 2 * math.Pi * float64(k) / float64(len(w[0]))
		want := 0.5 * (0.8*math.Cos(x) + 0.3*math.Sin(3*x) - 0.5*math.Sin(2*x))
		assert.InDelta(t, want, 0.5*(w[0][k]-w[1][k]), 1e-12)
	}
}

func TestHamiltonianOfDisorderedState(t *testing.T) {
	s := newMelt(t, 2)
	sim, err := fts.New(s, params(1, 0.1))
	require.NoError(t, err)
	require.Equal(t, 0, sim.Compress())
	// W+ = W- = 0 and Q = 1.
	assert.InDelta(t, 0, sim.Hamiltonian(), 1e-10)
}

func TestRejectedMoveRestoresState(t *testing.T) {
	s := newMelt(t, 2)
	sim, err := fts.New(s, params(7, 50))
	require.NoError(t, err)
	require.Equal(t, 0, sim.Compress())
	h := sim.Hamiltonian()
	w := copyW(s)
	c := field.NewRFields(s.Domain().Mesh(), 2)
	field.CopyFields(c, s.C())
	q := s.Mixture().Polymer(0).Q()
	mu := s.Mixture().Polymer(0).Mu
	thermo := s.Thermo()

	assert.False(t, sim.Step())
	assert.Equal(t, w, s.W())
	for i := range c {
		assert.InDeltaSlice(t, c[i], s.C()[i], 1e-12)
	}
	assert.Equal(t, h, sim.Hamiltonian())
	assert.Equal(t, 1, sim.Stats().Attempted)
	assert.Equal(t, 0, sim.Stats().Accepted)

	// The mixture describes the restored fields, not the rejected trial.
	assert.InDelta(t, q, s.Mixture().Polymer(0).Q(), 1e-12)
	assert.InDelta(t, mu, s.Mixture().Polymer(0).Mu, 1e-12)
	after := s.Thermo()
	assert.InDelta(t, thermo.FHelmholtz, after.FHelmholtz, 1e-10)
	assert.InDelta(t, thermo.Pressure, after.Pressure, 1e-10)
}

func TestUncompressedStartIsReported(t *testing.T) {
	var buf bytes.Buffer
	logs.SetOutput(&buf)
	t.Cleanup(func() { logs.SetOutput(io.Discard) })

	s := newMelt(t, 2)
	w := s.W()
	for k := range w[0] {
		x := 2 * math.Pi * float64(k) / float64(len(w[0]))
		w[0][k] = math.Cos(x)
		w[1][k] = 0.5 * math.Cos(x)
	}
	p := params(3, 0.1)
	p.Compressor.MaxItr = 1
	sim, err := fts.New(s, p)
	require.NoError(t, err)

	sim.Step()
	assert.Contains(t, buf.String(), "starting state is not compressed")
}

func TestSameSeedSameChain(t *testing.T) {
	run := func(seed uint64) ([]field.RField, fts.Stats) {
		s := newMelt(t, 2)
		sim, err := fts.New(s, params(seed, 0.2))
		require.NoError(t, err)
		stats := sim.Simulate(5)
		return copyW(s), stats
	}
	w1, st1 := run(42)
	w2, st2 := run(42)
	assert.Equal(t, w1, w2)
	assert.Equal(t, st1, st2)
	assert.Equal(t, 5, st1.Attempted)
	assert.GreaterOrEqual(t, st1.AcceptanceRatio(), 0.0)
	assert.LessOrEqual(t, st1.AcceptanceRatio(), 1.0)

	w3, _ := run(43)
	assert.NotEqual(t, w1, w3)
}
