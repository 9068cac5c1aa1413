package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/goft/chem"
	"example.com/goft/field"
	"example.com/goft/solver"
	"example.com/goft/unitcell"
)

type domain struct {
	mesh    field.Mesh
	backend *field.CPU
	cell    *unitcell.UnitCell
	waves   *unitcell.WaveList
}

func newDomain(t *testing.T, n int, a float64) domain {
	t.Helper()
	mesh, err := field.NewMesh(n)
	require.NoError(t, err)
	backend, err := field.NewCPU(mesh, field.Config{Threads: 2, MinChunk: 1})
	require.NoError(t, err)
	cell, err := unitcell.New(1, "lamellar", []float64{a})
	require.NoError(t, err)
	waves, err := unitcell.NewWaveList(mesh, cell)
	require.NoError(t, err)
	return domain{mesh, backend, cell, waves}
}

func (d domain) mixture(t *testing.T, desc solver.Descriptor) *solver.Mixture {
	t.Helper()
	m, err := solver.NewMixture(desc, d.backend, d.waves)
	require.NoError(t, err)
	return m
}

func monomers() []chem.Monomer {
	return []chem.Monomer{{ID: 0, Kuhn: 1.0, Name: "A"}, {ID: 1, Kuhn: 1.2, Name: "B"}}
}

func diblock(f float64, model chem.PolymerModel, ds float64) solver.Descriptor {
	length := 1.0
	if model == chem.Bead {
		length = 10
	}
	return solver.Descriptor{
		Monomers: monomers(),
		Polymers: []chem.PolymerDescriptor{{
			Type: chem.Linear,
			Blocks: []chem.Edge{
				{MonomerID: 0, Length: f * length},
				{MonomerID: 1, Length: (1 - f) * length},
			},
			SpeciesDescriptor: chem.SpeciesDescriptor{Ensemble: chem.Closed, Phi: 1},
		}},
		Model: model,
		Ds:    ds,
	}
}

// cosineFields returns w0 = amp cos(2πx), w1 = -w0 (plus a small second
// harmonic so that the fields are not symmetric).
func cosineFields(m field.Mesh, amp float64) []field.RField {
	w := field.NewRFields(m, 2)
	n := m.Dims[0]
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		w[0][i] = amp * (math.Cos(2*math.Pi*x) + 0.3*math.Sin(4*math.Pi*x))
		w[1][i] = -w[0][i]
	}
	return w
}

func TestFreeChainPartitionFunction(t *testing.T) {
	for _, model := range []chem.PolymerModel{chem.Thread, chem.Bead} {
		t.Run(model.String(), func(t *testing.T) {
			d := newDomain(t, 16, 2.0)
			mix := d.mixture(t, diblock(0.5, model, 0.01))
			w := field.NewRFields(d.mesh, 2)
			c := field.NewRFields(d.mesh, 2)
			mix.Compute(w, c, 1, false)

			p := mix.Polymer(0)
			assert.InDelta(t, 1.0, p.Q(), 1e-12)
			assert.InDelta(t, 0.0, p.Mu, 1e-12)
			for i := range c[0] {
				assert.InDelta(t, 0.5, c[0][i], 1e-12)
				assert.InDelta(t, 0.5, c[1][i], 1e-12)
			}
		})
	}
}

func TestPartitionFunctionFromEveryBlock(t *testing.T) {
	for _, model := range []chem.PolymerModel{chem.Thread, chem.Bead} {
		t.Run(model.String(), func(t *testing.T) {
			d := newDomain(t, 32, 1.6)
			mix := d.mixture(t, diblock(0.4, model, 0.02))
			w := cosineFields(d.mesh, 2)
			c := field.NewRFields(d.mesh, 2)
			mix.Compute(w, c, 1, false)

			p := mix.Polymer(0)
			q := p.Q()
			assert.NotEqual(t, 1.0, q)
			for b := 0; b < p.NBlock(); b++ {
				require.True(t, p.Propagator(b, 0).IsSolved())
				require.True(t, p.Propagator(b, 1).IsSolved())
				assert.InDelta(t, q, p.Propagator(b, 0).ComputeQ(p.Propagator(b, 1)), 1e-12*q)
				assert.InDelta(t, q, p.Propagator(b, 1).ComputeQ(p.Propagator(b, 0)), 1e-12*q)
			}
			if model == chem.Thread {
				// Every contour point gives the same overlap.
				p0, p1 := p.Propagator(0, 0), p.Propagator(0, 1)
				ns := p0.NS()
				for i := 0; i < ns; i++ {
					assert.InDelta(t, q, field.InnerAverage(p0.Q(i), p1.Q(ns-1-i)), 1e-10*q)
				}
			}

			total := field.Average(c[0]) + field.Average(c[1])
			assert.InDelta(t, 1.0, total, 1e-10)
		})
	}
}

func TestThreadContourPoints(t *testing.T) {
	d := newDomain(t, 8, 1)
	for _, tc := range []struct {
		length, ds float64
	}{{1, 0.01}, {0.37, 0.01}, {0.05, 0.1}, {2.5, 0.3}} {
		desc := diblock(0.5, chem.Thread, tc.ds)
		desc.Polymers[0].Blocks = []chem.Edge{{MonomerID: 0, Length: tc.length}}
		mix := d.mixture(t, desc)
		b := mix.Polymer(0).Block(0)
		assert.Equal(t, 1, b.NS()%2, "ns must be odd")
		assert.GreaterOrEqual(t, b.NS(), 3)
		assert.InDelta(t, tc.length, b.Ds()*float64(b.NS()-1), 1e-14)
	}
}

func TestBeadCount(t *testing.T) {
	d := newDomain(t, 8, 1)
	desc := diblock(0.3, chem.Bead, 0)
	mix := d.mixture(t, desc)
	p := mix.Polymer(0)
	assert.Equal(t, 3, p.Block(0).NBead())
	assert.Equal(t, 7, p.Block(1).NBead())
	assert.Equal(t, 5, p.Block(0).NS())
	assert.Equal(t, 10.0, p.Length())
}

func TestComputeIsIdempotent(t *testing.T) {
	d := newDomain(t, 32, 1.6)
	mix := d.mixture(t, diblock(0.5, chem.Thread, 0.01))
	w := cosineFields(d.mesh, 1.5)
	c1 := field.NewRFields(d.mesh, 2)
	c2 := field.NewRFields(d.mesh, 2)
	mix.Compute(w, c1, 1, false)
	mix.Compute(w, c2, 1, false)
	assert.Equal(t, c1, c2)
}

func TestConcurrentMatchesSequential(t *testing.T) {
	d := newDomain(t, 32, 1.6)
	star := solver.Descriptor{
		Monomers: monomers(),
		Polymers: []chem.PolymerDescriptor{{
			Type: chem.Branched,
			Blocks: []chem.Edge{
				{MonomerID: 0, Length: 0.3, Vertices: [2]int{0, 1}},
				{MonomerID: 1, Length: 0.4, Vertices: [2]int{0, 2}},
				{MonomerID: 0, Length: 0.3, Vertices: [2]int{3, 0}},
			},
			SpeciesDescriptor: chem.SpeciesDescriptor{Phi: 1},
		}},
		Ds: 0.01,
	}
	seq := d.mixture(t, star)
	star.Concurrent = true
	con := d.mixture(t, star)

	w := cosineFields(d.mesh, 1)
	cs := field.NewRFields(d.mesh, 2)
	cc := field.NewRFields(d.mesh, 2)
	seq.Compute(w, cs, 1, true)
	con.Compute(w, cc, 1, true)

	for i := range cs {
		assert.InDeltaSlice(t, cs[i], cc[i], 1e-13)
	}
	assert.InDeltaSlice(t, seq.Stress(), con.Stress(), 1e-13)

	p := con.Polymer(0)
	for b := 0; b < p.NBlock(); b++ {
		assert.InDelta(t, p.Q(), p.Propagator(b, 0).ComputeQ(p.Propagator(b, 1)), 1e-12)
	}
}

// freeEnergy returns -(φ/N) ln Q, the cell-dependent part of the free
// energy at fixed fields.
func freeEnergy(t *testing.T, d domain, mix *solver.Mixture, w []field.RField, a float64) float64 {
	require.NoError(t, d.cell.SetParameters([]float64{a}))
	c := field.NewRFields(d.mesh, 2)
	mix.Compute(w, c, 1, false)
	p := mix.Polymer(0)
	return -p.Phi / p.Length() * math.Log(p.Q())
}

func TestStressMatchesDifference(t *testing.T) {
	for _, tc := range []struct {
		model chem.PolymerModel
		tol   float64
	}{
		{chem.Thread, 1e-2},
		{chem.Bead, 1e-6},
	} {
		t.Run(tc.model.String(), func(t *testing.T) {
			a := 1.7
			if tc.model == chem.Bead {
				a = 5
			}
			d := newDomain(t, 32, a)
			mix := d.mixture(t, diblock(0.5, tc.model, 0.005))
			w := cosineFields(d.mesh, 3)

			c := field.NewRFields(d.mesh, 2)
			mix.Compute(w, c, 1, true)
			require.True(t, mix.HasStress())
			stress := mix.Stress()[0]

			h := 1e-5 * a
			diff := (freeEnergy(t, d, mix, w, a+h) - freeEnergy(t, d, mix, w, a-h)) / (2 * h)
			require.NotZero(t, diff)
			assert.InDelta(t, diff, stress, tc.tol*math.Abs(diff))
		})
	}
}

func TestRichardsonIsMoreAccurate(t *testing.T) {
	d := newDomain(t, 32, 1.6)
	w := cosineFields(d.mesh, 3)
	q := func(ds float64, richardson bool) float64 {
		desc := diblock(0.5, chem.Thread, ds)
		desc.Richardson = richardson
		mix := d.mixture(t, desc)
		c := field.NewRFields(d.mesh, 2)
		mix.Compute(w, c, 1, false)
		return mix.Polymer(0).Q()
	}
	ref := q(0.001, true)
	assert.Less(t, math.Abs(q(0.1, true)-ref), math.Abs(q(0.1, false)-ref))
}

func TestSolventAndOpenEnsemble(t *testing.T) {
	d := newDomain(t, 16, 2)
	desc := diblock(0.5, chem.Thread, 0.01)
	desc.Polymers[0].SpeciesDescriptor = chem.SpeciesDescriptor{Ensemble: chem.Open, Mu: 0.5}
	desc.Solvents = []chem.SolventDescriptor{{
		MonomerID:         1,
		Size:              2,
		SpeciesDescriptor: chem.SpeciesDescriptor{Ensemble: chem.Closed, Phi: 0.3},
	}}
	mix := d.mixture(t, desc)
	assert.False(t, mix.IsCanonical())

	w := field.NewRFields(d.mesh, 2)
	field.Fill(w[1], 0.25)
	c := field.NewRFields(d.mesh, 2)
	mix.Compute(w, c, 1, false)

	s := mix.Solvent(0)
	assert.InDelta(t, math.Exp(-0.5), s.Q(), 1e-14)
	assert.InDelta(t, math.Log(0.3/s.Q()), s.Mu, 1e-14)
	assert.InDelta(t, 0.3, field.Average(s.CField()), 1e-14)

	p := mix.Polymer(0)
	assert.InDelta(t, math.Exp(0.5)*p.Q(), p.Phi, 1e-14)
	// The B block sees a uniform 0.25 over half of the chain.
	assert.InDelta(t, math.Exp(-0.125), p.Q(), 1e-10)
}

func TestSetKuhnInvalidatesCoefficients(t *testing.T) {
	d := newDomain(t, 32, 1.6)
	mix := d.mixture(t, diblock(0.5, chem.Thread, 0.01))
	w := cosineFields(d.mesh, 2)
	c := field.NewRFields(d.mesh, 2)
	mix.Compute(w, c, 1, false)
	q1 := mix.Polymer(0).Q()

	mix.SetKuhn(0, 2.0)
	mix.Compute(w, c, 1, false)
	assert.NotEqual(t, q1, mix.Polymer(0).Q())

	mix.SetKuhn(0, 1.0)
	mix.Compute(w, c, 1, false)
	assert.InDelta(t, q1, mix.Polymer(0).Q(), 1e-14)

	mix.SetDs(0.02)
	mix.Compute(w, c, 1, false)
	assert.Equal(t, 27, mix.Polymer(0).Block(0).NS())
	assert.Equal(t, 27, mix.Polymer(0).Propagator(0, 1).NS())
	assert.InDelta(t, q1, mix.Polymer(0).Q(), 1e-2*q1)
}

func TestNewMixtureErrors(t *testing.T) {
	d := newDomain(t, 8, 1)
	bad := diblock(0.5, chem.Thread, 0.01)
	bad.Polymers[0].Type = chem.Branched
	bad.Polymers[0].Blocks[1].Vertices = [2]int{0, 1}
	_, err := solver.NewMixture(bad, d.backend, d.waves)
	assert.True(t, errors.Is(err, chem.ErrTopology))

	bad = diblock(0.5, chem.Thread, 0.01)
	bad.Polymers[0].Blocks[0].MonomerID = 5
	_, err = solver.NewMixture(bad, d.backend, d.waves)
	assert.True(t, errors.Is(err, chem.ErrDescriptor))

	bad = diblock(0.5, chem.Thread, 0)
	_, err = solver.NewMixture(bad, d.backend, d.waves)
	assert.True(t, errors.Is(err, chem.ErrDescriptor))
}
