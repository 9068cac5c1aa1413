// block.go --  This file is part of goFT project.
// Mirzaeva Irina, 2023
//
//	goFT is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package solver

import (
	"math"

	"example.com/goft/chem"
	"example.com/goft/field"
	"example.com/goft/unitcell"
)

// Block is one block of a polymer together with the operator coefficients
// of its contour step.
//
// Thread model: expW = exp(-w ds/2) and expKsq = exp(-b²k²ds/6) form the
// Strang step; expW2 and expKsq2 are the same for a half step and are used
// by the Richardson step.
// Bead model: expW = exp(-w) is the bead weight, expKsq = exp(-b²k²/6) the
// bond and expKsq2 = exp(-b²k²/12) the half bond joining a bead to a vertex.
type Block struct {
	chem.Edge

	model      chem.PolymerModel
	kuhn       float64
	ds         float64
	ns         int
	richardson bool

	backend field.Backend
	waves   *unitcell.WaveList

	expW, expW2     field.RField
	expKsq, expKsq2 []float64
	kVersion        int // wave-list version of expKsq, -1 when stale

	cField field.RField
	stress []float64
	k0, k1 field.KField
}

func newBlock(e chem.Edge, kuhn, ds float64, model chem.PolymerModel, richardson bool,
	backend field.Backend, waves *unitcell.WaveList) *Block {
	m := backend.Mesh()
	b := &Block{
		Edge:       e,
		model:      model,
		kuhn:       kuhn,
		richardson: richardson,
		backend:    backend,
		waves:      waves,
		expW:       field.NewRField(m),
		expKsq:     make([]float64, m.KSize()),
		expKsq2:    make([]float64, m.KSize()),
		cField:     field.NewRField(m),
		stress:     make([]float64, waves.Cell().NParameter()),
		kVersion:   -1,
	}
	if model == chem.Thread {
		b.expW2 = field.NewRField(m)
	}
	b.setDs(ds)
	return b
}

// setDs chooses the number of contour points. For the thread model ns is
// the odd number closest to L/ds + 1 (at least 3); for the bead model it
// is the bead count plus the two vertex points.
func (b *Block) setDs(ds float64) {
	switch b.model {
	case chem.Thread:
		b.ns = 2*int(math.Floor(b.Length/(2*ds)+0.5)) + 1
		if b.ns < 3 {
			b.ns = 3
		}
		b.ds = b.Length / float64(b.ns-1)
	case chem.Bead:
		b.ns = nBead(b.Length) + 2
		b.ds = 1
	}
	b.kVersion = -1
}

func nBead(length float64) int {
	n := int(math.Round(length))
	if n < 1 {
		n = 1
	}
	return n
}

// SetKuhn changes the statistical segment length.
func (b *Block) SetKuhn(kuhn float64) {
	b.kuhn = kuhn
	b.kVersion = -1
}

func (b *Block) Kuhn() float64            { return b.kuhn }
func (b *Block) Ds() float64              { return b.ds }
func (b *Block) NS() int                  { return b.ns }
func (b *Block) Model() chem.PolymerModel { return b.model }
func (b *Block) CField() field.RField     { return b.cField }
func (b *Block) Stress() []float64        { return b.stress }
func (b *Block) coefficientsValid() bool  { return b.kVersion == b.waves.Version() }

// NBead returns the number of beads, or 0 in the thread model.
func (b *Block) NBead() int {
	if b.model == chem.Bead {
		return b.ns - 2
	}
	return 0
}

// setupSolver computes the real-space weights for potential w and, if the
// step, the statistical length or the cell changed, the Fourier factors.
// The wave list must be up to date.
func (b *Block) setupSolver(w field.RField) {
	if !b.coefficientsValid() {
		ksq := b.waves.KSq()
		var f float64
		if b.model == chem.Thread {
			f = -b.kuhn * b.kuhn * b.ds / 6
		} else {
			f = -b.kuhn * b.kuhn / 6
		}
		for i, k := range ksq {
			b.expKsq[i] = math.Exp(f * k)
			b.expKsq2[i] = math.Exp(0.5 * f * k)
		}
		b.kVersion = b.waves.Version()
	}
	switch b.model {
	case chem.Thread:
		field.ExpScaled(b.backend, b.expW, w, -0.5*b.ds)
		field.ExpScaled(b.backend, b.expW2, w, -0.25*b.ds)
	case chem.Bead:
		field.ExpScaled(b.backend, b.expW, w, -1)
	}
}

// strang applies exp(-w h/2) exp(h ∇²b²/6) exp(-w h/2) to in. out may
// alias in.
func (b *Block) strang(in, out field.RField, expW field.RField, expK []float64, ws *workspace) {
	field.Mul(b.backend, ws.r0, expW, in)
	b.backend.Forward(ws.r0, ws.k)
	field.MulK(b.backend, ws.k, expK)
	b.backend.Inverse(ws.k, out)
	field.MulInPlace(b.backend, out, expW)
}

// bond applies a Fourier factor to in. out may alias in.
func (b *Block) bond(in, out field.RField, expK []float64, ws *workspace) {
	b.backend.Forward(in, ws.k)
	field.MulK(b.backend, ws.k, expK)
	b.backend.Inverse(ws.k, out)
}

// stepThread advances a thread-model slice by one contour step.
func (b *Block) stepThread(q, qNext field.RField, ws *workspace) {
	if !b.richardson {
		b.strang(q, qNext, b.expW, b.expKsq, ws)
		return
	}
	b.strang(q, ws.r1, b.expW, b.expKsq, ws)
	b.strang(q, qNext, b.expW2, b.expKsq2, ws)
	b.strang(qNext, qNext, b.expW2, b.expKsq2, ws)
	b.backend.Parallel(len(qNext), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			qNext[i] = (4*qNext[i] - ws.r1[i]) / 3
		}
	})
}

// solve fills every slice of p after its head.
func (b *Block) solve(p *Propagator) {
	q := p.q
	switch b.model {
	case chem.Thread:
		for i := 0; i < b.ns-1; i++ {
			b.stepThread(q[i], q[i+1], &p.ws)
		}
	case chem.Bead:
		n := b.ns - 2
		b.bond(q[0], q[1], b.expKsq2, &p.ws)
		field.MulInPlace(b.backend, q[1], b.expW)
		for j := 1; j < n; j++ {
			b.bond(q[j], q[j+1], b.expKsq, &p.ws)
			field.MulInPlace(b.backend, q[j+1], b.expW)
		}
		b.bond(q[n], q[n+1], b.expKsq2, &p.ws)
	}
}

// simpson returns the Simpson weight of point i of an odd grid of ns points.
func simpson(i, ns int) float64 {
	switch {
	case i == 0 || i == ns-1:
		return 1
	case i%2 == 1:
		return 4
	default:
		return 2
	}
}

// computeConcentration sets the block concentration to prefactor times
// the contour integral of p0(s) p1(L-s).
func (b *Block) computeConcentration(p0, p1 *Propagator, prefactor float64) {
	c := b.cField
	field.Fill(c, 0)
	ns := b.ns
	switch b.model {
	case chem.Thread:
		for i := 0; i < ns; i++ {
			field.AddProduct(b.backend, c, prefactor*simpson(i, ns)*b.ds/3, p0.q[i], p1.q[ns-1-i])
		}
	case chem.Bead:
		n := ns - 2
		for j := 1; j <= n; j++ {
			field.AddProduct(b.backend, c, prefactor, p0.q[j], p1.q[n+1-j])
		}
		// each product carries the bead weight twice
		field.Div(b.backend, c, c, b.expW)
	}
}

// computeStress sets the block stress to prefactor times the derivative
// of <p0(s) p1(L-s)> with respect to every cell parameter.
func (b *Block) computeStress(p0, p1 *Propagator, prefactor float64) {
	if b.k0 == nil {
		m := b.backend.Mesh()
		b.k0 = field.NewKField(m)
		b.k1 = field.NewKField(m)
	}
	weight := b.waves.Weight()
	nParam := len(b.stress)
	for n := range b.stress {
		b.stress[n] = 0
	}
	dq := make([]float64, nParam)
	bSq := b.kuhn * b.kuhn

	// overlap accumulates coef * Σ_k weight dk²_n factor Re(k0 conj k1).
	overlap := func(x, y field.RField, coef float64, factor []float64) {
		b.backend.Forward(x, b.k0)
		b.backend.Forward(y, b.k1)
		for n := 0; n < nParam; n++ {
			dksq := b.waves.DKSq(n)
			sum := 0.0
			for i, a := range b.k0 {
				c := b.k1[i]
				re := real(a)*real(c) + imag(a)*imag(c)
				if factor != nil {
					re *= factor[i]
				}
				sum += weight[i] * dksq[i] * re
			}
			dq[n] += coef * sum
		}
	}

	ns := b.ns
	switch b.model {
	case chem.Thread:
		for i := 0; i < ns; i++ {
			overlap(p0.q[i], p1.q[ns-1-i], -bSq/6*simpson(i, ns)*b.ds/3, nil)
		}
	case chem.Bead:
		n := ns - 2
		for j := 0; j <= n; j++ {
			if j == 0 || j == n {
				overlap(p0.q[j], p1.q[n-j], -bSq/12, b.expKsq2)
			} else {
				overlap(p0.q[j], p1.q[n-j], -bSq/6, b.expKsq)
			}
		}
	}
	for n := range b.stress {
		b.stress[n] = prefactor * dq[n]
	}
}
