// interaction.go --  This file is part of goFT project.
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

// Package interaction is the Flory-Huggins excess free energy of an
// incompressible blend, f = 1/2 Σ_ij χ_ij c_i c_j, and the self-consistency
// residual it implies.
package interaction

import (
	stderrors "errors"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingularChi is returned when the χ matrix cannot be inverted. A
	// single monomer type always gives this error.
	ErrSingularChi = stderrors.New("interaction: singular chi matrix")

	// ErrChi is returned for a χ matrix of the wrong shape or symmetry.
	ErrChi = stderrors.New("interaction: invalid chi matrix")
)

// Interaction holds χ, its inverse, Σ_ij χ⁻¹_ij and the projector
// P_ij = δ_ij - Σ_k χ⁻¹_kj / Σ χ⁻¹ that removes the pressure-like
// component of a potential.
type Interaction struct {
	n      int
	chi    *mat.Dense
	chiInv *mat.Dense
	p      *mat.Dense
	sumInv float64
}

// New builds the interaction from a symmetric χ matrix.
func New(chi [][]float64) (*Interaction, error) {
	n := len(chi)
	if n == 0 {
		return nil, errors.Wrap(ErrChi, "empty matrix")
	}
	in := &Interaction{n: n, chi: mat.NewDense(n, n, nil)}
	for i, row := range chi {
		if len(row) != n {
			return nil, errors.Wrapf(ErrChi, "row %d has %d entries, need %d", i, len(row), n)
		}
		in.chi.SetRow(i, row)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			if chi[i][j] != chi[j][i] {
				return nil, errors.Wrapf(ErrChi, "chi(%d,%d) = %g but chi(%d,%d) = %g", i, j, chi[i][j], j, i, chi[j][i])
			}
		}
	}
	if err := in.setup(); err != nil {
		return nil, err
	}
	return in, nil
}

func (in *Interaction) setup() error {
	var inv mat.Dense
	if err := inv.Inverse(in.chi); err != nil {
		return errors.Wrapf(ErrSingularChi, "%v", err)
	}
	in.chiInv = &inv
	in.sumInv = mat.Sum(&inv)
	if in.sumInv == 0 || math.IsNaN(in.sumInv) {
		return errors.Wrapf(ErrSingularChi, "sum of inverse elements is %g", in.sumInv)
	}
	in.p = mat.NewDense(in.n, in.n, nil)
	for j := 0; j < in.n; j++ {
		col := mat.Sum(in.chiInv.ColView(j))
		for i := 0; i < in.n; i++ {
			v := -col / in.sumInv
			if i == j {
				v++
			}
			in.p.Set(i, j, v)
		}
	}
	return nil
}

// SetChi changes χ_ij and χ_ji. On error the previous matrix is kept.
func (in *Interaction) SetChi(i, j int, v float64) error {
	oldIJ, oldJI := in.chi.At(i, j), in.chi.At(j, i)
	in.chi.Set(i, j, v)
	in.chi.Set(j, i, v)
	if err := in.setup(); err != nil {
		in.chi.Set(i, j, oldIJ)
		in.chi.Set(j, i, oldJI)
		if err2 := in.setup(); err2 != nil {
			panic(err2)
		}
		return err
	}
	return nil
}

func (in *Interaction) NMonomer() int               { return in.n }
func (in *Interaction) Chi(i, j int) float64        { return in.chi.At(i, j) }
func (in *Interaction) ChiInverse(i, j int) float64 { return in.chiInv.At(i, j) }
func (in *Interaction) P(i, j int) float64          { return in.p.At(i, j) }
func (in *Interaction) SumChiInverse() float64      { return in.sumInv }

// FHelmholtz returns the excess free energy per monomer at one point.
func (in *Interaction) FHelmholtz(c []float64) float64 {
	f := 0.0
	for i := 0; i < in.n; i++ {
		for j := 0; j < in.n; j++ {
			f += 0.5 * in.chi.At(i, j) * c[i] * c[j]
		}
	}
	return f
}

// ComputeW sets w_i = Σ_j χ_ij c_j + xi.
func (in *Interaction) ComputeW(c []float64, xi float64, w []float64) {
	for i := 0; i < in.n; i++ {
		w[i] = xi
		for j := 0; j < in.n; j++ {
			w[i] += in.chi.At(i, j) * c[j]
		}
	}
}

// ComputeC inverts ComputeW under the constraint Σ c = 1 and returns the
// pressure field xi.
func (in *Interaction) ComputeC(w []float64, c []float64) float64 {
	xi := -1.0
	for i := 0; i < in.n; i++ {
		for j := 0; j < in.n; j++ {
			xi += in.chiInv.At(i, j) * w[j]
		}
	}
	xi /= in.sumInv
	for i := 0; i < in.n; i++ {
		c[i] = 0
		for j := 0; j < in.n; j++ {
			c[i] += in.chiInv.At(i, j) * (w[j] - xi)
		}
	}
	return xi
}

// Residual sets r_i = Σ_j (χ_ij c_j - P_ij w_j) - shift at one point.
// r vanishes when w is the potential implied by an incompressible c; the
// shift is 1/Σχ⁻¹ for open systems and 0 for canonical ones, whose
// residuals are taken with their averages removed.
func (in *Interaction) Residual(c, w []float64, shift float64, r []float64) {
	for i := 0; i < in.n; i++ {
		r[i] = -shift
		for j := 0; j < in.n; j++ {
			r[i] += in.chi.At(i, j)*c[j] - in.p.At(i, j)*w[j]
		}
	}
}
