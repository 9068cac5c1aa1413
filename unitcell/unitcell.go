// unitcell.go --  This file is part of goFT project.
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

// Package unitcell describes periodic unit cells: the Bravais lattice,
// its parameters, the reciprocal metric and its derivatives with respect
// to the parameters.
package unitcell

import (
	stderrors "errors"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrLattice is returned for an unknown lattice or a lattice that does
	// not exist in the requested dimension.
	ErrLattice = stderrors.New("unitcell: unknown lattice system")

	// ErrParams is returned for a wrong number of parameters or a
	// degenerate basis.
	ErrParams = stderrors.New("unitcell: invalid cell parameters")
)

// lattice builds the real-space basis vectors (rows of a) of one lattice
// system from its parameters.
type lattice struct {
	name   string
	dim    int
	nParam int
	basis  func(p []float64, a []float64)
}

var lattices = []lattice{
	{"lamellar", 1, 1, func(p, a []float64) { a[0] = p[0] }},

	{"square", 2, 1, func(p, a []float64) { a[0], a[3] = p[0], p[0] }},
	{"rectangular", 2, 2, func(p, a []float64) { a[0], a[3] = p[0], p[1] }},
	{"rhombic", 2, 2, func(p, a []float64) {
		a[0] = p[0]
		a[2], a[3] = p[0]*math.Cos(p[1]), p[0]*math.Sin(p[1])
	}},
	{"hexagonal", 2, 1, func(p, a []float64) {
		a[0] = p[0]
		a[2], a[3] = -0.5*p[0], 0.5*math.Sqrt(3)*p[0]
	}},
	{"oblique", 2, 3, func(p, a []float64) {
		a[0] = p[0]
		a[2], a[3] = p[1]*math.Cos(p[2]), p[1]*math.Sin(p[2])
	}},

	{"cubic", 3, 1, func(p, a []float64) { a[0], a[4], a[8] = p[0], p[0], p[0] }},
	{"tetragonal", 3, 2, func(p, a []float64) { a[0], a[4], a[8] = p[0], p[0], p[1] }},
	{"orthorhombic", 3, 3, func(p, a []float64) { a[0], a[4], a[8] = p[0], p[1], p[2] }},
	{"monoclinic", 3, 4, func(p, a []float64) {
		a[0] = p[0]
		a[4] = p[1]
		a[6], a[8] = p[2]*math.Cos(p[3]), p[2]*math.Sin(p[3])
	}},
	{"hexagonal", 3, 2, func(p, a []float64) {
		a[0] = p[0]
		a[3], a[4] = -0.5*p[0], 0.5*math.Sqrt(3)*p[0]
		a[8] = p[1]
	}},
	{"rhombohedral", 3, 2, func(p, a []float64) {
		c, s := math.Cos(p[1]), math.Sin(p[1])
		y := (c - c*c) / s
		a[0] = p[0]
		a[3], a[4] = p[0]*c, p[0]*s
		a[6], a[7], a[8] = p[0]*c, p[0]*y, p[0]*math.Sqrt(1-c*c-y*y)
	}},
}

// UnitCell is a Bravais lattice with its current parameters. Angles are
// in radians.
type UnitCell struct {
	lat     lattice
	params  []float64
	rBasis  *mat.Dense
	kBasis  *mat.Dense
	metric  *mat.Dense
	dMetric []*mat.Dense
	version int
}

// New returns the unit cell of lattice system name in dimension dim.
func New(dim int, name string, params []float64) (*UnitCell, error) {
	i := slices.IndexFunc(lattices, func(l lattice) bool {
		return l.name == name && l.dim == dim
	})
	if i < 0 {
		return nil, errors.Wrapf(ErrLattice, "%q in %d dimensions, available %v", name, dim, Lattices(dim))
	}
	u := &UnitCell{lat: lattices[i]}
	if err := u.SetParameters(params); err != nil {
		return nil, err
	}
	return u, nil
}

// Lattices returns the names of the lattice systems available in dim.
func Lattices(dim int) []string {
	var res []string
	for _, l := range lattices {
		if l.dim == dim {
			res = append(res, l.name)
		}
	}
	return res
}

// SetParameters changes the cell parameters and recomputes the bases, the
// reciprocal metric and its derivatives.
func (u *UnitCell) SetParameters(params []float64) error {
	d := u.lat.dim
	if len(params) != u.lat.nParam {
		return errors.Wrapf(ErrParams, "%s cell takes %d parameters, got %d", u.lat.name, u.lat.nParam, len(params))
	}
	a := mat.NewDense(d, d, nil)
	u.lat.basis(params, a.RawMatrix().Data)
	if math.Abs(mat.Det(a)) < 1e-12 {
		return errors.Wrapf(ErrParams, "degenerate %s cell %v", u.lat.name, params)
	}

	var aInv mat.Dense
	if err := aInv.Inverse(a); err != nil {
		return errors.Wrapf(ErrParams, "%s cell %v: %v", u.lat.name, params, err)
	}
	b := mat.NewDense(d, d, nil)
	b.Scale(2*math.Pi, aInv.T())

	m := mat.NewDense(d, d, nil)
	m.Mul(b, b.T())

	// dA/dθ from the basis builder, one column per parameter.
	jac := mat.NewDense(d*d, len(params), nil)
	fd.Jacobian(jac, func(y, x []float64) {
		for i := range y {
			y[i] = 0
		}
		u.lat.basis(x, y)
	}, params, &fd.JacobianSettings{Formula: fd.Central, Step: 1e-5})

	// dB = -(1/2π) B dAᵀ B and dM = dB Bᵀ + B dBᵀ.
	dMetric := make([]*mat.Dense, len(params))
	for n := range params {
		dA := mat.NewDense(d, d, mat.Col(nil, n, jac))
		var dB, tmp mat.Dense
		tmp.Mul(b, dA.T())
		dB.Mul(&tmp, b)
		dB.Scale(-0.5/math.Pi, &dB)
		dm := mat.NewDense(d, d, nil)
		tmp.Mul(&dB, b.T())
		dm.Mul(b, dB.T())
		dm.Add(dm, &tmp)
		dMetric[n] = dm
	}

	u.params = append(u.params[:0], params...)
	u.rBasis = a
	u.kBasis = b
	u.metric = m
	u.dMetric = dMetric
	u.version++
	return nil
}

// Lattice returns the lattice system name.
func (u *UnitCell) Lattice() string { return u.lat.name }

// Dim returns the spatial dimension.
func (u *UnitCell) Dim() int { return u.lat.dim }

// NParameter returns the number of cell parameters.
func (u *UnitCell) NParameter() int { return u.lat.nParam }

// Parameters returns a copy of the current parameters.
func (u *UnitCell) Parameters() []float64 {
	return append([]float64(nil), u.params...)
}

// Version increases by one on every parameter change.
func (u *UnitCell) Version() int { return u.version }

// Volume returns the cell volume (length in 1D, area in 2D).
func (u *UnitCell) Volume() float64 { return math.Abs(mat.Det(u.rBasis)) }

// RBasis returns real-space basis vector i.
func (u *UnitCell) RBasis(i int) []float64 { return mat.Row(nil, i, u.rBasis) }

// KBasis returns reciprocal basis vector i, with a_i·b_j = 2π δ_ij.
func (u *UnitCell) KBasis(i int) []float64 { return mat.Row(nil, i, u.kBasis) }

// KSq returns |k|² for the wavevector with reciprocal-lattice indices g.
func (u *UnitCell) KSq(g []int) float64 {
	return quadratic(u.metric, g)
}

// DKSq returns d|k|²/dθ_n for the wavevector with indices g.
func (u *UnitCell) DKSq(g []int, n int) float64 {
	return quadratic(u.dMetric[n], g)
}

func quadratic(m *mat.Dense, g []int) float64 {
	res := 0.0
	for i := range g {
		for j := range g {
			res += float64(g[i]*g[j]) * m.At(i, j)
		}
	}
	return res
}
