// wavelist.go --  This file is part of goFT project.
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
package unitcell

import (
	"github.com/pkg/errors"

	"example.com/goft/field"
)

// WaveList holds, for every point of the half-complex Fourier grid, the
// minimum-image wavevector and its squared magnitude and parameter
// derivatives under the current cell metric.
type WaveList struct {
	mesh    field.Mesh
	cell    *UnitCell
	kSq     []float64
	dKSq    [][]float64
	weight  []float64
	version int
}

// NewWaveList allocates the list for mesh and cell. Values are computed on
// the first Update.
func NewWaveList(mesh field.Mesh, cell *UnitCell) (*WaveList, error) {
	if mesh.Dim() != cell.Dim() {
		return nil, errors.Wrapf(ErrLattice, "%dD mesh with %dD %s cell", mesh.Dim(), cell.Dim(), cell.Lattice())
	}
	n := mesh.KSize()
	w := &WaveList{
		mesh:    mesh,
		cell:    cell,
		kSq:     make([]float64, n),
		dKSq:    make([][]float64, cell.NParameter()),
		weight:  make([]float64, n),
		version: -1,
	}
	for i := range w.dKSq {
		w.dKSq[i] = make([]float64, n)
	}

	kd := mesh.KDims()
	d := mesh.Dim()
	last := mesh.Dims[d-1]
	for rank := range w.weight {
		j := rank % kd[d-1]
		if j == 0 || (last%2 == 0 && j == last/2) {
			w.weight[rank] = 1
		} else {
			w.weight[rank] = 2
		}
	}
	return w, nil
}

// Update recomputes the list if the cell parameters changed since the
// last call. It reports whether anything was recomputed.
func (w *WaveList) Update() bool {
	if w.version == w.cell.Version() {
		return false
	}
	d := w.mesh.Dim()
	kd := w.mesh.KDims()
	kMesh := field.Mesh{Dims: kd}
	idx := make([]int, d)
	g := make([]int, d)
	img := make([]int, d)
	shift := make([]int, d)
	nImage := 1
	for i := 0; i < d; i++ {
		nImage *= 3
	}

	for rank := range w.kSq {
		kMesh.Position(rank, idx)
		for i := 0; i < d; i++ {
			g[i] = idx[i]
			if i < d-1 && g[i] > w.mesh.Dims[i]/2 {
				g[i] -= w.mesh.Dims[i]
			}
		}
		best := w.cell.KSq(g)
		copy(img, g)
		// Search the neighbouring images for a shorter vector; needed for
		// non-orthogonal cells.
		for s := 0; s < nImage; s++ {
			t := s
			for i := 0; i < d; i++ {
				shift[i] = g[i] + (t%3-1)*w.mesh.Dims[i]
				t /= 3
			}
			if ksq := w.cell.KSq(shift); ksq < best-1e-10*best {
				best = ksq
				copy(img, shift)
			}
		}
		w.kSq[rank] = best
		for n := range w.dKSq {
			w.dKSq[n][rank] = w.cell.DKSq(img, n)
		}
	}
	w.version = w.cell.Version()
	return true
}

// Version returns the cell version the list was last computed for.
func (w *WaveList) Version() int { return w.version }

// KSq returns |k|² per Fourier grid point.
func (w *WaveList) KSq() []float64 { return w.kSq }

// DKSq returns d|k|²/dθ_n per Fourier grid point.
func (w *WaveList) DKSq(n int) []float64 { return w.dKSq[n] }

// Weight returns the multiplicity of each stored coefficient in the full
// Fourier grid (2 for coefficients whose conjugate is not stored).
func (w *WaveList) Weight() []float64 { return w.weight }

// Cell returns the unit cell.
func (w *WaveList) Cell() *UnitCell { return w.cell }
