// mesh.go --  This file is part of goFT project.
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

// Package field provides the spatial mesh, real and Fourier space field
// containers and the transform backend used by the propagator solver.
package field

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	// ErrBadMesh is returned for a mesh with a wrong dimension or a
	// non-positive number of grid points along some axis.
	ErrBadMesh = stderrors.New("field: invalid mesh")

	// ErrSizeMismatch is returned when a field does not match its mesh.
	ErrSizeMismatch = stderrors.New("field: field size does not match mesh")
)

// Mesh is a regular periodic grid of dimension 1, 2 or 3. Grid points are
// stored in row-major order, the last index varying fastest.
type Mesh struct {
	Dims []int
}

// NewMesh validates dims and returns the mesh.
func NewMesh(dims ...int) (Mesh, error) {
	if len(dims) < 1 || len(dims) > 3 {
		return Mesh{}, errors.Wrapf(ErrBadMesh, "dimension %d", len(dims))
	}
	for i, n := range dims {
		if n <= 0 {
			return Mesh{}, errors.Wrapf(ErrBadMesh, "axis %d has %d points", i, n)
		}
	}
	d := make([]int, len(dims))
	copy(d, dims)
	return Mesh{Dims: d}, nil
}

// Dim returns the spatial dimension.
func (m Mesh) Dim() int { return len(m.Dims) }

// Size returns the number of real-space grid points.
func (m Mesh) Size() int {
	n := 1
	for _, d := range m.Dims {
		n *= d
	}
	return n
}

// KDims returns the dimensions of the half-complex Fourier grid: the last
// axis keeps only n/2+1 wavevectors, the rest follow from conjugate symmetry.
func (m Mesh) KDims() []int {
	k := make([]int, len(m.Dims))
	copy(k, m.Dims)
	k[len(k)-1] = m.Dims[len(k)-1]/2 + 1
	return k
}

// KSize returns the number of stored Fourier coefficients.
func (m Mesh) KSize() int {
	n := 1
	for _, d := range m.KDims() {
		n *= d
	}
	return n
}

// Position writes the grid indices of rank into pos.
func (m Mesh) Position(rank int, pos []int) {
	for i := len(m.Dims) - 1; i >= 0; i-- {
		pos[i] = rank % m.Dims[i]
		rank /= m.Dims[i]
	}
}

// Rank returns the storage index of grid position pos.
func (m Mesh) Rank(pos []int) int {
	r := 0
	for i, d := range m.Dims {
		r = r*d + pos[i]
	}
	return r
}

// Equal reports whether both meshes have the same dimensions.
func (m Mesh) Equal(o Mesh) bool {
	if len(m.Dims) != len(o.Dims) {
		return false
	}
	for i := range m.Dims {
		if m.Dims[i] != o.Dims[i] {
			return false
		}
	}
	return true
}

// RField is a real-valued field on the real-space grid.
type RField []float64

// KField holds the half-complex Fourier coefficients of an RField.
type KField []complex128

// NewRField allocates a zero field on m.
func NewRField(m Mesh) RField { return make(RField, m.Size()) }

// NewKField allocates a zero Fourier field for m.
func NewKField(m Mesh) KField { return make(KField, m.KSize()) }

// NewRFields allocates n zero fields on m.
func NewRFields(m Mesh, n int) []RField {
	res := make([]RField, n)
	for i := range res {
		res[i] = NewRField(m)
	}
	return res
}

// CopyFields copies every field of src into dst.
func CopyFields(dst, src []RField) {
	for i := range src {
		copy(dst[i], src[i])
	}
}
