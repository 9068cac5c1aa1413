// ops.go --  This file is part of goFT project.
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
package field

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Pointwise kernels. Each one is a single data-parallel pass dispatched
// through the backend.

// Mul sets dst = x*y pointwise.
func Mul(b Backend, dst, x, y RField) {
	b.Parallel(len(dst), func(lo, hi int) {
		floats.MulTo(dst[lo:hi], x[lo:hi], y[lo:hi])
	})
}

// MulInPlace sets dst = dst*x pointwise.
func MulInPlace(b Backend, dst, x RField) {
	b.Parallel(len(dst), func(lo, hi int) {
		floats.Mul(dst[lo:hi], x[lo:hi])
	})
}

// Div sets dst = x/y pointwise.
func Div(b Backend, dst, x, y RField) {
	b.Parallel(len(dst), func(lo, hi int) {
		floats.DivTo(dst[lo:hi], x[lo:hi], y[lo:hi])
	})
}

// ExpScaled sets dst = exp(scale*w) pointwise.
func ExpScaled(b Backend, dst, w RField, scale float64) {
	b.Parallel(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = math.Exp(scale * w[i])
		}
	})
}

// AddScaled sets dst = dst + alpha*x pointwise.
func AddScaled(b Backend, dst RField, alpha float64, x RField) {
	b.Parallel(len(dst), func(lo, hi int) {
		floats.AddScaled(dst[lo:hi], alpha, x[lo:hi])
	})
}

// AddProduct sets dst = dst + alpha*x*y pointwise.
func AddProduct(b Backend, dst RField, alpha float64, x, y RField) {
	b.Parallel(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] += alpha * x[i] * y[i]
		}
	})
}

// Fill sets every element of dst to v.
func Fill(dst RField, v float64) {
	for i := range dst {
		dst[i] = v
	}
}

// MulK multiplies Fourier coefficients by a real factor per wavevector.
func MulK(b Backend, k KField, factor []float64) {
	b.Parallel(len(k), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			k[i] *= complex(factor[i], 0)
		}
	})
}

// Average returns the spatial average of x.
func Average(x RField) float64 {
	return stat.Mean(x, nil)
}

// InnerAverage returns the spatial average of x*y.
func InnerAverage(x, y RField) float64 {
	return floats.Dot(x, y) / float64(len(x))
}

// SubtractAverage removes the homogeneous component of x and returns it.
func SubtractAverage(x RField) float64 {
	avg := Average(x)
	floats.AddConst(-avg, x)
	return avg
}
