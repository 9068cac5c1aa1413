// backend.go --  This file is part of goFT project.
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
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend is the array capability the solver runs on: real-to-complex
// transforms over a mesh and chunked data-parallel loops.
//
// Forward divides by the mesh size, Inverse does not normalize, so
// Inverse(Forward(x)) == x. Forward and Inverse never modify their input
// and are safe for concurrent use.
type Backend interface {
	Mesh() Mesh
	Forward(r RField, k KField)
	Inverse(k KField, r RField)
	Parallel(n int, fn func(lo, hi int))
}

// Config holds the settings of the CPU backend.
type Config struct {
	// Threads is the number of goroutines used by data-parallel loops.
	// Zero means runtime.GOMAXPROCS.
	Threads int

	// MinChunk is the smallest amount of work (grid points) worth
	// splitting over goroutines. Zero means 8192.
	MinChunk int
}

// CPU is the multi-threaded Backend. Transform plans live in a pool so that
// propagators of different blocks may be advanced at the same time.
type CPU struct {
	mesh     Mesh
	threads  int
	minChunk int
	plans    sync.Pool
}

// NewCPU returns a CPU backend for mesh.
func NewCPU(mesh Mesh, cfg Config) (*CPU, error) {
	if _, err := NewMesh(mesh.Dims...); err != nil {
		return nil, err
	}
	if cfg.Threads < 0 || cfg.MinChunk < 0 {
		return nil, errors.Errorf("field: negative backend setting %+v", cfg)
	}
	c := &CPU{mesh: mesh, threads: cfg.Threads, minChunk: cfg.MinChunk}
	if c.threads == 0 {
		c.threads = runtime.GOMAXPROCS(-1)
	}
	if c.minChunk == 0 {
		c.minChunk = 8192
	}
	c.plans.New = func() any { return newPlan(mesh) }
	return c, nil
}

// Mesh returns the mesh of the backend.
func (c *CPU) Mesh() Mesh { return c.mesh }

// Threads returns the number of goroutines used by Parallel.
func (c *CPU) Threads() int { return c.threads }

// Parallel calls fn on consecutive chunks [lo, hi) covering [0, n). Small
// loops run on the calling goroutine.
func (c *CPU) Parallel(n int, fn func(lo, hi int)) {
	c.split(n, n, fn)
}

// split is Parallel with the amount of work given separately from the
// number of items, for loops over whole grid lines.
func (c *CPU) split(n, work int, fn func(lo, hi int)) {
	maxGoroutines := c.threads
	if maxGoroutines > n {
		maxGoroutines = n
	}
	if maxGoroutines <= 1 || work < c.minChunk {
		fn(0, n)
		return
	}
	listSize := n / maxGoroutines
	var wg sync.WaitGroup
	for j := 0; j < maxGoroutines-1; j++ {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(j*listSize, (j+1)*listSize)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn((maxGoroutines-1)*listSize, n)
	}()
	wg.Wait()
}

// plan is the per-goroutine transform workspace.
type plan struct {
	real  *fourier.FFT
	cmplx []*fourier.CmplxFFT
	in    []complex128
	out   []complex128
}

func newPlan(m Mesh) *plan {
	d := m.Dim()
	p := &plan{real: fourier.NewFFT(m.Dims[d-1])}
	maxLen := 0
	for i := 0; i < d-1; i++ {
		p.cmplx = append(p.cmplx, fourier.NewCmplxFFT(m.Dims[i]))
		if m.Dims[i] > maxLen {
			maxLen = m.Dims[i]
		}
	}
	p.in = make([]complex128, maxLen)
	p.out = make([]complex128, maxLen)
	return p
}

func (c *CPU) getPlan() *plan  { return c.plans.Get().(*plan) }
func (c *CPU) putPlan(p *plan) { c.plans.Put(p) }

// Forward computes the half-complex transform of r into k, scaled by
// 1/Size: k(G) = (1/N) Σ_x r(x) exp(-iG·x).
func (c *CPU) Forward(r RField, k KField) {
	m := c.mesh
	if len(r) != m.Size() || len(k) != m.KSize() {
		panic(ErrSizeMismatch)
	}
	d := m.Dim()
	last := m.Dims[d-1]
	kLast := last/2 + 1
	rows := m.Size() / last

	c.split(rows, m.Size(), func(lo, hi int) {
		p := c.getPlan()
		defer c.putPlan(p)
		for row := lo; row < hi; row++ {
			p.real.Coefficients(k[row*kLast:(row+1)*kLast], r[row*last:(row+1)*last])
		}
	})
	for axis := d - 2; axis >= 0; axis-- {
		c.transformAxis(k, axis, false)
	}

	scale := complex(1.0/float64(m.Size()), 0)
	c.Parallel(len(k), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			k[i] *= scale
		}
	})
}

// Inverse computes the real field r from its half-complex coefficients,
// r(x) = Σ_G k(G) exp(iG·x). The imaginary parts of coefficients that must
// be real by symmetry are ignored.
func (c *CPU) Inverse(k KField, r RField) {
	m := c.mesh
	if len(r) != m.Size() || len(k) != m.KSize() {
		panic(ErrSizeMismatch)
	}
	d := m.Dim()
	last := m.Dims[d-1]
	kLast := last/2 + 1
	rows := m.Size() / last

	work := k
	if d > 1 {
		work = make(KField, len(k))
		copy(work, k)
		for axis := 0; axis < d-1; axis++ {
			c.transformAxis(work, axis, true)
		}
	}
	c.split(rows, m.Size(), func(lo, hi int) {
		p := c.getPlan()
		defer c.putPlan(p)
		for row := lo; row < hi; row++ {
			p.real.Sequence(r[row*last:(row+1)*last], work[row*kLast:(row+1)*kLast])
		}
	})
}

// transformAxis applies a complex transform along axis of the half-complex
// grid held in k, in place.
func (c *CPU) transformAxis(k KField, axis int, inverse bool) {
	kd := c.mesh.KDims()
	n := kd[axis]
	inner := 1
	for i := axis + 1; i < len(kd); i++ {
		inner *= kd[i]
	}
	outer := len(k) / (n * inner)
	lines := outer * inner

	c.split(lines, len(k), func(lo, hi int) {
		p := c.getPlan()
		defer c.putPlan(p)
		fft := p.cmplx[axis]
		in, out := p.in[:n], p.out[:n]
		for l := lo; l < hi; l++ {
			base := (l/inner)*n*inner + l%inner
			for j := 0; j < n; j++ {
				in[j] = k[base+j*inner]
			}
			if inverse {
				fft.Sequence(out, in)
			} else {
				fft.Coefficients(out, in)
			}
			for j := 0; j < n; j++ {
				k[base+j*inner] = out[j]
			}
		}
	})
}
