package iterator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"example.com/goft/iterator"
)

func TestRingBuffer(t *testing.T) {
	b := iterator.NewRingBuffer(3, 2)
	for i := 1; i <= 5; i++ {
		b.Append([]float64{float64(i), -float64(i)})
	}
	require.Equal(t, 3, b.Size())
	assert.Equal(t, []float64{5, -5}, b.Get(0))
	assert.Equal(t, []float64{4, -4}, b.Get(1))
	assert.Equal(t, []float64{3, -3}, b.Get(2))
	assert.Panics(t, func() { b.Get(3) })

	b.Truncate(1)
	assert.Equal(t, 1, b.Size())
	assert.Equal(t, []float64{5, -5}, b.Get(0))
	b.Append([]float64{6, -6})
	assert.Equal(t, []float64{5, -5}, b.Get(1))

	b.Clear()
	assert.Equal(t, 0, b.Size())
	assert.Panics(t, func() { b.Append([]float64{1}) })
}

// linearState is r(x) = b - Ax with A tridiagonal (1, -0.3).
type linearState struct {
	x, b  []float64
	norms []float64
}

func newLinearState(n int) *linearState {
	s := &linearState{x: make([]float64, n), b: make([]float64, n)}
	for i := range s.b {
		s.b[i] = math.Sin(float64(i + 1))
	}
	return s
}

func (s *linearState) apply(x, y []float64) {
	n := len(x)
	for i := range x {
		y[i] = x[i]
		if i > 0 {
			y[i] -= 0.3 * x[i-1]
		}
		if i < n-1 {
			y[i] -= 0.3 * x[i+1]
		}
	}
}

func (s *linearState) NElements() int      { return len(s.x) }
func (s *linearState) Current(x []float64) { copy(x, s.x) }
func (s *linearState) Evaluate()           {}
func (s *linearState) Update(x []float64)  { copy(s.x, x) }
func (s *linearState) Residual(r []float64) {
	s.apply(s.x, r)
	floats.SubTo(r, s.b, r)
	s.norms = append(s.norms, floats.Norm(r, 2))
}

func TestLinearProblemConverges(t *testing.T) {
	p := iterator.DefaultParams()
	p.Epsilon = 1e-10
	p.MaxHist = 20
	p.ErrorType = iterator.NormError
	p.Verbose = 0
	am, err := iterator.NewAM(p)
	require.NoError(t, err)

	s := newLinearState(30)
	require.Equal(t, 0, am.Solve(s))
	assert.Equal(t, iterator.Converged, am.Status())
	assert.Less(t, am.Iterations(), 60)
	assert.Less(t, am.LastError(), 1e-10)

	ax := make([]float64, 30)
	s.apply(s.x, ax)
	assert.InDeltaSlice(t, s.b, ax, 1e-9)

	for i := 1; i < len(s.norms); i++ {
		assert.Less(t, s.norms[i], s.norms[i-1], "iteration %d", i)
	}

	// A second solve starts from clean histories and converges at once.
	s.norms = nil
	require.Equal(t, 0, am.Solve(s))
	assert.Equal(t, 0, am.Iterations())
}

// nonlinearState solves x = cos(x) componentwise with different scales.
type nonlinearState struct{ x []float64 }

func (s *nonlinearState) NElements() int      { return len(s.x) }
func (s *nonlinearState) Current(x []float64) { copy(x, s.x) }
func (s *nonlinearState) Evaluate()           {}
func (s *nonlinearState) Update(x []float64)  { copy(s.x, x) }
func (s *nonlinearState) Residual(r []float64) {
	for i, x := range s.x {
		k := 1 + 0.1*float64(i)
		r[i] = math.Cos(k*x)/k - x
	}
}

func TestNonlinearProblem(t *testing.T) {
	for _, et := range []string{"max", "norm", "rms", "relNorm"} {
		t.Run(et, func(t *testing.T) {
			p := iterator.DefaultParams()
			p.Verbose = 0
			p.ErrorType, _ = iterator.ParseErrorType(et)
			am, err := iterator.NewAM(p)
			require.NoError(t, err)
			s := &nonlinearState{x: make([]float64, 10)}
			require.Equal(t, 0, am.Solve(s))
			for i, x := range s.x {
				k := 1 + 0.1*float64(i)
				assert.InDelta(t, math.Cos(k*x)/k, x, 1e-7)
			}
		})
	}
}

func TestIterationLimit(t *testing.T) {
	p := iterator.DefaultParams()
	p.MaxItr = 3
	p.Verbose = 0
	am, err := iterator.NewAM(p)
	require.NoError(t, err)
	s := newLinearState(30)
	assert.Equal(t, 1, am.Solve(s))
	assert.Equal(t, iterator.Failed, am.Status())
	assert.Equal(t, 3, am.Iterations())

	first := am.Elapsed()
	assert.Positive(t, int64(first))
	am.Solve(newLinearState(30))
	assert.Greater(t, int64(am.Elapsed()), int64(first))
}

// constantState has a residual that never changes, so every basis vector
// is zero and the coefficient matrix is singular.
type constantState struct{ x []float64 }

func (s *constantState) NElements() int      { return len(s.x) }
func (s *constantState) Current(x []float64) { copy(x, s.x) }
func (s *constantState) Evaluate()           {}
func (s *constantState) Update(x []float64)  { copy(s.x, x) }
func (s *constantState) Residual(r []float64) {
	for i := range r {
		r[i] = 1
	}
}

func TestSingularBasisFallsBackToSimpleMixing(t *testing.T) {
	p := iterator.DefaultParams()
	p.MaxItr = 5
	p.Lambda = 0.5
	p.UseLambdaRamp = false
	p.Verbose = 0
	am, err := iterator.NewAM(p)
	require.NoError(t, err)
	s := &constantState{x: make([]float64, 4)}
	assert.Equal(t, 1, am.Solve(s))
	assert.Equal(t, 0, am.NBasis())
	// Five simple-mixing steps of 0.5.
	assert.InDeltaSlice(t, []float64{2.5, 2.5, 2.5, 2.5}, s.x, 1e-14)
}

func TestParams(t *testing.T) {
	_, err := iterator.ParseErrorType("huge")
	assert.Error(t, err)
	et, err := iterator.ParseErrorType("RMS")
	require.NoError(t, err)
	assert.Equal(t, iterator.RMSError, et)

	p := iterator.DefaultParams()
	require.NoError(t, p.Validate())
	p.MaxHist = 0
	assert.Error(t, p.Validate())
	p = iterator.DefaultParams()
	p.Epsilon = 0
	_, err = iterator.NewAM(p)
	assert.Error(t, err)
}
