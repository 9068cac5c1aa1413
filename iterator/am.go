// am.go --  This file is part of goFT project.
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

// Package iterator is an Anderson-mixing solver for fixed-point problems
// x = x + r(x) over a vector of unknowns, driven through the State
// interface.
package iterator

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"example.com/goft/logs"
)

// State is the problem seen by the iterator.
//
// Current copies the unknowns into x. Evaluate recomputes everything the
// residual depends on for the unknowns last passed to Update (or the
// initial ones). Residual copies the residual into r. The simple-mixing
// step is x + λr, so r points from x towards the improved solution.
type State interface {
	NElements() int
	Current(x []float64)
	Evaluate()
	Residual(r []float64)
	Update(x []float64)
}

// ErrorType selects the convergence measure.
type ErrorType int

const (
	MaxError     ErrorType = iota // largest absolute residual component
	NormError                     // L2 norm of the residual
	RMSError                      // L2 norm divided by sqrt(n)
	RelNormError                  // L2 norm of the residual over that of x
)

var errorTypeNames = []string{"max", "norm", "rms", "relnorm"}

func (e ErrorType) String() string { return errorTypeNames[e] }

// ParseErrorType parses "max", "norm", "rms" or "relNorm".
func ParseErrorType(s string) (ErrorType, error) {
	i := slices.Index(errorTypeNames, strings.ToLower(s))
	if i < 0 {
		return 0, errors.Errorf("iterator: unknown error type %q", s)
	}
	return ErrorType(i), nil
}

// Status is the state of a solve.
type Status int

const (
	Setup Status = iota
	Iterating
	Converged
	Failed
)

var statusNames = []string{"setup", "iterating", "converged", "failed"}

func (s Status) String() string { return statusNames[s] }

// Params are the settings of the Anderson-mixing iterator.
type Params struct {
	MaxItr    int
	MaxHist   int
	Epsilon   float64
	ErrorType ErrorType

	// Lambda is the mixing parameter applied to the predicted residual.
	Lambda float64

	// UseLambdaRamp damps the first steps after a restart with
	// λ(1 - 0.9^(nBasis+1)).
	UseLambdaRamp bool

	// MaxCondition bounds the condition number of the coefficient matrix.
	// Older basis vectors are dropped until it holds.
	MaxCondition float64

	// Verbose > 0 writes one line per iteration to the output log.
	Verbose int
}

// DefaultParams returns the settings used when none are given.
func DefaultParams() Params {
	return Params{
		MaxItr:        200,
		MaxHist:       50,
		Epsilon:       1e-8,
		ErrorType:     MaxError,
		Lambda:        1.0,
		UseLambdaRamp: true,
		MaxCondition:  1e12,
		Verbose:       1,
	}
}

// Validate checks p.
func (p Params) Validate() error {
	switch {
	case p.MaxItr < 1:
		return errors.Errorf("iterator: maxItr %d", p.MaxItr)
	case p.MaxHist < 1:
		return errors.Errorf("iterator: maxHist %d", p.MaxHist)
	case !(p.Epsilon > 0):
		return errors.Errorf("iterator: epsilon %g", p.Epsilon)
	case !(p.Lambda > 0):
		return errors.Errorf("iterator: lambda %g", p.Lambda)
	case !(p.MaxCondition > 1):
		return errors.Errorf("iterator: maxCondition %g", p.MaxCondition)
	case p.ErrorType < MaxError || p.ErrorType > RelNormError:
		return errors.Errorf("iterator: error type %d", p.ErrorType)
	}
	return nil
}

// AM is an Anderson-mixing iterator. Its history buffers persist between
// iterations of one Solve and are cleared at the start of the next.
type AM struct {
	Params

	nElem      int
	fieldHists *RingBuffer
	resHists   *RingBuffer
	fieldBasis *RingBuffer
	resBasis   *RingBuffer

	field, resid           []float64
	trialField, trialResid []float64

	status    Status
	itr       int
	lastError float64
	timeTotal time.Duration
}

// NewAM returns an iterator with parameters p.
func NewAM(p Params) (*AM, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &AM{Params: p}, nil
}

func (a *AM) allocate(n int) {
	if a.nElem == n && a.fieldHists != nil && a.fieldHists.Capacity() == a.MaxHist+1 {
		a.fieldHists.Clear()
		a.resHists.Clear()
		a.fieldBasis.Clear()
		a.resBasis.Clear()
		return
	}
	a.nElem = n
	a.fieldHists = NewRingBuffer(a.MaxHist+1, n)
	a.resHists = NewRingBuffer(a.MaxHist+1, n)
	a.fieldBasis = NewRingBuffer(a.MaxHist, n)
	a.resBasis = NewRingBuffer(a.MaxHist, n)
	a.field = make([]float64, n)
	a.resid = make([]float64, n)
	a.trialField = make([]float64, n)
	a.trialResid = make([]float64, n)
}

// Status returns the state of the last Solve.
func (a *AM) Status() Status { return a.status }

// Iterations returns the number of updates made by the last Solve.
func (a *AM) Iterations() int { return a.itr }

// LastError returns the convergence measure at the end of the last Solve.
func (a *AM) LastError() float64 { return a.lastError }

// Elapsed returns the wall time spent in Solve since the iterator was made.
func (a *AM) Elapsed() time.Duration { return a.timeTotal }

// NBasis returns the number of basis vectors currently held.
func (a *AM) NBasis() int {
	if a.resBasis == nil {
		return 0
	}
	return a.resBasis.Size()
}

// Solve iterates s to convergence. It returns 0 on success and 1 if
// MaxItr updates did not reach the tolerance.
func (a *AM) Solve(s State) int {
	tstart := time.Now()
	defer func() { a.timeTotal += time.Since(tstart) }()

	a.status = Setup
	a.allocate(s.NElements())
	s.Evaluate()

	a.status = Iterating
	for a.itr = 0; ; a.itr++ {
		s.Current(a.field)
		s.Residual(a.resid)
		a.lastError = a.computeError(a.field, a.resid)
		if a.Verbose > 0 {
			logs.OutputLogger.Printf("Iteration %4d. Error = %.6e, nBasis = %d", a.itr, a.lastError, a.NBasis())
		}
		if a.lastError < a.Epsilon {
			a.status = Converged
			if a.Verbose > 0 {
				logs.OutputLogger.Printf("AM converged after %d iterations. Error = %.6e", a.itr, a.lastError)
			}
			return 0
		}
		if a.itr == a.MaxItr {
			a.status = Failed
			logs.OutputLogger.Printf("Warning! AM NOT converged after %d iterations. Error = %.6e", a.itr, a.lastError)
			return 1
		}

		a.fieldHists.Append(a.field)
		a.resHists.Append(a.resid)
		if a.itr > 0 {
			a.updateBasis()
		}
		coeffs := a.coefficients()
		a.trial(coeffs)

		lambda := a.Lambda
		if a.UseLambdaRamp {
			lambda *= 1 - math.Pow(0.9, float64(len(coeffs)+1))
		}
		floats.AddScaled(a.trialField, lambda, a.trialResid)
		s.Update(a.trialField)
		s.Evaluate()
	}
}

// updateBasis appends the differences of the two most recent histories.
func (a *AM) updateBasis() {
	dx := a.trialField
	floats.SubTo(dx, a.fieldHists.Get(0), a.fieldHists.Get(1))
	a.fieldBasis.Append(dx)
	dr := a.trialResid
	floats.SubTo(dr, a.resHists.Get(0), a.resHists.Get(1))
	a.resBasis.Append(dr)
}

// coefficients solves U c = v, U_ij = ΔR_i·ΔR_j, v_i = r·ΔR_i, with the
// most recent basis vectors for which U is well conditioned. Dropped
// vectors are removed from the basis. An empty result means simple mixing.
func (a *AM) coefficients() []float64 {
	r := a.resHists.Get(0)
	for n := a.resBasis.Size(); n > 0; n-- {
		u := mat.NewSymDense(n, nil)
		v := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			di := a.resBasis.Get(i)
			v.SetVec(i, floats.Dot(r, di))
			for j := 0; j <= i; j++ {
				u.SetSym(i, j, floats.Dot(di, a.resBasis.Get(j)))
			}
		}
		var lu mat.LU
		lu.Factorize(u)
		if lu.Cond() > a.MaxCondition {
			a.dropOldest(n - 1)
			continue
		}
		var c mat.VecDense
		if err := lu.SolveVecTo(&c, false, v); err != nil {
			a.dropOldest(n - 1)
			continue
		}
		return c.RawVector().Data
	}
	if a.itr > 0 {
		logs.WarningLogger.Printf("AM iteration %d: no usable basis, simple mixing step", a.itr)
	}
	return nil
}

func (a *AM) dropOldest(keep int) {
	a.fieldBasis.Truncate(keep)
	a.resBasis.Truncate(keep)
}

// trial sets the predicted field x - Σ c_i ΔX_i and residual r - Σ c_i ΔR_i.
func (a *AM) trial(c []float64) {
	copy(a.trialField, a.fieldHists.Get(0))
	copy(a.trialResid, a.resHists.Get(0))
	for i, ci := range c {
		floats.AddScaled(a.trialField, -ci, a.fieldBasis.Get(i))
		floats.AddScaled(a.trialResid, -ci, a.resBasis.Get(i))
	}
}

func (a *AM) computeError(x, r []float64) float64 {
	switch a.ErrorType {
	case NormError:
		return floats.Norm(r, 2)
	case RMSError:
		return floats.Norm(r, 2) / math.Sqrt(float64(len(r)))
	case RelNormError:
		xn := floats.Norm(x, 2)
		if xn == 0 {
			return floats.Norm(r, 2)
		}
		return floats.Norm(r, 2) / xn
	default:
		return floats.Norm(r, math.Inf(1))
	}
}
