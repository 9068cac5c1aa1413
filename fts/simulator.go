// simulator.go --  This file is part of goFT project.
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

// Package fts samples the fluctuating exchange field of an incompressible
// two-monomer system by real-space Monte Carlo. The pressure-like field is
// kept at its saddle point by an Anderson-mixing compressor.
package fts

import (
	stderrors "errors"
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"example.com/goft/field"
	"example.com/goft/interaction"
	"example.com/goft/iterator"
	"example.com/goft/logs"
	"example.com/goft/solver"
)

// ErrUnsupported is returned for systems the simulator cannot treat.
var ErrUnsupported = stderrors.New("fts: unsupported system")

// System is the field container the simulator works on. Compute must
// refresh the concentrations from the current potentials.
type System interface {
	Mixture() *solver.Mixture
	Interaction() *interaction.Interaction
	W() []field.RField
	C() []field.RField
	Compute(needStress bool)
	Volume() float64
}

// Params are the simulator settings.
type Params struct {
	Seed uint64

	// StepSize is the standard deviation of the exchange field move at
	// each mesh point.
	StepSize float64

	Compressor iterator.Params
}

// Stats counts Monte Carlo steps.
type Stats struct {
	Attempted          int
	Accepted           int
	CompressorFailures int
}

// AcceptanceRatio returns Accepted/Attempted.
func (s Stats) AcceptanceRatio() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Attempted)
}

// Simulator runs the Monte Carlo chain.
type Simulator struct {
	sys        System
	params     Params
	compressor *iterator.AM
	state      *compressorState

	normal  distuv.Normal
	uniform distuv.Uniform

	wPlus, wMinus field.RField
	savedW        []field.RField

	hamiltonian float64
	hasH        bool
	stats       Stats
}

// New returns a simulator for sys.
func New(sys System, p Params) (*Simulator, error) {
	mix := sys.Mixture()
	if mix.NMonomer() != 2 {
		return nil, errors.Wrapf(ErrUnsupported, "%d monomer types, need 2", mix.NMonomer())
	}
	if !(sys.Interaction().Chi(0, 1) > 0) {
		return nil, errors.Wrapf(ErrUnsupported, "chi = %g, need a positive value", sys.Interaction().Chi(0, 1))
	}
	if !(p.StepSize > 0) {
		return nil, errors.Errorf("fts: step size %g", p.StepSize)
	}
	am, err := iterator.NewAM(p.Compressor)
	if err != nil {
		return nil, err
	}
	m := mix.Backend().Mesh()
	src := rand.NewSource(p.Seed)
	s := &Simulator{
		sys:        sys,
		params:     p,
		compressor: am,
		normal:     distuv.Normal{Mu: 0, Sigma: p.StepSize, Src: src},
		uniform:    distuv.Uniform{Min: 0, Max: 1, Src: src},
		wPlus:      field.NewRField(m),
		wMinus:     field.NewRField(m),
		savedW:     field.NewRFields(m, 2),
	}
	s.state = &compressorState{sim: s}
	return s, nil
}

func (s *Simulator) Stats() Stats { return s.stats }

// Hamiltonian returns H of the current state; valid after Compress.
func (s *Simulator) Hamiltonian() float64 { return s.hamiltonian }

// splitFields sets W+ = (w0+w1)/2 and W- = (w0-w1)/2.
func (s *Simulator) splitFields() {
	w := s.sys.W()
	for i := range s.wPlus {
		s.wPlus[i] = 0.5 * (w[0][i] + w[1][i])
		s.wMinus[i] = 0.5 * (w[0][i] - w[1][i])
	}
}

// joinFields sets w0 = W+ + W- and w1 = W+ - W-.
func (s *Simulator) joinFields() {
	w := s.sys.W()
	for i := range s.wPlus {
		w[0][i] = s.wPlus[i] + s.wMinus[i]
		w[1][i] = s.wPlus[i] - s.wMinus[i]
	}
}

// Compress solves for W+ at fixed W- and recomputes H. It returns 0 on
// success and 1 if the compressor did not converge.
func (s *Simulator) Compress() int {
	s.splitFields()
	status := s.compressor.Solve(s.state)
	s.computeHamiltonian()
	return status
}

// computeHamiltonian sets
// H = (V/v)[ -Σ_p (φ_p/N_p) ln Q_p - Σ_s (φ_s/size_s) ln Q_s + <W-²>/χ - <W+> ].
func (s *Simulator) computeHamiltonian() {
	mix := s.sys.Mixture()
	h := 0.0
	for i := 0; i < mix.NPolymer(); i++ {
		p := mix.Polymer(i)
		h -= p.Phi / p.Length() * math.Log(p.Q())
	}
	for i := 0; i < mix.NSolvent(); i++ {
		sv := mix.Solvent(i)
		h -= sv.Phi / sv.Size * math.Log(sv.Q())
	}
	chi := s.sys.Interaction().Chi(0, 1)
	h += field.InnerAverage(s.wMinus, s.wMinus)/chi - field.Average(s.wPlus)
	s.hamiltonian = h * s.sys.Volume() / mix.VMonomer()
	s.hasH = true
}

func (s *Simulator) save() {
	field.CopyFields(s.savedW, s.sys.W())
}

// restore puts back the saved potentials and re-solves the mixture for them.
func (s *Simulator) restore() {
	field.CopyFields(s.sys.W(), s.savedW)
	s.sys.Compute(false)
	s.splitFields()
}

// Step makes one Monte Carlo move and reports whether it was accepted.
func (s *Simulator) Step() bool {
	if !s.hasH && s.Compress() != 0 {
		logs.WarningLogger.Println("fts: starting state is not compressed, error ", s.compressor.LastError())
	}
	s.stats.Attempted++
	oldH := s.hamiltonian
	s.save()

	s.splitFields()
	for i := range s.wMinus {
		s.wMinus[i] += s.normal.Rand()
	}
	s.joinFields()
	if s.compressor.Solve(s.state) != 0 {
		s.stats.CompressorFailures++
		s.restore()
		s.hamiltonian = oldH
		return false
	}
	s.computeHamiltonian()

	dH := s.hamiltonian - oldH
	if dH <= 0 || s.uniform.Rand() < math.Exp(-dH) {
		s.stats.Accepted++
		return true
	}
	s.restore()
	s.hamiltonian = oldH
	return false
}

// Simulate makes nStep moves and logs the acceptance statistics.
func (s *Simulator) Simulate(nStep int) Stats {
	tstart := time.Now()
	start := s.stats
	for i := 0; i < nStep; i++ {
		accepted := s.Step()
		logs.OutputLogger.Printf("MC step %6d. H = %.10e, accepted = %v", i+1, s.hamiltonian, accepted)
	}
	run := Stats{
		Attempted:          s.stats.Attempted - start.Attempted,
		Accepted:           s.stats.Accepted - start.Accepted,
		CompressorFailures: s.stats.CompressorFailures - start.CompressorFailures,
	}
	logs.OutputLogger.Printf("MC run: %d moves, acceptance ratio %.4f, %d compressor failures, time %v (compressor %v)",
		run.Attempted, run.AcceptanceRatio(), run.CompressorFailures, time.Since(tstart), s.compressor.Elapsed())
	return run
}
