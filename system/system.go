// system.go --  This file is part of goFT project.
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

// Package system ties a mixture, its interaction and its domain to the
// monomer potential and concentration fields, and drives SCFT iteration,
// parameter sweeps and field-theoretic simulation from a command script.
package system

import (
	stderrors "errors"
	"time"

	"github.com/pkg/errors"

	"example.com/goft/config"
	"example.com/goft/field"
	"example.com/goft/fts"
	"example.com/goft/interaction"
	"example.com/goft/iterator"
	"example.com/goft/logs"
	"example.com/goft/solver"
)

var (
	// ErrNotConverged is returned when the iterator reaches its iteration limit.
	ErrNotConverged = stderrors.New("system: iteration did not converge")

	// ErrFieldFile is returned for a field file that does not match the
	// system.
	ErrFieldFile = stderrors.New("system: field file does not match system")
)

// System owns the fields of one calculation. w[i] and c[i] are the
// potential and concentration of monomer type i.
type System struct {
	params      *config.Params
	domain      *Domain
	mixture     *solver.Mixture
	interaction *interaction.Interaction

	w, c     []field.RField
	phiTot   float64
	flexible []bool

	am    *iterator.AM
	state *scftState
	sim   *fts.Simulator

	thermo    Thermo
	hasThermo bool
}

// New builds a system from validated parameters. The potentials start at
// zero.
func New(p *config.Params) (*System, error) {
	domain, err := NewDomain(p.Domain)
	if err != nil {
		return nil, errors.Wrap(err, "domain")
	}
	desc, err := p.MixtureDescriptor()
	if err != nil {
		return nil, err
	}
	mix, err := solver.NewMixture(desc, domain.Backend(), domain.WaveList())
	if err != nil {
		return nil, errors.Wrap(err, "mixture")
	}
	in, err := interaction.New(p.Interaction.Chi)
	if err != nil {
		return nil, errors.Wrap(err, "interaction")
	}
	ip, err := p.IteratorParams()
	if err != nil {
		return nil, err
	}
	am, err := iterator.NewAM(ip)
	if err != nil {
		return nil, err
	}

	nMonomer := mix.NMonomer()
	s := &System{
		params:      p,
		domain:      domain,
		mixture:     mix,
		interaction: in,
		w:           field.NewRFields(domain.Mesh(), nMonomer),
		c:           field.NewRFields(domain.Mesh(), nMonomer),
		phiTot:      p.Domain.PhiTot,
		flexible:    p.Flexible(domain.UnitCell().NParameter()),
		am:          am,
	}
	s.state = newSCFTState(s, p.Iterator.ScaleStress)
	return s, nil
}

func (s *System) Domain() *Domain                       { return s.domain }
func (s *System) Mixture() *solver.Mixture              { return s.mixture }
func (s *System) Interaction() *interaction.Interaction { return s.interaction }
func (s *System) W() []field.RField                     { return s.w }
func (s *System) C() []field.RField                     { return s.c }
func (s *System) PhiTot() float64                       { return s.phiTot }
func (s *System) Params() *config.Params                { return s.params }

// Volume returns the unit cell volume.
func (s *System) Volume() float64 { return s.domain.cell.Volume() }

// Flexible returns, per cell parameter, whether ITERATE relaxes it.
func (s *System) Flexible() []bool { return s.flexible }

// Compute solves the mixture in the current potentials.
func (s *System) Compute(needStress bool) {
	s.mixture.Compute(s.w, s.c, s.phiTot, needStress)
	s.hasThermo = false
}

// SetW copies w into the potentials.
func (s *System) SetW(w []field.RField) error {
	if len(w) != len(s.w) {
		return errors.Wrapf(ErrFieldFile, "%d fields for %d monomers", len(w), len(s.w))
	}
	for i := range w {
		if len(w[i]) != len(s.w[i]) {
			return errors.Wrapf(field.ErrSizeMismatch, "field %d has %d points", i, len(w[i]))
		}
	}
	field.CopyFields(s.w, w)
	s.hasThermo = false
	return nil
}

// SetUnitCell changes the cell parameters.
func (s *System) SetUnitCell(params []float64) error {
	if err := s.domain.cell.SetParameters(params); err != nil {
		return err
	}
	s.hasThermo = false
	return nil
}

// ReadW reads the potentials from an r-grid file. The cell parameters
// of the file replace the current ones.
func (s *System) ReadW(fname string) error {
	h, w, err := field.ReadRGridFile(fname)
	if err != nil {
		return err
	}
	if !h.Mesh.Equal(s.domain.mesh) {
		return errors.Wrapf(ErrFieldFile, "%s: mesh %v, system mesh %v", fname, h.Mesh.Dims, s.domain.mesh.Dims)
	}
	if h.Lattice != s.domain.cell.Lattice() {
		return errors.Wrapf(ErrFieldFile, "%s: lattice %s, system lattice %s", fname, h.Lattice, s.domain.cell.Lattice())
	}
	old := s.domain.cell.Parameters()
	if err := s.SetUnitCell(h.CellParams); err != nil {
		return errors.Wrap(err, fname)
	}
	if err := s.SetW(w); err != nil {
		if rerr := s.SetUnitCell(old); rerr != nil {
			return errors.Wrap(rerr, fname)
		}
		return errors.Wrap(err, fname)
	}
	return nil
}

// WriteW writes the potentials to an r-grid file.
func (s *System) WriteW(fname string) error {
	return field.WriteRGridFile(fname, s.domain.header(len(s.w)), s.w)
}

// WriteC writes the concentrations to an r-grid file.
func (s *System) WriteC(fname string) error {
	return field.WriteRGridFile(fname, s.domain.header(len(s.c)), s.c)
}

// Iterate solves the SCFT equations from the current potentials. The
// result is left in w and c even if the iterator fails.
func (s *System) Iterate() error {
	tstart := time.Now()
	logs.OutputLogger.Println("SCFT iteration. Cell parameters: ", s.domain.cell.Parameters())
	status := s.am.Solve(s.state)
	s.hasThermo = false
	if status != 0 {
		return errors.Wrapf(ErrNotConverged, "%d iterations, error %g", s.am.Iterations(), s.am.LastError())
	}
	s.ComputeThermo()
	logs.OutputLogger.Printf("SCFT converged in %d iterations, %v. fHelmholtz = %.12f, pressure = %.12f",
		s.am.Iterations(), time.Since(tstart), s.thermo.FHelmholtz, s.thermo.Pressure)
	logs.OutputLogger.Println("Total SCFT iteration time: ", s.am.Elapsed())
	if s.state.nFlex > 0 {
		logs.OutputLogger.Println("Cell parameters: ", s.domain.cell.Parameters())
	}
	return nil
}

// Simulator returns the field-theoretic simulator of the system, creating
// it from the [simulator] section on first use.
func (s *System) Simulator() (*fts.Simulator, error) {
	if s.sim != nil {
		return s.sim, nil
	}
	ip, err := s.params.IteratorParams()
	if err != nil {
		return nil, err
	}
	ip.Epsilon = s.params.Simulator.Epsilon
	ip.MaxItr = s.params.Simulator.MaxItr
	ip.Verbose = 0
	sim, err := fts.New(s, fts.Params{
		Seed:       s.params.Simulator.Seed,
		StepSize:   s.params.Simulator.StepSize,
		Compressor: ip,
	})
	if err != nil {
		return nil, err
	}
	s.sim = sim
	return sim, nil
}

// Simulate compresses the current fields and makes n Monte Carlo moves.
func (s *System) Simulate(n int) (fts.Stats, error) {
	sim, err := s.Simulator()
	if err != nil {
		return fts.Stats{}, err
	}
	if sim.Compress() != 0 {
		return fts.Stats{}, errors.Wrap(ErrNotConverged, "initial compression")
	}
	stats := sim.Simulate(n)
	s.hasThermo = false
	return stats, nil
}
