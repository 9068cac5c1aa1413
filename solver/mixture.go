// mixture.go --  This file is part of goFT project.
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

// Package solver integrates the modified diffusion equation for every
// block of every polymer with the pseudo-spectral method and assembles
// monomer concentrations, partition functions and cell stress.
package solver

import (
	"fmt"

	"github.com/pkg/errors"

	"example.com/goft/chem"
	"example.com/goft/field"
	"example.com/goft/unitcell"
)

// Descriptor is everything needed to build a Mixture.
type Descriptor struct {
	Monomers []chem.Monomer
	Polymers []chem.PolymerDescriptor
	Solvents []chem.SolventDescriptor

	Model chem.PolymerModel
	Ds    float64 // target contour step, thread model only

	// VMonomer is the monomer reference volume. Zero means 1.
	VMonomer float64

	// Richardson selects the extrapolated thread-model step.
	Richardson bool

	// Concurrent solves independent propagators in parallel.
	Concurrent bool
}

// Mixture is a set of polymer and solvent species on one domain.
type Mixture struct {
	monomers []chem.Monomer
	polymers []*Polymer
	solvents []*Solvent

	model      chem.PolymerModel
	ds         float64
	vMonomer   float64
	concurrent bool

	backend   field.Backend
	waves     *unitcell.WaveList
	stress    []float64
	hasStress bool
}

// NewMixture validates d and allocates all blocks and propagators for the
// mesh of backend.
func NewMixture(d Descriptor, backend field.Backend, waves *unitcell.WaveList) (*Mixture, error) {
	nMonomer := len(d.Monomers)
	if nMonomer == 0 {
		return nil, errors.Wrap(chem.ErrDescriptor, "no monomers")
	}
	if len(d.Polymers)+len(d.Solvents) == 0 {
		return nil, errors.Wrap(chem.ErrDescriptor, "no species")
	}
	for i, m := range d.Monomers {
		if m.ID != i {
			return nil, errors.Wrapf(chem.ErrDescriptor, "monomer %d has id %d", i, m.ID)
		}
		if !(m.Kuhn > 0) {
			return nil, errors.Wrapf(chem.ErrDescriptor, "monomer %d: statistical segment length %g", i, m.Kuhn)
		}
	}
	if d.Model == chem.Thread && !(d.Ds > 0) {
		return nil, errors.Wrapf(chem.ErrDescriptor, "contour step %g", d.Ds)
	}
	if d.VMonomer == 0 {
		d.VMonomer = 1
	}

	mix := &Mixture{
		monomers:   append([]chem.Monomer(nil), d.Monomers...),
		model:      d.Model,
		ds:         d.Ds,
		vMonomer:   d.VMonomer,
		concurrent: d.Concurrent,
		backend:    backend,
		waves:      waves,
		stress:     make([]float64, waves.Cell().NParameter()),
	}
	mesh := backend.Mesh()

	for i, pd := range d.Polymers {
		pd.Blocks = append([]chem.Edge(nil), pd.Blocks...)
		if err := pd.Validate(nMonomer); err != nil {
			return nil, errors.Wrapf(err, "polymer %d", i)
		}
		plan, err := chem.NewPlan(pd.Blocks)
		if err != nil {
			return nil, errors.Wrapf(err, "polymer %d", i)
		}
		p := &Polymer{
			SpeciesDescriptor: pd.SpeciesDescriptor,
			Type:              pd.Type,
			plan:              plan,
		}
		for _, e := range pd.Blocks {
			b := newBlock(e, d.Monomers[e.MonomerID].Kuhn, d.Ds, d.Model, d.Richardson, backend, waves)
			p.blocks = append(p.blocks, b)
			for dir := 0; dir < 2; dir++ {
				id := chem.PropagatorID{Block: e.ID, Dir: dir}
				p.propagators = append(p.propagators, newPropagator(id, b.ns, mesh))
			}
		}
		p.updateLength()
		mix.polymers = append(mix.polymers, p)
	}
	for i, sd := range d.Solvents {
		if err := sd.Validate(nMonomer); err != nil {
			return nil, errors.Wrapf(err, "solvent %d", i)
		}
		mix.solvents = append(mix.solvents, &Solvent{
			SolventDescriptor: sd,
			backend:           backend,
			cField:            field.NewRField(mesh),
		})
	}
	return mix, nil
}

func (m *Mixture) NMonomer() int                { return len(m.monomers) }
func (m *Mixture) NPolymer() int                { return len(m.polymers) }
func (m *Mixture) NSolvent() int                { return len(m.solvents) }
func (m *Mixture) Monomer(i int) chem.Monomer   { return m.monomers[i] }
func (m *Mixture) Polymer(i int) *Polymer       { return m.polymers[i] }
func (m *Mixture) Solvent(i int) *Solvent       { return m.solvents[i] }
func (m *Mixture) VMonomer() float64            { return m.vMonomer }
func (m *Mixture) Model() chem.PolymerModel     { return m.model }
func (m *Mixture) Ds() float64                  { return m.ds }
func (m *Mixture) Backend() field.Backend       { return m.backend }
func (m *Mixture) WaveList() *unitcell.WaveList { return m.waves }
func (m *Mixture) HasStress() bool              { return m.hasStress }

// NBlock returns the number of blocks over all polymers.
func (m *Mixture) NBlock() int {
	n := 0
	for _, p := range m.polymers {
		n += p.NBlock()
	}
	return n
}

// IsCanonical reports whether every species has a prescribed volume
// fraction. In that case the pressure-like homogeneous field is arbitrary.
func (m *Mixture) IsCanonical() bool {
	for _, p := range m.polymers {
		if p.Ensemble == chem.Open {
			return false
		}
	}
	for _, s := range m.solvents {
		if s.Ensemble == chem.Open {
			return false
		}
	}
	return true
}

// SetKuhn changes the statistical segment length of a monomer type.
func (m *Mixture) SetKuhn(monomerID int, kuhn float64) {
	m.monomers[monomerID].Kuhn = kuhn
	for _, p := range m.polymers {
		for _, b := range p.blocks {
			if b.MonomerID == monomerID {
				b.SetKuhn(kuhn)
			}
		}
	}
}

// SetDs changes the target contour step and reallocates propagators.
func (m *Mixture) SetDs(ds float64) {
	m.ds = ds
	for _, p := range m.polymers {
		p.setDs(ds)
	}
}

// Compute solves all propagators for the potentials w and writes the
// monomer concentrations into c. phiTot is the fraction of the cell
// available to the material. If needStress is set the derivatives of the
// free energy with respect to the cell parameters are computed too.
func (m *Mixture) Compute(w, c []field.RField, phiTot float64, needStress bool) {
	nMonomer := len(m.monomers)
	if len(w) != nMonomer || len(c) != nMonomer {
		panic(fmt.Sprintf("solver: %d w and %d c fields for %d monomers", len(w), len(c), nMonomer))
	}
	m.waves.Update()

	for i := range c {
		field.Fill(c[i], 0)
	}
	for _, p := range m.polymers {
		p.compute(w, phiTot, m.concurrent)
		for _, b := range p.blocks {
			field.AddScaled(m.backend, c[b.MonomerID], 1, b.cField)
		}
	}
	for _, s := range m.solvents {
		s.compute(w[s.MonomerID], phiTot)
		field.AddScaled(m.backend, c[s.MonomerID], 1, s.cField)
	}

	m.hasStress = false
	if needStress {
		m.computeStress(phiTot)
	}
}

func (m *Mixture) computeStress(phiTot float64) {
	for n := range m.stress {
		m.stress[n] = 0
	}
	for _, p := range m.polymers {
		p.computeStress(phiTot, m.concurrent)
		for _, b := range p.blocks {
			for n, s := range b.stress {
				m.stress[n] += s
			}
		}
	}
	m.hasStress = true
}

// Stress returns the derivative of the free energy per monomer with
// respect to each cell parameter, as of the last Compute with needStress.
func (m *Mixture) Stress() []float64 { return m.stress }
