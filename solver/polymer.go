// polymer.go --  This file is part of goFT project.
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
package solver

import (
	"math"
	"sync"

	"example.com/goft/chem"
	"example.com/goft/field"
)

// Polymer is one block copolymer species. Blocks and propagators are
// owned by index; propagator (b, d) is propagators[2b+d].
type Polymer struct {
	chem.SpeciesDescriptor
	Type chem.PolymerType

	blocks      []*Block
	propagators []*Propagator
	plan        *chem.Plan
	length      float64
	q           float64
}

// Q returns the molecular partition function of the last Compute.
func (p *Polymer) Q() float64 { return p.q }

// Length returns the number of monomers per chain. In the bead model this
// is the total bead count.
func (p *Polymer) Length() float64 { return p.length }

func (p *Polymer) NBlock() int        { return len(p.blocks) }
func (p *Polymer) Block(i int) *Block { return p.blocks[i] }
func (p *Polymer) Plan() *chem.Plan   { return p.plan }
func (p *Polymer) NPropagator() int   { return len(p.propagators) }

func (p *Polymer) Propagator(block, dir int) *Propagator {
	return p.propagators[chem.PropagatorID{Block: block, Dir: dir}.Index()]
}

func (p *Polymer) updateLength() {
	p.length = 0
	for _, b := range p.blocks {
		if b.model == chem.Bead {
			p.length += float64(b.NBead())
		} else {
			p.length += b.Length
		}
	}
}

func (p *Polymer) setDs(ds float64) {
	for _, b := range p.blocks {
		b.setDs(ds)
		m := b.backend.Mesh()
		for d := 0; d < 2; d++ {
			p.Propagator(b.ID, d).allocate(b.ns, m)
		}
	}
	p.updateLength()
}

func (p *Polymer) solveOne(id chem.PropagatorID) {
	srcIDs := p.plan.Sources[id.Index()]
	sources := make([]*Propagator, len(srcIDs))
	for i, s := range srcIDs {
		sources[i] = p.propagators[s.Index()]
	}
	p.propagators[id.Index()].solve(p.blocks[id.Block], sources)
}

// compute solves every propagator for potentials w, sets Q and the
// complementary species quantity and fills the block concentrations.
// With concurrent set the members of each dependency level run in
// separate goroutines.
func (p *Polymer) compute(w []field.RField, phiTot float64, concurrent bool) {
	for _, b := range p.blocks {
		b.setupSolver(w[b.MonomerID])
	}
	for _, prop := range p.propagators {
		prop.isSolved = false
	}

	if concurrent {
		for _, level := range p.plan.Levels {
			var wg sync.WaitGroup
			for _, id := range level {
				wg.Add(1)
				go func(id chem.PropagatorID) {
					defer wg.Done()
					p.solveOne(id)
				}(id)
			}
			wg.Wait()
		}
	} else {
		for _, id := range p.plan.Order {
			p.solveOne(id)
		}
	}

	first := chem.PropagatorID{Block: 0, Dir: 0}
	p.q = p.propagators[first.Index()].ComputeQ(p.propagators[first.Partner().Index()]) / phiTot
	switch p.Ensemble {
	case chem.Closed:
		p.Mu = math.Log(p.Phi / p.q)
	case chem.Open:
		p.Phi = math.Exp(p.Mu) * p.q
	}

	prefactor := p.Phi / (p.q * p.length)
	p.eachBlock(concurrent, func(b *Block) {
		b.computeConcentration(p.Propagator(b.ID, 0), p.Propagator(b.ID, 1), prefactor)
	})
}

// computeStress sets the block stresses to the derivatives of
// -(φ/N) ln Q with respect to the cell parameters.
func (p *Polymer) computeStress(phiTot float64, concurrent bool) {
	prefactor := -p.Phi / (p.length * p.q * phiTot)
	p.eachBlock(concurrent, func(b *Block) {
		b.computeStress(p.Propagator(b.ID, 0), p.Propagator(b.ID, 1), prefactor)
	})
}

func (p *Polymer) eachBlock(concurrent bool, fn func(b *Block)) {
	if !concurrent {
		for _, b := range p.blocks {
			fn(b)
		}
		return
	}
	var wg sync.WaitGroup
	for _, b := range p.blocks {
		wg.Add(1)
		go func(b *Block) {
			defer wg.Done()
			fn(b)
		}(b)
	}
	wg.Wait()
}
