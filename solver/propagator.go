// propagator.go --  This file is part of goFT project.
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
	"fmt"

	"example.com/goft/chem"
	"example.com/goft/field"
)

// workspace holds the scratch arrays of one propagator solve.
type workspace struct {
	r0, r1 field.RField
	k      field.KField
}

// Propagator is q(r,s) for one direction of one block: ns slices, slice 0
// being the head.
type Propagator struct {
	id       chem.PropagatorID
	q        []field.RField
	ws       workspace
	isSolved bool
}

func newPropagator(id chem.PropagatorID, ns int, m field.Mesh) *Propagator {
	p := &Propagator{id: id}
	p.allocate(ns, m)
	return p
}

func (p *Propagator) allocate(ns int, m field.Mesh) {
	p.q = field.NewRFields(m, ns)
	p.ws = workspace{
		r0: field.NewRField(m),
		r1: field.NewRField(m),
		k:  field.NewKField(m),
	}
	p.isSolved = false
}

func (p *Propagator) ID() chem.PropagatorID { return p.id }

// NS returns the number of slices.
func (p *Propagator) NS() int { return len(p.q) }

// Q returns slice i. It is only meaningful once the propagator is solved.
func (p *Propagator) Q(i int) field.RField { return p.q[i] }

func (p *Propagator) Head() field.RField { return p.q[0] }
func (p *Propagator) Tail() field.RField { return p.q[len(p.q)-1] }
func (p *Propagator) IsSolved() bool     { return p.isSolved }

// solve computes the head as the product of the source tails (all ones
// for a free end) and then every following slice.
func (p *Propagator) solve(b *Block, sources []*Propagator) {
	head := p.q[0]
	field.Fill(head, 1)
	for _, s := range sources {
		if !s.isSolved {
			panic(fmt.Sprintf("solver: propagator %v solved before its source %v", p.id, s.id))
		}
		field.MulInPlace(b.backend, head, s.Tail())
	}
	b.solve(p)
	p.isSolved = true
}

// ComputeQ returns the spatial average of the product of this head and the
// partner tail, both at the same vertex.
func (p *Propagator) ComputeQ(partner *Propagator) float64 {
	return field.InnerAverage(p.Head(), partner.Tail())
}
