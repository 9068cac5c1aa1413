// solvent.go --  This file is part of goFT project.
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

	"gonum.org/v1/gonum/floats"

	"example.com/goft/chem"
	"example.com/goft/field"
)

// Solvent is a point-like species. Its concentration is the Boltzmann
// factor exp(-size w) of its monomer potential.
type Solvent struct {
	chem.SolventDescriptor

	backend field.Backend
	cField  field.RField
	q       float64
}

func (s *Solvent) Q() float64           { return s.q }
func (s *Solvent) CField() field.RField { return s.cField }

func (s *Solvent) compute(w field.RField, phiTot float64) {
	c := s.cField
	field.ExpScaled(s.backend, c, w, -s.Size)
	s.q = field.Average(c) / phiTot
	switch s.Ensemble {
	case chem.Closed:
		s.Mu = math.Log(s.Phi / s.q)
	case chem.Open:
		s.Phi = math.Exp(s.Mu) * s.q
	}
	floats.Scale(s.Phi/s.q, c)
}
