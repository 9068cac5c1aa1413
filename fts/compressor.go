// compressor.go --  This file is part of goFT project.
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
package fts

// compressorState is the incompressibility problem Σ_i c_i = 1 with W+ as
// unknown and W- held fixed.
type compressorState struct {
	sim *Simulator
}

func (cs *compressorState) NElements() int { return len(cs.sim.wPlus) }

func (cs *compressorState) Current(x []float64) { copy(x, cs.sim.wPlus) }

func (cs *compressorState) Evaluate() { cs.sim.sys.Compute(false) }

func (cs *compressorState) Residual(r []float64) {
	c := cs.sim.sys.C()
	for i := range r {
		r[i] = c[0][i] + c[1][i] - 1
	}
}

func (cs *compressorState) Update(x []float64) {
	copy(cs.sim.wPlus, x)
	cs.sim.joinFields()
}
