// scft.go --  This file is part of goFT project.
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
package system

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"example.com/goft/field"
	"example.com/goft/logs"
)

// scftState presents the SCFT equations to the Anderson mixer. The unknowns
// are all potential grids followed by the flexible cell parameters.
type scftState struct {
	sys         *System
	nMonomer    int
	meshSize    int
	nFlex       int
	scaleStress float64

	// per-point scratch
	cPt, wPt, rPt []float64
}

func newSCFTState(s *System, scaleStress float64) *scftState {
	st := &scftState{
		sys:         s,
		nMonomer:    len(s.w),
		meshSize:    s.domain.mesh.Size(),
		scaleStress: scaleStress,
	}
	for _, f := range s.flexible {
		if f {
			st.nFlex++
		}
	}
	st.cPt = make([]float64, st.nMonomer)
	st.wPt = make([]float64, st.nMonomer)
	st.rPt = make([]float64, st.nMonomer)
	return st
}

func (st *scftState) NElements() int { return st.nMonomer*st.meshSize + st.nFlex }

func (st *scftState) Current(x []float64) {
	for i, w := range st.sys.w {
		copy(x[i*st.meshSize:], w)
	}
	off := st.nMonomer * st.meshSize
	for n, p := range st.sys.domain.cell.Parameters() {
		if st.sys.flexible[n] {
			x[off] = p
			off++
		}
	}
}

func (st *scftState) Evaluate() { st.sys.Compute(st.nFlex > 0) }

// Residual fills r_i = Σ_j (χ_ij c_j - P_ij w_j) - shift at every point and
// appends the scaled stress of the flexible parameters. For a canonical
// mixture each monomer block of r has its average removed.
func (st *scftState) Residual(r []float64) {
	sys := st.sys
	shift := 0.0
	canonical := sys.mixture.IsCanonical()
	if !canonical {
		shift = 1 / sys.interaction.SumChiInverse()
	}
	ms := st.meshSize
	for k := 0; k < ms; k++ {
		for i := 0; i < st.nMonomer; i++ {
			st.cPt[i] = sys.c[i][k]
			st.wPt[i] = sys.w[i][k]
		}
		sys.interaction.Residual(st.cPt, st.wPt, shift, st.rPt)
		for i, v := range st.rPt {
			r[i*ms+k] = v
		}
	}
	if canonical {
		for i := 0; i < st.nMonomer; i++ {
			field.SubtractAverage(r[i*ms : (i+1)*ms])
		}
	}

	off := st.nMonomer * ms
	stress := sys.mixture.Stress()
	for n, f := range sys.flexible {
		if f {
			r[off] = -st.scaleStress * stress[n]
			off++
		}
	}
}

// Update copies x into the potentials and cell. For a canonical mixture the
// homogeneous part of each w_i is reset to Σ_j χ_ij <c_j>.
func (st *scftState) Update(x []float64) {
	sys := st.sys
	ms := st.meshSize
	for i, w := range sys.w {
		copy(w, x[i*ms:(i+1)*ms])
	}
	if sys.mixture.IsCanonical() {
		for i := 0; i < st.nMonomer; i++ {
			st.cPt[i] = stat.Mean(sys.c[i], nil)
		}
		for i, w := range sys.w {
			target := 0.0
			for j := range st.cPt {
				target += sys.interaction.Chi(i, j) * st.cPt[j]
			}
			floats.AddConst(target-stat.Mean(w, nil), w)
		}
	}
	if st.nFlex > 0 {
		params := sys.domain.cell.Parameters()
		off := st.nMonomer * ms
		for n, f := range sys.flexible {
			if f {
				params[n] = x[off]
				off++
			}
		}
		if err := sys.domain.cell.SetParameters(params); err != nil {
			logs.WarningLogger.Println("Cell update rejected: ", err)
		}
	}
}
