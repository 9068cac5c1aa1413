// plot.go --  This file is part of goFT project.
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
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg" // png, jpg and tiff canvases
)

// concentrationProfiles returns c_i along the first lattice vector through
// the origin, one XY set per monomer type.
func (s *System) concentrationProfiles() []plotter.XYs {
	m := s.domain.mesh
	n := m.Dims[0]
	a := floats.Norm(s.domain.cell.RBasis(0), 2)
	pos := make([]int, m.Dim())
	res := make([]plotter.XYs, len(s.c))
	for i := range res {
		res[i] = make(plotter.XYs, n+1)
	}
	for j := 0; j <= n; j++ {
		pos[0] = j % n
		rank := m.Rank(pos)
		for i, c := range s.c {
			res[i][j].X = a * float64(j) / float64(n)
			res[i][j].Y = c[rank]
		}
	}
	return res
}

// WriteCPlot plots the concentration profiles along the first lattice
// vector. The image format follows the extension of fname.
func (s *System) WriteCPlot(fname string) error {
	p := plot.New()
	p.Title.Text = "Monomer concentrations"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "c"

	var lines []interface{}
	for i, xy := range s.concentrationProfiles() {
		name := s.mixture.Monomer(i).Name
		if name == "" {
			name = fmt.Sprintf("monomer %d", i)
		}
		lines = append(lines, name, xy)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return errors.Wrap(err, "system: plot")
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return errors.Wrap(err, "system: plot")
	}
	return nil
}
