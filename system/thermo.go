// thermo.go --  This file is part of goFT project.
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
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"example.com/goft/field"
)

// Species is the state of one species after a solve.
type Species struct {
	Phi, Mu float64
}

// Thermo holds the free energy per monomer reference volume and the
// pressure of the last solved state.
type Thermo struct {
	FHelmholtz float64
	FIdeal     float64
	FInter     float64
	Pressure   float64
	Polymers   []Species
	Solvents   []Species
}

// Thermo returns the thermodynamic quantities, computing them if the
// fields changed since the last call.
func (s *System) Thermo() Thermo {
	if !s.hasThermo {
		s.ComputeThermo()
	}
	return s.thermo
}

// ComputeThermo evaluates the free energy of the current w and c, which
// must come from the same Compute.
func (s *System) ComputeThermo() {
	mix := s.mixture
	t := Thermo{
		Polymers: make([]Species, mix.NPolymer()),
		Solvents: make([]Species, mix.NSolvent()),
	}
	chemical := 0.0
	for i := range t.Polymers {
		p := mix.Polymer(i)
		t.Polymers[i] = Species{Phi: p.Phi, Mu: p.Mu}
		t.FIdeal += p.Phi / p.Length() * (p.Mu - 1)
		chemical += p.Mu * p.Phi / p.Length()
	}
	for i := range t.Solvents {
		sv := mix.Solvent(i)
		t.Solvents[i] = Species{Phi: sv.Phi, Mu: sv.Mu}
		t.FIdeal += sv.Phi / sv.Size * (sv.Mu - 1)
		chemical += sv.Mu * sv.Phi / sv.Size
	}
	for i := range s.w {
		t.FIdeal -= field.InnerAverage(s.w[i], s.c[i])
	}

	cPt := make([]float64, len(s.c))
	for k := range s.c[0] {
		for i := range s.c {
			cPt[i] = s.c[i][k]
		}
		t.FInter += s.interaction.FHelmholtz(cPt)
	}
	t.FInter /= float64(len(s.c[0]))

	t.FHelmholtz = t.FIdeal + t.FInter
	t.Pressure = -t.FHelmholtz + chemical
	s.thermo = t
	s.hasThermo = true
}

// WriteThermo writes the free energy, pressure, species state and cell.
func (s *System) WriteThermo(w io.Writer) error {
	t := s.Thermo()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "fHelmholtz %22.13e\n", t.FHelmholtz)
	fmt.Fprintf(bw, "pressure   %22.13e\n", t.Pressure)
	fmt.Fprintf(bw, "fIdeal     %22.13e\n", t.FIdeal)
	fmt.Fprintf(bw, "fInter     %22.13e\n", t.FInter)
	if len(t.Polymers) > 0 {
		fmt.Fprintf(bw, "\npolymers:\n    %-5s%22s%22s\n", "", "phi", "mu")
		for i, sp := range t.Polymers {
			fmt.Fprintf(bw, "    %-5d%22.13e%22.13e\n", i, sp.Phi, sp.Mu)
		}
	}
	if len(t.Solvents) > 0 {
		fmt.Fprintf(bw, "\nsolvents:\n    %-5s%22s%22s\n", "", "phi", "mu")
		for i, sp := range t.Solvents {
			fmt.Fprintf(bw, "    %-5d%22.13e%22.13e\n", i, sp.Phi, sp.Mu)
		}
	}
	fmt.Fprintf(bw, "\ncellParams:\n")
	for i, p := range s.domain.cell.Parameters() {
		fmt.Fprintf(bw, "    %-5d%22.13e\n", i, p)
	}
	return bw.Flush()
}

// WriteThermoFile writes the thermodynamic report to fname.
func (s *System) WriteThermoFile(fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "system")
	}
	if err := s.WriteThermo(f); err != nil {
		f.Close()
		return errors.Wrap(err, fname)
	}
	return f.Close()
}
