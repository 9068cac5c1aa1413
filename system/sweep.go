// sweep.go --  This file is part of goFT project.
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
	"time"

	"github.com/pkg/errors"

	"example.com/goft/config"
	"example.com/goft/field"
	"example.com/goft/logs"
)

// Sweep moves the χ elements of sw linearly from their current values to
// their end values in sw.NStep steps, solving at every state point from
// the previous solution. A failed step is retried from the last solution
// with half the step, at most sw.MaxHalvings times in a row.
func (s *System) Sweep(sw config.Sweep) error {
	if sw.NStep <= 0 || len(sw.Chi) == 0 {
		return errors.New("system: sweep needs nStep > 0 and at least one chi element")
	}
	start := make([]float64, len(sw.Chi))
	for k, c := range sw.Chi {
		start[k] = s.interaction.Chi(c.I, c.J)
	}
	setChi := func(t float64) error {
		for k, c := range sw.Chi {
			if err := s.interaction.SetChi(c.I, c.J, start[k]+t*(c.End-start[k])); err != nil {
				return err
			}
		}
		return nil
	}

	tstart := time.Now()
	savedW := field.NewRFields(s.domain.mesh, len(s.w))
	t, dt := 0.0, 1/float64(sw.NStep)
	halvings, step := 0, 0
	for t < 1-1e-12 {
		tNext := t + dt
		if tNext > 1 {
			tNext = 1
		}
		field.CopyFields(savedW, s.w)
		savedCell := s.domain.cell.Parameters()

		if err := setChi(tNext); err != nil {
			return errors.Wrapf(err, "sweep at s = %g", tNext)
		}
		logs.Delimiter()
		logs.OutputLogger.Printf("Sweep step %d. s = %.8f", step+1, tNext)
		err := s.Iterate()
		if err != nil {
			if !errors.Is(err, ErrNotConverged) {
				return err
			}
			field.CopyFields(s.w, savedW)
			if err := s.SetUnitCell(savedCell); err != nil {
				return err
			}
			if err := setChi(t); err != nil {
				return err
			}
			halvings++
			if halvings > sw.MaxHalvings {
				s.Compute(false)
				return errors.Wrapf(err, "sweep stopped at s = %g after %d halvings", t, sw.MaxHalvings)
			}
			dt /= 2
			logs.WarningLogger.Printf("Sweep step at s = %g failed, step halved to %g", tNext, dt)
			continue
		}

		halvings = 0
		t = tNext
		step++
		if sw.OutputPrefix != "" {
			if err := s.writeSweepState(sw.OutputPrefix, step); err != nil {
				return err
			}
		}
	}
	logs.OutputLogger.Printf("Sweep finished: %d steps, %v", step, time.Since(tstart))
	return nil
}

func (s *System) writeSweepState(prefix string, step int) error {
	if err := s.WriteW(fmt.Sprintf("%s%d.w.rf", prefix, step)); err != nil {
		return err
	}
	if err := s.WriteC(fmt.Sprintf("%s%d.c.rf", prefix, step)); err != nil {
		return err
	}
	return s.WriteThermoFile(fmt.Sprintf("%s%d.thermo", prefix, step))
}
