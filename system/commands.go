// commands.go --  This file is part of goFT project.
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
	stderrors "errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"example.com/goft/logs"
)

// ErrCommand is returned for a malformed command script.
var ErrCommand = stderrors.New("system: bad command")

// commandArgs is the number of arguments of each command; -1 means one or
// more.
var commandArgs = map[string]int{
	"READ_W_RGRID":  1,
	"WRITE_W_RGRID": 1,
	"WRITE_C_RGRID": 1,
	"SET_UNIT_CELL": -1,
	"ITERATE":       0,
	"WRITE_THERMO":  1,
	"WRITE_C_PLOT":  1,
	"SWEEP":         0,
	"SIMULATE":      1,
	"FINISH":        0,
}

// Commands returns the command keywords in alphabetical order.
func Commands() []string {
	keys := make([]string, 0, len(commandArgs))
	for k := range commandArgs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ReadCommands runs the command script fname.
func (s *System) ReadCommands(fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return errors.Wrap(err, "system")
	}
	defer f.Close()
	return s.RunCommands(f)
}

// RunCommands runs commands from r, one per line, until FINISH or the end
// of input. Text after '#' is ignored. The first failing command stops the
// script.
func (s *System) RunCommands(r io.Reader) error {
	keywords := Commands()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}
		key := strings.ToUpper(words[0])
		if !slices.Contains(keywords, key) {
			return errors.Wrapf(ErrCommand, "line %d: unknown command %q", line, words[0])
		}
		args := words[1:]
		if n := commandArgs[key]; (n >= 0 && len(args) != n) || (n < 0 && len(args) == 0) {
			return errors.Wrapf(ErrCommand, "line %d: %s takes %s arguments, got %d", line, key, argCount(n), len(args))
		}

		logs.Delimiter()
		logs.OutputLogger.Println("Command: ", strings.Join(words, " "))
		if key == "FINISH" {
			return nil
		}
		if err := s.runCommand(key, args); err != nil {
			return errors.Wrapf(err, "line %d: %s", line, key)
		}
	}
	return scanner.Err()
}

func argCount(n int) string {
	if n < 0 {
		return "1 or more"
	}
	return strconv.Itoa(n)
}

func (s *System) runCommand(key string, args []string) error {
	switch key {
	case "READ_W_RGRID":
		return s.ReadW(args[0])
	case "WRITE_W_RGRID":
		return s.WriteW(args[0])
	case "WRITE_C_RGRID":
		return s.WriteC(args[0])
	case "SET_UNIT_CELL":
		params := make([]float64, len(args))
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return errors.Wrapf(ErrCommand, "cell parameter %q", a)
			}
			params[i] = v
		}
		return s.SetUnitCell(params)
	case "ITERATE":
		return s.Iterate()
	case "WRITE_THERMO":
		return s.WriteThermoFile(args[0])
	case "WRITE_C_PLOT":
		return s.WriteCPlot(args[0])
	case "SWEEP":
		return s.Sweep(s.params.Sweep)
	case "SIMULATE":
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return errors.Wrapf(ErrCommand, "step count %q", args[0])
		}
		_, err = s.Simulate(n)
		return err
	}
	return errors.Wrapf(ErrCommand, "no handler for %s", key)
}
