// logs.go --  This file is part of goFT project.
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

// Package logs holds the program-wide loggers. Until Init is called every
// logger discards its output, so library code may log unconditionally.
package logs

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
)

var (
	WarningLogger = log.New(io.Discard, "WARNING: ", log.Ldate|log.Ltime)
	InfoLogger    = log.New(io.Discard, "INFO: ", log.Ldate|log.Ltime)
	ErrorLogger   = log.New(io.Discard, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	OutputLogger  = log.New(io.Discard, "", 0)
)

// Init directs all loggers to fname, opened in append mode.
func Init(fname string) (io.Closer, error) {
	file, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open log file %s", fname)
	}
	SetOutput(file)
	return file, nil
}

// SetOutput directs all loggers to w.
func SetOutput(w io.Writer) {
	InfoLogger.SetOutput(w)
	WarningLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
	OutputLogger.SetOutput(w)
}

// Delimiter writes a separator line to the output log.
func Delimiter() {
	OutputLogger.Println(strings.Repeat("-", 70))
}
