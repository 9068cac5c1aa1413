// helper.go --  This file is part of goFT project.
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
package main

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"example.com/goft/logs"
)

func readFileLines(fname string) ([]string, error) {
	var result []string

	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, scanner.Err()
}

// echoFile copies an input file into the output log between delimiters.
func echoFile(title, fname string) error {
	lines, err := readFileLines(fname)
	if err != nil {
		return err
	}
	logs.OutputLogger.Println(title)
	logs.Delimiter()
	for _, l := range lines {
		logs.OutputLogger.Println(l)
	}
	logs.Delimiter()
	return nil
}

// outputName replaces the extension of the parameter file name by "out".
func outputName(paramFname string) string {
	return strings.TrimSuffix(paramFname, filepath.Ext(paramFname)) + ".out"
}

func memoryReport() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	logs.OutputLogger.Printf("Alloc: %d bytes", memStats.Alloc)
	logs.OutputLogger.Printf("TotalAlloc: %d bytes", memStats.TotalAlloc)
	logs.OutputLogger.Printf("HeapAlloc: %d bytes", memStats.HeapAlloc)
	logs.OutputLogger.Printf("HeapSys: %d bytes", memStats.HeapSys)
}
