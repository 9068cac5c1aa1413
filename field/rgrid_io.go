// rgrid_io.go --  This file is part of goFT project.
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
package field

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Header describes the unit cell and mesh an r-grid field file was
// written for.
type Header struct {
	Lattice    string
	CellParams []float64
	Group      string
	NMonomer   int
	Mesh       Mesh
}

// WriteRGrid writes one column per field, one line per grid point in rank
// order.
func WriteRGrid(w io.Writer, h Header, fields []RField) error {
	if len(fields) != h.NMonomer {
		return errors.Errorf("field: header declares %d monomers, got %d fields", h.NMonomer, len(fields))
	}
	n := h.Mesh.Size()
	for _, f := range fields {
		if len(f) != n {
			return errors.Wrapf(ErrSizeMismatch, "field of length %d on mesh %v", len(f), h.Mesh.Dims)
		}
	}
	group := h.Group
	if group == "" {
		group = "-1"
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "format   1   0\n")
	fmt.Fprintf(bw, "dim\n%11d\n", h.Mesh.Dim())
	fmt.Fprintf(bw, "crystal_system\n%15s\n", h.Lattice)
	fmt.Fprintf(bw, "N_cell_param\n%15d\n", len(h.CellParams))
	fmt.Fprintf(bw, "cell_param\n")
	for _, p := range h.CellParams {
		fmt.Fprintf(bw, "%20.12e", p)
	}
	fmt.Fprintf(bw, "\ngroup_name\n%11s\n", group)
	fmt.Fprintf(bw, "N_monomer\n%11d\n", h.NMonomer)
	fmt.Fprintf(bw, "mesh\n")
	for _, d := range h.Mesh.Dims {
		fmt.Fprintf(bw, "%11d", d)
	}
	fmt.Fprintf(bw, "\n")
	for i := 0; i < n; i++ {
		for _, f := range fields {
			fmt.Fprintf(bw, "%21.13e", f[i])
		}
		fmt.Fprintf(bw, "\n")
	}
	return bw.Flush()
}

// ReadRGrid parses a file written by WriteRGrid.
func ReadRGrid(r io.Reader) (Header, []RField, error) {
	var h Header
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return h, nil, errors.Wrap(err, "field: reading r-grid file")
	}

	dim := 0
	pos := 0
	next := func(key string) ([]string, error) {
		for pos < len(lines) {
			words := strings.Fields(lines[pos])
			pos++
			if len(words) == 0 {
				continue
			}
			if words[0] != key {
				return nil, errors.Errorf("field: expected %q, found %q", key, words[0])
			}
			for pos < len(lines) {
				vals := strings.Fields(lines[pos])
				pos++
				if len(vals) > 0 {
					return vals, nil
				}
			}
		}
		return nil, errors.Errorf("field: missing %q", key)
	}

	for pos < len(lines) && len(strings.Fields(lines[pos])) == 0 {
		pos++
	}
	if pos < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[pos]), "format") {
		pos++
	}
	vals, err := next("dim")
	if err != nil {
		return h, nil, err
	}
	if dim, err = strconv.Atoi(vals[0]); err != nil {
		return h, nil, errors.Wrap(err, "field: dim")
	}
	if vals, err = next("crystal_system"); err != nil {
		return h, nil, err
	}
	h.Lattice = vals[0]
	if vals, err = next("N_cell_param"); err != nil {
		return h, nil, err
	}
	nParam, err := strconv.Atoi(vals[0])
	if err != nil {
		return h, nil, errors.Wrap(err, "field: N_cell_param")
	}
	if vals, err = next("cell_param"); err != nil {
		return h, nil, err
	}
	if len(vals) != nParam {
		return h, nil, errors.Errorf("field: expected %d cell parameters, found %d", nParam, len(vals))
	}
	if h.CellParams, err = parseFloats(vals); err != nil {
		return h, nil, err
	}
	if vals, err = next("group_name"); err != nil {
		return h, nil, err
	}
	h.Group = vals[0]
	if vals, err = next("N_monomer"); err != nil {
		return h, nil, err
	}
	if h.NMonomer, err = strconv.Atoi(vals[0]); err != nil {
		return h, nil, errors.Wrap(err, "field: N_monomer")
	}
	if h.NMonomer < 1 {
		return h, nil, errors.Errorf("field: N_monomer %d", h.NMonomer)
	}
	if vals, err = next("mesh"); err != nil {
		return h, nil, err
	}
	if len(vals) != dim {
		return h, nil, errors.Wrapf(ErrBadMesh, "dim %d but mesh %v", dim, vals)
	}
	dims := make([]int, dim)
	for i, v := range vals {
		if dims[i], err = strconv.Atoi(v); err != nil {
			return h, nil, errors.Wrap(err, "field: mesh")
		}
	}
	if h.Mesh, err = NewMesh(dims...); err != nil {
		return h, nil, err
	}

	fields := NewRFields(h.Mesh, h.NMonomer)
	point := 0
	for ; pos < len(lines) && point < h.Mesh.Size(); pos++ {
		words := strings.Fields(lines[pos])
		if len(words) == 0 {
			continue
		}
		if len(words) != h.NMonomer {
			return h, nil, errors.Errorf("field: line %d has %d values, expected %d", pos+1, len(words), h.NMonomer)
		}
		v, err := parseFloats(words)
		if err != nil {
			return h, nil, errors.Wrapf(err, "field: line %d", pos+1)
		}
		for i := range fields {
			fields[i][point] = v[i]
		}
		point++
	}
	if point != h.Mesh.Size() {
		return h, nil, errors.Errorf("field: found %d grid points, expected %d", point, h.Mesh.Size())
	}
	return h, fields, nil
}

// WriteRGridFile writes fields to fname.
func WriteRGridFile(fname string, h Header, fields []RField) error {
	f, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "field")
	}
	if err := WriteRGrid(f, h, fields); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadRGridFile reads fields from fname.
func ReadRGridFile(fname string) (Header, []RField, error) {
	f, err := os.Open(fname)
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "field")
	}
	defer f.Close()
	return ReadRGrid(f)
}

func parseFloats(words []string) ([]float64, error) {
	res := make([]float64, len(words))
	for i, w := range words {
		v, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "field: cannot parse %q", w)
		}
		res[i] = v
	}
	return res, nil
}
