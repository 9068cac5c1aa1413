// domain.go --  This file is part of goFT project.
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
	"example.com/goft/config"
	"example.com/goft/field"
	"example.com/goft/unitcell"
)

// Domain is the spatial part of a calculation: the mesh, the periodic
// unit cell, its wave list and the backend that transforms on the mesh.
type Domain struct {
	mesh    field.Mesh
	cell    *unitcell.UnitCell
	waves   *unitcell.WaveList
	backend *field.CPU
}

// NewDomain builds a domain from the [domain] section.
func NewDomain(d config.Domain) (*Domain, error) {
	mesh, err := field.NewMesh(d.Mesh...)
	if err != nil {
		return nil, err
	}
	cell, err := unitcell.New(mesh.Dim(), d.Lattice, d.CellParams)
	if err != nil {
		return nil, err
	}
	waves, err := unitcell.NewWaveList(mesh, cell)
	if err != nil {
		return nil, err
	}
	backend, err := field.NewCPU(mesh, field.Config{Threads: d.Threads})
	if err != nil {
		return nil, err
	}
	return &Domain{mesh: mesh, cell: cell, waves: waves, backend: backend}, nil
}

func (d *Domain) Mesh() field.Mesh             { return d.mesh }
func (d *Domain) UnitCell() *unitcell.UnitCell { return d.cell }
func (d *Domain) WaveList() *unitcell.WaveList { return d.waves }
func (d *Domain) Backend() field.Backend       { return d.backend }

// header describes the domain in an r-grid file.
func (d *Domain) header(nMonomer int) field.Header {
	return field.Header{
		Lattice:    d.cell.Lattice(),
		CellParams: d.cell.Parameters(),
		NMonomer:   nMonomer,
		Mesh:       d.mesh,
	}
}
