// species.go --  This file is part of goFT project.
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

// Package chem holds the chemical description of a mixture: monomer
// types, block descriptors and the topology of block copolymers.
package chem

import (
	stderrors "errors"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	// ErrTopology is returned for a block graph that is not a tree or
	// refers to missing vertices.
	ErrTopology = stderrors.New("chem: invalid polymer topology")

	// ErrDescriptor is returned for an invalid monomer, block or species
	// description.
	ErrDescriptor = stderrors.New("chem: invalid descriptor")
)

// Monomer is a monomer type.
type Monomer struct {
	ID   int
	Kuhn float64 // statistical segment length
	Name string
}

// Ensemble tells which of φ and μ is prescribed for a species.
type Ensemble int

const (
	// Closed species have a prescribed volume fraction φ.
	Closed Ensemble = iota
	// Open species have a prescribed chemical potential μ.
	Open
)

var ensembleNames = []string{"closed", "open"}

func (e Ensemble) String() string { return ensembleNames[e] }

// ParseEnsemble parses "closed" or "open".
func ParseEnsemble(s string) (Ensemble, error) {
	i := slices.Index(ensembleNames, strings.ToLower(s))
	if i < 0 {
		return 0, errors.Wrapf(ErrDescriptor, "ensemble %q", s)
	}
	return Ensemble(i), nil
}

// PolymerType distinguishes chains with implied vertex ids from general
// branched polymers.
type PolymerType int

const (
	Linear PolymerType = iota
	Branched
)

var polymerTypeNames = []string{"linear", "branched"}

func (t PolymerType) String() string { return polymerTypeNames[t] }

// ParsePolymerType parses "linear" or "branched".
func ParsePolymerType(s string) (PolymerType, error) {
	i := slices.Index(polymerTypeNames, strings.ToLower(s))
	if i < 0 {
		return 0, errors.Wrapf(ErrDescriptor, "polymer type %q", s)
	}
	return PolymerType(i), nil
}

// PolymerModel selects the contour discretization.
//
// In the thread model a block is a continuous contour of length L solved
// with ns (odd) contour points. In the bead model a block is a sequence of
// round(L) beads joined by bonds, and vertices are points joined to their
// adjacent beads by half bonds.
type PolymerModel int

const (
	Thread PolymerModel = iota
	Bead
)

var polymerModelNames = []string{"thread", "bead"}

func (m PolymerModel) String() string { return polymerModelNames[m] }

// ParsePolymerModel parses "thread" or "bead".
func ParsePolymerModel(s string) (PolymerModel, error) {
	i := slices.Index(polymerModelNames, strings.ToLower(s))
	if i < 0 {
		return 0, errors.Wrapf(ErrDescriptor, "polymer model %q", s)
	}
	return PolymerModel(i), nil
}

// Edge is a block descriptor: a run of one monomer type joining two
// vertices of the block graph.
type Edge struct {
	ID        int
	MonomerID int
	Length    float64
	Vertices  [2]int
}

// SpeciesDescriptor holds the prescribed thermodynamic quantity of a
// species: Phi for closed species, Mu for open ones.
type SpeciesDescriptor struct {
	Ensemble Ensemble
	Phi      float64
	Mu       float64
}

// PolymerDescriptor describes one polymer species.
type PolymerDescriptor struct {
	Type   PolymerType
	Blocks []Edge
	SpeciesDescriptor
}

// SolventDescriptor describes a point-like solvent species.
type SolventDescriptor struct {
	MonomerID int
	Size      float64
	SpeciesDescriptor
}

// Validate checks the block lengths, monomer ids and, for linear
// polymers, assigns the implied vertex ids.
func (p *PolymerDescriptor) Validate(nMonomer int) error {
	if len(p.Blocks) == 0 {
		return errors.Wrap(ErrDescriptor, "polymer without blocks")
	}
	if err := p.SpeciesDescriptor.validate(); err != nil {
		return err
	}
	for i := range p.Blocks {
		b := &p.Blocks[i]
		b.ID = i
		if b.MonomerID < 0 || b.MonomerID >= nMonomer {
			return errors.Wrapf(ErrDescriptor, "block %d: monomer id %d out of range", i, b.MonomerID)
		}
		if !(b.Length > 0) {
			return errors.Wrapf(ErrDescriptor, "block %d: length %g", i, b.Length)
		}
		if p.Type == Linear {
			b.Vertices = [2]int{i, i + 1}
		}
	}
	return nil
}

// Length returns the total number of monomers per chain.
func (p *PolymerDescriptor) Length() float64 {
	l := 0.0
	for _, b := range p.Blocks {
		l += b.Length
	}
	return l
}

// Validate checks a solvent description.
func (s *SolventDescriptor) Validate(nMonomer int) error {
	if s.MonomerID < 0 || s.MonomerID >= nMonomer {
		return errors.Wrapf(ErrDescriptor, "solvent monomer id %d out of range", s.MonomerID)
	}
	if !(s.Size > 0) {
		return errors.Wrapf(ErrDescriptor, "solvent size %g", s.Size)
	}
	return s.SpeciesDescriptor.validate()
}

func (s *SpeciesDescriptor) validate() error {
	if s.Ensemble == Closed && (s.Phi < 0 || s.Phi > 1) {
		return errors.Wrapf(ErrDescriptor, "volume fraction %g", s.Phi)
	}
	return nil
}
