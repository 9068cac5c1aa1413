// config.go --  This file is part of goFT project.
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

// Package config reads the TOML parameter file of a calculation.
package config

import (
	stderrors "errors"
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"example.com/goft/chem"
	"example.com/goft/iterator"
	"example.com/goft/solver"
)

// ErrConfig is returned for a parameter file that cannot describe a
// calculation.
var ErrConfig = stderrors.New("config: invalid parameters")

type Monomer struct {
	Name string  `toml:"name"`
	Kuhn float64 `toml:"kuhn"`
}

// Block is one block of a polymer. Vertices are required for branched
// polymers only.
type Block struct {
	Monomer  int     `toml:"monomer"`
	Length   float64 `toml:"length"`
	Vertices []int   `toml:"vertices"`
}

type Polymer struct {
	Type     string  `toml:"type"`
	Ensemble string  `toml:"ensemble"`
	Phi      float64 `toml:"phi"`
	Mu       float64 `toml:"mu"`
	Blocks   []Block `toml:"blocks"`
}

type Solvent struct {
	Monomer  int     `toml:"monomer"`
	Size     float64 `toml:"size"`
	Ensemble string  `toml:"ensemble"`
	Phi      float64 `toml:"phi"`
	Mu       float64 `toml:"mu"`
}

type Mixture struct {
	Model      string    `toml:"model"`
	Ds         float64   `toml:"ds"`
	VMonomer   float64   `toml:"vMonomer"`
	Richardson bool      `toml:"richardson"`
	Concurrent bool      `toml:"concurrent"`
	Monomers   []Monomer `toml:"monomers"`
	Polymers   []Polymer `toml:"polymers"`
	Solvents   []Solvent `toml:"solvents"`
}

type Interaction struct {
	Chi [][]float64 `toml:"chi"`
}

type Domain struct {
	Mesh       []int     `toml:"mesh"`
	Lattice    string    `toml:"lattice"`
	CellParams []float64 `toml:"cellParams"`
	Threads    int       `toml:"threads"`
	PhiTot     float64   `toml:"phiTot"`
}

type Iterator struct {
	MaxItr       int     `toml:"maxItr"`
	MaxHist      int     `toml:"maxHist"`
	Epsilon      float64 `toml:"epsilon"`
	ErrorType    string  `toml:"errorType"`
	Lambda       float64 `toml:"lambda"`
	LambdaRamp   *bool   `toml:"lambdaRamp"`
	MaxCondition float64 `toml:"maxCondition"`
	Verbose      *int    `toml:"verbose"`

	// IsFlexible adds the cell parameters to the unknowns. FlexibleParams
	// selects a subset; empty means all.
	IsFlexible     bool    `toml:"isFlexible"`
	FlexibleParams []bool  `toml:"flexibleParams"`
	ScaleStress    float64 `toml:"scaleStress"`
}

// ChiStep is the end value of one χ element on a sweep path.
type ChiStep struct {
	I   int     `toml:"i"`
	J   int     `toml:"j"`
	End float64 `toml:"end"`
}

type Sweep struct {
	NStep        int       `toml:"nStep"`
	MaxHalvings  int       `toml:"maxHalvings"`
	OutputPrefix string    `toml:"outputPrefix"`
	Chi          []ChiStep `toml:"chi"`
}

type Simulator struct {
	Seed     uint64  `toml:"seed"`
	StepSize float64 `toml:"stepSize"`
	Epsilon  float64 `toml:"epsilon"`
	MaxItr   int     `toml:"maxItr"`
}

// Params is the whole parameter file.
type Params struct {
	Mixture     Mixture     `toml:"mixture"`
	Interaction Interaction `toml:"interaction"`
	Domain      Domain      `toml:"domain"`
	Iterator    Iterator    `toml:"iterator"`
	Sweep       Sweep       `toml:"sweep"`
	Simulator   Simulator   `toml:"simulator"`
}

// Load reads and validates the parameter file fname.
func Load(fname string) (*Params, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", fname)
	}
	return p, nil
}

// Decode reads parameters from r, fills defaults and validates them.
func Decode(r io.Reader) (*Params, error) {
	var p Params
	if err := toml.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrapf(ErrConfig, "%v", err)
	}
	p.setDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Params) setDefaults() {
	m := &p.Mixture
	if m.Model == "" {
		m.Model = "thread"
	}
	if m.Ds == 0 {
		m.Ds = 0.01
	}
	if m.VMonomer == 0 {
		m.VMonomer = 1
	}
	for i := range m.Polymers {
		if m.Polymers[i].Type == "" {
			m.Polymers[i].Type = "linear"
		}
		if m.Polymers[i].Ensemble == "" {
			m.Polymers[i].Ensemble = "closed"
		}
	}
	for i := range m.Solvents {
		if m.Solvents[i].Ensemble == "" {
			m.Solvents[i].Ensemble = "closed"
		}
		if m.Solvents[i].Size == 0 {
			m.Solvents[i].Size = 1
		}
	}
	if p.Domain.PhiTot == 0 {
		p.Domain.PhiTot = 1
	}

	def := iterator.DefaultParams()
	it := &p.Iterator
	if it.MaxItr == 0 {
		it.MaxItr = def.MaxItr
	}
	if it.MaxHist == 0 {
		it.MaxHist = def.MaxHist
	}
	if it.Epsilon == 0 {
		it.Epsilon = def.Epsilon
	}
	if it.ErrorType == "" {
		it.ErrorType = def.ErrorType.String()
	}
	if it.Lambda == 0 {
		it.Lambda = def.Lambda
	}
	if it.LambdaRamp == nil {
		it.LambdaRamp = &def.UseLambdaRamp
	}
	if it.MaxCondition == 0 {
		it.MaxCondition = def.MaxCondition
	}
	if it.Verbose == nil {
		it.Verbose = &def.Verbose
	}
	if it.ScaleStress == 0 {
		it.ScaleStress = 10
	}

	if p.Sweep.MaxHalvings == 0 {
		p.Sweep.MaxHalvings = 4
	}
	if p.Simulator.StepSize == 0 {
		p.Simulator.StepSize = 0.1
	}
	if p.Simulator.Epsilon == 0 {
		p.Simulator.Epsilon = 1e-6
	}
	if p.Simulator.MaxItr == 0 {
		p.Simulator.MaxItr = 200
	}
}

// Validate checks the parts of the file that are not checked by the
// packages they configure.
func (p *Params) Validate() error {
	nMonomer := len(p.Mixture.Monomers)
	if nMonomer == 0 {
		return errors.Wrap(ErrConfig, "no monomers")
	}
	if len(p.Interaction.Chi) != nMonomer {
		return errors.Wrapf(ErrConfig, "chi has %d rows for %d monomers", len(p.Interaction.Chi), nMonomer)
	}
	if len(p.Domain.Mesh) == 0 || p.Domain.Lattice == "" {
		return errors.Wrap(ErrConfig, "domain needs mesh and lattice")
	}
	if !(p.Domain.PhiTot > 0 && p.Domain.PhiTot <= 1) {
		return errors.Wrapf(ErrConfig, "phiTot %g", p.Domain.PhiTot)
	}
	if p.Iterator.IsFlexible && len(p.Iterator.FlexibleParams) > 0 &&
		len(p.Iterator.FlexibleParams) != len(p.Domain.CellParams) {
		return errors.Wrapf(ErrConfig, "%d flexible flags for %d cell parameters",
			len(p.Iterator.FlexibleParams), len(p.Domain.CellParams))
	}
	for k, s := range p.Sweep.Chi {
		if s.I < 0 || s.J < 0 || s.I >= nMonomer || s.J >= nMonomer {
			return errors.Wrapf(ErrConfig, "sweep chi %d: indices (%d,%d)", k, s.I, s.J)
		}
	}
	if p.Sweep.NStep < 0 || p.Sweep.MaxHalvings < 0 {
		return errors.Wrapf(ErrConfig, "sweep nStep %d maxHalvings %d", p.Sweep.NStep, p.Sweep.MaxHalvings)
	}
	if _, err := p.MixtureDescriptor(); err != nil {
		return err
	}
	if _, err := p.IteratorParams(); err != nil {
		return err
	}
	return nil
}

// MixtureDescriptor converts the [mixture] section.
func (p *Params) MixtureDescriptor() (solver.Descriptor, error) {
	m := p.Mixture
	d := solver.Descriptor{
		Ds:         m.Ds,
		VMonomer:   m.VMonomer,
		Richardson: m.Richardson,
		Concurrent: m.Concurrent,
	}
	var err error
	if d.Model, err = chem.ParsePolymerModel(m.Model); err != nil {
		return d, errors.Wrap(ErrConfig, err.Error())
	}
	for i, mon := range m.Monomers {
		d.Monomers = append(d.Monomers, chem.Monomer{ID: i, Kuhn: mon.Kuhn, Name: mon.Name})
	}
	for i, poly := range m.Polymers {
		pd := chem.PolymerDescriptor{
			SpeciesDescriptor: chem.SpeciesDescriptor{Phi: poly.Phi, Mu: poly.Mu},
		}
		if pd.Type, err = chem.ParsePolymerType(poly.Type); err != nil {
			return d, errors.Wrapf(ErrConfig, "polymer %d: %v", i, err)
		}
		if pd.Ensemble, err = chem.ParseEnsemble(poly.Ensemble); err != nil {
			return d, errors.Wrapf(ErrConfig, "polymer %d: %v", i, err)
		}
		for j, b := range poly.Blocks {
			e := chem.Edge{ID: j, MonomerID: b.Monomer, Length: b.Length}
			if pd.Type == chem.Branched {
				if len(b.Vertices) != 2 {
					return d, errors.Wrapf(ErrConfig, "polymer %d block %d: branched blocks need two vertices", i, j)
				}
				e.Vertices = [2]int{b.Vertices[0], b.Vertices[1]}
			}
			pd.Blocks = append(pd.Blocks, e)
		}
		d.Polymers = append(d.Polymers, pd)
	}
	for i, s := range m.Solvents {
		sd := chem.SolventDescriptor{
			MonomerID:         s.Monomer,
			Size:              s.Size,
			SpeciesDescriptor: chem.SpeciesDescriptor{Phi: s.Phi, Mu: s.Mu},
		}
		if sd.Ensemble, err = chem.ParseEnsemble(s.Ensemble); err != nil {
			return d, errors.Wrapf(ErrConfig, "solvent %d: %v", i, err)
		}
		d.Solvents = append(d.Solvents, sd)
	}
	return d, nil
}

// IteratorParams converts the [iterator] section.
func (p *Params) IteratorParams() (iterator.Params, error) {
	it := p.Iterator
	ip := iterator.DefaultParams()
	ip.MaxItr = it.MaxItr
	ip.MaxHist = it.MaxHist
	ip.Epsilon = it.Epsilon
	ip.Lambda = it.Lambda
	ip.MaxCondition = it.MaxCondition
	if it.LambdaRamp != nil {
		ip.UseLambdaRamp = *it.LambdaRamp
	}
	if it.Verbose != nil {
		ip.Verbose = *it.Verbose
	}
	var err error
	if ip.ErrorType, err = iterator.ParseErrorType(it.ErrorType); err != nil {
		return ip, errors.Wrap(ErrConfig, err.Error())
	}
	if err := ip.Validate(); err != nil {
		return ip, errors.Wrap(ErrConfig, err.Error())
	}
	return ip, nil
}

// Flexible returns, per cell parameter, whether it is an unknown.
func (p *Params) Flexible(nParam int) []bool {
	flex := make([]bool, nParam)
	if !p.Iterator.IsFlexible {
		return flex
	}
	for i := range flex {
		flex[i] = len(p.Iterator.FlexibleParams) == 0 || p.Iterator.FlexibleParams[i]
	}
	return flex
}
