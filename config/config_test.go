package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/goft/chem"
	"example.com/goft/config"
	"example.com/goft/iterator"
)

const diblock = `
[mixture]
model = "thread"
ds = 0.02

  [[mixture.monomers]]
  name = "A"
  kuhn = 1.0

  [[mixture.monomers]]
  name = "B"
  kuhn = 1.0

  [[mixture.polymers]]
  phi = 1.0

    [[mixture.polymers.blocks]]
    monomer = 0
    length = 0.5

    [[mixture.polymers.blocks]]
    monomer = 1
    length = 0.5

[interaction]
chi = [[0.0, 12.0], [12.0, 0.0]]

[domain]
mesh = [32]
lattice = "lamellar"
cellParams = [1.4]

[iterator]
epsilon = 1e-7
errorType = "rms"
lambdaRamp = false
isFlexible = true

[sweep]
nStep = 4

  [[sweep.chi]]
  i = 0
  j = 1
  end = 14.0
`

func TestDecodeDiblock(t *testing.T) {
	p, err := config.Decode(strings.NewReader(diblock))
	require.NoError(t, err)

	d, err := p.MixtureDescriptor()
	require.NoError(t, err)
	assert.Equal(t, chem.Thread, d.Model)
	assert.Equal(t, 0.02, d.Ds)
	require.Len(t, d.Polymers, 1)
	assert.Equal(t, chem.Linear, d.Polymers[0].Type)
	assert.Equal(t, chem.Closed, d.Polymers[0].Ensemble)
	assert.Equal(t, 0.5, d.Polymers[0].Blocks[1].Length)
	assert.Equal(t, 1, d.Polymers[0].Blocks[1].MonomerID)

	ip, err := p.IteratorParams()
	require.NoError(t, err)
	assert.Equal(t, iterator.RMSError, ip.ErrorType)
	assert.False(t, ip.UseLambdaRamp)
	assert.Equal(t, 1e-7, ip.Epsilon)
	assert.Equal(t, iterator.DefaultParams().MaxItr, ip.MaxItr)

	assert.Equal(t, []bool{true}, p.Flexible(1))
	assert.Equal(t, 1.0, p.Domain.PhiTot)
	assert.Equal(t, 4, p.Sweep.MaxHalvings)
	assert.Equal(t, []config.ChiStep{{I: 0, J: 1, End: 14}}, p.Sweep.Chi)
}

func TestLoad(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "param.toml")
	require.NoError(t, os.WriteFile(fname, []byte(diblock), 0644))
	p, err := config.Load(fname)
	require.NoError(t, err)
	assert.Equal(t, []int{32}, p.Domain.Mesh)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestInvalidParameters(t *testing.T) {
	for name, tc := range map[string]struct{ old, new string }{
		"chi rows":   {`chi = [[0.0, 12.0], [12.0, 0.0]]`, `chi = [[0.0, 12.0]]`},
		"model":      {`model = "thread"`, `model = "worm"`},
		"error type": {`errorType = "rms"`, `errorType = "l7"`},
		"sweep pair": {`j = 1`, `j = 3`},
		"syntax":     {`[domain]`, `[domain`},
		"no mesh":    {`mesh = [32]`, ``},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Decode(strings.NewReader(strings.Replace(diblock, tc.old, tc.new, 1)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrConfig))
		})
	}
}
