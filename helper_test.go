package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/goft/config"
)

func TestOutputName(t *testing.T) {
	assert.Equal(t, "run/param.out", outputName("run/param.toml"))
	assert.Equal(t, "param.out", outputName("param"))
	assert.Equal(t, "a.b.out", outputName("a.b.toml"))
}

func TestReadFileLines(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "commands")
	require.NoError(t, os.WriteFile(fname, []byte("ITERATE\n\nFINISH\n"), 0644))
	lines, err := readFileLines(fname)
	require.NoError(t, err)
	assert.Equal(t, []string{"ITERATE", "", "FINISH"}, lines)

	_, err = readFileLines(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestExampleParameterFiles(t *testing.T) {
	for _, f := range []string{"examples/lamellar/param.toml", "examples/fts/param.toml"} {
		_, err := config.Load(f)
		assert.NoError(t, err, f)
	}
}
