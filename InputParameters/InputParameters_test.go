package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gocaricature/solver"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Beta: 0.35
Solver: cg # Can be ldlt or cg
Neighbors: 16
CurvatureFloor: 1.e-6
Output: face.stl
`)
	ip := NewCaricatureParameters()
	require.NoError(t, ip.Parse(fileInput))
	assert.Equal(t, "Test Case", ip.Title)
	assert.Equal(t, 0.35, ip.Beta)
	assert.Equal(t, 16, ip.Neighbors)
	assert.Equal(t, "face.stl", ip.Output)
	// untouched keys keep their defaults
	assert.Equal(t, 2, ip.Rings)
	assert.Equal(t, 1.e-12, ip.DegenerateTolerance)
	ip.Print()

	cfg, err := ip.Config()
	require.NoError(t, err)
	assert.Equal(t, solver.CG, cfg.Method)
	assert.Equal(t, 16, cfg.Curvature.Neighbors)
	assert.Equal(t, 1.e-6, cfg.CurvatureFloor)
}

func TestDefaults(t *testing.T) {
	ip := NewCaricatureParameters()
	require.NoError(t, ip.Parse([]byte("")))
	assert.Equal(t, DefaultBeta, ip.Beta)
	assert.Equal(t, "output.obj", ip.Output)
	cfg, err := ip.Config()
	require.NoError(t, err)
	assert.Equal(t, solver.LDLT, cfg.Method)
	ip.Print()
}

func TestBadParameters(t *testing.T) {
	ip := NewCaricatureParameters()
	assert.Error(t, ip.Parse([]byte("Beta: [1, 2]")))

	ip = NewCaricatureParameters()
	ip.Solver = "gauss-seidel"
	_, err := ip.Config()
	assert.Error(t, err)

	ip = NewCaricatureParameters()
	ip.Rings = -1
	_, err = ip.Config()
	assert.Error(t, err)
}
