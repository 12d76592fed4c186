package curvature

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gocaricature/mesh"
	"github.com/notargets/gocaricature/types"
)

func meanFaceCurvature(t *testing.T, m *mesh.Mesh, opts Options) (mean float64) {
	K, err := GaussianCurvature(m, opts)
	require.NoError(t, err)
	Kf, err := AverageOntoFaces(m, K)
	require.NoError(t, err)
	require.Len(t, Kf, m.NumFaces())
	for _, k := range Kf {
		mean += k
	}
	return mean / float64(len(Kf))
}

func TestPrincipalCurvature_Sphere(t *testing.T) {
	{ // Unit sphere, default rings
		m := mesh.NewIcosphere(3, 1)
		assert.InDelta(t, 1., meanFaceCurvature(t, m, Options{}), 0.1)

		k1, k2, err := PrincipalCurvature(m)
		require.NoError(t, err)
		for v := range k1 {
			assert.GreaterOrEqual(t, k1[v], k2[v])
			assert.InDelta(t, 1., math.Abs(k1[v]), 0.05, "vertex %d", v)
			assert.InDelta(t, 1., math.Abs(k2[v]), 0.05, "vertex %d", v)
		}
	}
	{ // Curvature scales with 1/r, the product with 1/r^2
		r := 2.5
		m := mesh.NewIcosphere(3, r)
		assert.InDelta(t, 1/(r*r), meanFaceCurvature(t, m, Options{}), 0.1/(r*r))
		assert.InDelta(t, 1/(r*r), meanFaceCurvature(t, m, Options{Rings: 1}), 0.05/(r*r))
	}
	{ // A coarser sphere is still within tolerance with a single ring
		m := mesh.NewIcosphere(2, 1)
		assert.InDelta(t, 1., meanFaceCurvature(t, m, Options{Rings: 1}), 0.1)
	}
	{ // Nearest neighbours in space instead of mesh rings
		m := mesh.NewIcosphere(3, 1)
		assert.InDelta(t, 1., meanFaceCurvature(t, m, Options{Neighbors: 12}), 0.1)
	}
}

func TestPrincipalCurvature_Planar(t *testing.T) {
	{ // Flat patch
		m := mesh.NewGrid(8, 0.1, nil)
		// two grid corners touch a single face, so one ring is too small there
		for _, opts := range []Options{{}, {Neighbors: 8}} {
			k1, k2, err := PrincipalCurvature(m, opts)
			require.NoError(t, err)
			for v := range k1 {
				assert.InDelta(t, 0., k1[v], 1.e-9)
				assert.InDelta(t, 0., k2[v], 1.e-9)
			}
		}
	}
	{ // Saddle z = x^2 - y^2 has k1 = 2, k2 = -2 at the origin
		m := mesh.NewGrid(10, 0.1, func(x, y float64) float64 { return x*x - y*y })
		center := 5 + 5*11
		require.Equal(t, r3.Vec{}, m.Vertex(center))
		k1, k2, err := PrincipalCurvature(m)
		require.NoError(t, err)
		assert.InDelta(t, 2., k1[center], 1.e-6)
		assert.InDelta(t, -2., k2[center], 1.e-6)
	}
	{ // Paraboloid z = (x^2 + y^2)/2 is umbilic with k = 1 at the origin
		m := mesh.NewGrid(10, 0.1, func(x, y float64) float64 { return 0.5 * (x*x + y*y) })
		k1, k2, err := PrincipalCurvature(m)
		require.NoError(t, err)
		assert.InDelta(t, 1., k1[60], 1.e-6)
		assert.InDelta(t, 1., k2[60], 1.e-6)
	}
}

func TestShapeOperatorEigen(t *testing.T) {
	k1, k2 := shapeOperatorEigen(0.5, 0, -1.5, 0, 0)
	assert.InDelta(t, 1., k1, 1.e-15)
	assert.InDelta(t, -3., k2, 1.e-15)
	// a rotated cylinder z = (x+y)^2 / 4 has one zero curvature
	k1, k2 = shapeOperatorEigen(0.25, 0.5, 0.25, 0, 0)
	assert.InDelta(t, 1., k1, 1.e-15)
	assert.InDelta(t, 0., k2, 1.e-15)
}

func TestPrincipalCurvature_Failures(t *testing.T) {
	{ // A vertex outside every face
		verts := []r3.Vec{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}, {X: 5, Y: 5, Z: 5}}
		m, err := mesh.NewMesh(verts, [][3]int{{0, 1, 2}, {1, 3, 2}})
		require.NoError(t, err)
		for _, opts := range []Options{{}, {Neighbors: 3}} {
			_, _, err = PrincipalCurvature(m, opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrCurvatureEstimation))
			var me *types.Error
			require.True(t, errors.As(err, &me))
			assert.Equal(t, 4, me.Index)
		}
	}
	{ // A lone triangle gives each vertex two neighbours
		m, err := mesh.NewMesh([]r3.Vec{{}, {X: 1}, {Y: 1}}, [][3]int{{0, 1, 2}})
		require.NoError(t, err)
		_, err = GaussianCurvature(m)
		assert.True(t, errors.Is(err, types.ErrCurvatureEstimation))
	}
	{
		m := mesh.NewGrid(2, 1, nil)
		_, err := AverageOntoFaces(m, []float64{1, 2})
		assert.Error(t, err)
		Kf, err := AverageOntoFaces(m, []float64{0, 3, 6, 0, 3, 6, 0, 3, 6})
		require.NoError(t, err)
		// face {0,1,4} then {0,4,3}
		assert.InDelta(t, 2., Kf[0], 1.e-15)
		assert.InDelta(t, 1., Kf[1], 1.e-15)
	}
}
