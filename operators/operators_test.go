package operators

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gocaricature/mesh"
	"github.com/notargets/gocaricature/types"
)

func testMeshes() map[string]*mesh.Mesh {
	return map[string]*mesh.Mesh{
		"icosphere": mesh.NewIcosphere(2, 1.3),
		"flat":      mesh.NewGrid(6, 0.25, nil),
		"saddle":    mesh.NewGrid(8, 0.2, func(x, y float64) float64 { return x*x - 0.5*y*y + 0.1*x*y }),
	}
}

func TestDoubleArea(t *testing.T) {
	{ // Unit right triangle and all its vertex orderings
		verts := []r3.Vec{{}, {X: 1}, {Y: 1}}
		for _, tri := range [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}} {
			m, err := mesh.NewMesh(verts, [][3]int{tri})
			require.NoError(t, err)
			dblA, err := DoubleArea(m)
			require.NoError(t, err)
			assert.InDelta(t, 1., dblA[0], 1.e-15)
		}
	}
	{ // Total area of a sphere converges to 4 pi r^2 from below
		r := 2.
		m := mesh.NewIcosphere(3, r)
		dblA, err := DoubleArea(m)
		require.NoError(t, err)
		var total float64
		for _, a := range dblA {
			assert.Greater(t, a, 0.)
			total += 0.5 * a
		}
		exact := 4 * math.Pi * r * r
		assert.Less(t, total, exact)
		assert.InDelta(t, exact, total, 0.02*exact)
	}
	{ // Collinear and coincident corners are rejected with the face index
		verts := []r3.Vec{{}, {X: 1}, {Y: 1}, {X: 2}, {X: 1}}
		m, err := mesh.NewMesh(verts, [][3]int{{0, 1, 2}, {0, 1, 3}})
		require.NoError(t, err)
		_, err = DoubleArea(m)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrDegenerateGeometry))
		var me *types.Error
		require.True(t, errors.As(err, &me))
		assert.Equal(t, 1, me.Index)

		m, err = mesh.NewMesh(verts, [][3]int{{0, 2, 1}, {1, 2, 4}})
		require.NoError(t, err)
		_, err = Build(m)
		assert.True(t, errors.Is(err, types.ErrDegenerateGeometry))
		_, err = CotangentLaplacian(m)
		assert.True(t, errors.Is(err, types.ErrDegenerateGeometry))
		_, err = Gradient(m)
		assert.True(t, errors.Is(err, types.ErrDegenerateGeometry))
		_, err = Divergence(m)
		assert.True(t, errors.Is(err, types.ErrDegenerateGeometry))
	}
	{ // A sliver passes or fails depending on the tolerance
		verts := []r3.Vec{{}, {X: 1}, {X: 0.5, Y: 1.e-7}}
		m, err := mesh.NewMesh(verts, [][3]int{{0, 1, 2}})
		require.NoError(t, err)
		_, err = DoubleArea(m)
		assert.NoError(t, err)
		_, err = DoubleArea(m, 1.e-6)
		assert.True(t, errors.Is(err, types.ErrDegenerateGeometry))
	}
}

func TestCotangentLaplacian(t *testing.T) {
	for name, m := range testMeshes() {
		L, err := CotangentLaplacian(m)
		require.NoError(t, err, name)
		nr, nc := L.Dims()
		assert.Equal(t, m.NumVertices(), nr, name)
		assert.Equal(t, m.NumVertices(), nc, name)
		for i, s := range L.RowSums() {
			assert.InDelta(t, 0., s, 1.e-12, "%s row %d", name, i)
		}
		assert.True(t, L.IsSymmetric(1.e-14), name)
		for i, d := range L.Diagonal() {
			assert.Less(t, d, 0., "%s diagonal %d", name, i)
		}
		// negative semi-definite: x^T L x <= 0
		rng := rand.New(rand.NewSource(1))
		x := make([]float64, nr)
		for i := range x {
			x[i] = rng.NormFloat64()
		}
		var quad float64
		for i, v := range L.MulVec(x) {
			quad += x[i] * v
		}
		assert.LessOrEqual(t, quad, 1.e-12, name)
	}
	{ // Equilateral triangle: every cot is 1/sqrt(3)
		verts := []r3.Vec{{}, {X: 1}, {X: 0.5, Y: math.Sqrt(3) / 2}}
		m, err := mesh.NewMesh(verts, [][3]int{{0, 1, 2}})
		require.NoError(t, err)
		L, err := CotangentLaplacian(m)
		require.NoError(t, err)
		w := 0.5 / math.Sqrt(3)
		assert.InDelta(t, w, L.At(0, 1), 1.e-14)
		assert.InDelta(t, w, L.At(1, 2), 1.e-14)
		assert.InDelta(t, -2*w, L.At(2, 2), 1.e-14)
	}
	{ // Linear functions are harmonic at interior vertices of a flat patch
		n := 6
		m := mesh.NewGrid(n, 0.25, nil)
		L, err := CotangentLaplacian(m)
		require.NoError(t, err)
		phi := make([]float64, m.NumVertices())
		for v := range phi {
			p := m.Vertex(v)
			phi[v] = 3*p.X - 2*p.Y + 1
		}
		Lphi := L.MulVec(phi)
		for j := 1; j < n; j++ {
			for i := 1; i < n; i++ {
				assert.InDelta(t, 0., Lphi[i+j*(n+1)], 1.e-12)
			}
		}
	}
}

func TestGradient(t *testing.T) {
	{ // Exact for a linear function on a flat patch
		m := mesh.NewGrid(4, 0.5, nil)
		G, err := Gradient(m)
		require.NoError(t, err)
		nr, nc := G.Dims()
		nf := m.NumFaces()
		assert.Equal(t, 3*nf, nr)
		assert.Equal(t, m.NumVertices(), nc)
		phi := make([]float64, m.NumVertices())
		for v := range phi {
			p := m.Vertex(v)
			phi[v] = 3*p.X - 2*p.Y + 7
		}
		g := G.MulVec(phi)
		for f := 0; f < nf; f++ {
			assert.InDelta(t, 3., g[f], 1.e-12)
			assert.InDelta(t, -2., g[f+nf], 1.e-12)
			assert.InDelta(t, 0., g[f+2*nf], 1.e-12)
		}
		// constants have no gradient
		for i, s := range G.RowSums() {
			assert.InDelta(t, 0., s, 1.e-12, "row %d", i)
		}
	}
	{ // The gradient lies in the face plane
		m := mesh.NewIcosphere(1, 1)
		G, err := Gradient(m)
		require.NoError(t, err)
		phi := make([]float64, m.NumVertices())
		for v := range phi {
			phi[v] = m.Vertex(v).Z * m.Vertex(v).X
		}
		g := G.MulVec(phi)
		nf := m.NumFaces()
		for f := 0; f < nf; f++ {
			p := m.Corners(f)
			n := r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0]))
			gf := r3.Vec{X: g[f], Y: g[f+nf], Z: g[f+2*nf]}
			assert.InDelta(t, 0., r3.Dot(n, gf), 1.e-12)
		}
	}
}

func TestDivergenceOfGradient(t *testing.T) {
	for name, m := range testMeshes() {
		ops, err := Build(m)
		require.NoError(t, err, name)
		nr, nc := ops.Divergence.Dims()
		assert.Equal(t, m.NumVertices(), nr, name)
		assert.Equal(t, 3*m.NumFaces(), nc, name)

		phi := make([]float64, m.NumVertices())
		for v := range phi {
			p := m.Vertex(v)
			phi[v] = math.Sin(2*p.X) + p.Y*p.Z + math.Cos(p.Z)
		}
		divGrad := ops.Divergence.MulVec(ops.Gradient.MulVec(phi))
		Lphi := ops.Laplacian.MulVec(phi)
		for i := range phi {
			assert.InDelta(t, Lphi[i], divGrad[i], 1.e-10, "%s vertex %d", name, i)
		}
		// the divergence of any field integrates to zero over the mesh
		field := make([]float64, nc)
		for i := range field {
			field[i] = float64(i%7) - 3
		}
		var total float64
		for _, v := range ops.Divergence.MulVec(field) {
			total += v
		}
		assert.InDelta(t, 0., total, 1.e-10, name)
	}
}
