package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gocaricature/types"
)

// Generators for analytic test surfaces, shared by the tests of the
// operator, curvature and caricature packages

// NewIcosphere builds a sphere of the given radius centred on the origin by
// subdividing an icosahedron subdiv times and projecting onto the sphere.
// Faces are wound counter clockwise seen from outside.
func NewIcosphere(subdiv int, radius float64) *Mesh {
	var (
		t        = (1 + math.Sqrt(5)) / 2
		vertices = []r3.Vec{
			{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
			{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
			{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
		}
		faces = [][3]int{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		}
	)
	for level := 0; level < subdiv; level++ {
		var (
			midpoints = make(map[types.EdgeKey]int)
			next      = make([][3]int, 0, 4*len(faces))
		)
		mid := func(a, b int) int {
			ek := types.NewEdgeKey([2]int{a, b})
			if idx, ok := midpoints[ek]; ok {
				return idx
			}
			idx := len(vertices)
			vertices = append(vertices, r3.Scale(0.5, r3.Add(vertices[a], vertices[b])))
			midpoints[ek] = idx
			return idx
		}
		for _, tri := range faces {
			a := mid(tri[0], tri[1])
			b := mid(tri[1], tri[2])
			c := mid(tri[2], tri[0])
			next = append(next,
				[3]int{tri[0], a, c},
				[3]int{tri[1], b, a},
				[3]int{tri[2], c, b},
				[3]int{a, b, c})
		}
		faces = next
	}
	for i, v := range vertices {
		vertices[i] = r3.Scale(radius/r3.Norm(v), v)
	}
	m, err := NewMesh(vertices, faces)
	if err != nil {
		panic(err)
	}
	return m
}

// NewGrid builds an n by n-cell grid with spacing dx in the XY plane,
// centred on the origin, with heights z = height(x, y). A nil height gives a
// flat patch.
func NewGrid(n int, dx float64, height func(x, y float64) float64) *Mesh {
	var (
		np       = n + 1
		offset   = 0.5 * dx * float64(n)
		vertices = make([]r3.Vec, 0, np*np)
		faces    = make([][3]int, 0, 2*n*n)
	)
	for j := 0; j < np; j++ {
		for i := 0; i < np; i++ {
			x, y := float64(i)*dx-offset, float64(j)*dx-offset
			var z float64
			if height != nil {
				z = height(x, y)
			}
			vertices = append(vertices, r3.Vec{X: x, Y: y, Z: z})
		}
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v0 := i + j*np
			v1, v2, v3 := v0+1, v0+np, v0+np+1
			faces = append(faces, [3]int{v0, v1, v3}, [3]int{v0, v3, v2})
		}
	}
	m, err := NewMesh(vertices, faces)
	if err != nil {
		panic(err)
	}
	return m
}

// Scaled returns a copy of m with every vertex multiplied by s
func (m *Mesh) Scaled(s float64) *Mesh {
	R := &Mesh{
		vertices:  make([]r3.Vec, len(m.vertices)),
		faces:     m.faces,
		edges:     m.edges,
		vertFaces: m.vertFaces,
		neighbors: m.neighbors,
	}
	for i, v := range m.vertices {
		R.vertices[i] = r3.Scale(s, v)
	}
	return R
}
