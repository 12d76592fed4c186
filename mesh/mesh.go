package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gocaricature/types"
)

// Mesh is a triangulated surface. It is immutable after NewMesh and may be
// shared between goroutines.
type Mesh struct {
	// Geometry
	vertices []r3.Vec // Vertex coordinates [nvertices]

	// Element data
	faces [][3]int // Triangle to vertex connectivity [nfaces][3]

	// Connectivity (built during initialization)
	edges     []types.EdgeKey // Unique edges, sorted
	vertFaces [][]int         // Vertex to incident triangles
	neighbors [][]int         // Vertex to 1-ring vertices, sorted
}

// NewMesh copies the vertex and face lists, validates the connectivity and
// builds the adjacency used by the operators and the curvature estimator
func NewMesh(vertices []r3.Vec, faces [][3]int) (m *Mesh, err error) {
	if len(vertices) == 0 {
		err = types.NewError(types.KindInvalidMesh, "NewMesh", -1, "mesh has no vertices")
		return
	}
	if len(faces) == 0 {
		err = types.NewError(types.KindInvalidMesh, "NewMesh", -1, "mesh has no faces")
		return
	}
	nv := len(vertices)
	for f, tri := range faces {
		for _, v := range tri {
			if v < 0 || v >= nv {
				err = types.NewError(types.KindInvalidMesh, "NewMesh", f,
					"face %d references vertex %d, valid range is [0,%d)", f, v, nv)
				return
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			err = types.NewError(types.KindInvalidMesh, "NewMesh", f,
				"face %d repeats a vertex: %v", f, tri)
			return
		}
	}
	m = &Mesh{
		vertices: make([]r3.Vec, nv),
		faces:    make([][3]int, len(faces)),
	}
	copy(m.vertices, vertices)
	copy(m.faces, faces)
	m.buildConnectivity()
	return
}

func (m *Mesh) buildConnectivity() {
	var (
		nv       = len(m.vertices)
		edgeSeen = make(map[types.EdgeKey]struct{}, 3*len(m.faces)/2)
	)
	m.vertFaces = make([][]int, nv)
	m.neighbors = make([][]int, nv)
	for f, tri := range m.faces {
		for _, v := range tri {
			m.vertFaces[v] = append(m.vertFaces[v], f)
		}
		for _, ek := range types.TriangleEdges(tri) {
			if _, ok := edgeSeen[ek]; ok {
				continue
			}
			edgeSeen[ek] = struct{}{}
			m.edges = append(m.edges, ek)
			verts := ek.GetVertices(false)
			m.neighbors[verts[0]] = append(m.neighbors[verts[0]], verts[1])
			m.neighbors[verts[1]] = append(m.neighbors[verts[1]], verts[0])
		}
	}
	sort.Slice(m.edges, func(i, j int) bool { return m.edges[i] < m.edges[j] })
	for _, nbrs := range m.neighbors {
		sort.Ints(nbrs)
	}
}

func (m *Mesh) NumVertices() int        { return len(m.vertices) }
func (m *Mesh) NumFaces() int           { return len(m.faces) }
func (m *Mesh) NumEdges() int           { return len(m.edges) }
func (m *Mesh) Vertex(i int) r3.Vec     { return m.vertices[i] }
func (m *Mesh) Face(f int) [3]int       { return m.faces[f] }
func (m *Mesh) Edges() []types.EdgeKey  { return m.edges }
func (m *Mesh) VertexFaces(v int) []int { return m.vertFaces[v] }
func (m *Mesh) Neighbors(v int) []int   { return m.neighbors[v] }

// Corners returns the three vertex positions of face f
func (m *Mesh) Corners(f int) (p [3]r3.Vec) {
	for i, v := range m.faces[f] {
		p[i] = m.vertices[v]
	}
	return
}

// Vertices returns a copy of the vertex positions
func (m *Mesh) Vertices() (V []r3.Vec) {
	V = make([]r3.Vec, len(m.vertices))
	copy(V, m.vertices)
	return
}

// Faces returns a copy of the connectivity
func (m *Mesh) Faces() (F [][3]int) {
	F = make([][3]int, len(m.faces))
	copy(F, m.faces)
	return
}

// Positions returns the vertex coordinates as a |V|x3 matrix, one column per axis
func (m *Mesh) Positions() (P *mat.Dense) {
	P = mat.NewDense(len(m.vertices), 3, nil)
	for i, v := range m.vertices {
		P.Set(i, 0, v.X)
		P.Set(i, 1, v.Y)
		P.Set(i, 2, v.Z)
	}
	return
}

// WithPositions returns a mesh with this mesh's connectivity and new vertex coordinates
func (m *Mesh) WithPositions(P mat.Matrix) (R *Mesh, err error) {
	var (
		nr, nc = P.Dims()
	)
	if nr != len(m.vertices) || nc != 3 {
		err = types.NewError(types.KindInvalidMesh, "WithPositions", -1,
			"positions are %dx%d, mesh has %d vertices", nr, nc, len(m.vertices))
		return
	}
	R = &Mesh{
		vertices:  make([]r3.Vec, nr),
		faces:     m.faces,
		edges:     m.edges,
		vertFaces: m.vertFaces,
		neighbors: m.neighbors,
	}
	for i := range R.vertices {
		R.vertices[i] = r3.Vec{X: P.At(i, 0), Y: P.At(i, 1), Z: P.At(i, 2)}
	}
	return
}

// SameConnectivity reports the first face whose vertex triple differs, or -1
// when both meshes index their faces identically
func (m *Mesh) SameConnectivity(o *Mesh) (firstDiff int, err error) {
	firstDiff = -1
	if len(m.faces) != len(o.faces) {
		err = fmt.Errorf("face counts differ: %d and %d", len(m.faces), len(o.faces))
		return
	}
	for f := range m.faces {
		if m.faces[f] != o.faces[f] {
			firstDiff = f
			return
		}
	}
	return
}

// IsolatedVertices lists vertices not referenced by any face
func (m *Mesh) IsolatedVertices() (iso []int) {
	for v, fl := range m.vertFaces {
		if len(fl) == 0 {
			iso = append(iso, v)
		}
	}
	return
}

// Rings returns the vertices within k edge hops of v, excluding v, in BFS order
func (m *Mesh) Rings(v, k int) (ring []int) {
	var (
		visited  = map[int]bool{v: true}
		frontier = []int{v}
	)
	for level := 0; level < k && len(frontier) != 0; level++ {
		var next []int
		for _, u := range frontier {
			for _, w := range m.neighbors[u] {
				if !visited[w] {
					visited[w] = true
					next = append(next, w)
				}
			}
		}
		ring = append(ring, next...)
		frontier = next
	}
	return
}

// Components partitions the vertices into the connected components of the
// edge graph. Each component is sorted, and components are ordered by their
// smallest vertex.
func (m *Mesh) Components() (comps [][]int) {
	var (
		nv    = len(m.vertices)
		label = make([]int, nv)
	)
	for i := range label {
		label[i] = -1
	}
	for seed := 0; seed < nv; seed++ {
		if label[seed] != -1 {
			continue
		}
		id := len(comps)
		comp := []int{seed}
		label[seed] = id
		for q := 0; q < len(comp); q++ {
			for _, w := range m.neighbors[comp[q]] {
				if label[w] == -1 {
					label[w] = id
					comp = append(comp, w)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return
}

// Centroid is the unweighted mean of the vertex positions
func (m *Mesh) Centroid() (c r3.Vec) {
	for _, v := range m.vertices {
		c = r3.Add(c, v)
	}
	c = r3.Scale(1/float64(len(m.vertices)), c)
	return
}

// MaxEdgeLength is the longest edge in the mesh
func (m *Mesh) MaxEdgeLength() (l float64) {
	for _, ek := range m.edges {
		verts := ek.GetVertices(false)
		if d := r3.Norm(r3.Sub(m.vertices[verts[1]], m.vertices[verts[0]])); d > l {
			l = d
		}
	}
	return
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh{vertices: %d, faces: %d, edges: %d}", len(m.vertices), len(m.faces), len(m.edges))
}
