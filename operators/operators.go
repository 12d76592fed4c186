package operators

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gocaricature/mesh"
	"github.com/notargets/gocaricature/types"
	"github.com/notargets/gocaricature/utils"
)

/*
Discrete differential operators on a piecewise linear triangle surface.

Per face fields of vectors are stacked by component: a 3|F| vector holds all x
components, then all y components, then all z components. This is the row
layout of the gradient and the column layout of the divergence.

Sign convention: the cotangent Laplacian is negative semi-definite, and the
divergence is the negative adjoint of the gradient under the face area inner
product, so that Divergence * Gradient = CotangentLaplacian.
*/

// DefaultDegenerateTolerance bounds dblA / maxEdge^2 from below; faces at or
// under it are treated as having zero area
const DefaultDegenerateTolerance = 1.e-12

// Operators bundles everything built from one mesh, computed once per mesh
type Operators struct {
	DoubleArea []float64  // Twice the area of each face [nfaces]
	Laplacian  utils.CSR  // |V| x |V|
	Gradient   utils.CSR  // 3|F| x |V|
	Divergence utils.CSR  // |V| x 3|F|
	Mesh       *mesh.Mesh // Mesh the operators were built on
}

func Build(m *mesh.Mesh, tolO ...float64) (ops *Operators, err error) {
	ops = &Operators{Mesh: m}
	if ops.DoubleArea, err = DoubleArea(m, tolO...); err != nil {
		return nil, err
	}
	ops.Laplacian = cotangentLaplacian(m, ops.DoubleArea)
	ops.Gradient = gradient(m, ops.DoubleArea)
	ops.Divergence = divergence(m, ops.Gradient, ops.DoubleArea)
	return
}

// DoubleArea returns |(v1-v0)x(v2-v0)| for each face and fails with a
// DegenerateGeometryError naming the first face whose area is zero relative
// to its longest edge
func DoubleArea(m *mesh.Mesh, tolO ...float64) (dblA []float64, err error) {
	var (
		tol = DefaultDegenerateTolerance
	)
	if len(tolO) != 0 {
		tol = tolO[0]
	}
	dblA = make([]float64, m.NumFaces())
	for f := range dblA {
		p := m.Corners(f)
		e1, e2, e3 := r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0]), r3.Sub(p[2], p[1])
		dblA[f] = r3.Norm(r3.Cross(e1, e2))
		maxEdge2 := max(r3.Norm2(e1), r3.Norm2(e2), r3.Norm2(e3))
		if dblA[f] <= tol*maxEdge2 {
			return nil, types.NewError(types.KindDegenerateGeometry, "DoubleArea", f,
				"face %d %v has double area %g (longest edge squared %g)", f, m.Face(f), dblA[f], maxEdge2)
		}
	}
	return
}

// CotangentLaplacian assembles L_ij = (cot a_ij + cot b_ij)/2 for each edge
// (i,j) with opposite angles a_ij, b_ij, and L_ii = -sum_j L_ij
func CotangentLaplacian(m *mesh.Mesh, tolO ...float64) (L utils.CSR, err error) {
	var dblA []float64
	if dblA, err = DoubleArea(m, tolO...); err != nil {
		return
	}
	L = cotangentLaplacian(m, dblA)
	return
}

func cotangentLaplacian(m *mesh.Mesh, dblA []float64) utils.CSR {
	var (
		nv = m.NumVertices()
		L  = utils.NewDOK(nv, nv)
	)
	for f := 0; f < m.NumFaces(); f++ {
		var (
			tri = m.Face(f)
			p   = m.Corners(f)
		)
		for a := 0; a < 3; a++ {
			b, c := (a+1)%3, (a+2)%3
			// cot of the angle at corner a, which is opposite edge (b,c)
			cot := r3.Dot(r3.Sub(p[b], p[a]), r3.Sub(p[c], p[a])) / dblA[f]
			w := 0.5 * cot
			i, j := tri[b], tri[c]
			L.Accumulate(i, j, w)
			L.Accumulate(j, i, w)
			L.Accumulate(i, i, -w)
			L.Accumulate(j, j, -w)
		}
	}
	L.SetReadOnly("Laplacian")
	return L.ToCSR()
}

// Gradient assembles the 3|F| x |V| map from a per vertex scalar to its
// constant gradient on each face
func Gradient(m *mesh.Mesh, tolO ...float64) (G utils.CSR, err error) {
	var dblA []float64
	if dblA, err = DoubleArea(m, tolO...); err != nil {
		return
	}
	G = gradient(m, dblA)
	return
}

// hatGradients returns the gradients of the three linear hat functions of
// face f, each n x e / dblA where e is the edge opposite the corner
func hatGradients(m *mesh.Mesh, f int, dblA float64) (g [3]r3.Vec) {
	var (
		p = m.Corners(f)
		n = r3.Scale(1/dblA, r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0])))
	)
	for a := 0; a < 3; a++ {
		b, c := (a+1)%3, (a+2)%3
		g[a] = r3.Scale(1/dblA, r3.Cross(n, r3.Sub(p[c], p[b])))
	}
	return
}

func gradient(m *mesh.Mesh, dblA []float64) utils.CSR {
	var (
		nv, nf = m.NumVertices(), m.NumFaces()
		G      = utils.NewDOK(3*nf, nv)
	)
	for f := 0; f < nf; f++ {
		tri := m.Face(f)
		for a, g := range hatGradients(m, f, dblA[f]) {
			G.Accumulate(f, tri[a], g.X)
			G.Accumulate(f+nf, tri[a], g.Y)
			G.Accumulate(f+2*nf, tri[a], g.Z)
		}
	}
	G.SetReadOnly("Gradient")
	return G.ToCSR()
}

// Divergence assembles -G^T * diag(dblA/2, dblA/2, dblA/2), the |V| x 3|F|
// map from per face vectors to per vertex scalars
func Divergence(m *mesh.Mesh, tolO ...float64) (D utils.CSR, err error) {
	var dblA []float64
	if dblA, err = DoubleArea(m, tolO...); err != nil {
		return
	}
	D = divergence(m, gradient(m, dblA), dblA)
	return
}

func divergence(m *mesh.Mesh, G utils.CSR, dblA []float64) utils.CSR {
	var (
		nv, nf = m.NumVertices(), m.NumFaces()
		D      = utils.NewDOK(nv, 3*nf)
	)
	G.DoNonZero(func(i, j int, v float64) {
		// row i of G is component i/nf of face i%nf
		D.Accumulate(j, i, -v*0.5*dblA[i%nf])
	})
	D.SetReadOnly("Divergence")
	return D.ToCSR()
}
