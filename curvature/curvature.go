package curvature

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gocaricature/mesh"
	"github.com/notargets/gocaricature/types"
)

/*
Principal curvatures are estimated per vertex by fitting a quadric height
field over a neighbourhood, expressed in a tangent frame whose third axis is
the area weighted vertex normal:

	z = a x^2 + b xy + c y^2 + d x + e y

The linear terms absorb the error of the estimated normal. With fewer than
five neighbours the fit drops them. The curvatures are the eigenvalues of the
shape operator I^-1 II of the fitted surface at the origin.

The sign of k1 and k2 follows the normal orientation, their product does not.
*/

const (
	DefaultRings = 2
	// the full quadric needs five neighbours, the pure quadratic three
	minFullFit = 5
	minFit     = 3
)

type Options struct {
	Rings     int // Mesh rings used for the fit, DefaultRings when zero
	Neighbors int // When positive, use this many nearest vertices in space instead of rings
}

// PrincipalCurvature returns k1 >= k2 for every vertex
func PrincipalCurvature(m *mesh.Mesh, optsO ...Options) (k1, k2 []float64, err error) {
	var (
		opts Options
		nv   = m.NumVertices()
		nb   neighborhood
	)
	if len(optsO) != 0 {
		opts = optsO[0]
	}
	switch {
	case opts.Neighbors > 0:
		nb = newKNNNeighborhood(m, opts.Neighbors)
	case opts.Rings > 0:
		nb = ringNeighborhood{m: m, rings: opts.Rings}
	default:
		nb = ringNeighborhood{m: m, rings: DefaultRings}
	}
	k1, k2 = make([]float64, nv), make([]float64, nv)
	for v := 0; v < nv; v++ {
		if k1[v], k2[v], err = vertexCurvature(m, v, nb.around(v)); err != nil {
			return nil, nil, err
		}
	}
	return
}

// VertexNormal is the normalized sum of the incident face normals weighted by face area
func VertexNormal(m *mesh.Mesh, v int) (n r3.Vec, ok bool) {
	for _, f := range m.VertexFaces(v) {
		p := m.Corners(f)
		n = r3.Add(n, r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0])))
	}
	nn := r3.Norm(n)
	if nn == 0 {
		return
	}
	return r3.Scale(1/nn, n), true
}

// tangentFrame completes n to a right handed orthonormal frame
func tangentFrame(n r3.Vec) (t1, t2 r3.Vec) {
	// cross with the axis least aligned with n
	axis := r3.Vec{X: 1}
	if math.Abs(n.Y) < math.Abs(n.X) && math.Abs(n.Y) <= math.Abs(n.Z) {
		axis = r3.Vec{Y: 1}
	} else if math.Abs(n.Z) < math.Abs(n.X) {
		axis = r3.Vec{Z: 1}
	}
	t1 = r3.Unit(r3.Cross(n, axis))
	t2 = r3.Cross(n, t1)
	return
}

func vertexCurvature(m *mesh.Mesh, v int, nbrs []int) (k1, k2 float64, err error) {
	if len(m.VertexFaces(v)) == 0 {
		err = types.NewError(types.KindCurvatureEstimation, "PrincipalCurvature", v,
			"vertex %d is not part of any face", v)
		return
	}
	if len(nbrs) < minFit {
		err = types.NewError(types.KindCurvatureEstimation, "PrincipalCurvature", v,
			"vertex %d has %d neighbours, at least %d are needed for a fit", v, len(nbrs), minFit)
		return
	}
	n, ok := VertexNormal(m, v)
	if !ok {
		err = types.NewError(types.KindCurvatureEstimation, "PrincipalCurvature", v,
			"vertex %d has no defined normal", v)
		return
	}
	var (
		t1, t2 = tangentFrame(n)
		origin = m.Vertex(v)
		nCoef  = minFit
	)
	if len(nbrs) >= minFullFit {
		nCoef = minFullFit
	}
	A := mat.NewDense(len(nbrs), nCoef, nil)
	z := mat.NewVecDense(len(nbrs), nil)
	for i, u := range nbrs {
		d := r3.Sub(m.Vertex(u), origin)
		x, y := r3.Dot(d, t1), r3.Dot(d, t2)
		A.Set(i, 0, x*x)
		A.Set(i, 1, x*y)
		A.Set(i, 2, y*y)
		if nCoef == minFullFit {
			A.Set(i, 3, x)
			A.Set(i, 4, y)
		}
		z.SetVec(i, r3.Dot(d, n))
	}
	var coef mat.VecDense
	if err = coef.SolveVec(A, z); err != nil {
		// an ill conditioned fit still yields usable coefficients
		var cond mat.Condition
		if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) {
			err = nil
		}
	}
	if err != nil {
		err = types.NewError(types.KindCurvatureEstimation, "PrincipalCurvature", v,
			"quadric fit at vertex %d failed: %v", v, err)
		return
	}
	var (
		a, b, c = coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)
		zx, zy  float64
	)
	if nCoef == minFullFit {
		zx, zy = coef.AtVec(3), coef.AtVec(4)
	}
	k1, k2 = shapeOperatorEigen(a, b, c, zx, zy)
	if math.IsNaN(k1) || math.IsNaN(k2) || math.IsInf(k1, 0) || math.IsInf(k2, 0) {
		err = types.NewError(types.KindCurvatureEstimation, "PrincipalCurvature", v,
			"non-finite curvature at vertex %d", v)
	}
	return
}

// shapeOperatorEigen returns the principal curvatures at the origin of the
// height field z = a x^2 + b xy + c y^2 + zx x + zy y
func shapeOperatorEigen(a, b, c, zx, zy float64) (k1, k2 float64) {
	var (
		// first fundamental form
		E, F, G = 1 + zx*zx, zx * zy, 1 + zy*zy
		w       = math.Sqrt(1 + zx*zx + zy*zy)
		// second fundamental form
		L, M, N = 2 * a / w, b / w, 2 * c / w
		det     = E*G - F*F
		K       = (L*N - M*M) / det
		H       = (E*N - 2*F*M + G*L) / (2 * det)
		disc    = math.Sqrt(math.Max(H*H-K, 0))
	)
	return H + disc, H - disc
}

// Product returns k1*k2 per entry, the Gaussian curvature estimate
func Product(k1, k2 []float64) (K []float64) {
	K = make([]float64, len(k1))
	for i := range K {
		K[i] = k1[i] * k2[i]
	}
	return
}

// GaussianCurvature is Product(PrincipalCurvature(m))
func GaussianCurvature(m *mesh.Mesh, optsO ...Options) (K []float64, err error) {
	var k1, k2 []float64
	if k1, k2, err = PrincipalCurvature(m, optsO...); err != nil {
		return
	}
	return Product(k1, k2), nil
}

// AverageOntoFaces sets each face's value to the mean of its three vertex values
func AverageOntoFaces(m *mesh.Mesh, field []float64) (faceField []float64, err error) {
	if len(field) != m.NumVertices() {
		err = types.NewError(types.KindInvalidMesh, "AverageOntoFaces", -1,
			"field has %d values for %d vertices", len(field), m.NumVertices())
		return
	}
	faceField = make([]float64, m.NumFaces())
	for f := range faceField {
		tri := m.Face(f)
		faceField[f] = (field[tri[0]] + field[tri[1]] + field[tri[2]]) / 3
	}
	return
}
