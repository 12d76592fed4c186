package caricature

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocaricature/operators"
	"github.com/notargets/gocaricature/types"
	"github.com/notargets/gocaricature/utils"
)

// System is L X = B, with one column of B and X per coordinate axis
type System struct {
	L utils.CSR
	B *mat.Dense
}

// Assemble builds B = Div (scale .* (Grad V)) column by column, and takes the
// source Laplacian as L
func Assemble(ops *operators.Operators, V mat.Matrix, scale []float64) (sys System, err error) {
	var (
		nv, nc = V.Dims()
		nrG, _ = ops.Gradient.Dims()
	)
	if nv != ops.Mesh.NumVertices() {
		err = types.NewError(types.KindInvalidMesh, "Assemble", -1,
			"%d positions for %d vertices", nv, ops.Mesh.NumVertices())
		return
	}
	if len(scale) != nrG {
		err = types.NewError(types.KindTopologyMismatch, "Assemble", -1,
			"scale field has %d entries, gradient has %d rows", len(scale), nrG)
		return
	}
	sys.L = ops.Laplacian
	sys.B = mat.NewDense(nv, nc, nil)
	for j := 0; j < nc; j++ {
		g := ops.Gradient.MulVec(mat.Col(nil, j, V))
		for i := range g {
			g[i] *= scale[i]
		}
		sys.B.SetCol(j, ops.Divergence.MulVec(g))
	}
	return
}
