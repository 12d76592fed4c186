package caricature

import (
	"log"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocaricature/curvature"
	"github.com/notargets/gocaricature/mesh"
	"github.com/notargets/gocaricature/operators"
	"github.com/notargets/gocaricature/solver"
)

/*
Exaggerate deforms a source surface away from a reference surface with the
same connectivity. Each face gradient of the source coordinates is scaled by

	s_f = |K_f| ^ (beta * ln(dblA_src,f / dblA_ref,f))

where K_f is the source Gaussian curvature averaged onto the face, and the
deformed positions X are the least squares fit of those gradients:

	L X = Div (s .* (G V))

L is singular on each connected component of its graph, so the solution is
re-anchored to keep the source centroid of every component in place.
*/

type Config struct {
	Method              solver.Method
	Tolerance           float64 // CG relative residual, solver.DefaultTolerance when zero
	Curvature           curvature.Options
	DegenerateTolerance float64 // Relative double area below which a face is degenerate
	CurvatureFloor      float64 // Lower bound on |K| before it is raised to gamma
	Logger              *log.Logger
}

func DefaultConfig() Config {
	return Config{
		Method:              solver.LDLT,
		Curvature:           curvature.Options{Rings: curvature.DefaultRings},
		DegenerateTolerance: operators.DefaultDegenerateTolerance,
	}
}

type Result struct {
	Mesh  *mesh.Mesh // Deformed source, same faces as the source
	Gamma []float64  // Per face exponent
	Scale []float64  // Per face gradient scale |K|^gamma
	K     []float64  // Per face Gaussian curvature of the source
}

func (cfg Config) logf(format string, args ...interface{}) {
	if cfg.Logger != nil {
		cfg.Logger.Printf(format, args...)
	}
}

// Exaggerate returns the source deformed by beta relative to the reference
func Exaggerate(src, ref *mesh.Mesh, beta float64, cfgO ...Config) (res *Result, err error) {
	var (
		cfg   = DefaultConfig()
		start = time.Now()
	)
	if len(cfgO) != 0 {
		cfg = cfgO[0]
	}
	if err = CheckTopology(src, ref); err != nil {
		return
	}
	cfg.logf("Exaggerating %v with beta = %g", src, beta)
	var ops *operators.Operators
	if ops, err = operators.Build(src, cfg.DegenerateTolerance); err != nil {
		return
	}
	var dblARef []float64
	if dblARef, err = operators.DoubleArea(ref, cfg.DegenerateTolerance); err != nil {
		return
	}
	res = &Result{}
	var Kv []float64
	if Kv, err = curvature.GaussianCurvature(src, cfg.Curvature); err != nil {
		return nil, err
	}
	if res.K, err = curvature.AverageOntoFaces(src, Kv); err != nil {
		return nil, err
	}
	if res.Gamma, err = Gamma(beta, ops.DoubleArea, dblARef); err != nil {
		return nil, err
	}
	if res.Scale, err = FaceScale(res.K, res.Gamma, cfg.CurvatureFloor); err != nil {
		return nil, err
	}
	V := src.Positions()
	var sys System
	if sys, err = Assemble(ops, V, Stack(res.Scale)); err != nil {
		return nil, err
	}
	slv := solver.New(cfg.Method)
	if cfg.Tolerance > 0 {
		slv.Tolerance = cfg.Tolerance
	}
	if err = slv.Factorize(sys.L); err != nil {
		return nil, err
	}
	cfg.logf("Factorized %d unknowns with %s, %d components", src.NumVertices(), cfg.Method, len(slv.Components))
	var X *mat.Dense
	if X, err = slv.Solve(sys.B); err != nil {
		return nil, err
	}
	if cfg.Method == solver.CG {
		cfg.logf("CG converged in %d iterations", slv.Iterations)
	}
	Reanchor(X, V, slv.Components)
	if res.Mesh, err = src.WithPositions(X); err != nil {
		return nil, err
	}
	cfg.logf("Exaggeration done in %v", time.Since(start))
	return
}

// Reanchor shifts every column of X within each component so its mean
// matches the mean of V over the same rows
func Reanchor(X *mat.Dense, V mat.Matrix, comps [][]int) {
	_, nc := X.Dims()
	for _, comp := range comps {
		n := float64(len(comp))
		for j := 0; j < nc; j++ {
			var shift float64
			for _, i := range comp {
				shift += V.At(i, j) - X.At(i, j)
			}
			shift /= n
			for _, i := range comp {
				X.Set(i, j, X.At(i, j)+shift)
			}
		}
	}
}

// ExaggerateFiles reads both meshes, exaggerates and writes the result to
// outPath, in the format implied by its extension
func ExaggerateFiles(srcPath, refPath, outPath string, beta float64, cfgO ...Config) (res *Result, err error) {
	var src, ref *mesh.Mesh
	if src, err = mesh.ReadMeshFile(srcPath); err != nil {
		return
	}
	if ref, err = mesh.ReadMeshFile(refPath); err != nil {
		return
	}
	if res, err = Exaggerate(src, ref, beta, cfgO...); err != nil {
		return nil, err
	}
	if err = mesh.WriteMeshFile(outPath, res.Mesh); err != nil {
		return nil, err
	}
	return
}
