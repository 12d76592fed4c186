package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// applyNeg computes y = -A x on the free unknowns, pinned entries stay zero
func (s *Solver) applyNeg(x []float64) (y []float64) {
	y = s.A.MulVec(x)
	for i := range y {
		if s.pinned[i] {
			y[i] = 0
		} else {
			y[i] = -y[i]
		}
	}
	return
}

func (s *Solver) solveCG(b []float64) (x []float64, err error) {
	var (
		n       = s.n
		maxIter = s.MaxIterations
		diag    = s.A.Diagonal()
		r       = make([]float64, n)
		z       = make([]float64, n)
	)
	if maxIter <= 0 {
		maxIter = 10 * n
	}
	x = make([]float64, n)
	for i := range r {
		if !s.pinned[i] {
			r[i] = -b[i]
		}
	}
	bNorm := floats.Norm(r, 2)
	if bNorm == 0 {
		return
	}
	precondition := func() {
		for i := range z {
			if !s.pinned[i] {
				z[i] = r[i] / -diag[i]
			}
		}
	}
	precondition()
	p := make([]float64, n)
	copy(p, z)
	rz := floats.Dot(r, z)
	for it := 1; it <= maxIter; it++ {
		s.Iterations++
		Ap := s.applyNeg(p)
		pAp := floats.Dot(p, Ap)
		if pAp <= 0 || math.IsNaN(pAp) {
			return nil, solverError("conjugate gradients hit direction with p.Ap = %g at iteration %d, "+
				"the matrix is not negative semi-definite", pAp, it)
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		if floats.Norm(r, 2) <= s.Tolerance*bNorm {
			return
		}
		precondition()
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	return nil, solverError("conjugate gradients did not reach relative residual %g in %d iterations",
		s.Tolerance, maxIter)
}
