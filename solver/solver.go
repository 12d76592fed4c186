package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocaricature/types"
	"github.com/notargets/gocaricature/utils"
)

/*
Solver handles the singular systems L x = b produced by a mesh Laplacian.
L is negative semi-definite with the per component constants as null space,
so the solver works on -L with one vertex pinned to zero in every connected
component. The reduced matrix is positive definite, and the solution of the
original system is recovered up to an additive constant per component.
*/

type Method uint8

const (
	LDLT Method = iota // Banded Cholesky on a reverse Cuthill-McKee ordering
	CG                 // Jacobi preconditioned conjugate gradients
)

func (m Method) String() string {
	switch m {
	case LDLT:
		return "ldlt"
	case CG:
		return "cg"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

func NewMethod(label string) (m Method, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "ldlt", "cholesky", "direct":
		m = LDLT
	case "cg", "iterative":
		m = CG
	default:
		err = fmt.Errorf("unknown solver method %q, expected ldlt or cg", label)
	}
	return
}

const (
	DefaultTolerance     = 1.e-10
	DefaultMaxIterations = 0 // zero means 10 * number of unknowns
)

type Solver struct {
	Method        Method
	Tolerance     float64 // Relative residual for CG
	MaxIterations int     // CG iteration cap, 10*n when zero

	n          int
	A          utils.CSR // the matrix passed to Factorize
	Components [][]int   // Connected components of the matrix graph
	pinned     []bool    // One pinned unknown per component, held at zero
	order      []int     // Reduced index to original index
	pos        []int     // Original index to reduced index, -1 when pinned
	chol       *mat.BandCholesky
	bandwidth  int
	factorized bool
	Iterations int // CG iterations of the last solve, summed over columns
}

// New returns a solver for a single factorize/solve cycle
func New(method Method) *Solver {
	return &Solver{
		Method:        method,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

func solverError(format string, args ...interface{}) error {
	return types.NewError(types.KindSolver, "Solver", -1, format, args...)
}

// Factorize prepares L for solving. L must be symmetric with zero row sums
// and negative semi-definite, as a cotangent Laplacian is.
func (s *Solver) Factorize(L utils.CSR) (err error) {
	var (
		nr, nc = L.Dims()
	)
	s.factorized = false
	if nr != nc {
		return solverError("matrix is %dx%d, it must be square", nr, nc)
	}
	if nr == 0 {
		return solverError("matrix is empty")
	}
	s.n, s.A = nr, L
	adj := adjacency(L)
	label, count := components(adj)
	s.Components = make([][]int, count)
	for i, c := range label {
		s.Components[c] = append(s.Components[c], i)
	}
	s.pinned = make([]bool, nr)
	keep := make([]bool, nr)
	for _, comp := range s.Components {
		s.pinned[comp[0]] = true
	}
	for i := range keep {
		keep[i] = !s.pinned[i]
	}
	s.order = reverseCuthillMcKee(adj, keep)
	s.pos = make([]int, nr)
	for i := range s.pos {
		s.pos[i] = -1
	}
	for r, i := range s.order {
		s.pos[i] = r
	}

	switch s.Method {
	case LDLT:
		err = s.factorizeBand(adj)
	case CG:
		for i, d := range L.Diagonal() {
			if !s.pinned[i] && d >= 0 {
				return solverError("diagonal entry %d is %g, expected negative", i, d)
			}
		}
	default:
		err = solverError("unknown method %v", s.Method)
	}
	if err == nil {
		s.factorized = true
	}
	return
}

func (s *Solver) factorizeBand(adj [][]int) error {
	var (
		nFree = len(s.order)
	)
	if nFree == 0 {
		return nil
	}
	s.bandwidth = bandwidth(adj, s.pos)
	band := mat.NewSymBandDense(nFree, s.bandwidth, nil)
	s.A.DoNonZero(func(i, j int, v float64) {
		ri, rj := s.pos[i], s.pos[j]
		// exact zeros (cot a + cot b = 0) are outside the graph the band was sized on
		if ri < 0 || rj < 0 || rj < ri || (i != j && v == 0) {
			return
		}
		band.SetSymBand(ri, rj, -v)
	})
	s.chol = &mat.BandCholesky{}
	if ok := s.chol.Factorize(band); !ok {
		return solverError("cholesky factorization of the %dx%d reduced system failed, "+
			"the matrix is not negative semi-definite with constant null space", nFree, nFree)
	}
	return nil
}

// Bandwidth of the reordered system, LDLT only
func (s *Solver) Bandwidth() int { return s.bandwidth }

// Pinned reports whether unknown i was held at zero
func (s *Solver) Pinned(i int) bool { return s.pinned[i] }

// Solve solves L X = B column by column
func (s *Solver) Solve(B mat.Matrix) (X *mat.Dense, err error) {
	var (
		nr, nc = B.Dims()
	)
	if !s.factorized {
		return nil, solverError("Solve called before a successful Factorize")
	}
	if nr != s.n {
		return nil, solverError("right hand side has %d rows, system has %d", nr, s.n)
	}
	X = mat.NewDense(nr, nc, nil)
	s.Iterations = 0
	for j := 0; j < nc; j++ {
		var x []float64
		if x, err = s.SolveVec(mat.Col(nil, j, B)); err != nil {
			return nil, err
		}
		X.SetCol(j, x)
	}
	return
}

// SolveVec solves L x = b for one right hand side
func (s *Solver) SolveVec(b []float64) (x []float64, err error) {
	if !s.factorized {
		return nil, solverError("SolveVec called before a successful Factorize")
	}
	if len(b) != s.n {
		return nil, solverError("right hand side has %d rows, system has %d", len(b), s.n)
	}
	switch s.Method {
	case LDLT:
		x, err = s.solveBand(b)
	case CG:
		x, err = s.solveCG(b)
	}
	if err != nil {
		return nil, err
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, solverError("non-finite solution at unknown %d", i)
		}
	}
	return
}

func (s *Solver) solveBand(b []float64) (x []float64, err error) {
	var (
		nFree = len(s.order)
	)
	x = make([]float64, s.n)
	if nFree == 0 {
		return
	}
	rhs := mat.NewVecDense(nFree, nil)
	for r, i := range s.order {
		rhs.SetVec(r, -b[i])
	}
	var sol mat.VecDense
	if err = s.chol.SolveVecTo(&sol, rhs); err != nil {
		// an ill conditioned but successful solve is checked for finiteness by the caller
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, solverError("back substitution failed: %v", err)
		}
		err = nil
	}
	for r, i := range s.order {
		x[i] = sol.AtVec(r)
	}
	return
}
