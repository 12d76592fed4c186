package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly format for the mesh operators: entries are accumulated
// one contribution at a time and the result is frozen into a CSR
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// Accumulate adds val to the (i,j) entry, creating it if absent
func (m DOK) Accumulate(i, j int, val float64) { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) Set(i, j int, val float64) { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is the immutable form of an assembled operator
type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}
func (m CSR) NNZ() int     { return m.M.NNZ() }
func (m CSR) Name() string { return m.name }

// MulVec returns A*x
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch in %s MulVec: %d columns, len(x) = %d", m.name, nc, len(x)))
	}
	y = make([]float64, nr)
	// MulVecTo accumulates into its destination
	m.M.MulVecTo(y, false, x)
	return
}

// MulVecTrans returns A^T*x
func (m CSR) MulVecTrans(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nr {
		panic(fmt.Errorf("dimension mismatch in %s MulVecTrans: %d rows, len(x) = %d", m.name, nr, len(x)))
	}
	y = make([]float64, nc)
	m.M.MulVecTo(y, true, x)
	return
}

// MulDense applies the operator to every column of X
func (m CSR) MulDense(X *mat.Dense) (R *mat.Dense) {
	var (
		nr, _  = m.Dims()
		_, ncX = X.Dims()
	)
	R = mat.NewDense(nr, ncX, nil)
	for j := 0; j < ncX; j++ {
		R.SetCol(j, m.MulVec(mat.Col(nil, j, X)))
	}
	return
}

// DoNonZero calls fn for every stored entry in row order
func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

func (m CSR) RowSums() (sums []float64) {
	var (
		raw = m.RawMatrix()
	)
	sums = make([]float64, raw.I)
	for i := 0; i < raw.I; i++ {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			sums[i] += raw.Data[k]
		}
	}
	return
}

// Row returns the column indices and values stored for row i, aliasing the
// CSR storage
func (m CSR) Row(i int) (cols []int, vals []float64) {
	var (
		raw = m.RawMatrix()
	)
	cols = raw.Ind[raw.Indptr[i]:raw.Indptr[i+1]]
	vals = raw.Data[raw.Indptr[i]:raw.Indptr[i+1]]
	return
}

// Diagonal returns the main diagonal of a square matrix
func (m CSR) Diagonal() (d []float64) {
	var (
		nr, _ = m.Dims()
	)
	d = make([]float64, nr)
	for i := 0; i < nr; i++ {
		cols, vals := m.Row(i)
		for k, j := range cols {
			if j == i {
				d[i] += vals[k]
			}
		}
	}
	return
}

// IsSymmetric checks |A_ij - A_ji| <= tol over all stored entries
func (m CSR) IsSymmetric(tol float64) bool {
	var (
		nr, nc = m.Dims()
		sym    = nr == nc
	)
	if !sym {
		return false
	}
	m.DoNonZero(func(i, j int, v float64) {
		if !sym {
			return
		}
		d := v - m.At(j, i)
		if d > tol || d < -tol {
			sym = false
		}
	})
	return sym
}
