package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func pathLaplacian(n int) CSR {
	L := NewDOK(n, n)
	for i := 0; i < n-1; i++ {
		L.Accumulate(i, i+1, 1)
		L.Accumulate(i+1, i, 1)
		L.Accumulate(i, i, -1)
		L.Accumulate(i+1, i+1, -1)
	}
	L.SetReadOnly("L")
	return L.ToCSR()
}

func TestDOK(t *testing.T) {
	A := NewDOK(2, 3)
	A.Accumulate(0, 1, 2)
	A.Accumulate(0, 1, 3)
	A.Set(1, 2, -1)
	assert.Equal(t, 5., A.At(0, 1))
	assert.Equal(t, 2, A.NNZ())
	r, c := A.T().Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)

	A.SetReadOnly("A")
	assert.PanicsWithError(t, `attempt to write to a read only matrix named: "A"`, func() { A.Set(0, 0, 1) })
	assert.Panics(t, func() { A.Accumulate(0, 0, 1) })

	B := A.ToCSR()
	assert.Equal(t, "A", B.Name())
	assert.Equal(t, 2, B.NNZ())
	assert.Equal(t, -1., B.At(1, 2))
}

func TestCSR(t *testing.T) {
	L := pathLaplacian(4)
	assert.Equal(t, []float64{0, 0, 0, 0}, L.RowSums())
	assert.Equal(t, []float64{-1, -2, -2, -1}, L.Diagonal())
	assert.True(t, L.IsSymmetric(0))

	cols, vals := L.Row(1)
	row := make(map[int]float64)
	for k, j := range cols {
		row[j] = vals[k]
	}
	assert.Equal(t, map[int]float64{0: 1, 1: -2, 2: 1}, row)

	x := []float64{1, 2, 4, 8}
	assert.Equal(t, []float64{1, 1, 2, -4}, L.MulVec(x))
	assert.Equal(t, L.MulVec(x), L.MulVecTrans(x))
	assert.Panics(t, func() { L.MulVec([]float64{1}) })

	X := mat.NewDense(4, 2, []float64{
		1, 0,
		2, 0,
		4, 1,
		8, 1,
	})
	R := L.MulDense(X)
	assert.Equal(t, []float64{1, 1, 2, -4}, mat.Col(nil, 0, R))
	assert.Equal(t, []float64{0, 1, -1, 0}, mat.Col(nil, 1, R))

	var count int
	L.DoNonZero(func(i, j int, v float64) { count++ })
	assert.Equal(t, L.NNZ(), count)
	assert.Len(t, L.Data(), count)
}

func TestIsSymmetric(t *testing.T) {
	A := NewDOK(2, 2)
	A.Set(0, 1, 1)
	A.Set(1, 0, 1.5)
	require.False(t, A.ToCSR().IsSymmetric(0.1))
	assert.True(t, A.ToCSR().IsSymmetric(0.5))

	R := NewDOK(2, 3)
	assert.False(t, R.ToCSR().IsSymmetric(1))
}
