package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 10})
		assert.Equal(t, EdgeKey(10*(1<<32)), en)
		assert.Equal(t, [2]int{0, 10}, en.GetVertices(false))
		assert.Equal(t, [2]int{10, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 100001})
		assert.Equal(t, EdgeKey(100001*(1<<32)+100), en)
		assert.Equal(t, [2]int{100, 100001}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Triangle edges are shared regardless of winding
		e1 := TriangleEdges([3]int{0, 1, 2})
		e2 := TriangleEdges([3]int{2, 1, 3})
		assert.Equal(t, e1[0], NewEdgeKey([2]int{1, 0}))
		assert.Equal(t, e1[1], e2[0])
	}
}

func TestErrorKinds(t *testing.T) {
	sentinels := []error{ErrInvalidMesh, ErrDegenerateGeometry, ErrCurvatureEstimation,
		ErrTopologyMismatch, ErrSolver, ErrIO}
	kinds := []ErrorKind{KindInvalidMesh, KindDegenerateGeometry, KindCurvatureEstimation,
		KindTopologyMismatch, KindSolver, KindIO}
	for i, kind := range kinds {
		err := NewError(kind, "test", 3, "value %d", i)
		wrapped := fmt.Errorf("outer: %w", err)
		for j, s := range sentinels {
			assert.Equal(t, i == j, errors.Is(wrapped, s), "kind %s against %v", kind, s)
		}
		assert.Equal(t, kind, KindOf(wrapped))
		assert.Contains(t, err.Error(), kind.String())
	}
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	base := errors.New("no such file")
	err := WrapError(KindIO, "ReadMeshFile", base)
	assert.True(t, errors.Is(err, base))
	assert.True(t, errors.Is(err, ErrIO))
	assert.Equal(t, "IOError in ReadMeshFile: no such file", err.Error())
}
