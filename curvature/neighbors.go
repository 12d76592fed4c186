package curvature

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gocaricature/mesh"
)

// vertexPoint is a mesh vertex stored in the kd-tree, remembering its index
type vertexPoint struct {
	P   r3.Vec
	idx int
}

func (v *vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*vertexPoint)
	switch d {
	case 0:
		return v.P.X - q.P.X
	case 1:
		return v.P.Y - q.P.Y
	case 2:
		return v.P.Z - q.P.Z
	}
	panic("unreachable")
}

func (v *vertexPoint) Dims() int { return 3 }

func (v *vertexPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(v.P, c.(*vertexPoint).P))
}

type vertexCloud []vertexPoint

// Index returns the ith element of the list of points.
func (vc vertexCloud) Index(i int) kdtree.Comparable { return &vc[i] }

// Len returns the length of the list.
func (vc vertexCloud) Len() int { return len(vc) }

// Pivot partitions the list based on the dimension specified.
func (vc vertexCloud) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, points: vc}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (vc vertexCloud) Slice(start, end int) kdtree.Interface { return vc[start:end] }

// Bounds implements the kdtree.Bounder interface
func (vc vertexCloud) Bounds() *kdtree.Bounding {
	min := vertexPoint{P: r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}}
	max := vertexPoint{P: r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}}
	for _, v := range vc {
		min.P = r3.Vec{X: math.Min(min.P.X, v.P.X), Y: math.Min(min.P.Y, v.P.Y), Z: math.Min(min.P.Z, v.P.Z)}
		max.P = r3.Vec{X: math.Max(max.P.X, v.P.X), Y: math.Max(max.P.Y, v.P.Y), Z: math.Max(max.P.Z, v.P.Z)}
	}
	return &kdtree.Bounding{
		Min: &min,
		Max: &max,
	}
}

type kdPlane struct {
	dim    kdtree.Dim
	points vertexCloud
}

func (p kdPlane) Less(i, j int) bool {
	return p.points[i].Compare(&p.points[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p kdPlane) Len() int {
	return len(p.points)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// neighborhood selects the vertices used to fit the surface around a vertex
type neighborhood interface {
	around(v int) []int
}

type ringNeighborhood struct {
	m     *mesh.Mesh
	rings int
}

func (rn ringNeighborhood) around(v int) []int {
	if len(rn.m.Neighbors(v)) == 0 {
		return nil
	}
	return rn.m.Rings(v, rn.rings)
}

// knnNeighborhood uses the k nearest vertices in space instead of the mesh
// graph, which is less sensitive to irregular triangulations
type knnNeighborhood struct {
	m    *mesh.Mesh
	k    int
	tree *kdtree.Tree
}

func newKNNNeighborhood(m *mesh.Mesh, k int) *knnNeighborhood {
	cloud := make(vertexCloud, m.NumVertices())
	for i := range cloud {
		cloud[i] = vertexPoint{P: m.Vertex(i), idx: i}
	}
	return &knnNeighborhood{
		m:    m,
		k:    k,
		tree: kdtree.New(cloud, true),
	}
}

func (kn *knnNeighborhood) around(v int) (nbrs []int) {
	// vertices outside every face carry no surface to fit
	if len(kn.m.VertexFaces(v)) == 0 {
		return nil
	}
	keeper := kdtree.NewNKeeper(kn.k + 1)
	kn.tree.NearestSet(keeper, &vertexPoint{P: kn.m.Vertex(v), idx: v})
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		if idx := cd.Comparable.(*vertexPoint).idx; idx != v {
			nbrs = append(nbrs, idx)
		}
	}
	return
}
