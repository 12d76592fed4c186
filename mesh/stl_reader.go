package mesh

import (
	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadSTL reads an ASCII or binary STL file. STL stores every triangle with
// its own corners, so identical corner coordinates are welded into one vertex.
func ReadSTL(filename string) (*Mesh, error) {
	solid, err := stl.ReadFile(filename)
	if err != nil {
		return nil, ioError("ReadSTL", filename, err)
	}
	var (
		vMap     = make(map[stl.Vec3]int)
		vertices []r3.Vec
		faces    = make([][3]int, 0, len(solid.Triangles))
	)
	for _, t := range solid.Triangles {
		var tri [3]int
		for i, vertex := range t.Vertices {
			idx, exists := vMap[vertex]
			if !exists {
				idx = len(vertices)
				vMap[vertex] = idx
				vertices = append(vertices, r3.Vec{
					X: float64(vertex[0]), Y: float64(vertex[1]), Z: float64(vertex[2])})
			}
			tri[i] = idx
		}
		faces = append(faces, tri)
	}
	m, err := NewMesh(vertices, faces)
	if err != nil {
		return nil, ioError("ReadSTL", filename, err)
	}
	return m, nil
}

// WriteSTL writes m as a binary STL file. Coordinates are narrowed to float32.
func WriteSTL(filename string, m *Mesh) error {
	// a binary header starting with "solid" would be taken for ASCII on read
	header := make([]byte, 80)
	copy(header, "binary STL written by gocaricature")
	solid := &stl.Solid{
		Name:         "gocaricature",
		BinaryHeader: header,
		Triangles:    make([]stl.Triangle, len(m.faces)),
	}
	for f := range m.faces {
		p := m.Corners(f)
		n := r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0]))
		if nn := r3.Norm(n); nn > 0 {
			n = r3.Scale(1/nn, n)
		}
		t := &solid.Triangles[f]
		t.Normal = toVec3(n)
		for i := range p {
			t.Vertices[i] = toVec3(p[i])
		}
	}
	if err := solid.WriteFile(filename); err != nil {
		return ioError("WriteSTL", filename, err)
	}
	return nil
}

func toVec3(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
