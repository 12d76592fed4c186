package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Gmsh 2.2 element types carried by a surface mesh
const (
	gmshPoint    = 15
	gmshLine     = 1
	gmshTriangle = 2
	gmshQuad     = 3
)

// ReadGmsh reads the surface elements of an ASCII Gmsh 2.2 file
func ReadGmsh(filename string) (m *Mesh, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, ioError("ReadGmsh", filename, err)
	}
	defer file.Close()

	if m, err = ParseGmsh(file); err != nil {
		return nil, ioError("ReadGmsh", filename, err)
	}
	return
}

type gmshSurface struct {
	nodes   map[int]r3.Vec // node ID to coordinates
	nodeIDs []int          // node IDs in file order
	elems   [][]int        // triangles and quads as node IDs
}

// ParseGmsh reads Gmsh 2.2 ASCII content from r. Triangles are kept, quads
// are split into two triangles, points and lines are skipped. Nodes no
// surface element references are dropped and the rest are numbered in file
// order.
func ParseGmsh(r io.Reader) (*Mesh, error) {
	var (
		gs = &gmshSurface{nodes: make(map[int]r3.Vec)}
	)
	scanner := bufio.NewScanner(r)

	// Increase scanner buffer for large files
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "$MeshFormat":
			if err := readGmshFormat(scanner); err != nil {
				return nil, err
			}
		case "$Nodes":
			if err := gs.readNodes(scanner); err != nil {
				return nil, err
			}
		case "$Elements":
			if err := gs.readElements(scanner); err != nil {
				return nil, err
			}
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				if err := skipSection(scanner, "$End"+line[1:]); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return gs.toMesh()
}

func readGmshFormat(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2") {
		return fmt.Errorf("unsupported Gmsh version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	return skipSection(scanner, "$EndMeshFormat")
}

func (gs *gmshSurface) readNodes(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of nodes: %w", err)
	}
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Nodes at node %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node entry at line %d", i+1)
		}
		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %w", err)
		}
		var xyz [3]float64
		for j := range xyz {
			if xyz[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
				return fmt.Errorf("invalid coordinate: %w", err)
			}
		}
		if _, dup := gs.nodes[nodeID]; dup {
			return fmt.Errorf("node %d defined twice", nodeID)
		}
		gs.nodes[nodeID] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		gs.nodeIDs = append(gs.nodeIDs, nodeID)
	}
	return skipSection(scanner, "$EndNodes")
}

func (gs *gmshSurface) readElements(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}
	numElems, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of elements: %w", err)
	}
	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Elements at element %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid element entry at line %d", i+1)
		}
		ints := make([]int, len(fields))
		for j, f := range fields {
			if ints[j], err = strconv.Atoi(f); err != nil {
				return fmt.Errorf("element entry at line %d: %w", i+1, err)
			}
		}
		elemID, gmshType, numTags := ints[0], ints[1], ints[2]
		if numTags < 0 || 3+numTags > len(ints) {
			return fmt.Errorf("element %d has %d tags, line has %d fields", elemID, numTags, len(ints))
		}
		nodeIDs := ints[3+numTags:]
		var want int
		switch gmshType {
		case gmshPoint, gmshLine:
			continue
		case gmshTriangle:
			want = 3
		case gmshQuad:
			want = 4
		default:
			return fmt.Errorf("element %d has type %d, only points, lines, triangles and quads belong in a surface mesh",
				elemID, gmshType)
		}
		if len(nodeIDs) != want {
			return fmt.Errorf("element %d of type %d expects %d nodes, got %d",
				elemID, gmshType, want, len(nodeIDs))
		}
		gs.elems = append(gs.elems, nodeIDs)
	}
	return skipSection(scanner, "$EndElements")
}

func (gs *gmshSurface) toMesh() (*Mesh, error) {
	var (
		used  = make(map[int]bool)
		index = make(map[int]int)
	)
	for _, elem := range gs.elems {
		for _, id := range elem {
			if _, ok := gs.nodes[id]; !ok {
				return nil, fmt.Errorf("element references undefined node %d", id)
			}
			used[id] = true
		}
	}
	vertices := make([]r3.Vec, 0, len(used))
	for _, id := range gs.nodeIDs {
		if used[id] {
			index[id] = len(vertices)
			vertices = append(vertices, gs.nodes[id])
		}
	}
	faces := make([][3]int, 0, len(gs.elems))
	for _, elem := range gs.elems {
		for i := 1; i+1 < len(elem); i++ {
			faces = append(faces, [3]int{index[elem[0]], index[elem[i]], index[elem[i+1]]})
		}
	}
	return NewMesh(vertices, faces)
}

// skipSection skips until the end marker
func skipSection(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("missing %s", endMarker)
}

// WriteGmsh writes m as an ASCII Gmsh 2.2 file of triangles
func WriteGmsh(filename string, m *Mesh) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return ioError("WriteGmsh", filename, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = ioError("WriteGmsh", filename, cerr)
		}
	}()
	if err = FormatGmsh(file, m); err != nil {
		err = ioError("WriteGmsh", filename, err)
	}
	return
}

// FormatGmsh writes m in Gmsh 2.2 ASCII syntax to w, with one based node and
// element IDs and the two default tags
func FormatGmsh(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	fmt.Fprintf(bw, "$Nodes\n%d\n", len(m.vertices))
	for i, v := range m.vertices {
		fmt.Fprintf(bw, "%d %s %s %s\n", i+1, formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
	}
	fmt.Fprintf(bw, "$EndNodes\n$Elements\n%d\n", len(m.faces))
	for f, tri := range m.faces {
		fmt.Fprintf(bw, "%d %d 2 0 1 %d %d %d\n", f+1, gmshTriangle, tri[0]+1, tri[1]+1, tri[2]+1)
	}
	if _, err := fmt.Fprintf(bw, "$EndElements\n"); err != nil {
		return err
	}
	return bw.Flush()
}
