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

// ReadOBJ reads the vertices and faces of a Wavefront OBJ file. Polygons are
// fan triangulated, texture and normal indices are ignored.
func ReadOBJ(filename string) (m *Mesh, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, ioError("ReadOBJ", filename, err)
	}
	defer file.Close()

	if m, err = ParseOBJ(file); err != nil {
		return nil, ioError("ReadOBJ", filename, err)
	}
	return
}

// ParseOBJ reads OBJ content from r
func ParseOBJ(r io.Reader) (*Mesh, error) {
	var (
		vertices []r3.Vec
		faces    [][3]int
		lineNum  int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		words := strings.Fields(scanner.Text())
		if len(words) == 0 || strings.HasPrefix(words[0], "#") {
			continue
		}

		switch words[0] {
		case "v":
			// an optional fourth component (w, or a vertex colour) is ignored
			if len(words) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates, got %d", lineNum, len(words)-1)
			}
			var xyz [3]float64
			for i := range xyz {
				val, err := strconv.ParseFloat(words[1+i], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				xyz[i] = val
			}
			vertices = append(vertices, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		case "f":
			if len(words) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices, got %d", lineNum, len(words)-1)
			}
			poly := make([]int, 0, len(words)-1)
			for _, word := range words[1:] {
				idx, err := parseOBJIndex(word, len(vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				poly = append(poly, idx)
			}
			for i := 1; i+1 < len(poly); i++ {
				faces = append(faces, [3]int{poly[0], poly[i], poly[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewMesh(vertices, faces)
}

// parseOBJIndex converts a face token like "7", "7/2", "7//3" or "-1" to a
// zero based vertex index
func parseOBJIndex(word string, nVerts int) (idx int, err error) {
	if slash := strings.IndexByte(word, '/'); slash >= 0 {
		word = word[:slash]
	}
	if idx, err = strconv.Atoi(word); err != nil {
		return
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		// relative to the vertices read so far
		idx += nVerts
	default:
		err = fmt.Errorf("face index 0 is not valid in OBJ")
	}
	return
}

// WriteOBJ writes m as an OBJ file with full float64 precision
func WriteOBJ(filename string, m *Mesh) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return ioError("WriteOBJ", filename, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = ioError("WriteOBJ", filename, cerr)
		}
	}()
	if err = FormatOBJ(file, m); err != nil {
		err = ioError("WriteOBJ", filename, err)
	}
	return
}

// FormatOBJ writes m in OBJ syntax to w
func FormatOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	// Write the vertices
	for _, v := range m.vertices {
		if _, err := fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z)); err != nil {
			return err
		}
	}
	// Write the faces, OBJ indices are one based
	for _, tri := range m.faces {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", tri[0]+1, tri[1]+1, tri[2]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
