package mesh

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/gocaricature/types"
)

// ReadMeshFile reads a triangle mesh based on the file extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".obj":
		return ReadOBJ(filename)
	case ".stl":
		return ReadSTL(filename)
	case ".msh":
		return ReadGmsh(filename)
	default:
		return nil, types.NewError(types.KindIO, "ReadMeshFile", -1, "unsupported mesh format: %q", ext)
	}
}

// WriteMeshFile writes m in the format implied by the file extension
func WriteMeshFile(filename string, m *Mesh) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".obj":
		return WriteOBJ(filename, m)
	case ".stl":
		return WriteSTL(filename, m)
	case ".msh":
		return WriteGmsh(filename, m)
	default:
		return types.NewError(types.KindIO, "WriteMeshFile", -1, "unsupported mesh format: %q", ext)
	}
}

// ioError converts a parse or file system failure into an IOError. A
// connectivity error from NewMesh stays in the chain as the cause.
func ioError(op, filename string, err error) error {
	if types.KindOf(err) == types.KindIO {
		return err
	}
	return types.WrapError(types.KindIO, op, fmt.Errorf("%s: %w", filename, err))
}
