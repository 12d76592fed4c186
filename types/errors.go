package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the deformation pipeline so that callers
// can report the specific cause
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindInvalidMesh
	KindDegenerateGeometry
	KindCurvatureEstimation
	KindTopologyMismatch
	KindSolver
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidMesh:
		return "InvalidMeshError"
	case KindDegenerateGeometry:
		return "DegenerateGeometryError"
	case KindCurvatureEstimation:
		return "CurvatureEstimationError"
	case KindTopologyMismatch:
		return "TopologyMismatchError"
	case KindSolver:
		return "SolverError"
	case KindIO:
		return "IOError"
	}
	return "UnknownError"
}

var (
	ErrInvalidMesh         = &Error{Kind: KindInvalidMesh, Index: -1}
	ErrDegenerateGeometry  = &Error{Kind: KindDegenerateGeometry, Index: -1}
	ErrCurvatureEstimation = &Error{Kind: KindCurvatureEstimation, Index: -1}
	ErrTopologyMismatch    = &Error{Kind: KindTopologyMismatch, Index: -1}
	ErrSolver              = &Error{Kind: KindSolver, Index: -1}
	ErrIO                  = &Error{Kind: KindIO, Index: -1}
)

// Error carries the failure kind, the operation that detected it and, when
// meaningful, the offending vertex or face index (-1 otherwise)
type Error struct {
	Kind  ErrorKind
	Op    string
	Index int
	Msg   string
	Err   error
}

func NewError(kind ErrorKind, op string, index int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:  kind,
		Op:    op,
		Index: index,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// WrapError attaches a kind to an underlying error, typically from the file system or a library
func WrapError(kind ErrorKind, op string, err error) *Error {
	return &Error{
		Kind:  kind,
		Op:    op,
		Index: -1,
		Msg:   err.Error(),
		Err:   err,
	}
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s += " in " + e.Op
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, which makes the package sentinels usable with errors.Is
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
