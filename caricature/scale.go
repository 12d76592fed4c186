package caricature

import (
	"math"

	"github.com/notargets/gocaricature/mesh"
	"github.com/notargets/gocaricature/types"
)

// CheckTopology requires the reference to index its faces exactly as the
// source does; vertex positions are free to differ
func CheckTopology(src, ref *mesh.Mesh) error {
	diff, err := src.SameConnectivity(ref)
	if err != nil {
		return types.NewError(types.KindTopologyMismatch, "CheckTopology", -1,
			"source and reference: %v", err)
	}
	if diff >= 0 {
		return types.NewError(types.KindTopologyMismatch, "CheckTopology", diff,
			"face %d is %v in the source and %v in the reference", diff, src.Face(diff), ref.Face(diff))
	}
	return nil
}

// Gamma computes beta * ln(dblASrc / dblARef) per face
func Gamma(beta float64, dblASrc, dblARef []float64) (gamma []float64, err error) {
	if len(dblASrc) != len(dblARef) {
		err = types.NewError(types.KindTopologyMismatch, "Gamma", -1,
			"%d source faces and %d reference faces", len(dblASrc), len(dblARef))
		return
	}
	gamma = make([]float64, len(dblASrc))
	for f := range gamma {
		if dblARef[f] == 0 {
			return nil, types.NewError(types.KindDegenerateGeometry, "Gamma", f,
				"reference face %d has zero area", f)
		}
		ratio := dblASrc[f] / dblARef[f]
		if !(ratio > 0) || math.IsInf(ratio, 0) {
			return nil, types.NewError(types.KindDegenerateGeometry, "Gamma", f,
				"area ratio %g at face %d has no logarithm", ratio, f)
		}
		gamma[f] = beta * math.Log(ratio)
	}
	return
}

// FaceScale computes |K_f|^gamma_f. The absolute value keeps the power real
// for saddle shaped regions, at the cost of the curvature sign. Curvatures
// below floor in magnitude are raised to floor first.
func FaceScale(K, gamma []float64, floor float64) (scale []float64, err error) {
	if len(K) != len(gamma) {
		err = types.NewError(types.KindTopologyMismatch, "FaceScale", -1,
			"%d curvature values for %d faces", len(K), len(gamma))
		return
	}
	scale = make([]float64, len(K))
	for f := range scale {
		k := math.Max(math.Abs(K[f]), floor)
		scale[f] = math.Pow(k, gamma[f])
		if math.IsNaN(scale[f]) || math.IsInf(scale[f], 0) {
			return nil, types.NewError(types.KindDegenerateGeometry, "FaceScale", f,
				"scale |K|^gamma = %g^%g is not finite at face %d", k, gamma[f], f)
		}
	}
	return
}

// Stack repeats a per face scalar for the x, y and z blocks of a 3|F|
// gradient vector
func Stack(faceField []float64) (stacked []float64) {
	nf := len(faceField)
	stacked = make([]float64, 3*nf)
	for d := 0; d < 3; d++ {
		copy(stacked[d*nf:(d+1)*nf], faceField)
	}
	return
}

// ScaleField is Stack(FaceScale(K, gamma, floor)), with a zero floor by default
func ScaleField(K, gamma []float64, floorO ...float64) (stacked []float64, err error) {
	var (
		scale []float64
		floor float64
	)
	if len(floorO) != 0 {
		floor = floorO[0]
	}
	if scale, err = FaceScale(K, gamma, floor); err != nil {
		return
	}
	return Stack(scale), nil
}
