package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/core"
)

// axisComponent returns the named component of v.
func axisComponent(v r3.Vec, a core.Axis) float64 {
	switch a {
	case core.AxisX:
		return v.X
	case core.AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// SolveEndpoint derives what a line's declared direction (and optional
// target length) determines about the endpoint opposite a fully known one.
//
//   - Single-axis direction with targetLength > 0: the endpoint is fully
//     determined; the canonical choice places it along the positive axis.
//   - Single-axis direction without length: the two pinned orthogonal axes
//     copy from the known endpoint; the varying axis stays open.
//   - Planar direction (xy, xz, yz): the single pinned axis copies.
//   - Free direction: nothing is determined.
func SolveEndpoint(known r3.Vec, dir core.Direction, targetLength float64) core.Triplet {
	var out core.Triplet
	if dir == core.DirFree {
		return out
	}
	for a := core.AxisX; a <= core.AxisZ; a++ {
		if !dir.Varies(a) {
			out.Set(a, axisComponent(known, a))
		}
	}
	if axis, single := dir.SingleAxis(); single && targetLength > 0 {
		out.Set(axis, axisComponent(known, axis)+targetLength)
	}

	return out
}

// LineAligned checks two positioned endpoints against a declared direction
// and returns the largest deviation on a pinned axis. A free direction is
// always aligned.
func LineAligned(a, b r3.Vec, dir core.Direction, tol float64) (bool, float64) {
	worst := 0.0
	for axis := core.AxisX; axis <= core.AxisZ; axis++ {
		if dir.Varies(axis) {
			continue
		}
		if dev := math.Abs(axisComponent(a, axis) - axisComponent(b, axis)); dev > worst {
			worst = dev
		}
	}

	return worst <= tol, worst
}

// LengthDeviation returns |distance(a,b) - target|.
func LengthDeviation(a, b r3.Vec, target float64) float64 {
	return math.Abs(Distance(a, b) - target)
}

// SolveCollinearParam places a partially known point on the line through
// anchors a and b by least squares over its known axes: the returned t
// minimizes the squared error of a + t*(b-a) against the known axes.
// ok is false when the point has no known axis that the line actually
// varies along (underdetermined).
func SolveCollinearParam(a, b r3.Vec, partial core.Triplet) (float64, bool) {
	d := r3.Sub(b, a)
	num, den := 0.0, 0.0
	for axis := core.AxisX; axis <= core.AxisZ; axis++ {
		v, known := partial.At(axis)
		if !known {
			continue
		}
		da := axisComponent(d, axis)
		num += da * (v - axisComponent(a, axis))
		den += da * da
	}
	if den < degenerateEps {
		return 0, false
	}

	return num / den, true
}

// PointOnLine evaluates a + t*(b-a).
func PointOnLine(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
