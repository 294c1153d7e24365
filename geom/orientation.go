package geom

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/core"
)

// OrientationFromVanishing derives a camera-orientation hint from per-axis
// vanishing points and rough intrinsics (fx, fy, cx, cy). Each vanishing
// point back-projects to the camera-frame direction of its world axis;
// with two or more axes the directions are orthonormalized into a rotation
// and returned as a unit quaternion for the optimizer to start from.
//
// With fewer than two estimated axes the orientation is unrecoverable and
// ErrTooFewAxes is returned.
func OrientationFromVanishing(vps map[core.Axis][2]float64, fx, fy, cx, cy float64) (quat.Number, error) {
	dirs := make(map[core.Axis]r3.Vec, len(vps))
	for axis, vp := range vps {
		d := r3.Vec{X: (vp[0] - cx) / fx, Y: (vp[1] - cy) / fy, Z: 1}
		dirs[axis] = r3.Unit(d)
	}
	if len(dirs) < 2 {
		return quat.Number{}, ErrTooFewAxes
	}

	// Pick the two axes present in X,Y,Z order, orthogonalize the second
	// against the first, then complete the right-handed frame.
	order := []core.Axis{core.AxisX, core.AxisY, core.AxisZ}
	var have []core.Axis
	for _, a := range order {
		if _, ok := dirs[a]; ok {
			have = append(have, a)
		}
	}

	first, second := have[0], have[1]
	c1 := dirs[first]
	c2 := r3.Sub(dirs[second], r3.Scale(r3.Dot(dirs[second], c1), c1))
	if r3.Norm2(c2) < degenerateEps {
		return quat.Number{}, ErrTooFewAxes
	}
	c2 = r3.Unit(c2)

	var cols [3]r3.Vec
	cols[first] = c1
	cols[second] = c2

	// The missing column follows from the right-handed cross products
	// x = y×z, y = z×x, z = x×y.
	switch {
	case first == core.AxisX && second == core.AxisY:
		cols[core.AxisZ] = r3.Cross(cols[core.AxisX], cols[core.AxisY])
	case first == core.AxisX && second == core.AxisZ:
		cols[core.AxisY] = r3.Cross(cols[core.AxisZ], cols[core.AxisX])
	default: // Y and Z estimated
		cols[core.AxisX] = r3.Cross(cols[core.AxisY], cols[core.AxisZ])
	}

	// Columns are world-axis directions in camera frame: R maps world to camera.
	m := [9]float64{
		cols[0].X, cols[1].X, cols[2].X,
		cols[0].Y, cols[1].Y, cols[2].Y,
		cols[0].Z, cols[1].Z, cols[2].Z,
	}

	return MatrixToQuat(m), nil
}
