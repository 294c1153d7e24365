package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// QuatFromAxisAngle builds the unit quaternion rotating by angle (radians)
// around axis. A near-zero axis yields the identity rotation.
func QuatFromAxisAngle(axis r3.Vec, angle float64) quat.Number {
	n := r3.Norm(axis)
	if n < degenerateEps {
		return quat.Number{Real: 1}
	}
	axis = r3.Scale(1/n, axis)
	s, c := math.Sincos(angle / 2)

	return quat.Number{Real: c, Imag: s * axis.X, Jmag: s * axis.Y, Kmag: s * axis.Z}
}

// QuatNormalize scales q to unit length.
func QuatNormalize(q quat.Number) (quat.Number, error) {
	n := quat.Abs(q)
	if n < degenerateEps {
		return quat.Number{}, ErrZeroQuaternion
	}

	return quat.Scale(1/n, q), nil
}

// QuatMul returns the Hamilton product a*b (apply b, then a).
func QuatMul(a, b quat.Number) quat.Number {
	return quat.Mul(a, b)
}

// QuatInv returns the multiplicative inverse; for unit quaternions this is
// the conjugate.
func QuatInv(q quat.Number) quat.Number {
	return quat.Inv(q)
}

// RotateVec rotates v by the unit quaternion q (computes q·v·q⁻¹).
func RotateVec(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))

	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// QuatBetween returns a unit quaternion rotating unit-insensitive vector
// from onto to. Anti-parallel inputs rotate by π around an arbitrary
// orthogonal axis.
func QuatBetween(from, to r3.Vec) quat.Number {
	f, t := r3.Norm(from), r3.Norm(to)
	if f < degenerateEps || t < degenerateEps {
		return quat.Number{Real: 1}
	}
	from = r3.Scale(1/f, from)
	to = r3.Scale(1/t, to)

	d := r3.Dot(from, to)
	if d > 1-degenerateEps {
		return quat.Number{Real: 1}
	}
	if d < -1+degenerateEps {
		ortho := r3.Cross(from, r3.Vec{X: 1})
		if r3.Norm2(ortho) < degenerateEps {
			ortho = r3.Cross(from, r3.Vec{Y: 1})
		}

		return QuatFromAxisAngle(ortho, math.Pi)
	}
	axis := r3.Cross(from, to)

	return QuatFromAxisAngle(axis, math.Acos(math.Max(-1, math.Min(1, d))))
}

// QuatToMatrix converts a quaternion to a row-major 3×3 rotation matrix.
func QuatToMatrix(q quat.Number) [9]float64 {
	q, err := QuatNormalize(q)
	if err != nil {
		q = quat.Number{Real: 1}
	}
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	return [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}
}

// MatrixToQuat converts a row-major rotation matrix to a unit quaternion
// using Shepperd's method (largest diagonal pivot for stability).
func MatrixToQuat(m [9]float64) quat.Number {
	trace := m[0] + m[4] + m[8]
	var q quat.Number
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = quat.Number{
			Real: s / 4,
			Imag: (m[7] - m[5]) / s,
			Jmag: (m[2] - m[6]) / s,
			Kmag: (m[3] - m[1]) / s,
		}
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1+m[0]-m[4]-m[8]) * 2
		q = quat.Number{
			Real: (m[7] - m[5]) / s,
			Imag: s / 4,
			Jmag: (m[1] + m[3]) / s,
			Kmag: (m[2] + m[6]) / s,
		}
	case m[4] > m[8]:
		s := math.Sqrt(1+m[4]-m[0]-m[8]) * 2
		q = quat.Number{
			Real: (m[2] - m[6]) / s,
			Imag: (m[1] + m[3]) / s,
			Jmag: s / 4,
			Kmag: (m[5] + m[7]) / s,
		}
	default:
		s := math.Sqrt(1+m[8]-m[0]-m[4]) * 2
		q = quat.Number{
			Real: (m[3] - m[1]) / s,
			Imag: (m[2] + m[6]) / s,
			Jmag: (m[5] + m[7]) / s,
			Kmag: s / 4,
		}
	}
	normalized, err := QuatNormalize(q)
	if err != nil {
		return quat.Number{Real: 1}
	}

	return normalized
}
