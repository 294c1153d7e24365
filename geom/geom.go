package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sentinel errors for geometry operations.
var (
	// ErrTooFewPoints indicates a plane fit was attempted with fewer than three points.
	ErrTooFewPoints = errors.New("geom: plane fit needs at least three points")
	// ErrDegeneratePlane indicates the points do not span a plane (collinear or coincident).
	ErrDegeneratePlane = errors.New("geom: points are collinear or coincident")
	// ErrTooFewLines indicates a vanishing point was requested from fewer than two lines.
	ErrTooFewLines = errors.New("geom: vanishing point needs at least two lines")
	// ErrDegenerateSegment indicates a vanishing line with coincident endpoints.
	ErrDegenerateSegment = errors.New("geom: vanishing line endpoints coincide")
	// ErrVanishingAtInfinity indicates a near-parallel bundle whose intersection
	// lies at infinity in the image plane.
	ErrVanishingAtInfinity = errors.New("geom: vanishing point at infinity")
	// ErrTooFewAxes indicates an orientation hint was requested from fewer
	// than two estimated vanishing directions.
	ErrTooFewAxes = errors.New("geom: orientation hint needs two vanishing axes")
	// ErrZeroQuaternion indicates an attempt to normalize a zero quaternion.
	ErrZeroQuaternion = errors.New("geom: cannot normalize zero quaternion")
)

// homogeneousEps bounds the w component below which a dehomogenized point
// is treated as lying at infinity.
const homogeneousEps = 1e-12

// degenerateEps bounds squared lengths below which vectors are treated as zero.
const degenerateEps = 1e-12

// Distance returns the Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// AngleBetween returns the angle in radians at vertex between the rays to
// a and c. Degenerate rays yield 0.
func AngleBetween(a, vertex, c r3.Vec) float64 {
	u := r3.Sub(a, vertex)
	v := r3.Sub(c, vertex)
	nu, nv := r3.Norm(u), r3.Norm(v)
	if nu < degenerateEps || nv < degenerateEps {
		return 0
	}
	cos := r3.Dot(u, v) / (nu * nv)
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos)
}

// Collinear reports whether c lies on the line through a and b within tol
// (perpendicular distance).
func Collinear(a, b, c r3.Vec, tol float64) bool {
	d := r3.Sub(b, a)
	if r3.Norm2(d) < degenerateEps {
		return Distance(a, c) <= tol
	}
	perp := r3.Sub(r3.Sub(c, a), r3.Scale(r3.Dot(r3.Sub(c, a), d)/r3.Norm2(d), d))

	return r3.Norm(perp) <= tol
}

// ProjectOnLine returns the orthogonal projection of pt onto the line
// through a and b and the line parameter t with projection = a + t*(b-a).
func ProjectOnLine(a, b, pt r3.Vec) (r3.Vec, float64) {
	d := r3.Sub(b, a)
	n2 := r3.Norm2(d)
	if n2 < degenerateEps {
		return a, 0
	}
	t := r3.Dot(r3.Sub(pt, a), d) / n2

	return r3.Add(a, r3.Scale(t, d)), t
}
