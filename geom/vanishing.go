package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is an image-space line segment in pixel coordinates.
type Segment struct {
	U1, V1 float64
	U2, V2 float64
}

// homogeneousLine returns the homogeneous line through the segment's
// endpoints, scaled so a²+b²=1. With that normalization |a*u+b*v+c| is the
// point-to-line distance, which makes the least-squares residuals below
// geometric rather than algebraic.
func homogeneousLine(s Segment) ([3]float64, error) {
	p1 := r3.Vec{X: s.U1, Y: s.V1, Z: 1}
	p2 := r3.Vec{X: s.U2, Y: s.V2, Z: 1}
	l := r3.Cross(p1, p2)
	n := math.Hypot(l.X, l.Y)
	if n < homogeneousEps {
		return [3]float64{}, ErrDegenerateSegment
	}

	return [3]float64{l.X / n, l.Y / n, l.Z / n}, nil
}

// VanishingPoint estimates the common intersection of two or more image
// lines sharing a world axis. Two lines intersect exactly via the
// homogeneous cross product; more than two are reconciled by least
// squares, minimizing the sum of squared point-to-line distances.
// Near-parallel bundles yield ErrVanishingAtInfinity.
func VanishingPoint(segments []Segment) (float64, float64, error) {
	if len(segments) < 2 {
		return 0, 0, ErrTooFewLines
	}

	lines := make([][3]float64, len(segments))
	for i, s := range segments {
		l, err := homogeneousLine(s)
		if err != nil {
			return 0, 0, err
		}
		lines[i] = l
	}

	if len(lines) == 2 {
		a := r3.Vec{X: lines[0][0], Y: lines[0][1], Z: lines[0][2]}
		b := r3.Vec{X: lines[1][0], Y: lines[1][1], Z: lines[1][2]}
		v := r3.Cross(a, b)
		if math.Abs(v.Z) < homogeneousEps {
			return 0, 0, ErrVanishingAtInfinity
		}

		return v.X / v.Z, v.Y / v.Z, nil
	}

	// Overdetermined: minimize Σ (aᵢu + bᵢv + cᵢ)² over (u, v).
	a := mat.NewDense(len(lines), 2, nil)
	b := mat.NewVecDense(len(lines), nil)
	for i, l := range lines {
		a.Set(i, 0, l[0])
		a.Set(i, 1, l[1])
		b.SetVec(i, -l[2])
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return 0, 0, ErrVanishingAtInfinity
	}

	return sol.AtVec(0), sol.AtVec(1), nil
}
