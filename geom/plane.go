package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/core"
)

// FitPlane fits ax+by+cz+d=0 to three or more points by least squares:
// the normal is the singular vector of the centered point matrix belonging
// to its smallest singular value. The returned equation is normalized so
// a²+b²+c²=1; the sign is not significant. The second return value is the
// RMS point-to-plane distance of the fit.
func FitPlane(pts []r3.Vec) ([4]float64, float64, error) {
	if len(pts) < 3 {
		return [4]float64{}, 0, ErrTooFewPoints
	}

	var centroid r3.Vec
	for _, pt := range pts {
		centroid = r3.Add(centroid, pt)
	}
	centroid = r3.Scale(1/float64(len(pts)), centroid)

	centered := mat.NewDense(len(pts), 3, nil)
	for i, pt := range pts {
		rel := r3.Sub(pt, centroid)
		centered.SetRow(i, []float64{rel.X, rel.Y, rel.Z})
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return [4]float64{}, 0, ErrDegeneratePlane
	}
	var v mat.Dense
	svd.VTo(&v)
	sigma := svd.Values(nil)

	// The two largest singular values must both be non-trivial for the
	// points to span a plane rather than a line or a single location.
	if sigma[1] < 1e-9*math.Max(sigma[0], 1) {
		return [4]float64{}, 0, ErrDegeneratePlane
	}

	normal := r3.Vec{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)}
	n := r3.Norm(normal)
	if n < degenerateEps {
		return [4]float64{}, 0, ErrDegeneratePlane
	}
	normal = r3.Scale(1/n, normal)

	eq := [4]float64{normal.X, normal.Y, normal.Z, -r3.Dot(normal, centroid)}

	sumSq := 0.0
	for _, pt := range pts {
		dev := PointPlaneDistance(eq, pt)
		sumSq += dev * dev
	}

	return eq, math.Sqrt(sumSq / float64(len(pts))), nil
}

// PointPlaneDistance returns the absolute distance from pt to the plane.
// The equation must be normalized (a²+b²+c²=1), as FitPlane produces.
func PointPlaneDistance(eq [4]float64, pt r3.Vec) float64 {
	return math.Abs(eq[0]*pt.X + eq[1]*pt.Y + eq[2]*pt.Z + eq[3])
}

// ProjectOnPlane returns the orthogonal projection of pt onto the plane.
func ProjectOnPlane(eq [4]float64, pt r3.Vec) r3.Vec {
	signed := eq[0]*pt.X + eq[1]*pt.Y + eq[2]*pt.Z + eq[3]

	return r3.Sub(pt, r3.Scale(signed, r3.Vec{X: eq[0], Y: eq[1], Z: eq[2]}))
}

// SolvePlaneAxis solves the plane equation for one missing axis of a
// point whose other two axes are known. ok is false when the point does
// not have exactly the two complementary axes set, or when the plane is
// too parallel to the missing axis for a well-conditioned solve.
func SolvePlaneAxis(eq [4]float64, partial core.Triplet, missing core.Axis) (float64, bool) {
	if _, set := partial.At(missing); set || partial.Known() != 2 {
		return 0, false
	}
	coef := eq[int(missing)]
	if math.Abs(coef) < 1e-6 {
		return 0, false
	}
	sum := eq[3]
	vals := partial.Values()
	for a := core.AxisX; a <= core.AxisZ; a++ {
		if a == missing {
			continue
		}
		sum += eq[int(a)] * vals[a]
	}

	return -sum / coef, true
}
