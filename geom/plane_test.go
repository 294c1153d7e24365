package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/core"
	"github.com/mfagerlund/Rotera-sub004/geom"
)

// TestFitPlane_Flat fits four points in the z=0 plane and expects the
// normalized equation z=0 (up to sign) with zero residual.
func TestFitPlane_Flat(t *testing.T) {
	pts := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 1, Y: 1, Z: 0},
	}

	eq, rms, err := geom.FitPlane(pts)
	require.NoError(t, err, "planar points must fit")
	assert.InDelta(t, 0.0, rms, 1e-12, "flat points have zero residual")
	assert.InDelta(t, 1.0, math.Abs(eq[2]), 1e-12, "normal is ±z")
	assert.InDelta(t, 0.0, eq[0], 1e-12, "no x component")
	assert.InDelta(t, 0.0, eq[1], 1e-12, "no y component")
	assert.InDelta(t, 0.0, eq[3], 1e-12, "plane passes through origin")
}

// TestFitPlane_Errors covers too few points and collinear degeneracy.
func TestFitPlane_Errors(t *testing.T) {
	_, _, err := geom.FitPlane([]r3.Vec{{X: 1}, {X: 2}})
	assert.ErrorIs(t, err, geom.ErrTooFewPoints, "two points cannot span a plane")

	collinear := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	_, _, err = geom.FitPlane(collinear)
	assert.ErrorIs(t, err, geom.ErrDegeneratePlane, "collinear points must be rejected")
}

// TestPointPlaneDistance measures the perpendicular distance to z=0.
func TestPointPlaneDistance(t *testing.T) {
	eq := [4]float64{0, 0, 1, 0}

	assert.InDelta(t, 2.5, geom.PointPlaneDistance(eq, r3.Vec{X: 7, Y: -3, Z: 2.5}), 1e-12,
		"distance is |z| for the z=0 plane")
}

// TestProjectOnPlane drops a point perpendicularly onto z=0.
func TestProjectOnPlane(t *testing.T) {
	eq := [4]float64{0, 0, 1, 0}

	proj := geom.ProjectOnPlane(eq, r3.Vec{X: 1, Y: 2, Z: 5})
	assert.InDelta(t, 1.0, proj.X, 1e-12, "x unchanged")
	assert.InDelta(t, 2.0, proj.Y, 1e-12, "y unchanged")
	assert.InDelta(t, 0.0, proj.Z, 1e-12, "z projected to the plane")
}

// TestSolvePlaneAxis solves the single missing axis from the plane
// equation when the other two are known.
func TestSolvePlaneAxis(t *testing.T) {
	// x + y + z = 6, normalized.
	n := math.Sqrt(3)
	eq := [4]float64{1 / n, 1 / n, 1 / n, -6 / n}

	var partial core.Triplet
	partial.Set(core.AxisX, 1)
	partial.Set(core.AxisY, 2)

	z, ok := geom.SolvePlaneAxis(eq, partial, core.AxisZ)
	require.True(t, ok, "two known axes and a usable normal component")
	assert.InDelta(t, 3.0, z, 1e-9, "x=1, y=2 forces z=3")

	// A plane whose normal has no z component cannot determine z.
	flat := [4]float64{1, 0, 0, -1}
	_, ok = geom.SolvePlaneAxis(flat, partial, core.AxisZ)
	assert.False(t, ok, "zero normal component leaves the axis open")
}
