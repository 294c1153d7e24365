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

// TestVanishingPoint_RightAngleCrossing intersects a horizontal and a
// vertical segment whose carrier lines cross at (100, 200); the analytic
// intersection must be recovered to 1e-6.
func TestVanishingPoint_RightAngleCrossing(t *testing.T) {
	segs := []geom.Segment{
		{U1: 0, V1: 200, U2: 50, V2: 200},
		{U1: 100, V1: 0, U2: 100, V2: 50},
	}

	u, v, err := geom.VanishingPoint(segs)
	require.NoError(t, err, "crossing lines intersect in the finite plane")
	assert.InDelta(t, 100.0, u, 1e-6, "intersection u")
	assert.InDelta(t, 200.0, v, 1e-6, "intersection v")
}

// TestVanishingPoint_Parallel verifies that a parallel bundle reports its
// intersection at infinity instead of inventing a finite point.
func TestVanishingPoint_Parallel(t *testing.T) {
	segs := []geom.Segment{
		{U1: 0, V1: 200, U2: 50, V2: 200},
		{U1: 0, V1: 300, U2: 50, V2: 300},
	}

	_, _, err := geom.VanishingPoint(segs)
	assert.ErrorIs(t, err, geom.ErrVanishingAtInfinity, "parallel lines have no finite vanishing point")
}

// TestVanishingPoint_Overdetermined feeds three segments through one
// point; the least-squares solution must recover it exactly.
func TestVanishingPoint_Overdetermined(t *testing.T) {
	segs := []geom.Segment{
		{U1: 0, V1: 20, U2: 5, V2: 20},
		{U1: 10, V1: 0, U2: 10, V2: 5},
		{U1: 0, V1: 10, U2: 5, V2: 15},
	}

	u, v, err := geom.VanishingPoint(segs)
	require.NoError(t, err, "consistent bundle must solve")
	assert.InDelta(t, 10.0, u, 1e-9, "least-squares u")
	assert.InDelta(t, 20.0, v, 1e-9, "least-squares v")
}

// TestVanishingPoint_Errors covers too few lines and degenerate segments.
func TestVanishingPoint_Errors(t *testing.T) {
	_, _, err := geom.VanishingPoint([]geom.Segment{{U1: 0, V1: 0, U2: 1, V2: 0}})
	assert.ErrorIs(t, err, geom.ErrTooFewLines, "one segment is not enough")

	segs := []geom.Segment{
		{U1: 3, V1: 3, U2: 3, V2: 3},
		{U1: 0, V1: 0, U2: 1, V2: 0},
	}
	_, _, err = geom.VanishingPoint(segs)
	assert.ErrorIs(t, err, geom.ErrDegenerateSegment, "coincident endpoints must be rejected")
}

// TestOrientationFromVanishing reconstructs a known camera rotation from
// the vanishing points of two world axes. The world x and y directions in
// camera coordinates are unit(1,0,1) and unit(-1,2,1); both project in
// front of the camera, and their completed right-handed frame is checked
// column by column against the recovered quaternion.
func TestOrientationFromVanishing(t *testing.T) {
	fx, fy, cx, cy := 1000.0, 1000.0, 500.0, 500.0
	xDir := r3.Unit(r3.Vec{X: 1, Y: 0, Z: 1})
	yDir := r3.Unit(r3.Vec{X: -1, Y: 2, Z: 1})

	vps := map[core.Axis][2]float64{
		core.AxisX: {cx + fx*xDir.X/xDir.Z, cy + fy*xDir.Y/xDir.Z},
		core.AxisY: {cx + fx*yDir.X/yDir.Z, cy + fy*yDir.Y/yDir.Z},
	}

	q, err := geom.OrientationFromVanishing(vps, fx, fy, cx, cy)
	require.NoError(t, err, "two axes suffice for an orientation hint")

	m := geom.QuatToMatrix(q)
	zDir := r3.Unit(r3.Cross(xDir, yDir))
	for i, want := range []r3.Vec{xDir, yDir, zDir} {
		assert.InDelta(t, want.X, m[0+i], 1e-9, "column %d X", i)
		assert.InDelta(t, want.Y, m[3+i], 1e-9, "column %d Y", i)
		assert.InDelta(t, want.Z, m[6+i], 1e-9, "column %d Z", i)
	}
}

// TestOrientationFromVanishing_TooFewAxes requires at least two axes.
func TestOrientationFromVanishing_TooFewAxes(t *testing.T) {
	vps := map[core.Axis][2]float64{core.AxisX: {500, 500}}

	_, err := geom.OrientationFromVanishing(vps, 1000, 1000, 500, 500)
	assert.ErrorIs(t, err, geom.ErrTooFewAxes, "a single axis cannot fix an orientation")
}

// quaternion sanity: the recovered rotation must be unit length.
func TestOrientationFromVanishing_UnitQuaternion(t *testing.T) {
	vps := map[core.Axis][2]float64{
		core.AxisX: {1500, 500},
		core.AxisY: {0, 2500},
	}

	q, err := geom.OrientationFromVanishing(vps, 1000, 1000, 500, 500)
	require.NoError(t, err, "two finite vanishing points suffice")
	norm := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	assert.InDelta(t, 1.0, norm, 1e-9, "orientation hints are unit quaternions")
}
