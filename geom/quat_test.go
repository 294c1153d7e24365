package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/geom"
)

// TestRotateVec_QuarterTurn rotates the x unit vector 90° around z and
// expects the y unit vector.
func TestRotateVec_QuarterTurn(t *testing.T) {
	q := geom.QuatFromAxisAngle(r3.Vec{Z: 1}, math.Pi/2)

	out := geom.RotateVec(q, r3.Vec{X: 1})
	assert.InDelta(t, 0.0, out.X, 1e-12, "x rotates away")
	assert.InDelta(t, 1.0, out.Y, 1e-12, "x lands on y")
	assert.InDelta(t, 0.0, out.Z, 1e-12, "z untouched")
}

// TestQuatNormalize rejects the zero quaternion and unit-scales others.
func TestQuatNormalize(t *testing.T) {
	_, err := geom.QuatNormalize(quat.Number{})
	assert.ErrorIs(t, err, geom.ErrZeroQuaternion, "zero quaternion has no direction")

	q, err := geom.QuatNormalize(quat.Number{Real: 3})
	require.NoError(t, err, "nonzero quaternion normalizes")
	assert.InDelta(t, 1.0, q.Real, 1e-12, "scaled to unit length")
}

// TestQuatBetween maps one direction onto another, including the
// anti-parallel half-turn special case.
func TestQuatBetween(t *testing.T) {
	q := geom.QuatBetween(r3.Vec{X: 1}, r3.Vec{Y: 1})
	out := geom.RotateVec(q, r3.Vec{X: 1})
	assert.InDelta(t, 1.0, out.Y, 1e-12, "x rotated onto y")

	flip := geom.QuatBetween(r3.Vec{X: 1}, r3.Vec{X: -1})
	out = geom.RotateVec(flip, r3.Vec{X: 1})
	assert.InDelta(t, -1.0, out.X, 1e-12, "anti-parallel input flips")
}

// TestQuatMatrixRoundTrip converts a generic rotation to a matrix and
// back; the recovered quaternion must represent the same rotation.
func TestQuatMatrixRoundTrip(t *testing.T) {
	q := geom.QuatFromAxisAngle(r3.Vec{X: 1, Y: 2, Z: 3}, 1.1)

	back := geom.MatrixToQuat(geom.QuatToMatrix(q))

	// q and -q encode the same rotation; compare their action instead.
	for _, v := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		want := geom.RotateVec(q, v)
		got := geom.RotateVec(back, v)
		assert.InDelta(t, want.X, got.X, 1e-9, "rotation action X")
		assert.InDelta(t, want.Y, got.Y, 1e-9, "rotation action Y")
		assert.InDelta(t, want.Z, got.Z, 1e-9, "rotation action Z")
	}
}

// TestQuatMulInv verifies that a rotation composed with its inverse is
// the identity on vectors.
func TestQuatMulInv(t *testing.T) {
	q := geom.QuatFromAxisAngle(r3.Vec{Y: 1}, 0.7)

	id := geom.QuatMul(q, geom.QuatInv(q))
	out := geom.RotateVec(id, r3.Vec{X: 1, Y: 2, Z: 3})
	assert.InDelta(t, 1.0, out.X, 1e-12, "identity preserves X")
	assert.InDelta(t, 2.0, out.Y, 1e-12, "identity preserves Y")
	assert.InDelta(t, 3.0, out.Z, 1e-12, "identity preserves Z")
}
