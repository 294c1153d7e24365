package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/geom"
)

// TestDistance verifies the Euclidean distance on a 3-4-5 triangle.
func TestDistance(t *testing.T) {
	a := r3.Vec{X: 0, Y: 0, Z: 0}
	b := r3.Vec{X: 3, Y: 4, Z: 0}

	assert.InDelta(t, 5.0, geom.Distance(a, b), 1e-12, "3-4-5 triangle hypotenuse")
}

// TestAngleBetween checks a right angle at the vertex and the degenerate
// zero-ray fallback.
func TestAngleBetween(t *testing.T) {
	vertex := r3.Vec{}
	a := r3.Vec{X: 1}
	c := r3.Vec{Y: 1}

	assert.InDelta(t, math.Pi/2, geom.AngleBetween(a, vertex, c), 1e-12, "orthogonal rays")
	assert.Equal(t, 0.0, geom.AngleBetween(vertex, vertex, c), "degenerate ray yields 0")
}

// TestCollinear verifies the perpendicular-distance criterion on and off
// the line.
func TestCollinear(t *testing.T) {
	a := r3.Vec{X: 0}
	b := r3.Vec{X: 10}

	assert.True(t, geom.Collinear(a, b, r3.Vec{X: 4}, 1e-9), "point on segment")
	assert.True(t, geom.Collinear(a, b, r3.Vec{X: -3}, 1e-9), "point on extension")
	assert.False(t, geom.Collinear(a, b, r3.Vec{X: 4, Y: 0.5}, 1e-3), "point off the line")
}

// TestProjectOnLine checks the foot of the perpendicular and the returned
// line parameter.
func TestProjectOnLine(t *testing.T) {
	a := r3.Vec{X: 0}
	b := r3.Vec{X: 2}

	proj, param := geom.ProjectOnLine(a, b, r3.Vec{X: 1, Y: 7})
	assert.InDelta(t, 1.0, proj.X, 1e-12, "foot X")
	assert.InDelta(t, 0.0, proj.Y, 1e-12, "foot Y")
	assert.InDelta(t, 0.5, param, 1e-12, "parameter t")
}
