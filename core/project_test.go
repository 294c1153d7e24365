package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfagerlund/Rotera-sub004/core"
)

// twoPoints builds a project holding points "a" and "b".
func twoPoints(t *testing.T) *core.Project {
	t.Helper()
	p := core.NewProject()
	for _, id := range []string{"a", "b"} {
		_, err := p.AddWorldPoint(&core.WorldPoint{ID: id})
		require.NoError(t, err, "adding point %q", id)
	}

	return p
}

// TestAddWorldPoint_GeneratedAndDuplicateIDs covers id generation and
// duplicate rejection.
func TestAddWorldPoint_GeneratedAndDuplicateIDs(t *testing.T) {
	p := core.NewProject()

	id, err := p.AddWorldPoint(&core.WorldPoint{})
	require.NoError(t, err, "empty id gets generated")
	assert.NotEmpty(t, id, "generated id is non-empty")

	_, err = p.AddWorldPoint(&core.WorldPoint{ID: id})
	assert.ErrorIs(t, err, core.ErrDuplicateID, "same id twice must fail")
}

// TestAddLine_Validation rejects identical endpoints and unknown points.
func TestAddLine_Validation(t *testing.T) {
	p := twoPoints(t)

	_, err := p.AddLine(&core.Line{PointA: "a", PointB: "a"})
	assert.ErrorIs(t, err, core.ErrSamePoint, "endpoints must differ")

	_, err = p.AddLine(&core.Line{PointA: "a", PointB: "ghost"})
	assert.ErrorIs(t, err, core.ErrPointNotFound, "unknown endpoint must fail")

	_, err = p.AddLine(&core.Line{PointA: "a", PointB: "b", Collinear: []string{"ghost"}})
	assert.ErrorIs(t, err, core.ErrPointNotFound, "unknown collinear member must fail")
}

// TestRemoveWorldPoint_Cascades deletes a point and expects its lines,
// constraints and observations to vanish with it.
func TestRemoveWorldPoint_Cascades(t *testing.T) {
	p := twoPoints(t)

	lineID, err := p.AddLine(&core.Line{PointA: "a", PointB: "b"})
	require.NoError(t, err, "line between existing points")

	conID, err := p.AddConstraint(&core.Constraint{
		Kind: core.KindDistance, PointA: "a", PointB: "b", Value: 2,
	})
	require.NoError(t, err, "distance constraint between existing points")

	imgID, err := p.AddImage(&core.Image{Width: 100, Height: 100})
	require.NoError(t, err, "image")
	obsID, err := p.AddObservation(&core.ImagePoint{ImageID: imgID, PointID: "a", U: 1, V: 2})
	require.NoError(t, err, "observation of a")

	require.NoError(t, p.RemoveWorldPoint("a"), "removal of a referenced point")

	_, ok := p.Line(lineID)
	assert.False(t, ok, "line cascades with its endpoint")
	_, ok = p.Constraint(conID)
	assert.False(t, ok, "constraint cascades with its point")
	_, ok = p.Observation(obsID)
	assert.False(t, ok, "observation cascades with its point")
	_, ok = p.WorldPoint("b")
	assert.True(t, ok, "unrelated point survives")
}

// TestRemoveImage_Cascades deletes an image and expects its camera,
// observations and vanishing lines to vanish with it.
func TestRemoveImage_Cascades(t *testing.T) {
	p := twoPoints(t)

	imgID, err := p.AddImage(&core.Image{Width: 640, Height: 480})
	require.NoError(t, err, "image")
	camID, err := p.AddCamera(&core.Camera{ImageID: imgID, K: []float64{800, 800, 320, 240}})
	require.NoError(t, err, "camera")
	obsID, err := p.AddObservation(&core.ImagePoint{ImageID: imgID, PointID: "a"})
	require.NoError(t, err, "observation")
	vlID, err := p.AddVanishingLine(&core.VanishingLine{ImageID: imgID, Axis: core.AxisX, U2: 5})
	require.NoError(t, err, "vanishing line")

	require.NoError(t, p.RemoveImage(imgID), "image removal")

	_, ok := p.Camera(camID)
	assert.False(t, ok, "camera cascades with its image")
	_, ok = p.Observation(obsID)
	assert.False(t, ok, "observation cascades with its image")
	_, ok = p.VanishingLine(vlID)
	assert.False(t, ok, "vanishing line cascades with its image")
}

// TestLockAxis_DirtyTracking verifies locking marks the point dirty and
// that the dirty set clears on demand.
func TestLockAxis_DirtyTracking(t *testing.T) {
	p := twoPoints(t)
	p.ClearDirty()

	require.NoError(t, p.LockAxis("a", core.AxisZ, 7), "locking an axis")
	assert.Equal(t, []string{"a"}, p.DirtyPoints(), "locked point is dirty")

	wp, _ := p.WorldPoint("a")
	z, ok := wp.Locked.At(core.AxisZ)
	require.True(t, ok, "lock must stick")
	assert.Equal(t, 7.0, z, "locked value")

	require.NoError(t, p.UnlockAxis("a", core.AxisZ), "unlocking")
	_, ok = wp.Locked.At(core.AxisZ)
	assert.False(t, ok, "unlocked axis reads unset")

	p.ClearDirty()
	assert.Empty(t, p.DirtyPoints(), "dirty set clears")
}

// TestAddConstraint_Validation rejects malformed payloads and unknown
// references, and preserves declaration order.
func TestAddConstraint_Validation(t *testing.T) {
	p := twoPoints(t)

	_, err := p.AddConstraint(&core.Constraint{Kind: core.KindDistance, PointA: "a", PointB: "a", Value: 1})
	assert.ErrorIs(t, err, core.ErrBadConstraint, "pairwise constraint on one point")

	_, err = p.AddConstraint(&core.Constraint{Kind: core.KindDistance, PointA: "a", PointB: "ghost", Value: 1})
	assert.ErrorIs(t, err, core.ErrPointNotFound, "unknown participant")

	first, err := p.AddConstraint(&core.Constraint{Kind: core.KindDistance, PointA: "a", PointB: "b", Value: 1})
	require.NoError(t, err, "valid distance")
	var target core.Triplet
	target.Set(core.AxisX, 0)
	second, err := p.AddConstraint(&core.Constraint{Kind: core.KindFixedPoint, Point: "a", Target: target})
	require.NoError(t, err, "valid fixed point")

	order := p.ConstraintsInOrder()
	require.Len(t, order, 2, "two constraints admitted")
	assert.Equal(t, first, order[0].ID, "declaration order preserved")
	assert.Equal(t, second, order[1].ID, "declaration order preserved")
}

// TestApplySolution_Atomic verifies that one unknown id leaves the whole
// project untouched, and that a clean solution lands everywhere at once.
func TestApplySolution_Atomic(t *testing.T) {
	p := twoPoints(t)
	imgID, err := p.AddImage(&core.Image{Width: 100, Height: 100})
	require.NoError(t, err, "image")
	_, err = p.AddObservation(&core.ImagePoint{ImageID: imgID, PointID: "a", U: 10, V: 20})
	require.NoError(t, err, "observation")

	bad := map[string][3]float64{"a": {1, 1, 1}, "ghost": {2, 2, 2}}
	err = p.ApplySolution(bad, nil, &core.Diagnostics{Success: true})
	assert.ErrorIs(t, err, core.ErrPointNotFound, "unknown point rejects the batch")

	wp, _ := p.WorldPoint("a")
	assert.True(t, wp.Optimized.Empty(), "nothing applied on rejection")
	assert.Nil(t, p.Diagnostics(), "no diagnostics on rejection")

	good := map[string][3]float64{"a": {1, 2, 3}}
	repro := map[string]map[string][2]float64{imgID: {"a": {11, 21}}}
	require.NoError(t, p.ApplySolution(good, repro, &core.Diagnostics{Success: true, FinalCost: 0.5}), "clean solution")

	vals, complete := wp.Optimized.Vec()
	require.True(t, complete, "optimized landed")
	assert.Equal(t, [3]float64{1, 2, 3}, vals, "optimized coordinates")
	obsID := p.ObservationsOfPoint("a")[0]
	obs, _ := p.Observation(obsID)
	assert.True(t, obs.HasReprojection, "reprojection landed")
	assert.Equal(t, 11.0, obs.ReprojectedU, "reprojected u")
	require.NotNil(t, p.Diagnostics(), "diagnostics stored")
	assert.Equal(t, 0.5, p.Diagnostics().FinalCost, "diagnostics content")
}

// TestDiagnosticsDiscardedOnMutation verifies constraint and line edits
// invalidate stored solve diagnostics.
func TestDiagnosticsDiscardedOnMutation(t *testing.T) {
	p := twoPoints(t)
	conID, err := p.AddConstraint(&core.Constraint{Kind: core.KindDistance, PointA: "a", PointB: "b", Value: 1})
	require.NoError(t, err, "distance constraint")

	p.SetDiagnostics(&core.Diagnostics{Success: true})
	require.NoError(t, p.RemoveConstraint(conID), "constraint removal")
	assert.Nil(t, p.Diagnostics(), "removing a constraint discards diagnostics")

	p.SetDiagnostics(&core.Diagnostics{Success: true})
	_, err = p.AddLine(&core.Line{PointA: "a", PointB: "b"})
	require.NoError(t, err, "line")
	assert.Nil(t, p.Diagnostics(), "adding a line discards diagnostics")

	p.SetDiagnostics(&core.Diagnostics{Success: true})
	_, err = p.AddConstraint(&core.Constraint{Kind: core.KindDistance, PointA: "a", PointB: "b", Value: 1})
	require.NoError(t, err, "constraint")
	assert.Nil(t, p.Diagnostics(), "adding a constraint discards diagnostics")
}

// TestAddPlane_DefinitionsAndCascade covers definition validation, point
// resolution, equation storage and removal with a defining point.
func TestAddPlane_DefinitionsAndCascade(t *testing.T) {
	p := twoPoints(t)
	for _, id := range []string{"c", "d"} {
		_, err := p.AddWorldPoint(&core.WorldPoint{ID: id})
		require.NoError(t, err, "adding point %q", id)
	}

	_, err := p.AddPlane(&core.Plane{Def: core.PlaneThreePoints, Points: []string{"a", "b"}})
	assert.ErrorIs(t, err, core.ErrBadConstraint, "three-point plane needs three points")

	_, err = p.AddPlane(&core.Plane{Def: core.PlaneThreePoints, Points: []string{"a", "b", "ghost"}})
	assert.ErrorIs(t, err, core.ErrPointNotFound, "unknown defining point must fail")

	plID, err := p.AddPlane(&core.Plane{
		Def: core.PlaneThreePoints, Points: []string{"a", "b", "c"}, Members: []string{"d"},
	})
	require.NoError(t, err, "valid three-point plane")
	assert.Equal(t, []string{"a", "b", "c", "d"}, p.PlanePoints(plID), "defining points then members")

	require.NoError(t, p.SetPlaneEquation(plID, [4]float64{0, 0, 1, 0}), "storing a fitted equation")
	pl, ok := p.Plane(plID)
	require.True(t, ok, "plane retrievable")
	assert.True(t, pl.HasEquation, "equation flag set")

	assert.ErrorIs(t, p.SetPlaneEquation("ghost", [4]float64{}), core.ErrPlaneNotFound, "unknown plane id")

	require.NoError(t, p.RemoveWorldPoint("c"), "removing a defining point")
	_, ok = p.Plane(plID)
	assert.False(t, ok, "plane cascades with its defining point")
	assert.Empty(t, p.PlanesOfPoint("d"), "member index cleaned up")
}

// TestStats counts entities after a few mutations.
func TestStats(t *testing.T) {
	p := twoPoints(t)
	_, err := p.AddLine(&core.Line{PointA: "a", PointB: "b"})
	require.NoError(t, err, "line")

	s := p.Stats()
	assert.Equal(t, 2, s.Points, "point count")
	assert.Equal(t, 1, s.Lines, "line count")
	assert.Equal(t, 0, s.Constraints, "constraint count")
}
