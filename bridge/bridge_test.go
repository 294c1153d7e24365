package bridge_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfagerlund/Rotera-sub004/bridge"
	"github.com/mfagerlund/Rotera-sub004/core"
)

// lockAll locks all three axes of a point.
func lockAll(t *testing.T, p *core.Project, id string, x, y, z float64) {
	t.Helper()
	require.NoError(t, p.LockAxis(id, core.AxisX, x), "lock x of %q", id)
	require.NoError(t, p.LockAxis(id, core.AxisY, y), "lock y of %q", id)
	require.NoError(t, p.LockAxis(id, core.AxisZ, z), "lock z of %q", id)
}

// sceneProject builds a project with a locked and a free point, a
// z-aligned line with a target length, an image and one observation.
func sceneProject(t *testing.T) (*core.Project, string) {
	t.Helper()
	p := core.NewProject()
	for _, id := range []string{"a", "b"} {
		_, err := p.AddWorldPoint(&core.WorldPoint{ID: id})
		require.NoError(t, err, "adding point %q", id)
	}
	lockAll(t, p, "a", 0, 0, 0)
	_, err := p.AddLine(&core.Line{ID: "l", PointA: "a", PointB: "b", Direction: core.DirZ, TargetLength: 2})
	require.NoError(t, err, "line")
	imgID, err := p.AddImage(&core.Image{ID: "img", Width: 640, Height: 480})
	require.NoError(t, err, "image")
	_, err = p.AddObservation(&core.ImagePoint{ImageID: imgID, PointID: "a", U: 100, V: 200})
	require.NoError(t, err, "observation")

	return p, imgID
}

// TestExport_Shape verifies the snapshot carries per-axis coordinate
// pointers, the serialized line constraints and a placeholder camera for
// the unfitted image.
func TestExport_Shape(t *testing.T) {
	p, imgID := sceneProject(t)

	snap, err := bridge.Export(p)
	require.NoError(t, err, "export")
	assert.Equal(t, p.Version(), snap.Version, "version carried")

	a := snap.WorldPoints["a"]
	for axis := 0; axis < 3; axis++ {
		require.NotNil(t, a.LockedXYZ[axis], "locked axis %d present", axis)
		assert.Equal(t, 0.0, *a.LockedXYZ[axis], "locked value")
	}
	b := snap.WorldPoints["b"]
	for axis := 0; axis < 3; axis++ {
		assert.Nil(t, b.LockedXYZ[axis], "free point has no locked axis %d", axis)
	}

	var types []string
	for _, c := range snap.Constraints {
		types = append(types, c.Type)
	}
	assert.Contains(t, types, "line_direction", "declared direction serialized")
	assert.Contains(t, types, "line_length", "target length serialized")

	img := snap.Images[imgID]
	require.Len(t, img.Points, 1, "observation exported")
	assert.Equal(t, "a", img.Points[0].WorldPointID, "observed point id")
	cam, ok := snap.Cameras[img.CameraID]
	require.True(t, ok, "camera entry exists")
	assert.True(t, cam.Placeholder, "unfitted image gets a placeholder")
	require.Len(t, cam.K, 4, "placeholder intrinsics fx, fy, cx, cy")
	assert.Equal(t, 320.0, cam.K[2], "principal point at the center")

	// The snapshot must be serializable as-is.
	_, err = json.Marshal(snap)
	assert.NoError(t, err, "snapshot marshals to JSON")
}

// TestDecodeResult_Malformed treats bad JSON and missing required fields
// as fatal contract violations.
func TestDecodeResult_Malformed(t *testing.T) {
	_, err := bridge.DecodeResult([]byte("{not json"))
	assert.ErrorIs(t, err, bridge.ErrMalformedResult, "unparseable payload")

	_, err = bridge.DecodeResult([]byte(`{"success": true}`))
	assert.ErrorIs(t, err, bridge.ErrMalformedResult, "missing convergence_reason")
}

// TestDecodeResult_Valid parses a well-formed payload.
func TestDecodeResult_Valid(t *testing.T) {
	raw := []byte(`{
		"success": true,
		"iterations": 12,
		"final_cost": 0.031,
		"convergence_reason": "parameter tolerance reached",
		"computation_time": 0.8,
		"optimized_points": {"b": [0, 0, 2]},
		"reprojections": {"img": {"a": [101, 199]}}
	}`)

	r, err := bridge.DecodeResult(raw)
	require.NoError(t, err, "well-formed payload")
	assert.True(t, r.Success, "success flag")
	assert.Equal(t, 12, r.Iterations, "iterations")
	assert.Equal(t, [3]float64{0, 0, 2}, r.OptimizedPoints["b"], "optimized coordinates")
}

// TestIngest_FailedSolveLeavesProjectUntouched maps a non-success result
// to ErrSolveFailed without mutating anything.
func TestIngest_FailedSolveLeavesProjectUntouched(t *testing.T) {
	p, _ := sceneProject(t)

	err := bridge.Ingest(p, &bridge.Result{
		Success: false, ConvergenceReason: "diverged",
		OptimizedPoints: map[string][3]float64{"b": {9, 9, 9}},
	})
	assert.ErrorIs(t, err, bridge.ErrSolveFailed, "failed solve reported")

	b, _ := p.WorldPoint("b")
	assert.True(t, b.Optimized.Empty(), "nothing applied")
	assert.Nil(t, p.Diagnostics(), "no diagnostics stored")
}

// TestIngest_CostBound rejects high-cost results when a bound is set.
func TestIngest_CostBound(t *testing.T) {
	p, _ := sceneProject(t)

	r := &bridge.Result{Success: true, ConvergenceReason: "max iterations", FinalCost: 100}
	err := bridge.Ingest(p, r, bridge.WithMaxCost(10))
	assert.ErrorIs(t, err, bridge.ErrCostExceeded, "cost above the bound")

	assert.NoError(t, bridge.Ingest(p, r), "no bound accepts any cost")
}

// TestIngest_UnknownEntityAtomic verifies one unknown id rejects the
// whole result.
func TestIngest_UnknownEntityAtomic(t *testing.T) {
	p, _ := sceneProject(t)

	err := bridge.Ingest(p, &bridge.Result{
		Success: true, ConvergenceReason: "converged",
		OptimizedPoints: map[string][3]float64{"b": {0, 0, 2}, "ghost": {1, 1, 1}},
	})
	assert.ErrorIs(t, err, bridge.ErrUnknownEntity, "unknown point id")

	b, _ := p.WorldPoint("b")
	assert.True(t, b.Optimized.Empty(), "known point untouched on rejection")
}

// TestIngest_Success applies optimized coordinates, reprojections and
// diagnostics in one step, and a result echoing the effective coordinates
// leaves them unchanged.
func TestIngest_Success(t *testing.T) {
	p, imgID := sceneProject(t)

	err := bridge.Ingest(p, &bridge.Result{
		Success: true, ConvergenceReason: "converged", Iterations: 3, FinalCost: 0.1,
		OptimizedPoints: map[string][3]float64{"a": {0, 0, 0}, "b": {0, 0, 2}},
		Reprojections:   map[string]map[string][2]float64{imgID: {"a": {101, 199}}},
	})
	require.NoError(t, err, "successful ingest")

	a, _ := p.WorldPoint("a")
	eff := a.Effective()
	vals, complete := eff.Vec()
	require.True(t, complete, "a stays positioned")
	assert.Equal(t, [3]float64{0, 0, 0}, vals, "locked coordinates beat the echoed optimum")

	b, _ := p.WorldPoint("b")
	vals, complete = b.Effective().Vec()
	require.True(t, complete, "b positioned by the solver")
	assert.Equal(t, [3]float64{0, 0, 2}, vals, "optimized lands on the free point")

	obsID := p.ObservationsOfPoint("a")[0]
	obs, _ := p.Observation(obsID)
	assert.True(t, obs.HasReprojection, "reprojection stored")
	require.NotNil(t, p.Diagnostics(), "diagnostics stored")
	assert.Equal(t, 3, p.Diagnostics().Iterations, "diagnostics content")
}
