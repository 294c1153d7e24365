package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNilProject is returned when the project handle is nil.
	ErrNilProject = errors.New("bridge: project is nil")
	// ErrNilSolver is returned by Session.Start when no solver is given.
	ErrNilSolver = errors.New("bridge: solver is nil")
	// ErrMalformedResult marks a payload violating the solver contract.
	// This is a fatal integration error, not a failed solve.
	ErrMalformedResult = errors.New("bridge: malformed solver result")
	// ErrSolveFailed marks a solver that reported non-success.
	ErrSolveFailed = errors.New("bridge: solve failed")
	// ErrCostExceeded marks a result whose final cost is above the
	// configured acceptance bound.
	ErrCostExceeded = errors.New("bridge: final cost exceeds acceptance bound")
	// ErrUnknownEntity marks a result referencing ids absent from the
	// project. Nothing is applied.
	ErrUnknownEntity = errors.New("bridge: result references unknown entity")
	// ErrSolveInProgress is returned by Session.Start while another solve
	// is in flight.
	ErrSolveInProgress = errors.New("bridge: solve already in progress")
)

// costCeiling replaces non-finite solver costs.
const costCeiling = 1e10

// SnapshotPoint carries one world point's coordinates for the solver.
// Each axis is nil when unknown. Locked axes must be held fixed; effective
// axes are the warm start.
type SnapshotPoint struct {
	LockedXYZ    [3]*float64 `json:"locked_xyz"`
	EffectiveXYZ [3]*float64 `json:"effective_xyz"`
}

// SnapshotObservation is one 2D observation of a world point.
type SnapshotObservation struct {
	WorldPointID string  `json:"world_point_id"`
	U            float64 `json:"u"`
	V            float64 `json:"v"`
}

// SnapshotImage groups an image's observations, its camera binding and an
// optional orientation hint as a unit quaternion [w, x, y, z].
type SnapshotImage struct {
	CameraID        string                `json:"camera_id"`
	Width           int                   `json:"width"`
	Height          int                   `json:"height"`
	Points          []SnapshotObservation `json:"points"`
	OrientationHint *[4]float64           `json:"orientation_hint,omitempty"`
}

// SnapshotCamera carries camera parameters. Placeholder is true when the
// parameters were synthesized because no camera had been fitted.
type SnapshotCamera struct {
	ImageID         string     `json:"image_id"`
	K               []float64  `json:"k"`
	R               [3]float64 `json:"r"`
	T               [3]float64 `json:"t"`
	LockIntrinsics  bool       `json:"lock_intrinsics"`
	LockRotation    bool       `json:"lock_rotation"`
	LockTranslation bool       `json:"lock_translation"`
	Placeholder     bool       `json:"placeholder,omitempty"`
}

// SnapshotConstraint is one constraint in the wire form the solver
// understands: a type discriminator plus a free-form parameter map.
type SnapshotConstraint struct {
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

// Snapshot is the full solver input.
type Snapshot struct {
	Version     string                    `json:"version"`
	Tolerance   float64                   `json:"tolerance"`
	WorldPoints map[string]SnapshotPoint  `json:"world_points"`
	Images      map[string]SnapshotImage  `json:"images"`
	Cameras     map[string]SnapshotCamera `json:"cameras"`
	Constraints []SnapshotConstraint      `json:"constraints"`
}

// Result is the solver output contract.
type Result struct {
	Success           bool                            `json:"success"`
	Iterations        int                             `json:"iterations" validate:"gte=0"`
	FinalCost         float64                         `json:"final_cost"`
	ConvergenceReason string                          `json:"convergence_reason" validate:"required"`
	ComputationTime   float64                         `json:"computation_time" validate:"gte=0"`
	OptimizedPoints   map[string][3]float64           `json:"optimized_points"`
	Reprojections     map[string]map[string][2]float64 `json:"reprojections"`
}

// resultValidator is shared; validator.Validate is safe for concurrent use.
var resultValidator = validator.New(validator.WithRequiredStructEnabled())

// DecodeResult parses raw solver output and checks it against the
// contract. A non-finite final cost is clamped to 1e10 rather than
// rejected; shape violations return ErrMalformedResult.
func DecodeResult(raw []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if err := resultValidator.Struct(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if math.IsNaN(r.FinalCost) || math.IsInf(r.FinalCost, 0) {
		r.FinalCost = costCeiling
	}
	for id, xyz := range r.OptimizedPoints {
		for _, v := range xyz {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite coordinate for point %q", ErrMalformedResult, id)
			}
		}
	}

	return &r, nil
}
