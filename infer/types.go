package infer

import (
	"errors"

	"github.com/mfagerlund/Rotera-sub004/core"
)

// Sentinel errors for propagation.
var (
	// ErrNilProject indicates Propagate was handed a nil project.
	ErrNilProject = errors.New("infer: nil project")
	// ErrBadOptions indicates a non-positive tolerance or pass cap.
	ErrBadOptions = errors.New("infer: options must have positive tolerance and pass cap")
)

// DefaultMaxPasses bounds the fixed-point iteration so propagation
// terminates even on constraint cycles.
const DefaultMaxPasses = 50

// Source priorities, strongest first. Within one priority the
// first-declared source wins.
const (
	prioLocked = iota
	prioFixed
	prioLine
	prioCollinear
	prioCoplanar
	prioNone
)

// sourceName returns the human-readable tag of a priority level.
func sourceName(prio int) string {
	switch prio {
	case prioLocked:
		return "locked"
	case prioFixed:
		return "fixed_point"
	case prioLine:
		return "line"
	case prioCollinear:
		return "collinear"
	case prioCoplanar:
		return "coplanar"
	default:
		return "none"
	}
}

// Options tunes a propagation run.
type Options struct {
	// Tolerance is the length-unit agreement tolerance; disagreements
	// beyond it are recorded as conflicts.
	Tolerance float64
	// MaxPasses caps the fixed-point iteration.
	MaxPasses int
}

// DefaultOptions returns Tolerance core.DefaultTolerance (1e-3) and
// MaxPasses DefaultMaxPasses (50).
func DefaultOptions() Options {
	return Options{Tolerance: core.DefaultTolerance, MaxPasses: DefaultMaxPasses}
}

// Conflict records a disagreement beyond tolerance on one axis of one
// point. The priority winner's value was kept.
type Conflict struct {
	// PointID is the affected point.
	PointID string
	// Axis is the disagreeing axis.
	Axis core.Axis
	// Kept is the value retained (from the higher-priority or
	// first-declared source); Rejected is the value discarded.
	Kept     float64
	Rejected float64
	// Winner and Loser name the sources involved.
	Winner string
	Loser  string
}

// Report summarizes a propagation run.
type Report struct {
	// Passes is the number of fixed-point iterations performed.
	Passes int
	// Stable is false when MaxPasses was reached while values still moved.
	Stable bool
	// Changed lists ids of points whose inferred value changed, sorted.
	Changed []string
	// Conflicts lists geometric disagreements resolved by priority.
	Conflicts []Conflict
	// Underdetermined lists ids of collinear/coplanar participants that
	// could not be placed for lack of information, sorted.
	Underdetermined []string
}
