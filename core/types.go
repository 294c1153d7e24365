package core

import (
	"errors"
	"sync"
)

// Sentinel errors for entity-graph operations.
var (
	// ErrDuplicateID indicates an entity with the same id already exists.
	ErrDuplicateID = errors.New("core: duplicate entity id")
	// ErrPointNotFound indicates an operation referenced a non-existent world point.
	ErrPointNotFound = errors.New("core: world point not found")
	// ErrLineNotFound indicates an operation referenced a non-existent line.
	ErrLineNotFound = errors.New("core: line not found")
	// ErrPlaneNotFound indicates an operation referenced a non-existent plane.
	ErrPlaneNotFound = errors.New("core: plane not found")
	// ErrImageNotFound indicates an operation referenced a non-existent image.
	ErrImageNotFound = errors.New("core: image not found")
	// ErrCameraNotFound indicates an operation referenced a non-existent camera.
	ErrCameraNotFound = errors.New("core: camera not found")
	// ErrObservationNotFound indicates an operation referenced a non-existent image point.
	ErrObservationNotFound = errors.New("core: image point not found")
	// ErrConstraintNotFound indicates an operation referenced a non-existent constraint.
	ErrConstraintNotFound = errors.New("core: constraint not found")
	// ErrSamePoint indicates a line or pairwise constraint references one point twice.
	ErrSamePoint = errors.New("core: endpoints must be distinct points")
	// ErrBadConstraint indicates a constraint payload violates its kind's structural minimums.
	ErrBadConstraint = errors.New("core: malformed constraint payload")
)

// DefaultTolerance is the length-unit tolerance used wherever coordinates
// are compared for agreement (locked vs inferred, constraint admission).
const DefaultTolerance = 1e-3

// Axis identifies one world coordinate axis.
type Axis int

const (
	// AxisX is the world X axis.
	AxisX Axis = iota
	// AxisY is the world Y axis.
	AxisY
	// AxisZ is the world Z axis.
	AxisZ
)

// String returns the lowercase axis name ("x", "y" or "z").
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// Direction declares how a line is constrained in world space.
// Single-axis directions (DirX, DirY, DirZ) pin the two orthogonal axes;
// planar directions (DirXY, DirXZ, DirYZ) pin the remaining axis.
type Direction int

const (
	// DirFree places no directional constraint on the line.
	DirFree Direction = iota
	// DirX constrains the line to run parallel to the X axis.
	DirX
	// DirY constrains the line to run parallel to the Y axis.
	DirY
	// DirZ constrains the line to run parallel to the Z axis.
	DirZ
	// DirXY constrains the line to a plane of constant Z.
	DirXY
	// DirXZ constrains the line to a plane of constant Y.
	DirXZ
	// DirYZ constrains the line to a plane of constant X.
	DirYZ
)

// String returns the direction tag used in snapshots ("free", "x", ... "yz").
func (d Direction) String() string {
	switch d {
	case DirX:
		return "x"
	case DirY:
		return "y"
	case DirZ:
		return "z"
	case DirXY:
		return "xy"
	case DirXZ:
		return "xz"
	case DirYZ:
		return "yz"
	default:
		return "free"
	}
}

// Varies reports whether the direction lets the line extend along the given axis.
func (d Direction) Varies(a Axis) bool {
	switch d {
	case DirX:
		return a == AxisX
	case DirY:
		return a == AxisY
	case DirZ:
		return a == AxisZ
	case DirXY:
		return a == AxisX || a == AxisY
	case DirXZ:
		return a == AxisX || a == AxisZ
	case DirYZ:
		return a == AxisY || a == AxisZ
	default:
		return true
	}
}

// SingleAxis returns the lone axis of a single-axis direction and true,
// or (AxisX, false) for free and planar directions.
func (d Direction) SingleAxis() (Axis, bool) {
	switch d {
	case DirX:
		return AxisX, true
	case DirY:
		return AxisY, true
	case DirZ:
		return AxisZ, true
	default:
		return AxisX, false
	}
}

// PointStatus summarizes how a world point's effective position is supplied.
type PointStatus int

const (
	// StatusFree means no axis of the point is known.
	StatusFree PointStatus = iota
	// StatusPartial means some but not all axes are known.
	StatusPartial
	// StatusInferred means all axes are known and at least one was inferred.
	StatusInferred
	// StatusLocked means all three axes are user-locked.
	StatusLocked
)

// String returns the status tag ("free", "partial", "inferred", "locked").
func (s PointStatus) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusInferred:
		return "inferred"
	case StatusLocked:
		return "locked"
	default:
		return "free"
	}
}

// WorldPoint is a 3D point whose position may be supplied per axis by a
// user lock, by constraint inference, or by the external optimizer.
// Inferred is owned by the propagator and Optimized by the bridge;
// neither is ever hand-set.
type WorldPoint struct {
	// ID uniquely identifies the point within its Project.
	ID string
	// Name is an optional display label (e.g. "P1", "corner_nw").
	Name string
	// Locked holds user-authoritative coordinates per axis.
	Locked Triplet
	// Inferred holds coordinates derived by constraint propagation.
	Inferred Triplet
	// Optimized holds coordinates from the last successful solve.
	Optimized Triplet
	// Status classifies the point after the last propagation pass.
	Status PointStatus
	// Conflicts lists human-readable geometric conflicts recorded by the
	// propagator (disagreements beyond tolerance, resolved by priority).
	Conflicts []string
	// Unstable marks a point whose value was still changing when the
	// propagation pass cap was reached.
	Unstable bool
}

// Effective resolves the point's usable position: locked ?? inferred ??
// optimized, independently per axis.
func (w *WorldPoint) Effective() Triplet {
	var eff Triplet
	for a := AxisX; a <= AxisZ; a++ {
		if v, ok := w.Locked.At(a); ok {
			eff.Set(a, v)
			continue
		}
		if v, ok := w.Inferred.At(a); ok {
			eff.Set(a, v)
			continue
		}
		if v, ok := w.Optimized.At(a); ok {
			eff.Set(a, v)
		}
	}

	return eff
}

// Line connects two distinct world points, optionally constrained to a
// world direction and target length, and may declare further points
// collinear with it. Construction lines are visual aids only and are
// ignored by inference.
type Line struct {
	// ID uniquely identifies the line within its Project.
	ID string
	// Name is an optional display label (e.g. "L1").
	Name string
	// PointA and PointB are the two distinct endpoint ids.
	PointA string
	PointB string
	// Direction constrains the line's world orientation.
	Direction Direction
	// TargetLength, when > 0, declares the intended endpoint distance.
	TargetLength float64
	// Collinear lists additional point ids declared to lie on the line.
	Collinear []string
	// Construction marks a visual-only line with no inference effect.
	Construction bool
}

// PlaneDefKind selects how a plane is defined.
type PlaneDefKind int

const (
	// PlaneThreePoints defines the plane by three world points.
	PlaneThreePoints PlaneDefKind = iota
	// PlaneTwoLines defines the plane by the four endpoints of two lines.
	PlaneTwoLines
	// PlaneLinePoint defines the plane by a line's endpoints and one point.
	PlaneLinePoint
)

// Plane is defined by points and/or lines and carries a derived, normalized
// equation ax+by+cz+d=0 with a²+b²+c²=1. The normal's sign is not
// semantically meaningful.
type Plane struct {
	// ID uniquely identifies the plane within its Project.
	ID string
	// Name is an optional display label.
	Name string
	// Def selects the definition variant.
	Def PlaneDefKind
	// Points holds defining point ids: 3 for ThreePoints, 1 for LinePoint.
	Points []string
	// Lines holds defining line ids: 2 for TwoLines, 1 for LinePoint.
	Lines []string
	// Members lists additional point ids constrained to the plane.
	Members []string
	// Equation is the fitted [a,b,c,d]; valid only when HasEquation.
	Equation [4]float64
	// HasEquation reports whether Equation has been fitted.
	HasEquation bool
}

// VanishingLine is an image-space segment annotated with the world axis its
// 3D counterpart runs along. Two or more lines sharing an axis in one image
// allow that axis's vanishing point to be estimated.
type VanishingLine struct {
	// ID uniquely identifies the vanishing line within its Project.
	ID string
	// ImageID is the owning viewpoint.
	ImageID string
	// Axis is the world axis the annotated 3D direction runs along.
	Axis Axis
	// U1, V1, U2, V2 are the segment endpoints in pixel coordinates.
	U1, V1 float64
	U2, V2 float64
}

// ImagePoint is a 2D observation of a world point in one viewpoint.
type ImagePoint struct {
	// ID uniquely identifies the observation within its Project.
	ID string
	// ImageID is the viewpoint the observation was made in.
	ImageID string
	// PointID is the observed world point.
	PointID string
	// U, V are the observed pixel coordinates.
	U, V float64
	// ReprojectedU, ReprojectedV are populated after a successful solve.
	ReprojectedU float64
	ReprojectedV float64
	// HasReprojection reports whether the reprojection fields are valid.
	HasReprojection bool
}

// Image is a photograph points are observed in.
type Image struct {
	// ID uniquely identifies the image within its Project.
	ID string
	// Path locates the image file; storage is owned externally.
	Path string
	// Width and Height are the pixel dimensions.
	Width  int
	Height int
}

// ContainsPixel reports whether (u, v) falls inside the image bounds.
func (im *Image) ContainsPixel(u, v float64) bool {
	return u >= 0 && u < float64(im.Width) && v >= 0 && v < float64(im.Height)
}

// AspectRatio returns width/height.
func (im *Image) AspectRatio() float64 {
	return float64(im.Width) / float64(im.Height)
}

// Camera holds the intrinsic and extrinsic parameters fitted for one image.
type Camera struct {
	// ID uniquely identifies the camera within its Project.
	ID string
	// ImageID is the associated image.
	ImageID string
	// K is the intrinsics vector [fx, fy, cx, cy, k1?, k2?] (4-6 elements).
	K []float64
	// R is the rotation as an axis-angle vector.
	R [3]float64
	// T is the translation vector.
	T [3]float64
	// LockIntrinsics, LockRotation and LockTranslation tell the solver
	// which parameter blocks to hold fixed.
	LockIntrinsics  bool
	LockRotation    bool
	LockTranslation bool
}

// HasDistortion reports whether K carries distortion coefficients.
func (c *Camera) HasDistortion() bool { return len(c.K) > 4 }

// Diagnostics records the outcome of the last solve ingested by the bridge.
type Diagnostics struct {
	Success           bool
	Iterations        int
	FinalCost         float64
	ConvergenceReason string
	// ComputationTime is the solver wall time in seconds.
	ComputationTime float64
}

// ProjectOption configures a Project before first use.
type ProjectOption func(p *Project)

// WithTolerance overrides the coordinate-agreement tolerance
// (default DefaultTolerance).
func WithTolerance(tol float64) ProjectOption {
	return func(p *Project) {
		if tol > 0 {
			p.tolerance = tol
		}
	}
}

// WithVersion sets the project format version string.
func WithVersion(v string) ProjectOption {
	return func(p *Project) { p.version = v }
}

// Project is the single owner of the entity graph. All cross-entity
// relationships are id-based; the relationship indices are derived and
// non-owning. mu enforces single-writer, multiple-reader access.
type Project struct {
	mu sync.RWMutex

	version   string
	tolerance float64

	points       map[string]*WorldPoint
	lines        map[string]*Line
	planes       map[string]*Plane
	images       map[string]*Image
	cameras      map[string]*Camera
	observations map[string]*ImagePoint
	vanishing    map[string]*VanishingLine
	constraints  map[string]*Constraint

	// constraintOrder preserves declaration order for the propagator's
	// first-declared tie-break.
	constraintOrder []string

	// Relationship indices: entity id → set of dependent entity ids.
	pointLines       map[string]map[string]struct{} // point → lines touching it
	pointConstraints map[string]map[string]struct{} // point → constraints touching it
	pointPlanes      map[string]map[string]struct{} // point → planes involving it
	pointObs         map[string]map[string]struct{} // point → observations of it
	imageObs         map[string]map[string]struct{} // image → observations in it
	imageVanishing   map[string]map[string]struct{} // image → vanishing lines in it

	// dirty holds point ids whose inferred values are stale.
	dirty map[string]struct{}

	diagnostics *Diagnostics
}

// NewProject creates an empty Project with the given options.
// Defaults: tolerance DefaultTolerance, version "1".
func NewProject(opts ...ProjectOption) *Project {
	p := &Project{
		version:          "1",
		tolerance:        DefaultTolerance,
		points:           make(map[string]*WorldPoint),
		lines:            make(map[string]*Line),
		planes:           make(map[string]*Plane),
		images:           make(map[string]*Image),
		cameras:          make(map[string]*Camera),
		observations:     make(map[string]*ImagePoint),
		vanishing:        make(map[string]*VanishingLine),
		constraints:      make(map[string]*Constraint),
		pointLines:       make(map[string]map[string]struct{}),
		pointConstraints: make(map[string]map[string]struct{}),
		pointPlanes:      make(map[string]map[string]struct{}),
		pointObs:         make(map[string]map[string]struct{}),
		imageObs:         make(map[string]map[string]struct{}),
		imageVanishing:   make(map[string]map[string]struct{}),
		dirty:            make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Version returns the project format version string.
func (p *Project) Version() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.version
}

// Tolerance returns the coordinate-agreement tolerance in length units.
func (p *Project) Tolerance() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.tolerance
}

// Diagnostics returns the last ingested solve diagnostics, or nil.
func (p *Project) Diagnostics() *Diagnostics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.diagnostics
}

// SetDiagnostics stores solve diagnostics; the bridge calls this on ingest.
func (p *Project) SetDiagnostics(d *Diagnostics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diagnostics = d
}
