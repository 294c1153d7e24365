package validate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/core"
	"github.com/mfagerlund/Rotera-sub004/geom"
)

// checker inspects one constraint against the graph and appends findings.
type checker func(p *core.Project, c *core.Constraint, tol float64, r *Report)

// structural and geometric checks dispatched per constraint kind.
var (
	structuralCheckers = map[core.ConstraintKind]checker{
		core.KindFixedPoint:     structFixedPoint,
		core.KindDistance:       structDistance,
		core.KindAngle:          structAngle,
		core.KindCollinear:      structPointSet(3),
		core.KindCoplanar:       structPointSet(4),
		core.KindParallel:       structLinePair,
		core.KindPerpendicular:  structLinePair,
		core.KindEqualDistances: structEqualDistances,
		core.KindEqualAngles:    structEqualAngles,
		core.KindProjection:     structProjection,
	}
	geometricCheckers = map[core.ConstraintKind]checker{
		core.KindFixedPoint:     geomFixedPoint,
		core.KindDistance:       geomDistance,
		core.KindAngle:          geomAngle,
		core.KindCollinear:      geomCollinear,
		core.KindCoplanar:       geomCoplanar,
		core.KindParallel:       geomLinePair,
		core.KindPerpendicular:  geomLinePair,
		core.KindEqualDistances: geomEqualDistances,
		core.KindEqualAngles:    geomEqualAngles,
		core.KindProjection:     geomProjection,
	}
)

// Validate audits the whole project: every constraint structurally and
// geometrically, every direction-constrained line, and each point's
// equation count against its free unknowns. The report is advisory;
// nothing is mutated.
func Validate(p *core.Project) *Report {
	r := &Report{Valid: true}
	if p == nil {
		r.add(Issue{Severity: SeverityError, Code: CodeMissingRef, Message: "nil project"})

		return r
	}
	tol := p.Tolerance()

	for _, c := range p.ConstraintsInOrder() {
		runCheckers(p, c, tol, r)
	}
	for _, lineID := range p.LineIDs() {
		l, _ := p.Line(lineID)
		checkLine(p, l, tol, r)
	}
	checkOverConstraint(p, nil, r)

	return r
}

// Check audits one candidate constraint before admission. Structural
// findings are Errors and must block creation; geometric, redundancy and
// over-constraint findings are advisory.
func Check(p *core.Project, c *core.Constraint) *Report {
	r := &Report{Valid: true}
	if p == nil || c == nil {
		r.add(Issue{Severity: SeverityError, Code: CodeMissingRef, Message: "nil project or constraint"})

		return r
	}
	runCheckers(p, c, p.Tolerance(), r)
	checkOverConstraint(p, c, r)

	return r
}

func runCheckers(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	structural, ok := structuralCheckers[c.Kind]
	if !ok {
		r.add(Issue{Severity: SeverityError, Code: CodeBadPayload, EntityID: c.ID,
			Message: "unknown constraint kind"})

		return
	}
	before := len(r.Issues)
	structural(p, c, tol, r)
	structurallySound := true
	for _, i := range r.Issues[before:] {
		if i.Severity == SeverityError {
			structurallySound = false
			break
		}
	}
	if structurallySound {
		geometricCheckers[c.Kind](p, c, tol, r)
	}
}

// effective returns the point's full effective position, if complete.
func effective(p *core.Project, id string) (r3.Vec, bool) {
	wp, ok := p.WorldPoint(id)
	if !ok {
		return r3.Vec{}, false
	}
	v, complete := wp.Effective().Vec()

	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, complete
}

func requirePoints(p *core.Project, c *core.Constraint, r *Report, ids ...string) bool {
	ok := true
	for _, id := range ids {
		if id == "" {
			r.add(Issue{Severity: SeverityError, Code: CodeBadPayload, EntityID: c.ID,
				Message: "empty point reference"})
			ok = false
			continue
		}
		if _, exists := p.WorldPoint(id); !exists {
			r.add(Issue{Severity: SeverityError, Code: CodeMissingRef, EntityID: c.ID,
				Message: fmt.Sprintf("world point %q does not exist", id)})
			ok = false
		}
	}

	return ok
}

func requireDistinct(c *core.Constraint, r *Report, ids ...string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			r.add(Issue{Severity: SeverityError, Code: CodeDuplicateRef, EntityID: c.ID,
				Message: fmt.Sprintf("point %q referenced twice", id)})

			return false
		}
		seen[id] = struct{}{}
	}

	return true
}

func structFixedPoint(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	if c.Target.Empty() {
		r.add(Issue{Severity: SeverityError, Code: CodeBadPayload, EntityID: c.ID,
			Message: "fixed point constrains no axis"})
	}
	requirePoints(p, c, r, c.Point)
}

func structDistance(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	if requirePoints(p, c, r, c.PointA, c.PointB) {
		requireDistinct(c, r, c.PointA, c.PointB)
	}
	if c.Value < 0 {
		r.add(Issue{Severity: SeverityError, Code: CodeBadPayload, EntityID: c.ID,
			Message: "negative distance"})
	}
}

func structAngle(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	if requirePoints(p, c, r, c.PointA, c.Vertex, c.PointC) {
		requireDistinct(c, r, c.PointA, c.Vertex, c.PointC)
	}
}

// structPointSet builds the structural check for Collinear (min 3) and
// Coplanar (min 4).
func structPointSet(minCount int) checker {
	return func(p *core.Project, c *core.Constraint, _ float64, r *Report) {
		if len(c.Points) < minCount {
			r.add(Issue{Severity: SeverityError, Code: CodeBadPayload, EntityID: c.ID,
				Message: fmt.Sprintf("%s needs at least %d points, got %d", c.Kind, minCount, len(c.Points))})
		}
		if requirePoints(p, c, r, c.Points...) {
			requireDistinct(c, r, c.Points...)
		}
	}
}

func structLinePair(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	for _, id := range []string{c.LineA, c.LineB} {
		if _, ok := p.Line(id); !ok {
			r.add(Issue{Severity: SeverityError, Code: CodeMissingRef, EntityID: c.ID,
				Message: fmt.Sprintf("line %q does not exist", id)})
		}
	}
	if c.LineA == c.LineB {
		r.add(Issue{Severity: SeverityError, Code: CodeDuplicateRef, EntityID: c.ID,
			Message: "constraint references one line twice"})
	}
}

func structEqualDistances(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	if len(c.Pairs) < 2 {
		r.add(Issue{Severity: SeverityError, Code: CodeBadPayload, EntityID: c.ID,
			Message: "equal distances needs at least two pairs"})
	}
	for _, pr := range c.Pairs {
		if requirePoints(p, c, r, pr[0], pr[1]) {
			requireDistinct(c, r, pr[0], pr[1])
		}
	}
}

func structEqualAngles(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	if len(c.Triplets) < 2 {
		r.add(Issue{Severity: SeverityError, Code: CodeBadPayload, EntityID: c.ID,
			Message: "equal angles needs at least two triplets"})
	}
	for _, tr := range c.Triplets {
		if requirePoints(p, c, r, tr[0], tr[1], tr[2]) {
			requireDistinct(c, r, tr[0], tr[1], tr[2])
		}
	}
}

func structProjection(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	requirePoints(p, c, r, c.Point)
	if _, ok := p.Image(c.ImageID); !ok {
		r.add(Issue{Severity: SeverityError, Code: CodeMissingRef, EntityID: c.ID,
			Message: fmt.Sprintf("image %q does not exist", c.ImageID)})
	}
}

func geomFixedPoint(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	wp, _ := p.WorldPoint(c.Point)
	redundant := true
	for a := core.AxisX; a <= core.AxisZ; a++ {
		want, specified := c.Target.At(a)
		if !specified {
			continue
		}
		locked, isLocked := wp.Locked.At(a)
		if !isLocked {
			redundant = false
			continue
		}
		if dev := math.Abs(want - locked); dev > tol {
			r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: c.ID,
				Message:   fmt.Sprintf("fixed %s=%g contradicts locked %s=%g on point %q", a, want, a, locked, c.Point),
				Deviation: dev})
			redundant = false
		}
	}
	if redundant {
		r.add(Issue{Severity: SeverityInfo, Code: CodeRedundant, EntityID: c.ID,
			Message: fmt.Sprintf("all fixed axes of point %q already locked to the same values", c.Point)})
	}
}

func geomDistance(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	va, okA := effective(p, c.PointA)
	vb, okB := effective(p, c.PointB)
	if !okA || !okB {
		return
	}
	measured := geom.Distance(va, vb)
	if dev := math.Abs(measured - c.Value); dev > tol {
		r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: c.ID,
			Message:   fmt.Sprintf("declared distance %g, effective distance %g", c.Value, measured),
			Deviation: dev})

		return
	}
	wpA, _ := p.WorldPoint(c.PointA)
	wpB, _ := p.WorldPoint(c.PointB)
	if wpA.Locked.Complete() && wpB.Locked.Complete() {
		r.add(Issue{Severity: SeverityInfo, Code: CodeRedundant, EntityID: c.ID,
			Message: "both endpoints fully locked; distance adds no information"})
	}
}

func geomAngle(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	va, okA := effective(p, c.PointA)
	vv, okV := effective(p, c.Vertex)
	vc, okC := effective(p, c.PointC)
	if !okA || !okV || !okC {
		return
	}
	measured := geom.AngleBetween(va, vv, vc)
	if dev := math.Abs(measured - c.Value); dev > tol {
		r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: c.ID,
			Message:   fmt.Sprintf("declared angle %g rad, effective angle %g rad", c.Value, measured),
			Deviation: dev})
	}
}

func geomCollinear(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	var placed []r3.Vec
	for _, id := range c.Points {
		if v, ok := effective(p, id); ok {
			placed = append(placed, v)
		}
	}
	if len(placed) < 3 {
		return
	}
	worst := 0.0
	for _, v := range placed[2:] {
		proj, _ := geom.ProjectOnLine(placed[0], placed[1], v)
		if dev := geom.Distance(proj, v); dev > worst {
			worst = dev
		}
	}
	if worst > tol {
		r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: c.ID,
			Message:   fmt.Sprintf("points deviate from collinearity by %g", worst),
			Deviation: worst})
	}
}

func geomCoplanar(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	var placed []r3.Vec
	for _, id := range c.Points {
		if v, ok := effective(p, id); ok {
			placed = append(placed, v)
		}
	}
	if len(placed) < 4 {
		return
	}
	eq, _, err := geom.FitPlane(placed)
	if err != nil {
		return
	}
	worst := 0.0
	for _, v := range placed {
		if dev := geom.PointPlaneDistance(eq, v); dev > worst {
			worst = dev
		}
	}
	if worst > tol {
		r.add(Issue{Severity: SeverityWarning, Code: CodeOffPlane, EntityID: c.ID,
			Message:   fmt.Sprintf("points deviate from best-fit plane by %g", worst),
			Deviation: worst})
	}
}

// lineVector returns the effective direction vector of a line, if both
// endpoints are positioned.
func lineVector(p *core.Project, id string) (r3.Vec, bool) {
	l, ok := p.Line(id)
	if !ok {
		return r3.Vec{}, false
	}
	va, okA := effective(p, l.PointA)
	vb, okB := effective(p, l.PointB)
	if !okA || !okB {
		return r3.Vec{}, false
	}

	return r3.Sub(vb, va), true
}

func geomLinePair(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	la, _ := p.Line(c.LineA)
	lb, _ := p.Line(c.LineB)
	if c.Kind == core.KindParallel {
		if axA, okA := la.Direction.SingleAxis(); okA {
			if axB, okB := lb.Direction.SingleAxis(); okB && axA == axB {
				r.add(Issue{Severity: SeverityInfo, Code: CodeRedundant, EntityID: c.ID,
					Message: fmt.Sprintf("both lines already declared %s-aligned", axA)})
			}
		}
	}
	va, okA := lineVector(p, c.LineA)
	vb, okB := lineVector(p, c.LineB)
	if !okA || !okB {
		return
	}
	angle := geom.AngleBetween(va, r3.Vec{}, vb)
	var dev float64
	if c.Kind == core.KindParallel {
		dev = math.Min(angle, math.Abs(angle-math.Pi))
	} else {
		dev = math.Abs(angle - math.Pi/2)
	}
	if dev > tol {
		r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: c.ID,
			Message:   fmt.Sprintf("%s lines measure %g rad apart", c.Kind, angle),
			Deviation: dev})
	}
}

func geomEqualDistances(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	var dists []float64
	for _, pr := range c.Pairs {
		va, okA := effective(p, pr[0])
		vb, okB := effective(p, pr[1])
		if okA && okB {
			dists = append(dists, geom.Distance(va, vb))
		}
	}
	if sp := spread(dists); sp > tol {
		r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: c.ID,
			Message:   fmt.Sprintf("pair distances spread by %g", sp),
			Deviation: sp})
	}
}

func geomEqualAngles(p *core.Project, c *core.Constraint, tol float64, r *Report) {
	var angles []float64
	for _, tr := range c.Triplets {
		va, okA := effective(p, tr[0])
		vv, okV := effective(p, tr[1])
		vc, okC := effective(p, tr[2])
		if okA && okV && okC {
			angles = append(angles, geom.AngleBetween(va, vv, vc))
		}
	}
	if sp := spread(angles); sp > tol {
		r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: c.ID,
			Message:   fmt.Sprintf("triplet angles spread by %g rad", sp),
			Deviation: sp})
	}
}

func geomProjection(p *core.Project, c *core.Constraint, _ float64, r *Report) {
	im, _ := p.Image(c.ImageID)
	if !im.ContainsPixel(c.U, c.V) {
		r.add(Issue{Severity: SeverityWarning, Code: CodeBadPayload, EntityID: c.ID,
			Message: fmt.Sprintf("observation (%g, %g) outside image %q bounds", c.U, c.V, c.ImageID)})
	}
}

// checkLine audits a direction-constrained line's alignment and length
// against the effective endpoint positions.
func checkLine(p *core.Project, l *core.Line, tol float64, r *Report) {
	if l.Construction {
		return
	}
	va, okA := effective(p, l.PointA)
	vb, okB := effective(p, l.PointB)
	if !okA || !okB {
		return
	}
	if l.Direction != core.DirFree {
		if aligned, dev := geom.LineAligned(va, vb, l.Direction, tol); !aligned {
			r.add(Issue{Severity: SeverityWarning, Code: CodeMisaligned, EntityID: l.ID,
				Message:   fmt.Sprintf("line %q deviates from declared direction %q by %g", l.ID, l.Direction, dev),
				Deviation: dev})
		}
	}
	if l.TargetLength > 0 {
		if dev := geom.LengthDeviation(va, vb, l.TargetLength); dev > tol {
			r.add(Issue{Severity: SeverityWarning, Code: CodeContradiction, EntityID: l.ID,
				Message:   fmt.Sprintf("line %q length differs from target %g by %g", l.ID, l.TargetLength, dev),
				Deviation: dev})
		}
	}
}

// checkOverConstraint compares, per point, the equations contributed by
// constraints and constrained lines against the point's free unknowns.
// candidate, when non-nil, is counted as if admitted.
func checkOverConstraint(p *core.Project, candidate *core.Constraint, r *Report) {
	equations := make(map[string]int)
	addEq := func(id string, n int) { equations[id] += n }

	count := func(c *core.Constraint) {
		switch c.Kind {
		case core.KindFixedPoint:
			addEq(c.Point, c.Target.Known())
		case core.KindDistance:
			addEq(c.PointA, 1)
			addEq(c.PointB, 1)
		case core.KindCollinear:
			if len(c.Points) > 2 {
				for _, id := range c.Points[2:] {
					addEq(id, 2)
				}
			}
		case core.KindCoplanar:
			for _, id := range c.Points {
				addEq(id, 1)
			}
		}
	}
	for _, c := range p.ConstraintsInOrder() {
		count(c)
	}
	if candidate != nil {
		count(candidate)
	}
	for _, lineID := range p.LineIDs() {
		l, _ := p.Line(lineID)
		if l.Construction || l.Direction == core.DirFree {
			continue
		}
		pinned := 0
		for a := core.AxisX; a <= core.AxisZ; a++ {
			if !l.Direction.Varies(a) {
				pinned++
			}
		}
		if l.TargetLength > 0 {
			pinned++
		}
		addEq(l.PointA, pinned)
		addEq(l.PointB, pinned)
	}

	for _, id := range p.PointIDs() {
		wp, _ := p.WorldPoint(id)
		free := 3 - wp.Locked.Known()
		if eq := equations[id]; eq > free {
			r.add(Issue{Severity: SeverityWarning, Code: CodeOverConstrained, EntityID: id,
				Message: fmt.Sprintf("point %q has %d equations for %d free unknowns; priority order resolves", id, eq, free)})
		}
	}
}

func spread(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	return hi - lo
}
