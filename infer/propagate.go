package infer

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mfagerlund/Rotera-sub004/core"
	"github.com/mfagerlund/Rotera-sub004/geom"
)

// Propagate recomputes inferred coordinates and point statuses from the
// current constraints. It is a pure function of the graph: re-running on
// an unchanged project yields identical values.
//
// When the project has dirty points, only the constraint-connected
// subgraph around them is recomputed; a project with no dirty points is
// recomputed in full. The dirty set is cleared on return.
func Propagate(p *core.Project, opts *Options) (*Report, error) {
	if p == nil {
		return nil, ErrNilProject
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Tolerance <= 0 || o.MaxPasses <= 0 {
		return nil, ErrBadOptions
	}

	st := newState(p, o)
	report := st.run()
	st.commit(report)
	p.ClearDirty()

	return report, nil
}

// convEps returns the fixed-point detection epsilon, well below the
// conflict tolerance so agreement and convergence never blur.
func (o Options) convEps() float64 { return o.Tolerance * 1e-3 }

// state carries one propagation run's working values.
type state struct {
	p    *core.Project
	opts Options

	scope   []string // sorted point ids being recomputed
	inScope map[string]struct{}

	vals map[string]*core.Triplet // working value per in-scope point
	prio map[string]*[3]int       // per-axis source priority
	src  map[string]*[3]string    // per-axis source label

	conflicts    []Conflict
	conflictSeen map[string]struct{}
	under        map[string]struct{}

	changed     bool                // any value moved this pass
	movedInPass map[string]struct{} // points that moved this pass
}

func newState(p *core.Project, opts Options) *state {
	st := &state{
		p:            p,
		opts:         opts,
		inScope:      make(map[string]struct{}),
		vals:         make(map[string]*core.Triplet),
		prio:         make(map[string]*[3]int),
		src:          make(map[string]*[3]string),
		conflictSeen: make(map[string]struct{}),
		under:        make(map[string]struct{}),
		movedInPass:  make(map[string]struct{}),
	}
	st.scope = st.resolveScope()
	for _, id := range st.scope {
		st.inScope[id] = struct{}{}
		wp, _ := p.WorldPoint(id)
		val := &core.Triplet{}
		pr := &[3]int{prioNone, prioNone, prioNone}
		lbl := &[3]string{}
		for a := core.AxisX; a <= core.AxisZ; a++ {
			if v, ok := wp.Locked.At(a); ok {
				val.Set(a, v)
				pr[a] = prioLocked
				lbl[a] = sourceName(prioLocked)
			}
		}
		st.vals[id] = val
		st.prio[id] = pr
		st.src[id] = lbl
	}

	return st
}

// resolveScope expands the dirty set to its constraint-connected closure,
// or returns all points when nothing is dirty.
func (st *state) resolveScope() []string {
	dirty := st.p.DirtyPoints()
	if len(dirty) == 0 {
		return st.p.PointIDs()
	}

	seen := make(map[string]struct{})
	queue := append([]string{}, dirty...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, done := seen[id]; done {
			continue
		}
		seen[id] = struct{}{}

		for _, lineID := range st.p.LinesOfPoint(id) {
			if l, ok := st.p.Line(lineID); ok {
				queue = append(queue, l.PointA, l.PointB)
				queue = append(queue, l.Collinear...)
			}
		}
		for _, cID := range st.p.ConstraintsOfPoint(id) {
			if c, ok := st.p.Constraint(cID); ok {
				queue = append(queue, c.PointRefs()...)
			}
		}
		for _, plID := range st.p.PlanesOfPoint(id) {
			queue = append(queue, st.p.PlanePoints(plID)...)
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// get returns the current working value of a point, falling back to the
// committed effective value for points outside the recomputed scope.
func (st *state) get(id string) core.Triplet {
	if v, ok := st.vals[id]; ok {
		return *v
	}
	if wp, ok := st.p.WorldPoint(id); ok {
		return wp.Effective()
	}

	return core.Triplet{}
}

// getVec returns the point's full working position, if complete.
func (st *state) getVec(id string) (r3.Vec, bool) {
	t := st.get(id)
	v, ok := t.Vec()

	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, ok
}

// propose offers a value for one axis of a point. Stronger priorities
// overwrite, equal or weaker priorities never do; disagreement beyond
// tolerance is recorded as a conflict either way.
func (st *state) propose(id string, a core.Axis, v float64, prio int, label string) {
	if _, ok := st.inScope[id]; !ok {
		return
	}
	val := st.vals[id]
	cur, set := val.At(a)
	if !set {
		val.Set(a, v)
		st.prio[id][a] = prio
		st.src[id][a] = label
		st.moved(id)

		return
	}

	disagree := math.Abs(v-cur) > st.opts.Tolerance
	if prio < st.prio[id][a] {
		if disagree {
			st.recordConflict(id, a, v, cur, label, st.src[id][a])
		}
		if math.Abs(v-cur) > st.opts.convEps() {
			st.moved(id)
		}
		val.Set(a, v)
		st.prio[id][a] = prio
		st.src[id][a] = label

		return
	}
	if disagree {
		st.recordConflict(id, a, cur, v, st.src[id][a], label)
	}
}

func (st *state) moved(id string) {
	st.changed = true
	st.movedInPass[id] = struct{}{}
}

func (st *state) recordConflict(id string, a core.Axis, kept, rejected float64, winner, loser string) {
	key := fmt.Sprintf("%s|%s|%s|%s|%.9f|%.9f", id, a, winner, loser, kept, rejected)
	if _, dup := st.conflictSeen[key]; dup {
		return
	}
	st.conflictSeen[key] = struct{}{}
	st.conflicts = append(st.conflicts, Conflict{
		PointID:  id,
		Axis:     a,
		Kept:     kept,
		Rejected: rejected,
		Winner:   winner,
		Loser:    loser,
	})
}

// run iterates constraint application to a fixed point or the pass cap.
func (st *state) run() *Report {
	report := &Report{}
	for pass := 1; pass <= st.opts.MaxPasses; pass++ {
		st.changed = false
		st.movedInPass = make(map[string]struct{})

		st.applyFixedPoints()
		st.applyLines()
		st.applyCollinear()
		st.applyCoplanar()

		report.Passes = pass
		if !st.changed {
			report.Stable = true
			break
		}
	}

	return report
}

// applyFixedPoints pins target axes, in declaration order.
func (st *state) applyFixedPoints() {
	for _, c := range st.p.ConstraintsInOrder() {
		if c.Kind != core.KindFixedPoint {
			continue
		}
		for a := core.AxisX; a <= core.AxisZ; a++ {
			if v, ok := c.Target.At(a); ok {
				st.propose(c.Point, a, v, prioFixed, sourceName(prioFixed))
			}
		}
	}
}

// applyLines copies pinned axes across direction-constrained lines and
// derives the far endpoint of single-axis lines with a target length.
// Construction lines are inert.
func (st *state) applyLines() {
	for _, lineID := range st.p.LineIDs() {
		l, _ := st.p.Line(lineID)
		if l.Construction || l.Direction == core.DirFree {
			continue
		}
		label := "line " + lineLabel(l)
		va, vb := st.get(l.PointA), st.get(l.PointB)

		for a := core.AxisX; a <= core.AxisZ; a++ {
			if l.Direction.Varies(a) {
				continue
			}
			if v, ok := va.At(a); ok {
				st.propose(l.PointB, a, v, prioLine, label)
			}
			if v, ok := vb.At(a); ok {
				st.propose(l.PointA, a, v, prioLine, label)
			}
		}

		axis, single := l.Direction.SingleAxis()
		if !single || l.TargetLength <= 0 {
			continue
		}
		// Canonical choice: the far endpoint sits along the positive axis.
		if v, ok := va.At(axis); ok {
			st.propose(l.PointB, axis, v+l.TargetLength, prioLine, label)
		} else if v, ok := vb.At(axis); ok {
			st.propose(l.PointA, axis, v-l.TargetLength, prioLine, label)
		}
	}
}

// collinearGroup places the members of one ordered collinear group using
// its first two fully positioned members as anchors.
func (st *state) collinearGroup(group []string, label string) {
	var anchorA, anchorB r3.Vec
	anchors := 0
	anchorIdx := [2]int{-1, -1}
	for i, id := range group {
		if v, ok := st.getVec(id); ok {
			if anchors == 0 {
				anchorA = v
			} else {
				anchorB = v
			}
			anchorIdx[anchors] = i
			anchors++
			if anchors == 2 {
				break
			}
		}
	}
	if anchors < 2 {
		for _, id := range group {
			if _, ok := st.getVec(id); !ok {
				st.markUnderdetermined(id)
			}
		}

		return
	}
	if geom.Distance(anchorA, anchorB) < st.opts.convEps() {
		return
	}

	for i, id := range group {
		if i == anchorIdx[0] || i == anchorIdx[1] {
			continue
		}
		t := st.get(id)
		switch {
		case t.Complete():
			v, _ := st.getVec(id)
			proj, _ := geom.ProjectOnLine(anchorA, anchorB, v)
			st.proposeVec(id, proj, prioCollinear, label)
		case t.Known() > 0:
			param, ok := geom.SolveCollinearParam(anchorA, anchorB, t)
			if !ok {
				st.markUnderdetermined(id)
				continue
			}
			st.proposeVec(id, geom.PointOnLine(anchorA, anchorB, param), prioCollinear, label)
		default:
			st.markUnderdetermined(id)
		}
	}
}

// applyCollinear processes Collinear constraints in declaration order,
// then lines carrying extra collinear members in sorted-id order.
func (st *state) applyCollinear() {
	for _, c := range st.p.ConstraintsInOrder() {
		if c.Kind == core.KindCollinear {
			st.collinearGroup(c.Points, "collinear")
		}
	}
	for _, lineID := range st.p.LineIDs() {
		l, _ := st.p.Line(lineID)
		if l.Construction || len(l.Collinear) == 0 {
			continue
		}
		group := append([]string{l.PointA, l.PointB}, l.Collinear...)
		st.collinearGroup(group, "collinear line "+lineLabel(l))
	}
}

// coplanarGroup fits a plane through the group's positioned members and,
// when exactly one member is unplaced, solves its single missing axis from
// the plane equation. Returns the fitted equation for plane entities.
func (st *state) coplanarGroup(group []string, label string) ([4]float64, bool) {
	var known []r3.Vec
	var unknown []string
	for _, id := range group {
		if v, ok := st.getVec(id); ok {
			known = append(known, v)
		} else {
			unknown = append(unknown, id)
		}
	}
	if len(known) < 3 {
		for _, id := range unknown {
			st.markUnderdetermined(id)
		}

		return [4]float64{}, false
	}
	eq, _, err := geom.FitPlane(known)
	if err != nil {
		return [4]float64{}, false
	}
	if len(unknown) == 1 {
		id := unknown[0]
		t := st.get(id)
		solved := false
		for a := core.AxisX; a <= core.AxisZ; a++ {
			if _, set := t.At(a); set {
				continue
			}
			if v, ok := geom.SolvePlaneAxis(eq, t, a); ok {
				st.propose(id, a, v, prioCoplanar, label)
				solved = true
			}
			break
		}
		if !solved {
			st.markUnderdetermined(id)
		}
	} else {
		for _, id := range unknown {
			st.markUnderdetermined(id)
		}
	}

	return eq, true
}

// applyCoplanar processes Coplanar constraints in declaration order, then
// plane entities in sorted-id order, refreshing their fitted equations.
func (st *state) applyCoplanar() {
	for _, c := range st.p.ConstraintsInOrder() {
		if c.Kind == core.KindCoplanar {
			st.coplanarGroup(c.Points, "coplanar")
		}
	}
	for _, planeID := range st.p.PlaneIDs() {
		group := st.p.PlanePoints(planeID)
		if len(group) < 3 {
			continue
		}
		if eq, ok := st.coplanarGroup(group, "plane"); ok {
			_ = st.p.SetPlaneEquation(planeID, eq)
		}
	}
}

func (st *state) proposeVec(id string, v r3.Vec, prio int, label string) {
	st.propose(id, core.AxisX, v.X, prio, label)
	st.propose(id, core.AxisY, v.Y, prio, label)
	st.propose(id, core.AxisZ, v.Z, prio, label)
}

func (st *state) markUnderdetermined(id string) {
	if _, ok := st.inScope[id]; ok {
		st.under[id] = struct{}{}
	}
}

// commit writes working values back into the project and finalizes the report.
func (st *state) commit(report *Report) {
	report.Conflicts = st.conflicts
	// A point flagged on an early pass may have been placed by a later one;
	// only still-incomplete points are underdetermined.
	for id := range st.under {
		if v, ok := st.vals[id]; ok && v.Complete() {
			continue
		}
		report.Underdetermined = append(report.Underdetermined, id)
	}
	sort.Strings(report.Underdetermined)

	for _, id := range st.scope {
		wp, _ := st.p.WorldPoint(id)
		val := st.vals[id]
		pr := st.prio[id]

		var inferred core.Triplet
		for a := core.AxisX; a <= core.AxisZ; a++ {
			if v, ok := val.At(a); ok && pr[a] != prioLocked {
				inferred.Set(a, v)
			}
		}

		status := core.StatusFree
		switch {
		case wp.Locked.Complete():
			status = core.StatusLocked
		case val.Complete():
			status = core.StatusInferred
		case val.Known() > 0:
			status = core.StatusPartial
		}

		var conflicts []string
		for _, c := range st.conflicts {
			if c.PointID == id {
				conflicts = append(conflicts,
					fmt.Sprintf("%s: kept %.6g from %s, rejected %.6g from %s",
						c.Axis, c.Kept, c.Winner, c.Rejected, c.Loser))
			}
		}

		_, unstable := st.movedInPass[id]
		unstable = unstable && !report.Stable

		if !wp.Inferred.ApproxEqual(inferred, st.opts.convEps()) {
			report.Changed = append(report.Changed, id)
		}
		_ = st.p.SetInferred(id, inferred, status, conflicts, unstable)
	}
	sort.Strings(report.Changed)
}

// lineLabel prefers the display name over the id.
func lineLabel(l *core.Line) string {
	if l.Name != "" {
		return l.Name
	}

	return l.ID
}
