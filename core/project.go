package core

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// AddWorldPoint adds a point to the project. An empty ID is replaced by a
// generated uuid. Returns the id actually stored.
// Complexity: O(1).
func (p *Project) AddWorldPoint(wp *WorldPoint) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if wp.ID == "" {
		wp.ID = uuid.NewString()
	}
	if _, exists := p.points[wp.ID]; exists {
		return "", fmt.Errorf("%w: world point %q", ErrDuplicateID, wp.ID)
	}
	p.points[wp.ID] = wp
	p.markDirty(wp.ID)

	return wp.ID, nil
}

// WorldPoint returns the point with the given id.
func (p *Project) WorldPoint(id string) (*WorldPoint, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	wp, ok := p.points[id]

	return wp, ok
}

// RemoveWorldPoint deletes a point and cascades: lines touching it (with
// their own cascades), planes defined by it, observations of it and
// constraints mentioning it are all removed. Surviving neighbors are
// marked dirty.
func (p *Project) RemoveWorldPoint(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.points[id]; !ok {
		return fmt.Errorf("%w: %q", ErrPointNotFound, id)
	}

	for lineID := range p.pointLines[id] {
		p.removeLineLocked(lineID)
	}
	for planeID := range p.pointPlanes[id] {
		p.removePlaneLocked(planeID, id)
	}
	for obsID := range p.pointObs[id] {
		p.removeObservationLocked(obsID)
	}
	for cID := range p.pointConstraints[id] {
		p.removeConstraintLocked(cID)
	}

	delete(p.points, id)
	delete(p.pointLines, id)
	delete(p.pointPlanes, id)
	delete(p.pointObs, id)
	delete(p.pointConstraints, id)
	delete(p.dirty, id)
	p.diagnostics = nil

	return nil
}

// LockAxis sets a user-authoritative coordinate on one axis of a point.
// The point's Optimized value is discarded: a lock is a geometry change
// that invalidates the previous solve.
func (p *Project) LockAxis(pointID string, a Axis, v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wp, ok := p.points[pointID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPointNotFound, pointID)
	}
	wp.Locked.Set(a, v)
	wp.Optimized.Reset()
	p.diagnostics = nil
	p.markDirty(pointID)

	return nil
}

// UnlockAxis removes the user lock on one axis of a point.
func (p *Project) UnlockAxis(pointID string, a Axis) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wp, ok := p.points[pointID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPointNotFound, pointID)
	}
	wp.Locked.Clear(a)
	wp.Optimized.Reset()
	p.diagnostics = nil
	p.markDirty(pointID)

	return nil
}

// SetInferred commits a propagation result for one point. Reserved for the
// inference propagator; inferred values are never hand-set.
func (p *Project) SetInferred(pointID string, inferred Triplet, status PointStatus, conflicts []string, unstable bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wp, ok := p.points[pointID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPointNotFound, pointID)
	}
	wp.Inferred = inferred
	wp.Status = status
	wp.Conflicts = conflicts
	wp.Unstable = unstable

	return nil
}

// ApplySolution atomically applies an ingested solve: optimized positions
// per point, reprojections per observation and the run's diagnostics.
// If any referenced id is unknown, nothing is applied.
func (p *Project) ApplySolution(optimized map[string][3]float64, reprojections map[string]map[string][2]float64, diag *Diagnostics) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id := range optimized {
		if _, ok := p.points[id]; !ok {
			return fmt.Errorf("%w: %q", ErrPointNotFound, id)
		}
	}
	obsByImagePoint := make(map[string]map[string]*ImagePoint)
	for imgID, perPoint := range reprojections {
		if _, ok := p.images[imgID]; !ok {
			return fmt.Errorf("%w: %q", ErrImageNotFound, imgID)
		}
		index := make(map[string]*ImagePoint)
		for obsID := range p.imageObs[imgID] {
			obs := p.observations[obsID]
			index[obs.PointID] = obs
		}
		for ptID := range perPoint {
			if _, ok := index[ptID]; !ok {
				return fmt.Errorf("%w: point %q has no observation in image %q", ErrObservationNotFound, ptID, imgID)
			}
		}
		obsByImagePoint[imgID] = index
	}

	for id, xyz := range optimized {
		p.points[id].Optimized = NewTriplet(xyz[0], xyz[1], xyz[2])
	}
	for imgID, perPoint := range reprojections {
		for ptID, uv := range perPoint {
			obs := obsByImagePoint[imgID][ptID]
			obs.ReprojectedU = uv[0]
			obs.ReprojectedV = uv[1]
			obs.HasReprojection = true
		}
	}
	p.diagnostics = diag

	return nil
}

// AddLine adds a line between two existing, distinct points. Declared
// collinear points must exist as well.
func (p *Project) AddLine(l *Line) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l.PointA == l.PointB {
		return "", fmt.Errorf("%w: line %q", ErrSamePoint, l.Name)
	}
	for _, ptID := range append([]string{l.PointA, l.PointB}, l.Collinear...) {
		if _, ok := p.points[ptID]; !ok {
			return "", fmt.Errorf("%w: %q", ErrPointNotFound, ptID)
		}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, exists := p.lines[l.ID]; exists {
		return "", fmt.Errorf("%w: line %q", ErrDuplicateID, l.ID)
	}
	p.lines[l.ID] = l
	for _, ptID := range append([]string{l.PointA, l.PointB}, l.Collinear...) {
		p.index(p.pointLines, ptID, l.ID)
		p.markDirty(ptID)
	}
	p.diagnostics = nil

	return l.ID, nil
}

// Line returns the line with the given id.
func (p *Project) Line(id string) (*Line, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	l, ok := p.lines[id]

	return l, ok
}

// RemoveLine deletes a line, the constraints referencing it and the planes
// defined by it. Its points are marked dirty.
func (p *Project) RemoveLine(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.lines[id]; !ok {
		return fmt.Errorf("%w: %q", ErrLineNotFound, id)
	}
	p.removeLineLocked(id)
	p.diagnostics = nil

	return nil
}

// removeLineLocked removes a line and its dependents. mu must be held.
func (p *Project) removeLineLocked(id string) {
	l, ok := p.lines[id]
	if !ok {
		return
	}
	for cID, c := range p.constraints {
		if c.ReferencesLine(id) {
			p.removeConstraintLocked(cID)
		}
	}
	for plID, pl := range p.planes {
		for _, lineID := range pl.Lines {
			if lineID == id {
				p.removePlaneLocked(plID, "")
				break
			}
		}
	}
	for _, ptID := range append([]string{l.PointA, l.PointB}, l.Collinear...) {
		p.unindex(p.pointLines, ptID, id)
		p.markDirty(ptID)
	}
	delete(p.lines, id)
}

// AddPlane adds a plane. Its defining points/lines and members must exist;
// defining points must be distinct.
func (p *Project) AddPlane(pl *Plane) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch pl.Def {
	case PlaneThreePoints:
		if len(pl.Points) != 3 || !distinct(pl.Points) || len(pl.Lines) != 0 {
			return "", fmt.Errorf("%w: three-point plane needs exactly 3 distinct points", ErrBadConstraint)
		}
	case PlaneTwoLines:
		if len(pl.Lines) != 2 || pl.Lines[0] == pl.Lines[1] || len(pl.Points) != 0 {
			return "", fmt.Errorf("%w: two-line plane needs exactly 2 distinct lines", ErrBadConstraint)
		}
	case PlaneLinePoint:
		if len(pl.Lines) != 1 || len(pl.Points) != 1 {
			return "", fmt.Errorf("%w: line-point plane needs exactly 1 line and 1 point", ErrBadConstraint)
		}
	default:
		return "", fmt.Errorf("%w: unknown plane definition", ErrBadConstraint)
	}
	for _, ptID := range append(append([]string{}, pl.Points...), pl.Members...) {
		if _, ok := p.points[ptID]; !ok {
			return "", fmt.Errorf("%w: %q", ErrPointNotFound, ptID)
		}
	}
	for _, lineID := range pl.Lines {
		if _, ok := p.lines[lineID]; !ok {
			return "", fmt.Errorf("%w: %q", ErrLineNotFound, lineID)
		}
	}
	if pl.ID == "" {
		pl.ID = uuid.NewString()
	}
	if _, exists := p.planes[pl.ID]; exists {
		return "", fmt.Errorf("%w: plane %q", ErrDuplicateID, pl.ID)
	}
	p.planes[pl.ID] = pl
	for _, ptID := range p.planePointsLocked(pl) {
		p.index(p.pointPlanes, ptID, pl.ID)
		p.markDirty(ptID)
	}
	p.diagnostics = nil

	return pl.ID, nil
}

// Plane returns the plane with the given id.
func (p *Project) Plane(id string) (*Plane, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pl, ok := p.planes[id]

	return pl, ok
}

// SetPlaneEquation stores a fitted, normalized plane equation. Reserved for
// the inference propagator.
func (p *Project) SetPlaneEquation(id string, eq [4]float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pl, ok := p.planes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPlaneNotFound, id)
	}
	pl.Equation = eq
	pl.HasEquation = true

	return nil
}

// RemovePlane deletes a plane. Its participating points are marked dirty.
func (p *Project) RemovePlane(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.planes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrPlaneNotFound, id)
	}
	p.removePlaneLocked(id, "")
	p.diagnostics = nil

	return nil
}

// removePlaneLocked removes a plane, skipping index updates for
// skipPointID (a point being removed itself). mu must be held.
func (p *Project) removePlaneLocked(id, skipPointID string) {
	pl, ok := p.planes[id]
	if !ok {
		return
	}
	for _, ptID := range p.planePointsLocked(pl) {
		if ptID == skipPointID {
			continue
		}
		p.unindex(p.pointPlanes, ptID, id)
		p.markDirty(ptID)
	}
	delete(p.planes, id)
}

// PlanePoints resolves every point participating in the plane: defining
// points, defining lines' endpoints and members, in that order.
func (p *Project) PlanePoints(id string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pl, ok := p.planes[id]
	if !ok {
		return nil
	}

	return p.planePointsLocked(pl)
}

// planePointsLocked resolves every point participating in a plane:
// defining points, defining lines' endpoints and members. mu must be held.
func (p *Project) planePointsLocked(pl *Plane) []string {
	ids := append([]string{}, pl.Points...)
	for _, lineID := range pl.Lines {
		if l, ok := p.lines[lineID]; ok {
			ids = append(ids, l.PointA, l.PointB)
		}
	}

	return append(ids, pl.Members...)
}

// markDirty records a stale point. mu must be held.
func (p *Project) markDirty(pointID string) {
	if _, ok := p.points[pointID]; ok {
		p.dirty[pointID] = struct{}{}
	}
}

// DirtyPoints returns the ids of points needing re-inference, sorted.
func (p *Project) DirtyPoints() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.dirty))
	for id := range p.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// ClearDirty empties the dirty-point set; the propagator calls this after
// committing results.
func (p *Project) ClearDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = make(map[string]struct{})
}

// MarkAllDirty schedules every point for re-inference.
func (p *Project) MarkAllDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.points {
		p.dirty[id] = struct{}{}
	}
}

// index adds value to the id-keyed set multimap. mu must be held.
func (p *Project) index(m map[string]map[string]struct{}, key, value string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[value] = struct{}{}
}

// unindex removes value from the multimap, dropping empty sets. mu must be held.
func (p *Project) unindex(m map[string]map[string]struct{}, key, value string) {
	if set, ok := m[key]; ok {
		delete(set, value)
		if len(set) == 0 {
			delete(m, key)
		}
	}
}

// sortedKeys returns the sorted ids of a multimap bucket. mu must be held.
func sortedKeys(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
