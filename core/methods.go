package core

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// AddConstraint admits a constraint after structural validation: the
// payload must satisfy its kind's minimums and every referenced entity
// must exist. Declaration order is preserved for the propagator's
// first-declared tie-break. Referenced points are marked dirty.
func (p *Project) AddConstraint(c *Constraint) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !c.structuralOK() {
		return "", fmt.Errorf("%w: %s", ErrBadConstraint, c.Kind)
	}
	for _, ptID := range c.PointRefs() {
		if _, ok := p.points[ptID]; !ok {
			return "", fmt.Errorf("%w: %q", ErrPointNotFound, ptID)
		}
	}
	for _, lineID := range c.LineRefs() {
		if _, ok := p.lines[lineID]; !ok {
			return "", fmt.Errorf("%w: %q", ErrLineNotFound, lineID)
		}
	}
	if c.Kind == KindProjection {
		if _, ok := p.images[c.ImageID]; !ok {
			return "", fmt.Errorf("%w: %q", ErrImageNotFound, c.ImageID)
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := p.constraints[c.ID]; exists {
		return "", fmt.Errorf("%w: constraint %q", ErrDuplicateID, c.ID)
	}

	p.constraints[c.ID] = c
	p.constraintOrder = append(p.constraintOrder, c.ID)
	for _, ptID := range c.PointRefs() {
		p.index(p.pointConstraints, ptID, c.ID)
		p.markDirty(ptID)
	}
	for _, lineID := range c.LineRefs() {
		if l, ok := p.lines[lineID]; ok {
			p.markDirty(l.PointA)
			p.markDirty(l.PointB)
		}
	}
	p.diagnostics = nil

	return c.ID, nil
}

// Constraint returns the constraint with the given id.
func (p *Project) Constraint(id string) (*Constraint, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.constraints[id]

	return c, ok
}

// RemoveConstraint deletes a constraint and marks its points dirty.
func (p *Project) RemoveConstraint(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.constraints[id]; !ok {
		return fmt.Errorf("%w: %q", ErrConstraintNotFound, id)
	}
	p.removeConstraintLocked(id)
	p.diagnostics = nil

	return nil
}

// removeConstraintLocked removes a constraint, unindexes it and drops it
// from declaration order. mu must be held.
func (p *Project) removeConstraintLocked(id string) {
	c, ok := p.constraints[id]
	if !ok {
		return
	}
	for _, ptID := range c.PointRefs() {
		p.unindex(p.pointConstraints, ptID, id)
		p.markDirty(ptID)
	}
	delete(p.constraints, id)
	for i, cid := range p.constraintOrder {
		if cid == id {
			p.constraintOrder = append(p.constraintOrder[:i], p.constraintOrder[i+1:]...)
			break
		}
	}
}

// ConstraintsInOrder returns all constraints in declaration order.
func (p *Project) ConstraintsInOrder() []*Constraint {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Constraint, 0, len(p.constraintOrder))
	for _, id := range p.constraintOrder {
		out = append(out, p.constraints[id])
	}

	return out
}

// PointIDs returns every world-point id, sorted.
func (p *Project) PointIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.points))
	for id := range p.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// LineIDs returns every line id, sorted.
func (p *Project) LineIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.lines))
	for id := range p.lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// PlaneIDs returns every plane id, sorted.
func (p *Project) PlaneIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.planes))
	for id := range p.planes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// ImageIDs returns every image id, sorted.
func (p *Project) ImageIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.images))
	for id := range p.images {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// ObservationIDs returns every image-point id, sorted.
func (p *Project) ObservationIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.observations))
	for id := range p.observations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// LinesOfPoint returns the ids of lines touching the point, sorted.
func (p *Project) LinesOfPoint(pointID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return sortedKeys(p.pointLines[pointID])
}

// ConstraintsOfPoint returns the ids of constraints touching the point, sorted.
func (p *Project) ConstraintsOfPoint(pointID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return sortedKeys(p.pointConstraints[pointID])
}

// PlanesOfPoint returns the ids of planes the point participates in, sorted.
func (p *Project) PlanesOfPoint(pointID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return sortedKeys(p.pointPlanes[pointID])
}

// ObservationsOfPoint returns the ids of observations of the point, sorted.
func (p *Project) ObservationsOfPoint(pointID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return sortedKeys(p.pointObs[pointID])
}

// ObservationsOfImage returns the ids of observations in the image, sorted.
func (p *Project) ObservationsOfImage(imageID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return sortedKeys(p.imageObs[imageID])
}

// Stats is a deterministic size snapshot for diagnostics and tests.
type Stats struct {
	Points       int
	Lines        int
	Planes       int
	Images       int
	Cameras      int
	Observations int
	Vanishing    int
	Constraints  int
	Dirty        int
}

// Stats returns current entity counts.
func (p *Project) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Stats{
		Points:       len(p.points),
		Lines:        len(p.lines),
		Planes:       len(p.planes),
		Images:       len(p.images),
		Cameras:      len(p.cameras),
		Observations: len(p.observations),
		Vanishing:    len(p.vanishing),
		Constraints:  len(p.constraints),
		Dirty:        len(p.dirty),
	}
}
