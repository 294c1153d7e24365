package core

// ConstraintKind tags the variant of a Constraint.
type ConstraintKind int

const (
	// KindFixedPoint pins one or more axes of a point to given values.
	KindFixedPoint ConstraintKind = iota
	// KindDistance declares the distance between two points.
	KindDistance
	// KindAngle declares the angle at Vertex between rays to PointA and PointC.
	KindAngle
	// KindCollinear declares three or more points collinear.
	KindCollinear
	// KindCoplanar declares four or more points coplanar.
	KindCoplanar
	// KindParallel declares two lines parallel.
	KindParallel
	// KindPerpendicular declares two lines perpendicular.
	KindPerpendicular
	// KindEqualDistances declares two or more point pairs equidistant.
	KindEqualDistances
	// KindEqualAngles declares two or more angle triplets equal.
	KindEqualAngles
	// KindProjection ties a point to an observed pixel in one image.
	KindProjection
)

// String returns the snapshot tag for the constraint kind.
func (k ConstraintKind) String() string {
	switch k {
	case KindFixedPoint:
		return "fixed_point"
	case KindDistance:
		return "distance"
	case KindAngle:
		return "angle"
	case KindCollinear:
		return "collinear_points"
	case KindCoplanar:
		return "coplanar_points"
	case KindParallel:
		return "parallel_lines"
	case KindPerpendicular:
		return "perpendicular_lines"
	case KindEqualDistances:
		return "equal_distances"
	case KindEqualAngles:
		return "equal_angles"
	case KindProjection:
		return "projection"
	default:
		return "unknown"
	}
}

// Constraint is a tagged union: Kind selects which payload fields apply.
// Constraints carry no behavior; evaluation and validation are dispatched
// per kind by the infer and validate packages.
type Constraint struct {
	// ID uniquely identifies the constraint within its Project.
	ID string
	// Kind selects the variant.
	Kind ConstraintKind

	// Point is the subject of FixedPoint and Projection constraints.
	Point string
	// Target holds the pinned axes of a FixedPoint constraint; unset axes
	// are unconstrained.
	Target Triplet

	// PointA, PointB are the endpoints of a Distance constraint;
	// PointA, Vertex, PointC span an Angle constraint.
	PointA string
	PointB string
	Vertex string
	PointC string
	// Value is the declared distance (length units) or angle (radians).
	Value float64

	// Points are the participants of Collinear (≥3) and Coplanar (≥4).
	Points []string

	// LineA, LineB are the participants of Parallel and Perpendicular.
	LineA string
	LineB string

	// Pairs are the point pairs of EqualDistances (≥2 pairs).
	Pairs [][2]string
	// Triplets are the [end, vertex, end] triplets of EqualAngles (≥2).
	Triplets [][3]string

	// ImageID, U, V locate the observed pixel of a Projection constraint.
	ImageID string
	U, V    float64
}

// PointRefs returns every world-point id the constraint references, in
// payload order, duplicates included.
func (c *Constraint) PointRefs() []string {
	var refs []string
	switch c.Kind {
	case KindFixedPoint, KindProjection:
		refs = append(refs, c.Point)
	case KindDistance:
		refs = append(refs, c.PointA, c.PointB)
	case KindAngle:
		refs = append(refs, c.PointA, c.Vertex, c.PointC)
	case KindCollinear, KindCoplanar:
		refs = append(refs, c.Points...)
	case KindEqualDistances:
		for _, pr := range c.Pairs {
			refs = append(refs, pr[0], pr[1])
		}
	case KindEqualAngles:
		for _, tr := range c.Triplets {
			refs = append(refs, tr[0], tr[1], tr[2])
		}
	}

	return refs
}

// LineRefs returns every line id the constraint references.
func (c *Constraint) LineRefs() []string {
	if c.Kind == KindParallel || c.Kind == KindPerpendicular {
		return []string{c.LineA, c.LineB}
	}

	return nil
}

// ReferencesPoint reports whether the constraint mentions the point id.
func (c *Constraint) ReferencesPoint(id string) bool {
	for _, ref := range c.PointRefs() {
		if ref == id {
			return true
		}
	}

	return false
}

// ReferencesLine reports whether the constraint mentions the line id.
func (c *Constraint) ReferencesLine(id string) bool {
	for _, ref := range c.LineRefs() {
		if ref == id {
			return true
		}
	}

	return false
}

// structuralOK checks the kind's structural minimums: participant counts
// and distinctness. Entity existence is checked by Project.AddConstraint.
func (c *Constraint) structuralOK() bool {
	switch c.Kind {
	case KindFixedPoint:
		return c.Point != "" && !c.Target.Empty()
	case KindDistance:
		return c.PointA != "" && c.PointB != "" && c.PointA != c.PointB && c.Value >= 0
	case KindAngle:
		return c.PointA != "" && c.Vertex != "" && c.PointC != "" &&
			c.PointA != c.Vertex && c.PointC != c.Vertex && c.PointA != c.PointC
	case KindCollinear:
		return len(c.Points) >= 3 && distinct(c.Points)
	case KindCoplanar:
		return len(c.Points) >= 4 && distinct(c.Points)
	case KindParallel, KindPerpendicular:
		return c.LineA != "" && c.LineB != "" && c.LineA != c.LineB
	case KindEqualDistances:
		if len(c.Pairs) < 2 {
			return false
		}
		for _, pr := range c.Pairs {
			if pr[0] == "" || pr[1] == "" || pr[0] == pr[1] {
				return false
			}
		}

		return true
	case KindEqualAngles:
		if len(c.Triplets) < 2 {
			return false
		}
		for _, tr := range c.Triplets {
			if tr[0] == "" || tr[1] == "" || tr[2] == "" ||
				tr[0] == tr[1] || tr[2] == tr[1] || tr[0] == tr[2] {
				return false
			}
		}

		return true
	case KindProjection:
		return c.Point != "" && c.ImageID != ""
	default:
		return false
	}
}

// distinct reports whether all ids in the slice are non-empty and unique.
func distinct(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}

	return true
}
