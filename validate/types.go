package validate

// Severity ranks an issue's impact.
type Severity int

const (
	// SeverityInfo marks purely informational findings (e.g. redundancy).
	SeverityInfo Severity = iota
	// SeverityWarning marks findings propagation will resolve by priority.
	SeverityWarning
	// SeverityError marks structural failures; a candidate constraint
	// with one must not be admitted.
	SeverityError
)

// String returns "info", "warning" or "error".
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Issue codes.
const (
	// CodeMissingRef: a referenced entity does not exist.
	CodeMissingRef = "missing_reference"
	// CodeDuplicateRef: participants that must be distinct are not.
	CodeDuplicateRef = "duplicate_reference"
	// CodeBadPayload: participant counts or values below the kind's minimum.
	CodeBadPayload = "bad_payload"
	// CodeContradiction: declared values disagree with locked/effective
	// coordinates beyond tolerance.
	CodeContradiction = "geometric_contradiction"
	// CodeOffPlane: a coplanar participant deviates from the fitted plane.
	CodeOffPlane = "off_plane"
	// CodeMisaligned: a line's endpoints violate its declared direction.
	CodeMisaligned = "misaligned_line"
	// CodeRedundant: the constraint adds no new information.
	CodeRedundant = "redundant"
	// CodeOverConstrained: more equations than free unknowns on a point.
	CodeOverConstrained = "over_constrained"
)

// Issue is one finding about a constraint or entity.
type Issue struct {
	// Severity ranks the finding.
	Severity Severity
	// Code is one of the Code* constants.
	Code string
	// EntityID names the constraint or entity concerned, when known.
	EntityID string
	// Message is a human-readable description.
	Message string
	// Deviation carries the measured distance or angle error for
	// geometric findings, in the units of the quantity checked.
	Deviation float64
}

// Report aggregates findings. Valid is true when no Error-severity issue
// is present; Warnings and Info never invalidate.
type Report struct {
	Valid  bool
	Issues []Issue
}

// add appends an issue, downgrading Valid on errors.
func (r *Report) add(i Issue) {
	if i.Severity == SeverityError {
		r.Valid = false
	}
	r.Issues = append(r.Issues, i)
}

// ByCode returns the issues carrying the given code.
func (r *Report) ByCode(code string) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Code == code {
			out = append(out, i)
		}
	}

	return out
}
