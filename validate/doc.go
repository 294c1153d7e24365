// Package validate checks a project's constraints for structural and
// geometric consistency without mutating anything.
//
// What:
//
//   - Validate audits the whole graph; Check audits one candidate
//     constraint before admission.
//   - Structural issues (missing or duplicate entity references, counts
//     below a kind's minimum) are Errors: a candidate failing them must
//     not be created.
//   - Geometric issues (declared values contradicting locked or effective
//     coordinates beyond tolerance, off-plane coplanar members) are
//     Warnings: propagation resolves them by priority instead of
//     rejecting.
//   - Redundancy (a constraint adding no new information) and
//     over-constraint (more equations than free unknowns on a point) are
//     Info and Warning respectively, both non-blocking.
//
// Why:
//
//   - Users keep working with contradictory sketches, so only structural
//     impossibilities block; everything else is surfaced and carried on.
//
// Dispatch:
//
//   - Per-kind checks are pure functions dispatched through a table keyed
//     by core.ConstraintKind, mirroring the tagged-union constraint model.
package validate
