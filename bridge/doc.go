// Package bridge converts a project into the JSON contract consumed by an
// external bundle-adjustment solver and ingests the solver's result.
//
// What:
//
//   - Export builds a Snapshot: locked and effective coordinates per world
//     point, per-image observations, camera parameters (placeholders where
//     no camera has been fitted), the constraint list, and an orientation
//     hint derived from vanishing geometry when at least two axes are
//     estimable.
//   - DecodeResult parses and validates a solver payload; shape violations
//     are ErrMalformedResult, a fatal integration error distinct from a
//     solver that merely failed to converge.
//   - Ingest applies a successful Result atomically: either every
//     optimized coordinate, reprojection and diagnostic lands, or the
//     project is untouched.
//   - Session runs at most one solve at a time against a Solver; the
//     returned Solve handle supports Cancel, Wait and Done. A cancelled
//     solve discards its result without mutating the project.
//
// Errors:
//
//   - ErrMalformedResult: payload violates the contract shape.
//   - ErrSolveFailed: the solver reported non-success; wraps the reason.
//   - ErrCostExceeded: final cost above the configured acceptance bound.
//   - ErrUnknownEntity: result references ids absent from the project.
//   - ErrSolveInProgress: a second Start while one solve is in flight.
package bridge
