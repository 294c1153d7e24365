// Package infer recomputes every world point's inferred coordinates from
// the project's locked values and active constraints.
//
// What:
//
//   - Propagate runs an iterative constraint-satisfaction pass over the
//     entity graph: FixedPoint constraints pin axes directly, direction-
//     constrained lines copy pinned axes (and derive the far endpoint when
//     a target length is declared), collinear groups place points on the
//     line through two positioned anchors, and coplanar groups solve a
//     single missing axis from the fitted plane equation.
//   - Each pass applies sources in fixed priority order
//     (Locked > FixedPoint > Line > Collinear > Coplanar); within one
//     priority the first-declared constraint wins. Disagreements beyond
//     tolerance become non-fatal Conflict records and propagation
//     continues with the priority winner.
//   - Iteration stops at a fixed point or at MaxPasses; points still
//     moving at the cap are flagged Unstable with their last values kept.
//
// Why:
//
//   - The graph may be incomplete, redundant or contradictory; the solver
//     must still terminate deterministically and produce a best-effort
//     position for every point it can reach.
//
// Determinism:
//
//   - Points are visited in sorted-id order, constraints in declaration
//     order and lines/planes in sorted-id order, so identical graphs
//     always propagate identically.
//
// Errors:
//
//   - ErrNilProject: Propagate was handed a nil project.
//   - ErrBadOptions: non-positive tolerance or pass cap.
package infer
