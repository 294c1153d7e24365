// Package core defines the entity graph of a reconstruction project:
// world points, lines, planes, vanishing lines, image observations,
// cameras and geometric constraints, owned by a single Project container.
//
// What:
//
//   - WorldPoint separates user-locked coordinates from propagator-inferred
//     and solver-optimized ones; Effective() resolves locked ?? inferred ??
//     optimized per axis.
//   - Line, Plane, VanishingLine and Constraint are pure data; constraints
//     are a tagged union (Kind + payload fields) with no behavior.
//   - Project owns every entity in id-keyed maps, maintains non-owning
//     id→id relationship indices, keeps constraint declaration order, and
//     tracks a dirty-point set consumed by the inference propagator.
//
// Why:
//
//   - Identifier-based indices keep the graph acyclic in memory: entities
//     never hold pointers to each other, only ids resolved through Project.
//   - Deletion cascades (a removed point takes its lines, observations and
//     constraints with it) so downstream packages never see dangling ids.
//
// Concurrency:
//
//   - Project guards all state with a single sync.RWMutex: reads may run
//     concurrently, mutation is single-writer. Mutators mark affected
//     points dirty; the propagator clears the set.
//
// Errors:
//
//   - ErrDuplicateID: entity with the same id already exists.
//   - ErrPointNotFound, ErrLineNotFound, ErrPlaneNotFound,
//     ErrImageNotFound, ErrCameraNotFound, ErrConstraintNotFound:
//     a referenced entity does not exist.
//   - ErrSamePoint: a line or pairwise constraint references one point twice.
//   - ErrBadConstraint: a constraint payload violates its kind's
//     structural minimums (participant counts, distinctness).
package core
