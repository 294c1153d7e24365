// Package rotera is the constraint inference and reconstruction
// preparation engine behind photogrammetry-assisted 3D modeling: sparse
// user knowledge in, dense solver-ready geometry out.
//
// 🚀 What does it do?
//
//	A thread-safe, id-based entity graph plus the machinery around it:
//		• Entity graph: world points, lines, planes, images, cameras,
//		  observations, vanishing lines, constraints
//		• Per-axis coordinates: locked beats inferred beats optimized
//		• Inference: fixed-point propagation of constraints to coordinates
//		• Validation: structural, geometric, redundancy, over-constraint
//		• Geometry: plane fitting, vanishing points, quaternion orientation
//		• Bridge: JSON contract to an external bundle-adjustment solver
//
// ✨ Why this shape?
//
//   - Advisory engine – contradictions warn and resolve by priority,
//     only structural impossibility blocks
//   - Rock-solid guarantees – single Project owner, R/W locks,
//     deterministic iteration everywhere
//   - Incremental – dirty-point tracking limits recomputation to the
//     affected subgraph
//
// Everything is organized under five subpackages:
//
//	core/     — Project, entities, per-axis Triplet, relationship indices
//	geom/     — vector, plane, vanishing-point and quaternion utilities
//	infer/    — priority-ordered constraint propagation to a fixed point
//	validate/ — non-mutating constraint and graph audits
//	bridge/   — solver snapshot export, result ingestion, solve session
//
// Quick ASCII example:
//
//	    A───B        lock A at the origin, declare A─B z-aligned with
//	    │            target length 2, and inference places B at (0,0,2)
//	    C            before any solver runs.
//
//	go get github.com/mfagerlund/Rotera-sub004
package rotera
