// Package geom provides the closed-form and least-squares geometry the
// reconstruction engine is built on: direction-constrained line solving,
// plane fitting, vanishing-point estimation and quaternion helpers.
//
// What:
//
//   - SolveEndpoint / LineAligned: derive or check a line endpoint from a
//     declared world direction and optional target length.
//   - FitPlane / PointPlaneDistance / SolvePlaneAxis: least-squares plane
//     equation ax+by+cz+d=0 (a²+b²+c²=1) via SVD of the centered point
//     matrix; the normal's sign carries no meaning.
//   - VanishingPoint: homogeneous cross-product intersection for two image
//     lines, least-squares intersection (minimum summed squared
//     point-to-line distance) for more.
//   - OrientationFromVanishing: camera-orientation hint as a unit
//     quaternion from ≥2 per-axis vanishing points and rough intrinsics.
//   - Quaternion helpers over gonum's num/quat: axis-angle construction,
//     rotation, inverse, multiplication, matrix conversion.
//
// Why:
//
//   - All functions are pure and deterministic so the propagator built on
//     top of them terminates and replays identically.
//
// Errors:
//
//   - ErrTooFewPoints, ErrDegeneratePlane: plane fitting preconditions.
//   - ErrTooFewLines, ErrDegenerateSegment, ErrVanishingAtInfinity:
//     vanishing-point estimation preconditions and near-parallel bundles.
//   - ErrTooFewAxes: orientation hints need two estimated axes.
//   - ErrZeroQuaternion: normalization of a zero quaternion.
package geom
