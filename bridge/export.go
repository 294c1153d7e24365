package bridge

import (
	"github.com/mfagerlund/Rotera-sub004/core"
	"github.com/mfagerlund/Rotera-sub004/geom"
)

// Export builds the solver input from the project's current state.
// Line directions, target lengths and plane memberships are serialized as
// constraints alongside the explicit constraint list, so the solver sees
// one uniform stream.
func Export(p *core.Project) (*Snapshot, error) {
	if p == nil {
		return nil, ErrNilProject
	}
	snap := &Snapshot{
		Version:     p.Version(),
		Tolerance:   p.Tolerance(),
		WorldPoints: make(map[string]SnapshotPoint),
		Images:      make(map[string]SnapshotImage),
		Cameras:     make(map[string]SnapshotCamera),
	}

	for _, id := range p.PointIDs() {
		wp, _ := p.WorldPoint(id)
		snap.WorldPoints[id] = SnapshotPoint{
			LockedXYZ:    tripletPtrs(wp.Locked),
			EffectiveXYZ: tripletPtrs(wp.Effective()),
		}
	}

	for _, imageID := range p.ImageIDs() {
		im, _ := p.Image(imageID)
		si := SnapshotImage{Width: im.Width, Height: im.Height}
		for _, obsID := range p.ObservationsOfImage(imageID) {
			obs, _ := p.Observation(obsID)
			si.Points = append(si.Points, SnapshotObservation{
				WorldPointID: obs.PointID, U: obs.U, V: obs.V,
			})
		}

		cam, fitted := p.CameraOfImage(imageID)
		if fitted {
			si.CameraID = cam.ID
			snap.Cameras[cam.ID] = SnapshotCamera{
				ImageID: imageID, K: cam.K, R: cam.R, T: cam.T,
				LockIntrinsics:  cam.LockIntrinsics,
				LockRotation:    cam.LockRotation,
				LockTranslation: cam.LockTranslation,
			}
		} else {
			cam = placeholderCamera(im)
			si.CameraID = cam.ID
			snap.Cameras[cam.ID] = SnapshotCamera{
				ImageID: imageID, K: cam.K, Placeholder: true,
			}
		}

		if hint, ok := orientationHint(p, imageID, cam); ok {
			si.OrientationHint = &hint
		}
		snap.Images[imageID] = si
	}

	snap.Constraints = exportConstraints(p)

	return snap, nil
}

// tripletPtrs converts a triplet into the wire form: nil per unset axis.
func tripletPtrs(t core.Triplet) [3]*float64 {
	var out [3]*float64
	for a := core.AxisX; a <= core.AxisZ; a++ {
		if v, ok := t.At(a); ok {
			out[int(a)] = &v
		}
	}

	return out
}

// placeholderCamera synthesizes intrinsics for an image no camera has been
// fitted for: principal point at the center, focal length 1.2 times the
// larger dimension.
func placeholderCamera(im *core.Image) *core.Camera {
	f := 1.2 * float64(max(im.Width, im.Height))

	return &core.Camera{
		ID:      "placeholder:" + im.ID,
		ImageID: im.ID,
		K:       []float64{f, f, float64(im.Width) / 2, float64(im.Height) / 2},
	}
}

// orientationHint estimates the image's camera orientation from its
// vanishing geometry. At least two axes must yield a vanishing point.
func orientationHint(p *core.Project, imageID string, cam *core.Camera) ([4]float64, bool) {
	vps := make(map[core.Axis][2]float64)
	for axis := core.AxisX; axis <= core.AxisZ; axis++ {
		lines := p.VanishingLinesOfImage(imageID, axis)
		if len(lines) < 2 {
			continue
		}
		segs := make([]geom.Segment, len(lines))
		for i, vl := range lines {
			segs[i] = geom.Segment{U1: vl.U1, V1: vl.V1, U2: vl.U2, V2: vl.V2}
		}
		u, v, err := geom.VanishingPoint(segs)
		if err != nil {
			continue
		}
		vps[axis] = [2]float64{u, v}
	}
	if len(vps) < 2 {
		return [4]float64{}, false
	}

	q, err := geom.OrientationFromVanishing(vps, cam.K[0], cam.K[1], cam.K[2], cam.K[3])
	if err != nil {
		return [4]float64{}, false
	}

	return [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}, true
}

// exportConstraints flattens explicit constraints, constrained lines and
// plane memberships into the uniform wire list.
func exportConstraints(p *core.Project) []SnapshotConstraint {
	var out []SnapshotConstraint

	for _, c := range p.ConstraintsInOrder() {
		out = append(out, SnapshotConstraint{
			Type:       c.Kind.String(),
			Parameters: constraintParams(c),
		})
	}

	for _, lineID := range p.LineIDs() {
		l, _ := p.Line(lineID)
		if l.Construction {
			continue
		}
		if l.Direction != core.DirFree {
			out = append(out, SnapshotConstraint{
				Type: "line_direction",
				Parameters: map[string]any{
					"line": l.ID, "point_a": l.PointA, "point_b": l.PointB,
					"direction": l.Direction.String(),
				},
			})
		}
		if l.TargetLength > 0 {
			out = append(out, SnapshotConstraint{
				Type: "line_length",
				Parameters: map[string]any{
					"line": l.ID, "point_a": l.PointA, "point_b": l.PointB,
					"length": l.TargetLength,
				},
			})
		}
	}

	for _, planeID := range p.PlaneIDs() {
		pts := p.PlanePoints(planeID)
		if len(pts) < 4 {
			continue
		}
		out = append(out, SnapshotConstraint{
			Type:       "coplanar",
			Parameters: map[string]any{"plane": planeID, "points": pts},
		})
	}

	return out
}

func constraintParams(c *core.Constraint) map[string]any {
	params := make(map[string]any)
	switch c.Kind {
	case core.KindFixedPoint:
		params["point"] = c.Point
		for a := core.AxisX; a <= core.AxisZ; a++ {
			if v, ok := c.Target.At(a); ok {
				params[a.String()] = v
			}
		}
	case core.KindDistance:
		params["point_a"] = c.PointA
		params["point_b"] = c.PointB
		params["value"] = c.Value
	case core.KindAngle:
		params["point_a"] = c.PointA
		params["vertex"] = c.Vertex
		params["point_c"] = c.PointC
		params["value"] = c.Value
	case core.KindCollinear, core.KindCoplanar:
		params["points"] = c.Points
	case core.KindParallel, core.KindPerpendicular:
		params["line_a"] = c.LineA
		params["line_b"] = c.LineB
	case core.KindEqualDistances:
		params["pairs"] = c.Pairs
	case core.KindEqualAngles:
		params["triplets"] = c.Triplets
	case core.KindProjection:
		params["point"] = c.Point
		params["image"] = c.ImageID
		params["u"] = c.U
		params["v"] = c.V
	}

	return params
}
