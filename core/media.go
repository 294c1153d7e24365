package core

import (
	"fmt"

	"github.com/google/uuid"
)

// AddImage registers a viewpoint.
func (p *Project) AddImage(im *Image) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if im.ID == "" {
		im.ID = uuid.NewString()
	}
	if _, exists := p.images[im.ID]; exists {
		return "", fmt.Errorf("%w: image %q", ErrDuplicateID, im.ID)
	}
	p.images[im.ID] = im

	return im.ID, nil
}

// Image returns the image with the given id.
func (p *Project) Image(id string) (*Image, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	im, ok := p.images[id]

	return im, ok
}

// RemoveImage deletes an image and cascades its cameras, observations,
// vanishing lines and projection constraints.
func (p *Project) RemoveImage(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.images[id]; !ok {
		return fmt.Errorf("%w: %q", ErrImageNotFound, id)
	}
	for camID, cam := range p.cameras {
		if cam.ImageID == id {
			delete(p.cameras, camID)
		}
	}
	for obsID := range p.imageObs[id] {
		p.removeObservationLocked(obsID)
	}
	for vlID := range p.imageVanishing[id] {
		delete(p.vanishing, vlID)
	}
	for cID, c := range p.constraints {
		if c.Kind == KindProjection && c.ImageID == id {
			p.removeConstraintLocked(cID)
		}
	}
	delete(p.imageObs, id)
	delete(p.imageVanishing, id)
	delete(p.images, id)
	p.diagnostics = nil

	return nil
}

// AddCamera registers camera parameters for an existing image.
func (p *Project) AddCamera(c *Camera) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.images[c.ImageID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrImageNotFound, c.ImageID)
	}
	if len(c.K) < 4 || len(c.K) > 6 {
		return "", fmt.Errorf("%w: camera intrinsics need 4-6 elements, got %d", ErrBadConstraint, len(c.K))
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := p.cameras[c.ID]; exists {
		return "", fmt.Errorf("%w: camera %q", ErrDuplicateID, c.ID)
	}
	p.cameras[c.ID] = c

	return c.ID, nil
}

// Camera returns the camera with the given id.
func (p *Project) Camera(id string) (*Camera, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.cameras[id]

	return c, ok
}

// CameraOfImage returns the camera fitted for the image, if any. When
// several exist the lexicographically smallest id wins, deterministically.
func (p *Project) CameraOfImage(imageID string) (*Camera, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var best *Camera
	for _, c := range p.cameras {
		if c.ImageID != imageID {
			continue
		}
		if best == nil || c.ID < best.ID {
			best = c
		}
	}

	return best, best != nil
}

// RemoveCamera deletes camera parameters.
func (p *Project) RemoveCamera(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.cameras[id]; !ok {
		return fmt.Errorf("%w: %q", ErrCameraNotFound, id)
	}
	delete(p.cameras, id)

	return nil
}

// AddObservation records a 2D observation of an existing point in an
// existing image. The observed point is marked dirty.
func (p *Project) AddObservation(obs *ImagePoint) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.images[obs.ImageID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrImageNotFound, obs.ImageID)
	}
	if _, ok := p.points[obs.PointID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrPointNotFound, obs.PointID)
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	if _, exists := p.observations[obs.ID]; exists {
		return "", fmt.Errorf("%w: image point %q", ErrDuplicateID, obs.ID)
	}
	p.observations[obs.ID] = obs
	p.index(p.pointObs, obs.PointID, obs.ID)
	p.index(p.imageObs, obs.ImageID, obs.ID)
	p.markDirty(obs.PointID)

	return obs.ID, nil
}

// Observation returns the image point with the given id.
func (p *Project) Observation(id string) (*ImagePoint, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	obs, ok := p.observations[id]

	return obs, ok
}

// RemoveObservation deletes a 2D observation.
func (p *Project) RemoveObservation(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.observations[id]; !ok {
		return fmt.Errorf("%w: %q", ErrObservationNotFound, id)
	}
	p.removeObservationLocked(id)

	return nil
}

// removeObservationLocked removes an observation and unindexes it. mu must be held.
func (p *Project) removeObservationLocked(id string) {
	obs, ok := p.observations[id]
	if !ok {
		return
	}
	p.unindex(p.pointObs, obs.PointID, id)
	p.unindex(p.imageObs, obs.ImageID, id)
	delete(p.observations, id)
}

// AddVanishingLine records an axis-annotated image segment.
func (p *Project) AddVanishingLine(vl *VanishingLine) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.images[vl.ImageID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrImageNotFound, vl.ImageID)
	}
	if vl.ID == "" {
		vl.ID = uuid.NewString()
	}
	if _, exists := p.vanishing[vl.ID]; exists {
		return "", fmt.Errorf("%w: vanishing line %q", ErrDuplicateID, vl.ID)
	}
	p.vanishing[vl.ID] = vl
	p.index(p.imageVanishing, vl.ImageID, vl.ID)

	return vl.ID, nil
}

// VanishingLine returns the vanishing line with the given id.
func (p *Project) VanishingLine(id string) (*VanishingLine, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	vl, ok := p.vanishing[id]

	return vl, ok
}

// RemoveVanishingLine deletes an axis-annotated segment.
func (p *Project) RemoveVanishingLine(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	vl, ok := p.vanishing[id]
	if !ok {
		return fmt.Errorf("%w: vanishing line %q", ErrObservationNotFound, id)
	}
	p.unindex(p.imageVanishing, vl.ImageID, id)
	delete(p.vanishing, id)

	return nil
}

// VanishingLinesOfImage returns the image's vanishing lines for one axis,
// ordered by id.
func (p *Project) VanishingLinesOfImage(imageID string, axis Axis) []*VanishingLine {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*VanishingLine
	for _, id := range sortedKeys(p.imageVanishing[imageID]) {
		if vl := p.vanishing[id]; vl.Axis == axis {
			out = append(out, vl)
		}
	}

	return out
}
