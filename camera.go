package evergreen

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// nearPlane is the minimum view depth; points closer than this are culled.
const nearPlane = 0.5

// Camera is a perspective camera on the +Z axis looking toward the origin.
// Resizing the viewport only changes projection parameters; particle state
// is never touched.
type Camera struct {
	// Z is the camera's distance from the origin along +Z.
	Z float64
	// FOV is the vertical field of view in degrees.
	FOV float64

	width, height float64
	focal         float64 // pixels per world unit at depth 1
	dirty         bool

	dolly *gween.Tween
}

// NewCamera creates a camera for a viewport of w×h pixels.
func NewCamera(w, h int, fov, z float64) *Camera {
	return &Camera{
		Z:      z,
		FOV:    fov,
		width:  float64(w),
		height: float64(h),
		dirty:  true,
	}
}

// Resize updates the viewport size. Called from Layout when the window
// changes.
func (c *Camera) Resize(w, h int) {
	if float64(w) == c.width && float64(h) == c.height {
		return
	}
	c.width = float64(w)
	c.height = float64(h)
	c.dirty = true
}

// Viewport returns the current viewport size in pixels.
func (c *Camera) Viewport() (w, h float64) {
	return c.width, c.height
}

// DollyTo animates Z to the given distance over duration seconds.
func (c *Camera) DollyTo(z float64, duration float32, easeFn ease.TweenFunc) {
	c.dolly = gween.New(float32(c.Z), float32(z), duration, easeFn)
}

// update advances the dolly animation. Called once per frame.
func (c *Camera) update(dt float32) {
	if c.dolly == nil {
		return
	}
	val, done := c.dolly.Update(dt)
	c.Z = float64(val)
	if done {
		c.dolly = nil
	}
}

// computeFocal recomputes the cached focal length if dirty.
func (c *Camera) computeFocal() float64 {
	if !c.dirty {
		return c.focal
	}
	c.dirty = false
	half := c.FOV * math.Pi / 360
	c.focal = (c.height / 2) / math.Tan(half)
	return c.focal
}

// Project converts a world-space point to screen coordinates. scale is the
// number of pixels per world unit at the point's depth. ok is false for
// points behind the near plane.
func (c *Camera) Project(p Vec3) (sx, sy, scale float64, ok bool) {
	depth := c.Z - p.Z
	if depth < nearPlane {
		return 0, 0, 0, false
	}
	scale = c.computeFocal() / depth
	sx = c.width/2 + p.X*scale
	sy = c.height/2 - p.Y*scale
	return sx, sy, scale, true
}
