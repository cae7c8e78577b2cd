package evergreen

import (
	"context"
	"image"
	"time"
)

// Frame is one captured video frame. Hands is filled by capture sources
// that run hand tracking upstream (see the landmark package); plain camera
// sources leave it nil and rely on a Detector.
type Frame struct {
	Timestamp time.Time
	Image     image.Image
	Hands     []HandSample
}

// Capture is the camera. Only the frame loop reads it. Open may fail (for
// example when permission is denied); the session then runs without
// gesture input.
type Capture interface {
	Open(ctx context.Context) error
	// Read returns the most recent frame not yet returned, if any.
	Read() (Frame, bool)
	Close() error
}

// Detector extracts hand landmarks from a frame. Init loads the model and
// must succeed before the first Detect call.
type Detector interface {
	Init(ctx context.Context) error
	// Detect returns at most one hand; nil means no hand is visible.
	Detect(f Frame, timestampMs int64) (*HandSample, error)
}
