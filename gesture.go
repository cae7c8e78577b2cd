package evergreen

import "math"

// Hand landmark indices in the standard 21-point layout.
const (
	LandmarkWrist     = 0
	LandmarkThumbTip  = 4
	LandmarkIndexTip  = 8
	LandmarkMiddleMCP = 9
	LandmarkMiddleTip = 12
	LandmarkRingTip   = 16
	LandmarkPinkyTip  = 20

	// LandmarkCount is the number of points in a HandSample.
	LandmarkCount = 21
)

// Landmark is a normalized 3D point locating part of a detected hand.
// X and Y are in [0, 1] image space; Z is relative depth.
type Landmark struct {
	X, Y, Z float64
}

// HandSample is one frame's landmark set for a single hand.
type HandSample [LandmarkCount]Landmark

// Signal is a classifier output: a requested mode, or no request.
type Signal struct {
	Mode  Mode
	Valid bool
}

// NoSignal is the zero Signal.
var NoSignal = Signal{}

// Classification is everything derived from one HandSample.
type Classification struct {
	Signal Signal
	// RotX and RotY are the palm-driven group rotation targets in radians.
	RotX, RotY float64
	// Pinch and Spread are the measured distances, kept for the HUD.
	Pinch  float64
	Spread float64
}

// Classifier maps hand samples to mode signals. It is stateless; jitter
// suppression comes from the dead zone between FistBelow and OpenAbove.
type Classifier struct {
	cfg GestureConfig
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg GestureConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify inspects one sample. A nil sample produces no signal and
// ok == false, meaning the group rotation target should not change either.
func (c *Classifier) Classify(h *HandSample) (cl Classification, ok bool) {
	if h == nil {
		return Classification{}, false
	}

	palm := h[LandmarkMiddleMCP]
	cl.RotY = (palm.X - 0.5) * 2
	cl.RotX = (palm.Y - 0.5) * 2

	cl.Pinch = landmarkDist(h[LandmarkThumbTip], h[LandmarkIndexTip])
	cl.Spread = (landmarkDist(h[LandmarkMiddleTip], h[LandmarkWrist]) +
		landmarkDist(h[LandmarkRingTip], h[LandmarkWrist]) +
		landmarkDist(h[LandmarkPinkyTip], h[LandmarkWrist])) / 3

	cl.Signal = c.signal(cl.Pinch, cl.Spread)
	return cl, true
}

// signal applies the threshold tests. Pinch is checked first and wins.
func (c *Classifier) signal(pinch, spread float64) Signal {
	if pinch < c.cfg.PinchDistance {
		return Signal{Mode: ModeFocus, Valid: true}
	}
	switch {
	case spread < c.cfg.FistBelow:
		return Signal{Mode: ModeTree, Valid: true}
	case spread > c.cfg.OpenAbove:
		return Signal{Mode: ModeScatter, Valid: true}
	}
	return NoSignal
}

func landmarkDist(a, b Landmark) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
