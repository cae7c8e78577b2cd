package evergreen

import "math"

// injectedSample is one queued frame of synthetic hand input. A frame with
// present unset stands for "no hand in view".
type injectedSample struct {
	sample  HandSample
	present bool
}

// Preset distances used by the gesture helpers. Each lands well inside its
// classifier band so small threshold changes do not flip the result.
const (
	injectPinch       = 0.02
	injectOpenPinch   = 0.20
	injectFistSpread  = 0.15
	injectOpenSpread  = 0.50
	injectIdleSpread  = 0.32
	injectPalmDefault = 0.5
)

// SyntheticHand builds a sample whose palm sits at (palmX, palmY), whose
// thumb and index tips are pinch apart, and whose middle, ring, and pinky
// tips are each spread away from the wrist.
func SyntheticHand(palmX, palmY, pinch, spread float64) HandSample {
	var h HandSample
	for i := range h {
		h[i] = Landmark{X: palmX, Y: palmY}
	}
	wrist := Landmark{X: palmX, Y: palmY + 0.1}
	h[LandmarkWrist] = wrist
	h[LandmarkMiddleMCP] = Landmark{X: palmX, Y: palmY}

	for i, idx := range [...]int{LandmarkMiddleTip, LandmarkRingTip, LandmarkPinkyTip} {
		a := float64(i-1) * 0.2
		h[idx] = Landmark{
			X: wrist.X + spread*math.Sin(a),
			Y: wrist.Y - spread*math.Cos(a),
		}
	}

	h[LandmarkThumbTip] = Landmark{X: palmX - 0.1, Y: palmY}
	h[LandmarkIndexTip] = Landmark{X: palmX - 0.1 + pinch, Y: palmY}
	return h
}

// InjectSample queues h as the hand sample for the next free frame.
// Injected samples take priority over the camera, one per frame.
func (s *Session) InjectSample(h HandSample) {
	s.injectQueue = append(s.injectQueue, injectedSample{sample: h, present: true})
}

// InjectNoHand queues frames with no hand in view.
func (s *Session) InjectNoHand(frames int) {
	for range max(frames, 1) {
		s.injectQueue = append(s.injectQueue, injectedSample{})
	}
}

// InjectPinch queues frames of a centered pinching hand.
func (s *Session) InjectPinch(frames int) {
	s.injectRepeat(SyntheticHand(injectPalmDefault, injectPalmDefault, injectPinch, injectIdleSpread), frames)
}

// InjectFist queues frames of a centered closed fist.
func (s *Session) InjectFist(frames int) {
	s.injectRepeat(SyntheticHand(injectPalmDefault, injectPalmDefault, injectOpenPinch, injectFistSpread), frames)
}

// InjectOpen queues frames of a centered open hand.
func (s *Session) InjectOpen(frames int) {
	s.injectRepeat(SyntheticHand(injectPalmDefault, injectPalmDefault, injectOpenPinch, injectOpenSpread), frames)
}

// InjectSweep queues a relaxed hand whose palm moves linearly from
// (fromX, fromY) to (toX, toY) over frames frames. It rotates the scene
// without requesting a mode.
func (s *Session) InjectSweep(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := range frames {
		t := float64(i) / float64(frames-1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectSample(SyntheticHand(x, y, injectOpenPinch, injectIdleSpread))
	}
}

// PendingInjections returns the number of queued synthetic frames.
func (s *Session) PendingInjections() int {
	return len(s.injectQueue)
}

func (s *Session) injectRepeat(h HandSample, frames int) {
	for range max(frames, 1) {
		s.InjectSample(h)
	}
}
