package evergreen

import "time"

// FrameContext carries the per-frame state shared by the update steps.
// The caller sets Delta; Session.Update fills in the rest.
type FrameContext struct {
	Frame   uint64
	Delta   time.Duration
	Elapsed time.Duration

	// Mode is the mode in effect after this frame's signal was applied.
	Mode Mode
	// Focus is the focused photo, valid when HasFocus is set.
	Focus    ParticleID
	HasFocus bool

	Sample         *HandSample
	Classification Classification
	HandVisible    bool
	// Injected is set when Sample came from the inject queue.
	Injected bool
}

// ElapsedMs returns the time since the session started in milliseconds.
func (fc *FrameContext) ElapsedMs() float64 {
	return float64(fc.Elapsed) / float64(time.Millisecond)
}
