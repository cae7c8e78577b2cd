package evergreen

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a scripted run.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Pinch  float64 `json:"pinch,omitempty"`
	Spread float64 `json:"spread,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// TestRunner sequences injected hand samples, manual mode switches, and
// screenshots across frames. Attach to a Session via SetTestRunner.
type TestRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON script:
//
//	{"steps": [
//	  {"action": "pinch", "frames": 5},
//	  {"action": "wait", "frames": 60},
//	  {"action": "screenshot", "label": "focus"}
//	]}
//
// Actions: pinch, fist, open, hand (x, y, pinch, spread), sweep (x, y,
// toX, toY), none, mode, wait, screenshot.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: sc.Steps}, nil
}

func (st scriptStep) validate() error {
	switch st.Action {
	case "pinch", "fist", "open", "hand", "sweep", "none", "wait", "screenshot":
		return nil
	case "mode":
		if _, ok := ParseMode(st.Mode); !ok {
			return fmt.Errorf("unknown mode %q", st.Mode)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

// SetTestRunner attaches a runner. Its step method runs at the start of
// every Session.Update, before sampling.
func (s *Session) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every step has executed and its input drained.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *TestRunner) step(s *Session) {
	if r.done {
		return
	}
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	frames := max(st.Frames, 1)
	switch st.Action {
	case "pinch":
		s.InjectPinch(frames)
	case "fist":
		s.InjectFist(frames)
	case "open":
		s.InjectOpen(frames)
	case "hand":
		s.injectRepeat(SyntheticHand(st.X, st.Y, st.Pinch, st.Spread), frames)
	case "sweep":
		s.InjectSweep(st.X, st.Y, st.ToX, st.ToY, frames)
	case "none":
		s.InjectNoHand(frames)
	case "mode":
		m, _ := ParseMode(st.Mode)
		s.modes.Set(m)
	case "screenshot":
		s.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	}
}
