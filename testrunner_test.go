package evergreen

import "testing"

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "pinch", "frames": 3},
			{"action": "hand", "x": 0.2, "y": 0.4, "pinch": 0.2, "spread": 0.5},
			{"action": "mode", "mode": "scatter"},
			{"action": "wait", "frames": 3}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(runner.steps))
	}
	if runner.steps[1].Action != "pinch" || runner.steps[1].Frames != 3 {
		t.Error("step 1 mismatch")
	}
	if st := runner.steps[2]; st.X != 0.2 || st.Y != 0.4 || st.Spread != 0.5 {
		t.Errorf("step 2 mismatch: %+v", st)
	}
}

func TestLoadTestScriptInvalid(t *testing.T) {
	tests := []struct {
		name, data string
	}{
		{"json", `not json`},
		{"empty", `{"steps": []}`},
		{"action", `{"steps": [{"action": "click"}]}`},
		{"mode", `{"steps": [{"action": "mode", "mode": "spin"}]}`},
	}
	for _, tt := range tests {
		if _, err := LoadTestScript([]byte(tt.data)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestRunnerDrivesModes(t *testing.T) {
	s := newTestSession(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "open", "frames": 2},
		{"action": "wait", "frames": 2},
		{"action": "pinch", "frames": 2},
		{"action": "none", "frames": 1},
		{"action": "mode", "mode": "tree"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)

	var modes []Mode
	for range 30 {
		step(t, s)
		if n := len(modes); n == 0 || modes[n-1] != s.Mode() {
			modes = append(modes, s.Mode())
		}
		if runner.Done() {
			break
		}
	}
	if !runner.Done() {
		t.Fatal("runner did not finish")
	}
	want := []Mode{ModeScatter, ModeFocus, ModeTree}
	if len(modes) != len(want) {
		t.Fatalf("modes = %v, want %v", modes, want)
	}
	for i := range want {
		if modes[i] != want[i] {
			t.Fatalf("modes = %v, want %v", modes, want)
		}
	}
}

func TestRunnerWaitsForInjections(t *testing.T) {
	s := newTestSession(t, nil)
	runner, _ := LoadTestScript([]byte(`{"steps": [
		{"action": "fist", "frames": 4},
		{"action": "screenshot", "label": "done"}
	]}`))
	s.SetTestRunner(runner)

	for range 4 {
		step(t, s)
	}
	if len(s.screenshotQueue) != 0 {
		t.Fatal("screenshot should wait for the injected frames")
	}
	step(t, s)
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "done" {
		t.Errorf("queue = %v", s.screenshotQueue)
	}
}
