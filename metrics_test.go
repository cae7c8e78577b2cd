package evergreen

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yohamta/donburi"
)

func TestMetricsCountEvents(t *testing.T) {
	m := NewMetrics()
	bus := newEventBus(donburi.NewWorld())
	m.subscribe(bus.world)

	bus.modeChanged(ModeChange{From: ModeTree, To: ModeScatter})
	bus.modeChanged(ModeChange{From: ModeScatter, To: ModeTree, Manual: true})
	bus.photoAdded(PhotoAdded{Source: PhotoGenerated})

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("SCATTER", "gesture")); got != 0 {
		t.Fatalf("events counted before process: %v", got)
	}
	bus.process()

	if got := testutil.ToFloat64(m.transitions.WithLabelValues(ModeScatter.String(), "gesture")); got != 1 {
		t.Errorf("gesture transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues(ModeTree.String(), "manual")); got != 1 {
		t.Errorf("manual transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.photos.WithLabelValues("generated")); got != 1 {
		t.Errorf("generated photos = %v, want 1", got)
	}
}

func TestMetricsAIResult(t *testing.T) {
	m := NewMetrics()
	m.aiResult("generate", nil)
	m.aiResult("generate", errors.New("x"))
	m.aiResult("edit", errors.New("x"))

	if got := testutil.ToFloat64(m.aiRequests.WithLabelValues("generate", "ok")); got != 1 {
		t.Errorf("generate ok = %v", got)
	}
	if got := testutil.ToFloat64(m.aiRequests.WithLabelValues("edit", "error")); got != 1 {
		t.Errorf("edit error = %v", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.observeFrame(&FrameContext{HandVisible: true}, 4001, 0.001)
	m.setGestureEnabled(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		"evergreen_frames_total 1",
		"evergreen_particles 4001",
		"evergreen_hand_visible 1",
		"evergreen_gesture_enabled 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
