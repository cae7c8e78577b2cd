package evergreen

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestCameraProjectsOriginToCenter(t *testing.T) {
	cam := NewCamera(800, 600, 90, 10)
	sx, sy, k, ok := cam.Project(Vec3{})
	if !ok {
		t.Fatal("origin should be visible")
	}
	assertNear(t, "sx", sx, 400)
	assertNear(t, "sy", sy, 300)
	// fov 90: focal = 300 / tan(45) = 300 px at depth 1.
	assertNear(t, "scale", k, 30)
}

func TestCameraYAxisPointsUp(t *testing.T) {
	cam := NewCamera(800, 600, 90, 10)
	_, sy, _, _ := cam.Project(Vec3{Y: 1})
	if sy >= 300 {
		t.Errorf("positive Y projected to sy=%v, want above center", sy)
	}
}

func TestCameraCloserIsLarger(t *testing.T) {
	cam := NewCamera(800, 600, 75, 50)
	_, _, far, _ := cam.Project(Vec3{Z: -20})
	_, _, near, _ := cam.Project(Vec3{Z: 35})
	if near <= far {
		t.Errorf("near scale %v should exceed far scale %v", near, far)
	}
}

func TestCameraCullsBehindNearPlane(t *testing.T) {
	cam := NewCamera(800, 600, 75, 50)
	if _, _, _, ok := cam.Project(Vec3{Z: 49.9}); ok {
		t.Error("point inside the near plane should be culled")
	}
	if _, _, _, ok := cam.Project(Vec3{Z: 60}); ok {
		t.Error("point behind the camera should be culled")
	}
}

func TestCameraResizeOnlyChangesProjection(t *testing.T) {
	cam := NewCamera(800, 600, 90, 10)
	_, _, before, _ := cam.Project(Vec3{})

	cam.Resize(1600, 1200)
	w, h := cam.Viewport()
	assertNear(t, "w", w, 1600)
	assertNear(t, "h", h, 1200)

	sx, sy, after, _ := cam.Project(Vec3{})
	assertNear(t, "sx", sx, 800)
	assertNear(t, "sy", sy, 600)
	assertNear(t, "scale doubles", after, 2*before)
	assertNear(t, "z", cam.Z, 10)
}

func TestCameraDolly(t *testing.T) {
	cam := NewCamera(800, 600, 75, 80)
	cam.DollyTo(50, 1, ease.Linear)

	cam.update(0.5)
	if math.Abs(cam.Z-65) > 1e-3 {
		t.Errorf("Z halfway = %v, want 65", cam.Z)
	}
	cam.update(0.6)
	assertNear(t, "Z done", cam.Z, 50)
	if cam.dolly != nil {
		t.Error("dolly should be cleared when finished")
	}
}
