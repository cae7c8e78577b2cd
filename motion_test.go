package evergreen

import (
	"math"
	"testing"
)

func radiusXZ(v Vec3) float64 {
	return math.Hypot(v.X, v.Z)
}

func TestTreeTargetRadiusNonIncreasing(t *testing.T) {
	cfg := DefaultConfig().Motion
	for _, count := range []int{1, 2, 7, 100, 4001} {
		prev := math.Inf(1)
		for i := range count {
			r := radiusXZ(TreeTarget(i, count, cfg))
			if r > prev+1e-9 {
				t.Fatalf("count %d: radius at %d = %v exceeds previous %v", count, i, r, prev)
			}
			prev = r
		}
	}
}

func TestTreeTargetShape(t *testing.T) {
	cfg := DefaultConfig().Motion
	base := TreeTarget(0, 100, cfg)
	assertNear(t, "base radius", radiusXZ(base), cfg.TreeRadius)
	assertNear(t, "base height", base.Y, -cfg.TreeHeight/2)

	mid := TreeTarget(50, 100, cfg)
	assertNear(t, "mid height", mid.Y, 0)
	assertNear(t, "mid radius", radiusXZ(mid), cfg.TreeRadius/2)
}

func TestScatterTargetClamped(t *testing.T) {
	cfg := DefaultConfig().Motion
	r := testRand()
	for range 5000 {
		initial := Vec3{r.Float64()*80 - 40, r.Float64()*80 - 40, r.Float64()*80 - 40}
		velocity := Vec3{r.Float64() - 0.5, r.Float64() - 0.5, r.Float64() - 0.5}.Scale(4)
		elapsed := r.Float64() * 1e7
		l := ScatterTarget(initial, velocity, elapsed, cfg).Len()
		if l < cfg.ScatterMin-1e-9 || l > cfg.ScatterMax+1e-9 {
			t.Fatalf("scatter length %v outside [%v, %v]", l, cfg.ScatterMin, cfg.ScatterMax)
		}
	}
}

func TestScatterTargetDegenerateInputs(t *testing.T) {
	cfg := DefaultConfig().Motion
	got := ScatterTarget(Vec3{}, Vec3{}, 0, cfg)
	assertNear(t, "zero length", got.Len(), cfg.ScatterMin)

	inside := Vec3{10, 0, 0}
	assertVec(t, "in range unchanged", ScatterTarget(inside, Vec3{}, 0, cfg), inside)
}

func newTestMotion(decorations, photos int) (*MotionEngine, *ParticleStore) {
	store := NewParticleStore(nil, testRand())
	store.Populate(SceneConfig{Decorations: decorations})
	for range photos {
		store.AddParticle(KindPhoto, nil)
	}
	cfg := DefaultConfig()
	return NewMotionEngine(cfg.Motion, cfg.Gesture.RotationSmoothing, store, testRand()), store
}

func TestMotionTreeMovesTowardTargets(t *testing.T) {
	e, store := newTestMotion(50, 1)
	cfg := DefaultConfig().Motion
	before := make([]float64, store.Len())
	for i, p := range store.All() {
		before[i] = p.Position.Dist(TreeTarget(i, store.Len(), cfg))
	}

	e.Update(&FrameContext{Mode: ModeTree})

	for i, p := range store.All() {
		after := p.Position.Dist(TreeTarget(i, store.Len(), cfg))
		assertNear(t, "tree blend", after, before[i]*(1-cfg.TreeBlend))
	}
}

func TestMotionFocusSelectionLifecycle(t *testing.T) {
	e, store := newTestMotion(5, 3)
	if _, ok := e.Focus(); ok {
		t.Fatal("no focus outside FOCUS")
	}

	e.OnModeChange(ModeChange{From: ModeTree, To: ModeFocus})
	id, ok := e.Focus()
	if !ok || store.Get(id).Kind != KindPhoto {
		t.Fatalf("focus = %d, %v; want a photo", id, ok)
	}

	e.OnModeChange(ModeChange{From: ModeFocus, To: ModeScatter})
	if _, ok := e.Focus(); ok {
		t.Error("leaving FOCUS should clear the target")
	}
}

func TestMotionFocusWithoutPhotos(t *testing.T) {
	e, store := newTestMotion(5, 0)
	e.OnModeChange(ModeChange{From: ModeTree, To: ModeFocus})
	if _, ok := e.Focus(); ok {
		t.Fatal("no photo means no focus target")
	}
	cfg := DefaultConfig().Motion
	e.Update(&FrameContext{Mode: ModeFocus})
	for _, p := range store.All() {
		want := p.Initial.Lerp(p.Initial.Scale(cfg.BackgroundPush), cfg.FocusBlend)
		assertVec(t, "background", p.Position, want)
	}
}

func TestMotionFocusConvergence(t *testing.T) {
	e, store := newTestMotion(5, 2)
	cfg := DefaultConfig().Motion
	e.OnModeChange(ModeChange{From: ModeTree, To: ModeFocus})
	id, _ := e.Focus()
	target := store.Get(id)

	prev := target.Position.Dist(cfg.FocusPosition)
	for range 200 {
		e.Update(&FrameContext{Mode: ModeFocus})
		d := target.Position.Dist(cfg.FocusPosition)
		if d > prev {
			t.Fatalf("focus distance grew from %v to %v", prev, d)
		}
		prev = d
	}
	if prev > 0.01 {
		t.Errorf("focus distance after 200 frames = %v", prev)
	}
	if math.Abs(target.Scale-cfg.FocusScale) > 0.01 {
		t.Errorf("focus scale = %v, want ~%v", target.Scale, cfg.FocusScale)
	}
}

func TestMotionRotationSmoothing(t *testing.T) {
	e, _ := newTestMotion(1, 0)
	e.SetRotationTarget(1, -1)
	e.Update(&FrameContext{Mode: ModeTree})
	x, y := e.GroupRotation()
	assertNear(t, "rotX", x, 0.1)
	assertNear(t, "rotY", y, -0.1)
}

func TestMotionFocusFacesCamera(t *testing.T) {
	e, store := newTestMotion(0, 1)
	e.SetRotationTarget(0.5, 0.5)
	e.OnModeChange(ModeChange{From: ModeTree, To: ModeFocus})
	e.Update(&FrameContext{Mode: ModeFocus})
	id, _ := e.Focus()
	rx, ry := e.GroupRotation()
	p := store.Get(id)
	assertNear(t, "rot x", p.Rotation.X, -rx)
	assertNear(t, "rot y", p.Rotation.Y, -ry)
}
