package evergreen

import (
	"math"
	"math/rand/v2"
)

// MotionEngine computes every particle's target transform from the current
// mode and blends toward it once per frame. Mode switches need no special
// handling: the target changes and the exponential blend re-converges.
type MotionEngine struct {
	cfg   MotionConfig
	store *ParticleStore
	rng   *rand.Rand

	focus    ParticleID
	hasFocus bool

	// Group rotation (radians) applied to the whole scene, smoothed toward
	// the palm-driven target.
	rotX, rotY             float64
	targetRotX, targetRotY float64
	rotSmoothing           float64
}

// NewMotionEngine creates an engine over store. rng drives focus selection.
func NewMotionEngine(cfg MotionConfig, rotSmoothing float64, store *ParticleStore, rng *rand.Rand) *MotionEngine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &MotionEngine{
		cfg:          cfg,
		store:        store,
		rng:          rng,
		rotSmoothing: rotSmoothing,
	}
}

// Focus returns the current focus target. ok is false when no photo is
// focused, which is always the case outside ModeFocus.
func (e *MotionEngine) Focus() (id ParticleID, ok bool) {
	return e.focus, e.hasFocus
}

// GroupRotation returns the smoothed scene rotation around X and Y.
func (e *MotionEngine) GroupRotation() (x, y float64) {
	return e.rotX, e.rotY
}

// SetRotationTarget sets the palm-driven group rotation target.
func (e *MotionEngine) SetRotationTarget(x, y float64) {
	e.targetRotX = x
	e.targetRotY = y
}

// OnModeChange selects a focus target when entering ModeFocus and clears
// it when leaving. Register it with ModeMachine.OnChange.
func (e *MotionEngine) OnModeChange(c ModeChange) {
	if c.From == ModeFocus {
		e.hasFocus = false
	}
	if c.To == ModeFocus && !e.hasFocus {
		photos := e.store.ByKind(KindPhoto)
		if len(photos) == 0 {
			return
		}
		e.focus = photos[e.rng.IntN(len(photos))].ID
		e.hasFocus = true
	}
}

// Update advances every particle by one frame.
func (e *MotionEngine) Update(fc *FrameContext) {
	e.rotX += (e.targetRotX - e.rotX) * e.rotSmoothing
	e.rotY += (e.targetRotY - e.rotY) * e.rotSmoothing

	particles := e.store.All()
	count := len(particles)
	for i, p := range particles {
		switch fc.Mode {
		case ModeTree:
			e.updateTree(p, i, count)
		case ModeScatter:
			e.updateScatter(p, fc.ElapsedMs())
		case ModeFocus:
			e.updateFocus(p)
		}
	}
}

func (e *MotionEngine) updateTree(p *Particle, i, count int) {
	target := TreeTarget(i, count, e.cfg)
	p.Position = p.Position.Lerp(target, e.cfg.TreeBlend)
	p.Rotation.X += e.cfg.TreeSpin
	p.Rotation.Y += e.cfg.TreeSpin
	p.Scale = lerp(p.Scale, 1, e.cfg.ScaleReset)
}

func (e *MotionEngine) updateScatter(p *Particle, elapsedMs float64) {
	target := ScatterTarget(p.Initial, p.Velocity, elapsedMs, e.cfg)
	p.Position = p.Position.Lerp(target, e.cfg.ScatterBlend)
	p.Rotation.X += p.Velocity.X * e.cfg.ScatterSpin
	p.Rotation.Y += p.Velocity.Y * e.cfg.ScatterSpin
	p.Scale = lerp(p.Scale, 1, e.cfg.ScaleReset)
}

func (e *MotionEngine) updateFocus(p *Particle) {
	if e.hasFocus && p.ID == e.focus {
		p.Position = p.Position.Lerp(e.cfg.FocusPosition, e.cfg.FocusBlend)
		p.Scale = lerp(p.Scale, e.cfg.FocusScale, e.cfg.FocusBlend)
		// Cancel the group rotation so the photo faces the camera.
		p.Rotation = Vec3{-e.rotX, -e.rotY, 0}
		return
	}
	p.Position = p.Position.Lerp(p.Initial.Scale(e.cfg.BackgroundPush), e.cfg.FocusBlend)
	p.Scale = lerp(p.Scale, 1, e.cfg.FocusBlend)
}

// TreeTarget returns the spiral-cone position for the particle at index i
// of count. The radius shrinks linearly from the base to the tip.
func TreeTarget(i, count int, cfg MotionConfig) Vec3 {
	t := float64(i) / float64(count)
	angle := t * cfg.TreeTurns * math.Pi
	height := (t - 0.5) * cfg.TreeHeight
	radius := cfg.TreeRadius * (1 - t)
	return Vec3{radius * math.Cos(angle), height, radius * math.Sin(angle)}
}

// ScatterTarget returns the drifting scatter position anchored at initial,
// radially clamped to [ScatterMin, ScatterMax] from the origin.
func ScatterTarget(initial, velocity Vec3, elapsedMs float64, cfg MotionConfig) Vec3 {
	drift := velocity.Scale(math.Sin(elapsedMs*0.001) * cfg.ScatterReach)
	return clampLength(initial.Add(drift), cfg.ScatterMin, cfg.ScatterMax)
}

// clampLength rescales v so its length lies in [lo, hi]. A zero vector is
// pushed out along +X.
func clampLength(v Vec3, lo, hi float64) Vec3 {
	l := v.Len()
	switch {
	case l == 0:
		return Vec3{lo, 0, 0}
	case l < lo:
		return v.Scale(lo / l)
	case l > hi:
		return v.Scale(hi / l)
	}
	return v
}
