package evergreen

import (
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// ParticleID identifies a particle. IDs are assigned in insertion order
// starting at zero and double as the particle's stable layout index.
type ParticleID int

// Particle is one visual object in the scene. Position, Rotation, Scale and
// Alpha are written by the motion engine each frame; Initial and Velocity
// never change after creation.
type Particle struct {
	ID       ParticleID
	Kind     ParticleKind
	Position Vec3
	Initial  Vec3 // immutable anchor for scatter and focus layouts
	Velocity Vec3 // random drift, each component in [-0.5, 0.5]
	Rotation Vec3 // euler angles in radians
	Scale    float64
	Alpha    float64
	Tint     Color

	// Handle is the render surface. Owned by the store; the motion engine
	// and renderer only reference it.
	Handle *ebiten.Image
}

// Surfaces provides render surfaces for new particles. For photos, src is
// the caller's image (nil for the placeholder) and the returned surface is
// the framed texture that gets drawn.
type Surfaces interface {
	Surface(kind ParticleKind, src *ebiten.Image, r *rand.Rand) (*ebiten.Image, Color)
}

// ParticleStore holds every particle in insertion order. It is append-only:
// particles are never removed during a session.
type ParticleStore struct {
	particles []*Particle
	byKind    [3][]*Particle
	surfaces  Surfaces
	rng       *rand.Rand
	spawn     Range // per-axis range for initial positions
}

// NewParticleStore creates an empty store. surfaces may be nil, in which
// case particles are created without a render handle.
func NewParticleStore(surfaces Surfaces, rng *rand.Rand) *ParticleStore {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ParticleStore{
		surfaces: surfaces,
		rng:      rng,
		spawn:    Range{-20, 20},
	}
}

// AddParticle appends a particle of the given kind and returns its ID. For
// photos, img is registered with the surface provider so it can be drawn.
func (s *ParticleStore) AddParticle(kind ParticleKind, img *ebiten.Image) ParticleID {
	p := &Particle{
		ID:    ParticleID(len(s.particles)),
		Kind:  kind,
		Scale: 1,
		Alpha: 1,
		Tint:  ColorWhite,
	}
	p.Initial = Vec3{
		s.spawn.random(s.rng),
		s.spawn.random(s.rng),
		s.spawn.random(s.rng),
	}
	p.Position = p.Initial
	p.Velocity = Vec3{
		s.rng.Float64() - 0.5,
		s.rng.Float64() - 0.5,
		s.rng.Float64() - 0.5,
	}
	p.Rotation = Vec3{
		s.rng.Float64() * twoPi,
		s.rng.Float64() * twoPi,
		0,
	}
	if s.surfaces != nil {
		p.Handle, p.Tint = s.surfaces.Surface(kind, img, s.rng)
	}

	s.particles = append(s.particles, p)
	s.byKind[kind] = append(s.byKind[kind], p)
	return p.ID
}

// All returns every particle in insertion order. The returned slice MUST NOT
// be mutated.
func (s *ParticleStore) All() []*Particle {
	return s.particles
}

// ByKind returns the particles of one kind in insertion order. The returned
// slice MUST NOT be mutated.
func (s *ParticleStore) ByKind(kind ParticleKind) []*Particle {
	if int(kind) >= len(s.byKind) {
		return nil
	}
	return s.byKind[kind]
}

// Get returns the particle with the given ID, or nil if out of range.
func (s *ParticleStore) Get(id ParticleID) *Particle {
	if id < 0 || int(id) >= len(s.particles) {
		return nil
	}
	return s.particles[id]
}

// Len returns the number of particles.
func (s *ParticleStore) Len() int {
	return len(s.particles)
}

// Populate creates the initial scene: decorations, dust, and one placeholder
// photo, in that order.
func (s *ParticleStore) Populate(cfg SceneConfig) {
	for range cfg.Decorations {
		s.AddParticle(KindDecoration, nil)
	}
	for range cfg.Dust {
		s.AddParticle(KindDust, nil)
	}
	if cfg.PlaceholderPhoto {
		s.AddParticle(KindPhoto, nil)
	}
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// random returns a random float64 in [Min, Max].
func (r Range) random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}
