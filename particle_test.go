package evergreen

import (
	"math/rand/v2"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// stubSurfaces hands out one shared 8x8 image per kind and records photo
// sources.
type stubSurfaces struct {
	images [3]*ebiten.Image
	photos []*ebiten.Image
}

func (s *stubSurfaces) Surface(kind ParticleKind, src *ebiten.Image, r *rand.Rand) (*ebiten.Image, Color) {
	if kind == KindPhoto {
		s.photos = append(s.photos, src)
	}
	if s.images[kind] == nil {
		s.images[kind] = ebiten.NewImage(8, 8)
	}
	return s.images[kind], ColorWhite
}

func TestAddParticleAssignsSequentialIDs(t *testing.T) {
	s := NewParticleStore(nil, testRand())
	for want := range 5 {
		if got := s.AddParticle(KindDecoration, nil); got != ParticleID(want) {
			t.Fatalf("id = %d, want %d", got, want)
		}
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d, want 5", s.Len())
	}
}

func TestAddParticleSpawnRanges(t *testing.T) {
	s := NewParticleStore(nil, testRand())
	for range 500 {
		s.AddParticle(KindDust, nil)
	}
	for _, p := range s.All() {
		for _, c := range []float64{p.Initial.X, p.Initial.Y, p.Initial.Z} {
			if c < -20 || c > 20 {
				t.Fatalf("particle %d initial %+v outside [-20, 20]", p.ID, p.Initial)
			}
		}
		for _, c := range []float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z} {
			if c < -0.5 || c > 0.5 {
				t.Fatalf("particle %d velocity %+v outside [-0.5, 0.5]", p.ID, p.Velocity)
			}
		}
		if p.Position != p.Initial {
			t.Fatalf("particle %d should start at its anchor", p.ID)
		}
		if p.Scale != 1 || p.Alpha != 1 {
			t.Fatalf("particle %d scale=%v alpha=%v, want 1, 1", p.ID, p.Scale, p.Alpha)
		}
	}
}

func TestAddPhotoIncreasesCountByOne(t *testing.T) {
	surfaces := &stubSurfaces{}
	s := NewParticleStore(surfaces, testRand())
	s.Populate(SceneConfig{Decorations: 10, Dust: 10})

	before := s.Len()
	src := ebiten.NewImage(4, 4)
	id := s.AddParticle(KindPhoto, src)

	if s.Len() != before+1 {
		t.Fatalf("Len = %d, want %d", s.Len(), before+1)
	}
	photos := s.ByKind(KindPhoto)
	if len(photos) != 1 || photos[0].ID != id {
		t.Fatalf("ByKind(Photo) = %v, want the new particle", photos)
	}
	if s.Get(id) != photos[0] {
		t.Error("Get should return the same particle")
	}
	if len(surfaces.photos) != 1 || surfaces.photos[0] != src {
		t.Error("photo image should be passed to the surface provider")
	}
	if photos[0].Handle == nil {
		t.Error("photo should have a render handle")
	}
}

func TestPopulateDefaults(t *testing.T) {
	s := NewParticleStore(nil, testRand())
	s.Populate(DefaultConfig().Scene)

	if s.Len() != 4001 {
		t.Fatalf("Len = %d, want 4001", s.Len())
	}
	tests := []struct {
		kind ParticleKind
		want int
	}{
		{KindDecoration, 1500},
		{KindDust, 2500},
		{KindPhoto, 1},
	}
	for _, tt := range tests {
		if got := len(s.ByKind(tt.kind)); got != tt.want {
			t.Errorf("ByKind(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
	// Insertion order: decorations, dust, placeholder.
	if s.All()[0].Kind != KindDecoration || s.All()[4000].Kind != KindPhoto {
		t.Error("populate order should be decorations, dust, photo")
	}
}

func TestGetOutOfRange(t *testing.T) {
	s := NewParticleStore(nil, testRand())
	s.AddParticle(KindDust, nil)
	if s.Get(-1) != nil || s.Get(1) != nil {
		t.Error("Get out of range should return nil")
	}
}

func TestSeededStoresAreReproducible(t *testing.T) {
	a := NewParticleStore(nil, rand.New(rand.NewPCG(7, 7)))
	b := NewParticleStore(nil, rand.New(rand.NewPCG(7, 7)))
	a.Populate(SceneConfig{Decorations: 20})
	b.Populate(SceneConfig{Decorations: 20})
	for i := range a.All() {
		if a.All()[i].Initial != b.All()[i].Initial {
			t.Fatalf("particle %d differs between equal seeds", i)
		}
	}
}
