package evergreen

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestMergeSortFarthestFirstStable(t *testing.T) {
	r := newRenderer()
	depths := []float64{5, 20, 5, 1, 20, 12}
	for i, d := range depths {
		r.commands = append(r.commands, renderCommand{depth: d, order: i})
	}
	r.mergeSort()

	want := []int{1, 4, 5, 0, 2, 3}
	for i, cmd := range r.commands {
		if cmd.order != want[i] {
			t.Fatalf("order[%d] = %d, want %d (full %v)", i, cmd.order, want[i], r.commands)
		}
	}
}

func TestMergeSortLarge(t *testing.T) {
	r := newRenderer()
	rng := testRand()
	for i := range 5000 {
		r.commands = append(r.commands, renderCommand{depth: float64(rng.IntN(50)), order: i})
	}
	r.mergeSort()
	for i := 1; i < len(r.commands); i++ {
		if !commandLessOrEqual(r.commands[i-1], r.commands[i]) {
			t.Fatalf("commands %d and %d out of order", i-1, i)
		}
	}
}

func TestEmitSkipsInvisibleParticles(t *testing.T) {
	img := ebiten.NewImage(8, 8)
	cam := NewCamera(800, 600, 75, 50)
	particles := []*Particle{
		{ID: 0, Kind: KindDecoration, Handle: img, Scale: 1, Alpha: 1, Tint: ColorWhite},
		{ID: 1, Kind: KindDecoration, Handle: nil, Scale: 1, Alpha: 1},
		{ID: 2, Kind: KindDust, Handle: img, Scale: 1, Alpha: 0},
		{ID: 3, Kind: KindPhoto, Handle: img, Position: Vec3{Z: 60}, Scale: 1, Alpha: 1},
		{ID: 4, Kind: KindDust, Handle: img, Position: Vec3{Z: -10}, Scale: 1, Alpha: 0.5, Tint: ColorWhite},
	}

	r := newRenderer()
	r.emit(particles, cam, 0, 0)
	if len(r.commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(r.commands))
	}
	if r.commands[0].order != 0 || r.commands[1].order != 4 {
		t.Errorf("orders = %d, %d", r.commands[0].order, r.commands[1].order)
	}
	if r.commands[0].additive || !r.commands[1].additive {
		t.Error("only dust draws additively")
	}
	assertNear(t, "dust alpha", r.commands[1].color.A, 0.5)
	assertNear(t, "depth", r.commands[1].depth, 60)
}

func TestEmitScalesByWorldSize(t *testing.T) {
	img := ebiten.NewImage(10, 10)
	cam := NewCamera(800, 600, 90, 10)
	p := &Particle{Kind: KindPhoto, Handle: img, Scale: 2, Alpha: 1, Tint: ColorWhite}

	r := newRenderer()
	r.emit([]*Particle{p}, cam, 0, 0)
	// 30 px per unit at depth 10, photo is 3 units wide, scaled 2x.
	got := r.commands[0].transform[0] * 10
	assertNear(t, "on-screen width", got, 30*worldSize[KindPhoto]*2)
}

func TestSubmitDraws(t *testing.T) {
	img := ebiten.NewImage(4, 4)
	img.Fill(ColorWhite.toRGBA())
	cam := NewCamera(64, 64, 90, 10)
	p := &Particle{Kind: KindDecoration, Handle: img, Scale: 1, Alpha: 1, Tint: ColorWhite}

	r := newRenderer()
	r.emit([]*Particle{p}, cam, 0, 0)
	r.mergeSort()
	target := ebiten.NewImage(64, 64)
	r.submit(target)
}
