package evergreen

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestTextureSetSharesDecorationTextures(t *testing.T) {
	ts := NewTextureSet()
	defer ts.Dispose()
	r := testRand()

	seen := map[*ebiten.Image]bool{}
	for range 50 {
		img, tint := ts.Surface(KindDecoration, nil, r)
		seen[img] = true
		found := false
		for _, c := range Palette {
			if c == tint {
				found = true
			}
		}
		if !found {
			t.Fatalf("tint %+v not in palette", tint)
		}
	}
	if len(seen) > 3 {
		t.Errorf("decorations use %d textures, want at most 3", len(seen))
	}

	d1, _ := ts.Surface(KindDust, nil, r)
	d2, _ := ts.Surface(KindDust, nil, r)
	if d1 != d2 {
		t.Error("dust texture should be shared")
	}
}

func TestTextureSetFramesPhotos(t *testing.T) {
	ts := NewTextureSet()
	defer ts.Dispose()
	r := testRand()

	small, _ := ts.Surface(KindPhoto, ebiten.NewImage(100, 50), r)
	if b := small.Bounds(); b.Dx() != 100+2*photoBorder || b.Dy() != 50+2*photoBorder {
		t.Errorf("small photo frame = %v", b)
	}

	large, _ := ts.Surface(KindPhoto, ebiten.NewImage(1024, 512), r)
	if b := large.Bounds(); b.Dx() != photoMaxSide+2*photoBorder || b.Dy() != 128+2*photoBorder {
		t.Errorf("large photo frame = %v", b)
	}

	p1, _ := ts.Surface(KindPhoto, nil, r)
	p2, _ := ts.Surface(KindPhoto, nil, r)
	if p1 == nil || p1 != p2 {
		t.Error("placeholder should be shared")
	}
}

func TestTextureSetDispose(t *testing.T) {
	ts := NewTextureSet()
	r := testRand()
	ts.Surface(KindDecoration, nil, r)
	ts.Surface(KindPhoto, ebiten.NewImage(4, 4), r)
	ts.Dispose()
	if ts.decorations != nil || ts.photos != nil {
		t.Error("Dispose should drop every texture")
	}
	ts.Dispose()
}
