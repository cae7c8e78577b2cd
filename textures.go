package evergreen

import (
	"image/color"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	decorationTexSize = 32
	dustTexSize       = 16
	photoMaxSide      = 256
	photoBorder       = 12
)

// Palette is the decoration tint set, chosen uniformly per particle.
var Palette = []Color{
	{0.85, 0.1, 0.12, 1},  // red
	{1, 0.78, 0.2, 1},     // gold
	{0.1, 0.55, 0.25, 1},  // green
	{0.85, 0.88, 0.92, 1}, // silver
}

// TextureSet builds the procedural particle textures. Decoration and dust
// textures are white and shared; tint comes from the particle's Tint.
// Photo surfaces are built per photo. Implements Surfaces.
type TextureSet struct {
	decorations []*ebiten.Image
	dust        *ebiten.Image
	placeholder *ebiten.Image
	photos      []*ebiten.Image // owned photo surfaces, disposed by Dispose
}

// NewTextureSet creates an empty set; textures are drawn on first use.
func NewTextureSet() *TextureSet {
	return &TextureSet{}
}

// Surface returns the render surface and tint for a new particle.
func (t *TextureSet) Surface(kind ParticleKind, src *ebiten.Image, r *rand.Rand) (*ebiten.Image, Color) {
	switch kind {
	case KindDecoration:
		t.ensureDecorations()
		img := t.decorations[r.IntN(len(t.decorations))]
		return img, Palette[r.IntN(len(Palette))]
	case KindDust:
		if t.dust == nil {
			t.dust = newGlowTexture(dustTexSize)
		}
		return t.dust, Color{1, 0.95, 0.8, 1}
	case KindPhoto:
		if src == nil {
			if t.placeholder == nil {
				t.placeholder = newPlaceholderPhoto()
			}
			return t.placeholder, ColorWhite
		}
		framed := newFramedPhoto(src)
		t.photos = append(t.photos, framed)
		return framed, ColorWhite
	}
	return nil, ColorWhite
}

// Dispose releases every texture the set created.
func (t *TextureSet) Dispose() {
	for _, img := range t.decorations {
		img.Deallocate()
	}
	for _, img := range t.photos {
		img.Deallocate()
	}
	if t.dust != nil {
		t.dust.Deallocate()
	}
	if t.placeholder != nil {
		t.placeholder.Deallocate()
	}
	t.decorations, t.photos, t.dust, t.placeholder = nil, nil, nil, nil
}

func (t *TextureSet) ensureDecorations() {
	if t.decorations != nil {
		return
	}
	t.decorations = []*ebiten.Image{
		newOrnamentTexture(),
		newGiftTexture(),
		newCandyTexture(),
	}
}

// newOrnamentTexture draws a ball with a cap and a highlight.
func newOrnamentTexture() *ebiten.Image {
	s := float32(decorationTexSize)
	img := ebiten.NewImage(decorationTexSize, decorationTexSize)
	vector.DrawFilledCircle(img, s/2, s/2+2, s/2-3, color.White, true)
	vector.DrawFilledRect(img, s/2-3, 1, 6, 4, color.Gray{Y: 200}, true)
	vector.DrawFilledCircle(img, s/2-5, s/2-3, 3, color.RGBA{255, 255, 255, 255}, true)
	return img
}

// newGiftTexture draws a box with a darker ribbon cross.
func newGiftTexture() *ebiten.Image {
	s := float32(decorationTexSize)
	img := ebiten.NewImage(decorationTexSize, decorationTexSize)
	vector.DrawFilledRect(img, 3, 3, s-6, s-6, color.White, true)
	ribbon := color.Gray{Y: 150}
	vector.DrawFilledRect(img, s/2-2, 3, 4, s-6, ribbon, true)
	vector.DrawFilledRect(img, 3, s/2-2, s-6, 4, ribbon, true)
	return img
}

// newCandyTexture draws a diagonal striped stick.
func newCandyTexture() *ebiten.Image {
	s := float32(decorationTexSize)
	img := ebiten.NewImage(decorationTexSize, decorationTexSize)
	vector.DrawFilledRect(img, s/2-4, 2, 8, s-4, color.White, true)
	for y := float32(4); y < s-4; y += 7 {
		vector.StrokeLine(img, s/2-4, y+3, s/2+4, y, 2, color.Gray{Y: 120}, true)
	}
	return img
}

// newGlowTexture draws concentric circles fading toward the edge.
func newGlowTexture(size int) *ebiten.Image {
	img := ebiten.NewImage(size, size)
	c := float32(size) / 2
	const rings = 4
	for i := 0; i < rings; i++ {
		r := c * float32(rings-i) / rings
		a := uint8(60 + 195*i/(rings-1))
		vector.DrawFilledCircle(img, c, c, r, color.RGBA{a, a, a, a}, true)
	}
	return img
}

// newPlaceholderPhoto draws a framed card shown before any photo is added.
func newPlaceholderPhoto() *ebiten.Image {
	const w, h = 160, 200
	img := ebiten.NewImage(w+2*photoBorder, h+2*photoBorder)
	img.Fill(color.White)
	vector.DrawFilledRect(img, photoBorder, photoBorder, w, h, color.RGBA{22, 60, 40, 255}, true)
	cx, cy := float32(photoBorder+w/2), float32(photoBorder+h/2)
	vector.DrawFilledCircle(img, cx, cy, 36, color.RGBA{230, 190, 60, 255}, true)
	vector.DrawFilledCircle(img, cx, cy, 18, color.RGBA{250, 240, 200, 255}, true)
	return img
}

// newFramedPhoto scales src to fit photoMaxSide and adds a white border.
func newFramedPhoto(src *ebiten.Image) *ebiten.Image {
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	k := 1.0
	if side := max(w, h); side > photoMaxSide {
		k = photoMaxSide / side
	}
	fw, fh := int(w*k), int(h*k)
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}

	img := ebiten.NewImage(fw+2*photoBorder, fh+2*photoBorder)
	img.Fill(color.White)
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(k, k)
	op.GeoM.Translate(photoBorder, photoBorder)
	op.Filter = ebiten.FilterLinear
	img.DrawImage(src, &op)
	return img
}
