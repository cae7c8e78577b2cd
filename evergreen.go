package evergreen

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Vec3 is a 3D vector used for positions, velocities, rotations, and scales.
// The scene is right-handed with Y up; the default camera looks down -Z.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// Lerp moves v toward target by the fraction t of the remaining distance.
func (v Vec3) Lerp(target Vec3, t float64) Vec3 {
	return Vec3{lerp(v.X, target.X, t), lerp(v.Y, target.Y, t), lerp(v.Z, target.Z, t)}
}

// Range is a general-purpose min/max range.
// Used by scene population and the particle textures.
type Range struct {
	Min, Max float64
}

// Mode selects the layout that drives every particle's target transform.
type Mode int32

const (
	ModeTree    Mode = iota // spiral cone (initial)
	ModeScatter             // drifting cloud anchored at initial positions
	ModeFocus               // one photo presented to the camera
)

// String returns the display label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeTree:
		return "TREE"
	case ModeScatter:
		return "SCATTER"
	case ModeFocus:
		return "FOCUS"
	default:
		return "UNKNOWN"
	}
}

// ParseMode converts a label produced by Mode.String back to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "TREE", "tree":
		return ModeTree, true
	case "SCATTER", "scatter":
		return ModeScatter, true
	case "FOCUS", "focus":
		return ModeFocus, true
	}
	return 0, false
}

// ParticleKind distinguishes how a particle is textured and laid out.
type ParticleKind uint8

const (
	KindDecoration ParticleKind = iota // ornaments, gifts, candy
	KindDust                           // small glowing specks
	KindPhoto                          // framed user or generated image
)

// String returns a lower-case name for logs.
func (k ParticleKind) String() string {
	switch k {
	case KindDecoration:
		return "decoration"
	case KindDust:
		return "dust"
	case KindPhoto:
		return "photo"
	default:
		return "unknown"
	}
}
