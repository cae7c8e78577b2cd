package evergreen

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const twoPi = 2 * math.Pi

// minForeshorten keeps edge-on sprites from collapsing to a zero-width line.
const minForeshorten = 0.15

// rotateGroup applies the scene rotation to a group-space point: first
// around Y, then around X.
func rotateGroup(v Vec3, rotX, rotY float64) Vec3 {
	sinY, cosY := math.Sincos(rotY)
	x := v.X*cosY + v.Z*sinY
	z := -v.X*sinY + v.Z*cosY

	sinX, cosX := math.Sincos(rotX)
	y := v.Y*cosX - z*sinX
	z = v.Y*sinX + z*cosX

	return Vec3{x, y, z}
}

// spriteTransform computes the screen affine matrix for a square sprite of
// size w×h centered at (sx, sy). Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-w/2, -h/2) -> Scale(scale*foreX, scale*foreY) -> Rotate(rotZ) -> Translate(sx, sy)
//
// foreX and foreY shrink the sprite as it turns away from the camera
// around Y and X respectively.
func spriteTransform(w, h, sx, sy, scale float64, rot Vec3) [6]float64 {
	foreX := math.Max(math.Abs(math.Cos(rot.Y)), minForeshorten)
	foreY := math.Max(math.Abs(math.Cos(rot.X)), minForeshorten)
	kx := scale * foreX
	ky := scale * foreY

	sin, cos := math.Sincos(rot.Z)
	a := cos * kx
	b := sin * kx
	c := -sin * ky
	d := cos * ky

	px, py := w/2, h/2
	tx := -(a*px + c*py)
	ty := -(b*px + d*py)
	return [6]float64{a, b, c, d, tx + sx, ty + sy}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// affineGeoM converts an affine matrix to an ebiten.GeoM.
func affineGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
