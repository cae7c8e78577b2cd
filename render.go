package evergreen

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// worldSize is the on-screen width of each particle kind in world units at
// scale 1.
var worldSize = [3]float64{
	KindDecoration: 0.9,
	KindDust:       0.3,
	KindPhoto:      3,
}

// renderCommand is a single draw instruction emitted for one visible
// particle.
type renderCommand struct {
	image     *ebiten.Image
	transform [6]float64
	color     Color
	additive  bool
	depth     float64 // distance from the camera plane; larger draws first
	order     int     // insertion order, for stable sort
}

// renderer turns the particle store into depth-sorted draw calls. Buffers
// are reused across frames.
type renderer struct {
	commands []renderCommand
	sortBuf  []renderCommand
	op       ebiten.DrawImageOptions
}

const defaultCommandCap = 4096

func newRenderer() *renderer {
	return &renderer{
		commands: make([]renderCommand, 0, defaultCommandCap),
		sortBuf:  make([]renderCommand, 0, defaultCommandCap),
	}
}

// emit projects every particle through cam and appends a command for each
// visible one. rotX and rotY are the group rotation.
func (r *renderer) emit(particles []*Particle, cam *Camera, rotX, rotY float64) {
	r.commands = r.commands[:0]
	for _, p := range particles {
		if p.Handle == nil || p.Alpha <= 0 {
			continue
		}
		world := rotateGroup(p.Position, rotX, rotY)
		sx, sy, k, ok := cam.Project(world)
		if !ok {
			continue
		}
		b := p.Handle.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		if w == 0 {
			continue
		}
		scale := k * worldSize[p.Kind] / w * p.Scale
		rot := Vec3{p.Rotation.X + rotX, p.Rotation.Y + rotY, p.Rotation.Z}
		if p.Kind == KindDust {
			// Dust is a point glow; orientation would only flatten it.
			rot = Vec3{}
		}
		c := p.Tint
		c.A *= p.Alpha
		r.commands = append(r.commands, renderCommand{
			image:     p.Handle,
			transform: spriteTransform(w, h, sx, sy, scale, rot),
			color:     c,
			additive:  p.Kind == KindDust,
			depth:     cam.Z - world.Z,
			order:     int(p.ID),
		})
	}
}

// submit draws the sorted commands to target.
func (r *renderer) submit(target *ebiten.Image) {
	op := &r.op
	for i := range r.commands {
		cmd := &r.commands[i]
		op.GeoM = affineGeoM(cmd.transform)
		op.ColorScale.Reset()
		a := float32(cmd.color.A)
		op.ColorScale.Scale(float32(cmd.color.R)*a, float32(cmd.color.G)*a, float32(cmd.color.B)*a, a)
		op.Filter = ebiten.FilterLinear
		if cmd.additive {
			op.Blend = ebiten.BlendLighter
		} else {
			op.Blend = ebiten.BlendSourceOver
		}
		target.DrawImage(cmd.image, op)
	}
}

// commandLessOrEqual returns true if a should draw before or at the same
// position as b: farther first, then insertion order.
func commandLessOrEqual(a, b renderCommand) bool {
	if a.depth != b.depth {
		return a.depth > b.depth
	}
	return a.order <= b.order
}

// mergeSort sorts r.commands in-place using r.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (r *renderer) mergeSort() {
	n := len(r.commands)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]renderCommand, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.commands
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.commands, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []renderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
