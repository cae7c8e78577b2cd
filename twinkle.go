package evergreen

import "github.com/aquilax/go-perlin"

// twinkle modulates dust alpha with 1D Perlin noise so specks shimmer
// independently. It never touches positions.
type twinkle struct {
	noise *perlin.Perlin
	speed float64 // noise units per second
	floor float64 // minimum alpha
}

func newTwinkle(seed int64) *twinkle {
	return &twinkle{
		noise: perlin.NewPerlin(2, 2, 3, seed),
		speed: 0.8,
		floor: 0.25,
	}
}

// apply sets Alpha on every dust particle for the given elapsed seconds.
func (tw *twinkle) apply(dust []*Particle, elapsed float64) {
	for _, p := range dust {
		// Offset each speck along the noise line by its ID.
		n := tw.noise.Noise1D(elapsed*tw.speed + float64(p.ID)*0.37)
		// Noise1D is roughly in [-1, 1]; octaves can overshoot.
		p.Alpha = tw.floor + (1-tw.floor)*clamp01((n+1)/2)
	}
}
