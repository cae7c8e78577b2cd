package evergreen

import "testing"

func TestTwinkleAlphaRange(t *testing.T) {
	tw := newTwinkle(7)
	dust := make([]*Particle, 64)
	for i := range dust {
		dust[i] = &Particle{ID: ParticleID(i), Kind: KindDust, Alpha: 1}
	}

	varied := false
	for frame := range 120 {
		tw.apply(dust, float64(frame)/60)
		for _, p := range dust {
			if p.Alpha < tw.floor-epsilon || p.Alpha > 1+epsilon {
				t.Fatalf("alpha %v out of [%v, 1]", p.Alpha, tw.floor)
			}
			if p.Alpha != dust[0].Alpha {
				varied = true
			}
		}
	}
	if !varied {
		t.Error("specks should twinkle independently")
	}
}

func TestTwinkleKeepsPositions(t *testing.T) {
	tw := newTwinkle(7)
	p := &Particle{Kind: KindDust, Position: Vec3{1, 2, 3}}
	tw.apply([]*Particle{p}, 1.5)
	assertVec(t, "position", p.Position, Vec3{1, 2, 3})
}
