// Package spawn generates seeded initial particle buffers.
package spawn

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/partsim/internal/particle"
)

// Config describes an initial distribution.
type Config struct {
	Shape  string  `yaml:"shape"`  // uniform, disk, ring or burst
	Spread float64 `yaml:"spread"` // radius or half-width of the region
	Speed  float64 `yaml:"speed"`  // maximum initial speed
}

func DefaultConfig() Config {
	return Config{Shape: "uniform", Spread: 0.9, Speed: 0.5}
}

type shapeFunc func(rng *rand.Rand, cfg Config, i, n int) (pos, vel particle.Vec2)

var shapes = map[string]shapeFunc{
	"uniform": uniform,
	"disk":    disk,
	"ring":    ring,
	"burst":   burst,
}

func Shapes() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate returns n particles. The same seed and config always produce the
// same buffer.
func Generate(n int, seed int64, cfg Config, alpha float32) ([]particle.Particle, error) {
	if n < 0 {
		return nil, fmt.Errorf("spawn: negative particle count %d", n)
	}
	shape, ok := shapes[cfg.Shape]
	if !ok {
		return nil, fmt.Errorf("spawn: unknown shape: %s (available: %v)", cfg.Shape, Shapes())
	}

	rng := rand.New(rand.NewSource(seed))
	ps := make([]particle.Particle, n)
	for i := range ps {
		pos, vel := shape(rng, cfg, i, n)
		r, g, b := hue(float64(i) / float64(max(n, 1)))
		ps[i] = particle.Particle{
			Position: pos,
			Velocity: vel,
			Color:    particle.Vec4{R: r, G: g, B: b, A: alpha},
		}
	}
	return ps, nil
}

func uniform(rng *rand.Rand, cfg Config, _, _ int) (particle.Vec2, particle.Vec2) {
	pos := vec(cfg.Spread*(2*rng.Float64()-1), cfg.Spread*(2*rng.Float64()-1))
	return pos, randomVelocity(rng, cfg.Speed)
}

func disk(rng *rand.Rand, cfg Config, _, _ int) (particle.Vec2, particle.Vec2) {
	r := cfg.Spread * math.Sqrt(rng.Float64())
	a := rng.Float64() * 2 * math.Pi
	return vec(r*math.Cos(a), r*math.Sin(a)), randomVelocity(rng, cfg.Speed)
}

// ring places particles evenly on a circle moving tangentially.
func ring(rng *rand.Rand, cfg Config, i, n int) (particle.Vec2, particle.Vec2) {
	a := float64(i) * 2 * math.Pi / float64(n)
	r := cfg.Spread * (0.95 + 0.05*rng.Float64())
	s := cfg.Speed * (0.8 + 0.2*rng.Float64())
	return vec(r*math.Cos(a), r*math.Sin(a)), vec(-s*math.Sin(a), s*math.Cos(a))
}

// burst packs particles near the origin moving outward.
func burst(rng *rand.Rand, cfg Config, _, _ int) (particle.Vec2, particle.Vec2) {
	a := rng.Float64() * 2 * math.Pi
	r := 0.05 * cfg.Spread * rng.Float64()
	s := cfg.Speed * (0.5 + 0.5*rng.Float64())
	return vec(r*math.Cos(a), r*math.Sin(a)), vec(s*math.Cos(a), s*math.Sin(a))
}

func randomVelocity(rng *rand.Rand, speed float64) particle.Vec2 {
	a := rng.Float64() * 2 * math.Pi
	s := speed * rng.Float64()
	return vec(s*math.Cos(a), s*math.Sin(a))
}

func vec(x, y float64) particle.Vec2 {
	return particle.Vec2{X: float32(x), Y: float32(y)}
}

// hue maps h in [0, 1) to a saturated RGB color.
func hue(h float64) (r, g, b float32) {
	h = math.Mod(h, 1) * 6
	x := float32(1 - math.Abs(math.Mod(h, 2)-1))
	switch int(h) {
	case 0:
		return 1, x, 0
	case 1:
		return x, 1, 0
	case 2:
		return 0, 1, x
	case 3:
		return 0, x, 1
	case 4:
		return x, 0, 1
	default:
		return 1, 0, x
	}
}
