package particle

import "fmt"

const (
	DefaultGravity       = 0.1
	DefaultDamping       = 0.99
	DefaultMaxSpeed      = 1.0
	DefaultCenterEpsilon = 0.01
	DefaultAlphaMin      = 0.3
	DefaultAlphaMax      = 1.0
	DefaultPhaseStep     = 0.1
	DefaultPulseRate     = 2.0
	DefaultBound         = 1.0
)

// Constants are the fixed policy values of the update kernel.
type Constants struct {
	Gravity       float32 `yaml:"gravity" json:"gravity"`               // pull toward the origin, per second
	Damping       float32 `yaml:"damping" json:"damping"`               // velocity decay per tick
	MaxSpeed      float32 `yaml:"max_speed" json:"max_speed"`           // speed clamp
	CenterEpsilon float32 `yaml:"center_epsilon" json:"center_epsilon"` // no attraction closer than this
	AlphaMin      float32 `yaml:"alpha_min" json:"alpha_min"`
	AlphaMax      float32 `yaml:"alpha_max" json:"alpha_max"`
	PhaseStep     float32 `yaml:"phase_step" json:"phase_step"` // per-index phase offset of the pulse
	PulseRate     float32 `yaml:"pulse_rate" json:"pulse_rate"` // angular rate of the pulse
	Bound         float32 `yaml:"bound" json:"bound"`           // half-width of the square domain
}

func DefaultConstants() Constants {
	return Constants{
		Gravity:       DefaultGravity,
		Damping:       DefaultDamping,
		MaxSpeed:      DefaultMaxSpeed,
		CenterEpsilon: DefaultCenterEpsilon,
		AlphaMin:      DefaultAlphaMin,
		AlphaMax:      DefaultAlphaMax,
		PhaseStep:     DefaultPhaseStep,
		PulseRate:     DefaultPulseRate,
		Bound:         DefaultBound,
	}
}

// Validate rejects constants that could drive the kernel to NaN or Inf.
func (c Constants) Validate() error {
	fields := []struct {
		name string
		v    float32
	}{
		{"gravity", c.Gravity},
		{"damping", c.Damping},
		{"max_speed", c.MaxSpeed},
		{"center_epsilon", c.CenterEpsilon},
		{"alpha_min", c.AlphaMin},
		{"alpha_max", c.AlphaMax},
		{"phase_step", c.PhaseStep},
		{"pulse_rate", c.PulseRate},
		{"bound", c.Bound},
	}
	for _, f := range fields {
		if !isFinite(f.v) {
			return fmt.Errorf("%w: %s must be finite, got %g", ErrInvalidConstants, f.name, f.v)
		}
	}

	switch {
	case !(c.MaxSpeed > 0):
		return fmt.Errorf("%w: max_speed must be positive, got %g", ErrInvalidConstants, c.MaxSpeed)
	case !(c.Bound > 0):
		return fmt.Errorf("%w: bound must be positive, got %g", ErrInvalidConstants, c.Bound)
	case !(c.Gravity >= 0):
		return fmt.Errorf("%w: gravity must be non-negative, got %g", ErrInvalidConstants, c.Gravity)
	case !(c.CenterEpsilon >= 0):
		return fmt.Errorf("%w: center_epsilon must be non-negative, got %g", ErrInvalidConstants, c.CenterEpsilon)
	case !(c.Damping >= 0 && c.Damping <= 1):
		return fmt.Errorf("%w: damping must be in [0, 1], got %g", ErrInvalidConstants, c.Damping)
	case !(c.AlphaMin <= c.AlphaMax):
		return fmt.Errorf("%w: alpha range [%g, %g] is inverted", ErrInvalidConstants, c.AlphaMin, c.AlphaMax)
	}
	return nil
}

func (c Constants) AsMap() map[string]float64 {
	return map[string]float64{
		"gravity":        float64(c.Gravity),
		"damping":        float64(c.Damping),
		"max_speed":      float64(c.MaxSpeed),
		"center_epsilon": float64(c.CenterEpsilon),
		"alpha_min":      float64(c.AlphaMin),
		"alpha_max":      float64(c.AlphaMax),
		"phase_step":     float64(c.PhaseStep),
		"pulse_rate":     float64(c.PulseRate),
		"bound":          float64(c.Bound),
	}
}
