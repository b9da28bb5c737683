package spawn

import (
	"math"
	"reflect"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	for _, shape := range Shapes() {
		cfg := Config{Shape: shape, Spread: 0.8, Speed: 0.6}
		a, err := Generate(500, 42, cfg, 0.3)
		if err != nil {
			t.Fatalf("%s: generate failed: %v", shape, err)
		}
		b, _ := Generate(500, 42, cfg, 0.3)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: same seed produced different buffers", shape)
		}
		c, _ := Generate(500, 43, cfg, 0.3)
		if reflect.DeepEqual(a, c) {
			t.Errorf("%s: different seeds produced identical buffers", shape)
		}
	}
}

func TestGenerateBounds(t *testing.T) {
	for _, shape := range Shapes() {
		cfg := Config{Shape: shape, Spread: 0.9, Speed: 0.5}
		ps, err := Generate(1000, 7, cfg, 0.3)
		if err != nil {
			t.Fatalf("%s: generate failed: %v", shape, err)
		}
		if len(ps) != 1000 {
			t.Fatalf("%s: expected 1000 particles, got %d", shape, len(ps))
		}
		for i, p := range ps {
			if math.Abs(float64(p.Position.X)) > 0.9+1e-6 || math.Abs(float64(p.Position.Y)) > 0.9+1e-6 {
				t.Fatalf("%s: particle %d outside spread: %v", shape, i, p.Position)
			}
			if float64(p.Velocity.Len()) > 0.5+1e-6 {
				t.Fatalf("%s: particle %d too fast: %v", shape, i, p.Velocity.Len())
			}
			if p.Color.A != 0.3 {
				t.Fatalf("%s: particle %d alpha %v", shape, i, p.Color.A)
			}
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := Generate(10, 1, Config{Shape: "spiral"}, 1); err == nil {
		t.Error("expected error for unknown shape")
	}
	if _, err := Generate(-1, 1, DefaultConfig(), 1); err == nil {
		t.Error("expected error for negative count")
	}

	ps, err := Generate(0, 1, DefaultConfig(), 1)
	if err != nil || len(ps) != 0 {
		t.Errorf("expected empty buffer, got %d particles, err %v", len(ps), err)
	}
}

func TestHue(t *testing.T) {
	tests := []struct {
		h       float64
		r, g, b float32
	}{
		{0, 1, 0, 0},
		{1.0 / 3, 0, 1, 0},
		{2.0 / 3, 0, 0, 1},
	}
	for _, tt := range tests {
		r, g, b := hue(tt.h)
		if math.Abs(float64(r-tt.r)) > 1e-6 || math.Abs(float64(g-tt.g)) > 1e-6 || math.Abs(float64(b-tt.b)) > 1e-6 {
			t.Errorf("hue(%v) = (%v, %v, %v), want (%v, %v, %v)", tt.h, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}
