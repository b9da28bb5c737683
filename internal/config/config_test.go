package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Particles != DefaultParticles {
		t.Errorf("expected %d particles, got %d", DefaultParticles, cfg.Particles)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Constants.MaxSpeed != 1.0 {
		t.Errorf("expected max speed 1.0, got %v", cfg.Constants.MaxSpeed)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative particles", func(c *Config) { c.Particles = -1 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"bad constants", func(c *Config) { c.Constants.MaxSpeed = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	cfg := DefaultConfig()
	cfg.Particles = 300
	cfg.Seed = 99
	cfg.Spawn.Shape = "ring"
	cfg.Constants.Damping = 0.95

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Particles != 300 || loaded.Seed != 99 {
		t.Errorf("unexpected loaded config: %+v", loaded)
	}
	if loaded.Spawn.Shape != "ring" {
		t.Errorf("expected ring spawn, got %s", loaded.Spawn.Shape)
	}
	if loaded.Constants.Damping != 0.95 {
		t.Errorf("expected damping 0.95, got %v", loaded.Constants.Damping)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "particles: 12\nconstants:\n  gravity: 0.2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Particles != 12 {
		t.Errorf("expected 12 particles, got %d", cfg.Particles)
	}
	if cfg.Constants.Gravity != 0.2 {
		t.Errorf("expected gravity 0.2, got %v", cfg.Constants.Gravity)
	}
	if cfg.Constants.Damping != 0.99 {
		t.Errorf("expected default damping, got %v", cfg.Constants.Damping)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("expected default dt, got %v", cfg.Dt)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("constants:\n  damping: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0.01
	cfg.Duration = 1.0
	if cfg.Ticks() != 100 {
		t.Errorf("expected 100 ticks, got %d", cfg.Ticks())
	}
}

func TestInitial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Particles = 64

	ps, err := cfg.Initial()
	if err != nil {
		t.Fatalf("initial failed: %v", err)
	}
	if len(ps) != 64 {
		t.Errorf("expected 64 particles, got %d", len(ps))
	}

	cfg.Spawn.Shape = "nope"
	if _, err := cfg.Initial(); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ring")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Spawn.Shape != "ring" {
		t.Errorf("expected ring shape, got %s", cfg.Spawn.Shape)
	}

	cfg.Particles = 1
	if Presets["ring"].Particles == 1 {
		t.Error("GetPreset returned shared config")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) {
			select {
			case changes <- c:
			default:
			}
		}, nil)
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	cfg := DefaultConfig()
	cfg.Constants.Gravity = 0.5
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	// a truncating write may be observed before the content lands
	for reloaded := false; !reloaded; {
		select {
		case c := <-changes:
			reloaded = c.Constants.Gravity == 0.5
		case <-ctx.Done():
			t.Fatal("no reload observed")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned error: %v", err)
	}
}
