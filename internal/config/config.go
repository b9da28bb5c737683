package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/spawn"
)

const (
	DefaultParticles = 4096
	DefaultSeed      = 1
	DefaultDt        = 1.0 / 60
	DefaultDuration  = 10.0
	DefaultBackend   = "auto"
	DefaultLogLevel  = "info"
)

type Config struct {
	Particles   int                `yaml:"particles"`
	Seed        int64              `yaml:"seed"`
	Dt          float64            `yaml:"dt"`
	Duration    float64            `yaml:"duration"`
	Backend     string             `yaml:"backend"`
	Workers     int                `yaml:"workers"`
	Spawn       spawn.Config       `yaml:"spawn"`
	Constants   particle.Constants `yaml:"constants"`
	LogLevel    string             `yaml:"log_level"`
	MetricsAddr string             `yaml:"metrics_addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles: DefaultParticles,
		Seed:      DefaultSeed,
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Backend:   DefaultBackend,
		Spawn:     spawn.DefaultConfig(),
		Constants: particle.DefaultConstants(),
		LogLevel:  DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Particles < 0 {
		return fmt.Errorf("particles must be non-negative, got %d", c.Particles)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Workers < 0 {
		return errors.New("workers must be non-negative")
	}
	return c.Constants.Validate()
}

// Ticks returns the number of fixed steps that cover Duration.
func (c *Config) Ticks() int {
	return int(c.Duration/c.Dt + 0.5)
}

// Initial generates the starting particle buffer.
func (c *Config) Initial() ([]particle.Particle, error) {
	return spawn.Generate(c.Particles, c.Seed, c.Spawn, c.Constants.AlphaMin)
}
