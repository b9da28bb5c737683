package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/compute"
	"github.com/san-kum/partsim/internal/particle"
)

// Driver owns the particle store and advances it one tick per Step.
type Driver struct {
	mu sync.RWMutex

	store     *buffer.Store
	backend   compute.Backend
	kernel    *particle.Kernel
	pending   *particle.Kernel
	logger    *zap.Logger
	recorder  Recorder
	metrics   []Metric
	observers []Observer

	tick      uint64
	time      float64
	corrupted error
}

type Option func(*Driver)

func WithConstants(c particle.Constants) Option {
	return func(d *Driver) { d.kernel = particle.NewKernel(c) }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observers = append(d.observers, o) }
}

func New(initial []particle.Particle, backend compute.Backend, opts ...Option) (*Driver, error) {
	if backend == nil {
		return nil, errors.New("sim: nil backend")
	}

	d := &Driver{
		store:   buffer.New(initial),
		backend: backend,
		kernel:  particle.NewKernel(particle.DefaultConstants()),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.kernel.Constants().Validate(); err != nil {
		return nil, err
	}

	d.logger.Debug("driver ready",
		zap.Int("particles", d.store.Len()),
		zap.String("backend", backend.Name()),
	)
	return d, nil
}

func (d *Driver) AddMetric(m Metric) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics = append(d.metrics, m)
}

func (d *Driver) AddObserver(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

// Step runs one tick with the given delta time and simulation time. Invalid
// parameters are rejected with the store untouched. A dispatch that fails
// part-way corrupts the session: every later Step returns the same error.
func (d *Driver) Step(ctx context.Context, dt, t float64) error {
	// Values beyond float32 range would reach the kernel as Inf.
	if math.IsNaN(dt) || dt < 0 || dt > math.MaxFloat32 {
		return fmt.Errorf("%w: delta_time must be non-negative and fit in float32, got %g", particle.ErrInvalidParameter, dt)
	}
	if math.IsNaN(t) || math.Abs(t) > math.MaxFloat32 {
		return fmt.Errorf("%w: time must fit in float32, got %g", particle.ErrInvalidParameter, t)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.corrupted != nil {
		return d.corrupted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if d.pending != nil {
		d.kernel, d.pending = d.pending, nil
		d.logger.Info("constants applied", zap.Uint64("tick", d.tick))
	}

	p := particle.Params{DeltaTime: float32(dt), Time: float32(t)}

	start := time.Now()
	err := d.backend.Run(ctx, d.kernel, d.store.Current(), d.store.Next(), p)
	elapsed := time.Since(start)

	if err != nil {
		d.corrupted = &particle.TickError{
			Tick:    d.tick,
			Time:    t,
			Wrapped: fmt.Errorf("%w: %w", particle.ErrCorruptedState, err),
		}
		if d.recorder != nil {
			d.recorder.ObserveFailure(d.backend.Name())
		}
		d.logger.Error("dispatch failed, session corrupted",
			zap.Uint64("tick", d.tick),
			zap.Float64("dt", dt),
			zap.String("backend", d.backend.Name()),
			zap.Error(err),
		)
		return d.corrupted
	}

	d.store.Swap()
	d.tick++
	d.time = t

	if d.recorder != nil {
		d.recorder.ObserveTick(d.backend.Name(), d.store.Len(), elapsed)
	}

	view := d.store.View()
	for _, m := range d.metrics {
		m.Observe(d.tick, t, view)
	}
	for _, o := range d.observers {
		o.OnTick(d.tick, t, view)
	}

	if ce := d.logger.Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(
			zap.Uint64("tick", d.tick),
			zap.Float64("dt", dt),
			zap.Duration("elapsed", elapsed),
		)
	}
	return nil
}

// Reset loads initial into the store and starts a fresh session: the tick
// counter, time, metrics and any corruption are cleared. initial must have
// the store's length.
func (d *Driver) Reset(initial []particle.Particle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.store.Reset(initial); err != nil {
		return err
	}
	d.tick, d.time, d.corrupted = 0, 0, nil
	for _, m := range d.metrics {
		m.Reset()
	}
	d.logger.Info("driver reset", zap.Int("particles", d.store.Len()))
	return nil
}

// View calls fn with the current buffer. No tick runs while fn executes.
func (d *Driver) View(fn func(v buffer.View)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.store.View())
}

// Snapshot returns a copy of the current buffer.
func (d *Driver) Snapshot() []particle.Particle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.View().Snapshot()
}

// SetConstants replaces the kernel constants starting with the next tick.
func (d *Driver) SetConstants(c particle.Constants) error {
	if err := c.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = particle.NewKernel(c)
	return nil
}

func (d *Driver) Constants() particle.Constants {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pending != nil {
		return d.pending.Constants()
	}
	return d.kernel.Constants()
}

// Metrics returns the current value of every registered metric.
func (d *Driver) Metrics() map[string]float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]float64, len(d.metrics))
	for _, m := range d.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (d *Driver) Tick() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tick
}

// Time returns the simulation time of the last completed tick.
func (d *Driver) Time() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.time
}

// Err returns the corruption error, or nil if the session is healthy.
func (d *Driver) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.corrupted
}

func (d *Driver) Len() int { return d.store.Len() }

func (d *Driver) Backend() string { return d.backend.Name() }

func (d *Driver) Close() {
	d.backend.Cleanup()
}
