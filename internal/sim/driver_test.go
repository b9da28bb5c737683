package sim_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/compute"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/sim"
)

func scattered(n int, seed int64) []particle.Particle {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]particle.Particle, n)
	for i := range ps {
		ps[i] = particle.Particle{
			Position: particle.Vec2{X: rng.Float32()*2 - 1, Y: rng.Float32()*2 - 1},
			Velocity: particle.Vec2{X: rng.Float32()*6 - 3, Y: rng.Float32()*6 - 3},
			Color:    particle.Vec4{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: 1},
		}
	}
	return ps
}

// reverseBackend processes indices from last to first.
type reverseBackend struct{}

func (reverseBackend) Name() string    { return "reverse" }
func (reverseBackend) Available() bool { return true }
func (reverseBackend) Cleanup()        {}
func (reverseBackend) Run(_ context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	for i := compute.GridSize(len(src)) - 1; i >= 0; i-- {
		k.Update(src, dst, i, p)
	}
	return nil
}

// shuffledBackend processes indices in a random permutation.
type shuffledBackend struct{ rng *rand.Rand }

func (shuffledBackend) Name() string    { return "shuffled" }
func (shuffledBackend) Available() bool { return true }
func (shuffledBackend) Cleanup()        {}
func (b shuffledBackend) Run(_ context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	for _, i := range b.rng.Perm(len(src)) {
		k.Update(src, dst, i, p)
	}
	return nil
}

// halfBackend writes half of the buffer and then reports an interruption.
type halfBackend struct{ calls int }

func (*halfBackend) Name() string    { return "half" }
func (*halfBackend) Available() bool { return true }
func (*halfBackend) Cleanup()        {}
func (b *halfBackend) Run(_ context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	b.calls++
	for i := 0; i < len(src)/2; i++ {
		k.Update(src, dst, i, p)
	}
	return compute.ErrInterrupted
}

type countingRecorder struct {
	mu       sync.Mutex
	ticks    int
	failures int
}

func (r *countingRecorder) ObserveTick(string, int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *countingRecorder) ObserveFailure(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func runTicks(d *sim.Driver, ticks int, dt float64) [][]particle.Particle {
	clock := sim.NewFixedClock(dt)
	frames := make([][]particle.Particle, 0, ticks)
	err := sim.Run(context.Background(), d, clock, ticks, func(_ uint64, v buffer.View) bool {
		frames = append(frames, v.Snapshot())
		return true
	})
	Expect(err).NotTo(HaveOccurred())
	return frames
}

var _ = Describe("Driver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("rejects a nil backend", func() {
		_, err := sim.New(scattered(4, 1), nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects invalid constants", func() {
		c := particle.DefaultConstants()
		c.MaxSpeed = 0
		_, err := sim.New(scattered(4, 1), compute.NewSerialBackend(), sim.WithConstants(c))
		Expect(err).To(MatchError(particle.ErrInvalidConstants))
	})

	Describe("Step", func() {
		It("swaps buffers and counts ticks", func() {
			d, err := sim.New(scattered(10, 2), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			before := d.Snapshot()
			Expect(d.Step(ctx, 0.016, 0.016)).To(Succeed())
			Expect(d.Tick()).To(Equal(uint64(1)))
			Expect(d.Time()).To(BeNumerically("~", 0.016))
			Expect(d.Snapshot()).NotTo(Equal(before))
		})

		It("rejects a negative delta time and leaves state unchanged", func() {
			d, err := sim.New(scattered(10, 3), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			before := d.Snapshot()
			err = d.Step(ctx, -0.01, 1)
			Expect(errors.Is(err, particle.ErrInvalidParameter)).To(BeTrue())
			Expect(d.Tick()).To(BeZero())
			Expect(d.Snapshot()).To(Equal(before))
			Expect(d.Err()).NotTo(HaveOccurred())
		})

		DescribeTable("rejects parameters the float32 kernel cannot represent",
			func(dt, t float64) {
				d, err := sim.New(scattered(3, 4), compute.NewSerialBackend())
				Expect(err).NotTo(HaveOccurred())
				before := d.Snapshot()

				Expect(d.Step(ctx, dt, t)).To(MatchError(particle.ErrInvalidParameter))
				Expect(d.Tick()).To(BeZero())
				Expect(d.Snapshot()).To(Equal(before))
			},
			Entry("NaN dt", math.NaN(), 0.0),
			Entry("infinite dt", math.Inf(1), 0.0),
			Entry("NaN time", 0.01, math.NaN()),
			Entry("infinite time", 0.01, math.Inf(-1)),
			Entry("dt beyond float32 range", 1e39, 0.0),
			Entry("time beyond float32 range", 0.01, 1e39),
			Entry("negative time beyond float32 range", 0.01, -1e39),
			Entry("dt and time beyond float32 range", 1e39, 1e39),
		)

		It("treats a zero delta time as a valid tick", func() {
			d, err := sim.New([]particle.Particle{{Velocity: particle.Vec2{X: 0.5}}}, compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Step(ctx, 0, 0)).To(Succeed())
			p := d.Snapshot()[0]
			Expect(p.Position).To(Equal(particle.Vec2{}))
			Expect(p.Velocity.X).To(BeNumerically("~", 0.5*0.99, 1e-6))
		})

		It("does not dispatch when the context is already done", func() {
			d, err := sim.New(scattered(5, 5), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			Expect(d.Step(cctx, 0.01, 0.01)).To(MatchError(context.Canceled))
			Expect(d.Err()).NotTo(HaveOccurred())
			Expect(d.Step(ctx, 0.01, 0.01)).To(Succeed())
		})

		It("marks the session corrupted after an interrupted dispatch", func() {
			backend := &halfBackend{}
			rec := &countingRecorder{}
			d, err := sim.New(scattered(8, 6), backend, sim.WithRecorder(rec))
			Expect(err).NotTo(HaveOccurred())

			before := d.Snapshot()
			err = d.Step(ctx, 0.01, 0.01)
			Expect(errors.Is(err, particle.ErrCorruptedState)).To(BeTrue())
			Expect(errors.Is(err, compute.ErrInterrupted)).To(BeTrue())

			var tickErr *particle.TickError
			Expect(errors.As(err, &tickErr)).To(BeTrue())
			Expect(tickErr.Tick).To(BeZero())

			Expect(d.Snapshot()).To(Equal(before))
			Expect(d.Tick()).To(BeZero())
			Expect(d.Err()).To(MatchError(particle.ErrCorruptedState))

			Expect(d.Step(ctx, 0.01, 0.02)).To(MatchError(particle.ErrCorruptedState))
			Expect(backend.calls).To(Equal(1))
			Expect(rec.failures).To(Equal(1))
			Expect(rec.ticks).To(BeZero())
		})
	})

	Describe("Invariants", func() {
		const ticks = 300

		var frames [][]particle.Particle

		BeforeEach(func() {
			d, err := sim.New(scattered(300, 7), compute.NewCPUBackend(4))
			Expect(err).NotTo(HaveOccurred())
			frames = runTicks(d, ticks, 0.05)
		})

		It("keeps every speed at or below the maximum", func() {
			for _, frame := range frames {
				for _, p := range frame {
					Expect(p.Velocity.Len()).To(BeNumerically("<=", 1.0+1e-6))
				}
			}
		})

		It("keeps every particle inside the domain", func() {
			for _, frame := range frames {
				for _, p := range frame {
					Expect(math.Abs(float64(p.Position.X))).To(BeNumerically("<=", 1.0))
					Expect(math.Abs(float64(p.Position.Y))).To(BeNumerically("<=", 1.0))
				}
			}
		})

		It("keeps alpha inside its range", func() {
			for _, frame := range frames {
				for _, p := range frame {
					Expect(p.Color.A).To(BeNumerically(">=", float32(0.3)))
					Expect(p.Color.A).To(BeNumerically("<=", float32(1.0)))
				}
			}
		})

		It("never produces NaN or Inf", func() {
			for _, frame := range frames {
				for _, p := range frame {
					Expect(p.IsValid()).To(BeTrue())
				}
			}
		})
	})

	It("is deterministic across runs and backends", func() {
		initial := scattered(777, 8)
		backends := []compute.Backend{
			compute.NewSerialBackend(),
			compute.NewCPUBackend(3),
			compute.NewGroupBackend(5),
		}

		var want [][]particle.Particle
		for _, b := range backends {
			for run := 0; run < 2; run++ {
				d, err := sim.New(initial, b)
				Expect(err).NotTo(HaveOccurred())
				got := runTicks(d, 50, 0.02)
				if want == nil {
					want = got
					continue
				}
				Expect(got).To(Equal(want), "backend %s run %d", b.Name(), run)
			}
		}
	})

	It("does not depend on invocation order", func() {
		initial := scattered(513, 9)

		forward, err := sim.New(initial, compute.NewSerialBackend())
		Expect(err).NotTo(HaveOccurred())
		reverse, err := sim.New(initial, reverseBackend{})
		Expect(err).NotTo(HaveOccurred())
		shuffled, err := sim.New(initial, shuffledBackend{rng: rand.New(rand.NewSource(1))})
		Expect(err).NotTo(HaveOccurred())

		want := runTicks(forward, 40, 0.03)
		Expect(runTicks(reverse, 40, 0.03)).To(Equal(want))
		Expect(runTicks(shuffled, 40, 0.03)).To(Equal(want))
	})

	Describe("SetConstants", func() {
		It("applies new constants at the next tick", func() {
			d, err := sim.New([]particle.Particle{{Velocity: particle.Vec2{X: 0.5}}}, compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			c := particle.DefaultConstants()
			c.Damping = 0.5
			Expect(d.SetConstants(c)).To(Succeed())
			Expect(d.Constants().Damping).To(Equal(float32(0.5)))

			Expect(d.Step(ctx, 0, 0)).To(Succeed())
			Expect(d.Snapshot()[0].Velocity.X).To(Equal(float32(0.25)))
		})

		It("rejects invalid constants", func() {
			d, err := sim.New(scattered(2, 10), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			c := particle.DefaultConstants()
			c.Damping = 2
			Expect(d.SetConstants(c)).To(MatchError(particle.ErrInvalidConstants))
			Expect(d.Constants()).To(Equal(particle.DefaultConstants()))
		})
	})

	Describe("Reset", func() {
		It("restores the initial buffer and clears counters", func() {
			initial := scattered(16, 14)
			d, err := sim.New(initial, compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			runTicks(d, 5, 0.01)
			Expect(d.Tick()).To(Equal(uint64(5)))

			Expect(d.Reset(initial)).To(Succeed())
			Expect(d.Tick()).To(BeZero())
			Expect(d.Time()).To(BeZero())
			Expect(d.Snapshot()).To(Equal(initial))
		})

		It("rejects a buffer of a different size", func() {
			d, err := sim.New(scattered(16, 15), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Reset(scattered(8, 15))).To(MatchError(particle.ErrSizeMismatch))
		})

		It("starts a healthy session after corruption", func() {
			initial := scattered(8, 16)
			d, err := sim.New(initial, &halfBackend{})
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Step(ctx, 0.01, 0.01)).To(MatchError(particle.ErrCorruptedState))
			Expect(d.Reset(initial)).To(Succeed())
			Expect(d.Err()).NotTo(HaveOccurred())
		})
	})

	Describe("Observers", func() {
		It("sees every completed tick with a consistent view", func() {
			d, err := sim.New(scattered(20, 11), compute.NewCPUBackend(2))
			Expect(err).NotTo(HaveOccurred())

			var seen []uint64
			d.AddObserver(sim.ObserverFunc(func(tick uint64, _ float64, v buffer.View) {
				Expect(v.Len()).To(Equal(20))
				seen = append(seen, tick)
			}))

			Expect(sim.Run(ctx, d, sim.NewFixedClock(0.01), 5, nil)).To(Succeed())
			Expect(seen).To(Equal([]uint64{1, 2, 3, 4, 5}))
		})
	})

	Describe("Run", func() {
		It("stops when the callback returns false", func() {
			d, err := sim.New(scattered(4, 12), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			err = sim.Run(ctx, d, sim.NewFixedClock(0.01), 100, func(tick uint64, _ buffer.View) bool {
				return tick < 3
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Tick()).To(Equal(uint64(3)))
		})

		It("stops on context cancellation", func() {
			d, err := sim.New(scattered(4, 13), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			cctx, cancel := context.WithCancel(ctx)
			err = sim.Run(cctx, d, sim.NewFixedClock(0.01), 0, func(tick uint64, _ buffer.View) bool {
				if tick == 10 {
					cancel()
				}
				return true
			})
			Expect(err).To(MatchError(context.Canceled))
			Expect(d.Tick()).To(Equal(uint64(10)))
			Expect(d.Err()).NotTo(HaveOccurred())
		})
	})
})
