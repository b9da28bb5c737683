package sim

import (
	"time"

	"github.com/san-kum/partsim/internal/buffer"
)

// Clock supplies the parameters of the next tick: the seconds elapsed since
// the previous tick and the current simulation time.
type Clock interface {
	Next() (dt, t float64)
}

// Resetter is implemented by clocks that can restart from time zero.
type Resetter interface {
	Reset()
}

// Metric accumulates a scalar over completed ticks.
type Metric interface {
	Name() string
	Observe(tick uint64, t float64, v buffer.View)
	Value() float64
	Reset()
}

// Observer is notified after every completed tick. The view is only valid
// for the duration of the call, and the driver is locked while it runs.
type Observer interface {
	OnTick(tick uint64, t float64, v buffer.View)
}

// Recorder receives dispatch telemetry.
type Recorder interface {
	ObserveTick(backend string, particles int, elapsed time.Duration)
	ObserveFailure(backend string)
}

type ObserverFunc func(tick uint64, t float64, v buffer.View)

func (f ObserverFunc) OnTick(tick uint64, t float64, v buffer.View) { f(tick, t, v) }
