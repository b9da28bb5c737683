package sim

import (
	"context"

	"github.com/san-kum/partsim/internal/buffer"
)

// Run steps d with parameters from clock. ticks <= 0 runs until ctx is done.
// callback, if set, sees each completed tick and stops the run by returning
// false.
func Run(ctx context.Context, d *Driver, clock Clock, ticks int, callback func(tick uint64, v buffer.View) bool) error {
	for i := 0; ticks <= 0 || i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		dt, t := clock.Next()
		if err := d.Step(ctx, dt, t); err != nil {
			return err
		}

		if callback == nil {
			continue
		}
		tick := d.Tick()
		keep := true
		d.View(func(v buffer.View) { keep = callback(tick, v) })
		if !keep {
			return nil
		}
	}
	return nil
}
