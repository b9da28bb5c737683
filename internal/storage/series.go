package storage

import (
	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/metrics"
	"github.com/san-kum/partsim/internal/sim"
)

// Series is a per-tick table of named scalar columns.
type Series struct {
	Columns []string
	Ticks   []uint64
	Times   []float64
	Rows    [][]float64
}

func NewSeries(columns ...string) *Series {
	return &Series{Columns: columns}
}

// Append adds one row. Missing values are stored as zero and extra values
// are dropped.
func (s *Series) Append(tick uint64, t float64, values ...float64) {
	row := make([]float64, len(s.Columns))
	copy(row, values)
	s.Ticks = append(s.Ticks, tick)
	s.Times = append(s.Times, t)
	s.Rows = append(s.Rows, row)
}

func (s *Series) Len() int { return len(s.Times) }

// Column returns the values of the named column, or nil.
func (s *Series) Column(name string) []float64 {
	for c, col := range s.Columns {
		if col != name {
			continue
		}
		out := make([]float64, len(s.Rows))
		for i, row := range s.Rows {
			out[i] = row[c]
		}
		return out
	}
	return nil
}

// SampleEvery returns an observer appending metrics.Sample to s on every
// nth tick. s must be created with metrics.SampleColumns.
func (s *Series) SampleEvery(every uint64, bound float64) sim.Observer {
	if every == 0 {
		every = 1
	}
	return sim.ObserverFunc(func(tick uint64, t float64, v buffer.View) {
		if tick%every != 0 {
			return
		}
		s.Append(tick, t, metrics.Sample(v, bound)...)
	})
}
