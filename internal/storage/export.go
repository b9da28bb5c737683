package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run     RunMetadata          `json:"run"`
	Columns []string             `json:"columns"`
	Ticks   []uint64             `json:"ticks"`
	Times   []float64            `json:"times"`
	Series  map[string][]float64 `json:"series"`
}

// ExportJSON writes a run's metadata and time series as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, series *Series) error {
	data := ExportData{
		Run:    meta,
		Series: make(map[string][]float64),
	}
	if series != nil {
		data.Columns = series.Columns
		data.Ticks = series.Ticks
		data.Times = series.Times
		for _, col := range series.Columns {
			data.Series[col] = series.Column(col)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
