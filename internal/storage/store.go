package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/spawn"
)

const (
	metadataFile  = "metadata.json"
	particlesFile = "particles.csv"
	seriesFile    = "series.csv"
)

var particleHeader = []string{"x", "y", "vx", "vy", "r", "g", "b", "a"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Particles int                `json:"particles"`
	Ticks     uint64             `json:"ticks"`
	Backend   string             `json:"backend"`
	Spawn     spawn.Config       `json:"spawn"`
	Constants particle.Constants `json:"constants"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its id. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, final []particle.Particle, series *Series) (string, error) {
	prefix := meta.Preset
	if prefix == "" {
		prefix = "run"
	}
	meta.ID = fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
	meta.Timestamp = time.Now()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeParticles(filepath.Join(runDir, particlesFile), final); err != nil {
		return "", err
	}
	if series != nil {
		if err := writeSeries(filepath.Join(runDir, seriesFile), series); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadParticles(runID string) ([]particle.Particle, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []particle.Particle{}, nil
	}

	ps := make([]particle.Particle, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != len(particleHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", particlesFile, line+2, len(particleHeader), len(record))
		}
		var v [8]float32
		for i, field := range record {
			f, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", particlesFile, line+2, err)
			}
			v[i] = float32(f)
		}
		ps = append(ps, particle.Particle{
			Position: particle.Vec2{X: v[0], Y: v[1]},
			Velocity: particle.Vec2{X: v[2], Y: v[3]},
			Color:    particle.Vec4{R: v[4], G: v[5], B: v[6], A: v[7]},
		})
	}
	return ps, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, fmt.Errorf("%s: missing header", seriesFile)
	}

	series := NewSeries(records[0][2:]...)
	for _, record := range records[1:] {
		if len(record) != len(records[0]) {
			continue
		}
		tick, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		values := make([]float64, 0, len(record)-2)
		for _, field := range record[2:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			values = append(values, val)
		}
		series.Append(tick, t, values...)
	}
	return series, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeParticles(path string, ps []particle.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteParticlesCSV(f, ps)
}

// WriteParticlesCSV writes one row per particle with an x,y,vx,vy,r,g,b,a
// header.
func WriteParticlesCSV(out io.Writer, ps []particle.Particle) error {
	w := csv.NewWriter(out)
	if err := w.Write(particleHeader); err != nil {
		return err
	}

	row := make([]string, len(particleHeader))
	for _, p := range ps {
		for i, v := range []float32{
			p.Position.X, p.Position.Y, p.Velocity.X, p.Velocity.Y,
			p.Color.R, p.Color.G, p.Color.B, p.Color.A,
		} {
			row[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeSeries(path string, s *Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteSeriesCSV(f, s)
}

// WriteSeriesCSV writes s with a tick,time,<columns...> header.
func WriteSeriesCSV(out io.Writer, s *Series) error {
	w := csv.NewWriter(out)
	if err := w.Write(append([]string{"tick", "time"}, s.Columns...)); err != nil {
		return err
	}

	for i := range s.Times {
		row := []string{
			strconv.FormatUint(s.Ticks[i], 10),
			strconv.FormatFloat(s.Times[i], 'f', 6, 64),
		}
		for _, val := range s.Rows[i] {
			row = append(row, strconv.FormatFloat(val, 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
