package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/partsim/internal/compute"
	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/metrics"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/sim"
	"github.com/san-kum/partsim/internal/storage"
	"github.com/san-kum/partsim/internal/viz"
)

// newLogger builds a console logger at debug level and a JSON production
// logger otherwise. Output goes to stderr unless path is set.
func newLogger(level, path string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if lvl.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = lvl
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	return cfg.Build()
}

func newDriver(cfg *config.Config, logger *zap.Logger, rec sim.Recorder) (*sim.Driver, []particle.Particle, error) {
	initial, err := cfg.Initial()
	if err != nil {
		return nil, nil, err
	}

	backend, err := compute.NewBackend(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, nil, err
	}

	opts := []sim.Option{sim.WithConstants(cfg.Constants), sim.WithLogger(logger)}
	if rec != nil {
		opts = append(opts, sim.WithRecorder(rec))
	}
	d, err := sim.New(initial, backend, opts...)
	if err != nil {
		backend.Cleanup()
		return nil, nil, err
	}

	for _, m := range metrics.Default(float64(cfg.Constants.Bound)) {
		d.AddMetric(m)
	}
	return d, initial, nil
}

// serveMetrics exposes rec on addr until the returned func is called.
func serveMetrics(addr string, rec *metrics.PromRecorder, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, "")
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if ensemble > 1 {
		return runEnsemble(ctx, cfg, logger)
	}

	var rec sim.Recorder
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPromRecorder(nil)
		defer serveMetrics(cfg.MetricsAddr, prom, logger)()
		rec = prom
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	d, initial, err := newDriver(cfg, logger, rec)
	if err != nil {
		return err
	}
	defer d.Close()

	series := storage.NewSeries(metrics.SampleColumns...)
	d.AddObserver(series.SampleEvery(sampleEvery, float64(cfg.Constants.Bound)))

	logger.Info("starting run",
		zap.Int("particles", len(initial)),
		zap.String("backend", d.Backend()),
		zap.Int("ticks", cfg.Ticks()),
		zap.Float64("dt", cfg.Dt),
	)
	fmt.Printf("running %d particles on %s...\n", len(initial), d.Backend())
	start := time.Now()

	if err := sim.Run(ctx, d, sim.NewFixedClock(cfg.Dt), cfg.Ticks(), nil); err != nil {
		logger.Error("run failed", zap.Uint64("tick", d.Tick()), zap.Error(err))
		return err
	}

	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Preset:    name,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Particles: cfg.Particles,
		Ticks:     d.Tick(),
		Backend:   d.Backend(),
		Spawn:     cfg.Spawn,
		Constants: cfg.Constants,
		Metrics:   d.Metrics(),
	}
	runID, err := st.Save(meta, d.Snapshot(), series)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", d.Tick())
	fmt.Println("\nmetrics:")
	for _, k := range sortedKeys(meta.Metrics) {
		fmt.Printf("  %s: %.6f\n", k, meta.Metrics[k])
	}

	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	build := func(s int64) (*sim.Driver, error) {
		member := *cfg
		member.Seed = s
		d, _, err := newDriver(&member, logger.With(zap.Int64("seed", s)), nil)
		return d, err
	}

	fmt.Printf("running %d members of %d particles...\n", ensemble, cfg.Particles)
	start := time.Now()

	results, err := sim.NewEnsemble(build, ensemble, cfg.Seed).Run(ctx, cfg.Dt, cfg.Ticks())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))
	if len(results) == 0 {
		return nil
	}

	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tTICKS")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w)

	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d", r.Seed, r.Ticks)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.6f", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	// The terminal belongs to the viewer, so logs go to a file.
	logger, err := newLogger(cfg.LogLevel, filepath.Join(dataDir, "live.log"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rec sim.Recorder
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPromRecorder(nil)
		defer serveMetrics(cfg.MetricsAddr, prom, logger)()
		rec = prom
	}

	d, initial, err := newDriver(cfg, logger, rec)
	if err != nil {
		return err
	}
	defer d.Close()

	var clock sim.Clock = sim.NewFixedClock(cfg.Dt)
	if realtime {
		clock = sim.NewWallClock(4 * cfg.Dt)
	}

	title := name
	if title == "" {
		title = cfg.Spawn.Shape
	}
	p := tea.NewProgram(viz.NewModel(ctx, d, clock, initial, title), tea.WithAltScreen())

	if configFile != "" {
		go func() {
			err := config.Watch(ctx, configFile,
				func(c *config.Config) {
					logger.Info("config reloaded", zap.String("path", configFile))
					p.Send(viz.ConstantsMsg(c.Constants))
				},
				func(err error) {
					logger.Warn("config reload failed", zap.String("path", configFile), zap.Error(err))
				},
			)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("config watch stopped", zap.Error(err))
			}
		}()
	}

	_, err = p.Run()
	return err
}

func benchBackends(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, "")
	if err != nil {
		return err
	}
	defer logger.Sync()

	initial, err := cfg.Initial()
	if err != nil {
		return err
	}

	ctx := context.Background()
	var reference []particle.Particle

	fmt.Printf("benchmarking %d particles for %d ticks\n\n", len(initial), benchTicks)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tTOTAL\tPER TICK\tPARTICLES/S\tMATCHES SERIAL")

	for _, name := range benchOrder() {
		backend, err := compute.NewBackend(name, cfg.Workers)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\tunavailable\n", name)
			continue
		}

		d, err := sim.New(initial, backend, sim.WithConstants(cfg.Constants), sim.WithLogger(logger))
		if err != nil {
			backend.Cleanup()
			return err
		}

		start := time.Now()
		err = sim.Run(ctx, d, sim.NewFixedClock(cfg.Dt), benchTicks, nil)
		elapsed := time.Since(start)
		final := d.Snapshot()
		d.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		match := "n/a"
		if name == "serial" {
			reference = final
			match = "yes"
		} else if reference != nil {
			match = fmt.Sprintf("%t", sameParticles(reference, final))
		}

		perTick := elapsed / time.Duration(max(benchTicks, 1))
		rate := float64(len(initial)*benchTicks) / elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%v\t%v\t%.3g\t%s\n", name, elapsed.Round(time.Microsecond), perTick, rate, match)
	}

	return w.Flush()
}

// benchOrder lists the concrete backends with serial first, so its result
// can serve as the reference.
func benchOrder() []string {
	names := []string{"serial"}
	for _, name := range compute.Names() {
		if name != "auto" && name != "serial" {
			names = append(names, name)
		}
	}
	return names
}

func sameParticles(a, b []particle.Particle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
