package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/export"
	"github.com/san-kum/partsim/internal/storage"
	"github.com/san-kum/partsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tPARTICLES\tTICKS\tDT\tBACKEND")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Ticks,
			run.Dt,
			run.Backend,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d  ticks: %d  backend: %s\n\n", meta.Particles, meta.Ticks, meta.Backend)

	series, err := st.LoadSeries(runID)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Println("no series recorded")
	case err != nil:
		return err
	default:
		data := series.Column(metricName)
		if data == nil {
			return fmt.Errorf("unknown metric: %s (available: %v)", metricName, series.Columns)
		}
		if len(data) > 1 {
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(metricName),
			))
			fmt.Println()
		}
	}

	ps, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}

	canvas := viz.NewCanvas(60, 24)
	canvas.Frame()
	for _, p := range ps {
		canvas.Plot(p.Position.X, p.Position.Y, meta.Constants.Bound)
	}
	fmt.Print(canvas.String())
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if exportParticles {
		ps, err := st.LoadParticles(args[0])
		if err != nil {
			return err
		}
		return storage.WriteParticlesCSV(os.Stdout, ps)
	}

	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.WriteSeriesCSV(os.Stdout, series)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(args[0])
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, series)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	ps, err := st.LoadParticles(args[0])
	if err != nil {
		return err
	}
	return export.ParticlesToSVG(os.Stdout, ps, meta.Constants.Bound, svgSize)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tSHAPE\tGRAVITY\tDAMPING")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%g\t%g\n", name, p.Particles, p.Spawn.Shape, p.Constants.Gravity, p.Constants.Damping)
	}
	return w.Flush()
}
