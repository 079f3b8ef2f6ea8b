package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/config"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/metrics"
	"github.com/san-kum/chimesim/internal/sim"
	"github.com/san-kum/chimesim/internal/storage"
	"github.com/san-kum/chimesim/internal/tui"
	"github.com/spf13/cobra"
)

// plotChannels are drawn by plot when no channel is named.
var plotChannels = []string{"sail_x", "sail_z", "tube_swing", "kinetic_energy"}

func newSimulator(cfg *config.Config, log *logging.Logger) *sim.Simulator {
	opts := chime.OptionsFromConfig(cfg)
	opts.Logger = log
	return sim.New(opts, log)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	name := "windchime"
	if len(args) > 0 {
		name = args[0]
	} else if preset != "" {
		name = preset
	}

	st := storage.New(cfg.Storage.Dir)
	if err := st.Init(); err != nil {
		return err
	}

	s := newSimulator(cfg, log)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	if watch {
		live := tui.NewLiveRenderer(os.Stdout, frameRate)
		live.Start()
		defer live.Stop()
		s.AddObserver(live)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !watch {
		fmt.Printf("running %s for %gs...\n", name, cfg.Duration)
	}
	start := time.Now()
	result, err := s.Run(ctx, sim.ConfigFrom(cfg))
	var stepErr *sim.StepError
	switch {
	case errors.As(err, &stepErr) && result != nil:
		log.Warn("run stopped early", logging.Error(err))
	case errors.Is(err, context.Canceled) && result != nil:
		log.Warn("run interrupted", logging.Int("frames", result.Frames))
	case err != nil:
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, sim.ConfigFrom(cfg), result)
	if err != nil {
		return err
	}
	log.Info("run saved", logging.String("id", runID), logging.String("dir", st.Dir()))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d  pushes: %d  strikes: %d\n", result.Frames, result.Impulses, len(result.Strikes))
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, _, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.Storage.Dir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tSEED\tSTRIKES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Seed,
			run.Strikes,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	names := plotChannels
	if channel != "" {
		names = []string{channel}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("frames: %d\n\n", meta.Frames)

	for _, name := range names {
		data, _, err := st.Channel(runID, name)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("no data to plot")
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	return st.ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, data)
}

func benchChime(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	log.SetLevel(logging.LevelWarn)

	durations := []float64{1.0, 5.0}
	dts := []float64{1.0 / 120, 1.0 / 60, 1.0 / 30}

	fmt.Println("benchmarking windchime")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tFRAMES\tTIME\tFRAMES/SEC\tSIM/REAL")

	s := newSimulator(cfg, log)
	for _, dur := range durations {
		for _, frame := range dts {
			rc := sim.Config{Dt: frame, Duration: dur, Seed: cfg.Seed, ImpulseEvery: 0.5}

			start := time.Now()
			result, err := s.Run(cmd.Context(), rc)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\t%.1fx\n",
				dur, frame, result.Frames, elapsed.Round(time.Millisecond),
				float64(result.Frames)/elapsed.Seconds(), dur/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ens := sim.NewEnsemble(newSimulator(cfg, log), numRuns, cfg.Seed).WithMetrics(metrics.Default)
	ens.SetLimit(limit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := ens.Run(ctx, sim.ConfigFrom(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("%d runs in %v\n\n", len(results), time.Since(start).Round(time.Millisecond))

	var names []string
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)

	sums := make([]float64, len(names))
	sqs := make([]float64, len(names))
	for i, r := range results {
		fmt.Fprintf(w, "%d", cfg.Seed+int64(i))
		for j, name := range names {
			v := r.Metrics[name]
			sums[j] += v
			sqs[j] += v * v
			fmt.Fprintf(w, "\t%.4f", v)
		}
		fmt.Fprintln(w)
	}

	n := float64(len(results))
	fmt.Fprint(w, "mean")
	for j := range names {
		fmt.Fprintf(w, "\t%.4f", sums[j]/n)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, "std")
	for j := range names {
		mean := sums[j] / n
		fmt.Fprintf(w, "\t%.4f", math.Sqrt(math.Max(sqs[j]/n-mean*mean, 0)))
	}
	fmt.Fprintln(w)
	return w.Flush()
}
