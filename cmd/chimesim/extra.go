package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/chimesim/internal/analysis"
	"github.com/san-kum/chimesim/internal/automation"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/export"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/metrics"
	"github.com/san-kum/chimesim/internal/optim"
	"github.com/san-kum/chimesim/internal/sim"
	"github.com/san-kum/chimesim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	outFile    string
	svgChannel string
	svgAgainst string
	metric     string
	maximize   bool
	grid       []string
)

func newExportSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a channel, or two channels against each other, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	cmd.Flags().StringVar(&svgChannel, "channel", "sail_x", "channel over time")
	cmd.Flags().StringVar(&svgAgainst, "against", "", "plot --channel (x) against this channel (y)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportSVG(cmd *cobra.Command, args []string) error {
	r, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}

	var pts []export.Point
	caption := svgChannel
	if svgAgainst != "" {
		portrait, err := analysis.GeneratePhasePortrait(r, svgChannel, svgAgainst)
		if err != nil {
			return err
		}
		pts = export.Portrait(portrait)
		caption = fmt.Sprintf("%s vs %s", svgAgainst, svgChannel)
	} else {
		values, ok := r.Channel(svgChannel)
		if !ok {
			return fmt.Errorf("run %s: unknown channel %q", args[0], svgChannel)
		}
		pts = export.Series(r.Times, values)
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.PathToSVG(out, pts, 800, 400, "#c02828", caption)
}

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tune",
		Short:   "grid search chime parameters for the best metric",
		Example: "  chimesim tune --grid tube_mass=2:6:5 --grid clapper_mass=5:20:4 --metric strikes --max",
		Args:    cobra.NoArgs,
		RunE:    runTune,
	}
	addRunFlags(cmd)
	cmd.Flags().StringArrayVar(&grid, "grid", nil, "param=min:max:steps (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "strikes", "metric to optimize")
	cmd.Flags().BoolVar(&maximize, "max", false, "maximize instead of minimize")
	return cmd
}

// parseGrid reads "name=min:max:steps".
func parseGrid(def string) (string, []float64, error) {
	name, rng, ok := strings.Cut(def, "=")
	parts := strings.Split(rng, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: want name=min:max:steps", def)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", def, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", def, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %q: bad step count", def)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("no --grid given")
	}

	var names []string
	var ranges [][]float64
	for _, def := range grid {
		name, values, err := parseGrid(def)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g := optim.NewGridSearch(names, ranges)
	if maximize {
		g.Maximize()
	}
	opts := chime.OptionsFromConfig(cfg)
	rc := sim.ConfigFrom(cfg)
	if rc.ImpulseEvery == 0 {
		rc.ImpulseEvery = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("searching %d points...\n", g.Size())
	best, val, err := g.Search(ctx, optim.ChimeRunner(opts, rc, metrics.Default), metric)
	if err != nil {
		return err
	}
	log.Debug("tune done", logging.Any("best", best))

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("\nbest %s: %.6f\n", metric, val)
	for _, k := range keys {
		fmt.Printf("  %s = %g\n", k, best[k])
	}
	return nil
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of headless runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			st := storage.New(cfg.Storage.Dir)
			if err := st.Init(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			fmt.Printf("scenario %s: %s\n\n", sc.Name, sc.Description)
			results, err := automation.RunScenario(ctx, sc, cfg, st, log)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tRUN ID\tFRAMES\tPUSHES\tSTRIKES")
			for _, r := range results {
				id := r.RunID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", r.Step, id, r.Result.Frames, r.Result.Impulses, len(r.Result.Strikes))
			}
			return w.Flush()
		},
	}
}
