package main

import (
	"fmt"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chimesim/internal/analysis"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
	"github.com/spf13/cobra"
)

var (
	spectrumChannel string
	phaseX, phaseY  string
	crossName       string
	poincareX       string
	poincareY       string
	bifChannel      string
	threshold       float64
	perturbation    float64
	steps           int
	transient       float64
)

func newAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "analyze recorded runs or sweep the chime",
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "power spectrum of a channel",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeSpectrum,
	}
	spectrumCmd.Flags().StringVar(&spectrumChannel, "channel", "sail_x", "channel to analyze")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one channel against another",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzePhase,
	}
	phaseCmd.Flags().StringVar(&phaseX, "x", "sail_x", "channel for the x axis")
	phaseCmd.Flags().StringVar(&phaseY, "y", "sail_z", "channel for the y axis")

	poincareCmd := &cobra.Command{
		Use:   "poincare [run_id]",
		Short: "poincare section where a channel rises through a threshold",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzePoincare,
	}
	poincareCmd.Flags().StringVar(&crossName, "cross", "sail_x", "crossing channel")
	poincareCmd.Flags().Float64Var(&threshold, "threshold", 0, "crossing value")
	poincareCmd.Flags().StringVar(&poincareX, "x", "sail_z", "channel for the x axis")
	poincareCmd.Flags().StringVar(&poincareY, "y", "clapper_offset", "channel for the y axis")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest lyapunov exponent after one push",
		Args:  cobra.NoArgs,
		RunE:  analyzeLyapunov,
	}
	addRunFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-6, "initial sail velocity offset")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [param] [min] [max]",
		Short: "sweep a chime parameter",
		Args:  cobra.ExactArgs(3),
		RunE:  analyzeBifurcation,
	}
	addRunFlags(bifurcationCmd)
	bifurcationCmd.Flags().StringVar(&bifChannel, "channel", "tube_swing", "channel to sample")
	bifurcationCmd.Flags().IntVar(&steps, "steps", 20, "parameter steps")
	bifurcationCmd.Flags().Float64Var(&transient, "transient", 2, "seconds to discard")

	analyzeCmd.AddCommand(spectrumCmd, phaseCmd, poincareCmd, lyapunovCmd, bifurcationCmd)
	return analyzeCmd
}

func loadResult(cmd *cobra.Command, runID string) (*sim.Result, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	r := &sim.Result{Channels: meta.Channels, Times: times, States: make([]sim.State, len(states))}
	for i, s := range states {
		r.States[i] = s
	}
	return r, nil
}

func analyzeSpectrum(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	data, _, err := st.Channel(runID, spectrumChannel)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("channel: %s\n\n", spectrumChannel)

	freqs, power := analysis.PowerSpectrum(data, meta.Dt)
	// the upper bins are mostly noise at the frame rate
	plotData := power[:max(len(power)/4, 2)]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s), 0-%.1f hz", spectrumChannel, freqs[len(plotData)-1])),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func analyzePhase(cmd *cobra.Command, args []string) error {
	r, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}
	portrait, err := analysis.GeneratePhasePortrait(r, phaseX, phaseY)
	if err != nil {
		return err
	}
	fmt.Printf("%s vs %s (%d points)\n\n", phaseY, phaseX, len(portrait.Points))
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 80, 30))
	return nil
}

func analyzePoincare(cmd *cobra.Command, args []string) error {
	r, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}
	section, err := analysis.GeneratePoincareSection(r, crossName, threshold, poincareX, poincareY)
	if err != nil {
		return err
	}
	fmt.Printf("poincare section at %s = %g (%d crossings)\n\n", crossName, threshold, len(section.Points))
	fmt.Println(analysis.PoincareSectionToASCII(section, 80, 30))
	return nil
}

func analyzeLyapunov(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	opts := chime.OptionsFromConfig(cfg)
	opts.Logger = log

	lambda, err := analysis.LyapunovExponent(opts, cfg.Seed, cfg.Dt, cfg.Duration, perturbation)
	if err != nil {
		return err
	}
	fmt.Printf("lyapunov exponent: %.4f 1/s\n", lambda)
	if lambda > 0 {
		fmt.Println("nearby pushes diverge: chaotic")
	} else {
		fmt.Println("nearby pushes stay together")
	}
	return nil
}

func analyzeBifurcation(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	param := args[0]
	if _, ok := analysis.Params[param]; !ok {
		return fmt.Errorf("unknown parameter %q (available: %v)", param, analysis.ParamNames())
	}
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("max: %w", err)
	}

	opts := chime.OptionsFromConfig(cfg)
	opts.Logger = log
	rc := sim.ConfigFrom(cfg)
	if rc.ImpulseEvery == 0 {
		rc.ImpulseEvery = 1
	}

	data, err := analysis.BifurcationDiagram(cmd.Context(), opts, param, lo, hi, steps, bifChannel, rc, transient)
	if err != nil {
		return err
	}
	fmt.Printf("%s over %s in [%g, %g]\n\n", bifChannel, param, lo, hi)
	fmt.Println(analysis.BifurcationToASCII(data, 80, 30))
	return nil
}
