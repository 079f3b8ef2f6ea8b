package main

import (
	"fmt"
	"os"

	"github.com/san-kum/chimesim/internal/config"
	"github.com/san-kum/chimesim/internal/gui"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	seed       int64
	duration   float64
	dt         float64
	impulse    float64
	withAudio  bool
	frameRate  int
	watch      bool
	channel    string
	numRuns    int
	limit      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "chimesim",
		Short:        "windchime physics demo",
		SilenceUsage: true,
		RunE:         runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "", "data directory (default from config)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.Int64Var(&seed, "seed", 0, "random seed for pushes")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the 3d window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	rootCmd.Flags().BoolVar(&withAudio, "audio", false, "play strikes")
	guiCmd.Flags().BoolVar(&withAudio, "audio", false, "play strikes")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run headless and save the recording",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the run in the terminal")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --watch")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			return tui.RunInteractive(cfg, log)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded channels",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&channel, "channel", "", "plot a single channel")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure frames per second at several frame times",
		Args:  cobra.NoArgs,
		RunE:  benchChime,
	}

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "run consecutive seeds in parallel and summarize metrics",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	addRunFlags(batchCmd)
	batchCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	batchCmd.Flags().IntVar(&limit, "parallel", 0, "concurrent runs (default NumCPU)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-8s duration=%gs impulse_every=%gs impulse_scale=%g\n",
					name, cfg.Duration, cfg.ImpulseEvery, cfg.ImpulseScale)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "config file helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the current settings to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "chimesim.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})

	rootCmd.AddCommand(guiCmd, runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd,
		exportJSONCmd, newExportSVGCmd(), newAnalyzeCmd(), benchCmd, batchCmd, newTuneCmd(), newScenarioCmd(),
		presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (default from config)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "frame time (default from config)")
	cmd.Flags().Float64Var(&impulse, "impulse-every", 0, "push the sail every n seconds")
}

// setup resolves the config (defaults, then preset, then file, then flags)
// and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(level)

	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("impulse-every") {
		cfg.ImpulseEvery = impulse
	}
	if flags.Changed("audio") {
		cfg.Audio.Enabled = withAudio
	}
	if dataDir != "" {
		cfg.Storage.Dir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	return gui.Run(cfg, log)
}
