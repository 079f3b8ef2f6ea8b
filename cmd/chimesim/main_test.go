package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestParseGrid(t *testing.T) {
	tests := []struct {
		def     string
		name    string
		n       int
		wantErr bool
	}{
		{"tube_mass=2:6:5", "tube_mass", 5, false},
		{"clapper_mass=5:5:1", "clapper_mass", 1, false},
		{"tube_mass", "", 0, true},
		{"tube_mass=1:2", "", 0, true},
		{"tube_mass=a:2:3", "", 0, true},
		{"tube_mass=1:2:0", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			name, values, err := parseGrid(tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if name != tt.name || len(values) != tt.n {
				t.Errorf("expected %s with %d values, got %s with %d", tt.name, tt.n, name, len(values))
			}
		})
	}
}

func TestSetupAppliesFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 0, "")
	if err := cmd.ParseFlags([]string{"--time", "3", "--seed", "9", "--impulse-every", "0.5"}); err != nil {
		t.Fatal(err)
	}
	preset = "heavy"
	defer func() { preset = "" }()

	cfg, _, err := setup(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Duration != 3 || cfg.Seed != 9 || cfg.ImpulseEvery != 0.5 {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Scene.TubeMass != 6 {
		t.Errorf("expected heavy preset tube mass 6, got %g", cfg.Scene.TubeMass)
	}
}

func TestSetupRejectsUnknownPreset(t *testing.T) {
	preset = "hurricane"
	defer func() { preset = "" }()
	if _, _, err := setup(&cobra.Command{Use: "test"}); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}
