package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewWithCore(core).Named("chime").With(String("run", "abc"))

	l.Info("strike",
		Int("tube", 3),
		Float64("speed", 1.5),
		Bool("loud", true),
		Duration("after", time.Second),
		Error(errors.New("boom")),
		Any("pos", []float64{1, 2}),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "chime" {
		t.Errorf("expected logger name chime, got %s", e.LoggerName)
	}
	ctx := e.ContextMap()
	if ctx["run"] != "abc" {
		t.Errorf("expected run=abc, got %v", ctx["run"])
	}
	if ctx["tube"] != int64(3) {
		t.Errorf("expected tube=3, got %v", ctx["tube"])
	}
	if ctx["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", ctx["error"])
	}
}

func TestNilAndNopLoggers(t *testing.T) {
	var l *Logger
	l.Info("ignored")
	l.With(String("k", "v")).Warn("ignored")
	if err := l.Sync(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	Nop().Error("ignored", Int("n", 1))
}
