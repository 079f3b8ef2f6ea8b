package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/san-kum/chimesim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var (
	ErrNotFound       = errors.New("storage: run not found")
	ErrDigestMismatch = errors.New("storage: states digest mismatch")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	ImpulseEvery float64            `json:"impulse_every"`
	Frames       int                `json:"frames"`
	Impulses     int                `json:"impulses"`
	Strikes      int                `json:"strikes"`
	Channels     []string           `json:"channels"`
	Metrics      map[string]float64 `json:"metrics"`
	Digest       string             `json:"digest"`
}

// Save writes a run under a fresh id and returns the id. The states file
// digest is stored in the metadata and checked by LoadStates.
func (s *Store) Save(name string, cfg sim.Config, result *sim.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := writeStates(&buf, result); err != nil {
		return "", fmt.Errorf("run %s: %w", runID, err)
	}
	if err := os.WriteFile(filepath.Join(runDir, statesFile), buf.Bytes(), 0644); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Name:         name,
		Timestamp:    time.Now(),
		Seed:         cfg.Seed,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		ImpulseEvery: cfg.ImpulseEvery,
		Frames:       result.Frames,
		Impulses:     result.Impulses,
		Strikes:      len(result.Strikes),
		Channels:     result.Channels,
		Metrics:      result.Metrics,
		Digest:       digest(buf.Bytes()),
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return runID, nil
}

func writeStates(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, result.Channels...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func digest(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads the recorded samples of a run after checking the file
// against the digest in its metadata.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if meta.Digest != "" && digest(data) != meta.Digest {
		return nil, nil, fmt.Errorf("run %s: %w", runID, ErrDigestMismatch)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}

// Channel returns one recorded channel of a run by name.
func (s *Store) Channel(runID, name string) ([]float64, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	idx := -1
	for i, c := range meta.Channels {
		if c == name {
			idx = i
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("run %s: unknown channel %q", runID, name)
	}

	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	out := make([]float64, len(states))
	for i, st := range states {
		if idx < len(st) {
			out[i] = st[idx]
		}
	}
	return out, times, nil
}

// StatesPath is the on-disk states file of a run.
func (s *Store) StatesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, statesFile)
}
