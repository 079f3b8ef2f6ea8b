package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Seed     int64              `json:"seed"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Channels []string           `json:"channels"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

// Export gathers a stored run into one document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		ID:       meta.ID,
		Name:     meta.Name,
		Seed:     meta.Seed,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    len(times),
		Channels: meta.Channels,
		Times:    times,
		States:   states,
		Metrics:  meta.Metrics,
	}, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies a run's verified states file to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	if _, _, err := s.LoadStates(runID); err != nil {
		return err
	}
	f, err := os.Open(s.StatesPath(runID))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
