package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Channels: []string{"sail_x", "strikes"},
		States: []sim.State{
			{0.0, 0.0},
			{0.25, 1.0},
		},
		Times:    []float64{0.0, 0.016667},
		Metrics:  map[string]float64{"strikes": 1},
		Strikes:  []chime.Strike{{Tube: 2, Speed: 0.5}},
		Frames:   1,
		Impulses: 1,
	}
}

func testConfig() sim.Config {
	return sim.Config{Dt: 1.0 / 60.0, Duration: 1.0 / 60.0, Seed: 42, ImpulseEvery: 2}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	return st
}

func TestStoreSaveLoad(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save("calm", testConfig(), testResult())
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "calm", meta.Name)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, 1, meta.Strikes)
	assert.Equal(t, []string{"sail_x", "strikes"}, meta.Channels)
	assert.InDelta(t, 1.0, meta.Metrics["strikes"], 1e-12)
	assert.NotEmpty(t, meta.Digest)

	states, times, err := st.LoadStates(runID)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Len(t, times, 2)
	assert.InDelta(t, 0.25, states[1][0], 1e-9)
	assert.InDelta(t, 0.016667, times[1], 1e-9)
}

func TestStoreList(t *testing.T) {
	st := newStore(t)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save("a", testConfig(), testResult())
	require.NoError(t, err)
	second, err := st.Save("b", testConfig(), testResult())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	st := newStore(t)
	runID, err := st.Save("calm", testConfig(), testResult())
	require.NoError(t, err)

	runDir := filepath.Join(st.Dir(), runID)
	assert.FileExists(t, filepath.Join(runDir, "metadata.json"))
	assert.FileExists(t, filepath.Join(runDir, "states.csv"))

	data, err := os.ReadFile(filepath.Join(runDir, "states.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,sail_x,strikes\n"))
}

func TestStoreDetectsTampering(t *testing.T) {
	st := newStore(t)
	runID, err := st.Save("calm", testConfig(), testResult())
	require.NoError(t, err)

	path := st.StatesPath(runID)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.Replace(data, []byte("0.250000"), []byte("0.750000"), 1)
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, _, err = st.LoadStates(runID)
	assert.ErrorIs(t, err, ErrDigestMismatch)
	assert.Contains(t, err.Error(), runID)
}

func TestStoreNotFound(t *testing.T) {
	st := newStore(t)
	_, err := st.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreChannel(t *testing.T) {
	st := newStore(t)
	runID, err := st.Save("calm", testConfig(), testResult())
	require.NoError(t, err)

	vals, times, err := st.Channel(runID, "strikes")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, vals)
	assert.Len(t, times, 2)

	_, _, err = st.Channel(runID, "bogus")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	st := newStore(t)
	runID, err := st.Save("calm", testConfig(), testResult())
	require.NoError(t, err)

	data, err := st.Export(runID)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Steps)

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, data))
	var decoded ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, runID, decoded.ID)
	assert.Equal(t, data.States, decoded.States)

	buf.Reset()
	require.NoError(t, st.ExportCSV(&buf, runID))
	assert.Contains(t, buf.String(), "time,sail_x,strikes")
}
