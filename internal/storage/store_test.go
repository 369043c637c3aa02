package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *scenario.Result {
	return &scenario.Result{
		Name:     "hover and leave",
		Width:    40,
		Height:   30,
		Interval: 20 * time.Millisecond,
		Elapsed:  time.Second,
		IdleAt:   800 * time.Millisecond,
		Frames: []scenario.FrameStat{
			{At: 0, Program: "appear", Stats: field.Stats{Pixels: 48, Waiting: 48}},
			{At: 20 * time.Millisecond, Program: "appear", Stats: field.Stats{Pixels: 48, Waiting: 40, Growing: 8, MeanSize: 0.125}},
			{At: 800 * time.Millisecond, Program: "disappear", Stats: field.Stats{Pixels: 48, Idle: 48}},
		},
		Metrics: map[string]float64{"frames": 3, "peak_active": 48},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.DefaultConfig()
	cfg.Seed = 42

	runID, err := st.Save("background", cfg, sampleResult())
	require.NoError(t, err)
	assert.Contains(t, runID, "hover-and-leave_")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "hover and leave", meta.Scenario)
	assert.Equal(t, "background", meta.Preset)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, 40, meta.Width)
	assert.Equal(t, 800.0, meta.IdleAtMS)
	assert.Equal(t, 20.0, meta.IntervalMS)
	assert.Equal(t, cfg.Colors, meta.Config.Colors)
	assert.Equal(t, 48.0, meta.Metrics["peak_active"])

	frames, err := st.LoadFrames(runID)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, sampleResult().Frames, frames)
}

func TestStoreNeverIdle(t *testing.T) {
	st := New(t.TempDir())
	res := sampleResult()
	res.IdleAt = -1
	res.Truncated = true

	runID, err := st.Save("", config.DefaultConfig(), res)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, -1.0, meta.IdleAtMS)
	assert.True(t, meta.Truncated)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Latest()
	assert.True(t, errors.Is(err, os.ErrNotExist))

	first, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)
	second, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	latest, err := st.Latest()
	require.NoError(t, err)
	assert.Contains(t, []string{first, second}, latest)
}

func TestStoreList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, offset := range []time.Duration{time.Minute, 0, 2 * time.Minute} {
		id, err := st.Save("", config.DefaultConfig(), sampleResult())
		require.NoError(t, err)

		meta, err := st.Load(id)
		require.NoError(t, err)
		meta.Timestamp = base.Add(offset)
		require.NoError(t, writeJSON(filepath.Join(dir, id, metadataFile), meta), "run %d", i)
		ids = append(ids, id)
	}

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[2], ids[0], ids[1]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	latest, err := st.Latest()
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, st.FramesPath(runID))
}

func TestLoadFrames_Malformed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	bad := "at_ms,program,pixels,waiting,growing,shimmering,shrinking,idle,mean_size\n0,appear,x,0,0,0,0,0,0\n"
	require.NoError(t, os.WriteFile(st.FramesPath(runID), []byte(bad), 0644))

	_, err = st.LoadFrames(runID)
	assert.ErrorIs(t, err, ErrBadRecord)
}
