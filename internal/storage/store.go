package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/scenario"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var ErrBadRecord = errors.New("storage: malformed frame record")

var frameHeader = []string{
	"at_ms", "program", "pixels", "waiting", "growing", "shimmering", "shrinking", "idle", "mean_size",
}

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
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	IntervalMS float64            `json:"interval_ms"`
	ElapsedMS  float64            `json:"elapsed_ms"`
	IdleAtMS   float64            `json:"idle_at_ms"`
	Truncated  bool               `json:"truncated"`
	Config     config.Config      `json:"config"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes res under a fresh run directory and returns its ID.
func (s *Store) Save(preset string, cfg *config.Config, res *scenario.Result) (string, error) {
	name := res.Name
	if name == "" {
		name = "run"
	}
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "-")
	runID := fmt.Sprintf("%s_%d_%s", name, time.Now().Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	idle := -1.0
	if res.IdleAt >= 0 {
		idle = ms(res.IdleAt)
	}
	meta := RunMetadata{
		ID:         runID,
		Scenario:   res.Name,
		Preset:     preset,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Width:      res.Width,
		Height:     res.Height,
		IntervalMS: ms(res.Interval),
		ElapsedMS:  ms(res.Elapsed),
		IdleAtMS:   idle,
		Truncated:  res.Truncated,
		Config:     *cfg,
		Metrics:    res.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), res.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []scenario.FrameStat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, fr := range frames {
		row := []string{
			strconv.FormatFloat(ms(fr.At), 'f', 3, 64),
			fr.Program,
			strconv.Itoa(fr.Pixels),
			strconv.Itoa(fr.Waiting),
			strconv.Itoa(fr.Growing),
			strconv.Itoa(fr.Shimmering),
			strconv.Itoa(fr.Shrinking),
			strconv.Itoa(fr.Idle),
			strconv.FormatFloat(fr.MeanSize, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", os.ErrNotExist
	}
	return runs[0].ID, nil
}

func (s *Store) LoadFrames(runID string) ([]scenario.FrameStat, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(frameHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []scenario.FrameStat{}, nil
	}

	frames := make([]scenario.FrameStat, 0, len(records)-1)
	for i, rec := range records[1:] {
		fr, err := parseFrame(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadRecord, i+2, err)
		}
		frames = append(frames, fr)
	}
	return frames, nil
}

// FramesPath is the CSV backing a run.
func (s *Store) FramesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, framesFile)
}

func parseFrame(rec []string) (scenario.FrameStat, error) {
	at, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return scenario.FrameStat{}, err
	}
	ints := make([]int, 6)
	for i := range ints {
		if ints[i], err = strconv.Atoi(rec[i+2]); err != nil {
			return scenario.FrameStat{}, err
		}
	}
	mean, err := strconv.ParseFloat(rec[8], 64)
	if err != nil {
		return scenario.FrameStat{}, err
	}

	return scenario.FrameStat{
		At:      time.Duration(at * float64(time.Millisecond)),
		Program: rec[1],
		Stats: field.Stats{
			Pixels:     ints[0],
			Waiting:    ints[1],
			Growing:    ints[2],
			Shimmering: ints[3],
			Shrinking:  ints[4],
			Idle:       ints[5],
			MeanSize:   mean,
		},
	}, nil
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
