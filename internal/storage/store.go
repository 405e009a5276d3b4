package storage

import (
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

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	metadataFile     = "metadata.json"
	trajectoriesFile = "trajectories.csv"
	energyFile       = "energy.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string               `json:"id"`
	Preset      string               `json:"preset"`
	Timestamp   time.Time            `json:"timestamp"`
	Frames      int                  `json:"frames"`
	Steps       int                  `json:"steps"`
	SampleEvery int                  `json:"sample_every"`
	Engine      string               `json:"engine"`
	Width       float64              `json:"width"`
	Height      float64              `json:"height"`
	Gravity     config.GravityConfig `json:"gravity"`
	Params      map[string]float64   `json:"params"`
	Metrics     map[string]float64   `json:"metrics"`
}

func (s *Store) newRunDir(preset string) (string, string, error) {
	if preset == "" {
		preset = "custom"
	}
	base := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, runDir, err := s.newRunDir(result.Preset)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Preset:      result.Preset,
		Timestamp:   time.Now(),
		Frames:      result.Frames,
		Steps:       result.Steps,
		SampleEvery: cfg.Run.SampleEvery,
		Engine:      cfg.Engine.Kind,
		Width:       cfg.Scene.Width,
		Height:      cfg.Scene.Height,
		Gravity:     cfg.Gravity,
		Params:      cfg.Params(),
		Metrics:     result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(result.Points)+1)
	rows = append(rows, []string{"frame", "body", "x", "y"})
	for _, p := range result.Points {
		rows = append(rows, []string{
			strconv.Itoa(p.Frame),
			p.Body,
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
		})
	}
	if err := writeCSV(filepath.Join(runDir, trajectoriesFile), rows); err != nil {
		return "", err
	}

	rows = make([][]string, 0, len(result.Energy)+1)
	rows = append(rows, []string{"frame", "kinetic_energy"})
	for i, e := range result.Energy {
		rows = append(rows, []string{strconv.Itoa(i), strconv.FormatFloat(e, 'g', -1, 64)})
	}
	if err := writeCSV(filepath.Join(runDir, energyFile), rows); err != nil {
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

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadTrajectories reads back sampled positions. Malformed rows are
// skipped.
func (s *Store) LoadTrajectories(runID string) ([]sim.Point, error) {
	records, err := s.readCSV(runID, trajectoriesFile)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Point{}, nil
	}

	points := make([]sim.Point, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		x, errX := strconv.ParseFloat(record[2], 64)
		y, errY := strconv.ParseFloat(record[3], 64)
		if errX != nil || errY != nil {
			continue
		}
		points = append(points, sim.Point{Frame: frame, Body: record[1], X: x, Y: y})
	}
	return points, nil
}

func (s *Store) LoadEnergy(runID string) ([]float64, error) {
	records, err := s.readCSV(runID, energyFile)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	energy := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		energy = append(energy, e)
	}
	return energy, nil
}

// LoadResult reassembles a stored run.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	points, err := s.LoadTrajectories(runID)
	if err != nil {
		return nil, nil, err
	}
	energy, err := s.LoadEnergy(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{
		Preset:  meta.Preset,
		Frames:  meta.Frames,
		Steps:   meta.Steps,
		Points:  points,
		Energy:  energy,
		Metrics: meta.Metrics,
	}, nil
}

type ExportData struct {
	ID      string               `json:"id,omitempty"`
	Preset  string               `json:"preset"`
	Frames  int                  `json:"frames"`
	Steps   int                  `json:"steps"`
	Gravity config.GravityConfig `json:"gravity"`
	Bodies  map[string][]XY      `json:"bodies"`
	Energy  []float64            `json:"energy"`
	Metrics map[string]float64   `json:"metrics"`
}

type XY struct {
	Frame int     `json:"frame"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func NewExportData(meta *RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		ID:      meta.ID,
		Preset:  meta.Preset,
		Frames:  result.Frames,
		Steps:   result.Steps,
		Gravity: meta.Gravity,
		Bodies:  make(map[string][]XY),
		Energy:  result.Energy,
		Metrics: result.Metrics,
	}
	for _, p := range result.Points {
		data.Bodies[p.Body] = append(data.Bodies[p.Body], XY{Frame: p.Frame, X: p.X, Y: p.Y})
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, data)
}
