package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/blobsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Vertices   int                `json:"vertices"`
	Radius     float64            `json:"radius"`
	SubSteps   int                `json:"substeps"`
	Integrator string             `json:"integrator"`
	Frames     int                `json:"frames"`
	Resets     int                `json:"resets"`
	Tuning     physics.Params     `json:"tuning"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes meta and the recorded frames under a fresh run directory and
// returns the run ID.
func (s *Store) Save(meta RunMetadata, frames []Frame) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Frames = len(frames)

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

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeFrames(w, frames); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFrames(w *csv.Writer, frames []Frame) error {
	if len(frames) == 0 {
		return nil
	}

	header := []string{"frame", "reset", "cx", "cy"}
	for i := range frames[0].Vertices {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Frame),
			strconv.FormatBool(f.Reset),
			formatFloat(f.Centroid.X),
			formatFloat(f.Centroid.Y),
		}
		for _, v := range f.Vertices {
			row = append(row, formatFloat(v.X), formatFloat(v.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns all saved runs, oldest first.
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
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for i, record := range records[1:] {
		f, err := parseFrame(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+2, err)
		}
		frames = append(frames, f)
	}

	return frames, nil
}

func parseFrame(record []string) (Frame, error) {
	var f Frame
	if len(record) < 4 || len(record)%2 != 0 {
		return f, fmt.Errorf("malformed row with %d fields", len(record))
	}

	var err error
	if f.Frame, err = strconv.Atoi(record[0]); err != nil {
		return f, err
	}
	if f.Reset, err = strconv.ParseBool(record[1]); err != nil {
		return f, err
	}

	vals := make([]float64, len(record)-2)
	for i, s := range record[2:] {
		if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
			return f, err
		}
	}

	f.Centroid = r2.Vec{X: vals[0], Y: vals[1]}
	f.Vertices = make([]r2.Vec, 0, (len(vals)-2)/2)
	for i := 2; i < len(vals); i += 2 {
		f.Vertices = append(f.Vertices, r2.Vec{X: vals[i], Y: vals[i+1]})
	}
	return f, nil
}
