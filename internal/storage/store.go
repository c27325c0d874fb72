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

	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/flutter"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	curvesFile   = "curves.csv"
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
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Backend    string         `json:"backend"`
	Boundary   string         `json:"boundary"`
	Mach       float64        `json:"mach"`
	Altitude   float64        `json:"altitude"`
	Status     flutter.Status `json:"status"`
	Velocity   float64        `json:"velocity,omitempty"`
	Frequency  float64        `json:"frequency,omitempty"`
	Mode       int            `json:"mode"`
	BelowRange bool           `json:"below_range,omitempty"`
	Points     int            `json:"points"`
	Failed     int            `json:"failed"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// Run is a stored analysis read back from disk.
type Run struct {
	Meta   RunMetadata
	Config *config.Config
	Result *flutter.Result
}

// Save writes metadata.json, config.yaml and curves.csv into a new run
// directory and returns its ID.
func (s *Store) Save(cfg *config.Config, res *flutter.Result, warnings []string) (string, error) {
	name := cfg.Name
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", strings.ReplaceAll(name, "/", "-"), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Backend:    res.Backend,
		Boundary:   cfg.Boundary.String(),
		Mach:       cfg.Flow.Mach,
		Altitude:   cfg.Flow.Altitude,
		Status:     res.Status,
		Velocity:   res.Velocity,
		Frequency:  res.Frequency,
		Mode:       res.Mode,
		BelowRange: res.BelowRange,
		Points:     len(res.Points),
		Failed:     len(res.Errors()),
		Warnings:   warnings,
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

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeCurves(filepath.Join(runDir, curvesFile), res); err != nil {
		return "", err
	}
	return runID, nil
}

// writeCurves stores one row per sample: velocity, dynamic pressure, then
// frequency, damping and convergence per mode, then the sample error.
func writeCurves(path string, res *flutter.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"velocity", "q"}
	for m := 0; m < res.Modes(); m++ {
		header = append(header, fmt.Sprintf("f%d", m+1), fmt.Sprintf("g%d", m+1), fmt.Sprintf("ok%d", m+1))
	}
	header = append(header, "error")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range res.Points {
		row := []string{formatFloat(p.Velocity), formatFloat(p.DynamicPressure)}
		for m := 0; m < res.Modes(); m++ {
			var r flutter.Root
			if m < len(p.Roots) {
				r = p.Roots[m]
			}
			row = append(row, formatFloat(r.Frequency), formatFloat(r.Damping), strconv.FormatBool(r.Converged))
		}
		msg := ""
		if p.Err != nil {
			msg = p.Err.Error()
		}
		row = append(row, msg)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
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
		meta, err := s.loadMeta(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) loadMeta(runID string) (*RunMetadata, error) {
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

func (s *Store) Load(runID string) (*Run, error) {
	meta, err := s.loadMeta(runID)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(s.baseDir, runID, configFile))
	if err != nil {
		return nil, err
	}
	points, err := readCurves(filepath.Join(s.baseDir, runID, curvesFile))
	if err != nil {
		return nil, err
	}

	res := &flutter.Result{
		Status:     meta.Status,
		Velocity:   meta.Velocity,
		Frequency:  meta.Frequency,
		Mode:       meta.Mode,
		BelowRange: meta.BelowRange,
		Backend:    meta.Backend,
		Flow:       cfg.Flow,
		Points:     points,
	}
	return &Run{Meta: *meta, Config: cfg, Result: res}, nil
}

func readCurves(path string) ([]flutter.Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []flutter.Point{}, nil
	}
	modes := (len(records[0]) - 3) / 3

	points := make([]flutter.Point, 0, len(records)-1)
	for i, record := range records[1:] {
		var perr error
		parse := func(col int) float64 {
			v, err := strconv.ParseFloat(record[col], 64)
			if err != nil && perr == nil {
				perr = fmt.Errorf("%s line %d: %w", curvesFile, i+2, err)
			}
			return v
		}

		p := flutter.Point{Velocity: parse(0), DynamicPressure: parse(1), Roots: make([]flutter.Root, modes)}
		for m := 0; m < modes; m++ {
			col := 2 + 3*m
			p.Roots[m] = flutter.Root{
				Frequency: parse(col),
				Damping:   parse(col + 1),
				Converged: record[col+2] == "true",
			}
		}
		if perr != nil {
			return nil, perr
		}
		if msg := record[len(record)-1]; msg != "" {
			p.Err = errors.New(msg)
		}
		points = append(points, p)
	}
	return points, nil
}
