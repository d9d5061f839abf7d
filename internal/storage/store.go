package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

const (
	KindRun     = "run"
	KindCompare = "compare"

	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
	resultsFile  = "results.csv"
)

var ErrNoRuns = errors.New("storage: no stored runs")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type SolverSummary struct {
	Solver         string  `json:"solver"`
	GraphSize      int     `json:"graph_size"`
	CutValue       float64 `json:"cut_value"`
	CutWeight      float64 `json:"cut_weight"`
	Assignment     string  `json:"assignment,omitempty"`
	Converged      bool    `json:"converged"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Nodes       int                `json:"nodes,omitempty"`
	Sizes       []int              `json:"sizes,omitempty"`
	Encoding    string             `json:"encoding"`
	Integrator  string             `json:"integrator,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	Solvers     []SolverSummary    `json:"solvers"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	HasTrace    bool               `json:"has_trace"`
	// Weights is the graph of a single run; with the ising encoding Biases
	// holds its bias vector.
	Weights [][]float64 `json:"weights,omitempty"`
	Biases  []float64   `json:"biases,omitempty"`
}

// Summaries turns orchestrator rows into their stored form.
func Summaries(rows []experiment.Row) []SolverSummary {
	out := make([]SolverSummary, len(rows))
	for i, r := range rows {
		out[i] = SolverSummary{
			Solver:         r.Solver,
			GraphSize:      r.GraphSize,
			CutValue:       r.CutValue,
			CutWeight:      r.CutWeight,
			ElapsedSeconds: r.ElapsedSeconds,
			Error:          r.ErrString(),
		}
		if r.Result != nil {
			out[i].Assignment = r.Result.BestAssignment.String()
			out[i].Converged = r.Result.Converged
		}
	}
	return out
}

func newRunID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString()[:8])
}

// Save writes a run directory holding metadata.json, trace.csv when trace is
// non-empty and results.csv when rows is non-empty. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta *RunMetadata, trace solver.Trace, rows []experiment.Row) (string, error) {
	if meta.Kind == "" {
		meta.Kind = KindRun
	}
	meta.ID = newRunID(meta.Kind)
	meta.Timestamp = time.Now()
	meta.HasTrace = len(trace) > 0
	if meta.Solvers == nil {
		meta.Solvers = Summaries(rows)
	}
	// JSON has no encoding for Inf or NaN; such metrics are not stored.
	for name, v := range meta.Metrics {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			delete(meta.Metrics, name)
		}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if len(trace) > 0 {
		if err := writeCSV(filepath.Join(runDir, traceFile), func(w *csv.Writer) error { return WriteTrace(w, trace) }); err != nil {
			return "", err
		}
	}
	if len(rows) > 0 {
		if err := writeCSV(filepath.Join(runDir, resultsFile), func(w *csv.Writer) error { return WriteResults(w, rows) }); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
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

func writeCSV(path string, fill func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTrace writes one row per sample: time, energy, then every unit.
func WriteTrace(w *csv.Writer, trace solver.Trace) error {
	if len(trace) == 0 {
		return nil
	}
	header := []string{"time", "energy"}
	for i := range trace[0].State {
		header = append(header, fmt.Sprintf("state_unit_%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, sm := range trace {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(sm.Time), formatFloat(sm.Energy))
		for _, v := range sm.State {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

var resultsHeader = []string{"graph_size", "solver", "cut_value", "cut_weight", "elapsed_seconds", "error"}

func WriteResults(w *csv.Writer, rows []experiment.Row) error {
	if err := w.Write(resultsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.GraphSize),
			r.Solver,
			formatFloat(r.CutValue),
			formatFloat(r.CutWeight),
			formatFloat(r.ElapsedSeconds),
			r.ErrString(),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

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

// Resolve maps an empty id to the most recent run.
func (s *Store) Resolve(runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[len(runs)-1].ID, nil
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

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadTrace(runID string) (solver.Trace, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return solver.Trace{}, nil
	}

	width := len(records[0])
	trace := make(solver.Trace, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != width {
			return nil, fmt.Errorf("%s line %d: %w", traceFile, i+1, dynamo.ErrShapeMismatch)
		}
		vals := make([]float64, width)
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", traceFile, i+1, err)
			}
			vals[j] = v
		}
		trace = append(trace, solver.Sample{Time: vals[0], Energy: vals[1], State: vals[2:]})
	}

	return trace, nil
}

// LoadResults reads results.csv back into rows. Result is never set and Err
// only carries the stored message.
func (s *Store) LoadResults(runID string) ([]experiment.Row, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, resultsFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []experiment.Row{}, nil
	}

	rows := make([]experiment.Row, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != len(resultsHeader) {
			return nil, fmt.Errorf("%s line %d: %w", resultsFile, i+1, dynamo.ErrShapeMismatch)
		}
		size, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", resultsFile, i+1, err)
		}
		var nums [3]float64
		for j := range nums {
			if nums[j], err = strconv.ParseFloat(rec[2+j], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", resultsFile, i+1, err)
			}
		}
		row := experiment.Row{
			GraphSize:      size,
			Solver:         rec[1],
			CutValue:       nums[0],
			CutWeight:      nums[1],
			ElapsedSeconds: nums[2],
		}
		if rec[5] != "" {
			row.Err = errors.New(rec[5])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ExportCSV copies the stored trace, or the results table when the run has
// no trace, to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	name := traceFile
	if _, err := os.Stat(filepath.Join(s.baseDir, runID, traceFile)); err != nil {
		name = resultsFile
	}
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
