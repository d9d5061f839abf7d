package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

type ExportResult struct {
	GraphSize      int     `json:"graph_size"`
	Solver         string  `json:"solver"`
	CutValue       float64 `json:"cut_value"`
	CutWeight      float64 `json:"cut_weight"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

type ExportData struct {
	Metadata RunMetadata    `json:"metadata"`
	Steps    int            `json:"steps"`
	Times    []float64      `json:"times,omitempty"`
	Energies []float64      `json:"energies,omitempty"`
	States   [][]float64    `json:"states,omitempty"`
	Results  []ExportResult `json:"results,omitempty"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Metadata: *meta}

	if meta.HasTrace {
		trace, err := s.LoadTrace(runID)
		if err != nil {
			return nil, err
		}
		fillTrace(data, trace)
	}

	rows, err := s.LoadResults(runID)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, r := range rows {
		data.Results = append(data.Results, ExportResult{
			GraphSize:      r.GraphSize,
			Solver:         r.Solver,
			CutValue:       r.CutValue,
			CutWeight:      r.CutWeight,
			ElapsedSeconds: r.ElapsedSeconds,
			Error:          r.ErrString(),
		})
	}
	return data, nil
}

func fillTrace(data *ExportData, trace solver.Trace) {
	data.Steps = len(trace)
	data.Times = trace.Times()
	data.Energies = trace.Energies()
	data.States = make([][]float64, len(trace))
	for i, sm := range trace {
		data.States[i] = sm.State
	}
}

func (s *Store) ExportJSON(runID string, w io.Writer) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
