package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/moolen/pagecheck/internal/scenario"
)

type jsonReport struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  float64          `json:"duration_seconds"`
	Driver    string           `json:"driver"`
	BaseURL   string           `json:"base_url"`
	Summary   scenario.Summary `json:"summary"`
	Results   []jsonResult     `json:"results"`
}

type jsonResult struct {
	Suite    []string     `json:"suite"`
	Name     string       `json:"name"`
	Status   string       `json:"status"`
	Duration float64      `json:"duration_seconds"`
	Error    string       `json:"error,omitempty"`
	Failed   *jsonFailure `json:"failed_step,omitempty"`
	Artifact string       `json:"artifact,omitempty"`
}

type jsonFailure struct {
	Index int    `json:"index"`
	Step  string `json:"step"`
}

type jsonReporter struct{}

func (jsonReporter) Write(w io.Writer, r *scenario.Report) error {
	out := jsonReport{
		RunID:     r.RunID,
		StartedAt: r.StartedAt.UTC(),
		Duration:  r.Duration.Seconds(),
		Driver:    r.Driver,
		BaseURL:   r.BaseURL,
		Summary:   r.Summary(),
		Results:   make([]jsonResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		jr := jsonResult{
			Suite:    res.Case.Suite,
			Name:     res.Case.Name,
			Status:   string(res.Status),
			Duration: res.Duration.Seconds(),
			Artifact: res.Artifact,
		}
		if f, ok := describe(res); ok {
			jr.Error = f.Message
			if f.Step != "" {
				jr.Failed = &jsonFailure{Index: f.Index, Step: f.Step}
			}
		}
		out.Results = append(out.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
