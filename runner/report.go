package runner

import (
	"io"

	"gopkg.in/yaml.v3"

	"hmmkit/core/hmm"
)

type Report struct {
	Session       string      `yaml:"session"`
	Method        string      `yaml:"method,omitempty"`
	States        int         `yaml:"states"`
	Length        int         `yaml:"length"`
	Iterations    int         `yaml:"iterations,omitempty"`
	Converged     bool        `yaml:"converged,omitempty"`
	Warning       string      `yaml:"warning,omitempty"`
	Elapsed       string      `yaml:"elapsed,omitempty"`
	AvgIteration  string      `yaml:"avg_iteration,omitempty"`
	LogLikelihood float64     `yaml:"log_likelihood"`
	Permutation   []int       `yaml:"permutation,omitempty,flow"`
	Transition    [][]float64 `yaml:"transition,flow"`
	Emission      [][]float64 `yaml:"emission,flow"`
	Prior         []float64   `yaml:"prior,flow"`
	Path          string      `yaml:"path"`
	SymbolCounts  []int       `yaml:"symbol_counts,flow"`
}

func newReport(s *hmm.Session) *Report {
	return &Report{
		Session:      s.ID(),
		States:       s.States(),
		Length:       s.Len(),
		SymbolCounts: s.Observations().Counts(s.Params().Symbols()),
	}
}

type SimulateReport struct {
	Seed         uint64 `yaml:"seed"`
	Length       int    `yaml:"length"`
	States       string `yaml:"states"`
	Observations string `yaml:"observations"`
	SymbolCounts []int  `yaml:"symbol_counts,flow"`
}

// WriteYAML encodes v as a YAML document.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
