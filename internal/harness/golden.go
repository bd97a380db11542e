package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/datacube/internal/ir"
)

// Snapshot captures the observable outcome of a scenario.
// Fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Query        string
	ErrorCode    string
	Values       []float64
	Data         []byte
	Recorded     int
	Executed     bool
}

// NewSnapshot builds a snapshot from a scenario result.
func NewSnapshot(name string, executed bool, r *Result) Snapshot {
	return Snapshot{
		ScenarioName: name,
		Trace:        r.Trace,
		Query:        r.Query,
		ErrorCode:    r.ErrorCode,
		Values:       r.Values,
		Data:         r.Data,
		Recorded:     r.Recorded,
		Executed:     executed,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON.
// Values are written as their shortest decimal text since canonical JSON
// forbids floats.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		m := map[string]any{"op": event.Op}
		if event.Error != "" {
			m["error"] = event.Error
		}
		steps[i] = m
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"steps":         steps,
	}
	if s.Query != "" {
		result["query"] = s.Query
	}
	if s.ErrorCode != "" {
		result["error"] = s.ErrorCode
	}
	if s.Values != nil {
		values := make([]string, len(s.Values))
		for i, v := range s.Values {
			values[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		result["values"] = values
	}
	if s.Data != nil {
		result["bytes"] = len(s.Data)
	}
	if s.Executed {
		result["recorded"] = s.Recorded
	}
	return result
}

// MarshalCanonical returns the canonical JSON form of the snapshot.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, NewSnapshot(scenario.Name, scenario.Execute, result)); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a snapshot against a golden file without re-running.
func AssertGolden(t *testing.T, name string, snapshot Snapshot) error {
	t.Helper()

	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
