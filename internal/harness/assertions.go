package harness

import (
	"fmt"
	"slices"
	"strings"
)

// Assertion types.
const (
	AssertQueryContains = "query_contains"
	AssertStrategy      = "strategy"
	AssertVariables     = "variables"
	AssertRecorded      = "recorded"
)

// Assertion is an additional check on a scenario outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Text is the substring expected in the query (query_contains).
	Text string `yaml:"text,omitempty"`

	// Strategy is the expected active return strategy (strategy).
	Strategy string `yaml:"strategy,omitempty"`

	// Names are the expected declared variables, in order (variables).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected number of recorded executions (recorded).
	Count int `yaml:"count,omitempty"`
}

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type    string
	Message string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: %s", e.Type, e.Message)
}

var knownStrategies = []string{"listing", "switch", "transform", "encode", "aggregate"}

func validateAssertion(i int, a *Assertion) error {
	switch a.Type {
	case AssertQueryContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", i, a.Type)
		}
	case AssertStrategy:
		if !slices.Contains(knownStrategies, a.Strategy) {
			return fmt.Errorf("assertions[%d]: unknown strategy %q", i, a.Strategy)
		}
	case AssertVariables:
	case AssertRecorded:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", i)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}

func evaluateAssertion(a Assertion, r *Result) error {
	switch a.Type {
	case AssertQueryContains:
		if !strings.Contains(r.Query, a.Text) {
			return &AssertionError{Type: a.Type, Message: fmt.Sprintf("query does not contain %q", a.Text)}
		}
	case AssertStrategy:
		if r.Strategy != a.Strategy {
			return &AssertionError{Type: a.Type, Message: fmt.Sprintf("expected %s, got %q", a.Strategy, r.Strategy)}
		}
	case AssertVariables:
		if !slices.Equal(r.Variables, a.Names) {
			return &AssertionError{Type: a.Type, Message: fmt.Sprintf("expected %v, got %v", a.Names, r.Variables)}
		}
	case AssertRecorded:
		if r.Recorded != a.Count {
			return &AssertionError{Type: a.Type, Message: fmt.Sprintf("expected %d executions, got %d", a.Count, r.Recorded)}
		}
	default:
		return &AssertionError{Type: a.Type, Message: "unknown assertion type"}
	}
	return nil
}
