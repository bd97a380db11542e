package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/querywcps"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Plan is an optional CUE plan file applied before the steps.
	// Relative paths are resolved against the scenario file.
	Plan string `yaml:"plan,omitempty"`

	// PlanName selects a plan from Plan when it declares several.
	PlanName string `yaml:"plan_name,omitempty"`

	// Steps are builder calls, applied in order. The run stops at the
	// first failing step.
	Steps []Step `yaml:"steps"`

	// Execute sends the query after the steps.
	Execute bool `yaml:"execute,omitempty"`

	// Response is the canned server answer used by Execute.
	Response *Response `yaml:"response,omitempty"`

	// Expect specifies the expected outcome.
	Expect Expect `yaml:"expect"`

	// Assertions are additional checks on the outcome.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one builder call. Exactly one field must be set.
type Step struct {
	Declare   *DeclareStep   `yaml:"declare,omitempty"`
	Subset    *SubsetStep    `yaml:"subset,omitempty"`
	Where     string         `yaml:"where,omitempty"`
	Aggregate *AggregateStep `yaml:"aggregate,omitempty"`
	Transform string         `yaml:"transform,omitempty"`
	Encode    string         `yaml:"encode,omitempty"`
	Switch    *SwitchStep    `yaml:"switch,omitempty"`
	Format    string         `yaml:"format,omitempty"`
	Reset     bool           `yaml:"reset,omitempty"`
}

// DeclareStep declares a variable over one or more coverages.
type DeclareStep struct {
	Name      string   `yaml:"name"`
	Coverage  string   `yaml:"coverage,omitempty"`
	Coverages []string `yaml:"coverages,omitempty"`
}

// SubsetStep binds a subset. An empty Name creates a synthetic variable.
type SubsetStep struct {
	Subset string `yaml:"subset"`
	Name   string `yaml:"name,omitempty"`
}

// AggregateStep sets an aggregation. Condition is optional.
type AggregateStep struct {
	Kind      string `yaml:"kind"`
	Condition string `yaml:"condition,omitempty"`
}

// SwitchStep sets a switch expression.
type SwitchStep struct {
	Condition string           `yaml:"condition"`
	Cases     []querywcps.Case `yaml:"cases"`
	Default   string           `yaml:"default"`
}

// Response is a canned server answer.
type Response struct {
	Status int    `yaml:"status,omitempty"`
	Body   string `yaml:"body"`
}

// Expect specifies the expected outcome. Empty fields are not checked.
type Expect struct {
	// Query is the exact serialized query.
	Query string `yaml:"query,omitempty"`

	// Error is the expected error code of the failing step, build or
	// execution (e.g. UNKNOWN_VARIABLE).
	Error string `yaml:"error,omitempty"`

	// Values are the expected decoded numbers.
	Values []float64 `yaml:"values,omitempty"`

	// Bytes is the expected raw payload size for image formats.
	Bytes int `yaml:"bytes,omitempty"`
}

// Op returns the name of the call the step makes, "" when no field or
// more than one field is set.
func (s Step) Op() string {
	var ops []string
	if s.Declare != nil {
		ops = append(ops, "declare")
	}
	if s.Subset != nil {
		ops = append(ops, "subset")
	}
	if s.Where != "" {
		ops = append(ops, "where")
	}
	if s.Aggregate != nil {
		ops = append(ops, "aggregate")
	}
	if s.Transform != "" {
		ops = append(ops, "transform")
	}
	if s.Encode != "" {
		ops = append(ops, "encode")
	}
	if s.Switch != nil {
		ops = append(ops, "switch")
	}
	if s.Format != "" {
		ops = append(ops, "format")
	}
	if s.Reset {
		ops = append(ops, "reset")
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Plan != "" && !filepath.IsAbs(scenario.Plan) {
		scenario.Plan = filepath.Join(filepath.Dir(path), scenario.Plan)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 && s.Plan == "" {
		return fmt.Errorf("steps or plan is required")
	}

	if s.Plan != "" {
		if _, err := os.Stat(s.Plan); os.IsNotExist(err) {
			return fmt.Errorf("plan file not found: %s", s.Plan)
		}
	}

	for i, step := range s.Steps {
		if step.Op() == "" {
			return fmt.Errorf("steps[%d]: exactly one operation is required", i)
		}
		if step.Declare != nil && step.Declare.Coverage == "" && len(step.Declare.Coverages) == 0 {
			return fmt.Errorf("steps[%d].declare: coverage or coverages is required", i)
		}
	}

	if s.Response != nil && !s.Execute {
		return fmt.Errorf("response is only used with execute: true")
	}

	if s.Expect.Error != "" && !knownCode(s.Expect.Error) {
		return fmt.Errorf("expect.error: unknown error code %q", s.Expect.Error)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

func knownCode(code string) bool {
	switch ir.ErrorCode(code) {
	case ir.ErrCodeInvalidArgument, ir.ErrCodeMissingReference, ir.ErrCodeUnknownVariable,
		ir.ErrCodeNotFound, ir.ErrCodeUnsupportedOperation, ir.ErrCodeTransport:
		return true
	default:
		return false
	}
}
