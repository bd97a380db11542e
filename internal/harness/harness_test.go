package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datacube/internal/querywcps"
)

func TestRun_Listing(t *testing.T) {
	scenario := &Scenario{
		Name:        "listing",
		Description: "two variables, no return strategy",
		Steps: []Step{
			{Declare: &DeclareStep{Name: "a", Coverage: "A"}},
			{Declare: &DeclareStep{Name: "$b", Coverages: []string{"B1", "B2"}}},
		},
		Expect: Expect{Query: "for $a in (A),\n$b in (B1,B2)\nreturn\n$a $b"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "listing", result.Strategy)
	assert.Equal(t, []string{"$a", "$b"}, result.Variables)
	assert.Len(t, result.Trace, 2)
	assert.Zero(t, result.Recorded)
}

func TestRun_StopsAtFirstError(t *testing.T) {
	scenario := &Scenario{
		Name:        "stop",
		Description: "subset on an undeclared variable",
		Steps: []Step{
			{Subset: &SubsetStep{Subset: "x(0)", Name: "c"}},
			{Declare: &DeclareStep{Name: "c", Coverage: "A"}},
		},
		Expect: Expect{Error: "NOT_FOUND"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, TraceEvent{Op: "subset", Error: "NOT_FOUND"}, result.Trace[0])
	assert.Empty(t, result.Query)
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "duplicate declaration",
		Steps: []Step{
			{Declare: &DeclareStep{Name: "c", Coverage: "A"}},
			{Declare: &DeclareStep{Name: "c", Coverage: "B"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "INVALID_ARGUMENT", result.ErrorCode)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_QueryMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expected query",
		Steps:       []Step{{Declare: &DeclareStep{Name: "c", Coverage: "A"}}},
		Expect:      Expect{Query: "for $c in (B)\nreturn\n$c"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "query mismatch")
}

func TestRun_Switch(t *testing.T) {
	scenario := &Scenario{
		Name:        "switch",
		Description: "switch with a PNG wrapper",
		Steps: []Step{
			{Declare: &DeclareStep{Name: "c", Coverage: "AvgLandTemp"}},
			{Switch: &SwitchStep{
				Condition: "$c",
				Cases:     []querywcps.Case{{When: "> 30", Return: "{red: 255}"}},
				Default:   "{red: 0}",
			}},
			{Format: "png"},
		},
		Expect: Expect{Query: "for $c in (AvgLandTemp)\nreturn\n" +
			`encode(switch case $c > 30 return {red: 255} default return {red: 0} end, "image/png")`},
		Assertions: []Assertion{{Type: AssertStrategy, Strategy: "switch"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ResetClearsState(t *testing.T) {
	scenario := &Scenario{
		Name:        "reset",
		Description: "reset drops earlier declarations",
		Steps: []Step{
			{Declare: &DeclareStep{Name: "c", Coverage: "A"}},
			{Reset: true},
			{Declare: &DeclareStep{Name: "c", Coverage: "B"}},
		},
		Expect: Expect{Query: "for $c in (B)\nreturn\n$c"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnknownAggregation(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_agg",
		Description: "unknown aggregation kind",
		Steps: []Step{
			{Declare: &DeclareStep{Name: "c", Coverage: "A"}},
			{Aggregate: &AggregateStep{Kind: "median"}},
		},
		Expect: Expect{Error: "INVALID_ARGUMENT"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExecuteValuesMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "values",
		Description: "decoded values differ",
		Steps:       []Step{{Declare: &DeclareStep{Name: "c", Coverage: "A"}}},
		Execute:     true,
		Response:    &Response{Body: "1 2"},
		Expect:      Expect{Values: []float64{1, 3}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []float64{1, 2}, result.Values)
	assert.Equal(t, 1, result.Recorded)
}

func TestRun_MissingPlanName(t *testing.T) {
	scenario := &Scenario{
		Name:        "ambiguous",
		Description: "two plans, none named",
		Plan:        filepath.Join("testdata", "plans.cue"),
	}

	_, err := Run(scenario)
	assert.Error(t, err)
}

func TestRun_PlanFromTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.cue")
	require.NoError(t, os.WriteFile(path, []byte(`plan: only: {
	variables: c: coverage: "AvgLandTemp"
	aggregate: {kind: "count", condition: "$c > 0"}
}`), 0o644))

	scenario := &Scenario{
		Name:        "one_plan",
		Description: "single plan selected implicitly",
		Plan:        path,
		Expect:      Expect{Query: "for $c in (AvgLandTemp)\nreturn\ncount($c > 0)"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []TraceEvent{{Op: "plan"}}, result.Trace)
}
