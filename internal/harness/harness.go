package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/datacube/internal/compiler"
	"github.com/roach88/datacube/internal/datacube"
	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/store"
	"github.com/roach88/datacube/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory history store and a fake
// transport answering with the scenario's canned response.
//
// Execution flow:
// 1. Apply the CUE plan, if any
// 2. Apply steps until one fails
// 3. Build the query, and execute it when asked
// 4. Check expectations and assertions
//
// The returned error is reserved for harness failures (store, plan file);
// builder errors are part of the Result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequenceIDs("")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	sender := &testutil.FakeSender{}
	if r := scenario.Response; r != nil {
		sender.Status = r.Status
		sender.Body = []byte(r.Body)
	}

	clock := testutil.NewStepClock(time.Millisecond)
	dc, err := datacube.New(sender,
		datacube.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		datacube.WithRecorder(st),
		datacube.WithClock(clock.Now),
	)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	failed := false

	if scenario.Plan != "" {
		specs, err := compiler.LoadFile(scenario.Plan)
		if err != nil {
			return nil, err
		}
		spec, err := compiler.Find(specs, scenario.PlanName)
		if err != nil {
			return nil, err
		}
		err = dc.Apply(spec.Plan)
		result.AddTrace("plan", string(ir.CodeOf(err)))
		if err != nil {
			result.setError(err)
			failed = true
		}
	}

	if !failed {
		for _, step := range scenario.Steps {
			err := applyStep(dc, step)
			result.AddTrace(step.Op(), string(ir.CodeOf(err)))
			if err != nil {
				result.setError(err)
				failed = true
				break
			}
		}
	}

	if !failed {
		plan := dc.Plan()
		result.Strategy = plan.Returns.Active().Kind().String()
		result.Variables = plan.Names()

		query, err := dc.BuildQuery()
		if err != nil {
			result.setError(err)
		} else {
			result.Query = query
		}

		if err == nil && scenario.Execute {
			res, err := dc.Execute(ctx)
			if err != nil {
				result.setError(err)
			} else {
				result.Values = res.Values
				result.Data = res.Data
			}

			execs, err := st.ListExecutions(ctx, store.ListOptions{})
			if err != nil {
				return nil, fmt.Errorf("read history: %w", err)
			}
			result.Recorded = len(execs)
		}
	}

	checkExpect(scenario.Expect, result)

	for _, a := range scenario.Assertions {
		if err := evaluateAssertion(a, result); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

func (r *Result) setError(err error) {
	code := string(ir.CodeOf(err))
	if code == "" {
		code = "ERROR"
	}
	r.ErrorCode = code
	r.ErrorMessage = err.Error()
}

// applyStep makes the builder call a step describes.
func applyStep(dc *datacube.Datacube, s Step) error {
	switch s.Op() {
	case "declare":
		covs := s.Declare.Coverages
		if s.Declare.Coverage != "" {
			covs = append([]string{s.Declare.Coverage}, covs...)
		}
		return dc.DeclareMulti(s.Declare.Name, covs...)
	case "subset":
		if s.Subset.Name == "" {
			_, err := dc.SubsetNext(s.Subset.Subset)
			return err
		}
		return dc.Subset(s.Subset.Subset, s.Subset.Name)
	case "where":
		return dc.Where(s.Where)
	case "aggregate":
		kind, err := ir.ParseAggregation(s.Aggregate.Kind)
		if err != nil {
			return err
		}
		return dc.Aggregate(kind, s.Aggregate.Condition)
	case "transform":
		return dc.Transform(s.Transform)
	case "encode":
		return dc.Encode(s.Encode)
	case "switch":
		dc.Switch(s.Switch.Condition, s.Switch.Cases, s.Switch.Default)
		return nil
	case "format":
		return dc.SetFormatName(s.Format)
	case "reset":
		dc.Reset()
		return nil
	default:
		return ir.Errorf(ir.ErrCodeInvalidArgument, "step must set exactly one operation")
	}
}

// checkExpect compares the outcome with the scenario's expect block.
func checkExpect(e Expect, r *Result) {
	switch {
	case e.Error != "" && r.ErrorCode != e.Error:
		r.AddError(fmt.Sprintf("expected error %s, got %q (%s)", e.Error, r.ErrorCode, r.ErrorMessage))
	case e.Error == "" && r.ErrorCode != "":
		r.AddError(fmt.Sprintf("unexpected error: %s", r.ErrorMessage))
	}

	if e.Query != "" && r.Query != e.Query {
		r.AddError(fmt.Sprintf("query mismatch:\n  expected: %q\n  actual:   %q", e.Query, r.Query))
	}

	if e.Values != nil && !slices.Equal(e.Values, r.Values) {
		r.AddError(fmt.Sprintf("values mismatch: expected %v, got %v", e.Values, r.Values))
	}

	if e.Bytes > 0 && len(r.Data) != e.Bytes {
		r.AddError(fmt.Sprintf("payload size mismatch: expected %d bytes, got %d", e.Bytes, len(r.Data)))
	}
}
