package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/querywcps"
)

// PlanSpec is a named plan read from CUE.
type PlanSpec struct {
	Name string
	Plan ir.Plan
}

// CompilePlan parses a CUE value into a PlanSpec.
//
// The value should be the plan struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`plan: july: { ... }`)
//	spec, err := CompilePlan(v.LookupPath(cue.ParsePath("plan.july")))
//
// Only the shape of the plan is checked here. Name resolution happens in
// Validate and when the plan is applied to a builder.
func CompilePlan(v cue.Value) (*PlanSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &PlanSpec{}
	if labels := v.Path().Selectors(); len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	vars, err := parseVariables(v)
	if err != nil {
		return nil, err
	}
	spec.Plan.Variables = vars

	if spec.Plan.Filter, err = optionalString(v, "where"); err != nil {
		return nil, err
	}

	if err := parseReturns(v, &spec.Plan.Returns); err != nil {
		return nil, err
	}

	formatName, err := optionalString(v, "format")
	if err != nil {
		return nil, err
	}
	format, err := ir.ParseFormat(formatName)
	if err != nil {
		return nil, &CompileError{
			Field:   "format",
			Message: err.Error(),
			Pos:     v.LookupPath(cue.ParsePath("format")).Pos(),
		}
	}
	spec.Plan.Format = format

	return spec, nil
}

// parseVariables reads the variables struct in source order.
// Each variable has either "coverage" or "coverages", and an optional
// "subset". A variable with neither must carry a subset.
func parseVariables(v cue.Value) ([]ir.Variable, error) {
	varsVal := v.LookupPath(cue.ParsePath("variables"))
	if !varsVal.Exists() {
		return nil, nil
	}

	iter, err := varsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var vars []ir.Variable
	for iter.Next() {
		label := iter.Label()
		val := iter.Value()

		name, err := ir.CanonicalName(label)
		if err != nil {
			return nil, &CompileError{
				Field:   "variables",
				Message: "variable name must be an identifier: " + label,
				Pos:     val.Pos(),
			}
		}

		variable := ir.Variable{Name: name}

		covVal := val.LookupPath(cue.ParsePath("coverages"))
		if covVal.Exists() {
			if err := covVal.Decode(&variable.Coverages); err != nil {
				return nil, formatCUEError(err)
			}
		}
		single, err := optionalString(val, "coverage")
		if err != nil {
			return nil, err
		}
		if single != "" {
			variable.Coverages = append([]string{single}, variable.Coverages...)
		}

		subsetVal := val.LookupPath(cue.ParsePath("subset"))
		if subsetVal.Exists() {
			subset, err := subsetVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			variable.Subset = &subset
		}

		if variable.Synthetic() && variable.Subset == nil {
			return nil, &CompileError{
				Field:   "variables",
				Message: name + ": needs a coverage or a subset",
				Pos:     val.Pos(),
			}
		}

		vars = append(vars, variable)
	}

	return vars, nil
}

// parseReturns reads aggregate, encode, transform and switch.
func parseReturns(v cue.Value, returns *ir.Returns) error {
	aggVal := v.LookupPath(cue.ParsePath("aggregate"))
	if aggVal.Exists() {
		agg, err := parseAggregate(aggVal)
		if err != nil {
			return err
		}
		returns.Set(agg)
	}

	encode, err := optionalString(v, "encode")
	if err != nil {
		return err
	}
	if encode != "" {
		returns.Set(ir.EncodeExpr{Expr: encode})
	}

	transform, err := optionalString(v, "transform")
	if err != nil {
		return err
	}
	if transform != "" {
		returns.Set(ir.TransformExpr{Expr: transform})
	}

	switchVal := v.LookupPath(cue.ParsePath("switch"))
	if switchVal.Exists() {
		text, err := parseSwitch(switchVal)
		if err != nil {
			return err
		}
		returns.Set(ir.SwitchExpr{Text: text})
	}

	return nil
}

// parseAggregate accepts either a bare kind ("max") or
// {kind: "max", condition: "$c > 0"}.
func parseAggregate(v cue.Value) (ir.Aggregate, error) {
	kindName, err := v.String()
	condition := ""
	if err != nil {
		if kindName, err = optionalString(v, "kind"); err != nil {
			return ir.Aggregate{}, err
		}
		if condition, err = optionalString(v, "condition"); err != nil {
			return ir.Aggregate{}, err
		}
	}

	kind, err := ir.ParseAggregation(kindName)
	if err != nil {
		return ir.Aggregate{}, &CompileError{
			Field:   "aggregate",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return ir.Aggregate{Func: kind, Condition: condition}, nil
}

// parseSwitch renders a switch block. Cases keep their list order.
func parseSwitch(v cue.Value) (string, error) {
	condition, err := optionalString(v, "condition")
	if err != nil {
		return "", err
	}
	def, err := optionalString(v, "default")
	if err != nil {
		return "", err
	}
	if def == "" {
		return "", &CompileError{
			Field:   "switch",
			Message: "default is required",
			Pos:     v.Pos(),
		}
	}

	var cases []querywcps.Case
	casesVal := v.LookupPath(cue.ParsePath("cases"))
	if casesVal.Exists() {
		iter, err := casesVal.List()
		if err != nil {
			return "", formatCUEError(err)
		}
		for iter.Next() {
			var c querywcps.Case
			if err := iter.Value().Decode(&c); err != nil {
				return "", formatCUEError(err)
			}
			cases = append(cases, c)
		}
	}

	return querywcps.SwitchText(condition, cases, def), nil
}

// optionalString returns the string at path, "" when absent.
func optionalString(v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}
