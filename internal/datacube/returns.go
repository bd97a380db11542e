package datacube

import (
	"strings"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/queryir"
	"github.com/roach88/datacube/internal/querywcps"
)

// Where sets the filter condition. The condition must reference at least
// one declared variable and is emitted verbatim.
func (d *Datacube) Where(condition string) error {
	if err := d.AssertDeclared(condition); err != nil {
		return err
	}
	d.plan.Filter = condition
	return nil
}

// Aggregate stores an aggregation, replacing any earlier one. An empty
// condition aggregates the default listing; a non-empty one must pass
// AssertDeclared.
func (d *Datacube) Aggregate(kind ir.AggregationKind, condition string) error {
	if kind < ir.AggNone || kind > ir.AggCount {
		return ir.Errorf(ir.ErrCodeInvalidArgument, "unknown aggregation kind %d", int(kind))
	}
	if condition != "" {
		if err := d.AssertDeclared(condition); err != nil {
			return err
		}
	}
	d.plan.Returns.Set(ir.Aggregate{Func: kind, Condition: condition})
	return nil
}

// Min aggregates with min(). See Aggregate.
func (d *Datacube) Min(condition string) error { return d.Aggregate(ir.AggMin, condition) }

// Max aggregates with max(). See Aggregate.
func (d *Datacube) Max(condition string) error { return d.Aggregate(ir.AggMax, condition) }

// Avg aggregates with avg(). See Aggregate.
func (d *Datacube) Avg(condition string) error { return d.Aggregate(ir.AggAvg, condition) }

// Sum aggregates with sum(). See Aggregate.
func (d *Datacube) Sum(condition string) error { return d.Aggregate(ir.AggSum, condition) }

// Count aggregates with count(). See Aggregate.
func (d *Datacube) Count(condition string) error { return d.Aggregate(ir.AggCount, condition) }

// Transform stores a transformation of the declared variables.
func (d *Datacube) Transform(expr string) error {
	if err := d.AssertDeclared(expr); err != nil {
		return err
	}
	d.plan.Returns.Set(ir.TransformExpr{Expr: expr})
	return nil
}

// TransformExpr compiles a coverage expression tree and stores it as the
// transformation. Variables the tree references are declared on the fly;
// a reference to an existing variable must name the same coverages.
func (d *Datacube) TransformExpr(e queryir.Expr) error {
	text, err := d.compiler.CompileExpr(e)
	if err != nil {
		return err
	}

	var pending []ir.Variable
	for _, ref := range queryir.Refs(e) {
		v := querywcps.RefVariable(ref)
		existing, ok := d.plan.Lookup(v.Name)
		if !ok {
			pending = append(pending, v)
			continue
		}
		if strings.Join(existing.Coverages, ",") != strings.Join(v.Coverages, ",") {
			return &ir.QueryError{
				Code:    ir.ErrCodeInvalidArgument,
				Message: "expression ranges over different coverages than the declared variable",
				Name:    v.Name,
			}
		}
	}

	for _, v := range pending {
		if err := d.declare(v); err != nil {
			return err
		}
	}
	d.plan.Returns.Set(ir.TransformExpr{Expr: text})
	return nil
}

// Encode stores an explicit encode() body. Variable references are
// optional, but any that appear must be declared.
func (d *Datacube) Encode(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return &ir.QueryError{
			Code:    ir.ErrCodeInvalidArgument,
			Message: "encode expression must not be empty",
		}
	}
	if ir.ReferencedNames(expr) != nil {
		if err := d.AssertDeclared(expr); err != nil {
			return err
		}
	}
	d.plan.Returns.Set(ir.EncodeExpr{Expr: expr})
	return nil
}

// Switch renders and stores a switch expression. Branch texts are stored
// as given and not checked against declared variables.
func (d *Datacube) Switch(condition string, cases []querywcps.Case, defaultExpr string) {
	d.plan.Returns.Set(ir.SwitchExpr{Text: querywcps.SwitchText(condition, cases, defaultExpr)})
}

// SetFormat selects the output format.
func (d *Datacube) SetFormat(f ir.Format) error {
	if f.MIMEType() == "" && f != ir.FormatUnset {
		return ir.Errorf(ir.ErrCodeInvalidArgument, "unknown format %d", int(f))
	}
	d.plan.Format = f
	return nil
}

// SetFormatName selects the output format by name ("csv", "png", "jpeg").
func (d *Datacube) SetFormatName(name string) error {
	f, err := ir.ParseFormat(name)
	if err != nil {
		return err
	}
	d.plan.Format = f
	return nil
}

// ResolveAggregation renders the stored aggregation as kind(body).
func (d *Datacube) ResolveAggregation() (string, error) {
	agg, ok := d.Aggregation()
	if !ok {
		return "", &ir.QueryError{
			Code:    ir.ErrCodeUnsupportedOperation,
			Message: "no aggregation set",
		}
	}
	return querywcps.ResolveAggregation(d.plan.Variables, agg)
}

// Substitute rewrites references to variables with a bound subset as
// "$name[subset]".
func (d *Datacube) Substitute(expr string) string {
	return querywcps.Substitute(d.plan.Variables, expr)
}

// Listing renders every declared variable with its subset, in declaration
// order.
func (d *Datacube) Listing() string {
	return querywcps.Listing(d.plan.Variables)
}
