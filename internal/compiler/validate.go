package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/datacube/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrDuplicateVariable = "E201" // two variables share a name
	ErrEmptyCoverage     = "E202" // coverage name is empty
	ErrMissingReference  = "E203" // expression references no variable
	ErrUnknownVariable   = "E204" // expression references an undeclared variable
	ErrEmptyExpression   = "E205" // encode expression is blank
)

// ValidationError represents a plan validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks name resolution across a compiled plan.
// Returns all errors found (does not fail-fast). The rules match the
// builder's: where and transform must reference a declared variable,
// aggregate conditions and encode expressions may reference none.
// Switch branches are not checked.
func Validate(spec *PlanSpec) []ValidationError {
	var errs []ValidationError
	p := spec.Plan

	declared := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		field := "variables." + strings.TrimPrefix(v.Name, ir.Sentinel)
		if declared[v.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s is declared more than once", v.Name),
				Code:    ErrDuplicateVariable,
			})
		}
		declared[v.Name] = true

		for _, c := range v.Coverages {
			if strings.TrimSpace(c) == "" {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "coverage name must not be empty",
					Code:    ErrEmptyCoverage,
				})
			}
		}
	}

	check := func(field, expr string, required bool) {
		names := ir.ReferencedNames(ir.CollapseWhitespace(expr))
		if names == nil {
			if required {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%q references no variable", expr),
					Code:    ErrMissingReference,
				})
			}
			return
		}
		for _, n := range names {
			if !declared[n] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s is not declared", n),
					Code:    ErrUnknownVariable,
				})
			}
		}
	}

	if p.Filter != "" {
		check("where", p.Filter, true)
	}

	for _, s := range p.Returns.All() {
		switch st := s.(type) {
		case ir.Aggregate:
			if st.Condition != "" {
				check("aggregate.condition", st.Condition, true)
			}
		case ir.TransformExpr:
			check("transform", st.Expr, true)
		case ir.EncodeExpr:
			if strings.TrimSpace(st.Expr) == "" {
				errs = append(errs, ValidationError{
					Field:   "encode",
					Message: "encode expression must not be empty",
					Code:    ErrEmptyExpression,
				})
				continue
			}
			check("encode", st.Expr, false)
		}
	}

	return errs
}
