// Package querywcps renders WCPS query text.
//
// Two inputs are supported: an ir.Plan snapshot taken from the query
// builder (CompilePlan), and a queryir coverage expression tree
// (CompileExpr / CompileQuery). Output is deterministic: the same input
// always yields byte-identical text.
package querywcps

import (
	"fmt"
	"strings"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/queryir"
)

// Compiler turns plans and expression trees into WCPS text.
type Compiler struct {
	// DefaultFormat is used to wrap encode and transform bodies when the
	// plan sets no format. Defaults to CSV.
	DefaultFormat ir.Format
}

// NewCompiler creates a Compiler with the CSV default.
func NewCompiler() *Compiler {
	return &Compiler{DefaultFormat: ir.FormatCSV}
}

// CompileExpr renders an expression tree as WCPS expression text.
// Nested binary operands are parenthesized: Mul(Add(a, b), 2) renders as
// "($a + $b) * 2".
func (c *Compiler) CompileExpr(e queryir.Expr) (string, error) {
	if err := queryir.Validate(e).Err(); err != nil {
		return "", err
	}
	return c.renderExpr(e, false), nil
}

// CompileQuery renders a complete query evaluating e: one "for" clause per
// referenced coverage variable, a return marker and an encode() wrapper.
// FormatUnset falls back to DefaultFormat.
func (c *Compiler) CompileQuery(e queryir.Expr, format ir.Format) (string, error) {
	body, err := c.CompileExpr(e)
	if err != nil {
		return "", fmt.Errorf("compile expression: %w", err)
	}

	refs := queryir.Refs(e)
	clauses := make([]string, len(refs))
	for i, ref := range refs {
		clauses[i] = RefVariable(ref).Clause()
	}

	if format == ir.FormatUnset {
		format = c.defaultFormat()
	}

	var b strings.Builder
	b.WriteString("for ")
	b.WriteString(strings.Join(clauses, ",\n"))
	b.WriteString("\nreturn\n")
	b.WriteString(encode(body, format))
	return b.String(), nil
}

// RefVariable converts a coverage reference to a plan variable.
// The reference must already be valid (see queryir.Validate).
func RefVariable(ref queryir.CoverageRef) ir.Variable {
	name, err := ir.CanonicalName(ref.Variable)
	if err != nil {
		name = ref.Variable
	}
	return ir.Variable{Name: name, Coverages: append([]string(nil), ref.Coverages...)}
}

func (c *Compiler) renderExpr(e queryir.Expr, nested bool) string {
	switch n := e.(type) {
	case queryir.CoverageRef:
		return RefVariable(n).Name
	case *queryir.CoverageRef:
		return RefVariable(*n).Name
	case queryir.Scalar:
		return n.Text
	case *queryir.Scalar:
		return n.Text
	case queryir.BinaryOp:
		return c.renderBinary(n, nested)
	case *queryir.BinaryOp:
		return c.renderBinary(*n, nested)
	default:
		// Unreachable after Validate.
		return ""
	}
}

func (c *Compiler) renderBinary(b queryir.BinaryOp, nested bool) string {
	text := fmt.Sprintf("%s %s %s", c.renderExpr(b.Left, true), b.Op, c.renderExpr(b.Right, true))
	if nested {
		return "(" + text + ")"
	}
	return text
}

func (c *Compiler) defaultFormat() ir.Format {
	if c.DefaultFormat == ir.FormatUnset {
		return ir.FormatCSV
	}
	return c.DefaultFormat
}

// encode wraps body as encode(body, "<mime>").
func encode(body string, format ir.Format) string {
	return fmt.Sprintf("encode(%s, %q)", body, format.MIMEType())
}
