// Package expr produces small WCPS expression fragments.
//
// The fragments are plain text intended for the builder's Where,
// Transform, Encode and aggregation calls:
//
//	temp := expr.Var("t")
//	dc.Where(expr.And(temp.GreaterThan(0), temp.LessThan(100)))
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/datacube/internal/geometry"
	"github.com/roach88/datacube/internal/ir"
)

// Operand is anything that renders as an expression term.
type Operand interface {
	String() string
}

// Variable names a coverage variable.
type Variable struct {
	name string
}

// Var creates a variable reference. The "$" sentinel is optional.
func Var(name string) Variable {
	return Variable{name: strings.TrimPrefix(name, ir.Sentinel)}
}

// Name returns the bare name without the sentinel.
func (v Variable) Name() string { return v.name }

// WithPrefix returns the variable unchanged; references always carry
// exactly one sentinel.
func (v Variable) WithPrefix() Variable { return v }

// String renders "$name".
func (v Variable) String() string { return ir.Sentinel + v.name }

// GreaterThan renders "$name > other".
func (v Variable) GreaterThan(other any) string { return binary(v, ">", other) }

// LessThan renders "$name < other".
func (v Variable) LessThan(other any) string { return binary(v, "<", other) }

// Equals renders "$name = other".
func (v Variable) Equals(other any) string { return binary(v, "=", other) }

// Add renders "$name + other".
func (v Variable) Add(other any) string { return binary(v, "+", other) }

// Subtract renders "$name - other".
func (v Variable) Subtract(other any) string { return binary(v, "-", other) }

// Multiply renders "$name * other".
func (v Variable) Multiply(other any) string { return binary(v, "*", other) }

// Divide renders "$name / other".
func (v Variable) Divide(other any) string { return binary(v, "/", other) }

// Scalar is a numeric literal.
type Scalar struct {
	value float64
}

// Num creates a scalar.
func Num(v float64) Scalar { return Scalar{value: v} }

// String renders the shortest decimal form ("2", "0.5").
func (s Scalar) String() string { return strconv.FormatFloat(s.value, 'f', -1, 64) }

// Add renders "value + other".
func (s Scalar) Add(other any) string { return binary(s, "+", other) }

// Subtract renders "value - other".
func (s Scalar) Subtract(other any) string { return binary(s, "-", other) }

// Multiply renders "value * other".
func (s Scalar) Multiply(other any) string { return binary(s, "*", other) }

// Divide renders "value / other".
func (s Scalar) Divide(other any) string { return binary(s, "/", other) }

// And joins conditions with "and", wrapping each in parentheses when
// there is more than one.
func And(conds ...string) string { return join("and", conds) }

// Or joins conditions with "or", wrapping each in parentheses when there
// is more than one.
func Or(conds ...string) string { return join("or", conds) }

// Clip renders "clip($name, POLYGON((...)))".
func Clip(v Variable, p *geometry.Polygon) (string, error) {
	poly, err := p.ClipExpression()
	if err != nil {
		return "", fmt.Errorf("clip %s: %w", v, err)
	}
	return fmt.Sprintf("clip(%s, %s)", v, poly), nil
}

func binary(left Operand, op string, right any) string {
	return fmt.Sprintf("%s %s %s", left, op, term(right))
}

func term(v any) string {
	switch t := v.(type) {
	case Operand:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func join(op string, conds []string) string {
	if len(conds) == 1 {
		return conds[0]
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = "(" + c + ")"
	}
	return strings.Join(parts, " "+op+" ")
}
