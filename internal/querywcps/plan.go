package querywcps

import (
	"fmt"
	"strings"

	"github.com/roach88/datacube/internal/ir"
)

// CompilePlan serializes a builder plan into WCPS text.
//
// Layout:
//
//	for $a in (A),
//	$b in (B1,B2)
//	where <filter>
//	return
//	<body>
//
// The where line is present only when a filter is set. Synthetic variables
// (no coverage) get no for clause but still appear in listings. The body is
// chosen by plan.Returns.Active():
//   - Aggregate: kind(condition or listing), never wrapped
//   - EncodeExpr / TransformExpr: substituted, always wrapped in encode()
//     (DefaultFormat when the plan has none)
//   - SwitchExpr: verbatim, wrapped only when a format is set
//   - Listing: every variable, wrapped only when a format is set
func (c *Compiler) CompilePlan(p ir.Plan) (string, error) {
	var b strings.Builder

	var clauses []string
	for _, v := range p.Variables {
		if v.Synthetic() {
			continue
		}
		clauses = append(clauses, v.Clause())
	}
	b.WriteString("for ")
	b.WriteString(strings.Join(clauses, ",\n"))
	b.WriteString("\n")

	if p.Filter != "" {
		b.WriteString("where ")
		b.WriteString(p.Filter)
		b.WriteString("\n")
	}
	b.WriteString("return\n")

	var (
		body     string
		explicit bool
	)
	switch s := p.Returns.Active().(type) {
	case ir.Aggregate:
		agg, err := ResolveAggregation(p.Variables, s)
		if err != nil {
			return "", err
		}
		b.WriteString(agg)
		return b.String(), nil
	case ir.EncodeExpr:
		body, explicit = Substitute(p.Variables, s.Expr), true
	case ir.TransformExpr:
		body, explicit = Substitute(p.Variables, s.Expr), true
	case ir.SwitchExpr:
		body = s.Text
	case ir.Listing:
		body = Listing(p.Variables)
	default:
		return "", fmt.Errorf("unsupported return strategy: %T", s)
	}

	switch {
	case p.Format != ir.FormatUnset:
		b.WriteString(encode(body, p.Format))
	case explicit:
		b.WriteString(encode(body, c.defaultFormat()))
	default:
		b.WriteString(body)
	}
	return b.String(), nil
}

// Substitute rewrites every reference to a variable with a bound subset as
// "$name[subset]". References are matched as whole sentinel-prefixed tokens,
// so "$c" is never rewritten inside "$c2". Unknown names are left alone.
func Substitute(vars []ir.Variable, expr string) string {
	byName := make(map[string]ir.Variable, len(vars))
	for _, v := range vars {
		if _, dup := byName[v.Name]; !dup {
			byName[v.Name] = v
		}
	}
	return ir.ReplaceRefs(expr, func(name string) string {
		if v, ok := byName[name]; ok {
			return v.Ref()
		}
		return name
	})
}

// Listing renders every variable in declaration order, each as
// "$name[subset]" or "$name", joined by single spaces.
func Listing(vars []ir.Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.Ref()
	}
	return strings.Join(parts, " ")
}

// ResolveAggregation renders kind(body) where body is the substituted
// condition, or the listing when there is no condition.
func ResolveAggregation(vars []ir.Variable, agg ir.Aggregate) (string, error) {
	if agg.Func == ir.AggNone {
		return "", &ir.QueryError{
			Code:    ir.ErrCodeUnsupportedOperation,
			Message: "aggregation kind is not set",
		}
	}
	body := Listing(vars)
	if agg.Condition != "" {
		body = Substitute(vars, agg.Condition)
	}
	return fmt.Sprintf("%s(%s)", agg.Func.FuncName(), body), nil
}

// Case is one branch of a switch expression.
type Case struct {
	When   string `yaml:"when" json:"when"`
	Return string `yaml:"return" json:"return"`
}

// SwitchText renders
//
//	switch case <condition> <when> return <expr> ... default return <def> end
//
// with cases in the given order. Branch texts are not checked.
func SwitchText(condition string, cases []Case, def string) string {
	var b strings.Builder
	b.WriteString("switch case ")
	b.WriteString(condition)
	for _, cs := range cases {
		fmt.Fprintf(&b, " %s return %s", cs.When, cs.Return)
	}
	fmt.Fprintf(&b, " default return %s end", def)
	return b.String()
}
