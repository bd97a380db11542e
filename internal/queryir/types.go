package queryir

import (
	"fmt"
	"strconv"
)

// Expr is a node in a coverage expression tree.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Operator is a binary operator in WCPS syntax.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpGT  Operator = ">"
	OpLT  Operator = "<"
	OpGE  Operator = ">="
	OpLE  Operator = "<="
	OpEq  Operator = "="
	OpNE  Operator = "!="
	OpAnd Operator = "and"
	OpOr  Operator = "or"
)

// validOperators is the closed operator set accepted by Validate.
var validOperators = map[Operator]bool{
	OpAdd: true, OpSub: true, OpMul: true, OpDiv: true,
	OpGT: true, OpLT: true, OpGE: true, OpLE: true, OpEq: true, OpNE: true,
	OpAnd: true, OpOr: true,
}

// IsValid reports whether op belongs to the supported operator set.
func (op Operator) IsValid() bool {
	return validOperators[op]
}

// CoverageRef references a coverage variable.
//
// Semantics:
//
//	for $<Variable> in (<Coverages...>) ... $<Variable>
//
// Variable may be given with or without the "$" sentinel. Every reference
// to the same variable inside one tree must name the same coverages.
type CoverageRef struct {
	Variable  string
	Coverages []string
}

func (CoverageRef) exprNode() {}

// Scalar is a literal operand rendered verbatim.
type Scalar struct {
	Text string
}

func (Scalar) exprNode() {}

// BinaryOp combines two expressions with an operator.
//
// Semantics:
//
//	<Left> <Op> <Right>
//
// Nested binary operands are parenthesized by the compiler, so the tree
// shape fixes evaluation order.
type BinaryOp struct {
	Left  Expr
	Right Expr
	Op    Operator
}

func (BinaryOp) exprNode() {}

// Ref creates a CoverageRef.
func Ref(variable string, coverages ...string) CoverageRef {
	return CoverageRef{Variable: variable, Coverages: coverages}
}

// Num creates a numeric Scalar using the shortest exact representation.
func Num(v float64) Scalar {
	return Scalar{Text: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Lit creates a Scalar from literal text.
func Lit(text string) Scalar {
	return Scalar{Text: text}
}

// Binary creates a BinaryOp.
func Binary(op Operator, left, right Expr) BinaryOp {
	return BinaryOp{Left: left, Right: right, Op: op}
}

// Add creates left + right.
func Add(left, right Expr) BinaryOp { return Binary(OpAdd, left, right) }

// Sub creates left - right.
func Sub(left, right Expr) BinaryOp { return Binary(OpSub, left, right) }

// Mul creates left * right.
func Mul(left, right Expr) BinaryOp { return Binary(OpMul, left, right) }

// Div creates left / right.
func Div(left, right Expr) BinaryOp { return Binary(OpDiv, left, right) }

// Fold left-folds exprs with op: Fold(+, a, b, c) is (a + b) + c.
// At least two operands are required.
func Fold(op Operator, exprs ...Expr) (Expr, error) {
	if len(exprs) < 2 {
		return nil, fmt.Errorf("at least two operands are required for %q, got %d", op, len(exprs))
	}
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = Binary(op, acc, e)
	}
	return acc, nil
}

// Refs returns the distinct coverage references in e, in first-seen order
// (left operand before right).
func Refs(e Expr) []CoverageRef {
	var refs []CoverageRef
	seen := map[string]bool{}
	walk(e, func(node Expr) {
		var ref CoverageRef
		switch n := node.(type) {
		case CoverageRef:
			ref = n
		case *CoverageRef:
			if n == nil {
				return
			}
			ref = *n
		default:
			return
		}
		key := bareName(ref.Variable)
		if !seen[key] {
			seen[key] = true
			refs = append(refs, ref)
		}
	})
	return refs
}

// walk visits every non-nil node depth-first, left before right.
func walk(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case BinaryOp:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case *BinaryOp:
		if n != nil {
			walk(n.Left, visit)
			walk(n.Right, visit)
		}
	}
}

func bareName(name string) string {
	if len(name) > 0 && name[0] == '$' {
		return name[1:]
	}
	return name
}
