package queryir

import (
	"fmt"
	"slices"

	"github.com/roach88/datacube/internal/ir"
)

// ValidationResult lists the problems found in an expression tree.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each defect, in traversal order.
	Problems []string
}

// Err returns nil for a valid result and an INVALID_ARGUMENT error
// summarizing the first problem otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ir.QueryError{
		Code:    ir.ErrCodeInvalidArgument,
		Message: fmt.Sprintf("invalid coverage expression: %s", r.Problems[0]),
	}
}

// Validate checks an expression tree before compilation:
//  1. No nil nodes or operands
//  2. Every CoverageRef has a well-formed variable name and a coverage
//  3. Every BinaryOp uses a supported operator
//  4. One variable never ranges over two different coverage lists
//
// Validate is a pure function with no side effects.
func Validate(e Expr) ValidationResult {
	v := &validator{coverages: map[string][]string{}}
	v.validateExpr(e)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems  []string
	coverages map[string][]string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateExpr(e Expr) {
	switch n := e.(type) {
	case nil:
		v.addProblem("nil expression node")
	case CoverageRef:
		v.validateRef(n)
	case *CoverageRef:
		if n == nil {
			v.addProblem("nil coverage reference")
			return
		}
		v.validateRef(*n)
	case Scalar:
		v.validateScalar(n)
	case *Scalar:
		if n == nil {
			v.addProblem("nil scalar")
			return
		}
		v.validateScalar(*n)
	case BinaryOp:
		v.validateBinary(n)
	case *BinaryOp:
		if n == nil {
			v.addProblem("nil binary operation")
			return
		}
		v.validateBinary(*n)
	default:
		v.addProblem("unknown expression type: %T", e)
	}
}

func (v *validator) validateRef(ref CoverageRef) {
	name, err := ir.CanonicalName(ref.Variable)
	if err != nil {
		v.addProblem("coverage reference %q: not an identifier", ref.Variable)
		return
	}
	if len(ref.Coverages) == 0 {
		v.addProblem("coverage reference %s: no coverage named", name)
		return
	}
	for _, c := range ref.Coverages {
		if c == "" {
			v.addProblem("coverage reference %s: empty coverage name", name)
			return
		}
	}
	if prev, ok := v.coverages[name]; ok {
		if !slices.Equal(prev, ref.Coverages) {
			v.addProblem("coverage reference %s: ranges over %v and %v", name, prev, ref.Coverages)
		}
		return
	}
	v.coverages[name] = ref.Coverages
}

func (v *validator) validateScalar(s Scalar) {
	if s.Text == "" {
		v.addProblem("empty scalar")
	}
}

func (v *validator) validateBinary(b BinaryOp) {
	if !b.Op.IsValid() {
		v.addProblem("unsupported operator %q", b.Op)
	}
	v.validateExpr(b.Left)
	v.validateExpr(b.Right)
}
