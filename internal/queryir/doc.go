// Package queryir provides a small expression tree for coverage algebra.
//
// Callers combine coverages with ordinary constructor functions instead of
// building text by hand:
//
//	sum := queryir.Add(queryir.Ref("a", "AvgLandTemp"), queryir.Ref("b", "AvgLandTemp"))
//	scaled := queryir.Mul(sum, queryir.Num(0.5))
//
// A separate pass (package querywcps) walks the tree and renders WCPS text,
// including the "for" clauses for every coverage the tree references.
//
// SEALED INTERFACE:
//
// Expr is sealed with a marker method. Only CoverageRef, Scalar and
// BinaryOp implement it, so type switches in the compiler are exhaustive:
//
//	switch e := expr.(type) {
//	case CoverageRef:
//	case Scalar:
//	case BinaryOp:
//	}
//
// Pointer forms (*CoverageRef, ...) are accepted everywhere a value is.
package queryir
