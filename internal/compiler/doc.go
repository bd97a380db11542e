// Package compiler turns query plans written in CUE into ir.Plan values.
//
// A plan file declares one or more named plans under "plan":
//
//	plan: july: {
//		variables: c: {coverages: ["AvgLandTemp"], subset: "ansi(\"2014-07\")"}
//		format: "png"
//	}
//
// Variables are kept in source order. The return fields (aggregate,
// encode, transform, switch) may all be present; the query renders the
// highest-precedence one.
package compiler
