// Package harness runs scripted builder scenarios for conformance tests.
//
// A scenario is a YAML file listing builder calls, an optional canned
// server response and the expected outcome:
//
//	name: png_subset
//	description: one variable with a subset, encoded as PNG
//	steps:
//	  - declare: {coverage: AvgLandTemp, name: c}
//	  - subset: {subset: 'ansi("2014-07")', name: c}
//	  - format: png
//	expect:
//	  query: "for $c in (AvgLandTemp)\nreturn\nencode($c[ansi(\"2014-07\")], \"image/png\")"
//
// Scenarios run against an in-memory transport and an in-memory history
// store, with a stepping clock, so the same scenario always produces the
// same result. RunWithGolden compares that result with a golden file.
package harness
