// Package ir provides the plan types shared by every datacube package.
//
// A Plan is a snapshot of what a query builder has been told: declared
// coverage variables with their optional subsets, a filter, the stored
// return strategies and the output format. The querywcps compiler turns a
// Plan into WCPS text; the store hashes it; the CUE compiler and the test
// harness produce it.
//
// This package imports nothing internal, so it stays the bottom layer with
// no circular dependencies.
//
// Key design constraints:
//   - Variable names always carry the "$" sentinel inside a Plan
//   - Variables keep declaration order; a subset lives on its variable
//   - Return strategies are a sealed interface resolved by precedence in
//     exactly one place (Returns.Active)
//   - Plan hashes use canonical JSON, never encoding/json map ordering
package ir
