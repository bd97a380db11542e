package compiler

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadFile compiles every plan declared under "plan" in a CUE file.
// Plans are returned sorted by name.
func LoadFile(path string) ([]PlanSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return LoadSource(path, data)
}

// LoadSource compiles every plan in src. filename is used in positions.
func LoadSource(filename string, src []byte) ([]PlanSpec, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	plansVal := value.LookupPath(cue.ParsePath("plan"))
	if !plansVal.Exists() {
		return nil, &CompileError{Field: "plan", Message: "no plans found in " + filename}
	}

	iter, err := plansVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []PlanSpec
	for iter.Next() {
		spec, err := CompilePlan(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("plan.%s: %w", iter.Label(), err)
		}
		specs = append(specs, *spec)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

// Find returns the plan with the given name. An empty name selects the
// only plan when there is exactly one.
func Find(specs []PlanSpec, name string) (*PlanSpec, error) {
	if name == "" {
		if len(specs) == 1 {
			return &specs[0], nil
		}
		return nil, fmt.Errorf("%d plans found, name one of them", len(specs))
	}
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i], nil
		}
	}
	return nil, fmt.Errorf("plan %q not found", name)
}
