package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindScenarios returns the scenario files under root, sorted by path.
// A file path is returned as-is; a directory is walked for *.yaml and
// *.yml files. A non-empty filter is a glob matched against the file name
// without extension.
func FindScenarios(root, filter string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access scenarios: %w", err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<name>.golden.
func GoldenPath(scenarioPath, name string) string {
	return filepath.Join(filepath.Dir(scenarioPath), "golden", name+".golden")
}

// SuiteOptions controls RunSuite.
type SuiteOptions struct {
	// Update rewrites golden files instead of comparing them.
	Update bool
}

// SuiteResult summarizes a run over several scenario files.
type SuiteResult struct {
	Total     int               `json:"total"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Scenarios []ScenarioOutcome `json:"scenarios"`
}

// ScenarioOutcome is the result of one scenario file.
type ScenarioOutcome struct {
	Path   string   `json:"path"`
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "" when absent
	Errors []string `json:"errors,omitempty"`
}

// OK reports whether every scenario passed.
func (r *SuiteResult) OK() bool {
	return r.Failed == 0
}

// Failures returns the scenarios that did not pass.
func (r *SuiteResult) Failures() []ScenarioOutcome {
	var failed []ScenarioOutcome
	for _, s := range r.Scenarios {
		if !s.Pass {
			failed = append(failed, s)
		}
	}
	return failed
}

func (r *SuiteResult) add(o ScenarioOutcome) {
	r.Total++
	if o.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
	r.Scenarios = append(r.Scenarios, o)
}

// RunSuite loads and runs every scenario in paths.
//
// For each path:
// 1. Load the scenario
// 2. Run it via harness.Run
// 3. Compare (or rewrite) its golden file when one exists
// 4. Collect and report results
//
// A scenario that fails to load counts as a failure; the suite keeps going.
func RunSuite(ctx context.Context, paths []string, opts SuiteOptions) *SuiteResult {
	result := &SuiteResult{Scenarios: []ScenarioOutcome{}}

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		result.add(runOne(path, opts))
	}

	return result
}

func runOne(path string, opts SuiteOptions) ScenarioOutcome {
	outcome := ScenarioOutcome{Path: path, Name: filepath.Base(path)}
	fail := func(format string, args ...any) ScenarioOutcome {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf(format, args...))
		return outcome
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		return fail("failed to load scenario: %v", err)
	}
	outcome.Name = scenario.Name

	runResult, err := Run(scenario)
	if err != nil {
		return fail("scenario execution failed: %v", err)
	}
	outcome.Errors = append(outcome.Errors, runResult.Errors...)

	golden, err := checkGolden(GoldenPath(path, scenario.Name), NewSnapshot(scenario.Name, scenario.Execute, runResult), opts.Update)
	outcome.Golden = golden
	if err != nil {
		outcome.Errors = append(outcome.Errors, err.Error())
	}

	outcome.Pass = len(outcome.Errors) == 0
	return outcome
}

// checkGolden compares the snapshot with the golden file at path, or
// rewrites it when update is set. A missing golden file is not an error.
func checkGolden(path string, snapshot Snapshot, update bool) (string, error) {
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write golden file: %w", err)
		}
		return "updated", nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, data) {
		return "", fmt.Errorf("snapshot does not match %s (run with --update to regenerate)", path)
	}
	return "match", nil
}
