package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/token"

	"github.com/roach88/datacube/internal/compiler"
)

// LoadError represents an error that occurred while loading plan files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadPlans compiles the plans in a CUE file, or in every CUE file of a
// directory. Plans are returned sorted by name; a name defined in two
// files is an error.
func LoadPlans(path string) ([]compiler.PlanSpec, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("plan path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing plan path: %v", err)}
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	}

	var specs []compiler.PlanSpec
	origin := map[string]string{}
	for _, file := range files {
		loaded, err := compiler.LoadFile(file)
		if err != nil {
			return nil, toLoadError(err)
		}
		for _, spec := range loaded {
			if prev, dup := origin[spec.Name]; dup {
				return nil, &LoadError{
					Code:    ErrCodeDuplicate,
					Message: fmt.Sprintf("plan %q defined in both %s and %s", spec.Name, prev, file),
				}
			}
			origin[spec.Name] = file
			specs = append(specs, spec)
		}
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

// SelectPlans narrows specs to the named plan, or returns all of them when
// name is empty.
func SelectPlans(specs []compiler.PlanSpec, name string) ([]compiler.PlanSpec, error) {
	if name == "" {
		return specs, nil
	}
	spec, err := compiler.Find(specs, name)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	return []compiler.PlanSpec{*spec}, nil
}

// FindCUEFiles returns the .cue files directly inside dir, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func toLoadError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Pos: compileErr.Pos}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// loadFailure reports a load error through the formatter.
func loadFailure(f *OutputFormatter, err error) error {
	loadErr := toLoadError(err)
	return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
}
