package datacube

import (
	"fmt"
	"strings"

	"github.com/roach88/datacube/internal/ir"
)

// Declare adds a variable ranging over one coverage.
// localName may be given with or without the "$" sentinel.
func (d *Datacube) Declare(coverage, localName string) error {
	return d.DeclareMulti(localName, coverage)
}

// DeclareMulti adds a variable ranging over several coverages, rendered as
// "$name in (A,B,...)". Declaring an existing name fails.
func (d *Datacube) DeclareMulti(localName string, coverages ...string) error {
	if len(coverages) == 0 {
		return &ir.QueryError{
			Code:    ir.ErrCodeInvalidArgument,
			Message: "at least one coverage is required",
			Name:    localName,
		}
	}
	for _, c := range coverages {
		if strings.TrimSpace(c) == "" {
			return &ir.QueryError{
				Code:    ir.ErrCodeInvalidArgument,
				Message: "coverage name must not be empty",
				Name:    localName,
			}
		}
	}

	name, err := ir.CanonicalName(localName)
	if err != nil {
		return err
	}
	return d.declare(ir.Variable{Name: name, Coverages: append([]string(nil), coverages...)})
}

func (d *Datacube) declare(v ir.Variable) error {
	if d.plan.Index(v.Name) >= 0 {
		return &ir.QueryError{
			Code:    ir.ErrCodeInvalidArgument,
			Message: "variable already declared",
			Name:    v.Name,
		}
	}
	d.plan.Variables = append(d.plan.Variables, v)
	return nil
}

// Subset binds a per-axis restriction to a declared variable, replacing
// any earlier one.
func (d *Datacube) Subset(subset, localName string) error {
	if strings.TrimSpace(subset) == "" {
		return &ir.QueryError{
			Code:    ir.ErrCodeInvalidArgument,
			Message: "subset must not be empty",
			Name:    localName,
		}
	}
	name, err := ir.CanonicalName(localName)
	if err != nil {
		return err
	}
	i := d.plan.Index(name)
	if i < 0 {
		return &ir.QueryError{
			Code:    ir.ErrCodeNotFound,
			Message: "no such variable",
			Name:    name,
		}
	}
	d.plan.Variables[i].Subset = &subset
	return nil
}

// SubsetNext binds subset to a new synthetic variable and returns its name.
// The name is "$result<N>", N being the next free position starting at
// len(variables)+1. Synthetic variables range over no coverage, so they get
// no "for" clause but appear in listings.
func (d *Datacube) SubsetNext(subset string) (string, error) {
	if strings.TrimSpace(subset) == "" {
		return "", &ir.QueryError{
			Code:    ir.ErrCodeInvalidArgument,
			Message: "subset must not be empty",
		}
	}
	name := d.nextSyntheticName()
	if err := d.declare(ir.Variable{Name: name, Subset: &subset}); err != nil {
		return "", err
	}
	return name, nil
}

func (d *Datacube) nextSyntheticName() string {
	for n := len(d.plan.Variables) + 1; ; n++ {
		name := fmt.Sprintf("%sresult%d", ir.Sentinel, n)
		if d.plan.Index(name) < 0 {
			return name
		}
	}
}

// ReferencedNames returns the distinct "$name" tokens in text in order of
// first appearance, or nil when there are none.
func (d *Datacube) ReferencedNames(text string) []string {
	return ir.ReferencedNames(text)
}

// AssertDeclared checks that text references at least one variable and
// that every referenced variable is declared.
func (d *Datacube) AssertDeclared(text string) error {
	names := ir.ReferencedNames(ir.CollapseWhitespace(text))
	if names == nil {
		return &ir.QueryError{
			Code:    ir.ErrCodeMissingReference,
			Message: fmt.Sprintf("expression %q references no variable", text),
		}
	}
	for _, n := range names {
		if d.plan.Index(n) < 0 {
			return &ir.QueryError{
				Code:    ir.ErrCodeUnknownVariable,
				Message: "expression references an undeclared variable",
				Name:    n,
			}
		}
	}
	return nil
}
