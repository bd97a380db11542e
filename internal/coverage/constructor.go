// Package coverage renders WCPS coverage constructor expressions.
//
//	coverage GreyMatrix
//	over $px 0 : 255,
//	$py 0 : 255,
//	values (($px + $py) / 2)
package coverage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/datacube/internal/ir"
)

var (
	// ErrNoName is returned by Query when no coverage name is set.
	ErrNoName = errors.New("coverage name is not set")

	// ErrNoAxes is returned by Query when no axis was added.
	ErrNoAxes = errors.New("no axes are added")

	// ErrNoValues is returned by Query when no values expression is set.
	ErrNoValues = errors.New("values expression is not set")
)

// Axis is one iteration variable with its integer extent.
type Axis struct {
	Name string `json:"name" yaml:"name"`
	Lo   int    `json:"lo" yaml:"lo"`
	Hi   int    `json:"hi" yaml:"hi"`
}

// Constructor collects the parts of a coverage constructor.
type Constructor struct {
	name   string
	axes   []Axis
	values string
}

// New creates an empty constructor.
func New() *Constructor {
	return &Constructor{}
}

// SetName sets the name of the constructed coverage.
func (c *Constructor) SetName(name string) *Constructor {
	c.name = name
	return c
}

// AddAxis appends an axis iterating over lo..hi. lo must be less than hi.
func (c *Constructor) AddAxis(name string, lo, hi int) error {
	bare := strings.TrimPrefix(name, ir.Sentinel)
	if _, err := ir.CanonicalName(bare); err != nil {
		return fmt.Errorf("axis %q: %w", name, err)
	}
	if lo >= hi {
		return fmt.Errorf("axis %q: start %d must be less than end %d", name, lo, hi)
	}
	c.axes = append(c.axes, Axis{Name: bare, Lo: lo, Hi: hi})
	return nil
}

// SetValues sets the expression computing each cell value.
func (c *Constructor) SetValues(expr string) *Constructor {
	c.values = expr
	return c
}

// Axes returns a copy of the axes in insertion order.
func (c *Constructor) Axes() []Axis {
	return append([]Axis(nil), c.axes...)
}

// Reset clears the name, axes and values.
func (c *Constructor) Reset() *Constructor {
	*c = Constructor{}
	return c
}

// Query renders the constructor text.
func (c *Constructor) Query() (string, error) {
	switch {
	case c.name == "":
		return "", ErrNoName
	case len(c.axes) == 0:
		return "", ErrNoAxes
	case c.values == "":
		return "", ErrNoValues
	}

	var b strings.Builder
	fmt.Fprintf(&b, "coverage %s\nover ", c.name)
	for _, a := range c.axes {
		fmt.Fprintf(&b, "%s%s %d : %d,\n", ir.Sentinel, a.Name, a.Lo, a.Hi)
	}
	fmt.Fprintf(&b, "values (%s)", c.values)
	return b.String(), nil
}
