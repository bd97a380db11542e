package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/datacube/internal/coverage"
)

// ConstructOptions holds flags for the construct command.
type ConstructOptions struct {
	*RootOptions
	Name   string
	Axes   []string // "name:lo:hi"
	Values string
}

// ConstructResult is the rendered coverage constructor.
type ConstructResult struct {
	Query string          `json:"query"`
	Axes  []coverage.Axis `json:"axes"`
}

// NewConstructCommand creates the construct command.
func NewConstructCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConstructOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "construct",
		Short: "Render a coverage constructor expression",
		Long: `Render a WCPS coverage constructor from a name, one or more axes and
a values expression.

Example:
  datacube construct --name test --axis px:0:255 --axis py:0:255 --values '$px + $py'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConstruct(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "coverage name")
	cmd.Flags().StringArrayVar(&opts.Axes, "axis", nil, "axis as name:lo:hi (repeatable)")
	cmd.Flags().StringVar(&opts.Values, "values", "", "values expression")

	return cmd
}

func runConstruct(opts *ConstructOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	c := coverage.New().SetName(opts.Name).SetValues(opts.Values)
	for _, spec := range opts.Axes {
		name, lo, hi, err := parseAxis(spec)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
		}
		if err := c.AddAxis(name, lo, hi); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
		}
	}

	query, err := c.Query()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
	}

	if formatter.IsJSON() {
		return formatter.Success(ConstructResult{Query: query, Axes: c.Axes()})
	}
	fmt.Fprintln(formatter.Writer, query)
	return nil
}

// parseAxis splits "name:lo:hi".
func parseAxis(spec string) (string, int, int, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid axis %q: expected name:lo:hi", spec)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid axis %q: start: %w", spec, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid axis %q: end: %w", spec, err)
	}
	return strings.TrimSpace(parts[0]), lo, hi, nil
}
