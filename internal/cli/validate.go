package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/datacube/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Plans  int                        `json:"plans"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plans>",
		Short: "Check plan name resolution without compiling",
		Long: `Validate the query plans in a CUE file (or a directory of CUE files).

Reports every duplicate variable, empty coverage and unresolved variable
reference at once, instead of stopping at the first one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	specs, err := LoadPlans(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	if errs := validatePlans(specs, formatter); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Plans: len(specs)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d plan(s) valid\n", len(specs))
	return nil
}

// validatePlans validates every plan, qualifying fields with the plan name
// (e.g. "plan.ndvi.where").
func validatePlans(specs []compiler.PlanSpec, formatter *OutputFormatter) []compiler.ValidationError {
	var errs []compiler.ValidationError
	for i := range specs {
		formatter.VerboseLog("Validating plan: %s", specs[i].Name)
		for _, e := range compiler.Validate(&specs[i]) {
			e.Field = "plan." + specs[i].Name + "." + e.Field
			errs = append(errs, e)
		}
	}
	return errs
}

// outputValidationErrors reports every validation error. Validation
// failures exit with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.IsJSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, e := range errs {
			fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
