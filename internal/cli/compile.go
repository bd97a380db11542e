package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/datacube/internal/compiler"
	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/querywcps"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Plan   string // plan name, "" for all
	Output string // output file path
}

// CompiledPlan is one plan rendered as query text.
type CompiledPlan struct {
	Name     string `json:"name"`
	Query    string `json:"query"`
	PlanHash string `json:"plan_hash"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <plans>",
		Short: "Compile CUE plans to WCPS query text",
		Long: `Compile the query plans in a CUE file (or a directory of CUE files)
to WCPS query text, without contacting a server.

Examples:
  datacube compile plans.cue
  datacube compile plans.cue --plan ndvi -o ndvi.wcps
  datacube compile ./plans --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Plan, "plan", "p", "", "compile only the named plan")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write query text to a file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	specs, err := LoadPlans(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	specs, err = SelectPlans(specs, opts.Plan)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d plan(s) from %s", len(specs), path)

	compiled, err := compilePlans(specs, formatter)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(joinQueries(compiled)), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(compiled)
	}

	w := formatter.Writer
	for _, c := range compiled {
		fmt.Fprintf(w, "-- %s (%s)\n%s\n\n", c.Name, shortHash(c.PlanHash), c.Query)
	}
	if opts.Output != "" {
		fmt.Fprintf(w, "Wrote %d query(ies) to %s\n", len(compiled), opts.Output)
	}
	return nil
}

// compilePlans validates and serializes each plan. Any validation error
// fails the whole command.
func compilePlans(specs []compiler.PlanSpec, formatter *OutputFormatter) ([]CompiledPlan, error) {
	if errs := validatePlans(specs, formatter); len(errs) > 0 {
		return nil, outputValidationErrors(formatter, errs)
	}

	c := querywcps.NewCompiler()
	compiled := make([]CompiledPlan, 0, len(specs))
	for _, spec := range specs {
		formatter.VerboseLog("Compiling plan: %s", spec.Name)
		query, err := c.CompilePlan(spec.Plan)
		if err != nil {
			return nil, formatter.Fail(ExitFailure, ErrCodeQueryFailed, fmt.Sprintf("plan %s: %v", spec.Name, err), nil)
		}
		hash, err := ir.PlanHash(spec.Plan)
		if err != nil {
			return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		compiled = append(compiled, CompiledPlan{Name: spec.Name, Query: query, PlanHash: hash})
	}
	return compiled, nil
}

func joinQueries(compiled []CompiledPlan) string {
	var b strings.Builder
	for i, c := range compiled {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Query)
	}
	b.WriteString("\n")
	return b.String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
