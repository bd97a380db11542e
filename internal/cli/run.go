package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/datacube/internal/compiler"
	"github.com/roach88/datacube/internal/config"
	"github.com/roach88/datacube/internal/datacube"
	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/store"
	"github.com/roach88/datacube/internal/transport"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Plan      string
	Endpoint  string
	Timeout   string
	Insecure  bool
	Output    string // file for image payloads
	NoHistory bool
}

// RunResult is the outcome of one executed plan.
type RunResult struct {
	Plan   string    `json:"plan"`
	Query  string    `json:"query"`
	Format string    `json:"format,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Bytes  int       `json:"bytes,omitempty"`
	Output string    `json:"output,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <plans>",
		Short: "Execute a plan against a WCPS server",
		Long: `Build the query for one plan and post it to the configured WCPS endpoint.

Numeric results are printed one value per line. PNG and JPEG results are
written to the file named by --output. Every execution is recorded in the
history database unless --no-history is given or no history path is set.

Examples:
  datacube run plans.cue --plan avg_temp
  datacube run plans.cue --plan july_png -o july.png
  datacube run plans.cue --plan avg_temp --endpoint http://localhost:8080/rasdaman/ows`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Plan, "plan", "p", "", "plan to run (required when the file has several)")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "WCPS endpoint URL (overrides config)")
	cmd.Flags().StringVar(&opts.Timeout, "timeout", "", "request timeout, e.g. 30s (overrides config)")
	cmd.Flags().BoolVar(&opts.Insecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write image results to this file")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "do not record the execution")

	return cmd
}

// applyFlags layers explicitly set flags over the loaded config.
func (o *RunOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if o.Endpoint != "" {
		cfg.Endpoint = o.Endpoint
	}
	if o.Timeout != "" {
		if err := cfg.Timeout.UnmarshalText([]byte(o.Timeout)); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("insecure") {
		cfg.Insecure = o.Insecure
	}
	if o.NoHistory {
		cfg.History = ""
	}
	return cfg.Validate()
}

func runPlan(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	if err := opts.applyFlags(cmd, cfg); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
	}

	specs, err := LoadPlans(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	spec, err := selectOne(specs, opts.Plan)
	if err != nil {
		return loadFailure(formatter, err)
	}

	conn, err := transport.NewHTTPConnection(cfg.Endpoint, transport.Options{
		Timeout:            cfg.Timeout.Duration,
		InsecureSkipVerify: cfg.Insecure,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	logger := opts.logger(formatter.GetErrWriter(), cfg)
	dcOpts := []datacube.Option{datacube.WithLogger(logger)}

	if cfg.History != "" {
		st, err := openHistory(cfg.History)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
		}
		defer st.Close()
		dcOpts = append(dcOpts, datacube.WithRecorder(st))
		formatter.VerboseLog("Recording history in %s", cfg.History)
	}

	dc, err := datacube.New(conn, dcOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if err := dc.Apply(spec.Plan); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeQueryFailed, err.Error(), nil)
	}

	if spec.Plan.Format.IsImage() && opts.Output == "" {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag,
			fmt.Sprintf("plan %s returns %s data: --output is required", spec.Name, spec.Plan.Format), nil)
	}

	formatter.VerboseLog("Posting plan %s to %s", spec.Name, conn.URL())
	res, err := dc.Execute(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeQueryFailed, err.Error(), map[string]string{
			"code": string(ir.CodeOf(err)),
		})
	}

	result := RunResult{Plan: spec.Name, Query: res.Query, Format: res.Format.String()}
	if res.IsImage() {
		if err := os.WriteFile(opts.Output, res.Data, 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		result.Bytes = len(res.Data)
		result.Output = opts.Output
	} else {
		result.Values = res.Values
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Output != "" {
		fmt.Fprintf(w, "Wrote %d bytes to %s\n", result.Bytes, result.Output)
		return nil
	}
	for _, v := range result.Values {
		fmt.Fprintln(w, v)
	}
	return nil
}

// selectOne picks the named plan, or the only plan when no name is given.
func selectOne(specs []compiler.PlanSpec, name string) (*compiler.PlanSpec, error) {
	spec, err := compiler.Find(specs, name)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	return spec, nil
}

// openHistory opens the history database, creating its directory.
func openHistory(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return store.Open(path)
}
