package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB        string
	Limit     int
	Failed    bool
	QueryHash string
	ShowQuery bool
	ID        string
}

// HistoryEntry is one execution as reported by the history command.
type HistoryEntry struct {
	ID         string `json:"id"`
	StartedAt  string `json:"started_at"`
	Duration   string `json:"duration"`
	Format     string `json:"format,omitempty"`
	StatusCode int    `json:"status_code"`
	BodySize   int    `json:"body_size"`
	ValueCount int    `json:"value_count"`
	QueryHash  string `json:"query_hash"`
	PlanHash   string `json:"plan_hash,omitempty"`
	Query      string `json:"query,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded query executions",
		Long: `List executions recorded by "datacube run", most recent first.

Response bodies are never stored; each entry holds the query text, its
hashes, the status code and the response size.

Examples:
  datacube history --limit 5
  datacube history --failed
  datacube history --db ./history.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (overrides config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of entries, 0 for all")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only failed executions")
	cmd.Flags().StringVar(&opts.QueryHash, "query-hash", "", "only executions of this query")
	cmd.Flags().BoolVar(&opts.ShowQuery, "query", false, "include query text in text output")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single execution")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	path := opts.DB
	if path == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
		}
		path = cfg.History
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, "no history database configured", nil)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("history database not found: %s", path), nil)
	}
	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "--limit must not be negative", nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}
	defer st.Close()

	if opts.ID != "" {
		return showExecution(formatter, st, cmd, opts.ID)
	}

	execs, err := st.ListExecutions(cmd.Context(), store.ListOptions{
		Limit:      opts.Limit,
		QueryHash:  opts.QueryHash,
		FailedOnly: opts.Failed,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	entries := make([]HistoryEntry, len(execs))
	for i, e := range execs {
		entries[i] = toHistoryEntry(e)
	}

	if formatter.IsJSON() {
		return formatter.Success(entries)
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "No executions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tFORMAT\tBYTES\tVALUES\tQUERY\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%s\t%s\n",
			e.ID, e.StartedAt, e.StatusCode, e.Format, e.BodySize, e.ValueCount, shortHash(e.QueryHash), e.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.ShowQuery {
		for _, e := range entries {
			fmt.Fprintf(w, "\n-- %s\n%s\n", e.ID, e.Query)
		}
	}
	return nil
}

func showExecution(formatter *OutputFormatter, st *store.Store, cmd *cobra.Command, id string) error {
	exec, err := st.ReadExecution(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no execution with id %s", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	entry := toHistoryEntry(exec)
	if formatter.IsJSON() {
		return formatter.Success(entry)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "ID:         %s\n", entry.ID)
	fmt.Fprintf(w, "Started:    %s (%s)\n", entry.StartedAt, entry.Duration)
	fmt.Fprintf(w, "Status:     %d\n", entry.StatusCode)
	fmt.Fprintf(w, "Format:     %s\n", entry.Format)
	fmt.Fprintf(w, "Bytes:      %d\n", entry.BodySize)
	fmt.Fprintf(w, "Values:     %d\n", entry.ValueCount)
	fmt.Fprintf(w, "Query hash: %s\n", entry.QueryHash)
	if entry.PlanHash != "" {
		fmt.Fprintf(w, "Plan hash:  %s\n", entry.PlanHash)
	}
	if entry.Error != "" {
		fmt.Fprintf(w, "Error:      %s\n", entry.Error)
	}
	fmt.Fprintf(w, "\n%s\n", entry.Query)
	return nil
}

func toHistoryEntry(e ir.Execution) HistoryEntry {
	return HistoryEntry{
		ID:         e.ID,
		StartedAt:  e.StartedAt.UTC().Format(time.RFC3339),
		Duration:   e.Duration.String(),
		Format:     e.Format.String(),
		StatusCode: e.StatusCode,
		BodySize:   e.BodySize,
		ValueCount: e.ValueCount,
		QueryHash:  e.QueryHash,
		PlanHash:   e.PlanHash,
		Query:      e.Query,
		Error:      e.Error,
	}
}
