package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/suiterun/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string // history database path
	Limit int    // max runs listed
	Run   string // show one run in detail
}

// RunDetail is one recorded run with its cases and the changes since the
// previous run of the same bundle.
type RunDetail struct {
	Run      *store.Run     `json:"run"`
	Previous string         `json:"previous,omitempty"`
	Cases    []store.Case   `json:"cases"`
	Changes  []store.Change `json:"changes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded test runs",
		Long: `List runs recorded with "suiterun test --history", newest first.

With --run, show one run's cases and every case whose outcome changed
since the previous run of the same bundle.

Examples:
  suiterun history --db runs.db
  suiterun history --db runs.db --limit 5 --format table
  suiterun history --db runs.db --run 0190a6c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database path (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show a single run in detail")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(opts.DB); err != nil {
		return historyError(formatter, fmt.Errorf("history database not found: %s", opts.DB))
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return historyError(formatter, err)
	}
	defer st.Close()

	if opts.Run != "" {
		detail, err := loadRunDetail(ctx, st, opts.Run)
		if err != nil {
			return historyError(formatter, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(detail)
		}
		writeRunDetail(formatter.Writer, detail)
		return nil
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return historyError(formatter, err)
	}
	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	writeRunTable(formatter.Writer, runs)
	return nil
}

func loadRunDetail(ctx context.Context, st *store.Store, id string) (*RunDetail, error) {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	cases, err := st.RunCases(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &RunDetail{Run: run, Cases: cases, Changes: []store.Change{}}

	prev, err := st.PreviousRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		detail.Previous = prev.ID
		if detail.Changes, err = st.Changes(ctx, prev.ID, id); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func writeRunTable(w io.Writer, runs []store.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Started", "Bundle", "Tests", "Pass", "Fail", "Error", "Status"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			shortHash(r.BundleSHA256),
			r.Tests, r.Pass, r.Fail, r.Error,
			runStatus(r.Successful),
		})
	}
	t.Render()
}

func writeRunDetail(w io.Writer, d *RunDetail) {
	r := d.Run
	fmt.Fprintf(w, "Run %s (%s)\n", r.ID, runStatus(r.Successful))
	fmt.Fprintf(w, "  bundle:  %s\n", r.BundleID)
	fmt.Fprintf(w, "  sha256:  %s\n", r.BundleSHA256)
	fmt.Fprintf(w, "  started: %s\n\n", r.StartedAt.Format("2006-01-02 15:04:05"))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Module", "Test", "Outcome"})
	for _, c := range d.Cases {
		t.AppendRow(table.Row{c.Module, c.Name, strings.ToUpper(string(c.Outcome))})
	}
	t.Render()

	if d.Previous == "" {
		return
	}
	fmt.Fprintf(w, "\nChanges since %s:\n", d.Previous)
	if len(d.Changes) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, c := range d.Changes {
		from := string(c.From)
		if from == "" {
			from = "new"
		}
		fmt.Fprintf(w, "  %s/%s: %s -> %s\n", c.Module, c.Name, from, c.To)
	}
}

func historyError(formatter *OutputFormatter, err error) error {
	code := ErrCodeHistory
	if errors.Is(err, store.ErrRunNotFound) {
		code = ErrCodeNotFound
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func runStatus(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
