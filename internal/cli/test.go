package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/suiterun/internal/ctxlog"
	"github.com/roach88/suiterun/internal/harness"
	"github.com/roach88/suiterun/internal/runtime"
	"github.com/roach88/suiterun/internal/store"
	"github.com/roach88/suiterun/internal/suite"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	BundleFile      string
	RuntimeModule   string
	FrameworkModule string
	Filter          string // glob over tests module names
	History         string // history database path
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [build-dir]",
		Short: "Run every test in a compiled bundle",
		Long: `Run the test harness against a build directory.

Opens the build directory, loads the bundle, resolves the runtime and
framework modules, enables the console, requires every declared module,
runs all registered tests and prints the result.

Exit codes:
  0 - All assertions passed
  1 - One or more assertions failed or errored
  2 - Harness error (missing bundle, unresolved module, etc.)

Examples:
  suiterun test
  suiterun test ./target/test-bundle --filter "app.*"
  suiterun test --format json
  suiterun test --history runs.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := harness.DefaultRoot
			if len(args) == 1 {
				root = args[0]
			}
			return runTests(opts, root, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BundleFile, "bundle", "", "bundle file within the build directory (default: the manifest's bundle)")
	cmd.Flags().StringVar(&opts.RuntimeModule, "runtime-module", harness.DefaultRuntimeModule, "runtime module name")
	cmd.Flags().StringVar(&opts.FrameworkModule, "framework-module", harness.DefaultFrameworkModule, "test framework module name")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only tests modules matching a glob pattern")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in a history database")

	return cmd
}

func runTests(opts *TestOptions, root string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = withLogger(ctx, opts.RootOptions, cmd.ErrOrStderr())

	log := ctxlog.FromContext(ctx)
	logCase := func(c suite.CaseResult) {
		log.Debug("case finished", "module", c.Module, "test", c.Name, "outcome", c.Outcome)
	}

	cfg := harness.Config{
		Root:            root,
		BundleFile:      opts.BundleFile,
		RuntimeModule:   opts.RuntimeModule,
		FrameworkModule: opts.FrameworkModule,
		Console:         runtime.Console{Out: cmd.OutOrStdout(), Format: opts.Format},
		Filter:          opts.Filter,
		OnCase:          logCase,
	}

	rep, err := harness.Execute(ctx, cfg)
	if err != nil {
		// The harness printed nothing; report on stderr only.
		return WrapExitError(ExitCommandError, MapHarnessErrorCode(err), err)
	}

	if opts.History != "" {
		if err := recordHistory(ctx, opts.History, rep); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeHistory, err)
		}
	}

	res := rep.Result
	if !res.Successful() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d failures, %d errors", res.Fail, res.Error))
	}
	return nil
}

// recordHistory stores the run and logs cases whose outcome changed since
// the previous run of the same bundle.
func recordHistory(ctx context.Context, path string, rep *harness.Report) error {
	log := ctxlog.FromContext(ctx)

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.RecordRun(ctx, rep.BundleID, rep.BundleHash, rep.Result)
	if err != nil {
		return err
	}
	log.Info("run recorded", "run", run.ID, "db", path)

	prev, err := st.PreviousRun(ctx, run.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return nil
	}
	changes, err := st.Changes(ctx, prev.ID, run.ID)
	if err != nil {
		return err
	}
	for _, c := range changes {
		from := string(c.From)
		if from == "" {
			from = "new"
		}
		log.Info("outcome changed", "module", c.Module, "test", c.Name, "from", from, "to", c.To)
	}
	return nil
}
