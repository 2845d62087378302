package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/compiler"
	"github.com/roach88/suiterun/internal/harness"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // build directory
}

// CompilationResult summarizes a written bundle.
type CompilationResult struct {
	BuildDir string          `json:"build_dir"`
	SHA256   string          `json:"sha256"`
	Modules  []ModuleSummary `json:"modules"`
}

// ModuleSummary describes one compiled module.
type ModuleSummary struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Requires   []string `json:"requires,omitempty"`
	Tests      int      `json:"tests"`
	Assertions int      `json:"assertions"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <src-dir>",
		Short: "Compile CUE test sources into a test bundle",
		Long: `Compile CUE test sources into a build directory.

The compiler parses the CUE package, checks every module, links the
standard runtime and framework modules, and writes index.json plus a
manifest.yaml carrying the bundle hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", harness.DefaultRoot, "build directory")

	return cmd
}

func runCompile(opts *CompileOptions, srcDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadSources(srcDir, compiler.LoadModeCollectAll)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, srcDir)
	for _, m := range loadResult.File.Modules {
		formatter.VerboseLog("Compiled module: %s (%s)", m.Name, m.Kind)
	}

	manifest, err := compiler.Write(opts.Output, loadResult.File)
	if err != nil {
		return outputCompileError(formatter, ErrCodeWriteFailed, err.Error(), nil)
	}

	result := &CompilationResult{
		BuildDir: opts.Output,
		SHA256:   manifest.SHA256,
		Modules:  summarizeModules(loadResult.File),
	}
	return outputCompileSuccess(formatter, result)
}

func summarizeModules(f *bundle.File) []ModuleSummary {
	out := make([]ModuleSummary, 0, len(f.Modules))
	for _, m := range f.Modules {
		s := ModuleSummary{
			Name:     m.Name,
			Kind:     string(m.Kind),
			Requires: m.Requires,
			Tests:    len(m.Tests),
		}
		for _, t := range m.Tests {
			s.Assertions += len(t.Assertions)
		}
		out = append(out, s)
	}
	return out
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	tests := 0
	for _, m := range result.Modules {
		tests += m.Tests
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d module(s), %d test(s)\n\n", len(result.Modules), tests)

	fmt.Fprintln(formatter.Writer, "Modules:")
	for _, m := range result.Modules {
		if m.Kind == string(bundle.KindTests) {
			fmt.Fprintf(formatter.Writer, "  %s: %d test(s), %d assertion(s)\n", m.Name, m.Tests, m.Assertions)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", m.Name, m.Kind)
		}
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Wrote bundle to %s (sha256 %s)\n", result.BuildDir, result.SHA256)

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	err := formatter.Errors("✗ Compilation failed", errs, func(list []CLIError) interface{} { return list })
	if err != nil {
		return err
	}
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}
