package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/suiterun/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool       `json:"valid"`
	Modules int        `json:"modules"`
	Errors  []CLIError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <src-dir>",
		Short: "Check test sources without writing a bundle",
		Long: `Validate CUE test sources without writing a build directory.

Runs the same checks as compile, including linking and require cycle
detection, and reports every error found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, srcDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadSources(srcDir, compiler.LoadModeCollectAll)
	if len(loadErrors) > 0 {
		return outputValidationErrors(formatter, loadErrors)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, srcDir)
	return outputValidateSuccess(formatter, len(loadResult.File.Modules))
}

// outputValidateSuccess outputs successful validation result.
func outputValidateSuccess(formatter *OutputFormatter, modules int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Modules: modules})
	}

	fmt.Fprintf(formatter.Writer, "✓ All sources valid (%d module(s))\n", modules)
	return nil
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []error) error {
	headline := fmt.Sprintf("✗ Validation failed with %d error(s)", len(errs))
	err := formatter.Errors(headline, errs, func(list []CLIError) interface{} {
		return ValidationResult{Valid: false, Errors: list}
	})
	if err != nil {
		return err
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
