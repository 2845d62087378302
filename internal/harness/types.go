package harness

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/roach88/suiterun/internal/ir"
	"github.com/roach88/suiterun/internal/runtime"
	"github.com/roach88/suiterun/internal/suite"
)

// Step names one stage of a harness run.
type Step string

const (
	StepOpenContext      Step = "open-context"
	StepLoadBundle       Step = "load-bundle"
	StepResolveRuntime   Step = "resolve-runtime"
	StepResolveFramework Step = "resolve-framework"
	StepEnableConsole    Step = "enable-console"
	StepRequireAll       Step = "require-all"
	StepRunTests         Step = "run-tests"
	StepPrintResult      Step = "print-result"
)

// Steps lists every step in execution order.
var Steps = []Step{
	StepOpenContext,
	StepLoadBundle,
	StepResolveRuntime,
	StepResolveFramework,
	StepEnableConsole,
	StepRequireAll,
	StepRunTests,
	StepPrintResult,
}

// Defaults used by DefaultConfig.
const (
	DefaultRoot            = "target/test-bundle"
	DefaultRuntimeModule   = ir.RuntimeModule
	DefaultFrameworkModule = ir.FrameworkModule
)

// Config parameterizes a run.
type Config struct {
	// Root is the build output directory.
	Root string

	// BundleFile is resolved against Root. Empty, the default, uses the
	// bundle named by the manifest.
	BundleFile string

	RuntimeModule   string
	FrameworkModule string

	Console runtime.Console

	// Filter is a glob over tests module names. Empty runs everything.
	Filter string

	// OnStep, if set, is called as each step begins.
	OnStep func(Step)

	// OnCase, if set, is called as each test case completes.
	OnCase func(suite.CaseResult)
}

// DefaultConfig returns the fixed defaults: target/test-bundle, the bundle
// named by its manifest, suiterun.core, suiterun.test, text console on stdout.
func DefaultConfig() Config {
	return Config{
		Root:            DefaultRoot,
		RuntimeModule:   DefaultRuntimeModule,
		FrameworkModule: DefaultFrameworkModule,
		Console:         runtime.Console{Out: os.Stdout, Format: runtime.FormatText},
	}
}

// StepError reports the step at which a run failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Report is a completed run with the bundle it ran against.
type Report struct {
	Result *suite.Result

	BundleID   uuid.UUID
	BundleHash string

	// Loaded lists required modules in resolution order.
	Loaded []string
}
