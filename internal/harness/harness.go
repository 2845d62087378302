package harness

import (
	"context"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/ctxlog"
	"github.com/roach88/suiterun/internal/runtime"
	"github.com/roach88/suiterun/internal/suite"
)

// Run executes every step and returns the printed result.
// On failure it returns a *StepError and prints nothing.
func Run(ctx context.Context, cfg Config) (*suite.Result, error) {
	rep, err := Execute(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return rep.Result, nil
}

// Execute is Run, returning the bundle identity alongside the result.
func Execute(ctx context.Context, cfg Config) (*Report, error) {
	log := ctxlog.FromContext(ctx)
	begin := func(s Step) {
		log.Debug("harness step", "step", s)
		if cfg.OnStep != nil {
			cfg.OnStep(s)
		}
	}
	fail := func(s Step, err error) (*Report, error) {
		log.Debug("harness step failed", "step", s, "error", err)
		return nil, &StepError{Step: s, Err: err}
	}

	begin(StepOpenContext)
	bctx, err := bundle.Open(cfg.Root)
	if err != nil {
		return fail(StepOpenContext, err)
	}

	begin(StepLoadBundle)
	if err := bctx.Load(cfg.BundleFile); err != nil {
		return fail(StepLoadBundle, err)
	}
	log.Debug("bundle loaded",
		"id", bctx.BundleID(),
		"sha256", bctx.Hash(),
		"modules", len(bctx.Modules()),
		"declared", len(bctx.Declared()))

	begin(StepResolveRuntime)
	rt, err := resolveRuntime(bctx, cfg.RuntimeModule)
	if err != nil {
		return fail(StepResolveRuntime, err)
	}

	begin(StepResolveFramework)
	fw, err := resolveFramework(bctx, cfg)
	if err != nil {
		return fail(StepResolveFramework, err)
	}

	begin(StepEnableConsole)
	printer, err := rt.EnableConsole(cfg.Console)
	if err != nil {
		return fail(StepEnableConsole, err)
	}

	begin(StepRequireAll)
	if err := requireAll(bctx, fw); err != nil {
		return fail(StepRequireAll, err)
	}
	log.Debug("modules resolved", "loaded", bctx.Loaded(), "registered", fw.Registered())

	begin(StepRunTests)
	res, err := fw.RunAll(ctx)
	if err != nil {
		return fail(StepRunTests, err)
	}

	begin(StepPrintResult)
	if err := printer.Print(res); err != nil {
		return fail(StepPrintResult, err)
	}

	return &Report{
		Result:     res,
		BundleID:   bctx.BundleID(),
		BundleHash: bctx.Hash(),
		Loaded:     bctx.Loaded(),
	}, nil
}

func resolveRuntime(bctx *bundle.Context, name string) (*runtime.Runtime, error) {
	m, err := bctx.Require(name)
	if err != nil {
		return nil, err
	}
	return runtime.Bind(m)
}

func resolveFramework(bctx *bundle.Context, cfg Config) (*suite.Framework, error) {
	m, err := bctx.Require(cfg.FrameworkModule)
	if err != nil {
		return nil, err
	}
	var opts []suite.Option
	if cfg.Filter != "" {
		opts = append(opts, suite.WithFilter(cfg.Filter))
	}
	if cfg.OnCase != nil {
		opts = append(opts, suite.WithObserver(cfg.OnCase))
	}
	return suite.Bind(m, opts...)
}

// requireAll requires each declared module in manifest order and registers
// tests modules with their resolved dependencies.
func requireAll(bctx *bundle.Context, fw *suite.Framework) error {
	for _, name := range bctx.Declared() {
		m, err := bctx.Require(name)
		if err != nil {
			return err
		}
		if m.Kind != bundle.KindTests {
			continue
		}
		deps, err := bctx.Deps(name)
		if err != nil {
			return err
		}
		if err := fw.Register(m, deps); err != nil {
			return err
		}
	}
	return nil
}
