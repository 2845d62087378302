// Package suite is the native test framework module.
//
// Tests modules are registered with a Framework by the harness; RunAll
// evaluates every registered test and returns a Result. Assertions are CUE
// expressions evaluated against the defs of the module and the library
// modules it requires.
package suite

import (
	"context"
	"errors"
	"fmt"
	"path"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/ir"
)

// ErrInternal wraps panics recovered while running tests.
var ErrInternal = errors.New("test framework internal failure")

// Option configures a Framework.
type Option func(*Framework)

// WithFilter restricts RunAll to modules whose name matches the glob
// (path.Match syntax). An empty pattern matches everything.
func WithFilter(pattern string) Option {
	return func(f *Framework) {
		f.filter = pattern
	}
}

// WithObserver calls fn with each case as soon as it completes, in run
// order. A panic in fn aborts RunAll with ErrInternal.
func WithObserver(fn func(CaseResult)) Option {
	return func(f *Framework) {
		f.observe = fn
	}
}

type registration struct {
	module *bundle.Module
	deps   []*bundle.Module
}

// Framework holds registered tests modules.
type Framework struct {
	module  *bundle.Module
	filter  string
	observe func(CaseResult)

	registered []registration
	seen       map[string]bool
}

// Bind binds the framework module from the bundle to this implementation.
func Bind(m *bundle.Module, opts ...Option) (*Framework, error) {
	if err := bundle.CheckNative(m, bundle.KindFramework, ir.FrameworkAPI); err != nil {
		return nil, err
	}
	f := &Framework{
		module: m,
		seen:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.filter != "" {
		if _, err := path.Match(f.filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", f.filter, err)
		}
	}
	return f, nil
}

// Module returns the bound framework module.
func (f *Framework) Module() *bundle.Module {
	return f.module
}

// Register adds a tests module and its resolved dependencies.
// Registering the same module twice is a no-op.
func (f *Framework) Register(m *bundle.Module, deps []*bundle.Module) error {
	if m.Kind != bundle.KindTests {
		return fmt.Errorf("register %q: kind %s is not %s", m.Name, m.Kind, bundle.KindTests)
	}
	if f.seen[m.Name] {
		return nil
	}
	f.seen[m.Name] = true
	f.registered = append(f.registered, registration{module: m, deps: deps})
	return nil
}

// Registered returns registered module names in registration order.
func (f *Framework) Registered() []string {
	names := make([]string, len(f.registered))
	for i, r := range f.registered {
		names[i] = r.module.Name
	}
	return names
}

// RunAll runs every registered test that passes the filter.
//
// Assertion problems are reported inside the Result. An error is returned only
// when ctx is done or the framework itself fails; no partial result is
// returned in that case.
func (f *Framework) RunAll(ctx context.Context) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	cctx := cuecontext.New()
	res = NewResult()
	for _, reg := range f.registered {
		if !f.matches(reg.module.Name) {
			continue
		}
		ev := newEvaluator(cctx, reg.module, reg.deps)
		for _, t := range reg.module.Tests {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res.add(runTest(ev, reg.module.Name, t))
			if f.observe != nil {
				f.observe(res.Cases[len(res.Cases)-1])
			}
		}
	}
	return res, nil
}

func (f *Framework) matches(name string) bool {
	if f.filter == "" {
		return true
	}
	ok, _ := path.Match(f.filter, name)
	return ok
}

func runTest(ev *evaluator, module string, t bundle.Test) CaseResult {
	c := CaseResult{
		Module:     module,
		Name:       t.Name,
		Assertions: make([]AssertionResult, 0, len(t.Assertions)),
	}
	for i, a := range t.Assertions {
		c.Assertions = append(c.Assertions, ev.check(i+1, a))
	}
	return c
}

