package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/ir"
)

// StdModules returns the runtime and framework modules the compiler
// declares when sources do not.
func StdModules() []bundle.Module {
	return []bundle.Module{
		{Name: ir.RuntimeModule, Kind: bundle.KindRuntime, Version: ir.StdVersion},
		{Name: ir.FrameworkModule, Kind: bundle.KindFramework, Version: ir.StdVersion},
	}
}

// Link assembles compiled modules into a bundle file. It adds the standard
// modules, makes every tests module require the framework, and checks that
// requires resolve without cycles. All problems found are returned.
func Link(modules []bundle.Module) (*bundle.File, []error) {
	var errs []error

	declared := make(map[string]bool, len(modules))
	for _, m := range modules {
		if declared[m.Name] {
			errs = append(errs, &CompileError{Field: "module." + m.Name, Message: "declared more than once"})
		}
		declared[m.Name] = true
	}

	var out []bundle.Module
	for _, std := range StdModules() {
		if !declared[std.Name] {
			out = append(out, std)
			declared[std.Name] = true
		}
	}

	for _, m := range modules {
		if m.Kind == bundle.KindTests && !slices.Contains(m.Requires, ir.FrameworkModule) {
			m.Requires = append([]string{ir.FrameworkModule}, m.Requires...)
		}
		out = append(out, m)
	}

	for _, m := range out {
		for _, dep := range m.Requires {
			if !declared[dep] {
				errs = append(errs, &CompileError{
					Field:   fmt.Sprintf("module.%s.requires", m.Name),
					Message: fmt.Sprintf("unknown module %q", dep),
				})
			}
		}
	}

	for _, path := range findRequireCycles(out) {
		errs = append(errs, cycleError(path))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	f := &bundle.File{Format: ir.BundleFormat, Modules: out}
	if err := f.Validate(); err != nil {
		return nil, []error{err}
	}
	return f, nil
}
