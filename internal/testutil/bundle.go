// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/ir"
)

// Default names of the native modules.
const (
	RuntimeModule   = ir.RuntimeModule
	FrameworkModule = ir.FrameworkModule
)

// StdModules returns the runtime and framework module declarations.
func StdModules() []bundle.Module {
	return []bundle.Module{
		{Name: RuntimeModule, Kind: bundle.KindRuntime, Version: ir.StdVersion},
		{Name: FrameworkModule, Kind: bundle.KindFramework, Version: ir.StdVersion},
	}
}

// MathLibrary is a small library module used across tests.
func MathLibrary() bundle.Module {
	return bundle.Module{
		Name: "app.math",
		Kind: bundle.KindLibrary,
		Defs: "#add: {x: int, y: int, out: x + y}\ndouble: [for n in [1, 2, 3] {n * 2}]",
	}
}

// MathTests is a tests module with one passing and one failing assertion.
func MathTests() bundle.Module {
	return bundle.Module{
		Name:     "app.math-test",
		Kind:     bundle.KindTests,
		Requires: []string{FrameworkModule, "app.math"},
		Tests: []bundle.Test{
			{
				Name: "adds",
				Assertions: []bundle.Assertion{
					{Is: bundle.IsEqual, Actual: "(#add & {x: 1, y: 2}).out", Expected: "3"},
					{Is: bundle.IsTrue, Expr: "len(double) == 3"},
				},
			},
			{
				Name: "doubles",
				Assertions: []bundle.Assertion{
					{Is: bundle.IsEqual, Actual: "double", Expected: "[2, 4, 7]"},
				},
			},
		},
	}
}

// WriteBuild writes f and a matching manifest into dir. A nil declared list
// declares every module in bundle order. Returns dir.
func WriteBuild(t testing.TB, dir string, f *bundle.File, declared []string) string {
	t.Helper()

	data, err := bundle.EncodeFile(f)
	if err != nil {
		t.Fatalf("encode bundle: %v", err)
	}
	hash, err := ir.BundleHash(data)
	if err != nil {
		t.Fatalf("hash bundle: %v", err)
	}
	if declared == nil {
		for _, m := range f.Modules {
			declared = append(declared, m.Name)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.json"), data, 0644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	m := &bundle.Manifest{
		Format:  ir.BundleFormat,
		Bundle:  "index.json",
		SHA256:  hash,
		Modules: declared,
	}
	if err := bundle.WriteManifest(filepath.Join(dir, bundle.ManifestFile), m); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

// NewBuildDir writes a build directory in a temp dir containing the
// standard modules followed by extra.
func NewBuildDir(t testing.TB, extra ...bundle.Module) string {
	t.Helper()
	f := &bundle.File{
		Format:  ir.BundleFormat,
		Modules: append(StdModules(), extra...),
	}
	return WriteBuild(t, filepath.Join(t.TempDir(), "test-bundle"), f, nil)
}
