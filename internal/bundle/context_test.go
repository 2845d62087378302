package bundle_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/ir"
	"github.com/roach88/suiterun/internal/testutil"
)

func openLoaded(t *testing.T, root string) *bundle.Context {
	t.Helper()
	ctx, err := bundle.Open(root)
	require.NoError(t, err)
	require.NoError(t, ctx.Load(""))
	return ctx
}

func writeModules(t *testing.T, modules ...bundle.Module) string {
	t.Helper()
	f := &bundle.File{Format: ir.BundleFormat, Modules: modules}
	return testutil.WriteBuild(t, filepath.Join(t.TempDir(), "test-bundle"), f, nil)
}

func TestOpen(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := bundle.Open(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, bundle.ErrBundleNotFound)
	})

	t.Run("not a directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		_, err := bundle.Open(path)
		assert.ErrorIs(t, err, bundle.ErrBundleNotFound)
	})

	t.Run("missing manifest", func(t *testing.T) {
		_, err := bundle.Open(t.TempDir())
		assert.ErrorIs(t, err, bundle.ErrBundleNotFound)
	})

	t.Run("unknown manifest field", func(t *testing.T) {
		dir := t.TempDir()
		data := "format: 1\nbundle: index.json\nmodules: []\nextra: true\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, bundle.ManifestFile), []byte(data), 0644))
		_, err := bundle.Open(dir)
		assert.ErrorIs(t, err, bundle.ErrManifestInvalid)
	})

	t.Run("unsupported format", func(t *testing.T) {
		dir := t.TempDir()
		data := "format: 9\nbundle: index.json\nmodules: []\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, bundle.ManifestFile), []byte(data), 0644))
		_, err := bundle.Open(dir)
		assert.ErrorIs(t, err, bundle.ErrManifestInvalid)
	})

	t.Run("valid", func(t *testing.T) {
		root := testutil.NewBuildDir(t)
		ctx, err := bundle.Open(root)
		require.NoError(t, err)
		assert.Equal(t, root, ctx.Root())
		assert.Equal(t, "index.json", ctx.Manifest().Bundle)
		assert.Equal(t, []string{testutil.RuntimeModule, testutil.FrameworkModule}, ctx.Declared())
	})
}

func TestLoad(t *testing.T) {
	root := testutil.NewBuildDir(t, testutil.MathLibrary(), testutil.MathTests())

	ctx, err := bundle.Open(root)
	require.NoError(t, err)

	_, err = ctx.Require(testutil.RuntimeModule)
	assert.ErrorIs(t, err, bundle.ErrNotLoaded)
	assert.Equal(t, uuid.Nil, ctx.BundleID())

	require.NoError(t, ctx.Load("index.json"))
	assert.Equal(t, []string{"suiterun.core", "suiterun.test", "app.math", "app.math-test"}, ctx.Modules())
	assert.Len(t, ctx.Hash(), 64)
	assert.Equal(t, ctx.Manifest().SHA256, ctx.Hash())
	assert.Equal(t, uuid.Version(5), ctx.BundleID().Version()) // SHA1 name-based
	assert.Empty(t, ctx.Loaded())

	err = ctx.Load("")
	assert.ErrorIs(t, err, bundle.ErrAlreadyLoaded)
}

func TestLoadMissingFile(t *testing.T) {
	ctx, err := bundle.Open(testutil.NewBuildDir(t))
	require.NoError(t, err)

	err = ctx.Load("other.json")
	assert.ErrorIs(t, err, bundle.ErrBundleNotFound)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"not json", "{", bundle.ErrBundleMalformed},
		{"float", `{"format": 1.5}`, bundle.ErrBundleMalformed},
		{"unknown field", `{"format": 1, "extra": 1}`, bundle.ErrBundleMalformed},
		{"bad kind", `{"format": 1, "modules": [{"name": "x", "kind": "plugin"}]}`, bundle.ErrBundleMalformed},
		{"duplicate", `{"format": 1, "modules": [{"name": "x", "kind": "library"}, {"name": "x", "kind": "library"}]}`, bundle.ErrBundleMalformed},
		{"tests on library", `{"format": 1, "modules": [{"name": "x", "kind": "library", "tests": [{"name": "t"}]}]}`, bundle.ErrBundleMalformed},
		{"bad assertion", `{"format": 1, "modules": [{"name": "x", "kind": "tests", "tests": [{"name": "t", "assertions": [{"is": "equal", "actual": "1"}]}]}]}`, bundle.ErrBundleMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte(tt.content), 0644))
			m := &bundle.Manifest{Format: ir.BundleFormat, Bundle: "index.json"}
			require.NoError(t, bundle.WriteManifest(filepath.Join(dir, bundle.ManifestFile), m))

			ctx, err := bundle.Open(dir)
			require.NoError(t, err)
			err = ctx.Load("")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequire(t *testing.T) {
	ctx := openLoaded(t, testutil.NewBuildDir(t, testutil.MathLibrary(), testutil.MathTests()))

	m, err := ctx.Require("app.math-test")
	require.NoError(t, err)
	assert.Equal(t, bundle.KindTests, m.Kind)
	assert.Equal(t, []string{"suiterun.test", "app.math", "app.math-test"}, ctx.Loaded())

	// idempotent
	_, err = ctx.Require("app.math-test")
	require.NoError(t, err)
	assert.Len(t, ctx.Loaded(), 3)

	deps, err := ctx.Deps("app.math-test")
	require.NoError(t, err)
	var names []string
	for _, d := range deps {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"suiterun.test", "app.math"}, names)

	_, err = ctx.Deps("suiterun.core")
	assert.Error(t, err)
}

func TestRequireNotFound(t *testing.T) {
	ctx := openLoaded(t, writeModules(t,
		bundle.Module{Name: "a", Kind: bundle.KindLibrary, Requires: []string{"missing"}},
	))

	_, err := ctx.Require("nope")
	assert.ErrorIs(t, err, bundle.ErrModuleNotFound)

	_, err = ctx.Require("a")
	require.ErrorIs(t, err, bundle.ErrModuleNotFound)
	var me *bundle.ModuleError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "missing", me.Name)
	assert.Equal(t, "a", me.RequiredBy)
	assert.Empty(t, ctx.Loaded())
}

func TestRequireCycle(t *testing.T) {
	ctx := openLoaded(t, writeModules(t,
		bundle.Module{Name: "a", Kind: bundle.KindLibrary, Requires: []string{"b"}},
		bundle.Module{Name: "b", Kind: bundle.KindLibrary, Requires: []string{"c"}},
		bundle.Module{Name: "c", Kind: bundle.KindLibrary, Requires: []string{"a"}},
	))

	_, err := ctx.Require("a")
	require.ErrorIs(t, err, bundle.ErrRequireCycle)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
}

func TestCheckNative(t *testing.T) {
	tests := []struct {
		name    string
		module  *bundle.Module
		wantErr bool
	}{
		{"compatible", &bundle.Module{Name: "core", Kind: bundle.KindRuntime, Version: "v1.9.0"}, false},
		{"prerelease", &bundle.Module{Name: "core", Kind: bundle.KindRuntime, Version: "v1.0.0-rc.1"}, false},
		{"nil", nil, true},
		{"kind", &bundle.Module{Name: "core", Kind: bundle.KindLibrary, Version: "v1.0.0"}, true},
		{"missing version", &bundle.Module{Name: "core", Kind: bundle.KindRuntime}, true},
		{"major", &bundle.Module{Name: "core", Kind: bundle.KindRuntime, Version: "v0.9.0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bundle.CheckNative(tt.module, bundle.KindRuntime, "v1")
			if tt.wantErr {
				assert.ErrorIs(t, err, bundle.ErrIncompatible)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
