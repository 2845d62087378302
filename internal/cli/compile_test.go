package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/compiler"
)

func TestCompile_ValidSources(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")

	stdout, _, err := execute(t, "compile", writeSource(t, mathSource), "-o", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Compiled 4 module(s), 2 test(s)")
	assert.Contains(t, stdout, "suiterun.core: runtime")
	assert.Contains(t, stdout, "app.math-test: 2 test(s), 2 assertion(s)")
	assert.Contains(t, stdout, "Wrote bundle to "+out)

	m, err := bundle.ReadManifest(filepath.Join(out, bundle.ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"suiterun.core", "suiterun.test", "app.math", "app.math-test"}, m.Modules)
}

func TestCompile_JSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")

	stdout, _, err := execute(t, "compile", "--format", "json", writeSource(t, mathSource), "-o", out)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, out, resp.Data.BuildDir)
	assert.Len(t, resp.Data.SHA256, 64)
	require.Len(t, resp.Data.Modules, 4)
	assert.Equal(t, []string{"suiterun.test", "app.math"}, resp.Data.Modules[3].Requires)
}

func TestCompile_ThenTest(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")

	_, _, err := execute(t, "compile", writeSource(t, mathSource), "-o", out)
	require.NoError(t, err)

	stdout, _, err := execute(t, "test", out)
	require.NoError(t, err)
	assert.Equal(t, "Ran 2 tests containing 2 assertions.\n0 failures, 0 errors.\n", stdout)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		dir      func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing directory",
			dir:      missingBuild,
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "no cue files",
			dir:      func(t *testing.T) string { return t.TempDir() },
			wantCode: ErrCodeNoFiles,
		},
		{
			name: "unknown kind",
			dir: func(t *testing.T) string {
				return writeSource(t, "package test\n\nmodule: a: {kind: \"plugin\"}\n")
			},
			wantCode: ErrCodeModuleKind,
		},
		{
			name: "unknown require",
			dir: func(t *testing.T) string {
				return writeSource(t, "package test\n\nmodule: a: {kind: \"library\", requires: [\"b\"]}\n")
			},
			wantCode: ErrCodeModuleRequires,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "build")
			stdout, _, err := execute(t, "compile", tt.dir(t), "-o", out)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "✗ Compilation failed")
			assert.Contains(t, stdout, tt.wantCode)
			assert.NoDirExists(t, out)
		})
	}
}

func TestCompile_ErrorsJSON(t *testing.T) {
	src := writeSource(t, `package test

module: a: {kind: "plugin"}
module: b: {}
`)
	stdout, _, err := execute(t, "compile", "--format", "json", src, "-o", filepath.Join(t.TempDir(), "build"))
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Error  CLIError   `json:"error"`
		Data   []CLIError `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, resp.Data[0], resp.Error)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"kind", ErrCodeModuleKind},
		{"defs", ErrCodeModuleDefs},
		{"requires", ErrCodeModuleRequires},
		{"module.a.requires", ErrCodeModuleRequires},
		{"test.adds[0]", ErrCodeAssertion},
		{"version", ErrCodeModuleField},
		{"module.a", ErrCodeDuplicate},
		{"load", ErrCodeLoadFailed},
		{"something", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}

func TestConvertLoadError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("%w: src", compiler.ErrSourceNotFound), ErrCodeNotFound},
		{"scan failure", fmt.Errorf("%w src: permission denied", compiler.ErrScanFailed), ErrCodeScanError},
		{"no files", fmt.Errorf("%w in src", compiler.ErrNoFiles), ErrCodeNoFiles},
		{"no modules", compiler.ErrNoModules, ErrCodeNoModules},
		{"malformed bundle", fmt.Errorf("%w: duplicate module", bundle.ErrBundleMalformed), ErrCodeBuildFailed},
		{"compile error", &compiler.CompileError{Field: "defs", Message: "expected '}'"}, ErrCodeModuleDefs},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertLoadError(tt.err).Code)
		})
	}
}
