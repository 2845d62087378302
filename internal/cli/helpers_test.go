package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/suiterun/internal/testutil"
)

const mathSource = `package test

module: "app.math": {
	kind: "library"
	defs: """
		#add: {x: int, y: int, out: x + y}
		double: [for n in [1, 2, 3] {n * 2}]
		"""
}

module: "app.math-test": {
	kind:     "tests"
	requires: ["app.math"]
	test: adds: [
		{is: "equal", actual: "(#add & {x: 1, y: 2}).out", expected: "3"},
	]
	test: doubles: [
		{is: "equal", actual: "double", expected: "[2, 4, 6]"},
	]
}
`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests.cue"), []byte(content), 0644))
	return dir
}

// failingBuild has one failing assertion out of three.
func failingBuild(t *testing.T) string {
	return testutil.NewBuildDir(t, testutil.MathLibrary(), testutil.MathTests())
}

// passingBuild has two passing assertions.
func passingBuild(t *testing.T) string {
	tests := testutil.MathTests()
	tests.Tests = tests.Tests[:1]
	return testutil.NewBuildDir(t, testutil.MathLibrary(), tests)
}

func missingBuild(t *testing.T) string {
	return filepath.Join(t.TempDir(), "nope")
}
