package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/suiterun/internal/ir"
)

// Kind is the role a module plays in the bundle.
type Kind string

const (
	KindRuntime   Kind = "runtime"
	KindFramework Kind = "framework"
	KindLibrary   Kind = "library"
	KindTests     Kind = "tests"
)

// Valid reports whether k is a known module kind.
func (k Kind) Valid() bool {
	switch k {
	case KindRuntime, KindFramework, KindLibrary, KindTests:
		return true
	}
	return false
}

// Assertion kinds understood by the test framework.
const (
	IsEqual = "equal"
	IsTrue  = "true"
	IsMatch = "match"
	IsError = "error"
)

// Assertion is a single check inside a test. Fields hold CUE expression
// source, except Pattern which is a regular expression.
type Assertion struct {
	Is       string `json:"is"`
	Actual   string `json:"actual,omitempty"`
	Expected string `json:"expected,omitempty"`
	Expr     string `json:"expr,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
}

// Validate checks that the fields required by the assertion kind are set.
func (a Assertion) Validate() error {
	switch a.Is {
	case IsEqual:
		if a.Actual == "" || a.Expected == "" {
			return fmt.Errorf("%q assertion requires actual and expected", a.Is)
		}
	case IsTrue, IsError:
		if a.Expr == "" {
			return fmt.Errorf("%q assertion requires expr", a.Is)
		}
	case IsMatch:
		if a.Actual == "" || a.Pattern == "" {
			return fmt.Errorf("%q assertion requires actual and pattern", a.Is)
		}
	default:
		return fmt.Errorf("unknown assertion kind %q", a.Is)
	}
	return nil
}

// Source returns the expression text used when reporting the assertion.
func (a Assertion) Source() string {
	switch a.Is {
	case IsEqual:
		return fmt.Sprintf("%s == %s", a.Actual, a.Expected)
	case IsMatch:
		return fmt.Sprintf("%s =~ %q", a.Actual, a.Pattern)
	case IsError:
		return fmt.Sprintf("fails(%s)", a.Expr)
	default:
		return a.Expr
	}
}

// Test is a named group of assertions.
type Test struct {
	Name       string      `json:"name"`
	Assertions []Assertion `json:"assertions,omitempty"`
}

// Module is one compiled unit in the bundle.
type Module struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Version  string   `json:"version,omitempty"`
	Requires []string `json:"requires,omitempty"`
	Defs     string   `json:"defs,omitempty"`
	Tests    []Test   `json:"tests,omitempty"`
}

// File is the on-disk bundle.
type File struct {
	Format  int      `json:"format"`
	Modules []Module `json:"modules,omitempty"`
}

// Validate checks structural invariants: known format and kinds, unique
// module names, unique test names per module, well-formed assertions.
// Unresolvable requires are left to Require.
func (f *File) Validate() error {
	if f.Format != ir.BundleFormat {
		return fmt.Errorf("%w: unsupported format %d", ErrBundleMalformed, f.Format)
	}
	seen := make(map[string]bool, len(f.Modules))
	for i, m := range f.Modules {
		if m.Name == "" {
			return fmt.Errorf("%w: module[%d] has no name", ErrBundleMalformed, i)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: duplicate module %q", ErrBundleMalformed, m.Name)
		}
		seen[m.Name] = true
		if !m.Kind.Valid() {
			return fmt.Errorf("%w: module %q has unknown kind %q", ErrBundleMalformed, m.Name, m.Kind)
		}
		if len(m.Tests) > 0 && m.Kind != KindTests {
			return fmt.Errorf("%w: module %q of kind %s declares tests", ErrBundleMalformed, m.Name, m.Kind)
		}
		if slices.Contains(m.Requires, m.Name) {
			return fmt.Errorf("%w: module %q requires itself", ErrBundleMalformed, m.Name)
		}
		tests := make(map[string]bool, len(m.Tests))
		for _, t := range m.Tests {
			if t.Name == "" || tests[t.Name] {
				return fmt.Errorf("%w: module %q has an empty or duplicate test name %q", ErrBundleMalformed, m.Name, t.Name)
			}
			tests[t.Name] = true
			for j, a := range t.Assertions {
				if err := a.Validate(); err != nil {
					return fmt.Errorf("%w: %s/%s assertion %d: %v", ErrBundleMalformed, m.Name, t.Name, j+1, err)
				}
			}
		}
	}
	return nil
}

// DecodeFile parses and validates bundle JSON. Unknown fields are rejected.
func DecodeFile(data []byte) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleMalformed, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// EncodeFile renders a bundle as indented JSON.
func EncodeFile(f *File) ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding bundle: %w", err)
	}
	return append(data, '\n'), nil
}
