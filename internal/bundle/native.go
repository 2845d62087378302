package bundle

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// CheckNative verifies that a module can be bound to a native
// implementation of the given kind and semver major (e.g. "v1").
func CheckNative(m *Module, kind Kind, major string) error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrIncompatible)
	}
	if m.Kind != kind {
		return &ModuleError{Name: m.Name, Err: fmt.Errorf("%w: kind %s, want %s", ErrIncompatible, m.Kind, kind)}
	}
	if !semver.IsValid(m.Version) {
		return &ModuleError{Name: m.Name, Err: fmt.Errorf("%w: invalid version %q", ErrIncompatible, m.Version)}
	}
	if got := semver.Major(m.Version); got != major {
		return &ModuleError{Name: m.Name, Err: fmt.Errorf("%w: version %s, harness supports %s.x", ErrIncompatible, m.Version, major)}
	}
	return nil
}
