package bundle

import (
	"errors"
	"fmt"
)

var (
	// ErrBundleNotFound is returned when the build directory, manifest or
	// bundle file does not exist.
	ErrBundleNotFound = errors.New("bundle not found")

	// ErrManifestInvalid is returned for unreadable or inconsistent manifests.
	ErrManifestInvalid = errors.New("invalid manifest")

	// ErrBundleMalformed is returned when the bundle cannot be decoded or fails validation.
	ErrBundleMalformed = errors.New("malformed bundle")

	// ErrHashMismatch is returned when the bundle does not match the manifest hash.
	ErrHashMismatch = errors.New("bundle hash mismatch")

	ErrAlreadyLoaded = errors.New("bundle already loaded")
	ErrNotLoaded     = errors.New("no bundle loaded")

	// ErrModuleNotFound is returned by Require for names absent from the registry.
	ErrModuleNotFound = errors.New("module not found")

	ErrRequireCycle = errors.New("require cycle")

	// ErrIncompatible is returned when a module's kind or version does not
	// match the native implementation it is bound to.
	ErrIncompatible = errors.New("incompatible module")
)

// ModuleError attaches a module name to a resolution failure.
type ModuleError struct {
	Name       string
	RequiredBy string // empty for direct requires
	Err        error
}

func (e *ModuleError) Error() string {
	if e.RequiredBy != "" {
		return fmt.Sprintf("module %q (required by %q): %v", e.Name, e.RequiredBy, e.Err)
	}
	return fmt.Sprintf("module %q: %v", e.Name, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}
