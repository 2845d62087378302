package ir

// Version constants for the bundle format and the harness.
const (
	// BundleFormat is the bundle and manifest schema version.
	BundleFormat = 1

	// HarnessVersion is the suiterun release.
	HarnessVersion = "0.3.0"

	// RuntimeAPI and FrameworkAPI are the semver majors of the native
	// runtime and test framework modules shipped with this harness.
	RuntimeAPI   = "v1"
	FrameworkAPI = "v1"

	// RuntimeModule and FrameworkModule are the default names of the
	// native modules, and StdVersion the version the compiler declares
	// them with.
	RuntimeModule   = "suiterun.core"
	FrameworkModule = "suiterun.test"
	StdVersion      = "v1.0.0"
)
