// Package bundle implements the module-resolution context used by the harness.
//
// A build output directory holds two files:
//
//	manifest.yaml   format, bundle file name, bundle hash, declared module names
//	index.json      the bundle: every compiled module
//
// Open reads the manifest, Load reads the bundle into a registry, and Require
// resolves a module by name (requires first, depth-first, cycles rejected).
//
// Module kinds:
//
//   - runtime:   the core runtime utility module (printing)
//   - framework: the test framework module (run all tests)
//   - library:   CUE definitions visible to modules that require it
//   - tests:     test cases, registered with the framework by the harness
//
// Runtime and framework modules carry no code. They name a native
// implementation shipped with the harness, and their version must share its
// semver major (see CheckNative).
package bundle
