// Package harness is the test harness entry point.
//
// Run bootstraps a module-resolution context over a build output directory
// and drives a fixed sequence of steps:
//
//  1. open-context: acquire the context rooted at the build directory
//  2. load-bundle: load the compiled bundle into the registry
//  3. resolve-runtime: require and bind the core runtime module
//  4. resolve-framework: require and bind the test framework module
//  5. enable-console: obtain a Printer from the runtime
//  6. require-all: require every declared module, registering tests modules
//  7. run-tests: run every registered test
//  8. print-result: print the Test Run Result
//
// Steps run in order with no retries. The first failure aborts the run with a
// *StepError and nothing is printed.
//
// # Usage
//
//	cfg := harness.DefaultConfig()
//	cfg.Root = "target/test-bundle"
//	res, err := harness.Run(ctx, cfg)
//	if err != nil {
//	    return err // harness failure
//	}
//	if !res.Successful() {
//	    // one or more assertions failed or errored
//	}
package harness
