// Package compiler compiles CUE test sources into a bundle and writes the
// build output directory read by the harness.
//
// # Source Format
//
// Modules are declared under the top-level module field:
//
//	module: "app.math": {
//	    kind: "library"
//	    defs: """
//	        #add: {x: int, y: int, out: x + y}
//	        """
//	}
//
//	module: "app.math-test": {
//	    kind:     "tests"
//	    requires: ["app.math"]
//	    test: adds: [
//	        {is: "equal", actual: "(#add & {x: 1, y: 2}).out", expected: "3"},
//	        {is: "error", expr: "#add & {x: \"one\"}"},
//	    ]
//	}
//
// Assertion fields hold CUE expression source evaluated at test time, so
// they are written as strings. Defs are CUE source made visible to the
// expressions of modules that require the library.
//
// The runtime and framework modules are added unless the sources declare
// them, and every tests module requires the framework.
package compiler
