package cli

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/compiler"
	"github.com/roach88/suiterun/internal/runtime"
)

// LoadError is a source loading or compile error with a CLI error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadResult is a compiled bundle ready to write.
type LoadResult struct {
	File      *bundle.File
	FileCount int // Number of CUE files found
}

// LoadSources loads and compiles CUE test sources from a directory.
// All returned errors are *LoadError. A nil result means nothing compiled.
func LoadSources(dir string, mode compiler.LoadMode) (*LoadResult, []error) {
	src, err := compiler.LoadDir(dir)
	if err != nil {
		return nil, []error{convertLoadError(err)}
	}

	f, errs := compiler.Compile(src, mode)
	if len(errs) > 0 {
		out := make([]error, len(errs))
		for i, e := range errs {
			out[i] = convertLoadError(e)
		}
		return nil, out
	}
	return &LoadResult{File: f, FileCount: src.FileCount}, nil
}

// convertLoadError converts a compiler error to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Field + ": " + compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	switch {
	case errors.Is(err, compiler.ErrSourceNotFound):
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, compiler.ErrScanFailed):
		return &LoadError{Code: ErrCodeScanError, Message: err.Error()}
	case errors.Is(err, compiler.ErrNoFiles):
		return &LoadError{Code: ErrCodeNoFiles, Message: err.Error()}
	case errors.Is(err, compiler.ErrNoModules):
		return &LoadError{Code: ErrCodeNoModules, Message: "no modules found in sources"}
	case errors.Is(err, bundle.ErrBundleMalformed):
		return &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoModules   = "E008" // Sources declare no modules

	// Module compile errors
	ErrCodeModuleKind     = "E101" // Missing or unknown kind
	ErrCodeModuleDefs     = "E102" // Defs are not valid CUE
	ErrCodeModuleRequires = "E103" // Unknown require or require cycle
	ErrCodeAssertion      = "E104" // Malformed assertion or expression
	ErrCodeModuleField    = "E105" // Field has the wrong type
	ErrCodeDuplicate      = "E106" // Module declared twice

	// Harness errors
	ErrCodeBundleNotFound  = "E201"
	ErrCodeManifest        = "E202"
	ErrCodeBundleMalformed = "E203"
	ErrCodeHashMismatch    = "E204"
	ErrCodeModuleNotFound  = "E205"
	ErrCodeRequireCycle    = "E206"
	ErrCodeIncompatible    = "E207"
	ErrCodeConsole         = "E208"
	ErrCodeRunFailed       = "E209"
	ErrCodeHistory         = "E210" // History database error
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "kind":
		return ErrCodeModuleKind
	case field == "defs":
		return ErrCodeModuleDefs
	case field == "requires", strings.HasSuffix(field, ".requires"):
		return ErrCodeModuleRequires
	case field == "test", strings.HasPrefix(field, "test."):
		return ErrCodeAssertion
	case field == "version", field == "is":
		return ErrCodeModuleField
	case field == "load":
		return ErrCodeLoadFailed
	case field == "build":
		return ErrCodeBuildFailed
	case strings.HasPrefix(field, "module."):
		return ErrCodeDuplicate
	default:
		return ErrCodeGeneric
	}
}

// MapHarnessErrorCode maps a harness failure to an error code.
func MapHarnessErrorCode(err error) string {
	switch {
	case errors.Is(err, bundle.ErrBundleNotFound):
		return ErrCodeBundleNotFound
	case errors.Is(err, bundle.ErrManifestInvalid):
		return ErrCodeManifest
	case errors.Is(err, bundle.ErrBundleMalformed):
		return ErrCodeBundleMalformed
	case errors.Is(err, bundle.ErrHashMismatch):
		return ErrCodeHashMismatch
	case errors.Is(err, bundle.ErrModuleNotFound):
		return ErrCodeModuleNotFound
	case errors.Is(err, bundle.ErrRequireCycle):
		return ErrCodeRequireCycle
	case errors.Is(err, bundle.ErrIncompatible):
		return ErrCodeIncompatible
	case errors.Is(err, runtime.ErrConsole):
		return ErrCodeConsole
	default:
		return ErrCodeRunFailed
	}
}
