package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/suiterun/internal/bundle"
)

// Sentinel errors for source directory problems.
var (
	ErrSourceNotFound = errors.New("source directory not found")
	ErrNoFiles        = errors.New("no CUE files found")
	ErrNoModules      = errors.New("no modules declared")
	ErrScanFailed     = errors.New("scanning source directory")
)

// LoadMode controls how compile errors are handled.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Source is a loaded CUE package.
type Source struct {
	Value     cue.Value
	FileCount int
}

// LoadDir loads the CUE package in dir.
func LoadDir(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrScanFailed, dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, errors.New("no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err, "load")
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err, "build")
	}
	return &Source{Value: value, FileCount: len(files)}, nil
}

// FindCUEFiles walks dir and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Compile compiles every module under the source's module field and links
// them into a bundle file.
func Compile(src *Source, mode LoadMode) (*bundle.File, []error) {
	modsVal := src.Value.LookupPath(cue.ParsePath("module"))
	if !modsVal.Exists() {
		return nil, []error{ErrNoModules}
	}
	iter, err := modsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err, "module")}
	}

	var (
		modules []bundle.Module
		errs    []error
	)
	for iter.Next() {
		m, err := CompileModule(iter.Value())
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return nil, errs
			}
			continue
		}
		modules = append(modules, *m)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if len(modules) == 0 {
		return nil, []error{ErrNoModules}
	}

	return Link(modules)
}

// CompileDir loads dir and compiles it.
func CompileDir(dir string, mode LoadMode) (*bundle.File, []error) {
	src, err := LoadDir(dir)
	if err != nil {
		return nil, []error{err}
	}
	return Compile(src, mode)
}
