package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/ir"
)

// BundleFile is the bundle name written to a build directory.
const BundleFile = "index.json"

// Write writes f and its manifest to dir, creating dir if needed.
// Every module is declared, in bundle order.
func Write(dir string, f *bundle.File) (*bundle.Manifest, error) {
	data, err := bundle.EncodeFile(f)
	if err != nil {
		return nil, err
	}
	hash, err := ir.BundleHash(data)
	if err != nil {
		return nil, fmt.Errorf("hashing bundle: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating build directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, BundleFile), data, 0644); err != nil {
		return nil, fmt.Errorf("writing bundle: %w", err)
	}

	m := &bundle.Manifest{
		Format:  ir.BundleFormat,
		Bundle:  BundleFile,
		SHA256:  hash,
		Modules: make([]string, 0, len(f.Modules)),
	}
	for _, mod := range f.Modules {
		m.Modules = append(m.Modules, mod.Name)
	}
	if err := bundle.WriteManifest(filepath.Join(dir, bundle.ManifestFile), m); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	return m, nil
}
