package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/suiterun/internal/ir"
)

// ManifestFile is the manifest name inside a build output directory.
const ManifestFile = "manifest.yaml"

// Manifest describes a build output directory.
type Manifest struct {
	// Format is the bundle format version (ir.BundleFormat).
	Format int `yaml:"format"`

	// Bundle is the bundle file name relative to the directory.
	Bundle string `yaml:"bundle"`

	// SHA256 is ir.BundleHash of the bundle. Empty skips verification.
	SHA256 string `yaml:"sha256,omitempty"`

	// Modules lists declared module names in require order.
	Modules []string `yaml:"modules"`
}

// ReadManifest reads and validates a manifest. Unknown fields are rejected so
// typos surface instead of silently disabling checks.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestInvalid, path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the manifest fields.
func (m *Manifest) Validate() error {
	if m.Format != ir.BundleFormat {
		return fmt.Errorf("%w: unsupported format %d", ErrManifestInvalid, m.Format)
	}
	if m.Bundle == "" {
		return fmt.Errorf("%w: bundle is required", ErrManifestInvalid)
	}
	seen := make(map[string]bool, len(m.Modules))
	for _, name := range m.Modules {
		if name == "" || seen[name] {
			return fmt.Errorf("%w: empty or duplicate module name %q", ErrManifestInvalid, name)
		}
		seen[name] = true
	}
	return nil
}

// WriteManifest writes m as YAML.
func WriteManifest(path string, m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
