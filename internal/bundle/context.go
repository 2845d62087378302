package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/suiterun/internal/ir"
)

// Context resolves modules from a loaded bundle.
// It is not safe for concurrent use; the harness drives it from one goroutine.
type Context struct {
	root     string
	manifest *Manifest

	file     string
	hash     string
	registry map[string]*Module
	order    []string // bundle declaration order

	loaded    map[string]bool
	loadOrder []string
}

// Open acquires a context rooted at a build output directory.
// The directory must exist and contain a manifest.
func Open(root string) (*Context, error) {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: build directory %s does not exist", ErrBundleNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing build directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrBundleNotFound, root)
	}

	m, err := ReadManifest(filepath.Join(root, ManifestFile))
	if err != nil {
		return nil, err
	}

	return &Context{
		root:     root,
		manifest: m,
		loaded:   make(map[string]bool),
	}, nil
}

// Root returns the build output directory.
func (c *Context) Root() string {
	return c.root
}

// Manifest returns a copy of the manifest.
func (c *Context) Manifest() Manifest {
	m := *c.manifest
	m.Modules = slices.Clone(m.Modules)
	return m
}

// Load reads a bundle file into the registry. An empty file name uses the
// manifest's bundle. Relative names resolve against the root.
//
// The bundle hash is checked against the manifest when the manifest has one.
func (c *Context) Load(file string) error {
	if c.registry != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, c.file)
	}
	if file == "" {
		file = c.manifest.Bundle
	}
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, file)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrBundleNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}

	hash, err := ir.BundleHash(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBundleMalformed, path, err)
	}
	if c.manifest.SHA256 != "" && c.manifest.SHA256 != hash {
		return fmt.Errorf("%w: %s has %s, manifest expects %s", ErrHashMismatch, path, hash, c.manifest.SHA256)
	}

	f, err := DecodeFile(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	registry := make(map[string]*Module, len(f.Modules))
	order := make([]string, 0, len(f.Modules))
	for i := range f.Modules {
		m := &f.Modules[i]
		registry[m.Name] = m
		order = append(order, m.Name)
	}

	c.file = path
	c.hash = hash
	c.registry = registry
	c.order = order
	return nil
}

// Hash returns the loaded bundle's content hash.
func (c *Context) Hash() string {
	return c.hash
}

// BundleID returns a stable UUID (v5) derived from the bundle hash.
// Returns uuid.Nil before Load.
func (c *Context) BundleID() uuid.UUID {
	if c.hash == "" {
		return uuid.Nil
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("suiterun:bundle:"+c.hash))
}

// Declared returns the manifest's module names in order.
func (c *Context) Declared() []string {
	return slices.Clone(c.manifest.Modules)
}

// Modules returns registered module names in bundle order.
func (c *Context) Modules() []string {
	return slices.Clone(c.order)
}

// Loaded returns required module names in the order they finished resolving.
// Dependencies always precede their dependents.
func (c *Context) Loaded() []string {
	return slices.Clone(c.loadOrder)
}

// Require resolves a module and, first, everything it requires.
// Requiring an already resolved module is a no-op.
func (c *Context) Require(name string) (*Module, error) {
	if c.registry == nil {
		return nil, ErrNotLoaded
	}
	if err := c.require(name, "", nil); err != nil {
		return nil, err
	}
	return c.registry[name], nil
}

func (c *Context) require(name, requiredBy string, stack []string) error {
	if c.loaded[name] {
		return nil
	}
	if slices.Contains(stack, name) {
		cycle := strings.Join(append(stack, name), " -> ")
		return &ModuleError{Name: name, RequiredBy: requiredBy, Err: fmt.Errorf("%w: %s", ErrRequireCycle, cycle)}
	}
	m, ok := c.registry[name]
	if !ok {
		return &ModuleError{Name: name, RequiredBy: requiredBy, Err: ErrModuleNotFound}
	}

	stack = append(stack, name)
	for _, dep := range m.Requires {
		if err := c.require(dep, name, stack); err != nil {
			return err
		}
	}

	c.loaded[name] = true
	c.loadOrder = append(c.loadOrder, name)
	return nil
}

// Deps returns the transitive requires of a module in dependency order,
// excluding the module itself. The module must already be required.
func (c *Context) Deps(name string) ([]*Module, error) {
	if !c.loaded[name] {
		return nil, &ModuleError{Name: name, Err: fmt.Errorf("not required yet")}
	}
	var (
		out  []*Module
		seen = map[string]bool{name: true}
		walk func(string)
	)
	walk = func(n string) {
		for _, dep := range c.registry[n].Requires {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			walk(dep)
			out = append(out, c.registry[dep])
		}
	}
	walk(name)
	return out, nil
}
