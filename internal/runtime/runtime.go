// Package runtime is the native core runtime module. Binding it to the
// bundle's runtime declaration gives the harness console output.
package runtime

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/ir"
)

// Console formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Formats lists the accepted console formats.
var Formats = []string{FormatText, FormatJSON, FormatTable}

// ErrConsole is returned for an unusable console configuration.
var ErrConsole = errors.New("invalid console")

// Console configures where and how values are printed.
type Console struct {
	Out    io.Writer
	Format string // text when empty
}

// Runtime is the bound core runtime module.
type Runtime struct {
	module *bundle.Module
}

// Bind binds the runtime module from the bundle to this implementation.
func Bind(m *bundle.Module) (*Runtime, error) {
	if err := bundle.CheckNative(m, bundle.KindRuntime, ir.RuntimeAPI); err != nil {
		return nil, err
	}
	return &Runtime{module: m}, nil
}

// Module returns the bound runtime module.
func (r *Runtime) Module() *bundle.Module {
	return r.module
}

// EnableConsole validates c and returns a Printer writing to it.
// Output is only possible through the returned Printer.
func (r *Runtime) EnableConsole(c Console) (*Printer, error) {
	if c.Out == nil {
		return nil, fmt.Errorf("%w: no output writer", ErrConsole)
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if !slices.Contains(Formats, c.Format) {
		return nil, fmt.Errorf("%w: format %q, must be one of %v", ErrConsole, c.Format, Formats)
	}
	return &Printer{console: c}, nil
}
