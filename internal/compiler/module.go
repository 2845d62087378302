package compiler

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/parser"

	"github.com/roach88/suiterun/internal/bundle"
)

// CompileModule parses a CUE value into a Module. The module name is the
// value's last path label, e.g. module."app.math".
func CompileModule(v cue.Value) (*bundle.Module, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "module")
	}

	m := &bundle.Module{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		m.Name = labelName(labels[len(labels)-1])
	}
	if m.Name == "" {
		return nil, &CompileError{Field: "module", Message: "module name is required", Pos: v.Pos()}
	}

	kind, err := requiredString(v, "kind")
	if err != nil {
		return nil, err
	}
	m.Kind = bundle.Kind(kind)
	if !m.Kind.Valid() {
		return nil, &CompileError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown kind %q (want runtime, framework, library or tests)", kind),
			Pos:     v.LookupPath(cue.ParsePath("kind")).Pos(),
		}
	}

	if m.Version, err = optionalString(v, "version"); err != nil {
		return nil, err
	}
	if m.Defs, err = optionalString(v, "defs"); err != nil {
		return nil, err
	}
	if m.Defs != "" {
		if _, err := parser.ParseFile(m.Name+".defs", m.Defs); err != nil {
			return nil, &CompileError{Field: "defs", Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("defs")).Pos()}
		}
	}

	if m.Requires, err = parseRequires(v); err != nil {
		return nil, err
	}

	if m.Tests, err = parseTests(v); err != nil {
		return nil, err
	}
	if len(m.Tests) > 0 && m.Kind != bundle.KindTests {
		return nil, &CompileError{
			Field:   "test",
			Message: fmt.Sprintf("only tests modules may declare tests, %q is %s", m.Name, m.Kind),
			Pos:     v.LookupPath(cue.ParsePath("test")).Pos(),
		}
	}

	return m, nil
}

// labelName returns a field label without quotes.
func labelName(sel cue.Selector) string {
	s := sel.String()
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err, field)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err, field)
	}
	return s, nil
}

func parseRequires(v cue.Value) ([]string, error) {
	rv := v.LookupPath(cue.ParsePath("requires"))
	if !rv.Exists() {
		return nil, nil
	}
	iter, err := rv.List()
	if err != nil {
		return nil, formatCUEError(err, "requires")
	}

	var requires []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err, "requires")
		}
		requires = append(requires, name)
	}
	return requires, nil
}

// parseTests reads test: [Name]: [...assertion] in declaration order.
func parseTests(v cue.Value) ([]bundle.Test, error) {
	tv := v.LookupPath(cue.ParsePath("test"))
	if !tv.Exists() {
		return nil, nil
	}
	iter, err := tv.Fields()
	if err != nil {
		return nil, formatCUEError(err, "test")
	}

	var tests []bundle.Test
	for iter.Next() {
		name := iter.Label()
		list, err := iter.Value().List()
		if err != nil {
			return nil, formatCUEError(err, "test."+name)
		}

		t := bundle.Test{Name: name}
		for i := 1; list.Next(); i++ {
			field := fmt.Sprintf("test.%s[%d]", name, i)
			a, err := parseAssertion(list.Value(), field)
			if err != nil {
				return nil, err
			}
			t.Assertions = append(t.Assertions, a)
		}
		tests = append(tests, t)
	}
	return tests, nil
}

func parseAssertion(v cue.Value, field string) (bundle.Assertion, error) {
	var a bundle.Assertion
	var err error

	if a.Is, err = requiredString(v, "is"); err != nil {
		return a, err
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"actual", &a.Actual},
		{"expected", &a.Expected},
		{"expr", &a.Expr},
		{"pattern", &a.Pattern},
	} {
		if *f.dst, err = optionalString(v, f.name); err != nil {
			return a, err
		}
	}

	if err := a.Validate(); err != nil {
		return a, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}

	for _, src := range []struct {
		name, expr string
	}{
		{"actual", a.Actual},
		{"expected", a.Expected},
		{"expr", a.Expr},
	} {
		if src.expr == "" {
			continue
		}
		if _, err := parser.ParseExpr(field+"."+src.name, src.expr); err != nil {
			return a, &CompileError{
				Field:   field + "." + src.name,
				Message: fmt.Sprintf("invalid expression: %v", err),
				Pos:     v.LookupPath(cue.ParsePath(src.name)).Pos(),
			}
		}
	}
	return a, nil
}
