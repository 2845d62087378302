package suite

import (
	"fmt"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/parser"

	"github.com/roach88/suiterun/internal/bundle"
)

// evaluator evaluates assertion expressions against a module's defs.
//
// Defs of the module and its library dependencies are merged into one CUE
// file: package clauses are dropped, imports are hoisted and deduplicated,
// and the remaining declarations are concatenated so repeated fields unify.
// Each expression is bound to a hidden field of a fresh compilation of that
// file.
type evaluator struct {
	cctx    *cue.Context
	defs    string
	defsErr error
}

const resultField = "_result"

func newEvaluator(cctx *cue.Context, m *bundle.Module, deps []*bundle.Module) *evaluator {
	var sources []*bundle.Module
	for _, d := range deps {
		if d.Kind == bundle.KindLibrary && d.Defs != "" {
			sources = append(sources, d)
		}
	}
	if m.Defs != "" {
		sources = append(sources, m)
	}

	e := &evaluator{cctx: cctx}
	e.defs, e.defsErr = mergeDefs(sources)
	if e.defsErr != nil {
		return e
	}
	base := cctx.CompileString(e.defs, cue.Filename(m.Name+".cue"))
	if err := base.Err(); err != nil {
		e.defsErr = err
	} else if err := base.Validate(); err != nil {
		e.defsErr = err
	}
	return e
}

// mergeDefs joins the defs of each module into a single CUE source.
// Imports with the same name and path are kept once, ahead of all bodies.
func mergeDefs(modules []*bundle.Module) (string, error) {
	var (
		imports []string
		seen    = make(map[string]bool)
		bodies  strings.Builder
	)
	for _, m := range modules {
		f, err := parser.ParseFile(m.Name+".cue", m.Defs)
		if err != nil {
			return "", err
		}
		header := 0
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.Package:
				header = d.End().Offset()
			case *ast.ImportDecl:
				header = d.End().Offset()
				for _, spec := range d.Specs {
					imp := spec.Path.Value
					if spec.Name != nil {
						imp = spec.Name.Name + " " + imp
					}
					if !seen[imp] {
						seen[imp] = true
						imports = append(imports, imp)
					}
				}
			}
		}
		fmt.Fprintf(&bodies, "// %s\n%s\n", m.Name, strings.TrimSpace(m.Defs[header:]))
	}

	var b strings.Builder
	for _, imp := range imports {
		fmt.Fprintf(&b, "import %s\n", imp)
	}
	if len(imports) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(bodies.String())
	return b.String(), nil
}

// syntax reports whether expr parses as a CUE expression.
func syntax(expr string) error {
	_, err := parser.ParseExpr("assertion", expr)
	return err
}

// eval compiles expr in the defs scope and requires a concrete result.
func (e *evaluator) eval(expr string) (cue.Value, error) {
	if e.defsErr != nil {
		return cue.Value{}, fmt.Errorf("defs: %v", e.defsErr)
	}
	if err := syntax(expr); err != nil {
		return cue.Value{}, fmt.Errorf("syntax: %v", err)
	}
	src := fmt.Sprintf("%s\n%s: (%s\n)\n", e.defs, resultField, expr)
	v := e.cctx.CompileString(src, cue.Filename("assertion.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, err
	}
	r := v.LookupPath(cue.MakePath(cue.Hid(resultField, "_")))
	if err := r.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, err
	}
	return r, nil
}

// check runs a single assertion. It never panics on bad input; problems
// become error outcomes.
func (e *evaluator) check(index int, a bundle.Assertion) AssertionResult {
	res := AssertionResult{Index: index, Kind: a.Is, Expr: a.Source()}

	fail := func(expected, actual string) AssertionResult {
		res.Outcome = OutcomeFail
		res.Expected = expected
		res.Actual = actual
		return res
	}
	errored := func(format string, args ...any) AssertionResult {
		res.Outcome = OutcomeError
		res.Message = fmt.Sprintf(format, args...)
		return res
	}

	switch a.Is {
	case bundle.IsEqual:
		actual, err := e.eval(a.Actual)
		if err != nil {
			return errored("actual: %v", err)
		}
		expected, err := e.eval(a.Expected)
		if err != nil {
			return errored("expected: %v", err)
		}
		if !actual.Equals(expected) {
			return fail(display(expected), display(actual))
		}

	case bundle.IsTrue:
		v, err := e.eval(a.Expr)
		if err != nil {
			return errored("%v", err)
		}
		b, err := v.Bool()
		if err != nil {
			return errored("expected a boolean, got %s", display(v))
		}
		if !b {
			return fail("true", "false")
		}

	case bundle.IsMatch:
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return errored("pattern: %v", err)
		}
		v, err := e.eval(a.Actual)
		if err != nil {
			return errored("actual: %v", err)
		}
		s, err := v.String()
		if err != nil {
			return errored("expected a string, got %s", display(v))
		}
		if !re.MatchString(s) {
			return fail("match "+re.String(), display(v))
		}

	case bundle.IsError:
		if e.defsErr != nil {
			return errored("defs: %v", e.defsErr)
		}
		if err := syntax(a.Expr); err != nil {
			return errored("syntax: %v", err)
		}
		if v, err := e.eval(a.Expr); err == nil {
			return fail("evaluation failure", display(v))
		}

	default:
		return errored("unknown assertion kind %q", a.Is)
	}

	res.Outcome = OutcomePass
	return res
}

// display renders a concrete value on one line, preferring JSON.
func display(v cue.Value) string {
	if b, err := v.MarshalJSON(); err == nil {
		return string(b)
	}
	return strings.Join(strings.Fields(fmt.Sprint(v)), " ")
}
