package suite

import (
	"strings"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/suiterun/internal/bundle"
	"github.com/roach88/suiterun/internal/testutil"
)

func TestCheck(t *testing.T) {
	lib := testutil.MathLibrary()
	m := &bundle.Module{
		Name: "app.eval-test",
		Kind: bundle.KindTests,
		Defs: `greeting: "hello world"`,
	}
	ev := newEvaluator(cuecontext.New(), m, []*bundle.Module{&lib})

	tests := []struct {
		name      string
		assertion bundle.Assertion
		want      Outcome
		message   string
	}{
		{"equal pass", bundle.Assertion{Is: bundle.IsEqual, Actual: "(#add & {x: 2, y: 2}).out", Expected: "4"}, OutcomePass, ""},
		{"equal fail", bundle.Assertion{Is: bundle.IsEqual, Actual: "1 + 1", Expected: "3"}, OutcomeFail, ""},
		{"equal undefined reference", bundle.Assertion{Is: bundle.IsEqual, Actual: "nope", Expected: "1"}, OutcomeError, "actual:"},
		{"equal incomplete", bundle.Assertion{Is: bundle.IsEqual, Actual: "#add.out", Expected: "1"}, OutcomeError, "actual:"},
		{"true pass", bundle.Assertion{Is: bundle.IsTrue, Expr: "len(greeting) > 5"}, OutcomePass, ""},
		{"true fail", bundle.Assertion{Is: bundle.IsTrue, Expr: "len(double) == 4"}, OutcomeFail, ""},
		{"true not boolean", bundle.Assertion{Is: bundle.IsTrue, Expr: "1"}, OutcomeError, "expected a boolean, got 1"},
		{"match pass", bundle.Assertion{Is: bundle.IsMatch, Actual: "greeting", Pattern: "^hello"}, OutcomePass, ""},
		{"match fail", bundle.Assertion{Is: bundle.IsMatch, Actual: "greeting", Pattern: "^bye"}, OutcomeFail, ""},
		{"match bad pattern", bundle.Assertion{Is: bundle.IsMatch, Actual: "greeting", Pattern: "("}, OutcomeError, "pattern:"},
		{"match not string", bundle.Assertion{Is: bundle.IsMatch, Actual: "42", Pattern: "4"}, OutcomeError, "expected a string, got 42"},
		{"error pass on conflict", bundle.Assertion{Is: bundle.IsError, Expr: "1 & 2"}, OutcomePass, ""},
		{"error pass on incomplete", bundle.Assertion{Is: bundle.IsError, Expr: "#add.out"}, OutcomePass, ""},
		{"error fail", bundle.Assertion{Is: bundle.IsError, Expr: "1 + 1"}, OutcomeFail, ""},
		{"error syntax", bundle.Assertion{Is: bundle.IsError, Expr: "1 +"}, OutcomeError, "syntax:"},
		{"unknown kind", bundle.Assertion{Is: "approx", Expr: "1"}, OutcomeError, "unknown assertion kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ev.check(1, tt.assertion)
			assert.Equal(t, tt.want, res.Outcome, "message: %s", res.Message)
			if tt.message != "" {
				assert.Contains(t, res.Message, tt.message)
			}
			assert.Equal(t, 1, res.Index)
			assert.Equal(t, tt.assertion.Is, res.Kind)
		})
	}
}

func TestCheckFailureDetail(t *testing.T) {
	ev := newEvaluator(cuecontext.New(), &bundle.Module{Name: "m", Kind: bundle.KindTests}, nil)

	res := ev.check(2, bundle.Assertion{Is: bundle.IsEqual, Actual: `"a" + "b"`, Expected: `"abc"`})
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.Equal(t, `"abc"`, res.Expected)
	assert.Equal(t, `"ab"`, res.Actual)
	assert.Equal(t, `"a" + "b" == "abc"`, res.Expr)
}

func TestDefsFromLibrariesOnly(t *testing.T) {
	other := &bundle.Module{Name: "fw", Kind: bundle.KindFramework, Defs: "x: 1"}
	lib := &bundle.Module{Name: "lib", Kind: bundle.KindLibrary, Defs: "y: 2"}
	ev := newEvaluator(cuecontext.New(), &bundle.Module{Name: "m", Kind: bundle.KindTests}, []*bundle.Module{other, lib})

	assert.Contains(t, ev.defs, "y: 2")
	assert.NotContains(t, ev.defs, "x: 1")
}

func TestDefsMergeImports(t *testing.T) {
	upper := &bundle.Module{
		Name: "app.upper",
		Kind: bundle.KindLibrary,
		Defs: "package upper\n\nimport \"strings\"\n\nup: strings.ToUpper(\"a\")\n",
	}
	joined := &bundle.Module{
		Name: "app.joined",
		Kind: bundle.KindLibrary,
		Defs: "import (\n\t\"strings\"\n\t\"list\"\n)\n\nwords: strings.Join(list.Sort([\"b\", \"a\"], list.Ascending), \",\")\n",
	}
	m := &bundle.Module{
		Name: "app.strings-test",
		Kind: bundle.KindTests,
		Defs: "import s \"strings\"\n\nshout: s.ToUpper(up)\n",
	}
	ev := newEvaluator(cuecontext.New(), m, []*bundle.Module{upper, joined})
	require.NoError(t, ev.defsErr, ev.defs)

	assert.Equal(t, 1, strings.Count(ev.defs, "import \"strings\""))
	assert.NotContains(t, ev.defs, "package upper")

	for expr, want := range map[string]string{
		"up":    `"A"`,
		"words": `"a,b"`,
		"shout": `"A"`,
	} {
		res := ev.check(1, bundle.Assertion{Is: bundle.IsEqual, Actual: expr, Expected: want})
		assert.Equal(t, OutcomePass, res.Outcome, "%s: %s", expr, res.Message)
	}
}

func TestDefsParseError(t *testing.T) {
	lib := &bundle.Module{Name: "app.bad", Kind: bundle.KindLibrary, Defs: "x: {"}
	ev := newEvaluator(cuecontext.New(), &bundle.Module{Name: "m", Kind: bundle.KindTests}, []*bundle.Module{lib})

	res := ev.check(1, bundle.Assertion{Is: bundle.IsTrue, Expr: "true"})
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Contains(t, res.Message, "defs:")
}

func TestExprTrailingLineComment(t *testing.T) {
	ev := newEvaluator(cuecontext.New(), &bundle.Module{Name: "m", Kind: bundle.KindTests}, nil)

	res := ev.check(1, bundle.Assertion{Is: bundle.IsEqual, Actual: "1 + 1 // two", Expected: "2"})
	assert.Equal(t, OutcomePass, res.Outcome, res.Message)
}
