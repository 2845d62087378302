package runtime

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/roach88/suiterun/internal/suite"
)

// Printer writes values to an enabled console.
type Printer struct {
	console Console
}

// Format returns the console format.
func (p *Printer) Format() string {
	return p.console.Format
}

// Print writes v in the console format. A *suite.Result gets a report;
// other values are printed with %v (text, table) or as JSON.
func (p *Printer) Print(v any) error {
	w := p.console.Out
	if p.console.Format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	res, ok := v.(*suite.Result)
	if !ok {
		_, err := fmt.Fprintln(w, v)
		return err
	}
	if p.console.Format == FormatTable {
		return printTable(w, res)
	}
	return printText(w, res)
}

func printText(w io.Writer, res *suite.Result) error {
	var b strings.Builder
	for _, c := range res.Failures() {
		for _, a := range c.Assertions {
			switch a.Outcome {
			case suite.OutcomeFail:
				fmt.Fprintf(&b, "FAIL in %s/%s (assertion %d)\n", c.Module, c.Name, a.Index)
				fmt.Fprintf(&b, "  expr:     %s\n", a.Expr)
				fmt.Fprintf(&b, "  expected: %s\n", a.Expected)
				fmt.Fprintf(&b, "  actual:   %s\n\n", a.Actual)
			case suite.OutcomeError:
				fmt.Fprintf(&b, "ERROR in %s/%s (assertion %d)\n", c.Module, c.Name, a.Index)
				fmt.Fprintf(&b, "  expr:     %s\n", a.Expr)
				fmt.Fprintf(&b, "  message:  %s\n\n", oneLine(a.Message))
			}
		}
	}
	fmt.Fprintf(&b, "Ran %d tests containing %d assertions.\n", res.Tests, res.Assertions)
	fmt.Fprintf(&b, "%d failures, %d errors.\n", res.Fail, res.Error)
	_, err := io.WriteString(w, b.String())
	return err
}

func printTable(w io.Writer, res *suite.Result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Module", "Test", "Assertions", "Outcome"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Module", AutoMerge: true},
		{Name: "Assertions", Align: text.AlignRight},
	})
	for _, c := range res.Cases {
		t.AppendRow(table.Row{c.Module, c.Name, len(c.Assertions), strings.ToUpper(string(c.Outcome))})
	}

	status := "PASS"
	if !res.Successful() {
		status = "FAIL"
	}
	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d tests", res.Tests),
		res.Assertions,
		fmt.Sprintf("%s (%d fail, %d error)", status, res.Fail, res.Error),
	})
	t.Render()
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
