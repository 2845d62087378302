package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/suiterun/internal/ir"
	"github.com/roach88/suiterun/internal/suite"
)

// timeLayout is fixed-width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// marshalDetail encodes the non-passing assertions of a case as canonical
// JSON. Passing cases encode as [].
func marshalDetail(c suite.CaseResult) (string, error) {
	items := ir.Array{}
	for _, a := range c.Assertions {
		if a.Outcome == suite.OutcomePass {
			continue
		}
		obj := ir.Object{
			"index":   ir.Int(a.Index),
			"kind":    ir.String(a.Kind),
			"expr":    ir.String(a.Expr),
			"outcome": ir.String(string(a.Outcome)),
		}
		if a.Expected != "" {
			obj["expected"] = ir.String(a.Expected)
		}
		if a.Actual != "" {
			obj["actual"] = ir.String(a.Actual)
		}
		if a.Message != "" {
			obj["message"] = ir.String(a.Message)
		}
		items = append(items, obj)
	}
	data, err := ir.MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("marshal detail: %w", err)
	}
	return string(data), nil
}

func unmarshalDetail(s string) ([]suite.AssertionResult, error) {
	detail := []suite.AssertionResult{}
	if err := json.Unmarshal([]byte(s), &detail); err != nil {
		return nil, fmt.Errorf("unmarshal detail: %w", err)
	}
	return detail, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse started_at: %w", err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
