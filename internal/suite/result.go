package suite

// Outcome is the closed set of assertion and case outcomes.
type Outcome string

const (
	OutcomePass  Outcome = "pass"
	OutcomeFail  Outcome = "fail"
	OutcomeError Outcome = "error"
)

// AssertionResult is the outcome of one assertion.
type AssertionResult struct {
	Index    int     `json:"index"` // 1-based within the test
	Kind     string  `json:"kind"`
	Expr     string  `json:"expr"`
	Outcome  Outcome `json:"outcome"`
	Expected string  `json:"expected,omitempty"`
	Actual   string  `json:"actual,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// CaseResult is the outcome of one test case.
type CaseResult struct {
	Module     string            `json:"module"`
	Name       string            `json:"name"`
	Outcome    Outcome           `json:"outcome"`
	Assertions []AssertionResult `json:"assertions"`
}

// Result is the aggregate outcome of RunAll.
//
// Tests counts cases; Pass, Fail and Error count assertions. The result holds
// no timestamps so identical bundles produce equal results.
type Result struct {
	Tests      int          `json:"tests"`
	Assertions int          `json:"assertions"`
	Pass       int          `json:"pass"`
	Fail       int          `json:"fail"`
	Error      int          `json:"error"`
	Cases      []CaseResult `json:"cases"`
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{Cases: []CaseResult{}}
}

// Successful reports whether no assertion failed or errored.
func (r *Result) Successful() bool {
	return r.Fail == 0 && r.Error == 0
}

// Failures returns the cases that did not pass, in run order.
func (r *Result) Failures() []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if c.Outcome != OutcomePass {
			out = append(out, c)
		}
	}
	return out
}

// add appends a case, derives its outcome and updates the counters.
func (r *Result) add(c CaseResult) {
	c.Outcome = OutcomePass
	for _, a := range c.Assertions {
		r.Assertions++
		switch a.Outcome {
		case OutcomePass:
			r.Pass++
		case OutcomeFail:
			r.Fail++
			if c.Outcome == OutcomePass {
				c.Outcome = OutcomeFail
			}
		case OutcomeError:
			r.Error++
			c.Outcome = OutcomeError
		}
	}
	if c.Assertions == nil {
		c.Assertions = []AssertionResult{}
	}
	r.Tests++
	r.Cases = append(r.Cases, c)
}
