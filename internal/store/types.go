package store

import (
	"errors"
	"time"

	"github.com/roach88/suiterun/internal/suite"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Run is a stored harness run.
type Run struct {
	ID           string    `json:"id"`
	BundleID     string    `json:"bundle_id"`
	BundleSHA256 string    `json:"bundle_sha256"`
	StartedAt    time.Time `json:"started_at"`
	Tests        int       `json:"tests"`
	Assertions   int       `json:"assertions"`
	Pass         int       `json:"pass"`
	Fail         int       `json:"fail"`
	Error        int       `json:"error"`
	Successful   bool      `json:"successful"`
}

// Case is a stored test case. Detail holds only non-passing assertions.
type Case struct {
	RunID   string                  `json:"run_id"`
	Index   int                     `json:"index"`
	CaseID  string                  `json:"case_id"`
	Module  string                  `json:"module"`
	Name    string                  `json:"name"`
	Outcome suite.Outcome           `json:"outcome"`
	Detail  []suite.AssertionResult `json:"detail"`
}

// Change is a case whose outcome differs between two runs.
// From is empty for cases absent from the earlier run.
type Change struct {
	CaseID string        `json:"case_id"`
	Module string        `json:"module"`
	Name   string        `json:"name"`
	From   suite.Outcome `json:"from"`
	To     suite.Outcome `json:"to"`
}
