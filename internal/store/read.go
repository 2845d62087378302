package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/suiterun/internal/suite"
)

const runColumns = `id, bundle_id, bundle_sha256, started_at, tests, assertions, pass, fail, error, successful`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r          Run
		startedAt  string
		successful int
	)
	err := row.Scan(&r.ID, &r.BundleID, &r.BundleSHA256, &startedAt,
		&r.Tests, &r.Assertions, &r.Pass, &r.Fail, &r.Error, &successful)
	if err != nil {
		return Run{}, err
	}
	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return Run{}, err
	}
	r.Successful = successful == 1
	return r, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// PreviousRun returns the latest run of the same bundle recorded before
// runID, or nil when there is none.
func (s *Store) PreviousRun(ctx context.Context, runID string) (*Run, error) {
	cur, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE bundle_id = ?
		  AND (started_at < ? OR (started_at = ? AND id COLLATE BINARY < ?))
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, cur.BundleID, formatTime(cur.StartedAt), formatTime(cur.StartedAt), cur.ID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous run: %w", err)
	}
	return &r, nil
}

// RunCases returns the cases of a run in run order.
func (s *Store) RunCases(ctx context.Context, runID string) ([]Case, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, idx, case_id, module, name, outcome, detail
		FROM cases
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run cases: %w", err)
	}
	defer rows.Close()

	cases := []Case{}
	for rows.Next() {
		var (
			c       Case
			outcome string
			detail  string
		)
		if err := rows.Scan(&c.RunID, &c.Index, &c.CaseID, &c.Module, &c.Name, &outcome, &detail); err != nil {
			return nil, fmt.Errorf("run cases: %w", err)
		}
		c.Outcome = suite.Outcome(outcome)
		if c.Detail, err = unmarshalDetail(detail); err != nil {
			return nil, fmt.Errorf("run cases: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run cases: %w", err)
	}
	return cases, nil
}

// Changes returns cases of run to whose outcome differs from run from,
// matched by case ID, in the order of run to.
func (s *Store) Changes(ctx context.Context, from, to string) ([]Change, error) {
	before, err := s.RunCases(ctx, from)
	if err != nil {
		return nil, err
	}
	after, err := s.RunCases(ctx, to)
	if err != nil {
		return nil, err
	}

	prev := make(map[string]suite.Outcome, len(before))
	for _, c := range before {
		prev[c.CaseID] = c.Outcome
	}

	changes := []Change{}
	for _, c := range after {
		if p, ok := prev[c.CaseID]; ok && p == c.Outcome {
			continue
		}
		changes = append(changes, Change{
			CaseID: c.CaseID,
			Module: c.Module,
			Name:   c.Name,
			From:   prev[c.CaseID],
			To:     c.Outcome,
		})
	}
	return changes, nil
}
