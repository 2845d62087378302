package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/suiterun/internal/ir"
	"github.com/roach88/suiterun/internal/suite"
)

// RecordRun stores a result and its cases in one transaction.
func (s *Store) RecordRun(ctx context.Context, bundleID uuid.UUID, bundleHash string, res *suite.Result) (*Run, error) {
	if res == nil {
		return nil, fmt.Errorf("record run: nil result")
	}

	run := &Run{
		ID:           s.ids.Generate(),
		BundleID:     bundleID.String(),
		BundleSHA256: bundleHash,
		StartedAt:    s.clock.Now().UTC(),
		Tests:        res.Tests,
		Assertions:   res.Assertions,
		Pass:         res.Pass,
		Fail:         res.Fail,
		Error:        res.Error,
		Successful:   res.Successful(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, bundle_id, bundle_sha256, started_at, tests, assertions, pass, fail, error, successful)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.BundleID,
		run.BundleSHA256,
		formatTime(run.StartedAt),
		run.Tests,
		run.Assertions,
		run.Pass,
		run.Fail,
		run.Error,
		boolToInt(run.Successful),
	)
	if err != nil {
		return nil, fmt.Errorf("record run: insert run: %w", err)
	}

	for i, c := range res.Cases {
		detail, err := marshalDetail(c)
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cases (run_id, idx, case_id, module, name, outcome, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, ir.CaseID(c.Module, c.Name), c.Module, c.Name, string(c.Outcome), detail)
		if err != nil {
			return nil, fmt.Errorf("record run: insert case %s/%s: %w", c.Module, c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}
