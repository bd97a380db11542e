package store

import (
	"context"
	"fmt"

	"github.com/roach88/datacube/internal/ir"
)

// WriteExecution inserts an execution record and returns its ID.
// An empty exec.ID is filled from the store's ID generator; an empty
// QueryHash is computed from the query text.
func (s *Store) WriteExecution(ctx context.Context, exec ir.Execution) (string, error) {
	if exec.ID == "" {
		exec.ID = s.ids.Generate()
	}
	if exec.QueryHash == "" {
		exec.QueryHash = ir.QueryHash(exec.Query)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions
		(id, query, query_hash, plan_hash, format, status_code, body_size, value_count, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		exec.ID,
		exec.Query,
		exec.QueryHash,
		exec.PlanHash,
		exec.Format.String(),
		exec.StatusCode,
		exec.BodySize,
		exec.ValueCount,
		exec.Error,
		exec.StartedAt.UTC().UnixNano(),
		int64(exec.Duration),
	)
	if err != nil {
		return "", fmt.Errorf("write execution: %w", err)
	}

	return exec.ID, nil
}

// RecordExecution implements datacube.Recorder.
func (s *Store) RecordExecution(ctx context.Context, exec ir.Execution) error {
	_, err := s.WriteExecution(ctx, exec)
	return err
}
