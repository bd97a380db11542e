package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/datacube/internal/ir"
)

// ErrNotFound is returned when no execution has the requested ID.
var ErrNotFound = errors.New("execution not found")

const executionColumns = `id, query, query_hash, plan_hash, format, status_code, body_size, value_count, error, started_at, duration_ns`

// ListOptions filters ListExecutions.
type ListOptions struct {
	// Limit caps the number of records. Zero means no limit.
	Limit int

	// QueryHash restricts the listing to one query text.
	QueryHash string

	// FailedOnly restricts the listing to executions with an error.
	FailedOnly bool
}

// ReadExecution retrieves a single execution by ID.
// Returns ErrNotFound if no such record exists.
func (s *Store) ReadExecution(ctx context.Context, id string) (ir.Execution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+executionColumns+`
		FROM executions
		WHERE id = ?
	`, id)

	exec, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Execution{}, fmt.Errorf("read execution %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Execution{}, fmt.Errorf("read execution %s: %w", id, err)
	}
	return exec, nil
}

// ListExecutions returns recorded executions, newest first.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ListExecutions(ctx context.Context, opts ListOptions) ([]ir.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE 1 = 1`
	var args []any
	if opts.QueryHash != "" {
		query += ` AND query_hash = ?`
		args = append(args, opts.QueryHash)
	}
	if opts.FailedOnly {
		query += ` AND error != ''`
	}
	query += ` ORDER BY seq DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	execs := []ir.Execution{}
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}

	return execs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (ir.Execution, error) {
	var (
		exec       ir.Execution
		format     string
		startedAt  int64
		durationNS int64
	)
	err := row.Scan(
		&exec.ID,
		&exec.Query,
		&exec.QueryHash,
		&exec.PlanHash,
		&format,
		&exec.StatusCode,
		&exec.BodySize,
		&exec.ValueCount,
		&exec.Error,
		&startedAt,
		&durationNS,
	)
	if err != nil {
		return ir.Execution{}, err
	}

	f, err := ir.ParseFormat(format)
	if err != nil {
		return ir.Execution{}, fmt.Errorf("scan execution %s: %w", exec.ID, err)
	}
	exec.Format = f
	exec.StartedAt = time.Unix(0, startedAt).UTC()
	exec.Duration = time.Duration(durationNS)
	return exec, nil
}
