package datacube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/datacube/internal/decode"
	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/transport"
)

// Result is the decoded answer to one executed query.
//
// Format is the format that was configured when Execute was called.
// Image formats fill Data with the raw response bytes; CSV and unset
// formats fill Values.
type Result struct {
	Format ir.Format
	Query  string
	Values []float64
	Data   []byte
}

// IsImage reports whether the result carries raw image bytes.
func (r *Result) IsImage() bool {
	return r.Format.IsImage()
}

// WithClock sets the time source for execution records.
func WithClock(now func() time.Time) Option {
	return func(d *Datacube) {
		if now != nil {
			d.now = now
		}
	}
}

// Execute builds the query, sends it and decodes the response.
//
// The builder is reset before Execute returns, on success and on every
// error path. Send failures and non-200 responses are TRANSPORT_ERROR and
// are not retried.
func (d *Datacube) Execute(ctx context.Context) (*Result, error) {
	defer d.Reset()

	query, err := d.BuildQuery()
	if err != nil {
		return nil, err
	}

	format := d.plan.Format
	exec := ir.Execution{
		Query:     query,
		QueryHash: ir.QueryHash(query),
		Format:    format,
		StartedAt: d.now(),
	}
	if h, err := ir.PlanHash(d.plan); err == nil {
		exec.PlanHash = h
	}

	res, err := d.send(ctx, query)
	exec.Duration = d.now().Sub(exec.StartedAt)
	if res != nil {
		exec.StatusCode = res.StatusCode
		exec.BodySize = len(res.Body)
	}
	if err != nil {
		exec.Error = err.Error()
		d.logger.Error("query failed",
			slog.String("query_hash", exec.QueryHash),
			slog.Int("status", exec.StatusCode),
			slog.String("error", err.Error()),
		)
		d.record(ctx, exec)
		return nil, err
	}

	result := &Result{Format: format, Query: query}
	if format.IsImage() {
		result.Data = res.Body
	} else {
		result.Values = decode.Floats(res.Body)
		exec.ValueCount = len(result.Values)
	}

	d.logger.Info("query executed",
		slog.String("query_hash", exec.QueryHash),
		slog.String("format", format.String()),
		slog.Int("status", exec.StatusCode),
		slog.Int("bytes", exec.BodySize),
		slog.Duration("duration", exec.Duration),
	)
	d.record(ctx, exec)
	return result, nil
}

func (d *Datacube) send(ctx context.Context, query string) (*transport.Response, error) {
	resp, err := d.sender.Send(ctx, query)
	if err != nil {
		return nil, &ir.QueryError{
			Code:    ir.ErrCodeTransport,
			Message: "query could not be delivered",
			Err:     err,
		}
	}
	if resp == nil {
		return nil, &ir.QueryError{
			Code:    ir.ErrCodeTransport,
			Message: "transport returned no response",
		}
	}
	if !resp.OK() {
		return resp, &ir.QueryError{
			Code:       ir.ErrCodeTransport,
			Message:    fmt.Sprintf("server rejected query with status %d: %s", resp.StatusCode, snippet(resp.Body)),
			StatusCode: resp.StatusCode,
		}
	}
	return resp, nil
}

func (d *Datacube) record(ctx context.Context, exec ir.Execution) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordExecution(ctx, exec); err != nil {
		d.logger.Warn("failed to record execution",
			slog.String("query_hash", exec.QueryHash),
			slog.String("error", err.Error()),
		)
	}
}

// snippet trims a server error body for inclusion in a message.
func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
