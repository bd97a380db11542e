package datacube

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/querywcps"
	"github.com/roach88/datacube/internal/transport"
)

// Recorder receives a record of every query that reached the transport.
// Recording failures are logged and never fail the execution.
type Recorder interface {
	RecordExecution(ctx context.Context, exec ir.Execution) error
}

// Option configures a Datacube.
type Option func(*Datacube)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Datacube) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRecorder records every execution.
func WithRecorder(r Recorder) Option {
	return func(d *Datacube) {
		d.recorder = r
	}
}

// WithCompiler overrides the query compiler.
func WithCompiler(c *querywcps.Compiler) Option {
	return func(d *Datacube) {
		if c != nil {
			d.compiler = c
		}
	}
}

// Datacube is a stateful WCPS query builder bound to one transport.
type Datacube struct {
	sender   transport.Sender
	compiler *querywcps.Compiler
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	plan ir.Plan
}

// New creates an empty builder bound to sender for its whole life.
func New(sender transport.Sender, opts ...Option) (*Datacube, error) {
	if sender == nil {
		return nil, &ir.QueryError{
			Code:    ir.ErrCodeInvalidArgument,
			Message: "a transport is required",
		}
	}

	d := &Datacube{
		sender:   sender,
		compiler: querywcps.NewCompiler(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Reset clears every variable, subset, filter, strategy and the format.
// The transport binding is kept.
func (d *Datacube) Reset() *Datacube {
	d.plan = ir.Plan{}
	return d
}

// Plan returns a deep copy of the current builder state.
func (d *Datacube) Plan() ir.Plan {
	return d.plan.Clone()
}

// Variables returns the declared variables in declaration order.
func (d *Datacube) Variables() []ir.Variable {
	return d.plan.Clone().Variables
}

// Filter returns the where condition, "" when unset.
func (d *Datacube) Filter() string {
	return d.plan.Filter
}

// Format returns the requested output format.
func (d *Datacube) Format() ir.Format {
	return d.plan.Format
}

// Aggregation returns the stored aggregation, if any.
func (d *Datacube) Aggregation() (ir.Aggregate, bool) {
	s, ok := d.plan.Returns.Get(ir.StrategyAggregate)
	if !ok {
		return ir.Aggregate{}, false
	}
	return s.(ir.Aggregate), true
}

// ActiveStrategy returns the strategy that will fill the return clause.
func (d *Datacube) ActiveStrategy() ir.ReturnStrategy {
	return d.plan.Returns.Active()
}
