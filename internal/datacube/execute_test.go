package datacube

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/testutil"
)

// memRecorder collects execution records.
type memRecorder struct {
	execs []ir.Execution
	err   error
}

func (r *memRecorder) RecordExecution(_ context.Context, exec ir.Execution) error {
	r.execs = append(r.execs, exec)
	return r.err
}

func TestExecute_DecodesNumbers(t *testing.T) {
	sender := testutil.NewFakeSender("1.0 abc 2.0")
	dc := newTestCube(t, sender)
	require.NoError(t, dc.Declare("A", "c"))
	require.NoError(t, dc.Max(""))

	res, err := dc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ir.FormatUnset, res.Format)
	assert.Equal(t, []float64{1.0, 2.0}, res.Values)
	assert.Nil(t, res.Data)
	assert.False(t, res.IsImage())
	assert.Equal(t, "for $c in (A)\nreturn\nmax($c)", res.Query)
	assert.Equal(t, []string{res.Query}, sender.Queries())
}

func TestExecute_ImageReturnsRawBytes(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n"
	dc := newTestCube(t, testutil.NewFakeSender(png))
	require.NoError(t, dc.Declare("AvgLandTemp", "c"))
	require.NoError(t, dc.Subset(`ansi("2014-07")`, "c"))
	require.NoError(t, dc.SetFormat(ir.FormatPNG))

	res, err := dc.Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, res.IsImage())
	assert.Equal(t, []byte(png), res.Data)
	assert.Nil(t, res.Values)
}

func TestExecute_CSVWithNoNumbers(t *testing.T) {
	dc := newTestCube(t, testutil.NewFakeSender("{}"))
	require.NoError(t, dc.Encode("1"))
	require.NoError(t, dc.SetFormat(ir.FormatCSV))

	res, err := dc.Execute(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, res.Values)
	assert.Empty(t, res.Values)
}

func TestExecute_ResetsOnEveryPath(t *testing.T) {
	tests := []struct {
		name   string
		sender *testutil.FakeSender
		setup  func(*Datacube) error
	}{
		{
			name:   "success",
			sender: testutil.NewFakeSender("1"),
			setup:  func(dc *Datacube) error { return dc.Declare("A", "c") },
		},
		{
			name:   "transport failure",
			sender: &testutil.FakeSender{Err: errors.New("connection refused")},
			setup:  func(dc *Datacube) error { return dc.Declare("A", "c") },
		},
		{
			name:   "server rejection",
			sender: &testutil.FakeSender{Status: http.StatusBadRequest, Body: []byte("bad query")},
			setup:  func(dc *Datacube) error { return dc.Declare("A", "c") },
		},
		{
			name:   "build failure",
			sender: testutil.NewFakeSender(""),
			setup: func(dc *Datacube) error {
				if err := dc.Declare("A", "c"); err != nil {
					return err
				}
				return dc.Aggregate(ir.AggNone, "")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := newTestCube(t, tt.sender)
			require.NoError(t, tt.setup(dc))
			require.NoError(t, dc.SetFormat(ir.FormatCSV))

			_, _ = dc.Execute(context.Background())

			assert.Empty(t, dc.Variables())
			assert.Equal(t, ir.FormatUnset, dc.Format())
			assert.Equal(t, ir.StrategyListing, dc.ActiveStrategy().Kind())
		})
	}
}

func TestExecute_TransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	dc := newTestCube(t, &testutil.FakeSender{Err: boom})

	res, err := dc.Execute(context.Background())
	assert.Nil(t, res)
	assert.True(t, ir.IsTransportError(err))
	assert.ErrorIs(t, err, boom)
}

func TestExecute_Non200IsTransportError(t *testing.T) {
	dc := newTestCube(t, &testutil.FakeSender{Status: http.StatusInternalServerError, Body: []byte("oops")})

	_, err := dc.Execute(context.Background())
	require.Error(t, err)

	var qe *ir.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, ir.ErrCodeTransport, qe.Code)
	assert.Equal(t, http.StatusInternalServerError, qe.StatusCode)
	assert.Contains(t, qe.Message, "oops")
}

func TestExecute_BuildErrorDoesNotSend(t *testing.T) {
	sender := testutil.NewFakeSender("")
	dc := newTestCube(t, sender)
	require.NoError(t, dc.Aggregate(ir.AggNone, ""))

	_, err := dc.Execute(context.Background())
	assert.True(t, ir.IsUnsupportedOperation(err))
	assert.Empty(t, sender.Queries())
}

func TestExecute_Records(t *testing.T) {
	rec := &memRecorder{}
	clock := testutil.NewStepClock(time.Second)
	dc := newTestCube(t, testutil.NewFakeSender("4 5 6"), WithRecorder(rec), WithClock(clock.Now))
	require.NoError(t, dc.Declare("A", "c"))
	planHash, err := ir.PlanHash(dc.Plan())
	require.NoError(t, err)

	res, err := dc.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.execs, 1)
	exec := rec.execs[0]
	assert.Equal(t, res.Query, exec.Query)
	assert.Equal(t, ir.QueryHash(res.Query), exec.QueryHash)
	assert.Equal(t, planHash, exec.PlanHash)
	assert.Equal(t, http.StatusOK, exec.StatusCode)
	assert.Equal(t, 5, exec.BodySize)
	assert.Equal(t, 3, exec.ValueCount)
	assert.Equal(t, testutil.Epoch, exec.StartedAt)
	assert.Equal(t, time.Second, exec.Duration)
	assert.True(t, exec.Succeeded())
}

func TestExecute_RecordsFailures(t *testing.T) {
	rec := &memRecorder{}
	dc := newTestCube(t, &testutil.FakeSender{Status: http.StatusNotFound}, WithRecorder(rec))

	_, err := dc.Execute(context.Background())
	require.Error(t, err)

	require.Len(t, rec.execs, 1)
	assert.Equal(t, http.StatusNotFound, rec.execs[0].StatusCode)
	assert.False(t, rec.execs[0].Succeeded())
}

func TestExecute_RecorderFailureIsIgnored(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	dc := newTestCube(t, testutil.NewFakeSender("1"), WithRecorder(rec))

	res, err := dc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, res.Values)
}

func TestExecute_BuilderIsReusable(t *testing.T) {
	sender := testutil.NewFakeSender("7")
	dc := newTestCube(t, sender)

	require.NoError(t, dc.Declare("A", "a"))
	_, err := dc.Execute(context.Background())
	require.NoError(t, err)

	require.NoError(t, dc.Declare("B", "a"), "name is free again after reset")
	_, err = dc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"for $a in (A)\nreturn\n$a",
		"for $a in (B)\nreturn\n$a",
	}, sender.Queries())
}
