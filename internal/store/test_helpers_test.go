package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/datacube/internal/ir"
	"github.com/roach88/datacube/internal/testutil"
)

// createTestStore creates a store in a temp dir with predictable IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequenceIDs("")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestExecution creates a successful execution of query.
func createTestExecution(query string, offset time.Duration) ir.Execution {
	return ir.Execution{
		Query:      query,
		QueryHash:  ir.QueryHash(query),
		PlanHash:   "plan-" + query,
		Format:     ir.FormatCSV,
		StatusCode: 200,
		BodySize:   12,
		ValueCount: 3,
		StartedAt:  testutil.Epoch.Add(offset),
		Duration:   250 * time.Millisecond,
	}
}
