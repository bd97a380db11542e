package ir

import "time"

// Execution describes one query sent to a coverage server.
// Response bodies are deliberately not part of the record.
type Execution struct {
	// ID uniquely identifies the execution (assigned by the recorder).
	ID string `json:"id"`

	// Query is the exact text that was sent.
	Query string `json:"query"`

	// QueryHash is QueryHash(Query).
	QueryHash string `json:"query_hash"`

	// PlanHash is PlanHash of the plan the query was built from.
	PlanHash string `json:"plan_hash"`

	// Format is the output format requested by the plan.
	Format Format `json:"format"`

	// StatusCode is the HTTP status, 0 when the request never completed.
	StatusCode int `json:"status_code"`

	// BodySize is the response size in bytes.
	BodySize int `json:"body_size"`

	// ValueCount is the number of decoded values (numeric formats only).
	ValueCount int `json:"value_count"`

	// Error is the failure message, "" on success.
	Error string `json:"error,omitempty"`

	// StartedAt is when the query was handed to the transport.
	StartedAt time.Time `json:"started_at"`

	// Duration is the round-trip time.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the execution completed without error.
func (e Execution) Succeeded() bool {
	return e.Error == ""
}
