package testutil

import (
	"context"
	"net/http"
	"sync"

	"github.com/roach88/datacube/internal/transport"
)

// FakeSender is an in-memory transport.Sender.
//
// It records every query it receives and answers with a canned response
// or error. The zero value answers 200 with an empty body.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeSender struct {
	mu      sync.Mutex
	queries []string

	// Status is the status code returned (0 means 200).
	Status int

	// Body is returned as the response body.
	Body []byte

	// Err, when set, is returned instead of a response.
	Err error
}

// NewFakeSender creates a sender answering 200 with body.
func NewFakeSender(body string) *FakeSender {
	return &FakeSender{Status: http.StatusOK, Body: []byte(body)}
}

// Send implements transport.Sender.
func (s *FakeSender) Send(ctx context.Context, query string) (*transport.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, query)
	if s.Err != nil {
		return nil, s.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, &transport.Error{URL: "fake://", Err: err}
	}

	status := s.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &transport.Response{StatusCode: status, Body: append([]byte(nil), s.Body...)}, nil
}

// Queries returns every query received so far, oldest first.
func (s *FakeSender) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// LastQuery returns the most recent query, "" if none.
func (s *FakeSender) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}
