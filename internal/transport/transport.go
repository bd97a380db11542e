// Package transport delivers WCPS query text to a coverage server.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Response is a complete server answer.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the server accepted the query.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Sender sends one query and returns the full response.
//
// Implementations fail the whole call on any transport fault; a Response is
// never partial. Status codes are returned as-is, interpreting them is up to
// the caller.
type Sender interface {
	Send(ctx context.Context, query string) (*Response, error)
}

// Error is a transport-level fault (connection, TLS, read failure).
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("send query to %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures an HTTPConnection.
type Options struct {
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Client overrides the HTTP client entirely (tests).
	Client *http.Client
}

// HTTPConnection posts queries to a WCPS endpoint as the form field
// "query", e.g. https://ows.rasdaman.org/rasdaman/ows.
type HTTPConnection struct {
	url    string
	client *http.Client
}

// NewHTTPConnection creates a connection to endpoint.
// The endpoint must be an absolute http or https URL.
func NewHTTPConnection(endpoint string, opts Options) (*HTTPConnection, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: must be an absolute http(s) URL", endpoint)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
		if opts.InsecureSkipVerify {
			client.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in via config
			}
		}
	}

	return &HTTPConnection{url: endpoint, client: client}, nil
}

// URL returns the endpoint queries are posted to.
func (c *HTTPConnection) URL() string {
	return c.url
}

// Send posts query and reads the whole response body.
func (c *HTTPConnection) Send(ctx context.Context, query string) (*Response, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{URL: c.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: c.url, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
