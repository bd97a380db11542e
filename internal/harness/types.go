package harness

// TraceEvent records one builder call made by a scenario.
type TraceEvent struct {
	Op    string `json:"op"`
	Error string `json:"error,omitempty"` // error code, "" on success
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace lists the calls made, in order, up to the first failure.
	Trace []TraceEvent `json:"trace"`

	// Query is the serialized query, "" when building failed.
	Query string `json:"query,omitempty"`

	// ErrorCode is the code of the first error (step, build or execute).
	ErrorCode string `json:"error_code,omitempty"`

	// ErrorMessage is the full text of that error.
	ErrorMessage string `json:"error_message,omitempty"`

	// Strategy is the active return strategy before execution.
	Strategy string `json:"strategy,omitempty"`

	// Variables are the declared names before execution.
	Variables []string `json:"variables,omitempty"`

	// Values are the decoded numbers of a numeric execution.
	Values []float64 `json:"values,omitempty"`

	// Data is the raw payload of an image execution.
	Data []byte `json:"-"`

	// Recorded is the number of executions in the history store.
	Recorded int `json:"recorded"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records a builder call.
func (r *Result) AddTrace(op string, code string) {
	r.Trace = append(r.Trace, TraceEvent{Op: op, Error: code})
}
