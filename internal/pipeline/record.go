package pipeline

import (
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/mapping"
)

// Request is one call into the pipeline.
type Request struct {
	CartridgeID string
	Currency    string
	Direction   string
	// RequestID overrides the id derived from the body when set.
	RequestID string
	// Body is a decoded JSON value: an object, or a list for bulk requests.
	Body any
}

// Response is the outcome of a successful Process call.
//
// For single requests ContentType and Body hold the serialized record. For
// bulk requests Bulk is set, Results holds one entry per record and Body is
// the same slice, served as JSON.
type Response struct {
	RequestID   string
	ContentType string
	Body        any
	Bulk        bool
	Results     []Result
}

// Record is the working state of one item of a request.
type Record struct {
	Index       int
	Input       map[string]any
	Output      any
	ContentType string
	Err         *diagnostic.Error
}

// Failed reports whether the record carries an error.
func (r *Record) Failed() bool {
	return r.Err != nil
}

func (r *Record) succeed(res mapping.Result) {
	r.Output = res.Body
	r.ContentType = res.ContentType
}

// Result returns the per-record outcome served to bulk callers.
func (r *Record) Result() Result {
	if r.Err != nil {
		payload := r.Err.Payload()

		return Result{Index: r.Index, Success: false, Error: &payload}
	}

	return Result{Index: r.Index, Success: true, ContentType: r.ContentType, Body: r.Output}
}

// Result is the outcome of one bulk record.
type Result struct {
	Index       int                 `json:"index"`
	Success     bool                `json:"success"`
	Error       *diagnostic.Payload `json:"error,omitempty"`
	ContentType string              `json:"contentType,omitempty"`
	Body        any                 `json:"body,omitempty"`
}
