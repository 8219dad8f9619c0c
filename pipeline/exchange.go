package pipeline

import (
	"net/http"

	"github.com/google/uuid"
)

// Exchange is the mutable per-request state threaded through the
// middleware chain: the underlying HTTP request/response pair, the
// audit context stages accumulate into, and the request body once a
// body-parsing stage has materialised it.
type Exchange struct {
	Request *http.Request
	Writer  http.ResponseWriter
	Audit   *Context

	// RequestID correlates log lines and error bodies for one pass
	// through the chain. It is generated once in NewExchange, not
	// derived from any client-supplied header.
	RequestID string

	Body        []byte
	HasBody     bool
	ContentType string

	// Downstream is invoked by the downstream-handler stage once the
	// request has cleared every validating stage ahead of it.
	Downstream http.Handler

	// ResponseStatus, ResponseBody and ResponseContentType are recorded
	// by a response-capturing downstream stage so the response-validate
	// stage can check them without re-reading the wire.
	ResponseStatus      int
	ResponseBody        []byte
	ResponseContentType string
}

// NewExchange wraps an HTTP request/response pair for one pass through
// the chain.
func NewExchange(w http.ResponseWriter, r *http.Request) *Exchange {
	return &Exchange{Request: r, Writer: w, Audit: NewContext(), RequestID: uuid.NewString()}
}
