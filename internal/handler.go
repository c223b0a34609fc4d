package internal

import "net/http"

// HandlerFunc is the signature for route handlers.
//
// The returned value is serialized as the JSON response body with the
// context's response status and headers applied. Returning a *Response
// hands full control to the handler: context-level status and headers
// are ignored entirely. Returning a non-nil error routes the request
// through the error boundary.
type HandlerFunc func(c *Context) (any, error)

// Middleware runs before the handler.
//
// Returning (nil, nil) continues the chain. Returning a non-nil
// *Response aborts the remaining chain and the handler, and the
// response is sent as-is. Returning an error routes through the error
// boundary, which also aborts the chain.
type Middleware func(c *Context) (*Response, error)

// Response is a fully materialized HTTP response.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
}

// NewResponse creates a response with the given status and body.
func NewResponse(status int, body []byte) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
		Body:   body,
	}
}

// Write sends the response over the wire. Multi-valued headers such as
// Set-Cookie are emitted as separate entries, never merged.
func (r *Response) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range r.Header {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}
