package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// CORS preflight response headers, identical across adapters. The
// built-in responder answers OPTIONS before any registered middleware
// runs; this rule is part of the cross-adapter parity contract.
const (
	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders = "content-type, authorization, x-csrf-token"
	corsMaxAge       = "600"
)

// handlePreflight answers any OPTIONS request, registered or not, with
// a fixed 204 response. Access-Control-Allow-Origin echoes the
// request's Origin, or "*" when absent.
func handlePreflight(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Max-Age", corsMaxAge)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Origin", origin)
	w.WriteHeader(http.StatusNoContent)
}

// writeNotFound writes the fixed not-found envelope. A context is
// still allocated so the envelope carries a real request ID. The
// message echoes the path as received, before trailing-slash
// normalization, which is why it is recovered from the request line.
func writeNotFound(w http.ResponseWriter, r *http.Request, state *State, logger *slog.Logger) {
	c := newContext(r, nil, state, logger)
	message := fmt.Sprintf("Route %s %s not found", r.Method, receivedPath(r))
	resp := HandleError(c, ErrNotFound(message))
	resp.Write(w)
}

// receivedPath returns the request path as the client sent it. The
// adapters normalize r.URL.Path before matching, but the request line
// is never touched.
func receivedPath(r *http.Request) string {
	if u, err := url.ParseRequestURI(r.RequestURI); err == nil && u.Path != "" {
		return u.Path
	}
	return r.URL.Path
}

// dispatch runs the full request lifecycle for a matched route:
// context construction, body decoding, schema validation, the
// middleware chain, the handler, and response serialization. Every
// failure, including panics, is caught exactly once here and mapped
// through the error boundary; nothing escapes to the transport layer.
func dispatch(w http.ResponseWriter, r *http.Request, params map[string]string, rt *route, state *State, logger *slog.Logger) {
	c := newContext(r, params, state, logger)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic in request handler",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", c.RequestID(),
				"panic", rec,
			)
			writeError(w, c, ErrInternal("internal server error", WithError(fmt.Errorf("panic: %v", rec))))
		}
	}()

	// Decode and validate before any user code: a handler never
	// observes a malformed body.
	if err := decodeBody(c); err != nil {
		writeError(w, c, err)
		return
	}
	if rt.schema != nil {
		if errs := rt.schema.Validate(c.body); len(errs) > 0 {
			writeError(w, c, ErrValidation("validation failed", WithDetails(errs...)))
			return
		}
	}

	for _, mw := range rt.scope.chain() {
		resp, err := mw(c)
		if err != nil {
			writeError(w, c, err)
			return
		}
		if resp != nil {
			// Middleware short-circuit: send as-is, skip the rest of
			// the chain and the handler.
			resp.Write(w)
			return
		}
	}

	result, err := rt.handler(c)
	if err != nil {
		writeError(w, c, err)
		return
	}

	// A raw response bypasses context-level status and headers
	// entirely; the handler owns it.
	if resp, ok := result.(*Response); ok {
		resp.Write(w)
		return
	}

	writeResult(w, c, result)
}

// writeResult serializes a plain handler return value as JSON with the
// context's response state and queued cookies applied.
func writeResult(w http.ResponseWriter, c *Context, result any) {
	body, err := json.Marshal(result)
	if err != nil {
		writeError(w, c, ErrInternal("failed to serialize response", WithError(err)))
		return
	}

	resp := NewResponse(c.Status(), body)
	for name, values := range c.ResponseHeader() {
		for _, v := range values {
			resp.Header.Add(name, v)
		}
	}
	resp.Header.Set("Content-Type", "application/json")
	applyCookies(c, resp)
	resp.Write(w)
}

// writeError renders any error through the single envelope boundary.
func writeError(w http.ResponseWriter, c *Context, err error) {
	if e := AsError(err); e == nil || e.Status >= http.StatusInternalServerError {
		c.Logger().Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"request_id", c.RequestID(),
			"error", err,
		)
	}
	resp := HandleError(c, err)
	applyCookies(c, resp)
	resp.Write(w)
}

// applyCookies appends queued Set-Cookie fragments as separate header
// entries.
func applyCookies(c *Context, resp *Response) {
	for _, fragment := range c.Cookies().pending() {
		resp.Header.Add("Set-Cookie", fragment)
	}
}
