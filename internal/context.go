package internal

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Context is the per-request mutable state bag threaded through the
// middleware chain and the handler. It is created once per request,
// owned exclusively by the handling adapter, and discarded after the
// response is built. Nothing in it is shared across requests except
// the *State reference.
type Context struct {
	request *http.Request
	logger  *slog.Logger

	params map[string]string
	query  url.Values
	body   map[string]any
	files  map[string]*multipart.FileHeader

	state  *State
	values map[string]any

	status  int
	header  http.Header
	cookies *Jar

	requestID string

	uid      int
	username string
	admin    bool
	authed   bool
}

// newContext builds a context from the raw request, resolved path
// params, and the shared application state. The request ID is generated
// here, before any user code runs, so it exists even for requests that
// fail during body decoding.
func newContext(r *http.Request, params map[string]string, state *State, logger *slog.Logger) *Context {
	if params == nil {
		params = map[string]string{}
	}
	return &Context{
		request:   r,
		logger:    logger,
		params:    params,
		query:     r.URL.Query(),
		body:      map[string]any{},
		state:     state,
		values:    map[string]any{},
		status:    http.StatusOK,
		header:    make(http.Header),
		cookies:   newJar(r.Header.Get("Cookie")),
		requestID: uuid.NewString(),
	}
}

// Request returns the underlying *http.Request.
func (c *Context) Request() *http.Request {
	return c.request
}

// RequestID returns the ID generated for this request.
func (c *Context) RequestID() string {
	return c.requestID
}

// Param returns the URL parameter value by name.
// Returns empty string if the parameter doesn't exist.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Params returns the full path parameter map.
func (c *Context) Params() map[string]string {
	return c.params
}

// Query returns the first query parameter value by name.
// Returns empty string if the parameter doesn't exist.
func (c *Context) Query(name string) string {
	return c.query.Get(name)
}

// QueryAll returns every value for a query parameter, in the order
// they appear in the URL.
func (c *Context) QueryAll(name string) []string {
	return c.query[name]
}

// QueryParams returns the flattened query map: a repeated key becomes
// an ordered []string, a single occurrence stays a plain string.
func (c *Context) QueryParams() map[string]any {
	flat := make(map[string]any, len(c.query))
	for key, values := range c.query {
		if len(values) == 1 {
			flat[key] = values[0]
		} else {
			flat[key] = values
		}
	}
	return flat
}

// Header returns the request header value by name, case-insensitively.
func (c *Context) Header(name string) string {
	return c.request.Header.Get(name)
}

// Body returns the decoded request body. It is an empty map for
// requests that carry no decodable body; handlers never observe a
// malformed body.
func (c *Context) Body() map[string]any {
	return c.body
}

// BodyValue returns a single decoded body field, or nil when absent.
func (c *Context) BodyValue(name string) any {
	return c.body[name]
}

// File returns the multipart file header for a file field, or nil if
// the field is absent or the request was not multipart.
func (c *Context) File(name string) *multipart.FileHeader {
	return c.files[name]
}

// State returns the shared application state. Mutations made through
// it are visible to every group because groups hold a reference to the
// same backing map, never a snapshot.
func (c *Context) State() *State {
	return c.state
}

// Set stores a per-request value, visible to later middleware and the
// handler of the same request only.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get retrieves a per-request value. Returns nil if not present.
func (c *Context) Get(key string) any {
	return c.values[key]
}

// Status returns the response status that will be used for plain
// handler return values.
func (c *Context) Status() int {
	return c.status
}

// SetStatus sets the response status for plain handler return values.
// Ignored when the handler returns a *Response.
func (c *Context) SetStatus(status int) {
	c.status = status
}

// SetHeader sets a response header.
func (c *Context) SetHeader(name, value string) {
	c.header.Set(name, value)
}

// ResponseHeader returns the mutable response header set.
func (c *Context) ResponseHeader() http.Header {
	return c.header
}

// Cookies returns the request's cookie jar. Set-Cookie fragments
// written through it are appended to the response headers when the
// response is built.
func (c *Context) Cookies() *Jar {
	return c.cookies
}

// SetUser stamps the derived identity onto the context.
func (c *Context) SetUser(id int, username string, admin bool) {
	c.uid = id
	c.username = username
	c.admin = admin
	c.authed = true
}

// UserID returns the authenticated user's ID.
// The second return value is false when the request is unauthenticated.
func (c *Context) UserID() (int, bool) {
	return c.uid, c.authed
}

// Username returns the authenticated user's name, or empty string.
func (c *Context) Username() string {
	return c.username
}

// IsAdmin reports whether the authenticated user is an admin.
func (c *Context) IsAdmin() bool {
	return c.authed && c.admin
}

// IsAuthenticated reports whether an identity was derived for this
// request.
func (c *Context) IsAuthenticated() bool {
	return c.authed
}

// Logger returns the request logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}
