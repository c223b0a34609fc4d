package internal

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// chiRouter is the primary adapter. Matching and dispatch are
// delegated to a chi trie; the registration surface translates the
// framework's ":param" and trailing "*" syntax to chi's "{param}" and
// "*" patterns. Groups share the underlying mux, the state reference,
// and a child scope.
type chiRouter struct {
	mux    *chi.Mux
	state  *State
	logger *slog.Logger
	scope  *scope
	prefix string
}

func newChiRouter(cfg *Config) (Router, error) {
	r := &chiRouter{
		mux:    chi.NewRouter(),
		state:  NewState(),
		logger: cfg.logger(),
		scope:  &scope{},
	}
	r.mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeNotFound(w, req, r.state, r.logger)
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeNotFound(w, req, r.state, r.logger)
	})
	return r, nil
}

func (r *chiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Built-in preflight responder answers every OPTIONS request
	// before routing and before any middleware (parity rule).
	if req.Method == http.MethodOptions {
		handlePreflight(w, req)
		return
	}
	req.URL.Path = normalizePath(req.URL.Path)
	if req.URL.RawPath != "" {
		req.URL.RawPath = normalizePath(req.URL.RawPath)
	}
	r.mux.ServeHTTP(w, req)
}

func (r *chiRouter) Use(mw ...Middleware) {
	r.scope.use(mw...)
}

func (r *chiRouter) State(key string, value ...any) any {
	return stateAccess(r.state, key, value)
}

func (r *chiRouter) Get(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodGet, path, h, optionalSchema(schema))
}

func (r *chiRouter) Post(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodPost, path, h, optionalSchema(schema))
}

func (r *chiRouter) Put(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodPut, path, h, optionalSchema(schema))
}

func (r *chiRouter) Delete(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodDelete, path, h, optionalSchema(schema))
}

func (r *chiRouter) Patch(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodPatch, path, h, optionalSchema(schema))
}

func (r *chiRouter) Group(prefix string, fn func(Router)) {
	fn(&chiRouter{
		mux:    r.mux,
		state:  r.state,
		logger: r.logger,
		scope:  &scope{parent: r.scope},
		prefix: joinPattern(r.prefix, prefix),
	})
}

func (r *chiRouter) register(method, path string, h HandlerFunc, schema *Schema) {
	rt := &route{
		method:  method,
		pattern: joinPattern(r.prefix, path),
		handler: h,
		schema:  schema,
		scope:   r.scope,
	}
	r.mux.MethodFunc(method, toChiPattern(rt.pattern), func(w http.ResponseWriter, req *http.Request) {
		dispatch(w, req, chiParams(req), rt, r.state, r.logger)
	})
}

// toChiPattern rewrites ":param" segments to chi's "{param}" form.
// A trailing "*" is already chi's greedy wildcard syntax.
func toChiPattern(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// chiParams extracts matched URL parameters with percent-decoded
// values. The chi wildcard value is exposed under "*".
func chiParams(req *http.Request) map[string]string {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		value := rctx.URLParams.Values[i]
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		params[key] = value
	}
	return params
}
