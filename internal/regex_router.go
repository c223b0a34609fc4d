package internal

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/grafana/regexp"
)

// regexRouter is the secondary adapter: a linear-scan matcher over
// per-method tables of compiled regular expressions. It supports the
// same ":param" segments and greedy trailing "*" as the primary
// adapter and must stay byte-identical to it on every observable axis:
// not-found shape, preflight, trailing-slash handling, query parsing.
type regexRouter struct {
	table  *regexTable
	state  *State
	logger *slog.Logger
	scope  *scope
	prefix string
}

// regexTable is shared by the root router and all of its groups.
type regexTable struct {
	routes map[string][]*regexRoute
}

type regexRoute struct {
	*route
	re   *regexp.Regexp
	keys []string
}

func newRegexRouter(cfg *Config) (Router, error) {
	return &regexRouter{
		table:  &regexTable{routes: map[string][]*regexRoute{}},
		state:  NewState(),
		logger: cfg.logger(),
		scope:  &scope{},
	}, nil
}

func (r *regexRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodOptions {
		handlePreflight(w, req)
		return
	}
	req.URL.Path = normalizePath(req.URL.Path)
	if req.URL.RawPath != "" {
		req.URL.RawPath = normalizePath(req.URL.RawPath)
	}

	// Match on the escaped form so an encoded slash inside a segment
	// does not split it; values are decoded during extraction.
	path := req.URL.EscapedPath()
	for _, rt := range r.table.routes[req.Method] {
		if params, ok := rt.match(path); ok {
			dispatch(w, req, params, rt.route, r.state, r.logger)
			return
		}
	}
	writeNotFound(w, req, r.state, r.logger)
}

func (r *regexRouter) Use(mw ...Middleware) {
	r.scope.use(mw...)
}

func (r *regexRouter) State(key string, value ...any) any {
	return stateAccess(r.state, key, value)
}

func (r *regexRouter) Get(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodGet, path, h, optionalSchema(schema))
}

func (r *regexRouter) Post(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodPost, path, h, optionalSchema(schema))
}

func (r *regexRouter) Put(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodPut, path, h, optionalSchema(schema))
}

func (r *regexRouter) Delete(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodDelete, path, h, optionalSchema(schema))
}

func (r *regexRouter) Patch(path string, h HandlerFunc, schema ...*Schema) {
	r.register(http.MethodPatch, path, h, optionalSchema(schema))
}

func (r *regexRouter) Group(prefix string, fn func(Router)) {
	fn(&regexRouter{
		table:  r.table,
		state:  r.state,
		logger: r.logger,
		scope:  &scope{parent: r.scope},
		prefix: joinPattern(r.prefix, prefix),
	})
}

// register compiles the pattern and appends the route to the
// per-method table. Invalid patterns panic at boot, matching the
// primary adapter's behavior.
func (r *regexRouter) register(method, path string, h HandlerFunc, schema *Schema) {
	pattern := joinPattern(r.prefix, path)
	re, keys, err := compileRoutePattern(pattern)
	if err != nil {
		panic(fmt.Sprintf("relay: invalid route pattern %q: %v", pattern, err))
	}
	r.table.routes[method] = append(r.table.routes[method], &regexRoute{
		route: &route{
			method:  method,
			pattern: pattern,
			handler: h,
			schema:  schema,
			scope:   r.scope,
		},
		re:   re,
		keys: keys,
	})
}

// match compares a normalized path against the compiled pattern and
// extracts percent-decoded parameter values.
func (rt *regexRoute) match(path string) (map[string]string, bool) {
	matches := rt.re.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}
	params := make(map[string]string, len(rt.keys))
	for i, key := range rt.keys {
		value := matches[i+1]
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		params[key] = value
	}
	return params, true
}

// compileRoutePattern converts a route pattern into an anchored
// regular expression with one capture group per dynamic segment.
// ":name" segments match one path segment; a trailing "*" greedily
// matches the rest of the path under the "*" key.
func compileRoutePattern(pattern string) (*regexp.Regexp, []string, error) {
	var b strings.Builder
	var keys []string

	b.WriteString("^")
	segments := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	for i, seg := range segments {
		switch {
		case seg == "*" && i == len(segments)-1:
			b.WriteString("/(.*)")
			keys = append(keys, "*")
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			b.WriteString("/([^/]+)")
			keys = append(keys, seg[1:])
		default:
			b.WriteString("/")
			b.WriteString(regexp.QuoteMeta(seg))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, err
	}
	return re, keys, nil
}
