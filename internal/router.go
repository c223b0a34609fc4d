package internal

import (
	"net/http"
	"strings"
	"sync"
)

// Router is the contract every adapter implements. Routes are
// registered at boot through the fluent surface and are immutable once
// stored; requests are served through http.Handler.
type Router interface {
	http.Handler

	// Use appends middleware to the chain. Execution strictly follows
	// registration order within one request.
	Use(mw ...Middleware)

	// State reads or writes shared application state. With one
	// argument it reads; with two it writes and returns the value.
	// Groups observe writes made after their creation because they
	// hold a reference to the same backing map.
	State(key string, value ...any) any

	// Route registration. The optional schema is validated against the
	// decoded body before the middleware chain runs.
	Get(path string, h HandlerFunc, schema ...*Schema)
	Post(path string, h HandlerFunc, schema ...*Schema)
	Put(path string, h HandlerFunc, schema ...*Schema)
	Delete(path string, h HandlerFunc, schema ...*Schema)
	Patch(path string, h HandlerFunc, schema ...*Schema)

	// Group creates a nested sub-router with prefixed paths. It shares
	// the parent middleware chain and a reference to shared state.
	Group(prefix string, fn func(Router))
}

// State is the shared application state map. It is populated at boot
// via State(key, value) and read-mostly during request handling;
// concurrent readers observe per-key writes atomically.
type State struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewState creates an empty state map.
func NewState() *State {
	return &State{data: map[string]any{}}
}

// Get returns the value for key, or nil.
func (s *State) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Set stores a value under key.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// scope is one level of the middleware hierarchy: the root router owns
// the root scope, each group gets a child. The effective chain for a
// route is its scope's ancestry walked root-first, which preserves
// registration order and lets a parent Use() made after group creation
// still apply.
type scope struct {
	parent      *scope
	middlewares []Middleware
}

func (s *scope) use(mw ...Middleware) {
	s.middlewares = append(s.middlewares, mw...)
}

// chain returns the middleware list for this scope, outermost first.
func (s *scope) chain() []Middleware {
	if s == nil {
		return nil
	}
	parent := s.parent.chain()
	if len(s.middlewares) == 0 {
		return parent
	}
	out := make([]Middleware, 0, len(parent)+len(s.middlewares))
	out = append(out, parent...)
	out = append(out, s.middlewares...)
	return out
}

// route is one immutable entry in an adapter's routing table.
type route struct {
	scope   *scope
	handler HandlerFunc
	schema  *Schema
	method  string
	pattern string
}

// optionalSchema collapses the variadic schema argument.
func optionalSchema(schemas []*Schema) *Schema {
	if len(schemas) == 0 {
		return nil
	}
	return schemas[0]
}

// joinPattern joins a group prefix with a route path. The result is
// always normalized: request paths are matched with the trailing slash
// stripped, so a stored pattern must never keep one.
func joinPattern(prefix, path string) string {
	if prefix == "" {
		return normalizePath(path)
	}
	joined := strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
	return normalizePath(joined)
}

// normalizePath makes matching trailing-slash-insensitive: /x/ and /x
// resolve to the same handler. The root path stays "/".
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

// stateAccess implements the State get/set overload shared by both
// adapters.
func stateAccess(s *State, key string, value []any) any {
	if len(value) > 0 {
		s.Set(key, value[0])
		return value[0]
	}
	return s.Get(key)
}
