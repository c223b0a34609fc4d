package internal

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, engine Engine) Router {
	t.Helper()
	r, err := NewRouter(Config{Engine: engine})
	require.NoError(t, err)
	return r
}

func doRequest(r Router, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, body []byte) (code, message, requestID string, details []any) {
	t.Helper()
	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
			Details   []any  `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.False(t, env.Success)
	return env.Error.Code, env.Error.Message, env.Error.RequestID, env.Error.Details
}

// engines lists every adapter family; most routing tests run against
// both.
var engines = []Engine{EngineChi, EngineRegex}

func TestRouting(t *testing.T) {
	t.Parallel()

	for _, engine := range engines {
		engine := engine
		t.Run(string(engine), func(t *testing.T) {
			t.Parallel()

			t.Run("plain value serializes as json with context status", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Post("/posts", func(c *Context) (any, error) {
					c.SetStatus(http.StatusCreated)
					return map[string]string{"title": "T"}, nil
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodPost, "/posts", nil))
				require.Equal(t, http.StatusCreated, rec.Code)
				require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				require.JSONEq(t, `{"title":"T"}`, rec.Body.String())
			})

			t.Run("raw response bypasses context status and headers", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/raw", func(c *Context) (any, error) {
					c.SetStatus(http.StatusTeapot)
					c.SetHeader("X-Ignored", "yes")
					resp := NewResponse(http.StatusAccepted, []byte("raw"))
					resp.Header.Set("Content-Type", "text/plain")
					return resp, nil
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/raw", nil))
				require.Equal(t, http.StatusAccepted, rec.Code)
				require.Equal(t, "raw", rec.Body.String())
				require.Empty(t, rec.Header().Get("X-Ignored"))
			})

			t.Run("path params with percent-decoding", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/users/:name", func(c *Context) (any, error) {
					return map[string]string{"name": c.Param("name")}, nil
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/users/ada%20lovelace", nil))
				require.Equal(t, http.StatusOK, rec.Code)
				require.JSONEq(t, `{"name":"ada lovelace"}`, rec.Body.String())
			})

			t.Run("trailing slash resolves to the same handler", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/posts/:id", func(c *Context) (any, error) {
					return map[string]string{"id": c.Param("id")}, nil
				})

				plain := doRequest(r, httptest.NewRequest(http.MethodGet, "/posts/5", nil))
				slashed := doRequest(r, httptest.NewRequest(http.MethodGet, "/posts/5/", nil))
				require.Equal(t, http.StatusOK, plain.Code)
				require.Equal(t, plain.Code, slashed.Code)
				require.Equal(t, plain.Body.String(), slashed.Body.String())
			})

			t.Run("route registered with a trailing slash still matches", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/posts/", func(c *Context) (any, error) {
					return map[string]bool{"ok": true}, nil
				})

				for _, target := range []string{"/posts", "/posts/"} {
					rec := doRequest(r, httptest.NewRequest(http.MethodGet, target, nil))
					require.Equal(t, http.StatusOK, rec.Code)
					require.JSONEq(t, `{"ok":true}`, rec.Body.String())
				}
			})

			t.Run("not-found message echoes the path as received", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/nope/", nil))
				require.Equal(t, http.StatusNotFound, rec.Code)

				_, message, _, _ := decodeEnvelope(t, rec.Body.Bytes())
				require.Equal(t, "Route GET /nope/ not found", message)
			})

			t.Run("unmatched route returns the fixed not-found envelope", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/known", func(c *Context) (any, error) { return nil, nil })

				rec := doRequest(r, httptest.NewRequest(http.MethodDelete, "/nope", nil))
				require.Equal(t, http.StatusNotFound, rec.Code)

				code, message, requestID, _ := decodeEnvelope(t, rec.Body.Bytes())
				require.Equal(t, CodeNotFound, code)
				require.Equal(t, "Route DELETE /nope not found", message)
				require.Greater(t, len(requestID), 5)
			})

			t.Run("options answers preflight for any path", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/known", func(c *Context) (any, error) { return nil, nil })

				for _, path := range []string{"/known", "/never-registered"} {
					req := httptest.NewRequest(http.MethodOptions, path, nil)
					req.Header.Set("Origin", "https://app.example.com")
					rec := doRequest(r, req)

					require.Equal(t, http.StatusNoContent, rec.Code)
					require.Equal(t, "GET, POST, PUT, DELETE, PATCH, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
					require.Equal(t, "content-type, authorization, x-csrf-token", rec.Header().Get("Access-Control-Allow-Headers"))
					require.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
					require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
					require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
				}
			})

			t.Run("preflight without origin echoes wildcard", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				rec := doRequest(r, httptest.NewRequest(http.MethodOptions, "/x", nil))
				require.Equal(t, http.StatusNoContent, rec.Code)
				require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			})

			t.Run("preflight wins over registered middleware", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				called := false
				r.Use(func(c *Context) (*Response, error) {
					called = true
					return nil, nil
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodOptions, "/anything", nil))
				require.Equal(t, http.StatusNoContent, rec.Code)
				require.False(t, called)
			})

			t.Run("schema failure rejects before the handler", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				reached := false
				schema := Object(map[string]Property{
					"title":   Required(TypeString),
					"content": Required(TypeString),
				})
				r.Post("/posts", func(c *Context) (any, error) {
					reached = true
					return map[string]bool{"ok": true}, nil
				}, schema)

				req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{}`))
				req.Header.Set("Content-Type", "application/json")
				rec := doRequest(r, req)

				require.Equal(t, http.StatusBadRequest, rec.Code)
				require.False(t, reached)
				code, _, _, details := decodeEnvelope(t, rec.Body.Bytes())
				require.Equal(t, CodeValidation, code)
				require.GreaterOrEqual(t, len(details), 2)

				valid := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"title":"T","content":"C"}`))
				valid.Header.Set("Content-Type", "application/json")
				rec = doRequest(r, valid)
				require.Equal(t, http.StatusOK, rec.Code)
				require.True(t, reached)
			})

			t.Run("middleware runs in registration order and short-circuits", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				var order []string
				r.Use(func(c *Context) (*Response, error) {
					order = append(order, "first")
					return nil, nil
				})
				r.Use(func(c *Context) (*Response, error) {
					order = append(order, "second")
					resp := NewResponse(http.StatusForbidden, []byte("stop"))
					return resp, nil
				})
				r.Use(func(c *Context) (*Response, error) {
					order = append(order, "third")
					return nil, nil
				})
				r.Get("/guarded", func(c *Context) (any, error) {
					order = append(order, "handler")
					return nil, nil
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/guarded", nil))
				require.Equal(t, http.StatusForbidden, rec.Code)
				require.Equal(t, "stop", rec.Body.String())
				require.Equal(t, []string{"first", "second"}, order)
			})

			t.Run("middleware error routes through the boundary", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Use(func(c *Context) (*Response, error) {
					return nil, ErrForbidden("not yours")
				})
				r.Get("/secret", func(c *Context) (any, error) { return nil, nil })

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/secret", nil))
				require.Equal(t, http.StatusForbidden, rec.Code)
				code, message, _, _ := decodeEnvelope(t, rec.Body.Bytes())
				require.Equal(t, CodeForbidden, code)
				require.Equal(t, "not yours", message)
			})

			t.Run("handler error maps to the envelope", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/posts/:id", func(c *Context) (any, error) {
					return nil, ErrNotFound("post not found")
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/posts/404", nil))
				require.Equal(t, http.StatusNotFound, rec.Code)
				code, _, _, _ := decodeEnvelope(t, rec.Body.Bytes())
				require.Equal(t, CodeNotFound, code)
			})

			t.Run("unrecognized error maps to internal", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/boom", func(c *Context) (any, error) {
					return nil, errors.New("database gone")
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
				require.Equal(t, http.StatusInternalServerError, rec.Code)
				code, message, _, _ := decodeEnvelope(t, rec.Body.Bytes())
				require.Equal(t, CodeInternal, code)
				require.Equal(t, "internal server error", message)
			})

			t.Run("panic is recovered at the boundary", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/panic", func(c *Context) (any, error) {
					panic("boom")
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
				require.Equal(t, http.StatusInternalServerError, rec.Code)
				code, _, _, _ := decodeEnvelope(t, rec.Body.Bytes())
				require.Equal(t, CodeInternal, code)
			})

			t.Run("two cookies yield two Set-Cookie entries", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/cookies", func(c *Context) (any, error) {
					c.Cookies().Set("first", "1")
					c.Cookies().Set("second", "2")
					return map[string]bool{"ok": true}, nil
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/cookies", nil))
				require.Equal(t, []string{"first=1", "second=2"}, rec.Header().Values("Set-Cookie"))
			})

			t.Run("group prefixes paths and shares middleware", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				var order []string
				r.Use(func(c *Context) (*Response, error) {
					order = append(order, "root")
					return nil, nil
				})
				r.Group("/api/v1", func(g Router) {
					g.Use(func(c *Context) (*Response, error) {
						order = append(order, "group")
						return nil, nil
					})
					g.Get("/posts/:id", func(c *Context) (any, error) {
						return map[string]string{"id": c.Param("id")}, nil
					})
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/api/v1/posts/9", nil))
				require.Equal(t, http.StatusOK, rec.Code)
				require.JSONEq(t, `{"id":"9"}`, rec.Body.String())
				require.Equal(t, []string{"root", "group"}, order)

				// Group middleware must not leak to routes outside it.
				r.Get("/outside", func(c *Context) (any, error) { return nil, nil })
				order = nil
				doRequest(r, httptest.NewRequest(http.MethodGet, "/outside", nil))
				require.Equal(t, []string{"root"}, order)
			})

			t.Run("state set after group creation is visible inside it", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Group("/api", func(g Router) {
					g.Get("/config", func(c *Context) (any, error) {
						return map[string]any{"flag": c.State().Get("flag")}, nil
					})
				})

				// Late binding: written after the group was built.
				r.State("flag", "on")

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/api/config", nil))
				require.JSONEq(t, `{"flag":"on"}`, rec.Body.String())
			})

			t.Run("state get and set overload", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				require.Nil(t, r.State("missing"))
				require.Equal(t, 42, r.State("answer", 42))
				require.Equal(t, 42, r.State("answer"))
			})

			t.Run("greedy trailing wildcard", func(t *testing.T) {
				t.Parallel()

				r := newTestRouter(t, engine)
				r.Get("/files/*", func(c *Context) (any, error) {
					return map[string]string{"path": c.Param("*")}, nil
				})

				rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/files/a/b/c.txt", nil))
				require.Equal(t, http.StatusOK, rec.Code)
				require.JSONEq(t, `{"path":"a/b/c.txt"}`, rec.Body.String())
			})
		})
	}
}
