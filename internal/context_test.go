package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/relay/pkg/logger"
)

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("request id exists before any user code", func(t *testing.T) {
		t.Parallel()

		c := testContext(t, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Greater(t, len(c.RequestID()), 5)
	})

	t.Run("request ids are unique per context", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		a := testContext(t, r)
		b := testContext(t, r)
		require.NotEqual(t, a.RequestID(), b.RequestID())
	})

	t.Run("repeated query keys flatten to an ordered list", func(t *testing.T) {
		t.Parallel()

		c := testContext(t, httptest.NewRequest(http.MethodGet, "/search?tag=go&tag=http&q=router", nil))

		flat := c.QueryParams()
		require.Equal(t, []string{"go", "http"}, flat["tag"])
		require.Equal(t, "router", flat["q"])

		require.Equal(t, "go", c.Query("tag"))
		require.Equal(t, []string{"go", "http"}, c.QueryAll("tag"))
	})

	t.Run("header lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Custom-Header", "v")
		c := testContext(t, req)

		require.Equal(t, "v", c.Header("x-custom-header"))
		require.Equal(t, "v", c.Header("X-CUSTOM-HEADER"))
	})

	t.Run("response state starts at 200 with empty headers", func(t *testing.T) {
		t.Parallel()

		c := testContext(t, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, c.Status())
		require.Empty(t, c.ResponseHeader())

		c.SetStatus(http.StatusCreated)
		c.SetHeader("X-Total", "3")
		require.Equal(t, http.StatusCreated, c.Status())
		require.Equal(t, "3", c.ResponseHeader().Get("X-Total"))
	})

	t.Run("per-request values are isolated", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		a := testContext(t, r)
		b := testContext(t, r)

		a.Set("k", 1)
		require.Equal(t, 1, a.Get("k"))
		require.Nil(t, b.Get("k"))
	})

	t.Run("identity stamping", func(t *testing.T) {
		t.Parallel()

		c := testContext(t, httptest.NewRequest(http.MethodGet, "/", nil))

		_, ok := c.UserID()
		require.False(t, ok)
		require.False(t, c.IsAuthenticated())
		require.False(t, c.IsAdmin())

		c.SetUser(7, "ada", true)
		uid, ok := c.UserID()
		require.True(t, ok)
		require.Equal(t, 7, uid)
		require.Equal(t, "ada", c.Username())
		require.True(t, c.IsAdmin())
	})

	t.Run("state is shared by reference", func(t *testing.T) {
		t.Parallel()

		state := NewState()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		c := newContext(r, nil, state, logger.NewNope())

		state.Set("db", "pool")
		require.Equal(t, "pool", c.State().Get("db"))
	})
}
