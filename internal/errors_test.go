package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		build  func(string, ...ErrorOption) *Error
		code   string
		status int
	}{
		{ErrValidation, CodeValidation, http.StatusBadRequest},
		{ErrNotFound, CodeNotFound, http.StatusNotFound},
		{ErrForbidden, CodeForbidden, http.StatusForbidden},
		{ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
		{ErrInternal, CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		e := tc.build("m")
		require.Equal(t, tc.code, e.Code)
		require.Equal(t, tc.status, e.Status)
		require.Equal(t, "m", e.Error())
	}
}

func TestErrorOptions(t *testing.T) {
	t.Parallel()

	t.Run("wrapped cause stays reachable", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("disk full")
		e := ErrInternal("internal server error", WithError(cause))
		require.ErrorIs(t, e, cause)
	})

	t.Run("details attach to validation errors", func(t *testing.T) {
		t.Parallel()

		e := ErrValidation("validation failed", WithDetails("title is required", "content is required"))
		require.Equal(t, []string{"title is required", "content is required"}, e.Details)
	})
}

func TestAsError(t *testing.T) {
	t.Parallel()

	e := ErrNotFound("missing")
	require.Equal(t, e, AsError(fmt.Errorf("lookup: %w", e)))
	require.Nil(t, AsError(errors.New("plain")))
	require.Nil(t, AsError(nil))
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	t.Run("tagged error renders its own envelope", func(t *testing.T) {
		t.Parallel()

		c := testContext(t, httptest.NewRequest(http.MethodGet, "/", nil))
		resp := HandleError(c, ErrForbidden("not yours"))
		require.Equal(t, http.StatusForbidden, resp.Status)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var env struct {
			Success bool          `json:"success"`
			Error   envelopeError `json:"error"`
		}
		require.NoError(t, json.Unmarshal(resp.Body, &env))
		require.False(t, env.Success)
		require.Equal(t, CodeForbidden, env.Error.Code)
		require.Equal(t, "not yours", env.Error.Message)
		require.Equal(t, c.RequestID(), env.Error.RequestID)
		require.Empty(t, env.Error.Details)
	})

	t.Run("untagged error collapses to internal without leaking", func(t *testing.T) {
		t.Parallel()

		c := testContext(t, httptest.NewRequest(http.MethodGet, "/", nil))
		resp := HandleError(c, errors.New("pq: connection refused"))
		require.Equal(t, http.StatusInternalServerError, resp.Status)
		require.NotContains(t, string(resp.Body), "connection refused")
		require.Contains(t, string(resp.Body), CodeInternal)
	})

	t.Run("details surface in the envelope", func(t *testing.T) {
		t.Parallel()

		c := testContext(t, httptest.NewRequest(http.MethodPost, "/posts", nil))
		resp := HandleError(c, ErrValidation("validation failed", WithDetails("title is required")))

		var env struct {
			Error envelopeError `json:"error"`
		}
		require.NoError(t, json.Unmarshal(resp.Body, &env))
		require.Equal(t, []string{"title is required"}, env.Error.Details)
	})
}
