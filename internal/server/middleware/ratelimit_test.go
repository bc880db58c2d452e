package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindestad/gantt/internal/server/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	t.Run("allows requests within burst", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := middleware.RateLimitByIP(ctx, 1, 3)(okHandler())

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i)
		}
	})

	t.Run("rejects after burst exhausted", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := middleware.RateLimitByIP(ctx, 0.001, 1)(okHandler())

		first := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		handler.ServeHTTP(first, req)
		require.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		handler.ServeHTTP(second, req)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("limits are per IP", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := middleware.RateLimitByIP(ctx, 0.001, 1)(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// Exhausting one IP's bucket leaves another IP unaffected.
		req = httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.RemoteAddr = "10.0.0.4:1234"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
