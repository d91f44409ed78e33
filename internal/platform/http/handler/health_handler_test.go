package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(deps map[string]Pinger) *gin.Engine {
	h := NewHealthHandler(deps)
	r := gin.New()
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	r.GET("/readyz", h.Ready)
	return r
}

func TestHealth_ResponseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method         string
		expectedStatus int
		expectBody     bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodHead, http.StatusOK, false},
		{http.MethodOptions, http.StatusNoContent, false},
	}

	// 依存先が落ちていても liveness は影響を受けない
	router := setupRouter(map[string]Pinger{
		"store": PingFunc(func(context.Context) error { return errors.New("down") }),
	})

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/healthz", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.expectBody {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "ok", body["status"])
			} else {
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name           string
		deps           map[string]Pinger
		expectedStatus int
		expectedChecks map[string]any
	}{
		{
			name:           "no dependencies",
			deps:           nil,
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]any{},
		},
		{
			name:           "all dependencies up",
			deps:           map[string]Pinger{"store": up, "redis": up},
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]any{"store": "ok", "redis": "ok"},
		},
		{
			name:           "one dependency down",
			deps:           map[string]Pinger{"store": up, "redis": down},
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]any{"store": "ok", "redis": "unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			setupRouter(tt.deps).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedChecks, body["checks"])
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestReady_PingHasDeadline(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	dep := PingFunc(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	w := httptest.NewRecorder()
	setupRouter(map[string]Pinger{"store": dep}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasDeadline)
}
