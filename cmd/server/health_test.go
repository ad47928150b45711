package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func serveHealth(t *testing.T, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealthHandler_OK(t *testing.T) {
	ok := func(context.Context) error { return nil }
	w := serveHealth(t, newHealthHandler(zap.NewNop(), healthCheck{"postgres", ok}, healthCheck{"redis", ok}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_HidesErrorDetails(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	secret := errors.New("dial tcp 10.0.0.5:5432: password authentication failed for user forum")
	redisCalled := false

	w := serveHealth(t, newHealthHandler(zap.New(core),
		healthCheck{"postgres", func(context.Context) error { return secret }},
		healthCheck{"redis", func(context.Context) error { redisCalled = true; return nil }},
	))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","message":"postgres is unavailable"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.False(t, redisCalled)

	entries := logs.FilterMessage("Health check failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, secret.Error(), entries[0].ContextMap()["error"])
	}
}
