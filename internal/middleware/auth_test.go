package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthTestRouter(verify TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinZapLogger(zap.NewNop()))
	r.GET("/private", AuthMiddleware(verify, zap.NewNop()), func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		claims, _ := ClaimsFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "token_id": claims.ID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	verify := func(ctx context.Context, token string) (*models.Claims, error) {
		switch token {
		case "good":
			c := &models.Claims{UserID: 42, Username: "neo", Role: models.RoleAuthor}
			c.ID = "tok-1"
			return c, nil
		case "old":
			return nil, models.ErrTokenExpired
		case "broken":
			return nil, errors.New("redis unavailable")
		}
		return nil, models.ErrTokenInvalid
	}
	router := newAuthTestRouter(verify)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"expired", "Bearer old", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"verifier failure", "Bearer broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
			if tt.status != http.StatusOK {
				var body models.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, models.StatusError, body.Status)
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.status, body.Error.Code)
			}
		})
	}
}

func TestGinZapLoggerKeepsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinZapLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}
