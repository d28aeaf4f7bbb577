package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/unified_pay/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		principal, _ := middleware.GetPrincipalFromContext(c)
		hasLogger := middleware.GetLoggerFromCtx(c.Request.Context()) != nil
		c.JSON(http.StatusOK, gin.H{"principal": principal, "logger": hasLogger})
	})
	return r
}

func signToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestStructuredLoggingMiddleware_SetsRequestID(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"principal":"","logger":true}`, w.Body.String())
}

func TestStructuredLoggingMiddleware_KeepsValidIncomingRequestID(t *testing.T) {
	r := newRouter()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "6f1c3c4e-8a3b-4a55-9d0b-1f6f2d7c9e11")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "6f1c3c4e-8a3b-4a55-9d0b-1f6f2d7c9e11", w.Header().Get("X-Request-ID"))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + signToken(t, "ops", time.Now().Add(-time.Hour)), wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + signToken(t, "ops", time.Now().Add(time.Hour)), wantStatus: http.StatusOK},
	}

	r := newRouter(middleware.AuthMiddleware(testSecret))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"principal":"ops","logger":true}`, w.Body.String())
			}
		})
	}
}

func TestRateLimit_RejectsAfterLimit(t *testing.T) {
	lim, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)
	r := newRouter(middleware.RateLimit(lim))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRateLimiter_InvalidFormat(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}
