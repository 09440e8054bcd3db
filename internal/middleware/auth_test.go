package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rental-inspection-backend/internal/config"
	"rental-inspection-backend/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func newRouter(cfg *config.Config, check func(c *gin.Context)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		if check != nil {
			check(c)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func serve(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	router := newRouter(&config.Config{SupabaseJWTSecret: testSecret}, nil)

	w := serve(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newRouter(&config.Config{SupabaseJWTSecret: testSecret}, nil)

	w := serve(router, "Bearer invalid-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token format")
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	router := newRouter(&config.Config{SupabaseJWTSecret: testSecret}, nil)

	w := serve(router, "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := &config.Config{SupabaseJWTSecret: testSecret}
	token := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	router := newRouter(cfg, func(c *gin.Context) {
		userID, exists := c.Get(middleware.UserIDKey)
		assert.True(t, exists)
		assert.Equal(t, "user-123", userID)
		_, bound := c.Get(middleware.MerchantIDKey)
		assert.False(t, bound)
	})

	w := serve(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_MerchantClaim(t *testing.T) {
	cfg := &config.Config{SupabaseJWTSecret: testSecret}
	token := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          "user-123",
		"app_metadata": map[string]interface{}{"merchant_id": "bikes-vienna"},
	}, testSecret)

	router := newRouter(cfg, func(c *gin.Context) {
		assert.Equal(t, "bikes-vienna", c.GetString(middleware.MerchantIDKey))
	})

	w := serve(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-123"}, "another-secret")
	router := newRouter(&config.Config{SupabaseJWTSecret: testSecret}, nil)

	w := serve(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signature is invalid")
}

func TestAuthMiddleware_Expired(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}, testSecret)
	router := newRouter(&config.Config{SupabaseJWTSecret: testSecret}, nil)

	w := serve(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has expired")
}

func TestAuthMiddleware_RejectsOtherAlgorithms(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "user-123"}, testSecret)
	router := newRouter(&config.Config{SupabaseJWTSecret: testSecret}, nil)

	w := serve(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"role": "anon"}, testSecret)
	router := newRouter(&config.Config{SupabaseJWTSecret: testSecret}, nil)

	w := serve(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing user id")
}
