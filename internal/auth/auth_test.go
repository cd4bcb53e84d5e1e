package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(7, "ana@gym.test", "manager", testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, 7, claims.StaffID)
	assert.Equal(t, "ana@gym.test", claims.Email)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(7, "ana@gym.test", "manager", testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_EmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(7, "ana@gym.test", "manager", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestRefreshAccessToken(t *testing.T) {
	t.Run("refresh token produces a fresh access token", func(t *testing.T) {
		refresh, err := GenerateRefreshToken(7, "ana@gym.test", "manager", testSecret)
		require.NoError(t, err)

		access, claims, err := RefreshAccessToken(refresh, testSecret, "access-secret")
		require.NoError(t, err)
		assert.Equal(t, 7, claims.StaffID)

		accessClaims, err := ValidateToken(access, "access-secret")
		require.NoError(t, err)
		assert.Equal(t, "access", accessClaims.TokenType)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		access, err := GenerateAccessToken(7, "ana@gym.test", "manager", testSecret)
		require.NoError(t, err)

		_, _, err = RefreshAccessToken(access, testSecret, "access-secret")
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func setupProtectedRouter(secret string, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(secret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetStaffID(c)
		c.JSON(http.StatusOK, gin.H{"staff_id": id})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("valid bearer token passes", func(t *testing.T) {
		token, err := GenerateAccessToken(7, "ana@gym.test", "front_desk", testSecret)
		require.NoError(t, err)

		r := setupProtectedRouter(testSecret)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"staff_id":7`)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		r := setupProtectedRouter(testSecret)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token rejected on protected route", func(t *testing.T) {
		refresh, err := GenerateRefreshToken(7, "ana@gym.test", "front_desk", testSecret)
		require.NoError(t, err)

		r := setupProtectedRouter(testSecret)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	token, err := GenerateAccessToken(7, "ana@gym.test", "front_desk", testSecret)
	require.NoError(t, err)

	t.Run("allowed role passes", func(t *testing.T) {
		r := setupProtectedRouter(testSecret, RequireRole("front_desk", "manager"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disallowed role forbidden", func(t *testing.T) {
		r := setupProtectedRouter(testSecret, RequireRole("admin"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
