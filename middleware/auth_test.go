package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arenagg/tournament-core/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid token passes claims through", func(t *testing.T) {
		var gotUserID int
		var gotRole models.UserRole
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var err error
			gotUserID, err = GetUserIDFromContext(r.Context())
			require.NoError(t, err)
			gotRole, err = GetUserRoleFromContext(r.Context())
			require.NoError(t, err)
			w.WriteHeader(http.StatusOK)
		})

		token := signToken(t, testSecret, jwt.MapClaims{
			"user_id": 42,
			"role":    "player",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		Authenticate(testSecret)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 42, gotUserID)
		assert.Equal(t, models.RolePlayer, gotRole)
	})

	t.Run("missing header", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		Authenticate(testSecret)(okHandler(&called)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		called := false
		token := signToken(t, "other-secret", jwt.MapClaims{"user_id": 42, "role": "player"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		Authenticate(testSecret)(okHandler(&called)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("expired token", func(t *testing.T) {
		called := false
		token := signToken(t, testSecret, jwt.MapClaims{
			"user_id": 42,
			"role":    "player",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		Authenticate(testSecret)(okHandler(&called)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
}

func TestOptionalAuthenticate(t *testing.T) {
	t.Run("no token still passes through", func(t *testing.T) {
		var idErr error
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, idErr = GetUserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		OptionalAuthenticate(testSecret)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Error(t, idErr)
	})

	t.Run("valid token is picked up", func(t *testing.T) {
		var gotUserID int
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = GetUserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		token := signToken(t, testSecret, jwt.MapClaims{"user_id": 7, "role": "player"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		OptionalAuthenticate(testSecret)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7, gotUserID)
	})
}

func TestAuthorize(t *testing.T) {
	withClaims := func(claims jwt.MapClaims) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	}

	t.Run("allowed role", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()

		Authorize(models.RoleAdmin)(okHandler(&called)).ServeHTTP(rec, withClaims(jwt.MapClaims{"user_id": 1, "role": "admin"}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("forbidden role", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()

		Authorize(models.RoleAdmin)(okHandler(&called)).ServeHTTP(rec, withClaims(jwt.MapClaims{"user_id": 1, "role": "player"}))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("no claims in context", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		Authorize(models.RoleAdmin)(okHandler(&called)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
}

func TestGetUserIDFromContext(t *testing.T) {
	ctxWith := func(claims jwt.MapClaims) context.Context {
		return context.WithValue(context.Background(), userContextKey, claims)
	}

	t.Run("float64 claim", func(t *testing.T) {
		id, err := GetUserIDFromContext(ctxWith(jwt.MapClaims{"user_id": float64(5)}))
		require.NoError(t, err)
		assert.Equal(t, 5, id)
	})

	t.Run("string claim", func(t *testing.T) {
		id, err := GetUserIDFromContext(ctxWith(jwt.MapClaims{"user_id": "5"}))
		require.NoError(t, err)
		assert.Equal(t, 5, id)
	})

	t.Run("non-positive id", func(t *testing.T) {
		_, err := GetUserIDFromContext(ctxWith(jwt.MapClaims{"user_id": float64(0)}))
		require.Error(t, err)
	})

	t.Run("missing claim", func(t *testing.T) {
		_, err := GetUserIDFromContext(ctxWith(jwt.MapClaims{}))
		require.Error(t, err)
	})
}
