package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		Secret:   "test-signing-secret",
		Issuer:   "estimation-api",
		TokenTTL: 3600,
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	cfg := testAuthConfig()
	userID := uuid.New()

	token, err := IssueToken(cfg, userID, "mason@example.com", []string{RoleEstimator})
	require.NoError(t, err)

	userCtx, err := NewJWTValidator(cfg).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, userCtx.UserID)
	assert.Equal(t, "mason@example.com", userCtx.Email)
	assert.True(t, userCtx.HasRole(RoleEstimator))
	assert.False(t, userCtx.IsAdmin())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	cfg := testAuthConfig()
	token, err := IssueToken(cfg, uuid.New(), "mason@example.com", nil)
	require.NoError(t, err)

	other := testAuthConfig()
	other.Secret = "a-different-secret"
	_, err = NewJWTValidator(other).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Issuer = "somebody-else"
	token, err := IssueToken(cfg, uuid.New(), "mason@example.com", nil)
	require.NoError(t, err)

	_, err = NewJWTValidator(testAuthConfig()).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTL = -60
	token, err := IssueToken(cfg, uuid.New(), "mason@example.com", nil)
	require.NoError(t, err)

	_, err = NewJWTValidator(cfg).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsNonUUIDSubject(t *testing.T) {
	cfg := testAuthConfig()
	claims := &Claims{
		Email: "mason@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "not-a-uuid",
			Issuer:  cfg.Issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = NewJWTValidator(cfg).ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateMiddleware(t *testing.T) {
	cfg := &config.Config{Auth: *testAuthConfig()}
	mw := NewMiddleware(cfg, nil, zap.NewNop())
	userID := uuid.New()

	var captured *UserContext
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = MustFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueToken(&cfg.Auth, userID, "mason@example.com", []string{RoleViewer})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/estimates", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, userID, captured.UserID)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/estimates", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/estimates", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	cfg := &config.Config{Auth: *testAuthConfig()}
	mw := NewMiddleware(cfg, nil, zap.NewNop())

	protected := mw.RequireRole(RoleEstimator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(user *UserContext) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", nil)
		if user != nil {
			req = req.WithContext(WithUserContext(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(&UserContext{UserID: uuid.New(), Roles: []string{RoleEstimator}}).Code)
	assert.Equal(t, http.StatusOK, serve(&UserContext{UserID: uuid.New(), Roles: []string{RoleAdmin}}).Code)
	assert.Equal(t, http.StatusForbidden, serve(&UserContext{UserID: uuid.New(), Roles: []string{RoleViewer}}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)
}
