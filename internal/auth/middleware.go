package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jengaest/estimation-api/internal/config"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// UserProvisioner mirrors an authenticated identity into the local users
// table so ownership foreign keys resolve.
type UserProvisioner interface {
	Upsert(ctx context.Context, user *domain.User) error
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	users        UserProvisioner
	seen         sync.Map
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware. users may be
// nil, in which case no local account rows are provisioned.
func NewMiddleware(cfg *config.Config, users UserProvisioner, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(&cfg.Auth),
		users:        users,
		logger:       logger,
	}
}

// Authenticate validates the bearer token and installs the user context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.jwtValidator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("user_email", userCtx.Email),
			zap.Duration("auth_duration", time.Since(start)),
		)

		m.provision(r.Context(), userCtx)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// provision upserts the account row once per process per user. Failures
// are logged and the request proceeds; writes that need the row will
// surface the problem as a foreign key error.
func (m *Middleware) provision(ctx context.Context, user *UserContext) {
	if m.users == nil {
		return
	}
	if _, ok := m.seen.Load(user.UserID); ok {
		return
	}
	first, last := splitDisplayName(user.DisplayName)
	err := m.users.Upsert(ctx, &domain.User{
		BaseModel: domain.BaseModel{ID: user.UserID},
		Email:     user.Email,
		FirstName: first,
		LastName:  last,
		Roles:     pq.StringArray(user.Roles),
		IsActive:  true,
	})
	if err != nil {
		m.logger.Warn("user provisioning failed",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err),
		)
		return
	}
	m.seen.Store(user.UserID, struct{}{})
}

func splitDisplayName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// RequireRole rejects authenticated requests lacking the given role
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !user.HasRole(role) && !user.IsAdmin() {
				m.logger.Warn("role check failed",
					zap.String("path", r.URL.Path),
					zap.String("user_id", user.UserID.String()),
					zap.String("required_role", role),
				)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
