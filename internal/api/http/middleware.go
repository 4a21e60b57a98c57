package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"rentshare-backend/internal/config"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFromContext returns the token claims stored by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*security.UserClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no access token.
func UserIDFromContext(ctx context.Context) int32 {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0
	}
	return claims.UserID
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Handler authenticates requests according to the security level of the
// matched route.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var routeName string
		if route := mux.CurrentRoute(r); route != nil {
			routeName = route.GetName()
		}
		level := config.GetSecurityLevel(routeName)

		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authorization token is not provided")
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			logger.WarnContext(r.Context(), "Rejected bearer token", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
			return
		}

		if !levelAllows(level, claims.Type) {
			logger.WarnContext(r.Context(), "Token type not allowed on route", "route", routeName, "tokenType", claims.Type)
			writeError(w, http.StatusForbidden, security.ErrWrongTokenType.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func levelAllows(level config.SecurityLevel, t security.TokenType) bool {
	switch level {
	case config.SecurityAccess:
		return t == security.TokenTypeAccess
	case config.SecurityService:
		return t == security.TokenTypeService
	}
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.ToUpper(header[0:7]) == "BEARER " {
		return header[7:], true
	}
	return "", false
}

// NewRateLimiter builds a per-user limiter backed by Redis. rate uses the
// limiter's formatted notation, e.g. "30-M".
func NewRateLimiter(client *redis.Client, rate, routeID string) (*stdlib.Middleware, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q for route %s: %w", rate, routeID, err)
	}

	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "rate_limiter:" + routeID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store for route %s: %w", routeID, err)
	}

	return stdlib.NewMiddleware(limiter.New(store, parsed), stdlib.WithKeyGetter(func(r *http.Request) string {
		if id := UserIDFromContext(r.Context()); id != 0 {
			return strconv.Itoa(int(id))
		}
		return "anonymous"
	})), nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs one line per request and turns panics into 500s.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Panic while serving request", "method", r.Method, "path", r.URL.Path, "panic", p)
				writeError(rec, http.StatusInternalServerError, "internal error")
			}
			logger.InfoContext(r.Context(), "HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		}()
		next.ServeHTTP(rec, r)
	})
}
