package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"notes-backend/pkg/auth"
	"notes-backend/pkg/common"
)

// Authenticator attaches validated identities to request contexts. All
// traffic shares an IP rate limit; authenticated traffic additionally
// gets a per-user limit.
type Authenticator struct {
	validator   *auth.JWTValidator
	ipLimiter   auth.RateLimiter
	userLimiter auth.RateLimiter
	logger      *zap.Logger
}

// NewAuthenticator creates the authentication middleware provider
func NewAuthenticator(validator *auth.JWTValidator, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		validator:   validator,
		ipLimiter:   auth.NewTokenBucketLimiter(100, time.Minute/100),
		userLimiter: auth.NewTokenBucketLimiter(200, time.Minute/200),
		logger:      logger,
	}
}

// Require rejects requests without a valid bearer token
func (a *Authenticator) Require() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.allowIP(w, r) {
				return
			}

			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "Missing authentication token")
				return
			}

			identity, ok := a.validate(w, r, token)
			if !ok {
				return
			}
			if !a.allowUser(w, r, identity.ID) {
				return
			}

			next.ServeHTTP(w, r.WithContext(common.WithIdentity(r.Context(), *identity)))
		})
	}
}

// Optional attaches an identity when a valid bearer token is present
// and otherwise lets the request through anonymously. An invalid token
// is still rejected; silently ignoring it would mask client bugs.
func (a *Authenticator) Optional() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.allowIP(w, r) {
				return
			}

			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := a.validate(w, r, token)
			if !ok {
				return
			}
			if !a.allowUser(w, r, identity.ID) {
				return
			}

			next.ServeHTTP(w, r.WithContext(common.WithIdentity(r.Context(), *identity)))
		})
	}
}

func (a *Authenticator) validate(w http.ResponseWriter, r *http.Request, token string) (*common.Identity, bool) {
	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		a.logger.Warn("token rejected",
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
		if errors.Is(err, auth.ErrExpiredToken) {
			respondUnauthorized(w, "Token has expired")
		} else {
			respondUnauthorized(w, "Invalid token")
		}
		return nil, false
	}
	return &common.Identity{ID: claims.UserID, Role: claims.Role}, true
}

func (a *Authenticator) allowIP(w http.ResponseWriter, r *http.Request) bool {
	allowed, err := a.ipLimiter.Allow(r.Context(), clientIP(r))
	if err != nil || !allowed {
		respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return false
	}
	return true
}

func (a *Authenticator) allowUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	allowed, err := a.userLimiter.Allow(r.Context(), userID)
	if err != nil || !allowed {
		respondWithError(w, http.StatusTooManyRequests, "User rate limit exceeded")
		return false
	}
	return true
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// clientIP extracts the client IP address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
