package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTClaims are the claims handlers care about after validation.
type JWTClaims struct {
	Subject string
	Roles   []string
}

// JWTValidator validates bearer tokens for the report API.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

type contextKeySubject struct{}
type contextKeyRoles struct{}

// GetSubject retrieves the authenticated subject from the context.
func GetSubject(ctx context.Context) string {
	subject, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok {
		return ""
	}
	return subject
}

// GetRoles retrieves the authenticated subject's roles.
func GetRoles(ctx context.Context) []string {
	roles, ok := ctx.Value(contextKeyRoles{}).([]string)
	if !ok {
		return nil
	}
	return roles
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				unauthorized(w, r, logger, "missing or malformed Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("rejected token",
						"error", err,
						"request_id", GetRequestID(r.Context()))
				}
				unauthorized(w, r, logger, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeySubject{}, claims.Subject)
			ctx = context.WithValue(ctx, contextKeyRoles{}, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`)); err != nil && logger != nil {
		logger.Error("failed to write unauthorized response",
			"error", err,
			"request_id", GetRequestID(r.Context()))
	}
}
