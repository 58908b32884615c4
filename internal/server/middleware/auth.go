// Package middleware provides HTTP middleware for bearer-token authentication.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// userIDKey is the context key for storing the authenticated user ID.
const userIDKey ContextKey = "userID"

// TokenValidator is an interface for validating JWT tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter is an interface for extracting user ID from token claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// Authenticator resolves bearer tokens to user IDs.
type Authenticator struct {
	validator    TokenValidator
	unauthorized http.HandlerFunc
}

// NewAuthenticator creates an authenticator. unauthorized writes the 401 response;
// nil falls back to a plain-text error.
func NewAuthenticator(validator TokenValidator, unauthorized http.HandlerFunc) *Authenticator {
	if unauthorized == nil {
		unauthorized = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
	}
	return &Authenticator{validator: validator, unauthorized: unauthorized}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			a.unauthorized(w, r)
			return
		}
		userID, err := a.resolve(token)
		if err != nil {
			a.unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// Optional lets anonymous requests through but still rejects a token that is
// present and invalid.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := BearerToken(r)
		if !ok {
			a.unauthorized(w, r)
			return
		}
		userID, err := a.resolve(token)
		if err != nil {
			a.unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (a *Authenticator) resolve(token string) (uuid.UUID, error) {
	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.GetUserID(), nil
}

// BearerToken returns the token of a "Bearer <token>" Authorization header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user ID, if any.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
