// Package auth provides authentication context helpers.
//
// This package is imported by both middleware and handler packages without
// causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/DukeRupert/boxoffice/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	userContextKey    contextKey = "user"
	sessionContextKey contextKey = "session"
)

// GetUser retrieves the authenticated user from the context.
//
// Returns nil if the gatekeeper did not load a user for this request.
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserFromRequest is GetUser for a request.
func GetUserFromRequest(r *http.Request) *domain.User {
	return GetUser(r.Context())
}

// SetUser stores a user in the context.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetSession returns the decoded session token, if any.
func GetSession(ctx context.Context) *domain.SessionToken {
	tok, ok := ctx.Value(sessionContextKey).(*domain.SessionToken)
	if !ok {
		return nil
	}
	return tok
}

// SetSession stores the decoded session token in the context.
func SetSession(ctx context.Context, tok *domain.SessionToken) context.Context {
	return context.WithValue(ctx, sessionContextKey, tok)
}
