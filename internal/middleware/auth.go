// Package middleware contains HTTP middleware for the boxoffice console.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using Stack.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DukeRupert/boxoffice/internal/auth"
	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/gatekeeper"
	"github.com/DukeRupert/boxoffice/internal/handler"
	"github.com/DukeRupert/boxoffice/internal/metrics"
	"github.com/DukeRupert/boxoffice/internal/service"
	"github.com/DukeRupert/boxoffice/internal/session"
)

// SessionDecoder reads a session cookie value. *session.Codec satisfies it.
type SessionDecoder interface {
	Decode(value string) *domain.SessionToken
}

// =============================================================================
// Auth Middleware Configuration
// =============================================================================

// AuthMiddleware applies the route gatekeeper to every page request.
type AuthMiddleware struct {
	sessions    SessionDecoder
	userService service.UserService
	logger      *slog.Logger
	isSecure    bool // Whether to set Secure flag on cookies (true in production)
	now         func() time.Time
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
//
// Parameters:
// - sessions: decoder for the session cookie
// - userService: loads the user named by a live session
// - logger: structured logger for auth events
// - isSecure: set to true in production to enable the Secure cookie flag
func NewAuthMiddleware(sessions SessionDecoder, userService service.UserService, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:    sessions,
		userService: userService,
		logger:      logger,
		isSecure:    isSecure,
		now:         time.Now,
	}
}

// =============================================================================
// Gatekeeper Middleware
// =============================================================================

// Gatekeeper decides whether each request may proceed.
//
// Flow:
//
//	Request -> Gatekeeper -> Handler
//	           |
//	           +-> Skip assets, /api, /health, /metrics
//	           +-> Decode session cookie (nil if absent or invalid)
//	           +-> gatekeeper.Decide(path, session, now)
//	           +-> Clear cookie and/or 303 redirect, or
//	           +-> Load user into context and call next handler
//
// A session naming a user that no longer exists is handled like an expired
// one: the cookie is cleared and the request is sent to the login page.
func (m *AuthMiddleware) Gatekeeper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if !gatekeeper.Matches(path) {
			next.ServeHTTP(w, r)
			return
		}

		tok := m.sessions.Decode(session.FromRequest(r))
		decision := gatekeeper.Decide(path, tok, m.now())
		class := gatekeeper.Classify(path)

		metrics.GatekeeperDecision(class.String(), decision.Action.String(), string(decision.Reason))

		if decision.Cookie == session.CookieClear {
			session.Clear(w, m.isSecure)
		}

		if decision.Action == gatekeeper.Redirect {
			m.logger.Debug("gatekeeper redirect",
				"path", path,
				"location", decision.Location,
				"reason", decision.Reason,
			)
			http.Redirect(w, r, decision.Location, http.StatusSeeOther)
			return
		}

		ctx := r.Context()
		if tok != nil {
			user, err := m.userService.GetByID(ctx, tok.UserID)
			if err != nil {
				if domain.ErrorCode(err) == domain.ENOTFOUND {
					m.logger.Info("session for missing user", "user_id", tok.UserID)
					metrics.GatekeeperDecision(class.String(), gatekeeper.Redirect.String(), "unknown_user")
					session.Clear(w, m.isSecure)
					http.Redirect(w, r, gatekeeper.LoginURL(path), http.StatusSeeOther)
					return
				}
				handler.InternalErrorResponse(w, r, m.logger, err)
				return
			}
			ctx = auth.SetSession(ctx, tok)
			ctx = auth.SetUser(ctx, user)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// =============================================================================
// Request Helpers
// =============================================================================

// isAPIRequest determines if the request expects a JSON response.
//
// Checks:
// 1. Accept header contains application/json
// 2. Content-Type is application/json
// 3. URL path starts with /api/
// 4. HX-Request header is NOT present (htmx wants HTML)
func isAPIRequest(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return false
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(securityMw.Handler, loggingMw.Handler, authMw.Gatekeeper)
//	server.Handler = stack(mux)
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

var _ func(http.Handler) http.Handler = (&AuthMiddleware{}).Gatekeeper
