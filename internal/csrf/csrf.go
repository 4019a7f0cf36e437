// Package csrf protects the admin console's forms with a double-submit cookie.
//
// A random token is stored in a cookie and echoed in a hidden form field.
// Unsafe requests are rejected unless the two match.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// CookieName is the name of the CSRF token cookie.
	CookieName = "csrf_token"

	// FormFieldName is the hidden input carrying the token.
	FormFieldName = "csrf_token"

	// HeaderName lets script clients submit the token without a form body.
	HeaderName = "X-CSRF-Token"

	// TokenLength is the number of random bytes in a token.
	TokenLength = 32

	// CookieMaxAge is the token cookie lifetime in seconds.
	CookieMaxAge = 12 * 60 * 60
)

type contextKey struct{}

// =============================================================================
// Tokens
// =============================================================================

// GenerateToken returns TokenLength random bytes, base64 URL-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateToken reports whether both tokens are present and equal.
func ValidateToken(cookieToken, submitted string) bool {
	if cookieToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) == 1
}

// Token returns the token for the current request, as set by Protect.
func Token(r *http.Request) string {
	if t, ok := r.Context().Value(contextKey{}).(string); ok {
		return t
	}
	return ""
}

// WithToken returns a copy of ctx carrying token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

func setCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// =============================================================================
// Middleware
// =============================================================================

// Protect ensures every request has a token cookie and rejects unsafe
// requests whose submitted token does not match it.
func Protect(isSecure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
				token = c.Value
			}

			if !isSafeMethod(r.Method) {
				submitted := r.Header.Get(HeaderName)
				if submitted == "" {
					submitted = r.PostFormValue(FormFieldName)
				}
				if !ValidateToken(token, submitted) {
					logger.Warn("csrf token mismatch",
						"path", r.URL.Path,
						"method", r.Method,
						"has_cookie", token != "",
					)
					http.Error(w, "Your session form expired. Please reload the page and try again.", http.StatusForbidden)
					return
				}
			}

			if token == "" {
				t, err := GenerateToken()
				if err != nil {
					logger.Error("failed to generate csrf token", "error", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				token = t
				setCookie(w, token, isSecure)
			}

			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
