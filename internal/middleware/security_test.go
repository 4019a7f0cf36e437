package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Security Headers Middleware Tests
// =============================================================================

func serveWithSecurity(isSecure bool, method, path string) *httptest.ResponseRecorder {
	mw := NewSecurityHeadersMiddleware(isSecure)
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	rec := serveWithSecurity(false, http.MethodGet, "/orders")

	expected := map[string]string{
		"X-Frame-Options":            "DENY",
		"X-Content-Type-Options":     "nosniff",
		"Referrer-Policy":            "strict-origin-when-cross-origin",
		"Cross-Origin-Opener-Policy": "same-origin",
		"Cache-Control":              "no-store",
	}
	for header, want := range expected {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected handler status to pass through, got %d", rec.Code)
	}
}

func TestSecurityHeadersMiddleware_HSTS(t *testing.T) {
	if hsts := serveWithSecurity(true, http.MethodGet, "/").Header().Get("Strict-Transport-Security"); !strings.Contains(hsts, "max-age=31536000") {
		t.Errorf("expected HSTS in production, got %q", hsts)
	}
	if hsts := serveWithSecurity(false, http.MethodGet, "/").Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("expected no HSTS in development, got %q", hsts)
	}
}

func TestSecurityHeadersMiddleware_CSP(t *testing.T) {
	csp := serveWithSecurity(false, http.MethodPost, "/login").Header().Get("Content-Security-Policy")

	for _, directive := range []string{
		"default-src 'self'",
		"frame-ancestors 'none'",
		"form-action 'self'",
		"img-src 'self' data: https:",
	} {
		if !strings.Contains(csp, directive) {
			t.Errorf("CSP missing %q: %s", directive, csp)
		}
	}
	if strings.Contains(csp, "script-src 'self' 'unsafe-inline'") {
		t.Error("inline scripts should not be allowed")
	}
}

func TestSecurityHeadersMiddleware_StaticAssetsCacheable(t *testing.T) {
	rec := serveWithSecurity(false, http.MethodGet, "/static/app.css")
	if cc := rec.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("expected no Cache-Control on static assets, got %q", cc)
	}
}
