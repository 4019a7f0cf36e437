package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// Metrics Auth Middleware Tests
// =============================================================================

func TestMetricsAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		password   string
		setAuth    bool
		user, pass string
		rawHeader  string
		wantStatus int
	}{
		{name: "valid credentials", username: "admin", password: "secret123", setAuth: true, user: "admin", pass: "secret123", wantStatus: http.StatusOK},
		{name: "no credentials", username: "admin", password: "secret123", wantStatus: http.StatusUnauthorized},
		{name: "wrong username", username: "admin", password: "secret123", setAuth: true, user: "root", pass: "secret123", wantStatus: http.StatusUnauthorized},
		{name: "wrong password", username: "admin", password: "secret123", setAuth: true, user: "admin", pass: "nope", wantStatus: http.StatusUnauthorized},
		{name: "empty credentials", username: "admin", password: "secret123", setAuth: true, wantStatus: http.StatusUnauthorized},
		{name: "malformed header", username: "admin", password: "secret123", rawHeader: "Basic !!!notbase64", wantStatus: http.StatusUnauthorized},
		{name: "bearer scheme", username: "admin", password: "secret123", rawHeader: "Bearer admin:secret123", wantStatus: http.StatusUnauthorized},
		{name: "disabled", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMetricsAuthMiddleware(tt.username, tt.password, newTestLogger())
			h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			if tt.rawHeader != "" {
				req.Header.Set("Authorization", tt.rawHeader)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}
