// Package handler contains HTTP handlers for the Boxoffice admin console.
//
// This file implements the sign-in flow: login, registration, logout and the
// forgot-password notice.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/boxoffice/internal/csrf"
	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/gatekeeper"
	"github.com/DukeRupert/boxoffice/internal/metrics"
	"github.com/DukeRupert/boxoffice/internal/returnurl"
	"github.com/DukeRupert/boxoffice/internal/service"
	"github.com/DukeRupert/boxoffice/internal/session"
)

// =============================================================================
// Handler Configuration
// =============================================================================

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data interface{})
	RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{})
}

// AuthLimiter throttles credential submissions.
// *middleware.AuthRateLimiter satisfies it.
type AuthLimiter interface {
	LimitLogin(next http.Handler) http.Handler
	LimitRegister(next http.Handler) http.Handler
}

// AuthHandler handles authentication-related HTTP requests.
//
// Routes handled:
//   - GET  /login           -> ShowLogin
//   - POST /login           -> Login
//   - GET  /register        -> ShowRegister
//   - POST /register        -> Register
//   - POST /logout          -> Logout
//   - GET  /forgot-password -> ShowForgotPassword
type AuthHandler struct {
	userService service.UserService
	renderer    TemplateRenderer
	logger      *slog.Logger
	isSecure    bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
// isSecure sets the Secure flag on the session cookie.
func NewAuthHandler(
	userService service.UserService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		renderer:    renderer,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// RegisterRoutes registers the auth routes on mux. Form submissions go
// through limiter.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, limiter AuthLimiter) {
	mux.HandleFunc("GET /login", h.ShowLogin)
	mux.Handle("POST /login", limiter.LimitLogin(http.HandlerFunc(h.Login)))
	mux.HandleFunc("GET /register", h.ShowRegister)
	mux.Handle("POST /register", limiter.LimitRegister(http.HandlerFunc(h.Register)))
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /forgot-password", h.ShowForgotPassword)
}

// =============================================================================
// Template Data Types
// =============================================================================

// Flash represents a flash message to display to the user.
//
// The Type field determines styling in templates: "success", "error" or "info".
type Flash struct {
	Type    string
	Message string
}

// AuthPageData contains common data for authentication pages.
type AuthPageData struct {
	CurrentPath string
	CSRFToken   string
	Form        map[string]string // Submitted values, never the password
	Errors      map[string]string // Keyed by form field, or domain.FormField
	Flash       *Flash
	ReturnURL   string // Validated post-login destination
}

func (h *AuthHandler) pageData(r *http.Request) AuthPageData {
	return AuthPageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.Token(r),
		Form:        make(map[string]string),
		Errors:      make(map[string]string),
	}
}

// =============================================================================
// GET /login - Show Login Form
// =============================================================================

// ShowLogin renders the login form.
//
// Query parameters:
//   - returnUrl: carried into the form when it is a safe local path
//   - registered=1, logout=1: show a success flash
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := h.pageData(r)

	switch {
	case q.Get("registered") == "1":
		data.Flash = &Flash{Type: "success", Message: "Account created. Please sign in."}
	case q.Get("logout") == "1":
		data.Flash = &Flash{Type: "success", Message: "You have been signed out."}
	}

	if candidate := q.Get(returnurl.Param); returnurl.IsValid(candidate) {
		data.ReturnURL = candidate
	}

	h.renderer.RenderHTTP(w, "auth/login", data)
}

// =============================================================================
// POST /login - Process Login
// =============================================================================

// Login verifies the submitted credentials, sets the session cookie and
// redirects to the sanitized returnUrl (default "/").
//
// Unknown email and wrong password render the same form-level error.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r)
	data.CurrentPath = gatekeeper.LoginPath

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse login form", "error", err)
		metrics.LoginAttempt(metrics.OutcomeInvalidInput)
		data.Errors[domain.FormField] = "Invalid form submission. Please try again."
		h.renderer.RenderHTTPStatus(w, http.StatusBadRequest, "auth/login", data)
		return
	}

	params := domain.LoginParams{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Remember: isChecked(r.PostFormValue("remember")),
	}
	returnTo := r.PostFormValue(returnurl.Param)

	data.Form["email"] = params.Email
	if params.Remember {
		data.Form["remember"] = "on"
	}
	if returnurl.IsValid(returnTo) {
		data.ReturnURL = returnTo
	}

	result, err := h.userService.Login(r.Context(), params)
	if err != nil {
		switch domain.ErrorCode(err) {
		case domain.EINVALID:
			metrics.LoginAttempt(metrics.OutcomeInvalidInput)
			data.Errors = formErrors(err)
			h.renderer.RenderHTTPStatus(w, http.StatusUnprocessableEntity, "auth/login", data)
		case domain.EUNAUTHORIZED:
			metrics.LoginAttempt(metrics.OutcomeInvalidCredentials)
			data.Errors[domain.FormField] = domain.ErrorMessage(err)
			h.renderer.RenderHTTPStatus(w, http.StatusUnauthorized, "auth/login", data)
		default:
			metrics.LoginAttempt(metrics.OutcomeError)
			h.logger.Error("login failed", "error", err)
			data.Errors[domain.FormField] = domain.ErrorMessage(err)
			h.renderer.RenderHTTPStatus(w, http.StatusInternalServerError, "auth/login", data)
		}
		return
	}

	metrics.LoginAttempt(metrics.OutcomeSuccess)
	session.SetCookie(w, result.Token, result.MaxAge, h.isSecure)

	h.logger.Info("user logged in",
		"user_id", result.User.ID,
		"remember", params.Remember,
	)

	http.Redirect(w, r, returnurl.Sanitize(returnTo, gatekeeper.HomePath), http.StatusSeeOther)
}

// =============================================================================
// GET /register - Show Registration Form
// =============================================================================

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "auth/register", h.pageData(r))
}

// =============================================================================
// POST /register - Process Registration
// =============================================================================

// Register creates an operator account and redirects to /login?registered=1.
//
// A duplicate email is reported on the email field.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r)
	data.CurrentPath = "/register"

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse registration form", "error", err)
		metrics.Registration(metrics.OutcomeInvalidInput)
		data.Errors[domain.FormField] = "Invalid form submission. Please try again."
		h.renderer.RenderHTTPStatus(w, http.StatusBadRequest, "auth/register", data)
		return
	}

	params := domain.RegisterParams{
		Email:      r.PostFormValue("email"),
		Name:       r.PostFormValue("name"),
		Password:   r.PostFormValue("password"),
		Newsletter: isChecked(r.PostFormValue("newsletter")),
	}

	data.Form["email"] = params.Email
	data.Form["name"] = params.Name
	if params.Newsletter {
		data.Form["newsletter"] = "on"
	}

	if _, err := h.userService.Register(r.Context(), params); err != nil {
		switch domain.ErrorCode(err) {
		case domain.EINVALID:
			metrics.Registration(metrics.OutcomeInvalidInput)
			data.Errors = formErrors(err)
			h.renderer.RenderHTTPStatus(w, http.StatusUnprocessableEntity, "auth/register", data)
		case domain.ECONFLICT:
			metrics.Registration(metrics.OutcomeConflict)
			data.Errors["email"] = domain.ErrorMessage(err)
			h.renderer.RenderHTTPStatus(w, http.StatusConflict, "auth/register", data)
		default:
			metrics.Registration(metrics.OutcomeError)
			h.logger.Error("registration failed", "error", err)
			data.Errors[domain.FormField] = domain.ErrorMessage(err)
			h.renderer.RenderHTTPStatus(w, http.StatusInternalServerError, "auth/register", data)
		}
		return
	}

	metrics.Registration(metrics.OutcomeSuccess)
	http.Redirect(w, r, gatekeeper.LoginPath+"?registered=1", http.StatusSeeOther)
}

// =============================================================================
// POST /logout - Process Logout
// =============================================================================

// Logout clears the session cookie and redirects to the login page.
// There is no server-side state, so it always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w, h.isSecure)
	h.logger.Debug("user logged out")
	http.Redirect(w, r, gatekeeper.LoginPath+"?logout=1", http.StatusSeeOther)
}

// =============================================================================
// GET /forgot-password
// =============================================================================

// ShowForgotPassword renders a notice page. Password resets are handled by
// an administrator.
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r)
	data.Flash = &Flash{
		Type:    "info",
		Message: "Password resets are handled by your box office administrator.",
	}
	h.renderer.RenderHTTP(w, "auth/forgot-password", data)
}

// isChecked reports whether a checkbox value means "checked".
func isChecked(v string) bool {
	switch v {
	case "on", "true", "1":
		return true
	}
	return false
}

// formErrors returns the field map from a validation error, or the message
// under domain.FormField when err carries no field detail.
func formErrors(err error) map[string]string {
	if fields := domain.FieldErrors(err); len(fields) > 0 {
		return fields
	}
	return map[string]string{domain.FormField: domain.ErrorMessage(err)}
}
