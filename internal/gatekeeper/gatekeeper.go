// Package gatekeeper decides, for every inbound page request, whether the
// request may proceed or must be redirected.
//
// The decision is a pure function of the path, the decoded session (if any)
// and the current time. Applying it to an HTTP response is the job of
// middleware.Gatekeeper.
package gatekeeper

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/returnurl"
	"github.com/DukeRupert/boxoffice/internal/session"
)

const (
	// LoginPath is where unauthenticated and expired sessions are sent.
	LoginPath = "/login"

	// HomePath is where logged-in users visiting an auth page are sent.
	HomePath = "/"
)

// RouteClass is the gatekeeper's view of a path.
type RouteClass int

const (
	// ProtectedRoute requires a live session. Every matched path that is not
	// an auth route is protected; there is no public category.
	ProtectedRoute RouteClass = iota
	// AuthRoute is a login/registration page that logged-in users skip.
	AuthRoute
)

func (c RouteClass) String() string {
	if c == AuthRoute {
		return "auth"
	}
	return "protected"
}

// Action is what the transport should do with the request.
type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Reason labels a decision for logs and metrics.
type Reason string

const (
	ReasonAllowed         Reason = "allowed"
	ReasonAlreadyLoggedIn Reason = "already_logged_in"
	ReasonExpired         Reason = "expired"
	ReasonUnauthenticated Reason = "unauthenticated"
)

// Decision is the gatekeeper's verdict for one request.
type Decision struct {
	Action   Action
	Location string // redirect target when Action is Redirect
	Cookie   session.CookieAction
	Reason   Reason
}

var authRoutes = map[string]struct{}{
	"/login":           {},
	"/register":        {},
	"/forgot-password": {},
}

// excludedPrefixes are never inspected by the gatekeeper.
var excludedPrefixes = []string{
	"/api/",
	"/static/",
}

// LogoutPath only clears the cookie, so it works without a live session and
// never becomes a returnUrl that would replay as GET after login.
const LogoutPath = "/logout"

var excludedPaths = map[string]struct{}{
	LogoutPath:     {},
	"/api":         {},
	"/health":      {},
	"/metrics":     {},
	"/favicon.ico": {},
}

// fileExtPattern matches paths whose last segment has a file extension.
var fileExtPattern = regexp.MustCompile(`\.[a-zA-Z0-9]+$`)

// Matches reports whether the gatekeeper applies to path. Assets, API routes
// and anything that looks like a file are skipped.
func Matches(path string) bool {
	if _, ok := excludedPaths[path]; ok {
		return false
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return !fileExtPattern.MatchString(path)
}

// Classify returns the route class of path.
func Classify(path string) RouteClass {
	if _, ok := authRoutes[path]; ok {
		return AuthRoute
	}
	return ProtectedRoute
}

// Decide applies the routing table:
//
//	logged in  + auth route                -> redirect /
//	logged in  + protected + live session  -> allow
//	logged in  + protected + expired       -> redirect /login, clear cookie
//	logged out + auth route                -> allow
//	logged out + protected                 -> redirect /login?returnUrl=<path>
//
// Expiry is checked against session.MaxAge whatever lifetime the cookie was
// issued with.
func Decide(path string, tok *domain.SessionToken, now time.Time) Decision {
	class := Classify(path)

	if tok != nil {
		if class == AuthRoute {
			return Decision{Action: Redirect, Location: HomePath, Reason: ReasonAlreadyLoggedIn}
		}
		if session.IsExpired(*tok, now, session.MaxAge) {
			return Decision{
				Action:   Redirect,
				Location: LoginPath,
				Cookie:   session.CookieClear,
				Reason:   ReasonExpired,
			}
		}
		return Decision{Action: Allow, Reason: ReasonAllowed}
	}

	if class == AuthRoute {
		return Decision{Action: Allow, Reason: ReasonAllowed}
	}
	return Decision{Action: Redirect, Location: LoginURL(path), Reason: ReasonUnauthenticated}
}

// LoginURL builds the login redirect for a request to path, carrying path as
// the return URL when it is worth returning to and safe.
func LoginURL(path string) string {
	if path == HomePath || path == LogoutPath || !returnurl.IsValid(path) {
		return LoginPath
	}
	q := url.Values{}
	q.Set(returnurl.Param, path)
	return LoginPath + "?" + q.Encode()
}
