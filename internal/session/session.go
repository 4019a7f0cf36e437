// Package session encodes, decodes and expires the session cookie.
//
// The cookie value is a compact HS256-signed token carrying the user ID and the
// login time in epoch milliseconds. Nothing is stored server-side; the
// signature is what makes the value trustworthy. Both the handler and the
// middleware packages import this package for the cookie name and attributes.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the name of the cookie that stores the session token.
	CookieName = "session"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// MaxAge is the lifetime of a remembered session and the hard ceiling the
	// gatekeeper enforces on every session regardless of cookie lifetime.
	MaxAge = 30 * 24 * time.Hour

	// ShortMaxAge is the cookie lifetime when "remember me" is not ticked.
	ShortMaxAge = 24 * time.Hour

	// MinSecretLength is the minimum HMAC key size in bytes.
	MinSecretLength = 32
)

// ErrWeakSecret is returned by NewCodec when the signing key is too short.
var ErrWeakSecret = errors.New("session: secret must be at least 32 bytes")

// claims is the signed payload. Field names match the original cookie JSON.
type claims struct {
	UserID    string `json:"userId"`
	LoginTime int64  `json:"loginTime"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session cookie values.
type Codec struct {
	secret []byte
	parser *jwt.Parser
}

// NewCodec returns a Codec that signs with secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &Codec{
		secret: secret,
		// Expiry is decided by IsExpired against a caller-supplied clock, so
		// registered-claim validation is switched off here.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Encode produces the cookie value for userID logged in at issuedAt.
func (c *Codec) Encode(userID uuid.UUID, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:    userID.String(),
		LoginTime: issuedAt.UnixMilli(),
	})
	return token.SignedString(c.secret)
}

// Decode parses a cookie value. It returns nil for a missing, malformed,
// unsigned or wrongly signed value and never reports an error: an unreadable
// session is simply "not logged in".
func (c *Codec) Decode(value string) *domain.SessionToken {
	if value == "" {
		return nil
	}

	var cl claims
	token, err := c.parser.ParseWithClaims(value, &cl, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	userID, err := uuid.Parse(cl.UserID)
	if err != nil || userID == uuid.Nil {
		return nil
	}
	if cl.LoginTime <= 0 {
		return nil
	}

	return &domain.SessionToken{
		UserID:         userID,
		IssuedAtMillis: cl.LoginTime,
	}
}

// IsExpired reports whether tok is older than maxAge at now. A token exactly
// maxAge old is still valid.
func IsExpired(tok domain.SessionToken, now time.Time, maxAge time.Duration) bool {
	return now.UnixMilli()-tok.IssuedAtMillis > maxAge.Milliseconds()
}

// LifetimeFor returns the cookie lifetime for the "remember me" choice.
func LifetimeFor(remember bool) time.Duration {
	if remember {
		return MaxAge
	}
	return ShortMaxAge
}

// =============================================================================
// Cookie instructions
// =============================================================================

// CookieAction tells the transport what to do with the session cookie on the
// outbound response.
type CookieAction int

const (
	CookieNone CookieAction = iota
	CookieSet
	CookieClear
)

func (a CookieAction) String() string {
	switch a {
	case CookieSet:
		return "set"
	case CookieClear:
		return "clear"
	default:
		return "none"
	}
}

// NewCookie builds the session cookie.
//
// HttpOnly keeps it away from scripts, SameSite=Lax allows top-level
// navigation, and Secure is set whenever the site is served over TLS.
func NewCookie(value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     CookiePath,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds a cookie that deletes the session on the client.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetCookie writes the session cookie on w.
func SetCookie(w http.ResponseWriter, value string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, NewCookie(value, maxAge, secure))
}

// Clear deletes the session cookie on w.
func Clear(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, ClearCookie(secure))
}

// FromRequest returns the raw session cookie value, or "" when absent.
func FromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
