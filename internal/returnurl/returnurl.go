// Package returnurl validates post-login redirect targets.
//
// Only same-origin relative paths are accepted, which closes the open
// redirect that an attacker-controlled returnUrl parameter would otherwise
// give them.
package returnurl

import "strings"

// MaxLength is the exclusive upper bound on an accepted return URL.
const MaxLength = 2048

// Param is the query and form parameter that carries the return URL.
const Param = "returnUrl"

// IsValid reports whether candidate is a safe redirect target.
//
// Examples:
//   - "/orders/42"          -> true
//   - "/events?status=open" -> true
//   - "//evil.com"          -> false (protocol-relative)
//   - "/\evil.com"          -> false (browsers treat \ as /)
//   - "https://evil.com"    -> false
//   - "/x?next=http://a.b"  -> false (contains "://")
func IsValid(candidate string) bool {
	if len(candidate) >= MaxLength {
		return false
	}
	if !strings.HasPrefix(candidate, "/") {
		return false
	}
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return false
	}
	if strings.Contains(candidate, "://") {
		return false
	}
	return true
}

// Sanitize returns candidate if it is valid and fallback otherwise.
func Sanitize(candidate, fallback string) string {
	if IsValid(candidate) {
		return candidate
	}
	return fallback
}
