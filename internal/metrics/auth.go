package metrics

// Login outcomes
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeConflict           = "conflict"
	OutcomeRateLimited        = "rate_limited"
	OutcomeError              = "error"
)

// LoginAttempt records the outcome of a POST /login.
func LoginAttempt(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// Registration records the outcome of a POST /register.
func Registration(outcome string) {
	RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// GatekeeperDecision records one routing decision. Labels are small fixed
// sets; the request path is not recorded.
func GatekeeperDecision(route, action, reason string) {
	GatekeeperDecisionsTotal.WithLabelValues(route, action, reason).Inc()
}

// RateLimited records a rejected request.
func RateLimited(route string) {
	RateLimitedTotal.WithLabelValues(route).Inc()
}
