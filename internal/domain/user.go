// Package domain contains core business types and interfaces.
//
// This file defines the user, credential and session types used by the
// authentication flow. They are separate from the repository rows so the
// database layer can change without touching business logic.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Credential is the stored login record for an operator.
//
// PasswordHash is a bcrypt hash and must never be logged, rendered or
// returned from a lookup by ID.
type Credential struct {
	UserID       uuid.UUID
	Email        string
	Name         string
	PasswordHash string
}

// User is the public view of an operator account.
type User struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Newsletter bool
	CreatedAt  time.Time
}

// DisplayName returns the user's name or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// SessionToken is the payload carried by the session cookie.
//
// It is client-held and verified on every request; there is no server-side
// session table.
type SessionToken struct {
	UserID         uuid.UUID
	IssuedAtMillis int64
}

// IssuedAt returns the issue time as a time.Time.
func (t SessionToken) IssuedAt() time.Time {
	return time.UnixMilli(t.IssuedAtMillis)
}

// Age returns how long ago the token was issued relative to now.
func (t SessionToken) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-t.IssuedAtMillis) * time.Millisecond
}

// LoginParams is the validated login form.
type LoginParams struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"remember"`
}

// RegisterParams is the validated registration form.
type RegisterParams struct {
	Email      string `form:"email" validate:"required,email,max=254"`
	Name       string `form:"name" validate:"required,min=2,max=100"`
	Password   string `form:"password" validate:"required,min=8,maxbytes=72"`
	Newsletter bool   `form:"newsletter"`
}

// CreateCredentialParams is what the credential store needs to persist a new
// account. The password is already hashed.
type CreateCredentialParams struct {
	Email        string
	Name         string
	PasswordHash string
	Newsletter   bool
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	User   *User
	Token  string        // Encoded session cookie value
	MaxAge time.Duration // Cookie lifetime chosen from the remember flag
}
