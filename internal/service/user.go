// Package service contains the business logic layer.
//
// Services orchestrate interactions between repositories and domain logic.
// They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/password"
	"github.com/DukeRupert/boxoffice/internal/session"
	"github.com/DukeRupert/boxoffice/internal/validate"
)

// =============================================================================
// Messages
// =============================================================================

const (
	// InvalidCredentialsMessage is returned for both unknown emails and wrong
	// passwords so the response does not reveal which accounts exist.
	InvalidCredentialsMessage = "Invalid email or password"

	// EmailTakenMessage is shown on the registration form's email field.
	EmailTakenMessage = "A user with this email already exists"
)

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines the interface for user-related operations.
type UserService interface {
	// Register creates a new user account.
	// Returns a *domain.ValidationError for bad input and domain.ECONFLICT if
	// the email already exists.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error)

	// Login verifies credentials and issues a signed session token.
	// Returns domain.EUNAUTHORIZED with the same message for an unknown email
	// and for a wrong password.
	Login(ctx context.Context, params domain.LoginParams) (*domain.LoginResult, error)

	// GetByID retrieves a user by their ID.
	// Returns domain.ENOTFOUND if user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TokenEncoder signs session payloads. *session.Codec satisfies it.
type TokenEncoder interface {
	Encode(userID uuid.UUID, issuedAt time.Time) (string, error)
}

// =============================================================================
// Implementation
// =============================================================================

type userService struct {
	store     CredentialStore
	tokens    TokenEncoder
	validator *validate.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewUserService creates a new UserService instance.
//
// Dependencies:
// - store: credential persistence
// - tokens: session token signer
// - logger: structured logger for operation logging
func NewUserService(store CredentialStore, tokens TokenEncoder, logger *slog.Logger) UserService {
	return &userService{
		store:     store,
		tokens:    tokens,
		validator: validate.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// =============================================================================
// Register Implementation
// =============================================================================

// Register creates a new user account.
//
// Flow:
// 1. Normalize and validate input
// 2. Check if email already exists
// 3. Hash the password with bcrypt
// 4. Create the user record
//
// A duplicate email still pays for a hash so both outcomes take similar time.
func (s *userService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	const op = "UserService.Register"

	params.Email = normalizeEmail(params.Email)
	params.Name = strings.TrimSpace(params.Name)

	if err := s.validator.Struct(op, params); err != nil {
		return nil, err
	}

	_, err := s.store.FindByEmail(ctx, params.Email)
	if err == nil {
		_, _ = password.Hash(params.Password)
		return nil, domain.Conflict(op, EmailTakenMessage)
	}
	if domain.ErrorCode(err) != domain.ENOTFOUND {
		return nil, domain.Internal(err, op, "Failed to check email availability")
	}

	hash, err := password.Hash(params.Password)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to hash password")
	}

	user, err := s.store.Create(ctx, domain.CreateCredentialParams{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
		Newsletter:   params.Newsletter,
	})
	if err != nil {
		if domain.ErrorCode(err) == domain.ECONFLICT {
			return nil, domain.Conflict(op, EmailTakenMessage)
		}
		return nil, domain.Internal(err, op, "Failed to create user")
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// =============================================================================
// Login Implementation
// =============================================================================

// Login authenticates a user and issues a session token.
//
// Flow:
// 1. Normalize and validate input (no store access on failure)
// 2. Look up the credential by email
// 3. Compare password hash using bcrypt
// 4. Sign {userId, loginTime} with the session codec
//
// Unknown emails burn a dummy bcrypt comparison so timing does not reveal
// which accounts exist.
func (s *userService) Login(ctx context.Context, params domain.LoginParams) (*domain.LoginResult, error) {
	const op = "UserService.Login"

	params.Email = normalizeEmail(params.Email)

	if err := s.validator.Struct(op, params); err != nil {
		return nil, err
	}

	cred, err := s.store.FindByEmail(ctx, params.Email)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			password.Waste(params.Password)
			s.logger.Debug("login failed", "reason", "unknown_email")
			return nil, domain.Unauthorized(op, InvalidCredentialsMessage)
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}

	if !password.Verify(params.Password, cred.PasswordHash) {
		s.logger.Debug("login failed", "reason", "wrong_password", "user_id", cred.UserID)
		return nil, domain.Unauthorized(op, InvalidCredentialsMessage)
	}

	token, err := s.tokens.Encode(cred.UserID, s.now())
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to issue session")
	}

	s.logger.Info("user logged in", "user_id", cred.UserID, "remember", params.Remember)

	return &domain.LoginResult{
		User: &domain.User{
			ID:    cred.UserID,
			Email: cred.Email,
			Name:  cred.Name,
		},
		Token:  token,
		MaxAge: session.LifetimeFor(params.Remember),
	}, nil
}

// =============================================================================
// GetByID Implementation
// =============================================================================

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "UserService.GetByID"

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}
	return user, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
