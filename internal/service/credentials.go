package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/repository"
)

// CredentialStore is the persistence contract of the authenticator.
//
// Lookups that match nothing return a domain.ENOTFOUND error. Create returns
// domain.ECONFLICT when the email is already taken; the unique index on
// users.email is what enforces that under concurrent registrations.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, params domain.CreateCredentialParams) (*domain.User, error)
}

// userQueries is the subset of *repository.Queries used by the store.
type userQueries interface {
	GetUserByEmail(ctx context.Context, email string) (repository.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	CreateUser(ctx context.Context, arg repository.CreateUserParams) (repository.User, error)
}

type credentialStore struct {
	queries userQueries
}

// NewCredentialStore returns a CredentialStore backed by the users table.
func NewCredentialStore(queries userQueries) CredentialStore {
	return &credentialStore{queries: queries}
}

func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	const op = "CredentialStore.FindByEmail"

	u, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.Errorf(domain.ENOTFOUND, op, "user not found")
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}

	return &domain.Credential{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
	}, nil
}

func (s *credentialStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "CredentialStore.FindByID"

	u, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}
	return repoUserToDomain(u), nil
}

func (s *credentialStore) Create(ctx context.Context, params domain.CreateCredentialParams) (*domain.User, error) {
	const op = "CredentialStore.Create"

	u, err := s.queries.CreateUser(ctx, repository.CreateUserParams{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		Newsletter:   params.Newsletter,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, EmailTakenMessage)
		}
		return nil, domain.Internal(err, op, "Failed to create user")
	}
	return repoUserToDomain(u), nil
}

// repoUserToDomain converts a repository.User to the public domain.User.
// The password hash is dropped here.
func repoUserToDomain(u repository.User) *domain.User {
	user := &domain.User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Newsletter: u.Newsletter,
	}
	if u.CreatedAt.Valid {
		user.CreatedAt = u.CreatedAt.Time
	}
	return user
}
