package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/password"
	"github.com/DukeRupert/boxoffice/internal/session"
)

// =============================================================================
// Mocks
// =============================================================================

type mockCredentialStore struct {
	FindByEmailFunc func(ctx context.Context, email string) (*domain.Credential, error)
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	CreateFunc      func(ctx context.Context, params domain.CreateCredentialParams) (*domain.User, error)

	findByEmailCalls int
	createCalls      int
}

func (m *mockCredentialStore) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	m.findByEmailCalls++
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.Errorf(domain.ENOTFOUND, "mock", "user not found")
}

func (m *mockCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not implemented")
}

func (m *mockCredentialStore) Create(ctx context.Context, params domain.CreateCredentialParams) (*domain.User, error) {
	m.createCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, errors.New("CreateFunc not implemented")
}

type mockTokenEncoder struct {
	EncodeFunc func(userID uuid.UUID, issuedAt time.Time) (string, error)
}

func (m *mockTokenEncoder) Encode(userID uuid.UUID, issuedAt time.Time) (string, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(userID, issuedAt)
	}
	return "token-" + userID.String(), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func newTestUserService(store CredentialStore, tokens TokenEncoder) *userService {
	svc := NewUserService(store, tokens, discardLogger()).(*userService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// storedCredential returns a credential whose hash matches plaintext.
func storedCredential(t *testing.T, email, plaintext string) *domain.Credential {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)
	return &domain.Credential{
		UserID:       uuid.New(),
		Email:        email,
		Name:         "Alice",
		PasswordHash: hash,
	}
}

// =============================================================================
// Login
// =============================================================================

func TestLogin_ValidationFailure_NoStoreAccess(t *testing.T) {
	store := &mockCredentialStore{}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, err := svc.Login(context.Background(), domain.LoginParams{Email: "nope", Password: ""})
	require.Error(t, err)

	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	fields := domain.FieldErrors(err)
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Equal(t, "Password is required", fields["password"])
	assert.Equal(t, 0, store.findByEmailCalls)
}

func TestLogin_Success(t *testing.T) {
	cred := storedCredential(t, "alice@example.com", "correct horse")

	var lookedUp string
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			lookedUp = email
			return cred, nil
		},
	}
	var encodedAt time.Time
	tokens := &mockTokenEncoder{
		EncodeFunc: func(userID uuid.UUID, issuedAt time.Time) (string, error) {
			assert.Equal(t, cred.UserID, userID)
			encodedAt = issuedAt
			return "signed", nil
		},
	}
	svc := newTestUserService(store, tokens)

	result, err := svc.Login(context.Background(), domain.LoginParams{
		Email:    "  Alice@Example.com ",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", lookedUp)
	assert.Equal(t, fixedNow, encodedAt)
	assert.Equal(t, "signed", result.Token)
	assert.Equal(t, session.ShortMaxAge, result.MaxAge)
	assert.Equal(t, cred.UserID, result.User.ID)
	assert.Equal(t, "Alice", result.User.Name)
}

func TestLogin_RememberMe(t *testing.T) {
	cred := storedCredential(t, "alice@example.com", "correct horse")
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			return cred, nil
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	result, err := svc.Login(context.Background(), domain.LoginParams{
		Email:    "alice@example.com",
		Password: "correct horse",
		Remember: true,
	})
	require.NoError(t, err)
	assert.Equal(t, session.MaxAge, result.MaxAge)
}

// TestLogin_NonEnumeration verifies that an unknown email and a wrong
// password are indistinguishable to the caller.
func TestLogin_NonEnumeration(t *testing.T) {
	cred := storedCredential(t, "alice@example.com", "correct horse")
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			if email == cred.Email {
				return cred, nil
			}
			return nil, domain.Errorf(domain.ENOTFOUND, "mock", "user not found")
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, unknownErr := svc.Login(context.Background(), domain.LoginParams{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	_, wrongErr := svc.Login(context.Background(), domain.LoginParams{
		Email:    "alice@example.com",
		Password: "wrong password",
	})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(unknownErr))
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(wrongErr))
	assert.Equal(t, InvalidCredentialsMessage, domain.ErrorMessage(unknownErr))
	assert.Equal(t, domain.ErrorMessage(unknownErr), domain.ErrorMessage(wrongErr))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_StoreFailure(t *testing.T) {
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			return nil, domain.Internal(errors.New("connection refused"), "mock", "db down")
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, err := svc.Login(context.Background(), domain.LoginParams{
		Email:    "alice@example.com",
		Password: "x",
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	assert.Equal(t, "Something went wrong. Please try again.", domain.ErrorMessage(err))
}

func TestLogin_EncodeFailure(t *testing.T) {
	cred := storedCredential(t, "alice@example.com", "correct horse")
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			return cred, nil
		},
	}
	tokens := &mockTokenEncoder{
		EncodeFunc: func(uuid.UUID, time.Time) (string, error) {
			return "", errors.New("sign failed")
		},
	}
	svc := newTestUserService(store, tokens)

	_, err := svc.Login(context.Background(), domain.LoginParams{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestLogin_TokenDecodesWithCodec(t *testing.T) {
	codec, err := session.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	cred := storedCredential(t, "alice@example.com", "correct horse")
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			return cred, nil
		},
	}
	svc := newTestUserService(store, codec)

	result, err := svc.Login(context.Background(), domain.LoginParams{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	tok := codec.Decode(result.Token)
	require.NotNil(t, tok)
	assert.Equal(t, cred.UserID, tok.UserID)
	assert.Equal(t, fixedNow.UnixMilli(), tok.IssuedAtMillis)
}

// =============================================================================
// Register
// =============================================================================

func TestRegister_Success(t *testing.T) {
	var created domain.CreateCredentialParams
	store := &mockCredentialStore{
		CreateFunc: func(ctx context.Context, params domain.CreateCredentialParams) (*domain.User, error) {
			created = params
			return &domain.User{ID: uuid.New(), Email: params.Email, Name: params.Name, Newsletter: params.Newsletter}, nil
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	user, err := svc.Register(context.Background(), domain.RegisterParams{
		Email:      " New@Example.com",
		Name:       "  Newcomer ",
		Password:   "longenough",
		Newsletter: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Newcomer", created.Name)
	assert.True(t, created.Newsletter)
	assert.NotEqual(t, "longenough", created.PasswordHash)
	assert.True(t, password.Verify("longenough", created.PasswordHash))
}

func TestRegister_Validation(t *testing.T) {
	store := &mockCredentialStore{}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, err := svc.Register(context.Background(), domain.RegisterParams{
		Email:    "bad",
		Name:     "A",
		Password: "short",
	})
	require.Error(t, err)

	fields := domain.FieldErrors(err)
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Equal(t, "Name must be at least 2 characters long", fields["name"])
	assert.Equal(t, "Password must be at least 8 characters long", fields["password"])
	assert.Equal(t, 0, store.findByEmailCalls)
	assert.Equal(t, 0, store.createCalls)
}

func TestRegister_MultibytePasswordOverLimit(t *testing.T) {
	store := &mockCredentialStore{}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, err := svc.Register(context.Background(), domain.RegisterParams{
		Email:    "new@example.com",
		Name:     "Newcomer",
		Password: strings.Repeat("é", 40),
	})
	require.Error(t, err)

	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, "Password must be at most 72 bytes long", domain.FieldErrors(err)["password"])
	assert.Equal(t, 0, store.createCalls)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			return &domain.Credential{UserID: uuid.New(), Email: email}, nil
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, err := svc.Register(context.Background(), domain.RegisterParams{
		Email:    "taken@example.com",
		Name:     "Taken",
		Password: "longenough",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, EmailTakenMessage, domain.ErrorMessage(err))
	assert.Equal(t, 0, store.createCalls)
}

func TestRegister_ConcurrentDuplicate(t *testing.T) {
	store := &mockCredentialStore{
		CreateFunc: func(ctx context.Context, params domain.CreateCredentialParams) (*domain.User, error) {
			return nil, domain.Conflict("CredentialStore.Create", EmailTakenMessage)
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, err := svc.Register(context.Background(), domain.RegisterParams{
		Email:    "race@example.com",
		Name:     "Racer",
		Password: "longenough",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestRegister_StoreFailure(t *testing.T) {
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Credential, error) {
			return nil, domain.Internal(errors.New("timeout"), "mock", "db down")
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	_, err := svc.Register(context.Background(), domain.RegisterParams{
		Email:    "new@example.com",
		Name:     "New",
		Password: "longenough",
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	assert.Equal(t, 0, store.createCalls)
}

// =============================================================================
// GetByID
// =============================================================================

func TestGetByID(t *testing.T) {
	id := uuid.New()
	store := &mockCredentialStore{
		FindByIDFunc: func(ctx context.Context, got uuid.UUID) (*domain.User, error) {
			if got == id {
				return &domain.User{ID: id, Email: "a@b.co"}, nil
			}
			return nil, domain.NotFound("mock", "user", got.String())
		},
	}
	svc := newTestUserService(store, &mockTokenEncoder{})

	user, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	_, err = svc.GetByID(context.Background(), uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
