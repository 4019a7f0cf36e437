package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/boxoffice/internal/domain"
)

func TestStruct_LoginParams(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		params domain.LoginParams
		want   map[string]string
	}{
		{
			name:   "valid",
			params: domain.LoginParams{Email: "a@b.co", Password: "x"},
		},
		{
			name:   "missing both",
			params: domain.LoginParams{},
			want: map[string]string{
				"email":    "Please enter a valid email address",
				"password": "Password is required",
			},
		},
		{
			name:   "malformed email",
			params: domain.LoginParams{Email: "not-an-email", Password: "x"},
			want: map[string]string{
				"email": "Please enter a valid email address",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct("test", tt.params)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.Equal(t, tt.want, domain.FieldErrors(err))
		})
	}
}

func TestStruct_RegisterParams(t *testing.T) {
	v := New()

	err := v.Struct("test", domain.RegisterParams{
		Email:    "new@example.com",
		Name:     "A",
		Password: "short",
	})
	require.Error(t, err)

	fields := domain.FieldErrors(err)
	assert.Equal(t, "Name must be at least 2 characters long", fields["name"])
	assert.Equal(t, "Password must be at least 8 characters long", fields["password"])
	assert.NotContains(t, fields, "email")
}

func TestStruct_RegisterParams_TooLong(t *testing.T) {
	v := New()

	err := v.Struct("test", domain.RegisterParams{
		Email:    "new@example.com",
		Name:     "Alice",
		Password: strings.Repeat("p", 73),
	})
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 bytes long", domain.FieldErrors(err)["password"])
}

func TestStruct_RegisterParams_PasswordCountsBytes(t *testing.T) {
	v := New()

	// 40 runes, 80 bytes.
	err := v.Struct("test", domain.RegisterParams{
		Email:    "new@example.com",
		Name:     "Alice",
		Password: strings.Repeat("é", 40),
	})
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 bytes long", domain.FieldErrors(err)["password"])

	// 36 runes, exactly 72 bytes.
	err = v.Struct("test", domain.RegisterParams{
		Email:    "new@example.com",
		Name:     "Alice",
		Password: strings.Repeat("é", 36),
	})
	assert.NoError(t, err)
}

func TestStruct_NotAStruct(t *testing.T) {
	err := New().Struct("test", 42)
	require.Error(t, err)

	var ve *domain.ValidationError
	assert.False(t, errors.As(err, &ve))
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestMessage_Generic(t *testing.T) {
	assert.Equal(t, "Display Name is required", Message("display_name", "required", ""))
	assert.Equal(t, "Code must be one of: a b", Message("code", "oneof", "a b"))
	assert.Equal(t, "Code is invalid", Message("code", "uuid", ""))
}
