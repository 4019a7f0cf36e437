package repository

import (
	"context"

	"github.com/google/uuid"
)

const getUserByEmail = `SELECT id, email, name, password_hash, newsletter, created_at, updated_at
FROM users
WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	return scanUser(row)
}

const getUserByID = `SELECT id, email, name, password_hash, newsletter, created_at, updated_at
FROM users
WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	return scanUser(row)
}

const createUser = `INSERT INTO users (email, name, password_hash, newsletter)
VALUES ($1, $2, $3, $4)
RETURNING id, email, name, password_hash, newsletter, created_at, updated_at`

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
	Newsletter   bool
}

// CreateUser inserts a user. A duplicate email fails with a unique
// violation; see IsUniqueViolation.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Email,
		arg.Name,
		arg.PasswordHash,
		arg.Newsletter,
	)
	return scanUser(row)
}

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.PasswordHash,
		&i.Newsletter,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
