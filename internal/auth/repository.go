package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the Postgres credential store adapter.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(email, ''), COALESCE(full_name, ''),
		       password_hash, disabled, created_at, updated_at
		FROM users
		WHERE username = $1
	`, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.PasswordHash, &user.Disabled, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user by username: %w", err)
	}

	return user, nil
}

// EnsureAdmin seeds or refreshes the admin account from startup
// configuration. The account is always left active.
func (r *Repository) EnsureAdmin(ctx context.Context, username, plainPassword string) error {
	if username == "" && plainPassword == "" {
		return nil
	}
	if username == "" || plainPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required together")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate user id: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, disabled, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $4)
		ON CONFLICT (username)
		DO UPDATE SET password_hash = EXCLUDED.password_hash,
		              disabled = FALSE,
		              updated_at = EXCLUDED.updated_at
	`, id.String(), username, string(hash), now)
	if err != nil {
		return fmt.Errorf("upsert admin user: %w", err)
	}

	return nil
}
