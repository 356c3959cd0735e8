package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rcmalta/laytrack/internal/domain"
)

// UserRepository handles all database operations for Users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, confirm_token, created_at, updated_at)
		VALUES (:id, :email, :display_name, :password_hash, :confirm_token, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		if isPgUniqueViolation(err, "users_email_key") {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("user_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user_repo.GetByID: %w", err)
	}
	return &u, nil
}

// GetByEmail fetches a user by email address (used for login).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user_repo.GetByEmail: %w", err)
	}
	return &u, nil
}

// Confirm marks the account carrying the given token as confirmed and
// clears the token so the link cannot be replayed.
func (r *UserRepository) Confirm(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET confirmed_at  = now(),
		    confirm_token = NULL,
		    updated_at    = now()
		WHERE confirm_token = $1 AND confirmed_at IS NULL`,
		token)
	if err != nil {
		return fmt.Errorf("user_repo.Confirm: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInvalidConfirmToken
	}
	return nil
}

// UpdateConfirmToken replaces the pending confirmation token so a fresh
// link can be mailed. Earlier links stop working. Confirmed accounts are
// never touched.
func (r *UserRepository) UpdateConfirmToken(ctx context.Context, id uuid.UUID, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET confirm_token = $1,
		    updated_at    = now()
		WHERE id = $2 AND confirmed_at IS NULL`,
		token, id)
	if err != nil {
		return fmt.Errorf("user_repo.UpdateConfirmToken: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// isPgUniqueViolation checks whether err is a PostgreSQL unique
// constraint violation for the given constraint name.
func isPgUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "unique constraint") &&
		strings.Contains(err.Error(), constraintName)
}
