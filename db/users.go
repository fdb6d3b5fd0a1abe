package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User описывает зарегистрированного пользователя с API ключом
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	APIKey    string    `db:"api_key" json:"api_key"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateUser регистрирует пользователя и выдает ему новый API ключ
func (s *Storage) CreateUser(ctx context.Context, u *User) error {
	if strings.TrimSpace(u.Username) == "" {
		return validationErrorf("username is required")
	}
	if u.APIKey == "" {
		u.APIKey = uuid.NewString()
	}
	query := `
        INSERT INTO users (username, email, api_key, is_active)
        VALUES ($1, $2, $3, TRUE)
        RETURNING id, is_active, created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.APIKey).
		Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetUserByAPIKey находит активного пользователя по ключу из заголовка Authorization
func (s *Storage) GetUserByAPIKey(ctx context.Context, apiKey string) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE api_key = $1 AND is_active = TRUE`
	err := s.db.GetContext(ctx, u, query, apiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}
