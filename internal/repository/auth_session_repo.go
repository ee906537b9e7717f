package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"geoclash/internal/database"
)

// ErrAuthSessionNotFound is returned when no live auth session matches a
// token id.
var ErrAuthSessionNotFound = errors.New("auth session not found")

// AuthSessionRepository resolves login-session tokens to user ids. Login
// sessions are created by the account system, which is outside the game core;
// the game only reads them.
type AuthSessionRepository struct {
	db *database.DB
}

// NewAuthSessionRepository creates a new auth session repository
func NewAuthSessionRepository(db *database.DB) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

// UserIDByTokenID returns the user bound to the given session token id.
// Expired or unknown tokens return ErrAuthSessionNotFound.
func (r *AuthSessionRepository) UserIDByTokenID(ctx context.Context, tokenID string) (int64, error) {
	var userID int64
	query := "SELECT user_id FROM auth_sessions WHERE token_id = ? AND expires_at > ?"
	err := r.db.QueryRow(ctx, query, tokenID, time.Now().UTC()).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAuthSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}
