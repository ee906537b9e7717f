package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"geoclash/internal/repository"
)

// AuthService resolves bearer tokens to user ids. Tokens are HS256 JWTs
// whose jti claim references a server-side auth session, so a token is only
// valid while its session row exists and has not expired. The game works
// without authentication; an invalid token just degrades to anonymous play.
type AuthService struct {
	sessions *repository.AuthSessionRepository
	secret   []byte
}

// NewAuthService creates an auth service verifying tokens with the given
// signing secret.
func NewAuthService(sessions *repository.AuthSessionRepository, secret string) *AuthService {
	return &AuthService{sessions: sessions, secret: []byte(secret)}
}

// Authenticate verifies a bearer token and returns the user it belongs to.
// A missing, malformed, expired or revoked token returns ok=false with a nil
// error; errors are reserved for infrastructure failures.
func (s *AuthService) Authenticate(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return 0, false, nil
	}

	userID, err := s.sessions.UserIDByTokenID(ctx, claims.ID)
	if errors.Is(err, repository.ErrAuthSessionNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up auth session: %w", err)
	}
	return userID, true, nil
}
