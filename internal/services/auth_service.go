// Package services – AuthService
//
// This file implements the AuthService: credential login, token refresh,
// and password change. Tokens are issued in pairs (short-lived access,
// long-lived refresh); a password change invalidates every token issued
// before it.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"

	"github.com/nesthunt/go-rental-backend/internal/auth"
	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/repo"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService issues and refreshes token pairs.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Tokens signs and parses JWTs.
	Tokens *auth.Manager
	// BcryptCost is the bcrypt work factor for new password hashes.
	BcryptCost int
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, tokens *auth.Manager, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{DB: db, Tokens: tokens, BcryptCost: bcryptCost}
}

// Login checks credentials and issues a token pair.
//
// All credential failures, including an unknown email, collapse into
// ErrWrongCredentials so the response does not reveal which accounts
// exist. Deactivated and deleted accounts are rejected explicitly.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	u, err := repo.GetUserByEmail(ctx, s.DB, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrWrongCredentials
		}
		return nil, nil, err
	}
	if u.IsDeleted {
		return nil, nil, ErrAccountDeleted
	}
	if !u.IsActive {
		return nil, nil, ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrWrongCredentials
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
//
// The token must verify against the refresh secret, the account must still
// be active, and the token must postdate the last password change;
// otherwise ErrTokenInvalid (or the account sentinels) is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.Tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	u, err := repo.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if u.IsDeleted {
		return nil, ErrAccountDeleted
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	if auth.IssuedBeforePasswordChange(claims, u.PasswordChangedAt) {
		return nil, ErrTokenInvalid
	}
	return s.issuePair(u)
}

// ChangePassword verifies the current password and installs a new hash.
// The change timestamp invalidates all previously issued tokens.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrWrongCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.BcryptCost)
	if err != nil {
		return err
	}
	return repo.UpdateUserPassword(ctx, s.DB, userID, string(hash), time.Now().UTC())
}

func (s *AuthService) issuePair(u *domain.User) (*TokenPair, error) {
	access, err := s.Tokens.IssueAccessToken(u.UserID, u.Role, u.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.IssueRefreshToken(u.UserID, u.Role, u.Email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
