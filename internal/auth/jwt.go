// Package auth issues and verifies the JSON Web Tokens used by the HTTP
// layer. Access and refresh tokens are signed with separate HMAC secrets;
// claims carry the user's external id, role, and email so the middleware can
// authorize without a second lookup for the common case.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or claim
// validation, including expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and parses tokens.
type Manager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// NewManager constructs a Manager from the configured secrets and lifetimes.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

// IssueAccessToken signs a short-lived access token for the user.
func (m *Manager) IssueAccessToken(userID, role, email string) (string, error) {
	return m.issue(userID, role, email, m.AccessSecret, m.AccessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (m *Manager) IssueRefreshToken(userID, role, email string) (string, error) {
	return m.issue(userID, role, email, m.RefreshSecret, m.RefreshTTL)
}

func (m *Manager) issue(userID, role, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccessToken validates an access token and returns its claims.
func (m *Manager) ParseAccessToken(token string) (*Claims, error) {
	return parse(token, m.AccessSecret)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (m *Manager) ParseRefreshToken(token string) (*Claims, error) {
	return parse(token, m.RefreshSecret)
}

func parse(token string, secret []byte) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// IssuedBeforePasswordChange reports whether the token was issued before the
// user last changed their password; such tokens must be rejected.
func IssuedBeforePasswordChange(c *Claims, changedAt *time.Time) bool {
	if changedAt == nil || c.IssuedAt == nil {
		return false
	}
	return c.IssuedAt.Time.Before(*changedAt)
}
