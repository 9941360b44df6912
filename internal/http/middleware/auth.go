// Package middleware – JWT authentication and role guards.
//
// This file implements bearer-token authentication for the protected API
// surface. The middleware parses and verifies the access token, loads the
// account to enforce active/deleted state and password-change invalidation,
// and stashes the caller's identity in the Gin context for handlers and the
// rate limiter.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/auth"
	"github.com/nesthunt/go-rental-backend/internal/domain"
)

// Context keys set by Authenticate. The rate limiter keys on CtxUserID too.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// UserLoader fetches the account behind a token's subject. It returns an
// error when the account does not exist.
type UserLoader func(ctx context.Context, userID string) (*domain.User, error)

// UserFrom returns the authenticated user id and role from the Gin context.
// The boolean is false on unauthenticated requests.
func UserFrom(c *gin.Context) (userID, role string, ok bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return "", "", false
	}
	userID, _ = v.(string)
	if r, exists := c.Get(CtxUserRole); exists {
		role, _ = r.(string)
	}
	return userID, role, userID != ""
}

// Authenticate verifies the Authorization bearer token and binds the
// caller's identity to the request context.
//
// Rejections are all 401 with a stable code:
//   - missing or malformed Authorization header
//   - signature or expiry failure
//   - account missing, deleted, or deactivated
//   - token issued before the account's last password change
func Authenticate(tokens *auth.Manager, load UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if raw == "" || !strings.HasPrefix(raw, prefix) {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.ParseAccessToken(strings.TrimSpace(raw[len(prefix):]))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		u, err := load(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, "unknown account")
			return
		}
		if u.IsDeleted || !u.IsActive {
			abortUnauthorized(c, "account disabled")
			return
		}
		if auth.IssuedBeforePasswordChange(claims, u.PasswordChangedAt) {
			abortUnauthorized(c, "token predates password change")
			return
		}

		c.Set(CtxUserID, u.UserID)
		c.Set(CtxUserRole, u.Role)
		c.Next()
	}
}

// RequireRole allows only callers whose role is in the given set. It must
// run after Authenticate. Admins pass every guard.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		_, role, ok := UserFrom(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		if role == domain.RoleAdmin {
			c.Next()
			return
		}
		if _, found := allowed[role]; !found {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "forbidden",
				"message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "unauthorized",
		"message": msg,
	})
}
