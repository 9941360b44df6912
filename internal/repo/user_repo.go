// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Users are soft-flagged (is_deleted) rather than removed so historical
// requests keep resolving their tenant and landlord references.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nesthunt/go-rental-backend/internal/domain"
)

// ErrDuplicate indicates a unique-constraint violation (e.g. an email or
// external id that is already taken).
var ErrDuplicate = errors.New("duplicate")

// CreateUser inserts a new User. The primary key is a randomly generated
// UUID. A duplicate email maps to ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by external id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, userID string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches a user by email, or ErrNotFound. Used by the auth
// flow only; everything else resolves users by external id.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the total number of users matched by the scope.
func CountUsers(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.User{})
	if scope != nil {
		q = scope(q)
	}
	err := q.Count(&total).Error
	return total, err
}

// ListUsersPage returns a page of users, newest first.
func ListUsersPage(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	q := db.WithContext(ctx).Model(&domain.User{})
	if scope != nil {
		q = scope(q)
	}
	err := q.Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateUserFields applies a partial field patch to a user. Returns
// ErrNotFound when the user does not exist.
func UpdateUserFields(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateUserPassword stores a new password hash and stamps
// password_changed_at so previously issued tokens stop validating.
func UpdateUserPassword(ctx context.Context, db *gorm.DB, userID, passwordHash string, changedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"password_hash":       passwordHash,
			"password_changed_at": changedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteUser flags a user as deleted and deactivates the account.
// Returns ErrNotFound when the user does not exist.
func SoftDeleteUser(ctx context.Context, db *gorm.DB, userID string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"is_deleted": true,
			"is_active":  false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// isUniqueViolation attempts to detect unique-constraint violations across
// drivers that may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
