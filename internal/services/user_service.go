// Package services – UserService
//
// This file implements the UserService: registration with role-prefixed
// external ids, profile reads and patches, admin listing, and soft
// deletion. Password hashing uses bcrypt; the cost is configurable so
// tests can run with a cheap cost.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/repo"
)

// UserService manages user accounts.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// BcryptCost is the bcrypt work factor for new password hashes.
	BcryptCost int
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{DB: db, BcryptCost: bcryptCost}
}

// RegisterInput carries a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	City     string
	Role     string
	Password string
}

// sequenceForRole maps a role onto its id sequence and prefix.
func sequenceForRole(role string) (seq, prefix string, ok bool) {
	switch role {
	case domain.RoleAdmin:
		return repo.SeqUserAdmin, "A", true
	case domain.RoleLandlord:
		return repo.SeqUserLandlord, "L", true
	case domain.RoleTenant:
		return repo.SeqUserTenant, "T", true
	}
	return "", "", false
}

// Register creates a new account.
//
// The email is lowercased before the uniqueness check; an existing account
// with the same email yields ErrEmailTaken, an unknown role ErrInvalidRole.
// The external id is allocated per role (A-/L-/T-%05d) from an atomic
// sequence inside the same transaction as the insert.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(attribute.String("user.role", in.Role)),
	)
	defer span.End()

	seq, prefix, ok := sequenceForRole(in.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var created *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, err := repo.NextID(ctx, tx, seq, prefix)
		if err != nil {
			return err
		}
		u := &domain.User{
			UserID:       userID,
			Name:         in.Name,
			Email:        email,
			Phone:        in.Phone,
			Address:      in.Address,
			City:         in.City,
			Role:         in.Role,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if _, err := repo.CreateUser(ctx, tx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a single user by external id.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateUserInput is a partial profile patch. Nil fields are left
// untouched; email and role changes go through dedicated flows and are not
// patchable here.
type UpdateUserInput struct {
	Name         *string
	Phone        *string
	Address      *string
	City         *string
	ProfileImage *string
}

// Update applies a partial patch to a user profile and returns the result.
func (s *UserService) Update(ctx context.Context, userID string, in UpdateUserInput) (*domain.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.City != nil {
		fields["city"] = *in.City
	}
	if in.ProfileImage != nil {
		fields["profile_image"] = *in.ProfileImage
	}

	if len(fields) > 0 {
		if err := repo.UpdateUserFields(ctx, s.DB, userID, fields); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}

// ListPage returns a page of users (admin view) and the total count.
func (s *UserService) ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountUsers(ctx, s.DB, nil)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}
	items, err := repo.ListUsersPage(ctx, s.DB, nil, offset, pageSize)
	return items, total, err
}

// SoftDelete marks a user as deleted and inactive. The row is retained so
// requests and listings keep their references.
func (s *UserService) SoftDelete(ctx context.Context, userID string) error {
	err := repo.SoftDeleteUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
