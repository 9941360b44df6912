package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nesthunt/go-rental-backend/internal/domain"
)

func registerInput(role string) RegisterInput {
	return RegisterInput{
		Name:     "Anika Rahman",
		Email:    "anika@example.test",
		Phone:    "01700000001",
		Address:  "House 12, Road 5",
		City:     "Dhaka",
		Role:     role,
		Password: "s3cret-pw",
	}
}

func TestUserService_Register_RolePrefixedIDs(t *testing.T) {
	db := newSvcDB(t)
	s := NewUserService(db, bcrypt.MinCost)

	cases := []struct {
		role string
		want string
	}{
		{domain.RoleAdmin, "A-00001"},
		{domain.RoleLandlord, "L-00001"},
		{domain.RoleTenant, "T-00001"},
	}
	for i, tc := range cases {
		in := registerInput(tc.role)
		in.Email = tc.role + "@example.test"
		u, err := s.Register(context.Background(), in)
		if err != nil {
			t.Fatalf("Register(%s): %v", tc.role, err)
		}
		if u.UserID != tc.want {
			t.Fatalf("case %d: user id = %q; want %q", i, u.UserID, tc.want)
		}
		if u.PasswordHash == in.Password || u.PasswordHash == "" {
			t.Fatalf("password stored unhashed")
		}
	}

	// Each role counts independently.
	in := registerInput(domain.RoleTenant)
	in.Email = "second-tenant@example.test"
	u, err := s.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("second tenant: %v", err)
	}
	if u.UserID != "T-00002" {
		t.Fatalf("second tenant id = %q; want T-00002", u.UserID)
	}
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	db := newSvcDB(t)
	s := NewUserService(db, bcrypt.MinCost)

	if _, err := s.Register(context.Background(), registerInput(domain.RoleTenant)); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Same address with different case still collides.
	in := registerInput(domain.RoleLandlord)
	in.Email = "ANIKA@example.test"
	_, err := s.Register(context.Background(), in)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_Register_InvalidRole(t *testing.T) {
	db := newSvcDB(t)
	s := NewUserService(db, bcrypt.MinCost)

	in := registerInput("superuser")
	_, err := s.Register(context.Background(), in)
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_Update_PartialPatch(t *testing.T) {
	db := newSvcDB(t)
	s := NewUserService(db, bcrypt.MinCost)

	u, err := s.Register(context.Background(), registerInput(domain.RoleTenant))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	city := "Chattogram"
	got, err := s.Update(context.Background(), u.UserID, UpdateUserInput{City: &city})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.City != "Chattogram" {
		t.Fatalf("city = %q", got.City)
	}
	if got.Name != u.Name {
		t.Fatalf("untouched field changed: name = %q", got.Name)
	}
}

func TestUserService_SoftDelete(t *testing.T) {
	db := newSvcDB(t)
	s := NewUserService(db, bcrypt.MinCost)

	u, err := s.Register(context.Background(), registerInput(domain.RoleTenant))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.SoftDelete(context.Background(), u.UserID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	// The row survives for referential history, flagged deleted.
	got, err := s.Get(context.Background(), u.UserID)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if !got.IsDeleted || got.IsActive {
		t.Fatalf("flags after delete: deleted=%v active=%v", got.IsDeleted, got.IsActive)
	}

	if err := s.SoftDelete(context.Background(), "T-99999"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ListPage(t *testing.T) {
	db := newSvcDB(t)
	s := NewUserService(db, bcrypt.MinCost)

	for i := 0; i < 3; i++ {
		in := registerInput(domain.RoleTenant)
		in.Email = in.Email + string(rune('a'+i))
		if _, err := s.Register(context.Background(), in); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
	}

	items, total, err := s.ListPage(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("page = %d items, total %d; want 2 items, total 3", len(items), total)
	}
}
