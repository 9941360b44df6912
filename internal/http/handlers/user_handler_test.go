package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/services"
)

func TestGetMe_OK_And_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers()
	r := gin.New()
	r.GET("/users/me", as("T-00001", domain.RoleTenant), h.GetMe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users/me -> %d", w.Code)
	}
	var out domain.User
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.UserID != "T-00001" {
		t.Fatalf("unexpected profile: %s", w.Body.String())
	}

	h = New(nil, stubUserSvc{
		get: func(context.Context, string) (*domain.User, error) {
			return nil, services.ErrUserNotFound
		},
	}, stubAuthSvc{}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
	r = gin.New()
	r.GET("/users/me", as("T-00001", domain.RoleTenant), h.GetMe)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing account -> %d", w.Code)
	}
}

func TestUpdateMe_PatchesOwnProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotUser string
	var gotIn services.UpdateUserInput
	h := New(nil, stubUserSvc{
		update: func(_ context.Context, userID string, in services.UpdateUserInput) (*domain.User, error) {
			gotUser, gotIn = userID, in
			return &domain.User{UserID: userID, City: *in.City}, nil
		},
	}, stubAuthSvc{}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
	r := gin.New()
	r.PATCH("/users/me", as("T-00007", domain.RoleTenant), h.UpdateMe)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewBufferString(`{"city":"Sylhet"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH /users/me -> %d body=%s", w.Code, w.Body.String())
	}
	if gotUser != "T-00007" {
		t.Fatalf("patched user %q; want caller", gotUser)
	}
	if gotIn.City == nil || *gotIn.City != "Sylhet" || gotIn.Name != nil {
		t.Fatalf("unexpected patch %+v", gotIn)
	}
}

func TestListUsers_Pagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := New(nil, stubUserSvc{
		listPage: func(_ context.Context, page, pageSize int) ([]domain.User, int64, error) {
			if page != 2 || pageSize != 10 {
				t.Fatalf("page=%d pageSize=%d", page, pageSize)
			}
			return []domain.User{{UserID: "T-00011"}}, 21, nil
		},
	}, stubAuthSvc{}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
	r := gin.New()
	r.GET("/users", as("A-00001", domain.RoleAdmin), h.ListUsers)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users?page=2&page_size=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users -> %d", w.Code)
	}
	var out ListUsersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Users) != 1 || out.Pagination.Total != 21 || out.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected page: %s", w.Body.String())
	}
}

func TestDeleteUser_Ownership(t *testing.T) {
	gin.SetMode(gin.TestMode)

	del := func(callerID, callerRole, target string) int {
		h := newStubHandlers()
		r := gin.New()
		r.DELETE("/users/:id", as(callerID, callerRole), h.DeleteUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+target, nil))
		return w.Code
	}

	if code := del("T-00001", domain.RoleTenant, "T-00001"); code != http.StatusNoContent {
		t.Fatalf("self delete -> %d", code)
	}
	if code := del("T-00001", domain.RoleTenant, "T-00002"); code != http.StatusForbidden {
		t.Fatalf("cross delete -> %d", code)
	}
	if code := del("A-00001", domain.RoleAdmin, "T-00002"); code != http.StatusNoContent {
		t.Fatalf("admin delete -> %d", code)
	}

	// Unknown target -> 404
	h := New(nil, stubUserSvc{
		softDelete: func(context.Context, string) error { return services.ErrUserNotFound },
	}, stubAuthSvc{}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
	r := gin.New()
	r.DELETE("/users/:id", as("A-00001", domain.RoleAdmin), h.DeleteUser)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/T-99999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown target -> %d", w.Code)
	}
}
