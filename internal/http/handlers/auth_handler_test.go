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

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ---------- Register ----------

func TestRegister_BadJSON_Success_Conflict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Bad JSON -> 400
	{
		h := newStubHandlers()
		r := gin.New()
		r.POST("/auth/register", h.Register)
		if w := postJSON(t, r, "/auth/register", "{bad"); w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Admin role is not self-service -> 400 (binding oneof)
	{
		h := newStubHandlers()
		r := gin.New()
		r.POST("/auth/register", h.Register)
		body := `{"name":"X","email":"x@example.com","role":"admin","password":"s3cret-pw"}`
		if w := postJSON(t, r, "/auth/register", body); w.Code != http.StatusBadRequest {
			t.Fatalf("admin register -> %d", w.Code)
		}
	}

	// Success -> 201 with the allocated user id
	{
		h := newStubHandlers()
		r := gin.New()
		r.POST("/auth/register", h.Register)
		body := `{"name":"Anika","email":"anika@example.com","role":"tenant","password":"s3cret-pw"}`
		w := postJSON(t, r, "/auth/register", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("register -> %d body=%s", w.Code, w.Body.String())
		}
		var out domain.User
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.UserID == "" || out.Email != "anika@example.com" {
			t.Fatalf("unexpected user: %#v", out)
		}
	}

	// Duplicate email -> 409
	{
		h := New(nil, stubUserSvc{
			register: func(context.Context, services.RegisterInput) (*domain.User, error) {
				return nil, services.ErrEmailTaken
			},
		}, stubAuthSvc{}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
		r := gin.New()
		r.POST("/auth/register", h.Register)
		body := `{"name":"Anika","email":"anika@example.com","role":"tenant","password":"s3cret-pw"}`
		if w := postJSON(t, r, "/auth/register", body); w.Code != http.StatusConflict {
			t.Fatalf("duplicate email -> %d", w.Code)
		}
	}
}

// ---------- Login / Refresh ----------

func TestLogin_Success_And_WrongCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers()
	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := postJSON(t, r, "/auth/login", `{"email":"a@example.com","password":"s3cret-pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login -> %d body=%s", w.Code, w.Body.String())
	}
	var out LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.User == nil || out.Tokens == nil || out.Tokens.AccessToken == "" {
		t.Fatalf("incomplete login response: %s", w.Body.String())
	}

	// Wrong credentials and disabled accounts are both plain 401s.
	for _, svcErr := range []error{services.ErrWrongCredentials, services.ErrAccountInactive, services.ErrAccountDeleted} {
		h := New(nil, stubUserSvc{}, stubAuthSvc{
			login: func(context.Context, string, string) (*domain.User, *services.TokenPair, error) {
				return nil, nil, svcErr
			},
		}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
		r := gin.New()
		r.POST("/auth/login", h.Login)
		if w := postJSON(t, r, "/auth/login", `{"email":"a@example.com","password":"nope-nope"}`); w.Code != http.StatusUnauthorized {
			t.Fatalf("%v -> %d; want 401", svcErr, w.Code)
		}
	}
}

func TestRefresh_Success_And_Invalid(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers()
	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)

	w := postJSON(t, r, "/auth/refresh", `{"refresh_token":"r1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh -> %d", w.Code)
	}
	var pair services.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil || pair.AccessToken == "" {
		t.Fatalf("bad pair: %s", w.Body.String())
	}

	h = New(nil, stubUserSvc{}, stubAuthSvc{
		refresh: func(context.Context, string) (*services.TokenPair, error) {
			return nil, services.ErrTokenInvalid
		},
	}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
	r = gin.New()
	r.POST("/auth/refresh", h.Refresh)
	if w := postJSON(t, r, "/auth/refresh", `{"refresh_token":"garbage"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid refresh -> %d", w.Code)
	}
}

// ---------- ChangePassword ----------

func TestChangePassword_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mount := func(h *Handlers) *gin.Engine {
		r := gin.New()
		r.PUT("/auth/password", as("T-00001", domain.RoleTenant), h.ChangePassword)
		return r
	}
	put := func(r *gin.Engine, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/auth/password", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		return w
	}

	// Success -> 204
	if w := put(mount(newStubHandlers()), `{"current_password":"old-pass","new_password":"new-pass-9"}`); w.Code != http.StatusNoContent {
		t.Fatalf("change password -> %d", w.Code)
	}

	// Short new password -> 400
	if w := put(mount(newStubHandlers()), `{"current_password":"old-pass","new_password":"short"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("short password -> %d", w.Code)
	}

	// Wrong current password -> 401
	h := New(nil, stubUserSvc{}, stubAuthSvc{
		changePass: func(context.Context, string, string, string) error {
			return services.ErrWrongCredentials
		},
	}, stubListingSvc{}, stubRequestSvc{}, stubPaymentSvc{})
	if w := put(mount(h), `{"current_password":"bad-pass","new_password":"new-pass-9"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current -> %d", w.Code)
	}
}
