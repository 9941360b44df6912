// Auth HTTP handlers.
//
// This file exposes REST endpoints for account registration and token
// management:
//   - POST /auth/register   (create account)
//   - POST /auth/login      (credential login -> token pair)
//   - POST /auth/refresh    (refresh token -> new pair)
//   - POST /auth/password   (change password, authenticated)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/services"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=128" example:"Anika Rahman"`
	Email    string `json:"email"    binding:"required,email"         example:"anika@example.com"`
	Phone    string `json:"phone"    example:"01700000000"`
	Address  string `json:"address"  example:"House 12, Road 5"`
	City     string `json:"city"     example:"Dhaka"`
	Role     string `json:"role"     binding:"required,oneof=landlord tenant" example:"tenant"`
	Password string `json:"password" binding:"required,min=8,max=72"  example:"s3cret-pw"`
}

// LoginRequest is the JSON payload for credential login.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email" example:"anika@example.com"`
	Password string `json:"password" binding:"required"       example:"s3cret-pw"`
}

// RefreshRequest is the JSON payload for refreshing a token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest is the JSON payload for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required,min=8,max=72"`
}

// LoginResponse bundles the account and its token pair.
type LoginResponse struct {
	User   *domain.User        `json:"user"`
	Tokens *services.TokenPair `json:"tokens"`
}

// Register godoc
// @ID          register
// @Summary     Register an account
// @Description Creates a landlord or tenant account. Admin accounts are provisioned out of band.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid registration payload")
		return
	}

	u, err := h.userSvc.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Role:     req.Role,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		return
	case errors.Is(err, services.ErrInvalidRole):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "role must be landlord or tenant")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Exchanges credentials for an access/refresh token pair.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Wrong credentials or disabled account"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	u, pair, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrWrongCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "wrong email or password")
		return
	case errors.Is(err, services.ErrAccountInactive), errors.Is(err, services.ErrAccountDeleted):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "account disabled")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, LoginResponse{User: u, Tokens: pair})
}

// Refresh godoc
// @ID          refreshToken
// @Summary     Refresh tokens
// @Description Exchanges a valid refresh token for a new access/refresh pair.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RefreshRequest  true  "Refresh token"
//
// @Success     200  {object}  services.TokenPair
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid, expired, or revoked token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "refresh_token required")
		return
	}

	pair, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, services.ErrTokenInvalid),
		errors.Is(err, services.ErrAccountInactive),
		errors.Is(err, services.ErrAccountDeleted):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid refresh token")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, pair)
}

// ChangePassword godoc
// @ID          changePassword
// @Summary     Change password
// @Description Verifies the current password and installs a new one. Tokens issued before the change stop working.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ChangePasswordRequest  true  "Password change payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Wrong current password"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/password [post]
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "current and new password required (new: 8-72 chars)")
		return
	}

	uid, _ := caller(c)
	err := h.authSvc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, services.ErrWrongCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "wrong current password")
		return
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
