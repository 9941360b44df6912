// User HTTP handlers.
//
// This file exposes REST endpoints for account profiles:
//   - GET    /users/me      (own profile)
//   - PATCH  /users/me      (partial profile update)
//   - GET    /users         (admin, paginated)
//   - DELETE /users/{id}    (admin, or the account itself)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for a partial profile update.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"          example:"Anika Rahman"`
	Phone        *string `json:"phone,omitempty"         example:"01700000000"`
	Address      *string `json:"address,omitempty"       example:"House 12, Road 5"`
	City         *string `json:"city,omitempty"          example:"Dhaka"`
	ProfileImage *string `json:"profile_image,omitempty" example:"https://cdn.example/u/1.jpg"`
}

// ListUsersResponse wraps a page of users and pagination information.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// GetMe godoc
// @ID          getMe
// @Summary     Get own profile
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Router      /users/me [get]
func (h *Handlers) GetMe(c *gin.Context) {
	uid, _ := caller(c)
	u, err := h.userSvc.Get(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateMe godoc
// @ID          updateMe
// @Summary     Update own profile
// @Description Applies a partial patch to the caller's profile. Email and role cannot be changed here.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpdateProfileRequest  true  "Profile patch"
//
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/me [patch]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	uid, _ := caller(c)
	u, err := h.userSvc.Update(c.Request.Context(), uid, services.UpdateUserInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		ProfileImage: req.ProfileImage,
	})
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List accounts (admin)
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListUsersResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.userSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{Users: items, Pagination: paginate(page, pageSize, total)})
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete an account
// @Description Soft-deletes an account. Admins can delete anyone; everyone else only themselves.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "User ID"  example(T-00001)
//
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the account owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	target := c.Param("id")
	uid, role := caller(c)
	if role != domain.RoleAdmin && target != uid {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot delete another account")
		return
	}

	err := h.userSvc.SoftDelete(c.Request.Context(), target)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
