// Rental request HTTP handlers.
//
// This file exposes REST endpoints for the rental request lifecycle:
//   - POST   /requests              (apply, tenant)
//   - GET    /requests              (admin, paginated)
//   - GET    /requests/mine         (requests the caller participates in)
//   - GET    /requests/{id}         (detail, participant or admin)
//   - PUT    /requests/{id}/status  (approve/reject by the landlord, cancel by the tenant)
//   - PATCH  /requests/{id}         (partial update, tenant)
//   - DELETE /requests/{id}         (tenant)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/services"
)

// CreateRentalRequest is the JSON payload for filing a rental request.
type CreateRentalRequest struct {
	ListingID     string `json:"listing_id"     binding:"required" example:"L-00042"`
	MoveInDate    string `json:"move_in_date"   binding:"required" example:"2026-10-01"`
	RentDuration  string `json:"rent_duration"  binding:"required" example:"12 months"`
	Message       string `json:"message"        example:"Family of three, long-term"`
	LandlordPhone string `json:"landlord_phone" example:"01700000000"`
}

// UpdateRentalRequest is the JSON payload for a partial request update.
// Absent fields are left untouched.
type UpdateRentalRequest struct {
	MoveInDate    *string `json:"move_in_date,omitempty"   example:"2026-11-01"`
	RentDuration  *string `json:"rent_duration,omitempty"  example:"6 months"`
	Message       *string `json:"message,omitempty"`
	LandlordPhone *string `json:"landlord_phone,omitempty"`
}

// ChangeStatusRequest is the JSON payload for a landlord decision or a
// tenant cancellation.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected cancelled" example:"approved"`
}

// ListRequestsResponse wraps a page of requests and pagination information.
type ListRequestsResponse struct {
	Requests   []domain.Request `json:"requests"`
	Pagination Pagination       `json:"pagination"`
}

// CreateRequest godoc
// @ID          createRequest
// @Summary     Apply for a listing
// @Description Files a rental request. A tenant can hold at most one active request per listing.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateRentalRequest  true  "Application payload"
//
// @Success     201  {object}  domain.Request
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Listing not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Active request already exists"
// @Failure     502  {object}  handlers.ErrorResponse  "Notification could not be delivered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests [post]
func (h *Handlers) CreateRequest(c *gin.Context) {
	var req CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid application payload")
		return
	}
	moveIn, okDate := parseDate(req.MoveInDate)
	if !okDate {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "move_in_date must be YYYY-MM-DD or RFC 3339")
		return
	}

	listing, err := h.listingSvc.Get(c.Request.Context(), req.ListingID)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
		return
	}

	uid, _ := caller(c)
	r, err := h.requestSvc.Create(c.Request.Context(), services.CreateRequestInput{
		TenantID:      uid,
		LandlordID:    listing.LandlordID,
		ListingID:     listing.ListingID,
		MoveInDate:    moveIn,
		RentDuration:  req.RentDuration,
		Message:       req.Message,
		LandlordPhone: req.LandlordPhone,
	})
	switch {
	case errors.Is(err, services.ErrDuplicateRequest):
		fail(c, http.StatusConflict, ErrCodeConflict, "an active request already exists for this listing")
		return
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrListingNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "listing or account not found")
		return
	case errors.Is(err, services.ErrNotificationFailed):
		fail(c, http.StatusBadGateway, ErrCodeDependencyFailed, "notification could not be delivered; request not created")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, r)
}

// ListRequests godoc
// @ID          listRequests
// @Summary     List all requests (admin)
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListRequestsResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests [get]
func (h *Handlers) ListRequests(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.requestSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListRequestsResponse{Requests: items, Pagination: paginate(page, pageSize, total)})
}

// ListMyRequests godoc
// @ID          listMyRequests
// @Summary     List own requests
// @Description Returns requests the caller participates in, as tenant or landlord.
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListRequestsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/mine [get]
func (h *Handlers) ListMyRequests(c *gin.Context) {
	uid, _ := caller(c)
	page, pageSize := clampPagination(c)

	items, total, err := h.requestSvc.ListPersonalPage(c.Request.Context(), uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListRequestsResponse{Requests: items, Pagination: paginate(page, pageSize, total)})
}

// participantRequest loads a request and checks the caller participates in
// it (admins always pass). On failure the response has already been written.
func (h *Handlers) participantRequest(c *gin.Context, requestID string) (*domain.Request, bool) {
	r, err := h.requestSvc.Get(c.Request.Context(), requestID)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		return nil, false
	}
	uid, role := caller(c)
	if role != domain.RoleAdmin && r.TenantID != uid && r.LandlordID != uid {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not a participant of this request")
		return nil, false
	}
	return r, true
}

// GetRequest godoc
// @ID          getRequest
// @Summary     Get a request
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Request ID"  example(R-00042)
//
// @Success     200  {object}  domain.Request
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Router      /requests/{id} [get]
func (h *Handlers) GetRequest(c *gin.Context) {
	r, okPart := h.participantRequest(c, c.Param("id"))
	if !okPart {
		return
	}
	ok(c, http.StatusOK, r)
}

// ChangeRequestStatus godoc
// @ID          changeRequestStatus
// @Summary     Decide on a request
// @Description The landlord approves or rejects; the tenant cancels. Decisions stay reversible until payment settles.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Request ID"  example(R-00042)
// @Param       body  body  handlers.ChangeStatusRequest  true  "Target status"
//
// @Success     200  {object}  domain.Request
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid target status"
// @Failure     403  {object}  handlers.ErrorResponse  "Caller may not set this status"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Request already paid"
// @Failure     502  {object}  handlers.ErrorResponse  "Notification could not be delivered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id}/status [put]
func (h *Handlers) ChangeRequestStatus(c *gin.Context) {
	r, okPart := h.participantRequest(c, c.Param("id"))
	if !okPart {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be approved, rejected, or cancelled")
		return
	}
	target := domain.RequestStatus(req.Status)

	// Approval and rejection belong to the landlord, cancellation to the
	// tenant. Admins may do either.
	uid, role := caller(c)
	if role != domain.RoleAdmin {
		switch target {
		case domain.StatusApproved, domain.StatusRejected:
			if r.LandlordID != uid {
				fail(c, http.StatusForbidden, ErrCodeForbidden, "only the landlord decides on a request")
				return
			}
		case domain.StatusCancelled:
			if r.TenantID != uid {
				fail(c, http.StatusForbidden, ErrCodeForbidden, "only the tenant cancels a request")
				return
			}
		}
	}

	updated, err := h.requestSvc.ChangeStatus(c.Request.Context(), r.RequestID, target)
	switch {
	case errors.Is(err, services.ErrRequestPaid):
		fail(c, http.StatusConflict, ErrCodeConflict, "request already paid")
		return
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid status transition")
		return
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		return
	case errors.Is(err, services.ErrNotificationFailed):
		fail(c, http.StatusBadGateway, ErrCodeDependencyFailed, "notification could not be delivered; status unchanged")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, updated)
}

// UpdateRequest godoc
// @ID          updateRequest
// @Summary     Update a request
// @Description Applies a partial patch to a request filed by the caller.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Request ID"  example(R-00042)
// @Param       body  body  handlers.UpdateRentalRequest  true  "Request patch"
//
// @Success     200  {object}  domain.Request
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the applicant"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id} [patch]
func (h *Handlers) UpdateRequest(c *gin.Context) {
	r, okPart := h.participantRequest(c, c.Param("id"))
	if !okPart {
		return
	}
	uid, role := caller(c)
	if role != domain.RoleAdmin && r.TenantID != uid {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "only the applicant updates a request")
		return
	}

	var req UpdateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.UpdateRequestInput{
		RentDuration:  req.RentDuration,
		Message:       req.Message,
		LandlordPhone: req.LandlordPhone,
	}
	if req.MoveInDate != nil {
		moveIn, okDate := parseDate(*req.MoveInDate)
		if !okDate {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "move_in_date must be YYYY-MM-DD or RFC 3339")
			return
		}
		in.MoveInDate = &moveIn
	}

	updated, err := h.requestSvc.Update(c.Request.Context(), r.RequestID, in)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeleteRequest godoc
// @ID          deleteRequest
// @Summary     Delete a request
// @Description Removes a request filed by the caller. Paid requests are immutable history.
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Request ID"  example(R-00042)
//
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the applicant"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Request already paid"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id} [delete]
func (h *Handlers) DeleteRequest(c *gin.Context) {
	r, okPart := h.participantRequest(c, c.Param("id"))
	if !okPart {
		return
	}
	uid, role := caller(c)
	if role != domain.RoleAdmin && r.TenantID != uid {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "only the applicant deletes a request")
		return
	}

	err := h.requestSvc.Delete(c.Request.Context(), r.RequestID)
	switch {
	case errors.Is(err, services.ErrRequestPaid):
		fail(c, http.StatusConflict, ErrCodeConflict, "request already paid")
		return
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
