// Listing HTTP handlers.
//
// This file exposes REST endpoints for property listings:
//   - POST   /listings                     (create, landlord)
//   - GET    /listings                     (public search, filtered + paginated)
//   - GET    /listings/locations           (distinct locations for the search UI)
//   - GET    /listings/search              (free-text search, ranked)
//   - GET    /listings/mine                (landlord's own listings)
//   - GET    /listings/{id}                (public detail)
//   - PATCH  /listings/{id}                (partial update, owner)
//   - POST   /listings/{id}/availability   (toggle, owner)
//   - DELETE /listings/{id}                (owner)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/repo"
	"github.com/nesthunt/go-rental-backend/internal/services"
	"github.com/nesthunt/go-rental-backend/internal/utils"
)

// CreateListingRequest is the JSON payload for creating a listing.
type CreateListingRequest struct {
	HouseLocation string  `json:"house_location" binding:"required,min=1,max=255" example:"Dhaka"`
	Description   string  `json:"description"    binding:"required"               example:"Two bed flat near the lake"`
	RentPrice     float64 `json:"rent_price"     binding:"required,gt=0"          example:"15000"`
	BedroomNumber int     `json:"bedroom_number" binding:"required,gt=0"          example:"2"`
	Images        string  `json:"images"         example:"[\"https://img.example/1.jpg\"]"`
	Features      string  `json:"features"       example:"balcony, parking"`
}

// UpdateListingRequest is the JSON payload for a partial listing update.
// Absent fields are left untouched.
type UpdateListingRequest struct {
	HouseLocation *string  `json:"house_location,omitempty"`
	Description   *string  `json:"description,omitempty"`
	RentPrice     *float64 `json:"rent_price,omitempty"`
	BedroomNumber *int     `json:"bedroom_number,omitempty"`
	Images        *string  `json:"images,omitempty"`
	Features      *string  `json:"features,omitempty"`
}

// ListListingsResponse wraps a page of listings and pagination information.
type ListListingsResponse struct {
	Listings   []domain.Listing `json:"listings"`
	Pagination Pagination       `json:"pagination"`
}

// SearchListingsResponse wraps the ranked results of a free-text search.
type SearchListingsResponse struct {
	Query    string           `json:"query"`
	Listings []domain.Listing `json:"listings"`
}

// CreateListing godoc
// @ID          createListing
// @Summary     Create a listing
// @Tags        Listings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateListingRequest  true  "Listing payload"
//
// @Success     201  {object}  domain.Listing
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Landlords only"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings [post]
func (h *Handlers) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid listing payload")
		return
	}

	uid, _ := caller(c)
	l, err := h.listingSvc.Create(c.Request.Context(), services.CreateListingInput{
		LandlordID:    uid,
		HouseLocation: req.HouseLocation,
		Description:   req.Description,
		RentPrice:     req.RentPrice,
		BedroomNumber: req.BedroomNumber,
		Images:        req.Images,
		Features:      req.Features,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, l)
}

// ListListings godoc
// @ID          listListings
// @Summary     Search listings
// @Description Returns a page of listings. All filters are optional and combine with AND.
// @Tags        Listings
// @Produce     json
//
// @Param       location   query  string   false  "Exact house location"       example(Dhaka)
// @Param       min_price  query  number   false  "Minimum rent price"         example(8000)
// @Param       max_price  query  number   false  "Maximum rent price"         example(20000)
// @Param       bedrooms   query  int      false  "Exact bedroom count"        example(2)
// @Param       available  query  bool     false  "Only available listings"    example(true)
// @Param       page       query  int      false  "Page number"                minimum(1) default(1)
// @Param       page_size  query  int      false  "Items per page"             minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListListingsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings [get]
func (h *Handlers) ListListings(c *gin.Context) {
	page, pageSize := clampPagination(c)
	filter := repo.ListingFilter{
		Location:      c.Query("location"),
		MinPrice:      utils.AtofDefault(c.Query("min_price"), 0),
		MaxPrice:      utils.AtofDefault(c.Query("max_price"), 0),
		Bedrooms:      utils.AtoiDefault(c.Query("bedrooms"), 0),
		OnlyAvailable: c.Query("available") == "true",
	}

	items, total, err := h.listingSvc.ListPage(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListListingsResponse{Listings: items, Pagination: paginate(page, pageSize, total)})
}

// ListMyListings godoc
// @ID          listMyListings
// @Summary     List own listings
// @Tags        Listings
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListListingsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings/mine [get]
func (h *Handlers) ListMyListings(c *gin.Context) {
	uid, _ := caller(c)
	page, pageSize := clampPagination(c)

	items, total, err := h.listingSvc.ListPersonalPage(c.Request.Context(), uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListListingsResponse{Listings: items, Pagination: paginate(page, pageSize, total)})
}

// GetListing godoc
// @ID          getListing
// @Summary     Get a listing
// @Tags        Listings
// @Produce     json
//
// @Param       id  path  string  true  "Listing ID"  example(L-00042)
//
// @Success     200  {object}  domain.Listing
// @Failure     404  {object}  handlers.ErrorResponse  "Listing not found"
// @Router      /listings/{id} [get]
func (h *Handlers) GetListing(c *gin.Context) {
	l, err := h.listingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
		return
	}
	ok(c, http.StatusOK, l)
}

// SearchListings godoc
// @ID          searchListings
// @Summary     Search listings by free text
// @Description Ranks available listings against a free-text query over
// @Description location, description, and features.
// @Tags        Listings
// @Produce     json
//
// @Param       q      query  string  true   "Search query"      example(two bedroom flat dhanmondi)
// @Param       limit  query  int     false  "Maximum results"   minimum(1) maximum(50) default(10)
//
// @Success     200  {object}  handlers.SearchListingsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings/search [get]
func (h *Handlers) SearchListings(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 10)

	items, err := h.listingSvc.Search(c.Request.Context(), q, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Listing{}
	}
	ok(c, http.StatusOK, SearchListingsResponse{Query: q, Listings: items})
}

// ListingLocations godoc
// @ID          listingLocations
// @Summary     List distinct locations
// @Tags        Listings
// @Produce     json
//
// @Success     200  {array}   string
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings/locations [get]
func (h *Handlers) ListingLocations(c *gin.Context) {
	locs, err := h.listingSvc.Locations(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, locs)
}

// ownListing loads a listing and checks the caller owns it (admins always
// pass). On failure the response has already been written.
func (h *Handlers) ownListing(c *gin.Context, listingID string) (*domain.Listing, bool) {
	l, err := h.listingSvc.Get(c.Request.Context(), listingID)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
		return nil, false
	}
	uid, role := caller(c)
	if role != domain.RoleAdmin && l.LandlordID != uid {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not the listing owner")
		return nil, false
	}
	return l, true
}

// UpdateListing godoc
// @ID          updateListing
// @Summary     Update a listing
// @Description Applies a partial patch to a listing owned by the caller.
// @Tags        Listings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Listing ID"  example(L-00042)
// @Param       body  body  handlers.UpdateListingRequest  true  "Listing patch"
//
// @Success     200  {object}  domain.Listing
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the listing owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Listing not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings/{id} [patch]
func (h *Handlers) UpdateListing(c *gin.Context) {
	if _, okOwner := h.ownListing(c, c.Param("id")); !okOwner {
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	l, err := h.listingSvc.Update(c.Request.Context(), c.Param("id"), services.UpdateListingInput{
		HouseLocation: req.HouseLocation,
		Description:   req.Description,
		RentPrice:     req.RentPrice,
		BedroomNumber: req.BedroomNumber,
		Images:        req.Images,
		Features:      req.Features,
	})
	switch {
	case errors.Is(err, services.ErrListingNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, l)
}

// ToggleAvailability godoc
// @ID          toggleAvailability
// @Summary     Toggle listing availability
// @Description Flips the availability flag. A listing with a settled rental cannot be flipped back by hand.
// @Tags        Listings
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Listing ID"  example(L-00042)
//
// @Success     200  {object}  domain.Listing
// @Failure     403  {object}  handlers.ErrorResponse  "Not the listing owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Listing not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Listing has a settled rental"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings/{id}/availability [post]
func (h *Handlers) ToggleAvailability(c *gin.Context) {
	if _, okOwner := h.ownListing(c, c.Param("id")); !okOwner {
		return
	}

	l, err := h.listingSvc.ToggleAvailability(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrListingRented):
		fail(c, http.StatusConflict, ErrCodeConflict, "listing has a settled rental")
		return
	case errors.Is(err, services.ErrListingNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, l)
}

// DeleteListing godoc
// @ID          deleteListing
// @Summary     Delete a listing
// @Tags        Listings
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Listing ID"  example(L-00042)
//
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the listing owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Listing not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /listings/{id} [delete]
func (h *Handlers) DeleteListing(c *gin.Context) {
	if _, okOwner := h.ownListing(c, c.Param("id")); !okOwner {
		return
	}

	err := h.listingSvc.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrListingNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
