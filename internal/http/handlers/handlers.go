// Shared handler wiring and DTO plumbing.
//
// Handlers are transport-thin: they validate input, resolve the caller from
// the Gin context, call application services, and translate results (and
// sentinel errors) into HTTP responses.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/http/middleware"
	"github.com/nesthunt/go-rental-backend/internal/repo"
	"github.com/nesthunt/go-rental-backend/internal/services"
	"github.com/nesthunt/go-rental-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService defines account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, in services.UpdateUserInput) (*domain.User, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
	SoftDelete(ctx context.Context, userID string) error
}

// AuthService defines credential and token operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// ListingService defines listing operations consumed by HTTP handlers.
type ListingService interface {
	Create(ctx context.Context, in services.CreateListingInput) (*domain.Listing, error)
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	ListPage(ctx context.Context, filter repo.ListingFilter, page, pageSize int) ([]domain.Listing, int64, error)
	ListPersonalPage(ctx context.Context, landlordID string, page, pageSize int) ([]domain.Listing, int64, error)
	Update(ctx context.Context, listingID string, in services.UpdateListingInput) (*domain.Listing, error)
	ToggleAvailability(ctx context.Context, listingID string) (*domain.Listing, error)
	Delete(ctx context.Context, listingID string) error
	Locations(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Listing, error)
}

// RequestService defines rental request lifecycle operations.
type RequestService interface {
	Create(ctx context.Context, in services.CreateRequestInput) (*domain.Request, error)
	ChangeStatus(ctx context.Context, requestID string, newStatus domain.RequestStatus) (*domain.Request, error)
	Update(ctx context.Context, requestID string, in services.UpdateRequestInput) (*domain.Request, error)
	Delete(ctx context.Context, requestID string) error
	Get(ctx context.Context, requestID string) (*domain.Request, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Request, int64, error)
	ListPersonalPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Request, int64, error)
}

// PaymentService defines checkout and verification operations.
type PaymentService interface {
	Initiate(ctx context.Context, requestID, clientIP string) (*domain.Transaction, error)
	Verify(ctx context.Context, paymentID string) (*domain.Transaction, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for accounts, listings, rental requests,
// and payments. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	// db backs idempotency-record lookups for checkout replay. It may be
	// nil, in which case replay is disabled and every call reaches the
	// payment service.
	db         *gorm.DB
	userSvc    UserService
	authSvc    AuthService
	listingSvc ListingService
	requestSvc RequestService
	paymentSvc PaymentService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(db *gorm.DB, userSvc UserService, authSvc AuthService, listingSvc ListingService, requestSvc RequestService, paymentSvc PaymentService) *Handlers {
	return &Handlers{
		db:         db,
		userSvc:    userSvc,
		authSvc:    authSvc,
		listingSvc: listingSvc,
		requestSvc: requestSvc,
		paymentSvc: paymentSvc,
	}
}

// caller returns the authenticated user id and role from the Gin context,
// as bound by the auth middleware.
func caller(c *gin.Context) (userID, role string) {
	userID, role, _ = middleware.UserFrom(c)
	return userID, role
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginate builds the Pagination block for a page.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// parseDate accepts a date in RFC 3339 or plain YYYY-MM-DD form.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
