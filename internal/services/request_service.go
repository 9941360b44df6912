// Package services – RequestService
//
// This file implements the RequestService, which owns the rental request
// lifecycle: creation under the duplicate-application invariant, landlord
// status decisions, generic field patches, and deletion. Payment initiation
// and reconciliation live in PaymentService.
//
// Every multi-step operation runs inside a storage transaction: the
// duplicate check and the insert commit together, and a status change
// commits together with the notification send — an email that cannot be
// confirmed sent rolls the whole operation back.
//
// Service-level errors (e.g. ErrDuplicateRequest, ErrRequestPaid) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/repo"
)

// RequestService coordinates the rental request lifecycle.
type RequestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Mailer delivers status-change notifications.
	Mailer Mailer
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, mailer Mailer) *RequestService {
	return &RequestService{DB: db, Mailer: mailer}
}

// CreateRequestInput carries the tenant's application.
type CreateRequestInput struct {
	TenantID      string
	LandlordID    string
	ListingID     string
	MoveInDate    time.Time
	RentDuration  string
	Message       string
	LandlordPhone string
}

// Create files a new rental request for a tenant.
//
// Semantics:
//   - Tenant, landlord, and listing must resolve; otherwise the matching
//     not-found error is returned.
//   - At most one active (not rejected, not cancelled) request may exist per
//     (tenant, listing); a second application yields ErrDuplicateRequest.
//   - The external id (R-%05d) is allocated from an atomic sequence inside
//     the same transaction as the insert.
//   - The landlord is notified by email inside the transaction; a delivery
//     failure aborts the creation (ErrNotificationFailed).
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput) (*domain.Request, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("tenant.id", in.TenantID),
			attribute.String("listing.id", in.ListingID),
		),
	)
	defer span.End()

	if _, err := repo.GetUser(ctx, s.DB, in.TenantID); err != nil {
		return nil, ErrUserNotFound
	}
	landlord, err := repo.GetUser(ctx, s.DB, in.LandlordID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	listing, err := repo.GetListing(ctx, s.DB, in.ListingID)
	if err != nil {
		return nil, ErrListingNotFound
	}

	var created *domain.Request
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.FindActiveRequest(ctx, tx, in.TenantID, in.ListingID); err == nil {
			return ErrDuplicateRequest
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		requestID, err := repo.NextID(ctx, tx, repo.SeqRequest, "R")
		if err != nil {
			return err
		}

		r := &domain.Request{
			RequestID:     requestID,
			TenantID:      in.TenantID,
			LandlordID:    in.LandlordID,
			ListingID:     in.ListingID,
			Status:        domain.StatusPending,
			MoveInDate:    in.MoveInDate,
			RentDuration:  in.RentDuration,
			Message:       in.Message,
			LandlordPhone: in.LandlordPhone,
		}
		if _, err := repo.CreateRequest(ctx, tx, r); err != nil {
			return err
		}
		created = r

		// Notify the landlord; an unconfirmed send aborts the creation.
		if err := s.Mailer.SendStatusChangeEmail(ctx, landlord.Email, requestID,
			string(domain.StatusPending), listing.ListingID, listing.HouseLocation); err != nil {
			return ErrNotificationFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ChangeStatus applies a landlord (or tenant cancellation) decision.
//
// Semantics:
//   - newStatus must be approved, rejected, or cancelled; pending and paid
//     are never valid targets of a direct change (ErrInvalidStatus).
//   - A missing request yields ErrRequestNotFound; a paid request is
//     terminal and yields ErrRequestPaid.
//   - Approved and rejected remain interchangeable until payment: the
//     transition table deliberately allows revisiting a decision.
//   - The tenant is notified inside the transaction; delivery failure
//     aborts the change.
func (s *RequestService) ChangeStatus(ctx context.Context, requestID string, newStatus domain.RequestStatus) (*domain.Request, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "ChangeStatus",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("request.status", string(newStatus)),
		),
	)
	defer span.End()

	var updated *domain.Request
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRequest(ctx, tx, requestID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if r.Status == domain.StatusPaid {
			return ErrRequestPaid
		}
		if !r.Status.CanTransition(newStatus) {
			return ErrInvalidStatus
		}

		if err := repo.UpdateRequestStatus(ctx, tx, requestID, newStatus); err != nil {
			return err
		}
		r.Status = newStatus
		updated = r

		tenant, err := repo.GetUser(ctx, tx, r.TenantID)
		if err != nil {
			return ErrUserNotFound
		}
		listing, err := repo.GetListing(ctx, tx, r.ListingID)
		if err != nil {
			return ErrListingNotFound
		}
		if err := s.Mailer.SendStatusChangeEmail(ctx, tenant.Email, requestID,
			string(newStatus), listing.ListingID, listing.HouseLocation); err != nil {
			return ErrNotificationFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateRequestInput is a partial field patch. Nil fields are left
// untouched. Unlike ChangeStatus there is no status-specific guard.
type UpdateRequestInput struct {
	MoveInDate    *time.Time
	RentDuration  *string
	Message       *string
	LandlordPhone *string
}

// Update applies a partial patch to a request and returns the result.
func (s *RequestService) Update(ctx context.Context, requestID string, in UpdateRequestInput) (*domain.Request, error) {
	fields := map[string]any{}
	if in.MoveInDate != nil {
		fields["move_in_date"] = *in.MoveInDate
	}
	if in.RentDuration != nil {
		fields["rent_duration"] = *in.RentDuration
	}
	if in.Message != nil {
		fields["message"] = *in.Message
	}
	if in.LandlordPhone != nil {
		fields["landlord_phone"] = *in.LandlordPhone
	}

	if len(fields) > 0 {
		if err := repo.UpdateRequestFields(ctx, s.DB, requestID, fields); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrRequestNotFound
			}
			return nil, err
		}
	}
	r, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return r, nil
}

// Delete removes a request. Paid requests are immutable history and cannot
// be deleted (ErrRequestPaid).
func (s *RequestService) Delete(ctx context.Context, requestID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRequest(ctx, tx, requestID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if r.Status == domain.StatusPaid {
			return ErrRequestPaid
		}
		return repo.DeleteRequest(ctx, tx, requestID)
	})
}

// Get returns a single request by external id.
func (s *RequestService) Get(ctx context.Context, requestID string) (*domain.Request, error) {
	r, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return r, nil
}

// ListPage returns a page of all requests (admin view) and the total count.
func (s *RequestService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Request, int64, error) {
	return s.listPage(ctx, nil, page, pageSize)
}

// ListPersonalPage returns a page of the requests a user participates in,
// as tenant or landlord, and the total count.
func (s *RequestService) ListPersonalPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Request, int64, error) {
	return s.listPage(ctx, repo.PersonalScope(userID), page, pageSize)
}

func (s *RequestService) listPage(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page, pageSize int) ([]domain.Request, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountRequests(ctx, s.DB, scope)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Request{}, 0, nil
	}

	items, err := repo.ListRequestsPage(ctx, s.DB, scope, offset, pageSize)
	return items, total, err
}
