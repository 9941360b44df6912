// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Request
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a request is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.RequestService / services.PaymentService) which enforces the
// lifecycle rules: the duplicate-application invariant, paid-terminality,
// and the atomic paid-transition with the listing availability side effect.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nesthunt/go-rental-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRequest inserts a new pending Request with the given external id.
// The primary key is a randomly generated UUID and CreatedAt is set to UTC.
func CreateRequest(ctx context.Context, db *gorm.DB, r *domain.Request) (*domain.Request, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = domain.StatusPending
	}
	r.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a single request by its external id, or ErrNotFound.
func GetRequest(ctx context.Context, db *gorm.DB, requestID string) (*domain.Request, error) {
	var r domain.Request
	err := db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRequestByPaymentID fetches the request whose transaction sub-record
// holds the given gateway payment id, or ErrNotFound.
func GetRequestByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*domain.Request, error) {
	var r domain.Request
	err := db.WithContext(ctx).
		Where("tx_payment_id = ?", paymentID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindActiveRequest returns the active (neither rejected nor cancelled)
// request for a (tenant, listing) pair, or ErrNotFound when none exists.
// Used to enforce the one-active-request-per-pair invariant.
func FindActiveRequest(ctx context.Context, db *gorm.DB, tenantID, listingID string) (*domain.Request, error) {
	var r domain.Request
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND listing_id = ? AND status NOT IN ?",
			tenantID, listingID,
			[]domain.RequestStatus{domain.StatusRejected, domain.StatusCancelled}).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HasPaidRequest reports whether any request against the listing has reached
// paid. Consulted by the manual availability toggle.
func HasPaidRequest(ctx context.Context, db *gorm.DB, listingID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("listing_id = ? AND status = ?", listingID, domain.StatusPaid).
		Count(&n).Error
	return n > 0, err
}

// CountRequests returns the total number of requests matched by the filter.
func CountRequests(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.Request{})
	if scope != nil {
		q = scope(q)
	}
	err := q.Count(&total).Error
	return total, err
}

// ListRequestsPage returns a page of requests, newest first, optionally
// narrowed by the given scope (e.g. a status filter or a personal filter).
func ListRequestsPage(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]domain.Request, error) {
	var out []domain.Request
	q := db.WithContext(ctx).Model(&domain.Request{})
	if scope != nil {
		q = scope(q)
	}
	err := q.Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PersonalScope narrows a request query to those where the user participates
// as tenant or landlord.
func PersonalScope(userID string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("tenant_id = ? OR landlord_id = ?", userID, userID)
	}
}

// UpdateRequestStatus sets the status of a request identified by its
// external id. If no rows are affected it returns ErrNotFound.
func UpdateRequestStatus(ctx context.Context, db *gorm.DB, requestID string, status domain.RequestStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("request_id = ?", requestID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateRequestFields applies a partial field patch to a request. Column
// names are the callers' responsibility; unknown keys surface as DB errors.
// Returns ErrNotFound when the request does not exist.
func UpdateRequestFields(ctx context.Context, db *gorm.DB, requestID string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("request_id = ?", requestID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetRequestTransaction overwrites the transaction sub-record of a request.
// The sub-record is append/overwrite-only; it is never cleared.
func SetRequestTransaction(ctx context.Context, db *gorm.DB, requestID string, tx domain.Transaction) error {
	res := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("request_id = ?", requestID).
		Updates(map[string]any{
			"tx_payment_id":         tx.PaymentID,
			"tx_transaction_status": tx.TransactionStatus,
			"tx_checkout_url":       tx.CheckoutURL,
			"tx_bank_status":        tx.BankStatus,
			"tx_gateway_code":       tx.GatewayCode,
			"tx_gateway_message":    tx.GatewayMessage,
			"tx_method":             tx.Method,
			"tx_date_time":          tx.DateTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRequest soft-deletes a request by its external id. Returns
// ErrNotFound when it does not exist.
func DeleteRequest(ctx context.Context, db *gorm.DB, requestID string) error {
	res := db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&domain.Request{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
