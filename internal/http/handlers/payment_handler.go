// Payment HTTP handlers.
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// checkout session exists for the same (user, request, key), the handler
// replays the stored transaction and sets `Idempotency-Replayed: true`
// instead of opening a second gateway session.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/http/middleware"
	"github.com/nesthunt/go-rental-backend/internal/repo"
	"github.com/nesthunt/go-rental-backend/internal/services"
)

// PaymentResponse wraps the transaction record returned by checkout and
// verification endpoints.
type PaymentResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
}

// VerifyPaymentRequest is the JSON payload for a payment verification call.
type VerifyPaymentRequest struct {
	PaymentID string `json:"payment_id" binding:"required" example:"NH63f8a2b9c1d4e"`
}

// InitiatePayment godoc
// @ID          initiatePayment
// @Summary     Start checkout for a rental request
// @Description Opens a gateway checkout session for the listing's rent amount and returns the checkout URL.
// @Description Supports idempotency via the Idempotency-Key header (same key → same session).
// @Tags        Payments
// @Produce     json
// @Security    BearerAuth
//
// @Param       id               path    string  true   "Request ID"  example(R-00042)
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
//
// @Success     200  {object}  handlers.PaymentResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Not the applicant"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Request already paid"
// @Failure     502  {object}  handlers.ErrorResponse  "Gateway unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id}/payment [post]
func (h *Handlers) InitiatePayment(c *gin.Context) {
	ctx := c.Request.Context()
	requestID := c.Param("id")

	r, okPart := h.participantRequest(c, requestID)
	if !okPart {
		return
	}
	uid, role := caller(c)
	if role != domain.RoleAdmin && r.TenantID != uid {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "only the applicant pays for a request")
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middlewareGetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, uid, requestID, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := repo.GetRequestByPaymentID(ctx, h.db, rec.PaymentID); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, PaymentResponse{Transaction: &prev.Transaction})
				return
			}
		}
	}

	tx, err := h.paymentSvc.Initiate(ctx, requestID, c.ClientIP())
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		return
	case errors.Is(err, services.ErrRequestPaid):
		fail(c, http.StatusConflict, ErrCodeConflict, "request is already paid")
		return
	case errors.Is(err, services.ErrGatewayUnavailable):
		fail(c, http.StatusBadGateway, ErrCodeDependencyFailed, "payment gateway unavailable")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.db != nil {
		ttl := 24 * time.Hour
		_, _ = repo.CreateIdempotency(ctx, h.db, uid, requestID, idemKey, tx.PaymentID, http.StatusOK, ttl)
	}

	ok(c, http.StatusOK, PaymentResponse{Transaction: tx})
}

// VerifyPayment godoc
// @ID          verifyPayment
// @Summary     Verify a payment with the gateway
// @Description Settles the rental when the gateway reports success; otherwise records the outcome and reports a payment failure.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.VerifyPaymentRequest  true  "Payment to verify"
//
// @Success     200  {object}  handlers.PaymentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     402  {object}  handlers.ErrorResponse  "Payment failed or was cancelled"
// @Failure     404  {object}  handlers.ErrorResponse  "Payment not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Gateway or notification failure"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payments/verify [post]
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "payment_id required")
		return
	}

	tx, err := h.paymentSvc.Verify(c.Request.Context(), req.PaymentID)
	switch {
	case errors.Is(err, services.ErrPaymentFailed):
		// The gateway answered but the customer did not pay. The recorded
		// transaction goes back so the client can show the outcome.
		c.JSON(http.StatusPaymentRequired, gin.H{
			"code":        ErrCodePaymentFailed,
			"message":     "payment was not completed",
			"transaction": tx,
		})
		return
	case errors.Is(err, services.ErrPaymentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "payment not found")
		return
	case errors.Is(err, services.ErrGatewayUnavailable):
		fail(c, http.StatusBadGateway, ErrCodeDependencyFailed, "payment gateway unavailable")
		return
	case errors.Is(err, services.ErrNotificationFailed):
		fail(c, http.StatusBadGateway, ErrCodeDependencyFailed, "confirmation could not be delivered; settlement rolled back")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, PaymentResponse{Transaction: tx})
}

// middlewareGetIdempotencyKey extracts the idempotency key stashed by the
// validator middleware; it falls back to reading the "Idempotency-Key"
// header directly when the middleware is not mounted (tests).
func middlewareGetIdempotencyKey(c *gin.Context) (string, bool) {
	if k, okKey := middleware.GetIdempotencyKey(c); okKey {
		return k, true
	}
	if v := strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey)); v != "" {
		return v, true
	}
	return "", false
}
