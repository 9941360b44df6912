// Package services – outbound ports.
//
// The request lifecycle depends on two external collaborators: the payment
// gateway and the notification sender. Both are consumed through the small
// interfaces below so the transaction logic in this package does not depend
// on a concrete HTTP client or mail transport, and so tests can substitute
// deterministic fakes.
package services

import (
	"context"

	"github.com/nesthunt/go-rental-backend/internal/gateway"
)

// PaymentGateway creates payment sessions and reports their outcome.
// *gateway.Client is the production implementation.
type PaymentGateway interface {
	// CreatePayment opens a payment session and returns the hosted
	// checkout details. An error (or an unusable session) means the
	// dependency could not serve the request.
	CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.PaymentSession, error)

	// Verify returns zero or one verification records for the payment id.
	Verify(ctx context.Context, paymentID string) ([]gateway.VerifiedPayment, error)
}

// Mailer delivers lifecycle notifications. A returned error means delivery
// could not be confirmed, which aborts the surrounding business transaction.
// *notify.Mailer is the production implementation.
type Mailer interface {
	SendStatusChangeEmail(ctx context.Context, toEmail, requestID, newStatus, listingID, location string) error
	SendPaymentConfirmationEmail(ctx context.Context, toEmail, requestID, paymentID, listingID string, amount float64) error
}
