// Package services – PaymentService
//
// This file implements the PaymentService, which bridges the rental request
// lifecycle and the external payment gateway. Initiate opens a checkout
// session for a request; Verify reconciles the gateway's verdict
// back into the request, flipping it to paid (and the listing to
// unavailable) only for a Success bank status, inside one transaction.
//
// The gateway's transient failures surface as ErrGatewayUnavailable; a
// settled-but-unsuccessful payment surfaces as ErrPaymentFailed alongside
// the recorded transaction so callers can still show the outcome.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/gateway"
	"github.com/nesthunt/go-rental-backend/internal/repo"
)

// PaymentService coordinates checkout sessions and payment verification.
type PaymentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Gateway is the external payment provider client.
	Gateway PaymentGateway
	// Mailer delivers payment confirmations.
	Mailer Mailer
	// Currency is the ISO code sent with every checkout session.
	Currency string
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(db *gorm.DB, gw PaymentGateway, mailer Mailer, currency string) *PaymentService {
	return &PaymentService{DB: db, Gateway: gw, Mailer: mailer, Currency: currency}
}

// Initiate opens a gateway checkout session for a request.
//
// The request, its listing, and the paying tenant must all resolve, and a
// paid request cannot open another session. A request whose last payment
// failed stays eligible, so the tenant can retry checkout directly. The
// session amount is the listing's rent price and the order id is the
// request's external id, so the gateway's verification can be traced back.
// The issued payment id and checkout URL are stored on the request's
// transaction sub-record with a pending status; the caller redirects the
// tenant to the returned URL.
func (s *PaymentService) Initiate(ctx context.Context, requestID, clientIP string) (*domain.Transaction, error) {
	tr := otel.Tracer("services/PaymentService")
	ctx, span := tr.Start(ctx, "Initiate",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	r, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if r.Status == domain.StatusPaid {
		return nil, ErrRequestPaid
	}
	listing, err := repo.GetListing(ctx, s.DB, r.ListingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	tenant, err := repo.GetUser(ctx, s.DB, r.TenantID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	session, err := s.Gateway.CreatePayment(ctx, gateway.PaymentRequest{
		Amount:          listing.RentPrice,
		OrderID:         r.RequestID,
		Currency:        s.Currency,
		CustomerName:    tenant.Name,
		CustomerAddress: tenant.Address,
		CustomerEmail:   tenant.Email,
		CustomerPhone:   tenant.Phone,
		CustomerCity:    tenant.City,
		ClientIP:        clientIP,
	})
	if err != nil {
		return nil, ErrGatewayUnavailable
	}

	txRecord := domain.Transaction{
		PaymentID:         session.PaymentID,
		TransactionStatus: session.TransactionStatus,
		CheckoutURL:       session.CheckoutURL,
	}
	if err := repo.SetRequestTransaction(ctx, s.DB, r.RequestID, txRecord); err != nil {
		return nil, err
	}
	return &txRecord, nil
}

// Verify reconciles a payment id against the gateway and records the
// outcome.
//
// The gateway's bank status drives the derived request status: Success
// settles the request as paid, Failed returns it to pending so the tenant
// can retry, Cancel cancels it, and anything unrecognized is treated as
// pending. Only the Success path mutates lifecycle state, and it does so in
// a single transaction: the transaction record, the paid status, the
// listing's availability flip, and the confirmation email commit together
// or not at all.
//
// For a settled-but-unsuccessful payment the recorded transaction is
// returned together with ErrPaymentFailed.
func (s *PaymentService) Verify(ctx context.Context, paymentID string) (*domain.Transaction, error) {
	tr := otel.Tracer("services/PaymentService")
	ctx, span := tr.Start(ctx, "Verify",
		trace.WithAttributes(attribute.String("payment.id", paymentID)),
	)
	defer span.End()

	records, err := s.Gateway.Verify(ctx, paymentID)
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil, ErrPaymentNotFound
		}
		return nil, ErrGatewayUnavailable
	}
	if len(records) == 0 {
		return nil, ErrPaymentNotFound
	}
	verified := records[0]

	r, err := repo.GetRequestByPaymentID(ctx, s.DB, paymentID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	txRecord := domain.Transaction{
		PaymentID:         paymentID,
		TransactionStatus: verified.TransactionStatus,
		CheckoutURL:       r.Transaction.CheckoutURL,
		BankStatus:        verified.BankStatus,
		GatewayCode:       verified.GatewayCode,
		GatewayMessage:    verified.GatewayMessage,
		Method:            verified.Method,
		DateTime:          verified.Time(),
	}

	derived := domain.StatusForBankStatus(verified.BankStatus)

	if derived == domain.StatusPaid {
		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Re-confirm the link inside the transaction: the request may
			// have opened a newer session since the read above.
			cur, err := repo.GetRequestByPaymentID(ctx, tx, paymentID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return ErrPaymentNotFound
				}
				return err
			}
			if err := repo.SetRequestTransaction(ctx, tx, cur.RequestID, txRecord); err != nil {
				return err
			}
			if err := repo.UpdateRequestStatus(ctx, tx, cur.RequestID, domain.StatusPaid); err != nil {
				return err
			}
			if err := repo.SetListingAvailability(ctx, tx, cur.ListingID, false); err != nil {
				return err
			}
			tenant, err := repo.GetUser(ctx, tx, cur.TenantID)
			if err != nil {
				return ErrUserNotFound
			}
			listing, err := repo.GetListing(ctx, tx, cur.ListingID)
			if err != nil {
				return ErrListingNotFound
			}
			if err := s.Mailer.SendPaymentConfirmationEmail(ctx, tenant.Email, cur.RequestID,
				paymentID, listing.ListingID, listing.RentPrice); err != nil {
				return ErrNotificationFailed
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &txRecord, nil
	}

	// Failed or Cancel: record the outcome and move the request back to the
	// derived status, unless payment already completed earlier. The status
	// check uses a fresh read so a settlement committed since the read above
	// is never downgraded.
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetRequestByPaymentID(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if err := repo.SetRequestTransaction(ctx, tx, cur.RequestID, txRecord); err != nil {
			return err
		}
		if cur.Status == domain.StatusPaid {
			return nil
		}
		return repo.UpdateRequestStatus(ctx, tx, cur.RequestID, derived)
	})
	if err != nil {
		return nil, err
	}
	return &txRecord, ErrPaymentFailed
}
