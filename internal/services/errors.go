// Package services defines the business logic for users, listings, rental
// requests, and payments. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer. The taxonomy mirrors the one the API
// exposes: not-found, conflict (invariant violation), payment-failed
// (gateway reports a non-success outcome), and dependency (gateway or mail
// channel unusable).
package services

import "errors"

// User and auth errors.
var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering with an email that
	// already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidRole is returned when a user is created with a role
	// outside {admin, landlord, tenant}.
	ErrInvalidRole = errors.New("invalid role")

	// ErrWrongCredentials is returned on a failed login or password
	// change (wrong email or password). Deliberately unspecific.
	ErrWrongCredentials = errors.New("wrong credentials")

	// ErrAccountInactive is returned when a deactivated account attempts
	// to authenticate.
	ErrAccountInactive = errors.New("account is deactivated")

	// ErrAccountDeleted is returned when a deleted account attempts to
	// authenticate.
	ErrAccountDeleted = errors.New("account is deleted")

	// ErrTokenInvalid is returned for refresh tokens that fail
	// verification, including tokens issued before a password change.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Listing errors.
var (
	// ErrListingNotFound indicates the referenced listing does not exist
	// or is deleted.
	ErrListingNotFound = errors.New("listing not found")

	// ErrListingRented is returned when a landlord tries to flip
	// availability on a listing a paid request has already claimed.
	ErrListingRented = errors.New("listing is already rented")
)

// Request lifecycle errors.
var (
	// ErrRequestNotFound indicates the referenced request does not exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrDuplicateRequest is returned when a tenant already has an active
	// request for the same listing.
	ErrDuplicateRequest = errors.New("active request already exists for this listing")

	// ErrRequestPaid is returned when a caller attempts to mutate or
	// delete a request that has reached the terminal paid status.
	ErrRequestPaid = errors.New("request is already paid")

	// ErrInvalidStatus is returned for status values outside the set a
	// caller may request (approved, rejected, cancelled).
	ErrInvalidStatus = errors.New("invalid status transition")
)

// Payment errors.
var (
	// ErrPaymentNotFound indicates the gateway has no record for the
	// given payment id, or no request is linked to it.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentFailed is returned when the gateway reports a
	// non-success bank status. The verified transaction is recorded
	// before this error is raised.
	ErrPaymentFailed = errors.New("payment was not successful")

	// ErrGatewayUnavailable is returned when the payment gateway is
	// unreachable or does not return a usable session. Distinct from
	// ErrPaymentFailed, which is a definite negative outcome.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrNotificationFailed is returned when a lifecycle email cannot be
	// confirmed sent; the surrounding transaction is rolled back.
	ErrNotificationFailed = errors.New("notification could not be sent")
)
