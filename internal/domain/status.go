// Package domain – request status state machine.
//
// The request status is an explicit enum with a small transition table.
// Forward progression is monotonic except for cancellation, and nothing
// transitions out of paid. The bank-status mapping is the gateway's
// vocabulary, not ours, and must stay exactly as listed.
package domain

// RequestStatus is the lifecycle state of a rental request.
type RequestStatus string

// Request lifecycle states.
const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusPaid      RequestStatus = "paid"
	StatusCancelled RequestStatus = "cancelled"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further caller-driven transition.
// Only paid is terminal: cancelled and rejected requests stay mutable so a
// landlord can revisit a decision (approved and rejected are deliberately
// interchangeable).
func (s RequestStatus) Terminal() bool { return s == StatusPaid }

// CanTransition reports whether a caller-driven status change from s to next
// is allowed. Paid is reachable only through payment verification, never
// through a direct status change.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Gateway bank-status vocabulary. Distinct from RequestStatus.
const (
	BankStatusSuccess = "Success"
	BankStatusFailed  = "Failed"
	BankStatusCancel  = "Cancel"
)

// StatusForBankStatus derives the request status from the gateway's bank
// status. The table is user-visible and externally driven, so it is exactly:
// Success→paid, Failed→pending, Cancel→cancelled, anything else→pending.
func StatusForBankStatus(bankStatus string) RequestStatus {
	switch bankStatus {
	case BankStatusSuccess:
		return StatusPaid
	case BankStatusFailed:
		return StatusPending
	case BankStatusCancel:
		return StatusCancelled
	default:
		return StatusPending
	}
}
