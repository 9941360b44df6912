package domain

import "testing"

func TestStatusForBankStatus_ExactTable(t *testing.T) {
	cases := []struct {
		bank string
		want RequestStatus
	}{
		{"Success", StatusPaid},
		{"Failed", StatusPending},
		{"Cancel", StatusCancelled},
		{"Pending", StatusPending},
		{"VALID", StatusPending},
		{"", StatusPending},
		{"success", StatusPending}, // case-sensitive: gateway spells it "Success"
	}
	for _, c := range cases {
		if got := StatusForBankStatus(c.bank); got != c.want {
			t.Fatalf("StatusForBankStatus(%q) = %q; want %q", c.bank, got, c.want)
		}
	}
}

func TestRequestStatus_Terminal(t *testing.T) {
	if !StatusPaid.Terminal() {
		t.Fatal("paid must be terminal")
	}
	for _, s := range []RequestStatus{StatusPending, StatusApproved, StatusRejected, StatusCancelled} {
		if s.Terminal() {
			t.Fatalf("%q must not be terminal", s)
		}
	}
}

func TestRequestStatus_CanTransition(t *testing.T) {
	// No caller-driven transition out of paid.
	for _, next := range []RequestStatus{StatusApproved, StatusRejected, StatusCancelled, StatusPending} {
		if StatusPaid.CanTransition(next) {
			t.Fatalf("paid -> %q must be rejected", next)
		}
	}

	// approved <-> rejected is allowed; a landlord may revisit a decision.
	if !StatusApproved.CanTransition(StatusRejected) {
		t.Fatal("approved -> rejected must be allowed")
	}
	if !StatusRejected.CanTransition(StatusApproved) {
		t.Fatal("rejected -> approved must be allowed")
	}

	// paid and pending are never valid targets of a direct change.
	if StatusPending.CanTransition(StatusPaid) {
		t.Fatal("pending -> paid must go through payment verification only")
	}
	if StatusApproved.CanTransition(StatusPending) {
		t.Fatal("approved -> pending must be rejected")
	}
}

func TestRequestStatus_Valid(t *testing.T) {
	for _, s := range []RequestStatus{StatusPending, StatusApproved, StatusRejected, StatusPaid, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("%q must be valid", s)
		}
	}
	if RequestStatus("archived").Valid() {
		t.Fatal("unknown status must be invalid")
	}
}

func TestRequest_Active(t *testing.T) {
	for s, want := range map[RequestStatus]bool{
		StatusPending:   true,
		StatusApproved:  true,
		StatusPaid:      true,
		StatusRejected:  false,
		StatusCancelled: false,
	} {
		r := Request{Status: s}
		if got := r.Active(); got != want {
			t.Fatalf("Active() with status %q = %v; want %v", s, got, want)
		}
	}
}
