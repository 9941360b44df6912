package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nesthunt/go-rental-backend/internal/domain"
)

// test DB helper
func newReqRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("req_repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func testRequest(requestID, tenantID, listingID string) *domain.Request {
	return &domain.Request{
		RequestID:    requestID,
		TenantID:     tenantID,
		LandlordID:   "L-00001",
		ListingID:    listingID,
		MoveInDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		RentDuration: "12 months",
	}
}

func TestCreateRequest_DefaultsToPending(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	r, err := CreateRequest(ctx, db, testRequest("R-00001", "T-00001", "L-00001"))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if r.ID == "" || r.Status != domain.StatusPending {
		t.Fatalf("unexpected request: %+v", r)
	}
	if r.CreatedAt.IsZero() || time.Since(r.CreatedAt) > time.Minute {
		t.Fatalf("CreatedAt not set reasonably: %v", r.CreatedAt)
	}

	got, err := GetRequest(ctx, db, "R-00001")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.TenantID != "T-00001" || got.ListingID != "L-00001" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestCreateRequest_Error_NoTable(t *testing.T) {
	db := newReqRepoDB(t)
	if _, err := CreateRequest(context.Background(), db, testRequest("R-00001", "T-00001", "L-00001")); err == nil {
		t.Fatalf("expected error on missing table")
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	if _, err := GetRequest(context.Background(), db, "R-99999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindActiveRequest_SkipsRejectedAndCancelled(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	seed := func(id string, status domain.RequestStatus) {
		r := testRequest(id, "T-00001", "L-00001")
		r.Status = status
		if _, err := CreateRequest(ctx, db, r); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	seed("R-00001", domain.StatusRejected)
	seed("R-00002", domain.StatusCancelled)
	if _, err := FindActiveRequest(ctx, db, "T-00001", "L-00001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected/cancelled should not block, got %v", err)
	}

	seed("R-00003", domain.StatusPending)
	got, err := FindActiveRequest(ctx, db, "T-00001", "L-00001")
	if err != nil {
		t.Fatalf("FindActiveRequest: %v", err)
	}
	if got.RequestID != "R-00003" {
		t.Fatalf("wrong active request: %+v", got)
	}

	// other pairs are unaffected
	if _, err := FindActiveRequest(ctx, db, "T-00002", "L-00001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other tenant should have no active request, got %v", err)
	}
	if _, err := FindActiveRequest(ctx, db, "T-00001", "L-00002"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other listing should have no active request, got %v", err)
	}
}

func TestHasPaidRequest(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	r := testRequest("R-00001", "T-00001", "L-00001")
	r.Status = domain.StatusApproved
	if _, err := CreateRequest(ctx, db, r); err != nil {
		t.Fatalf("seed: %v", err)
	}

	paid, err := HasPaidRequest(ctx, db, "L-00001")
	if err != nil || paid {
		t.Fatalf("HasPaidRequest = %v, %v; want false", paid, err)
	}

	if err := UpdateRequestStatus(ctx, db, "R-00001", domain.StatusPaid); err != nil {
		t.Fatalf("UpdateRequestStatus: %v", err)
	}
	paid, err = HasPaidRequest(ctx, db, "L-00001")
	if err != nil || !paid {
		t.Fatalf("HasPaidRequest = %v, %v; want true", paid, err)
	}
}

func TestListRequestsPage_PersonalScope(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	for i, tenant := range []string{"T-00001", "T-00002", "T-00001"} {
		r := testRequest(fmt.Sprintf("R-%05d", i+1), tenant, fmt.Sprintf("L-%05d", i+1))
		if _, err := CreateRequest(ctx, db, r); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	total, err := CountRequests(ctx, db, PersonalScope("T-00001"))
	if err != nil || total != 2 {
		t.Fatalf("CountRequests tenant = %d, %v; want 2", total, err)
	}

	// the landlord side of the scope matches every seeded row
	total, err = CountRequests(ctx, db, PersonalScope("L-00001"))
	if err != nil || total != 3 {
		t.Fatalf("CountRequests landlord = %d, %v; want 3", total, err)
	}

	rows, err := ListRequestsPage(ctx, db, PersonalScope("T-00002"), 0, 50)
	if err != nil {
		t.Fatalf("ListRequestsPage: %v", err)
	}
	if len(rows) != 1 || rows[0].RequestID != "R-00002" {
		t.Fatalf("unexpected personal page: %+v", rows)
	}
}

func TestUpdateRequestStatus_SuccessAndNotFound(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	if _, err := CreateRequest(ctx, db, testRequest("R-00001", "T-00001", "L-00001")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := UpdateRequestStatus(ctx, db, "R-00001", domain.StatusApproved); err != nil {
		t.Fatalf("UpdateRequestStatus: %v", err)
	}
	got, err := GetRequest(ctx, db, "R-00001")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.Status != domain.StatusApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}

	if err := UpdateRequestStatus(ctx, db, "R-99999", domain.StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRequestFields_SuccessAndNotFound(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	if _, err := CreateRequest(ctx, db, testRequest("R-00001", "T-00001", "L-00001")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	moveIn := time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC)
	err := UpdateRequestFields(ctx, db, "R-00001", map[string]any{
		"move_in_date":  moveIn,
		"rent_duration": "6 months",
	})
	if err != nil {
		t.Fatalf("UpdateRequestFields: %v", err)
	}
	got, err := GetRequest(ctx, db, "R-00001")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if !got.MoveInDate.Equal(moveIn) || got.RentDuration != "6 months" {
		t.Fatalf("patch not applied: %+v", got)
	}

	if err := UpdateRequestFields(ctx, db, "R-99999", map[string]any{"rent_duration": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetRequestTransaction_OverwritesAndResolvesByPaymentID(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	if _, err := CreateRequest(ctx, db, testRequest("R-00001", "T-00001", "L-00001")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first := domain.Transaction{
		PaymentID:         "pay-1",
		TransactionStatus: "Initiated",
		CheckoutURL:       "https://gw.example/checkout/pay-1",
	}
	if err := SetRequestTransaction(ctx, db, "R-00001", first); err != nil {
		t.Fatalf("SetRequestTransaction: %v", err)
	}

	got, err := GetRequestByPaymentID(ctx, db, "pay-1")
	if err != nil {
		t.Fatalf("GetRequestByPaymentID: %v", err)
	}
	if got.RequestID != "R-00001" || got.Transaction.CheckoutURL != first.CheckoutURL {
		t.Fatalf("unexpected request: %+v", got)
	}

	// verification overwrites the whole sub-record
	settledAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	second := domain.Transaction{
		PaymentID:         "pay-1",
		TransactionStatus: "Completed",
		BankStatus:        "Success",
		GatewayCode:       "1000",
		GatewayMessage:    "approved",
		Method:            "bkash",
		DateTime:          &settledAt,
	}
	if err := SetRequestTransaction(ctx, db, "R-00001", second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = GetRequest(ctx, db, "R-00001")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.Transaction.BankStatus != "Success" || got.Transaction.Method != "bkash" || got.Transaction.CheckoutURL != "" {
		t.Fatalf("sub-record not overwritten: %+v", got.Transaction)
	}
	if got.Transaction.DateTime == nil || !got.Transaction.DateTime.Equal(settledAt) {
		t.Fatalf("settlement time not persisted: %v", got.Transaction.DateTime)
	}

	if _, err := GetRequestByPaymentID(ctx, db, "pay-unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := SetRequestTransaction(ctx, db, "R-99999", first); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRequest_SoftDeleteHidesRow(t *testing.T) {
	db := newReqRepoDB(t, &domain.Request{})
	ctx := context.Background()

	if _, err := CreateRequest(ctx, db, testRequest("R-00001", "T-00001", "L-00001")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := DeleteRequest(ctx, db, "R-00001"); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
	if _, err := GetRequest(ctx, db, "R-00001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("soft-deleted request still visible, err=%v", err)
	}
	if err := DeleteRequest(ctx, db, "R-00001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestRequestActive(t *testing.T) {
	cases := []struct {
		status domain.RequestStatus
		want   bool
	}{
		{domain.StatusPending, true},
		{domain.StatusApproved, true},
		{domain.StatusPaid, true},
		{domain.StatusRejected, false},
		{domain.StatusCancelled, false},
	}
	for _, tc := range cases {
		r := domain.Request{Status: tc.status}
		if got := r.Active(); got != tc.want {
			t.Errorf("Active() with %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}
