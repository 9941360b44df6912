// Package domain defines the persistence models for users, listings, and
// rental requests. These types are mapped with GORM and form the core data
// layer of the rental marketplace application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User roles. A user is exactly one of these for its whole lifetime.
const (
	RoleAdmin    = "admin"
	RoleLandlord = "landlord"
	RoleTenant   = "tenant"
)

// User represents an account in the marketplace. The external identifier
// (UserID) is role-prefixed and sequentially allocated (A-00001, L-00001,
// T-00001); it is the id all other entities reference.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: stable external identifier, unique, role-prefixed.
//   - Role: "admin", "landlord" or "tenant" (enforced by DB constraint).
//   - PasswordHash: bcrypt hash; never serialized.
//   - PasswordChangedAt: set on password change; tokens issued before this
//     instant are rejected by the auth layer.
//   - IsActive / IsDeleted: account flags; deactivated or deleted users
//     cannot authenticate. Deletion is a soft flag so historical requests
//     keep resolving.
type User struct {
	ID                string     `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID            string     `json:"user_id"    gorm:"type:varchar(16);not null;uniqueIndex"`
	Name              string     `json:"name"       gorm:"type:varchar(128);not null"`
	Email             string     `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex"`
	Phone             string     `json:"phone,omitempty"   gorm:"type:varchar(32)"`
	Address           string     `json:"address,omitempty" gorm:"type:varchar(255)"`
	City              string     `json:"city,omitempty"    gorm:"type:varchar(64)"`
	Role              string     `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('admin','landlord','tenant')"`
	PasswordHash      string     `json:"-"          gorm:"type:varchar(128);not null"`
	PasswordChangedAt *time.Time `json:"-"`
	ProfileImage      string     `json:"profile_image,omitempty" gorm:"type:varchar(512)"`
	IsActive          bool       `json:"is_active"  gorm:"not null;default:true"`
	IsDeleted         bool       `json:"is_deleted" gorm:"not null;default:false"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Listing represents a rentable property owned by a landlord.
//
// IsAvailable is the one piece of state mutated by two independent paths:
// the landlord's manual toggle and the payment-completion flow. The payment
// flow clears it inside the same transaction that marks the winning request
// paid; no other path clears it automatically.
type Listing struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	ListingID     string         `json:"listing_id"     gorm:"type:varchar(16);not null;uniqueIndex"`
	LandlordID    string         `json:"landlord_id"    gorm:"type:varchar(16);not null;index"`
	HouseLocation string         `json:"house_location" gorm:"type:varchar(255);not null"`
	Description   string         `json:"description"    gorm:"type:text;not null"`
	RentPrice     float64        `json:"rent_price"     gorm:"not null"`
	BedroomNumber int            `json:"bedroom_number" gorm:"not null"`
	Images        string         `json:"images"         gorm:"type:text"` // JSON-encoded list of URLs
	Features      string         `json:"features,omitempty" gorm:"type:text"`
	IsAvailable   bool           `json:"is_available"   gorm:"not null;default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for Listing.
func (Listing) TableName() string { return "listings" }

// Transaction is the payment-gateway-derived sub-record embedded in a
// Request. It is populated when a payment attempt begins and overwritten by
// verification results; it is never deleted.
//
// BankStatus carries the gateway's own outcome vocabulary (Success, Failed,
// Cancel, ...) which is distinct from the request status enum; the mapping
// between the two is StatusForBankStatus.
type Transaction struct {
	PaymentID         string     `json:"payment_id,omitempty"         gorm:"type:varchar(64);index"`
	TransactionStatus string     `json:"transaction_status,omitempty" gorm:"type:varchar(32)"`
	CheckoutURL       string     `json:"checkout_url,omitempty"       gorm:"type:varchar(512)"`
	BankStatus        string     `json:"bank_status,omitempty"        gorm:"type:varchar(32)"`
	GatewayCode       string     `json:"gateway_code,omitempty"       gorm:"type:varchar(16)"`
	GatewayMessage    string     `json:"gateway_message,omitempty"    gorm:"type:varchar(255)"`
	Method            string     `json:"method,omitempty"             gorm:"type:varchar(64)"`
	DateTime          *time.Time `json:"date_time,omitempty"`
}

// Request represents a tenant's application to rent a specific listing. It
// is the unit of transactional consistency: status transitions, duplicate
// checks, and the paid-transition side effect on the listing all commit (or
// roll back) together.
type Request struct {
	ID            string         `json:"id"           gorm:"type:char(36);primaryKey"`
	RequestID     string         `json:"request_id"   gorm:"type:varchar(16);not null;uniqueIndex"`
	TenantID      string         `json:"tenant_id"    gorm:"type:varchar(16);not null;index:idx_tenant_listing,priority:1"`
	LandlordID    string         `json:"landlord_id"  gorm:"type:varchar(16);not null;index"`
	ListingID     string         `json:"listing_id"   gorm:"type:varchar(16);not null;index:idx_tenant_listing,priority:2"`
	Status        RequestStatus  `json:"status"       gorm:"type:varchar(16);not null;default:'pending'"`
	MoveInDate    time.Time      `json:"move_in_date"`
	RentDuration  string         `json:"rent_duration" gorm:"type:varchar(32)"`
	Message       string         `json:"message,omitempty" gorm:"type:text"`
	LandlordPhone string         `json:"landlord_phone,omitempty" gorm:"type:varchar(32)"`
	Transaction   Transaction    `json:"transaction"  gorm:"embedded;embeddedPrefix:tx_"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Request.
func (Request) TableName() string { return "requests" }

// Active reports whether the request still blocks a new application for the
// same (tenant, listing) pair. Rejected and cancelled requests do not.
func (r *Request) Active() bool {
	return r.Status != StatusRejected && r.Status != StatusCancelled
}
