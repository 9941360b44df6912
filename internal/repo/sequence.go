// Package repo – external identifier sequences.
//
// External ids (R-00001, L-00001, T-00001, ...) are allocated from a named
// counter row rather than by scanning the most recently created record:
// scanning "last created" races under concurrent inserts and can hand out
// the same id twice. The upsert below increments atomically inside whatever
// transaction the caller runs it in.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Sequence is a named monotonic counter backing external id allocation.
type Sequence struct {
	Name  string `gorm:"type:varchar(32);primaryKey"`
	Value int64  `gorm:"not null"`
}

// TableName implements the GORM tabler interface.
func (Sequence) TableName() string { return "sequences" }

// Sequence names used by the application.
const (
	SeqRequest      = "request"
	SeqListing      = "listing"
	SeqUserAdmin    = "user_admin"
	SeqUserLandlord = "user_landlord"
	SeqUserTenant   = "user_tenant"
)

// NextSequence atomically increments the named counter and returns its new
// value. The first call for a name returns 1. Run it on a transaction handle
// when the allocated id must commit together with the row that uses it.
func NextSequence(ctx context.Context, db *gorm.DB, name string) (int64, error) {
	var value int64
	err := db.WithContext(ctx).
		Raw(`INSERT INTO sequences (name, value) VALUES (?, 1)
		     ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		     RETURNING value`, name).
		Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

// NextID allocates the next value of the named sequence and formats it as a
// zero-padded external id, e.g. NextID(ctx, tx, SeqRequest, "R") -> "R-00001".
func NextID(ctx context.Context, db *gorm.DB, name, prefix string) (string, error) {
	n, err := NextSequence(ctx, db, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%05d", prefix, n), nil
}
