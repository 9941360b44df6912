// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Listing
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nesthunt/go-rental-backend/internal/domain"
)

// CreateListing inserts a new Listing with the given external id. The
// primary key is a randomly generated UUID and availability defaults true.
func CreateListing(ctx context.Context, db *gorm.DB, l *domain.Listing) (*domain.Listing, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// GetListing fetches a single listing by its external id, or ErrNotFound.
// Soft-deleted listings are excluded.
func GetListing(ctx context.Context, db *gorm.DB, listingID string) (*domain.Listing, error) {
	var l domain.Listing
	err := db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CountListings returns the total number of listings matched by the scope.
func CountListings(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.Listing{})
	if scope != nil {
		q = scope(q)
	}
	err := q.Count(&total).Error
	return total, err
}

// ListListingsPage returns a page of listings, newest first, optionally
// narrowed by the given scope (filters from the query string).
func ListListingsPage(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]domain.Listing, error) {
	var out []domain.Listing
	q := db.WithContext(ctx).Model(&domain.Listing{})
	if scope != nil {
		q = scope(q)
	}
	err := q.Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// LandlordScope narrows a listing query to one landlord's listings.
func LandlordScope(landlordID string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("landlord_id = ?", landlordID)
	}
}

// ListingFilter holds the optional search criteria for a listing query.
// Zero values mean "no constraint".
type ListingFilter struct {
	Location      string
	MinPrice      float64
	MaxPrice      float64
	Bedrooms      int
	OnlyAvailable bool
}

// FilterScope turns a ListingFilter into a query scope.
func FilterScope(f ListingFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Location != "" {
			q = q.Where("house_location = ?", f.Location)
		}
		if f.MinPrice > 0 {
			q = q.Where("rent_price >= ?", f.MinPrice)
		}
		if f.MaxPrice > 0 {
			q = q.Where("rent_price <= ?", f.MaxPrice)
		}
		if f.Bedrooms > 0 {
			q = q.Where("bedroom_number = ?", f.Bedrooms)
		}
		if f.OnlyAvailable {
			q = q.Where("is_available = ?", true)
		}
		return q
	}
}

// UpdateListingFields applies a partial field patch to a listing. Returns
// ErrNotFound when the listing does not exist.
func UpdateListingFields(ctx context.Context, db *gorm.DB, listingID string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("listing_id = ?", listingID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetListingAvailability sets the availability flag of a listing. The
// payment flow calls this on a transaction handle so the flip commits
// together with the request's paid transition.
func SetListingAvailability(ctx context.Context, db *gorm.DB, listingID string, available bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("listing_id = ?", listingID).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteListing soft-deletes a listing by its external id. Returns
// ErrNotFound when it does not exist.
func DeleteListing(ctx context.Context, db *gorm.DB, listingID string) error {
	res := db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Delete(&domain.Listing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListingLocations returns the distinct house locations across listings,
// for the location filter shown on the search page.
func ListingLocations(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Distinct("house_location").
		Order("house_location asc").
		Pluck("house_location", &out).Error
	return out, err
}
