// Package services – ListingService
//
// This file implements the ListingService: landlord CRUD on property
// listings, filtered public search, the availability toggle (guarded by the
// paid-request invariant), and the distinct-location lookup that feeds the
// search page.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nesthunt/go-rental-backend/internal/domain"
	"github.com/nesthunt/go-rental-backend/internal/repo"
	"github.com/nesthunt/go-rental-backend/internal/search"
)

// ListingService manages property listings.
type ListingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewListingService constructs a ListingService.
func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{DB: db}
}

// CreateListingInput carries a landlord's new listing.
type CreateListingInput struct {
	LandlordID    string
	HouseLocation string
	Description   string
	RentPrice     float64
	BedroomNumber int
	Images        string
	Features      string
}

// Create registers a new listing for a landlord. The external id (L-%05d)
// is allocated from an atomic sequence inside the same transaction as the
// insert; new listings start available.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	tr := otel.Tracer("services/ListingService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("landlord.id", in.LandlordID)),
	)
	defer span.End()

	if _, err := repo.GetUser(ctx, s.DB, in.LandlordID); err != nil {
		return nil, ErrUserNotFound
	}

	var created *domain.Listing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listingID, err := repo.NextID(ctx, tx, repo.SeqListing, "L")
		if err != nil {
			return err
		}
		l := &domain.Listing{
			ListingID:     listingID,
			LandlordID:    in.LandlordID,
			HouseLocation: in.HouseLocation,
			Description:   in.Description,
			RentPrice:     in.RentPrice,
			BedroomNumber: in.BedroomNumber,
			Images:        in.Images,
			Features:      in.Features,
			IsAvailable:   true,
		}
		if _, err := repo.CreateListing(ctx, tx, l); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a single listing by external id.
func (s *ListingService) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	l, err := repo.GetListing(ctx, s.DB, listingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// ListPage returns a page of listings matching the filter and the total
// count across all matching rows.
func (s *ListingService) ListPage(ctx context.Context, filter repo.ListingFilter, page, pageSize int) ([]domain.Listing, int64, error) {
	return s.listPage(ctx, repo.FilterScope(filter), page, pageSize)
}

// ListPersonalPage returns a page of one landlord's own listings.
func (s *ListingService) ListPersonalPage(ctx context.Context, landlordID string, page, pageSize int) ([]domain.Listing, int64, error) {
	return s.listPage(ctx, repo.LandlordScope(landlordID), page, pageSize)
}

func (s *ListingService) listPage(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page, pageSize int) ([]domain.Listing, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountListings(ctx, s.DB, scope)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Listing{}, 0, nil
	}

	items, err := repo.ListListingsPage(ctx, s.DB, scope, offset, pageSize)
	return items, total, err
}

// UpdateListingInput is a partial field patch. Nil fields are left
// untouched.
type UpdateListingInput struct {
	HouseLocation *string
	Description   *string
	RentPrice     *float64
	BedroomNumber *int
	Images        *string
	Features      *string
}

// Update applies a partial patch to a listing and returns the result.
func (s *ListingService) Update(ctx context.Context, listingID string, in UpdateListingInput) (*domain.Listing, error) {
	fields := map[string]any{}
	if in.HouseLocation != nil {
		fields["house_location"] = *in.HouseLocation
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.RentPrice != nil {
		fields["rent_price"] = *in.RentPrice
	}
	if in.BedroomNumber != nil {
		fields["bedroom_number"] = *in.BedroomNumber
	}
	if in.Images != nil {
		fields["images"] = *in.Images
	}
	if in.Features != nil {
		fields["features"] = *in.Features
	}

	if len(fields) > 0 {
		if err := repo.UpdateListingFields(ctx, s.DB, listingID, fields); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrListingNotFound
			}
			return nil, err
		}
	}
	l, err := repo.GetListing(ctx, s.DB, listingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// ToggleAvailability flips the availability flag of a listing.
//
// A listing with a paid request cannot be flipped back to available by
// hand; the rental stands until it is released through the request
// lifecycle (ErrListingRented).
func (s *ListingService) ToggleAvailability(ctx context.Context, listingID string) (*domain.Listing, error) {
	var out *domain.Listing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := repo.GetListing(ctx, tx, listingID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrListingNotFound
			}
			return err
		}
		if !l.IsAvailable {
			paid, err := repo.HasPaidRequest(ctx, tx, listingID)
			if err != nil {
				return err
			}
			if paid {
				return ErrListingRented
			}
		}
		if err := repo.SetListingAvailability(ctx, tx, listingID, !l.IsAvailable); err != nil {
			return err
		}
		l.IsAvailable = !l.IsAvailable
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete soft-deletes a listing by external id.
func (s *ListingService) Delete(ctx context.Context, listingID string) error {
	err := repo.DeleteListing(ctx, s.DB, listingID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrListingNotFound
	}
	return err
}

// Locations returns the distinct house locations across all listings.
func (s *ListingService) Locations(ctx context.Context) ([]string, error) {
	return repo.ListingLocations(ctx, s.DB)
}

// searchCorpusCap bounds how many listings feed one query's index.
const searchCorpusCap = 500

// searchStopwords are filler words ignored when matching queries against
// listing text.
var searchStopwords = []string{
	"a", "an", "and", "at", "for", "in", "near", "of", "the", "to", "with",
}

// Search ranks available listings against a free-text query over location,
// description, and features. The index is rebuilt per query; at this corpus
// size a rebuild is cheaper than keeping an index in sync with writes.
func (s *ListingService) Search(ctx context.Context, query string, limit int) ([]domain.Listing, error) {
	tr := otel.Tracer("services/ListingService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.String("search.query", query)),
	)
	defer span.End()

	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := repo.ListListingsPage(ctx, s.DB,
		repo.FilterScope(repo.ListingFilter{OnlyAvailable: true}), 0, searchCorpusCap)
	if err != nil {
		return nil, err
	}

	docs := make([]search.Document, 0, len(rows))
	byID := make(map[string]domain.Listing, len(rows))
	for _, l := range rows {
		docs = append(docs, search.Document{
			ID:   l.ListingID,
			Text: search.ComposeText(l.HouseLocation, l.Description, search.FlattenList(l.Features)),
		})
		byID[l.ListingID] = l
	}

	idx := search.NewIndex(docs, search.WithStopwords(searchStopwords))
	ranked := idx.TopK(query, limit)

	out := make([]domain.Listing, 0, len(ranked))
	for _, r := range ranked {
		if l, ok := byID[r.ID]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}
