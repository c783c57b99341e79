package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/zekariasasaminew/campusEx/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingRepository exposes the listing fields conversation creation needs.
type ListingRepository interface {
	GetListingInfo(ctx context.Context, listingID string) (models.ListingInfo, error)
}

// ListingRepo is a sqlx implementation of ListingRepository.
type ListingRepo struct {
	db *sqlx.DB
}

// NewListingRepo constructs a ListingRepo.
func NewListingRepo(db *sqlx.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// GetListingInfo fetches the listing's current seller and status.
func (r *ListingRepo) GetListingInfo(ctx context.Context, listingID string) (models.ListingInfo, error) {
	var info models.ListingInfo
	err := r.db.GetContext(ctx, &info,
		`SELECT seller_id, status FROM listings WHERE id=$1`, listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ListingInfo{}, ErrListingNotFound
	}
	return info, err
}
