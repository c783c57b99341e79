package models

// ListingInfo is the subset of a listing the messaging layer needs.
type ListingInfo struct {
	SellerID string `db:"seller_id"`
	Status   string `db:"status"`
}
