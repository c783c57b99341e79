package models

import "time"

// Conversation is one buyer/seller thread about a single listing.
type Conversation struct {
	ID            string     `db:"id" json:"id"`
	ListingID     string     `db:"listing_id" json:"listing_id"`
	BuyerID       string     `db:"buyer_id" json:"buyer_id"`
	SellerID      string     `db:"seller_id" json:"seller_id"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	LastMessageAt *time.Time `db:"last_message_at" json:"last_message_at"`
}

// ConversationWithListing is a conversation row joined with its listing context.
type ConversationWithListing struct {
	Conversation
	ListingTitle    string  `db:"listing_title" json:"listing_title"`
	ListingImageURL *string `db:"listing_image_url" json:"listing_image_url"`
}

// ConversationSummary is one inbox row.
type ConversationSummary struct {
	ConversationWithListing
	OtherParticipantID   string  `json:"other_participant_id"`
	OtherParticipantName string  `json:"other_participant_name"`
	LastMessageBody      *string `json:"last_message_body"`
	UnreadCount          int     `json:"unread_count"`
}

// ConversationStatusOpen and ConversationStatusClosed are the valid
// conversation states.
const (
	ConversationStatusOpen   = "open"
	ConversationStatusClosed = "closed"
)
