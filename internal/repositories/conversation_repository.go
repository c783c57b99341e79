package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/zekariasasaminew/campusEx/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrCreateContention     = errors.New("conversation create contention")
)

// createRetries bounds the fetch-or-insert loop under concurrent first contact.
const createRetries = 3

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	GetOrCreateConversation(ctx context.Context, listingID, buyerID, sellerID string) (string, bool, error)
	GetConversationForUser(ctx context.Context, conversationID, userID string) (models.ConversationWithListing, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]models.ConversationWithListing, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreateConversation returns the conversation id for the
// (listing, buyer, seller) triple, creating the row on first contact. The
// second return reports whether this call created the row. The unique
// constraint on the triple guarantees at most one row; a concurrent insert
// that loses the race falls back to re-fetching the winner's row.
func (r *ConversationRepo) GetOrCreateConversation(ctx context.Context, listingID, buyerID, sellerID string) (string, bool, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		var id string
		err := r.db.GetContext(ctx, &id,
			`SELECT id FROM conversations WHERE listing_id=$1 AND buyer_id=$2 AND seller_id=$3`,
			listingID, buyerID, sellerID)
		if err == nil {
			return id, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", false, err
		}

		err = r.db.GetContext(ctx, &id,
			`INSERT INTO conversations (listing_id, buyer_id, seller_id, status)
             VALUES ($1, $2, $3, 'open')
             ON CONFLICT (listing_id, buyer_id, seller_id) DO NOTHING
             RETURNING id`,
			listingID, buyerID, sellerID)
		if err == nil {
			return id, true, nil
		}
		// ErrNoRows here means another request created the row between our
		// select and insert; loop around and fetch it.
		if !errors.Is(err, sql.ErrNoRows) {
			return "", false, err
		}
	}
	return "", false, ErrCreateContention
}

// GetConversationForUser fetches a conversation with its listing context,
// restricted to the given participant. Non-participants get not-found rather
// than a permission hint.
func (r *ConversationRepo) GetConversationForUser(ctx context.Context, conversationID, userID string) (models.ConversationWithListing, error) {
	var conv models.ConversationWithListing
	err := r.db.GetContext(ctx, &conv,
		`SELECT c.id, c.listing_id, c.buyer_id, c.seller_id, c.status, c.created_at, c.updated_at, c.last_message_at,
                l.title AS listing_title,
                (SELECT li.image_path FROM listing_images li
                 WHERE li.listing_id = l.id ORDER BY li.position, li.id LIMIT 1) AS listing_image_url
         FROM conversations c
         JOIN listings l ON l.id = c.listing_id
         WHERE c.id=$1 AND (c.buyer_id=$2 OR c.seller_id=$2)`,
		conversationID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ConversationWithListing{}, ErrConversationNotFound
	}
	return conv, err
}

// IsParticipant checks whether the user is the conversation's buyer or seller.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1 AND (buyer_id=$2 OR seller_id=$2))`,
		conversationID, userID)
	return exists, err
}

// ListConversationsForUser returns every conversation the user participates in,
// most recent activity first. Conversations with no messages yet sort last.
func (r *ConversationRepo) ListConversationsForUser(ctx context.Context, userID string) ([]models.ConversationWithListing, error) {
	var convs []models.ConversationWithListing
	err := r.db.SelectContext(ctx, &convs,
		`SELECT c.id, c.listing_id, c.buyer_id, c.seller_id, c.status, c.created_at, c.updated_at, c.last_message_at,
                l.title AS listing_title,
                (SELECT li.image_path FROM listing_images li
                 WHERE li.listing_id = l.id ORDER BY li.position, li.id LIMIT 1) AS listing_image_url
         FROM conversations c
         JOIN listings l ON l.id = c.listing_id
         WHERE c.buyer_id=$1 OR c.seller_id=$1
         ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`,
		userID)
	return convs, err
}
