package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ReadReceiptRepository is the ledger of per-user, per-message read markers.
// Unread counts are always derived from it, never cached.
type ReadReceiptRepository interface {
	MarkConversationRead(ctx context.Context, conversationID, userID string) error
	UnreadCount(ctx context.Context, conversationID, userID string) (int, error)
	ReadMessageIDs(ctx context.Context, userID string, messageIDs []string) (map[string]struct{}, error)
}

// ReadReceiptRepo is a sqlx implementation of ReadReceiptRepository.
type ReadReceiptRepo struct {
	db *sqlx.DB
}

// NewReadReceiptRepo constructs a ReadReceiptRepo.
func NewReadReceiptRepo(db *sqlx.DB) *ReadReceiptRepo {
	return &ReadReceiptRepo{db: db}
}

// MarkConversationRead upserts a receipt for every non-deleted message the
// counterpart has sent. Existing receipts are left untouched, so the call is
// idempotent and cheap to issue on every conversation view.
func (r *ReadReceiptRepo) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO message_reads (message_id, user_id)
         SELECT m.id, $2 FROM messages m
         WHERE m.conversation_id=$1 AND m.sender_id <> $2 AND m.deleted_at IS NULL
         ON CONFLICT (message_id, user_id) DO NOTHING`,
		conversationID, userID)
	return err
}

// UnreadCount counts the counterpart's non-deleted messages that the user has
// no receipt for.
func (r *ReadReceiptRepo) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages m
         WHERE m.conversation_id=$1 AND m.sender_id <> $2 AND m.deleted_at IS NULL
         AND NOT EXISTS (
             SELECT 1 FROM message_reads mr WHERE mr.message_id = m.id AND mr.user_id = $2
         )`,
		conversationID, userID)
	return count, err
}

// ReadMessageIDs returns which of the given messages the user holds a receipt
// for, in one query.
func (r *ReadReceiptRepo) ReadMessageIDs(ctx context.Context, userID string, messageIDs []string) (map[string]struct{}, error) {
	read := make(map[string]struct{}, len(messageIDs))
	if len(messageIDs) == 0 {
		return read, nil
	}

	query, args, err := sqlx.In(
		`SELECT message_id FROM message_reads WHERE user_id = ? AND message_id IN (?)`,
		userID, messageIDs)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, id := range ids {
		read[id] = struct{}{}
	}
	return read, nil
}
