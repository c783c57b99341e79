package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zekariasasaminew/campusEx/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID, senderID, body string) (models.Message, error)
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
	UpdateMessageBody(ctx context.Context, messageID, body string) (models.Message, error)
	SoftDeleteMessage(ctx context.Context, messageID string) error
	ListConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	CountRecentMessages(ctx context.Context, conversationID, senderID string, window time.Duration) (int, error)
	LatestVisibleBodies(ctx context.Context, conversationIDs []string) (map[string]string, error)
	ListIncomingMessageRefs(ctx context.Context, conversationIDs []string, userID string) ([]models.MessageRef, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage inserts a message and advances the conversation's
// last_message_at in one transaction.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID, senderID, body string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	if err := tx.GetContext(ctx, &msg,
		`INSERT INTO messages (conversation_id, sender_id, body)
         VALUES ($1, $2, $3)
         RETURNING id, conversation_id, sender_id, body, created_at, edited_at, deleted_at`,
		conversationID, senderID, body); err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET last_message_at=$1, updated_at=$1 WHERE id=$2`,
		msg.CreatedAt, conversationID); err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, conversation_id, sender_id, body, created_at, edited_at, deleted_at
         FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// UpdateMessageBody replaces the body and stamps edited_at. Deleted messages
// are never updated.
func (r *MessageRepo) UpdateMessageBody(ctx context.Context, messageID, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`UPDATE messages SET body=$1, edited_at=NOW()
         WHERE id=$2 AND deleted_at IS NULL
         RETURNING id, conversation_id, sender_id, body, created_at, edited_at, deleted_at`,
		body, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// SoftDeleteMessage stamps deleted_at, which is terminal.
func (r *MessageRepo) SoftDeleteMessage(ctx context.Context, messageID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET deleted_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ListConversationMessages returns all messages in a conversation, oldest
// first. Soft-deleted rows are included; rendering hides their bodies.
func (r *MessageRepo) ListConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, conversation_id, sender_id, body, created_at, edited_at, deleted_at
         FROM messages WHERE conversation_id=$1
         ORDER BY created_at ASC`, conversationID)
	return msgs, err
}

// CountRecentMessages counts messages sent by the sender into the conversation
// within the trailing window. The boundary slides with NOW(), so bursts are
// smoothed rather than reset on clock ticks.
func (r *MessageRepo) CountRecentMessages(ctx context.Context, conversationID, senderID string, window time.Duration) (int, error) {
	windowStart := time.Now().Add(-window)
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages
         WHERE conversation_id=$1 AND sender_id=$2 AND created_at >= $3`,
		conversationID, senderID, windowStart)
	return count, err
}

// LatestVisibleBodies fetches the most recent non-deleted body for each of the
// given conversations in one query.
func (r *MessageRepo) LatestVisibleBodies(ctx context.Context, conversationIDs []string) (map[string]string, error) {
	bodies := make(map[string]string, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return bodies, nil
	}

	query, args, err := sqlx.In(
		`SELECT DISTINCT ON (conversation_id) conversation_id, body
         FROM messages
         WHERE conversation_id IN (?) AND deleted_at IS NULL
         ORDER BY conversation_id, created_at DESC`, conversationIDs)
	if err != nil {
		return nil, err
	}

	var rows []models.LastMessage
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		bodies[row.ConversationID] = row.Body
	}
	return bodies, nil
}

// ListIncomingMessageRefs returns the ids of non-deleted messages in the given
// conversations that were sent by someone other than the user, in one query.
func (r *MessageRepo) ListIncomingMessageRefs(ctx context.Context, conversationIDs []string, userID string) ([]models.MessageRef, error) {
	if len(conversationIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, conversation_id FROM messages
         WHERE conversation_id IN (?) AND sender_id <> ? AND deleted_at IS NULL`,
		conversationIDs, userID)
	if err != nil {
		return nil, err
	}

	var refs []models.MessageRef
	if err := r.db.SelectContext(ctx, &refs, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return refs, nil
}
