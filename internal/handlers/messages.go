package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zekariasasaminew/campusEx/internal/observability"
	"github.com/zekariasasaminew/campusEx/internal/repositories"
)

// MessageHandler owns the message lifecycle and read marking.
type MessageHandler struct {
	convRepo    repositories.ConversationRepository
	messageRepo repositories.MessageRepository
	receiptRepo repositories.ReadReceiptRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	convRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	receiptRepo repositories.ReadReceiptRepository,
) *MessageHandler {
	return &MessageHandler{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		receiptRepo: receiptRepo,
	}
}

// PostMessage stores a message after access, validation, and rate-limit
// checks pass.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	conversationID, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		return
	}
	userID := userIDFromGin(c)

	member, err := h.convRepo.IsParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to verify membership")
		return
	}
	if !member {
		respondError(c, http.StatusForbidden, codeNotAuthorized, "not a conversation participant")
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "message body is required")
		return
	}
	body, valid := validateMessageBody(req.Body)
	if !valid {
		respondError(c, http.StatusBadRequest, codeValidation, "message must be 1 to 2000 characters")
		return
	}

	// Advisory sliding-window check evaluated immediately before insert. A
	// small overshoot under concurrent sends is accepted.
	count, err := h.messageRepo.CountRecentMessages(c.Request.Context(), conversationID, userID, rateLimitWindow)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to check rate limit")
		return
	}
	if count >= messageRateLimit {
		observability.IncRateLimitRejection()
		respondError(c, http.StatusTooManyRequests, codeRateLimited, "maximum 10 messages per minute")
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), conversationID, userID, body)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to store message")
		return
	}

	observability.IncMessageOp("send")
	h.publishMessageEvent(c, "message_sent", conversationID, msg.ID)
	c.JSON(http.StatusCreated, msg)
}

// EditMessage updates a message body. Only the sender may edit, only within
// the edit window, and never after the message was deleted.
func (h *MessageHandler) EditMessage(c *gin.Context) {
	conversationID, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "message_id")
	if !ok {
		return
	}
	userID := userIDFromGin(c)

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "message body is required")
		return
	}
	body, valid := validateMessageBody(req.Body)
	if !valid {
		respondError(c, http.StatusBadRequest, codeValidation, "message must be 1 to 2000 characters")
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		respondError(c, http.StatusNotFound, codeNotFound, "message not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load message")
		return
	}
	if msg.ConversationID != conversationID {
		respondError(c, http.StatusBadRequest, codeValidation, "message does not belong to conversation")
		return
	}
	if msg.SenderID != userID {
		respondError(c, http.StatusForbidden, codeNotAuthorized, "only the sender can edit a message")
		return
	}
	// Deletion is terminal; a deleted message is never editable again.
	if msg.DeletedAt != nil {
		respondError(c, http.StatusForbidden, codeNotAuthorized, "message has been deleted")
		return
	}
	if !withinEditWindow(msg.CreatedAt, time.Now()) {
		respondError(c, http.StatusBadRequest, codeEditWindowExpired, "edit window expired")
		return
	}

	updated, err := h.messageRepo.UpdateMessageBody(c.Request.Context(), messageID, body)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		// Deleted between our read and the update.
		respondError(c, http.StatusForbidden, codeNotAuthorized, "message has been deleted")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to edit message")
		return
	}

	observability.IncMessageOp("edit")
	c.JSON(http.StatusOK, updated)
}

// DeleteMessage soft-deletes a message (sender only, no time window).
// Deleting an already-deleted message is a no-op.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	conversationID, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "message_id")
	if !ok {
		return
	}
	userID := userIDFromGin(c)

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		respondError(c, http.StatusNotFound, codeNotFound, "message not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load message")
		return
	}
	if msg.ConversationID != conversationID {
		respondError(c, http.StatusBadRequest, codeValidation, "message does not belong to conversation")
		return
	}
	if msg.SenderID != userID {
		respondError(c, http.StatusForbidden, codeNotAuthorized, "only the sender can delete a message")
		return
	}
	if msg.DeletedAt != nil {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.messageRepo.SoftDeleteMessage(c.Request.Context(), messageID); err != nil && !errors.Is(err, repositories.ErrMessageNotFound) {
		respondError(c, http.StatusInternalServerError, codeStorage, "could not delete message")
		return
	}

	observability.IncMessageOp("delete")
	h.publishMessageEvent(c, "message_deleted", conversationID, messageID)
	c.Status(http.StatusNoContent)
}

// MarkRead upserts receipts for every counterpart message in the
// conversation. Safe to call on every view.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	conversationID, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		return
	}
	userID := userIDFromGin(c)

	member, err := h.convRepo.IsParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to verify membership")
		return
	}
	if !member {
		respondError(c, http.StatusForbidden, codeNotAuthorized, "not a conversation participant")
		return
	}

	if err := h.receiptRepo.MarkConversationRead(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to mark conversation read")
		return
	}

	observability.IncConversationMarkedRead()
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) publishMessageEvent(c *gin.Context, name, conversationID, messageID string) {
	client := observability.ClientContextFromRequest(c.Request)
	payload := map[string]any{
		"conversation_id": conversationID,
		"message_id":      messageID,
		"user_id":         userIDFromGin(c),
		"client_ip":       client.IP,
		"device_id":       client.DeviceID,
	}
	headers := observability.BuildHeaders(requestIDFromContext(c), "")
	envelope := observability.NewEnvelope("messaging_events", name, payload)
	_ = observability.PublishEvent(c.Request.Context(), "messaging.messages", envelope, headers)
}
