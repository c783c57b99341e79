package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zekariasasaminew/campusEx/internal/models"
	"github.com/zekariasasaminew/campusEx/internal/observability"
	"github.com/zekariasasaminew/campusEx/internal/repositories"
	"github.com/zekariasasaminew/campusEx/internal/telemetry"
)

// ConversationHandler manages conversation identity, the inbox, and the
// conversation detail view.
type ConversationHandler struct {
	convRepo    repositories.ConversationRepository
	listingRepo repositories.ListingRepository
	messageRepo repositories.MessageRepository
	receiptRepo repositories.ReadReceiptRepository
	userRepo    repositories.UserRepository
	emitter     *telemetry.AuditEmitter
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(
	convRepo repositories.ConversationRepository,
	listingRepo repositories.ListingRepository,
	messageRepo repositories.MessageRepository,
	receiptRepo repositories.ReadReceiptRepository,
	userRepo repositories.UserRepository,
	emitter *telemetry.AuditEmitter,
) *ConversationHandler {
	return &ConversationHandler{
		convRepo:    convRepo,
		listingRepo: listingRepo,
		messageRepo: messageRepo,
		receiptRepo: receiptRepo,
		userRepo:    userRepo,
		emitter:     emitter,
	}
}

// StartConversation resolves the listing's seller and returns the single
// conversation for (listing, buyer), creating it on first contact. Calling it
// repeatedly never creates duplicates.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		ListingID string `json:"listing_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid listing id")
		return
	}

	userID := userIDFromGin(c)
	listing, err := h.listingRepo.GetListingInfo(c.Request.Context(), req.ListingID)
	if errors.Is(err, repositories.ErrListingNotFound) {
		respondError(c, http.StatusNotFound, codeNotFound, "listing not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load listing")
		return
	}

	if listing.SellerID == userID {
		respondError(c, http.StatusBadRequest, codeOwnListing, "cannot message your own listing")
		return
	}

	convID, created, err := h.convRepo.GetOrCreateConversation(c.Request.Context(), req.ListingID, userID, listing.SellerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "could not create conversation")
		return
	}

	if created {
		observability.IncConversationCreated()
		h.emitter.Emit(c.Request.Context(), "INFO", "conversation created", requestIDFromContext(c), auditUserID(c))
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": convID})
}

// GetInbox returns one summary per conversation the user participates in.
// Every lookup past the initial listing runs against an id list, so the
// round-trip count stays flat as conversations grow.
func (h *ConversationHandler) GetInbox(c *gin.Context) {
	userID := userIDFromGin(c)

	convs, err := h.convRepo.ListConversationsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load inbox")
		return
	}

	otherIDs := make([]string, 0, len(convs))
	otherIDSet := map[string]struct{}{}
	convIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		convIDs = append(convIDs, conv.ID)
		other := otherParticipant(conv.BuyerID, conv.SellerID, userID)
		if _, ok := otherIDSet[other]; !ok {
			otherIDSet[other] = struct{}{}
			otherIDs = append(otherIDs, other)
		}
	}

	names, err := h.userRepo.BulkDisplayNames(c.Request.Context(), otherIDs)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load participants")
		return
	}

	lastBodies, err := h.messageRepo.LatestVisibleBodies(c.Request.Context(), convIDs)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load messages")
		return
	}

	unread, err := h.unreadByConversation(c, convIDs, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load unread counts")
		return
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		other := otherParticipant(conv.BuyerID, conv.SellerID, userID)
		summary := models.ConversationSummary{
			ConversationWithListing: conv,
			OtherParticipantID:      other,
			OtherParticipantName:    displayNameOrFallback(names, other),
			UnreadCount:             unread[conv.ID],
		}
		if body, ok := lastBodies[conv.ID]; ok {
			summary.LastMessageBody = &body
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// unreadByConversation derives unread counts for many conversations from two
// id-list queries: the counterpart's visible messages and the caller's
// receipts over that message set.
func (h *ConversationHandler) unreadByConversation(c *gin.Context, convIDs []string, userID string) (map[string]int, error) {
	refs, err := h.messageRepo.ListIncomingMessageRefs(c.Request.Context(), convIDs, userID)
	if err != nil {
		return nil, err
	}

	messageIDs := make([]string, 0, len(refs))
	for _, ref := range refs {
		messageIDs = append(messageIDs, ref.ID)
	}
	read, err := h.receiptRepo.ReadMessageIDs(c.Request.Context(), userID, messageIDs)
	if err != nil {
		return nil, err
	}

	unread := make(map[string]int, len(convIDs))
	for _, ref := range refs {
		if _, ok := read[ref.ID]; !ok {
			unread[ref.ConversationID]++
		}
	}
	return unread, nil
}

type messageView struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Body           string     `json:"body"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at"`
	Deleted        bool       `json:"deleted"`
	SenderName     string     `json:"sender_name"`
	IsRead         bool       `json:"is_read"`
}

// GetConversation returns the conversation with its ordered message list and
// the caller's id for render-side ownership checks. Deleted messages keep
// their slot but carry the placeholder body.
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	conversationID, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		return
	}
	userID := userIDFromGin(c)

	conv, err := h.convRepo.GetConversationForUser(c.Request.Context(), conversationID, userID)
	if errors.Is(err, repositories.ErrConversationNotFound) {
		respondError(c, http.StatusNotFound, codeNotFound, "conversation not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load conversation")
		return
	}

	msgs, err := h.messageRepo.ListConversationMessages(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load messages")
		return
	}

	senderIDs := make([]string, 0, len(msgs))
	senderIDSet := map[string]struct{}{}
	messageIDs := make([]string, 0, len(msgs))
	for _, m := range msgs {
		messageIDs = append(messageIDs, m.ID)
		if _, ok := senderIDSet[m.SenderID]; !ok {
			senderIDSet[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	names, err := h.userRepo.BulkDisplayNames(c.Request.Context(), senderIDs)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load senders")
		return
	}

	read, err := h.receiptRepo.ReadMessageIDs(c.Request.Context(), userID, messageIDs)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load receipts")
		return
	}

	unread, err := h.receiptRepo.UnreadCount(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load unread count")
		return
	}

	views := make([]messageView, 0, len(msgs))
	var lastBody *string
	for _, m := range msgs {
		view := messageView{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			Body:           m.Body,
			CreatedAt:      m.CreatedAt,
			EditedAt:       m.EditedAt,
			SenderName:     displayNameOrFallback(names, m.SenderID),
		}
		if m.DeletedAt != nil {
			view.Deleted = true
			view.Body = models.DeletedMessagePlaceholder
		} else {
			body := m.Body
			lastBody = &body
		}
		if _, ok := read[m.ID]; ok {
			view.IsRead = true
		}
		views = append(views, view)
	}

	other := otherParticipant(conv.BuyerID, conv.SellerID, userID)
	otherNames, err := h.userRepo.BulkDisplayNames(c.Request.Context(), []string{other})
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeStorage, "failed to load participants")
		return
	}

	summary := models.ConversationSummary{
		ConversationWithListing: conv,
		OtherParticipantID:      other,
		OtherParticipantName:    displayNameOrFallback(otherNames, other),
		LastMessageBody:         lastBody,
		UnreadCount:             unread,
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": summary,
		"messages":     views,
		"viewer_id":    userID,
	})
}
