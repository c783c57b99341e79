package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zekariasasaminew/campusEx/internal/models"
	"github.com/zekariasasaminew/campusEx/internal/repositories"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetOrCreateConversation(ctx context.Context, listingID, buyerID, sellerID string) (string, bool, error) {
	args := m.Called(ctx, listingID, buyerID, sellerID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *ConversationRepositoryMock) GetConversationForUser(ctx context.Context, conversationID, userID string) (models.ConversationWithListing, error) {
	args := m.Called(ctx, conversationID, userID)
	var conv models.ConversationWithListing
	if val := args.Get(0); val != nil {
		conv = val.(models.ConversationWithListing)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversationsForUser(ctx context.Context, userID string) ([]models.ConversationWithListing, error) {
	args := m.Called(ctx, userID)
	var list []models.ConversationWithListing
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationWithListing)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, conversationID, senderID, body string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateMessageBody(ctx context.Context, messageID, body string) (models.Message, error) {
	args := m.Called(ctx, messageID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) SoftDeleteMessage(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ListConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) CountRecentMessages(ctx context.Context, conversationID, senderID string, window time.Duration) (int, error) {
	args := m.Called(ctx, conversationID, senderID, window)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) LatestVisibleBodies(ctx context.Context, conversationIDs []string) (map[string]string, error) {
	args := m.Called(ctx, conversationIDs)
	var bodies map[string]string
	if val := args.Get(0); val != nil {
		bodies = val.(map[string]string)
	}
	return bodies, args.Error(1)
}

func (m *MessageRepositoryMock) ListIncomingMessageRefs(ctx context.Context, conversationIDs []string, userID string) ([]models.MessageRef, error) {
	args := m.Called(ctx, conversationIDs, userID)
	var refs []models.MessageRef
	if val := args.Get(0); val != nil {
		refs = val.([]models.MessageRef)
	}
	return refs, args.Error(1)
}

type ReadReceiptRepositoryMock struct {
	mock.Mock
}

func (m *ReadReceiptRepositoryMock) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

func (m *ReadReceiptRepositoryMock) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Int(0), args.Error(1)
}

func (m *ReadReceiptRepositoryMock) ReadMessageIDs(ctx context.Context, userID string, messageIDs []string) (map[string]struct{}, error) {
	args := m.Called(ctx, userID, messageIDs)
	var read map[string]struct{}
	if val := args.Get(0); val != nil {
		read = val.(map[string]struct{})
	}
	return read, args.Error(1)
}

type ListingRepositoryMock struct {
	mock.Mock
}

func (m *ListingRepositoryMock) GetListingInfo(ctx context.Context, listingID string) (models.ListingInfo, error) {
	args := m.Called(ctx, listingID)
	var info models.ListingInfo
	if val := args.Get(0); val != nil {
		info = val.(models.ListingInfo)
	}
	return info, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) BulkDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	args := m.Called(ctx, userIDs)
	var names map[string]string
	if val := args.Get(0); val != nil {
		names = val.(map[string]string)
	}
	return names, args.Error(1)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) LookupSession(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ReadReceiptRepository = (*ReadReceiptRepositoryMock)(nil)
var _ repositories.ListingRepository = (*ListingRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)
