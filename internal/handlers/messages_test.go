package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zekariasasaminew/campusEx/internal/mocks"
	"github.com/zekariasasaminew/campusEx/internal/models"
	"github.com/zekariasasaminew/campusEx/internal/repositories"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	r.POST("/conversations/:conversation_id/messages", handler.PostMessage)
	r.PATCH("/conversations/:conversation_id/messages/:message_id", handler.EditMessage)
	r.DELETE("/conversations/:conversation_id/messages/:message_id", handler.DeleteMessage)
	r.POST("/conversations/:conversation_id/read", handler.MarkRead)
	return r
}

func postJSON(router *gin.Engine, method, path, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPostMessageSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(convRepo, messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(true, nil).Once()
	messageRepo.On("CountRecentMessages", mock.Anything, convID, testUserID, time.Minute).Return(3, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, convID, testUserID, "hi").
		Return(models.Message{ID: uuid.NewString(), ConversationID: convID, SenderID: testUserID, Body: "hi"}, nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/messages", `{"body":"hi"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	convRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostMessageTrimsBody(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(convRepo, messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(true, nil).Once()
	messageRepo.On("CountRecentMessages", mock.Anything, convID, testUserID, time.Minute).Return(0, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, convID, testUserID, "hello there").
		Return(models.Message{ID: uuid.NewString(), ConversationID: convID, SenderID: testUserID, Body: "hello there"}, nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/messages", `{"body":"  hello there  "}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestPostMessageRejectsWhitespaceBody(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(convRepo, messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(true, nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/messages", `{"body":"   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation", resp["code"])
	messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageLengthBoundary(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(convRepo, messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	maxBody := strings.Repeat("a", 2000)
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(true, nil).Twice()
	messageRepo.On("CountRecentMessages", mock.Anything, convID, testUserID, time.Minute).Return(0, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, convID, testUserID, maxBody).
		Return(models.Message{ID: uuid.NewString(), ConversationID: convID, SenderID: testUserID, Body: maxBody}, nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/messages", `{"body":"`+maxBody+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(router, http.MethodPost, "/conversations/"+convID+"/messages", `{"body":"`+maxBody+`a"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	messageRepo.AssertExpectations(t)
}

func TestPostMessageRateLimited(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(convRepo, messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(true, nil).Once()
	messageRepo.On("CountRecentMessages", mock.Anything, convID, testUserID, time.Minute).Return(10, nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/messages", `{"body":"one more"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "rate_limited", resp["code"])
	assert.Equal(t, "maximum 10 messages per minute", resp["error"])
	messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageNotParticipant(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewMessageHandler(convRepo, new(mocks.MessageRepositoryMock), new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(false, nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/messages", `{"body":"hi"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestEditMessageSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	msg := models.Message{ID: msgID, ConversationID: convID, SenderID: testUserID, Body: "old", CreatedAt: time.Now().Add(-5 * time.Minute)}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()
	edited := msg
	edited.Body = "new"
	messageRepo.On("UpdateMessageBody", mock.Anything, msgID, "new").Return(edited, nil).Once()

	rec := postJSON(router, http.MethodPatch, "/conversations/"+convID+"/messages/"+msgID, `{"body":"new"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestEditMessageWindowExpired(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	msg := models.Message{ID: msgID, ConversationID: convID, SenderID: testUserID, Body: "old", CreatedAt: time.Now().Add(-10*time.Minute - time.Second)}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()

	rec := postJSON(router, http.MethodPatch, "/conversations/"+convID+"/messages/"+msgID, `{"body":"new"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "edit_window_expired", resp["code"])
	messageRepo.AssertNotCalled(t, "UpdateMessageBody", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditMessageNotSender(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	msg := models.Message{ID: msgID, ConversationID: convID, SenderID: testSellerID, Body: "old", CreatedAt: time.Now()}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()

	rec := postJSON(router, http.MethodPatch, "/conversations/"+convID+"/messages/"+msgID, `{"body":"new"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEditMessageDeletedIsTerminal(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	now := time.Now()
	msg := models.Message{ID: msgID, ConversationID: convID, SenderID: testUserID, Body: "old", CreatedAt: now.Add(-time.Minute), DeletedAt: &now}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()

	rec := postJSON(router, http.MethodPatch, "/conversations/"+convID+"/messages/"+msgID, `{"body":"new"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "UpdateMessageBody", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditMessageNotFound(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	rec := postJSON(router, http.MethodPatch, "/conversations/"+convID+"/messages/"+msgID, `{"body":"new"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditMessageWrongConversation(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	msg := models.Message{ID: msgID, ConversationID: uuid.NewString(), SenderID: testUserID, CreatedAt: time.Now()}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()

	rec := postJSON(router, http.MethodPatch, "/conversations/"+convID+"/messages/"+msgID, `{"body":"new"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMessageSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	msg := models.Message{ID: msgID, ConversationID: convID, SenderID: testUserID, Body: "bye", CreatedAt: time.Now()}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()
	messageRepo.On("SoftDeleteMessage", mock.Anything, msgID).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/conversations/"+convID+"/messages/"+msgID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestDeleteMessageNotSender(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	msg := models.Message{ID: msgID, ConversationID: convID, SenderID: testSellerID, CreatedAt: time.Now()}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/conversations/"+convID+"/messages/"+msgID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "SoftDeleteMessage", mock.Anything, mock.Anything)
}

func TestDeleteMessageAlreadyDeleted(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), messageRepo, new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	convID, msgID := uuid.NewString(), uuid.NewString()
	now := time.Now()
	msg := models.Message{ID: msgID, ConversationID: convID, SenderID: testUserID, CreatedAt: now.Add(-time.Hour), DeletedAt: &now}
	messageRepo.On("GetMessage", mock.Anything, msgID).Return(msg, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/conversations/"+convID+"/messages/"+msgID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	messageRepo.AssertNotCalled(t, "SoftDeleteMessage", mock.Anything, mock.Anything)
}

func TestMarkReadSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	receiptRepo := new(mocks.ReadReceiptRepositoryMock)
	handler := NewMessageHandler(convRepo, new(mocks.MessageRepositoryMock), receiptRepo)
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(true, nil).Once()
	receiptRepo.On("MarkConversationRead", mock.Anything, convID, testUserID).Return(nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/read", "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	receiptRepo.AssertExpectations(t)
}

func TestMarkReadNotParticipant(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	receiptRepo := new(mocks.ReadReceiptRepositoryMock)
	handler := NewMessageHandler(convRepo, new(mocks.MessageRepositoryMock), receiptRepo)
	router := setupMessageRouter(handler)

	convID := uuid.NewString()
	convRepo.On("IsParticipant", mock.Anything, convID, testUserID).Return(false, nil).Once()

	rec := postJSON(router, http.MethodPost, "/conversations/"+convID+"/read", "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	receiptRepo.AssertNotCalled(t, "MarkConversationRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageInvalidConversationID(t *testing.T) {
	handler := NewMessageHandler(new(mocks.ConversationRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.ReadReceiptRepositoryMock))
	router := setupMessageRouter(handler)

	rec := postJSON(router, http.MethodPost, "/conversations/bad/messages", `{"body":"hi"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
