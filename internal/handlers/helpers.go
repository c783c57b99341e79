package handlers

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Stable error codes surfaced to the UI layer.
const (
	codeNotFound          = "not_found"
	codeNotAuthorized     = "not_authorized"
	codeOwnListing        = "own_listing"
	codeValidation        = "validation"
	codeEditWindowExpired = "edit_window_expired"
	codeRateLimited       = "rate_limited"
	codeStorage           = "storage_error"
)

const (
	// editWindow bounds how long a sender may modify a message body.
	editWindow = 10 * time.Minute

	// messageRateLimit caps sends per sender per conversation within
	// rateLimitWindow, evaluated as a sliding window.
	messageRateLimit = 10
	rateLimitWindow  = time.Minute

	maxMessageLength = 2000
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

func parseUUIDParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		respondError(c, 400, codeValidation, "invalid "+strings.ReplaceAll(name, "_", " "))
		return "", false
	}
	return raw, true
}

// validateMessageBody trims the body and enforces the 1..2000 length bounds.
// Length counts characters, not bytes, so multibyte text gets the full limit.
func validateMessageBody(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	length := utf8.RuneCountInString(trimmed)
	if length == 0 || length > maxMessageLength {
		return "", false
	}
	return trimmed, true
}

// withinEditWindow reports whether a message created at createdAt may still be
// edited at now. The boundary itself is inclusive.
func withinEditWindow(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= editWindow
}

func userIDFromGin(c *gin.Context) string {
	return c.GetString("userID")
}

func otherParticipant(buyerID, sellerID, userID string) string {
	if buyerID == userID {
		return sellerID
	}
	return buyerID
}

func displayNameOrFallback(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return "User"
}
