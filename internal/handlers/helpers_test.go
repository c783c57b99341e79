package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessageBody(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"plain", "hello", "hello", true},
		{"trimmed", "  hello  ", "hello", true},
		{"empty", "", "", false},
		{"whitespace only", "   \n\t ", "", false},
		{"max length", strings.Repeat("a", 2000), strings.Repeat("a", 2000), true},
		{"over max length", strings.Repeat("a", 2001), "", false},
		{"max length multibyte", strings.Repeat("é", 2000), strings.Repeat("é", 2000), true},
		{"over max length multibyte", strings.Repeat("é", 2001), "", false},
		{"padding does not count", "  " + strings.Repeat("a", 2000) + "  ", strings.Repeat("a", 2000), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, valid := validateMessageBody(tc.in)
			assert.Equal(t, tc.valid, valid)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWithinEditWindow(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, withinEditWindow(createdAt, createdAt))
	assert.True(t, withinEditWindow(createdAt, createdAt.Add(5*time.Minute)))
	// The boundary itself still allows the edit.
	assert.True(t, withinEditWindow(createdAt, createdAt.Add(10*time.Minute)))
	assert.False(t, withinEditWindow(createdAt, createdAt.Add(10*time.Minute+time.Second)))
}

func TestOtherParticipant(t *testing.T) {
	assert.Equal(t, "seller", otherParticipant("buyer", "seller", "buyer"))
	assert.Equal(t, "buyer", otherParticipant("buyer", "seller", "seller"))
}

func TestDisplayNameOrFallback(t *testing.T) {
	names := map[string]string{"u1": "Ada", "u2": ""}

	assert.Equal(t, "Ada", displayNameOrFallback(names, "u1"))
	assert.Equal(t, "User", displayNameOrFallback(names, "u2"))
	assert.Equal(t, "User", displayNameOrFallback(names, "missing"))
}
