package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles as exposed on the wire. Inbound synonyms ("ai") are folded into
// the canonical pair at construction time.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message types kept for chat-SDK compatibility: "human" mirrors the
// user role, "ai" mirrors the assistant role.
const (
	TypeHuman = "human"
	TypeAI    = "ai"
)

// Message is a single utterance in a thread. Immutable once stored.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeRole maps a raw role tag to its canonical role and message
// type. Anything that is not an assistant synonym is treated as user
// input.
func NormalizeRole(role string) (string, string) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAssistant, "ai":
		return RoleAssistant, TypeAI
	default:
		return RoleUser, TypeHuman
	}
}

// NewMessage builds a Message with a normalized role and a fresh ID.
func NewMessage(role, content string) Message {
	canonical, msgType := NormalizeRole(role)
	return Message{
		ID:        "msg_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		Type:      msgType,
		Role:      canonical,
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now().UTC(),
	}
}
