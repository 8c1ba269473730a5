package domain

import (
	"context"
	"time"
)

// GenerationClient defines how the core application talks to the
// text-generation service.
type GenerationClient interface {
	GenerateReply(ctx context.Context, userText string, convCtx ConversationContext) (string, error)
}

// ConversationContext gives the generation service the context of the
// exchange. History is the ordered message log; the client applies its
// own sliding window before sending it over the wire.
type ConversationContext struct {
	ConversationID ConversationID
	UserID         UserID
	Mode           Mode
	History        []*Message
}

// ConversationStore defines conversation persistence.
type ConversationStore interface {
	CreateConversation(conv *Conversation) error
	// LatestConversation returns the most recently updated conversation
	// for (userID, mode), or ErrConversationNotFound.
	LatestConversation(userID UserID, mode Mode) (*Conversation, error)
	UpdateConversationSummary(id ConversationID, summary string, tags []string, updatedAt time.Time) error
}

// MessageStore defines message persistence.
type MessageStore interface {
	AppendMessage(msg *Message) error
	// ListMessages returns all messages for the triple, sorted ascending
	// by CreatedAt.
	ListMessages(userID UserID, mode Mode, conversationID ConversationID) ([]*Message, error)
	DeleteMessages(userID UserID, mode Mode, conversationID ConversationID) error
}
